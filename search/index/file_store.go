package index

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
)

func createFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
}

// segmentFileName returns directory/segment.<id>.<parts...>
func segmentFileName(directory string, segmentId uint32, parts ...string) string {
	name := "segment." + strconv.FormatUint(uint64(segmentId), 10)
	if len(parts) > 0 {
		name += "." + strings.Join(parts, ".")
	}

	return filepath.Join(directory, name)
}

// mapFile maps a whole file read-only. Empty files cannot be mapped and are
// returned as a nil mapping.
func mapFile(filename string) (*os.File, mmap.MMap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	if info.Size() == 0 {
		return file, nil, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	return file, data, nil
}

func unmapFile(file *os.File, data mmap.MMap) error {
	if data != nil {
		if err := data.Unmap(); err != nil {
			_ = file.Close()
			return err
		}
	}

	return file.Close()
}

type FileReader struct {
	data mmap.MMap
	file *os.File
}

func newFileReader(filename string) (*FileReader, error) {
	file, data, err := mapFile(filename)
	if err != nil {
		return nil, err
	}

	return &FileReader{
		data: data,
		file: file,
	}, nil
}

func (reader *FileReader) Slice(start, end uint64) []byte {
	return reader.data[start:end]
}

func (reader *FileReader) Close() error {
	return unmapFile(reader.file, reader.data)
}
