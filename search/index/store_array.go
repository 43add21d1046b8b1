package index

import (
	"bufio"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ArrayStoreWriter writes fixed size values. The value of element i starts at
// i * elementValueSize.
type ArrayStoreWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newArrayStoreWriter(filename string) (*ArrayStoreWriter, error) {
	file, err := createFile(filename)
	if err != nil {
		return nil, err
	}

	return &ArrayStoreWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (writer *ArrayStoreWriter) Append(value []byte) error {
	_, err := writer.writer.Write(value)
	return err
}

func (writer *ArrayStoreWriter) Close() error {
	if err := writer.writer.Flush(); err != nil {
		_ = writer.file.Close()
		return err
	}

	return writer.file.Close()
}

type ArrayStoreReader struct {
	data             mmap.MMap
	elementValueSize uint32
	file             *os.File
}

func newArrayStoreReader(filename string, elementValueSize uint32) (*ArrayStoreReader, error) {
	file, data, err := mapFile(filename)
	if err != nil {
		return nil, err
	}

	return &ArrayStoreReader{
		data:             data,
		elementValueSize: elementValueSize,
		file:             file,
	}, nil
}

func (reader *ArrayStoreReader) Len() uint32 {
	return uint32(len(reader.data)) / reader.elementValueSize
}

// Get returns nil when position is out of range.
func (reader *ArrayStoreReader) Get(position uint32) []byte {
	if position >= reader.Len() {
		return nil
	}

	start := position * reader.elementValueSize
	return reader.data[start : start+reader.elementValueSize]
}

func (reader *ArrayStoreReader) Close() error {
	return unmapFile(reader.file, reader.data)
}
