package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"os"

	"github.com/edsrzf/mmap-go"
)

/*
KV store:
  - <basename>.data: [key length (uint32)][value length (uint32)][key][value] ...
  - <basename>.index: [offset of entry i in data (uint64)] ...

Keys are appended in ascending byte order, lookups are a binary search over
the index.
*/
type KVStoreWriter struct {
	dataFile    *os.File
	dataWriter  *bufio.Writer
	indexFile   *os.File
	indexWriter *bufio.Writer
	lastKey     []byte
	offset      uint64
}

var errKeyOutOfOrder = errors.New("kv store keys must be appended in ascending order")

func newKVStoreWriter(basename string) (*KVStoreWriter, error) {
	dataFile, err := createFile(basename + ".data")
	if err != nil {
		return nil, err
	}
	indexFile, err := createFile(basename + ".index")
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	return &KVStoreWriter{
		dataFile:    dataFile,
		dataWriter:  bufio.NewWriter(dataFile),
		indexFile:   indexFile,
		indexWriter: bufio.NewWriter(indexFile),
	}, nil
}

func (w *KVStoreWriter) Append(key []byte, values ...[]byte) error {
	if w.lastKey != nil && bytes.Compare(w.lastKey, key) >= 0 {
		return errKeyOutOfOrder
	}
	w.lastKey = append(w.lastKey[:0], key...)

	keyLength := uint32(len(key))

	var valueLength uint32
	for _, value := range values {
		valueLength += uint32(len(value))
	}

	buffer := make([]byte, 0, 8+keyLength+valueLength)
	buffer = binary.BigEndian.AppendUint32(buffer, keyLength)
	buffer = binary.BigEndian.AppendUint32(buffer, valueLength)
	buffer = append(buffer, key...)
	for _, value := range values {
		buffer = append(buffer, value...)
	}

	if _, err := w.dataWriter.Write(buffer); err != nil {
		return err
	}

	if _, err := w.indexWriter.Write(binary.BigEndian.AppendUint64(nil, w.offset)); err != nil {
		return err
	}

	w.offset += uint64(len(buffer))

	return nil
}

func (w *KVStoreWriter) Close() error {
	return errors.Join(
		w.dataWriter.Flush(),
		w.dataFile.Close(),
		w.indexWriter.Flush(),
		w.indexFile.Close(),
	)
}

type KVStoreReader struct {
	data      mmap.MMap
	dataFile  *os.File
	index     mmap.MMap
	indexFile *os.File
}

func newKVStoreReader(basename string) (*KVStoreReader, error) {
	dataFile, data, err := mapFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	indexFile, index, err := mapFile(basename + ".index")
	if err != nil {
		_ = unmapFile(dataFile, data)
		return nil, err
	}

	return &KVStoreReader{
		data:      data,
		dataFile:  dataFile,
		index:     index,
		indexFile: indexFile,
	}, nil
}

func (kv *KVStoreReader) Len() int {
	return len(kv.index) / 8
}

func (kv *KVStoreReader) entry(i int) ([]byte, []byte) {
	offset := binary.BigEndian.Uint64(kv.index[i*8 : i*8+8])
	keyLength := uint64(binary.BigEndian.Uint32(kv.data[offset : offset+4]))
	valueLength := uint64(binary.BigEndian.Uint32(kv.data[offset+4 : offset+8]))

	keyStart := offset + 8
	valueStart := keyStart + keyLength

	return kv.data[keyStart:valueStart], kv.data[valueStart : valueStart+valueLength]
}

// Get returns nil if the key does not exist. The returned slice points into
// the mapping and is valid until Close.
func (kv *KVStoreReader) Get(key []byte) []byte {
	left, right := 0, kv.Len()-1

	for left <= right {
		middle := left + (right-left)/2
		currentKey, value := kv.entry(middle)

		switch bytes.Compare(currentKey, key) {
		case -1:
			left = middle + 1
		case 1:
			right = middle - 1
		default:
			return value
		}
	}

	return nil
}

func (kv *KVStoreReader) Close() error {
	return errors.Join(
		unmapFile(kv.dataFile, kv.data),
		unmapFile(kv.indexFile, kv.index),
	)
}
