package index

import (
	"errors"
	"os"
	"slices"
	"sync"

	"github.com/larose/lynxeval/search/utils"
)

// StoreWriter keeps the raw value of every field, so that attributes such as
// the external document id can be read back.
type StoreWriter struct {
	currentDocId DocumentId
	values       map[string]map[DocumentId][]byte
}

func newStoreWriter() *StoreWriter {
	return &StoreWriter{
		values: make(map[string]map[DocumentId][]byte, 10),
	}
}

func (writer *StoreWriter) Doc(docId DocumentId) {
	writer.currentDocId = docId
}

// Field keeps the first value of a field repeated in the same document.
func (writer *StoreWriter) Field(fieldName string, value []byte) {
	fieldValues, exists := writer.values[fieldName]

	if !exists {
		fieldValues = make(map[DocumentId][]byte, 100)
		writer.values[fieldName] = fieldValues
	}

	if _, exists := fieldValues[writer.currentDocId]; !exists {
		fieldValues[writer.currentDocId] = value
	}
}

func (writer *StoreWriter) EndField() {
}

func (writer *StoreWriter) Term(term []byte, position uint32) {
}

func (writer *StoreWriter) Write(directory string, segmentId uint32) error {
	for fieldName, values := range writer.values {
		kvStoreWriter, err := newKVStoreWriter(segmentFileName(directory, segmentId, fieldName, "store"))
		if err != nil {
			return err
		}

		sortedDocIds := make([]DocumentId, 0, len(values))
		for docId := range values {
			sortedDocIds = append(sortedDocIds, docId)
		}

		slices.Sort(sortedDocIds)

		for _, docId := range sortedDocIds {
			if err := kvStoreWriter.Append(utils.Uint32ToBytes(uint32(docId)), values[docId]); err != nil {
				_ = kvStoreWriter.Close()
				return err
			}
		}

		if err := kvStoreWriter.Close(); err != nil {
			return err
		}
	}

	return nil
}

type FieldStoreReader struct {
	kvStoreReader *KVStoreReader
}

func newFieldStoreReader(directory string, segmentId uint32, fieldName string) (*FieldStoreReader, error) {
	kvStoreReader, err := newKVStoreReader(segmentFileName(directory, segmentId, fieldName, "store"))
	if err != nil {
		return nil, err
	}

	return &FieldStoreReader{kvStoreReader: kvStoreReader}, nil
}

// Value returns nil when the document has no value for the field.
func (reader *FieldStoreReader) Value(docId DocumentId) []byte {
	return reader.kvStoreReader.Get(utils.Uint32ToBytes(uint32(docId)))
}

func (reader *FieldStoreReader) Close() error {
	return reader.kvStoreReader.Close()
}

type StoreReader struct {
	directory         string
	mutex             sync.Mutex
	fieldStoreReaders map[string]*FieldStoreReader
	segmentId         uint32
}

func newStoreReader(directory string, segmentId uint32) *StoreReader {
	return &StoreReader{
		directory:         directory,
		segmentId:         segmentId,
		fieldStoreReaders: make(map[string]*FieldStoreReader, 10),
	}
}

// GetFieldStoreReader returns nil when no document of the segment has the
// field.
func (reader *StoreReader) GetFieldStoreReader(fieldName string) (*FieldStoreReader, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	fieldStoreReader, exists := reader.fieldStoreReaders[fieldName]
	if !exists {
		var err error
		fieldStoreReader, err = newFieldStoreReader(reader.directory, reader.segmentId, fieldName)
		if errors.Is(err, os.ErrNotExist) {
			fieldStoreReader = nil
		} else if err != nil {
			return nil, err
		}

		reader.fieldStoreReaders[fieldName] = fieldStoreReader
	}

	return fieldStoreReader, nil
}

func (reader *StoreReader) Close() error {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	errs := make([]error, 0, len(reader.fieldStoreReaders))
	for _, fieldStoreReader := range reader.fieldStoreReaders {
		if fieldStoreReader != nil {
			errs = append(errs, fieldStoreReader.Close())
		}
	}

	return errors.Join(errs...)
}
