package index

import (
	"encoding/binary"
)

type TermInfo struct {
	DocFreq                 uint32
	// Sum of the term frequencies over all documents of the segment
	CollectionTermFreq      uint64
	PostingsFileStartOffset uint64
	PostingsFileEndOffset   uint64
}

const termInfoSize = 28

type DictionaryWriter struct {
	buffer   []byte
	kvWriter *KVStoreWriter
}

func newDictionaryWriter(directory string, segmentId uint32, fieldName string) (*DictionaryWriter, error) {
	writer, err := newKVStoreWriter(segmentFileName(directory, segmentId, fieldName, "dictionary"))
	if err != nil {
		return nil, err
	}

	return &DictionaryWriter{buffer: make([]byte, termInfoSize), kvWriter: writer}, nil
}

func (writer *DictionaryWriter) Write(term []byte, termInfo *TermInfo) error {
	binary.BigEndian.PutUint32(writer.buffer, termInfo.DocFreq)
	binary.BigEndian.PutUint64(writer.buffer[4:], termInfo.CollectionTermFreq)
	binary.BigEndian.PutUint64(writer.buffer[12:], termInfo.PostingsFileStartOffset)
	binary.BigEndian.PutUint64(writer.buffer[20:], termInfo.PostingsFileEndOffset)
	return writer.kvWriter.Append(term, writer.buffer)
}

func (writer *DictionaryWriter) Close() error {
	return writer.kvWriter.Close()
}

type DictionaryReader struct {
	kvReader *KVStoreReader
}

func newDictionaryReader(directory string, segmentId uint32, fieldName string) (*DictionaryReader, error) {
	kvReader, err := newKVStoreReader(segmentFileName(directory, segmentId, fieldName, "dictionary"))
	if err != nil {
		return nil, err
	}

	return &DictionaryReader{kvReader: kvReader}, nil
}

// Get returns nil when the term is not in the dictionary.
func (reader *DictionaryReader) Get(term []byte) *TermInfo {
	value := reader.kvReader.Get(term)

	if len(value) != termInfoSize {
		return nil
	}

	return &TermInfo{
		DocFreq:                 binary.BigEndian.Uint32(value),
		CollectionTermFreq:      binary.BigEndian.Uint64(value[4:]),
		PostingsFileStartOffset: binary.BigEndian.Uint64(value[12:]),
		PostingsFileEndOffset:   binary.BigEndian.Uint64(value[20:]),
	}
}

func (reader *DictionaryReader) Close() error {
	return reader.kvReader.Close()
}
