package index

import (
	"encoding/binary"
	"fmt"

	"github.com/larose/lynxeval/search/utils"
)

const fieldLengthSize = 4

func newFieldLengthWriter(directory string, segmentId uint32, fieldName string) (*ArrayStoreWriter, error) {
	return newArrayStoreWriter(segmentFileName(directory, segmentId, fieldName, "lengths"))
}

// writeFieldLengths writes one length per document of the segment. Documents
// without the field have a length of 0.
func writeFieldLengths(writer *ArrayStoreWriter, lengths []uint32) error {
	buffer := make([]byte, 0, len(lengths)*fieldLengthSize)
	for _, length := range lengths {
		buffer = binary.BigEndian.AppendUint32(buffer, length)
	}

	if err := writer.Append(buffer); err != nil {
		_ = writer.Close()
		return err
	}

	return writer.Close()
}

type FieldLengthReader struct {
	arrayStoreReader *ArrayStoreReader
}

func newFieldLengthReader(directory string, segmentId uint32, fieldName string) (*FieldLengthReader, error) {
	arrayStoreReader, err := newArrayStoreReader(segmentFileName(directory, segmentId, fieldName, "lengths"), fieldLengthSize)
	if err != nil {
		return nil, err
	}

	return &FieldLengthReader{arrayStoreReader: arrayStoreReader}, nil
}

func (reader *FieldLengthReader) Get(docId DocumentId) (uint32, error) {
	value := reader.arrayStoreReader.Get(uint32(docId))

	if value == nil {
		return 0, fmt.Errorf("document %d not found", docId)
	}

	return utils.BytesToUint32(value), nil
}

func (reader *FieldLengthReader) Close() error {
	return reader.arrayStoreReader.Close()
}
