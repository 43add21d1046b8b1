package index

import (
	"encoding/json"
	"os"
)

type SegmentInfo struct {
	DocCount uint32   `json:"docCount"`
	Fields   []string `json:"fields"`
}

// SegmentInfoWriter records the number of documents and the indexed fields of
// a segment.
type SegmentInfoWriter struct {
	docCount uint32
	fields   []string
	seen     map[string]struct{}
}

func newSegmentInfoWriter() *SegmentInfoWriter {
	return &SegmentInfoWriter{
		fields: make([]string, 0, 5),
		seen:   make(map[string]struct{}, 5),
	}
}

func (writer *SegmentInfoWriter) Doc(docId DocumentId) {
	if uint32(docId)+1 > writer.docCount {
		writer.docCount = uint32(docId) + 1
	}
}

func (writer *SegmentInfoWriter) Field(fieldName string, value []byte) {
	if _, exists := writer.seen[fieldName]; exists {
		return
	}

	writer.seen[fieldName] = struct{}{}
	writer.fields = append(writer.fields, fieldName)
}

func (writer *SegmentInfoWriter) EndField() {
}

func (writer *SegmentInfoWriter) Term(term []byte, position uint32) {
}

func (writer *SegmentInfoWriter) Write(directory string, segmentId uint32) error {
	file, err := createFile(segmentFileName(directory, segmentId, "info"))
	if err != nil {
		return err
	}

	info := SegmentInfo{DocCount: writer.docCount, Fields: writer.fields}
	if err := json.NewEncoder(file).Encode(info); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func readSegmentInfo(directory string, segmentId uint32) (*SegmentInfo, error) {
	file, err := os.Open(segmentFileName(directory, segmentId, "info"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var info SegmentInfo
	if err := json.NewDecoder(file).Decode(&info); err != nil {
		return nil, err
	}

	return &info, nil
}
