package index

// Caller calls in order:
// - Doc()
// - Field()
// - Term()
// - Term()
// - ...
// - EndField()
// - Field()
// - ...
// - Doc()
// - ...
// - Write()
//
// Term positions restart at 0 for every field of every document.
type SegmentComponentWriter interface {
	Doc(docId DocumentId)
	Field(fieldName string, value []byte)
	EndField()
	Term(term []byte, position uint32)
	Write(directory string, segmentId uint32) error
}
