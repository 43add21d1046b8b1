package index

type FieldType int

// DocumentId is local to a segment. Global ids combine the segment id and the
// local id, see ToGlobalDocId.
type DocumentId uint32

const (
	TextFieldType FieldType = iota
	ByteFieldType
)

type Field struct {
	FieldType FieldType
	Name      string
	Value     []byte
}

type Document []Field

// Value returns the raw value of the first field with the given name.
func (d Document) Value(fieldName string) ([]byte, bool) {
	for _, field := range d {
		if field.Name == fieldName {
			return field.Value, true
		}
	}

	return nil, false
}
