package query

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// TermNode reads the posting list of one term of one field. A term missing from
// the store never matches.
type TermNode struct {
	invertedCursor
	Term string
}

func NewTermNode(field, term string) *TermNode {
	return &TermNode{
		invertedCursor: invertedCursor{field: field},
		Term:           term,
	}
}

func (t *TermNode) Initialize(context *ExecutionContext) error {
	postings, err := context.Postings(t.field, t.Term)
	if err != nil {
		return err
	}

	t.postings = postings
	t.docIndex = 0
	t.locIndex = 0

	return nil
}

func (t *TermNode) String() string {
	return t.Term + "." + t.field
}
