package query

// invertedCursor implements the document and location cursors of the nodes
// backed by a posting list.
type invertedCursor struct {
	field    string
	postings *PostingList
	docIndex int
	locIndex int
}

func (c *invertedCursor) Field() string {
	return c.field
}

func (c *invertedCursor) PostingList() *PostingList {
	return c.postings
}

// HasMatch follows the match first policy.
func (c *invertedCursor) HasMatch() bool {
	return c.postings != nil && c.docIndex < c.postings.Len()
}

func (c *invertedCursor) CurrentDocument() (uint64, bool) {
	if !c.HasMatch() {
		return 0, false
	}

	return c.postings.Get(c.docIndex).DocId, true
}

func (c *invertedCursor) CurrentPosting() (*Posting, bool) {
	if !c.HasMatch() {
		return nil, false
	}

	return c.postings.Get(c.docIndex), true
}

func (c *invertedCursor) AdvancePast(docId uint64) {
	c.advance(func(current uint64) bool { return current <= docId })
}

func (c *invertedCursor) AdvanceTo(docId uint64) {
	c.advance(func(current uint64) bool { return current < docId })
}

func (c *invertedCursor) advance(skip func(current uint64) bool) {
	if c.postings == nil {
		return
	}

	moved := false
	for c.docIndex < c.postings.Len() && skip(c.postings.Get(c.docIndex).DocId) {
		c.docIndex++
		moved = true
	}

	if moved {
		c.locIndex = 0
	}
}

func (c *invertedCursor) LocationHasMatch() bool {
	posting, ok := c.CurrentPosting()
	return ok && c.locIndex < len(posting.Positions)
}

func (c *invertedCursor) CurrentLocation() (int, bool) {
	if !c.LocationHasMatch() {
		return 0, false
	}

	posting, _ := c.CurrentPosting()
	return posting.Positions[c.locIndex], true
}

func (c *invertedCursor) AdvanceLocation() {
	if c.LocationHasMatch() {
		c.locIndex++
	}
}

func (c *invertedCursor) AdvanceLocationPast(loc int) {
	for c.LocationHasMatch() {
		current, _ := c.CurrentLocation()
		if current > loc {
			return
		}
		c.locIndex++
	}
}

// initializeChildren initializes proximity arguments, which must all be
// inverted nodes on the same field.
func initializeChildren(operator string, context *ExecutionContext, children []InvertedNode) (string, error) {
	if len(children) == 0 {
		return "", malformed("%s without arguments", operator)
	}

	for _, child := range children {
		if err := child.Initialize(context); err != nil {
			return "", err
		}
	}

	field := children[0].Field()
	for _, child := range children[1:] {
		if child.Field() != field {
			return "", malformed("%s arguments on fields %q and %q", operator, field, child.Field())
		}
	}

	return field, nil
}
