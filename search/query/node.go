package query

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Node
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Node is the document cursor every operator implements. Cursors only move
// forward: once HasMatch returns false it never returns true again.
type Node interface {
	// Initialize must be called once, on the root, before any other method.
	Initialize(context *ExecutionContext) error
	HasMatch() bool
	// CurrentDocument returns false when the node is exhausted.
	CurrentDocument() (uint64, bool)
	// AdvancePast moves to the first document > docId.
	AdvancePast(docId uint64)
	// AdvanceTo moves to the first document >= docId.
	AdvanceTo(docId uint64)
	String() string
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Inverted
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// InvertedNode is a node backed by a materialized posting list: a term lookup
// or a proximity operator. It also has a location cursor over the positions
// of the current document.
type InvertedNode interface {
	Node
	Field() string
	PostingList() *PostingList
	CurrentPosting() (*Posting, bool)
	LocationHasMatch() bool
	CurrentLocation() (int, bool)
	AdvanceLocation()
	// AdvanceLocationPast moves to the first position > loc.
	AdvanceLocationPast(loc int)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Score
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type ScoreNode interface {
	Node
	// Score of the current document. Only valid when HasMatch is true.
	Score() (float64, error)
	// DefaultScore of a document the node does not match. Indri only.
	DefaultScore(docId uint64) (float64, error)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Match policies
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type matchPolicy func(children []ScoreNode) (uint64, bool)

// matchAll moves the children forward until they all sit on the same
// document.
func matchAll[T Node](children []T) (uint64, bool) {
	if len(children) == 0 {
		return 0, false
	}

	first := children[0]

	for {
		if !first.HasMatch() {
			return 0, false
		}

		docId, _ := first.CurrentDocument()

		aligned := true
		for _, child := range children[1:] {
			child.AdvanceTo(docId)

			if !child.HasMatch() {
				return 0, false
			}

			childDocId, _ := child.CurrentDocument()
			if childDocId != docId {
				first.AdvanceTo(childDocId)
				aligned = false
				break
			}
		}

		if aligned {
			return docId, true
		}
	}
}

// matchMin returns the smallest current document of the children that are not
// exhausted. Children are not moved.
func matchMin[T Node](children []T) (uint64, bool) {
	var minDocId uint64
	found := false

	for _, child := range children {
		if !child.HasMatch() {
			continue
		}

		docId, _ := child.CurrentDocument()
		if !found || docId < minDocId {
			minDocId = docId
			found = true
		}
	}

	return minDocId, found
}

func matchesDocument(node Node, docId uint64) bool {
	if !node.HasMatch() {
		return false
	}

	current, _ := node.CurrentDocument()
	return current == docId
}
