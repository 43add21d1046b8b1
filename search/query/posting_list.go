package query

import (
	"errors"
	"fmt"
)

type Posting struct {
	DocId uint64
	// Positions in the field token stream of the document, strictly increasing
	Positions []int
}

func (p *Posting) TermFreq() int {
	return len(p.Positions)
}

// PostingList is sorted by document id. It is never modified once the node
// that built it has been initialized.
type PostingList struct {
	postings           []Posting
	collectionTermFreq uint64
}

var (
	errDocumentOutOfOrder = errors.New("postings must be appended in strictly increasing document order")
	errPositionOutOfOrder = errors.New("positions must be strictly increasing")
)

func NewPostingList() *PostingList {
	return &PostingList{postings: make([]Posting, 0, 16)}
}

// Append takes ownership of positions.
func (l *PostingList) Append(docId uint64, positions []int) error {
	if n := len(l.postings); n > 0 && l.postings[n-1].DocId >= docId {
		return fmt.Errorf("document %d after %d: %w", docId, l.postings[n-1].DocId, errDocumentOutOfOrder)
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return fmt.Errorf("document %d: %w", docId, errPositionOutOfOrder)
		}
	}

	if len(positions) > 0 && positions[0] < 0 {
		return fmt.Errorf("document %d: negative position %d", docId, positions[0])
	}

	l.postings = append(l.postings, Posting{DocId: docId, Positions: positions})
	l.collectionTermFreq += uint64(len(positions))

	return nil
}

func (l *PostingList) Len() int {
	return len(l.postings)
}

func (l *PostingList) Get(i int) *Posting {
	return &l.postings[i]
}

func (l *PostingList) DocumentFrequency() int {
	return len(l.postings)
}

func (l *PostingList) CollectionTermFrequency() uint64 {
	return l.collectionTermFreq
}

// Validate checks the ordering invariants of the whole list.
func (l *PostingList) Validate() error {
	check := NewPostingList()
	for _, posting := range l.postings {
		if err := check.Append(posting.DocId, posting.Positions); err != nil {
			return err
		}
	}

	return nil
}
