package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	docCount uint64
	// postings[field][term]
	postings map[string]map[string]*PostingList
	// lengths[field][docId]
	lengths map[string]map[uint64]int
}

func newMemoryStore(docCount uint64) *memoryStore {
	return &memoryStore{
		docCount: docCount,
		postings: make(map[string]map[string]*PostingList),
		lengths:  make(map[string]map[uint64]int),
	}
}

// add must be called in increasing document order for a given term.
func (s *memoryStore) add(t *testing.T, field, term string, docId uint64, positions ...int) {
	terms, exists := s.postings[field]
	if !exists {
		terms = make(map[string]*PostingList)
		s.postings[field] = terms
	}

	postings, exists := terms[term]
	if !exists {
		postings = NewPostingList()
		terms[term] = postings
	}

	require.NoError(t, postings.Append(docId, positions))
}

func (s *memoryStore) setLength(field string, docId uint64, length int) {
	lengths, exists := s.lengths[field]
	if !exists {
		lengths = make(map[uint64]int)
		s.lengths[field] = lengths
	}

	lengths[docId] = length
}

func (s *memoryStore) Postings(field, term string) (*PostingList, error) {
	return s.postings[field][term], nil
}

func (s *memoryStore) FieldLength(field string, docId uint64) (int, error) {
	return s.lengths[field][docId], nil
}

func (s *memoryStore) TotalFieldLength(field string) (uint64, error) {
	total := uint64(0)
	for _, length := range s.lengths[field] {
		total += uint64(length)
	}

	return total, nil
}

func (s *memoryStore) DocCountForField(field string) (uint64, error) {
	return uint64(len(s.lengths[field])), nil
}

func (s *memoryStore) TotalDocCount() (uint64, error) {
	return s.docCount, nil
}

func evaluate(t *testing.T, root ScoreNode, store Store, model RetrievalModel) *RankedList {
	require.NoError(t, root.Initialize(NewExecutionContext(store, model)))

	results := NewRankedList()
	for root.HasMatch() {
		docId, ok := root.CurrentDocument()
		require.True(t, ok)

		score, err := root.Score()
		require.NoError(t, err)

		require.True(t, results.Add(docId, score))
		root.AdvancePast(docId)
	}

	return results
}

func term(text string) *TermScoreNode {
	return NewTermScoreNode(NewTermNode("body", text))
}
