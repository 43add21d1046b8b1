package query

import (
	"cmp"
	"slices"
)

type DocScore struct {
	DocId uint64
	Score float64
}

// RankedList keeps documents in insertion order until Sort is called. Document
// ids are unique: adding a document twice keeps the first score.
type RankedList struct {
	entries []DocScore
	// positions[docId] is the index of the document in entries
	positions map[uint64]int
}

func NewRankedList() *RankedList {
	return &RankedList{
		entries:   make([]DocScore, 0, 100),
		positions: make(map[uint64]int, 100),
	}
}

// Add returns false when the document is already in the list.
func (r *RankedList) Add(docId uint64, score float64) bool {
	if _, exists := r.positions[docId]; exists {
		return false
	}

	r.positions[docId] = len(r.entries)
	r.entries = append(r.entries, DocScore{DocId: docId, Score: score})

	return true
}

func (r *RankedList) Collect(docId uint64, score float64) {
	r.Add(docId, score)
}

func (r *RankedList) Len() int {
	return len(r.entries)
}

func (r *RankedList) Get(i int) DocScore {
	return r.entries[i]
}

func (r *RankedList) Entries() []DocScore {
	return r.entries
}

func (r *RankedList) Contains(docId uint64) bool {
	_, exists := r.positions[docId]
	return exists
}

// Score returns 0 for a document that is not in the list.
func (r *RankedList) Score(docId uint64) float64 {
	i, exists := r.positions[docId]
	if !exists {
		return 0
	}

	return r.entries[i].Score
}

// Sort orders by descending score. Equal scores keep their insertion order.
func (r *RankedList) Sort() {
	slices.SortStableFunc(r.entries, func(a, b DocScore) int {
		return cmp.Compare(b.Score, a.Score)
	})

	r.reindex(0)
}

func (r *RankedList) Truncate(length int) {
	if length < 0 {
		length = 0
	}

	if length >= len(r.entries) {
		return
	}

	for _, entry := range r.entries[length:] {
		delete(r.positions, entry.DocId)
	}

	r.entries = r.entries[:length]
}

func (r *RankedList) Remove(i int) {
	delete(r.positions, r.entries[i].DocId)
	r.entries = slices.Delete(r.entries, i, i+1)
	r.reindex(i)
}

// Scale divides every score by divisor.
func (r *RankedList) Scale(divisor float64) {
	for i := range r.entries {
		r.entries[i].Score /= divisor
	}
}

func (r *RankedList) Clone() *RankedList {
	clone := &RankedList{
		entries:   slices.Clone(r.entries),
		positions: make(map[uint64]int, len(r.entries)),
	}
	clone.reindex(0)

	return clone
}

func (r *RankedList) reindex(from int) {
	for i := from; i < len(r.entries); i++ {
		r.positions[r.entries[i].DocId] = i
	}
}
