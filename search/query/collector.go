package query

import (
	"container/heap"
)

type Collector interface {
	Collect(docId uint64, score float64)
}

// TopNCollector keeps the topN best documents. When scores are equal the
// document collected first wins.
type TopNCollector struct {
	topN     int
	sequence uint64
	minHeap  *Heap
}

func NewTopNCollector(topN int) *TopNCollector {
	return &TopNCollector{
		topN:    topN,
		minHeap: NewMinHeap(),
	}
}

func (c *TopNCollector) Collect(docId uint64, score float64) {
	if c.topN <= 0 {
		return
	}

	item := &KeyValuePair{
		Key:      score,
		Sequence: c.sequence,
		Value:    DocScore{DocId: docId, Score: score},
	}
	c.sequence++

	if c.minHeap.Len() < c.topN {
		heap.Push(c.minHeap, item)
		return
	}

	if score > c.minHeap.items[0].Key {
		c.minHeap.items[0] = item
		heap.Fix(c.minHeap, 0)
	}
}

func (c *TopNCollector) Len() int {
	return c.minHeap.Len()
}

// Get empties the collector and returns the documents by descending score.
func (c *TopNCollector) Get() *RankedList {
	results := make([]DocScore, c.minHeap.Len())

	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(c.minHeap).(*KeyValuePair).Value
	}

	rankedList := NewRankedList()
	for _, result := range results {
		rankedList.Add(result.DocId, result.Score)
	}

	return rankedList
}
