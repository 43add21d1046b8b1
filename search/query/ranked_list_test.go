package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankedListKeepsFirstScore(t *testing.T) {
	list := NewRankedList()

	assert.True(t, list.Add(4, 0.5))
	assert.False(t, list.Add(4, 0.9))

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, 0.5, list.Score(4))
	assert.Equal(t, 0.0, list.Score(5))
	assert.False(t, list.Contains(5))
}

func TestRankedListSortIsStable(t *testing.T) {
	list := NewRankedList()
	list.Add(1, 0.2)
	list.Add(2, 0.7)
	list.Add(3, 0.2)
	list.Add(4, 0.9)

	list.Sort()

	assert.Equal(t, []DocScore{{4, 0.9}, {2, 0.7}, {1, 0.2}, {3, 0.2}}, list.Entries())
	assert.Equal(t, 0.2, list.Score(3))
}

func TestRankedListTruncateAndRemove(t *testing.T) {
	list := NewRankedList()
	for docId := uint64(0); docId < 5; docId++ {
		list.Add(docId, float64(10-docId))
	}

	list.Truncate(3)
	assert.Equal(t, 3, list.Len())
	assert.False(t, list.Contains(3))

	list.Remove(0)
	assert.Equal(t, []DocScore{{1, 9}, {2, 8}}, list.Entries())
	assert.Equal(t, 8.0, list.Score(2))
	assert.False(t, list.Contains(0))

	list.Truncate(10)
	assert.Equal(t, 2, list.Len())
}

func TestRankedListCloneAndScale(t *testing.T) {
	list := NewRankedList()
	list.Add(1, 2)
	list.Add(2, 4)

	clone := list.Clone()
	clone.Scale(4)

	assert.Equal(t, 0.5, clone.Score(1))
	assert.Equal(t, 1.0, clone.Score(2))
	assert.Equal(t, 2.0, list.Score(1))
}
