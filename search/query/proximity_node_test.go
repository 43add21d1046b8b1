package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proximityPostings(t *testing.T, store Store, node InvertedNode) *PostingList {
	require.NoError(t, node.Initialize(NewExecutionContext(store, NewRankedBoolean())))

	postings := node.PostingList()
	require.NoError(t, postings.Validate())

	return postings
}

func TestNearOrderedGap(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 5, 10)
	store.add(t, "body", "b", 1, 6, 11)

	postings := proximityPostings(t, store, NewNearNode(1, NewTermNode("body", "a"), NewTermNode("body", "b")))
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, uint64(1), postings.Get(0).DocId)
	assert.Equal(t, []int{6, 11}, postings.Get(0).Positions)

	postings = proximityPostings(t, store, NewNearNode(0, NewTermNode("body", "a"), NewTermNode("body", "b")))
	assert.Equal(t, 0, postings.Len())
}

func TestNearIsOrdered(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 3)
	store.add(t, "body", "b", 1, 2)

	postings := proximityPostings(t, store, NewNearNode(5, NewTermNode("body", "a"), NewTermNode("body", "b")))
	assert.Equal(t, 0, postings.Len())
}

func TestNearThreeTermsAcrossDocuments(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "new", 1, 0, 7)
	store.add(t, "body", "new", 2, 4)
	store.add(t, "body", "new", 4, 1)
	store.add(t, "body", "york", 1, 1, 9)
	store.add(t, "body", "york", 4, 2)
	store.add(t, "body", "city", 1, 2, 12)
	store.add(t, "body", "city", 2, 5)
	store.add(t, "body", "city", 4, 3)

	node := NewNearNode(2,
		NewTermNode("body", "new"),
		NewTermNode("body", "york"),
		NewTermNode("body", "city"),
	)

	postings := proximityPostings(t, store, node)
	require.Equal(t, 2, postings.Len())

	assert.Equal(t, uint64(1), postings.Get(0).DocId)
	// 7 9 12: the last gap is 3
	assert.Equal(t, []int{2}, postings.Get(0).Positions)

	assert.Equal(t, uint64(4), postings.Get(1).DocId)
	assert.Equal(t, []int{3}, postings.Get(1).Positions)
}

func TestNearMatchesDoNotOverlap(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 1, 2)
	store.add(t, "body", "b", 1, 3)

	postings := proximityPostings(t, store, NewNearNode(2, NewTermNode("body", "a"), NewTermNode("body", "b")))
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, []int{3}, postings.Get(0).Positions)
}

func TestWindowSpan(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 1)
	store.add(t, "body", "b", 1, 2)
	store.add(t, "body", "c", 1, 3)

	children := func() []InvertedNode {
		return []InvertedNode{
			NewTermNode("body", "a"),
			NewTermNode("body", "b"),
			NewTermNode("body", "c"),
		}
	}

	postings := proximityPostings(t, store, NewWindowNode(3, children()...))
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, []int{3}, postings.Get(0).Positions)

	postings = proximityPostings(t, store, NewWindowNode(2, children()...))
	assert.Equal(t, 0, postings.Len())
}

func TestWindowIsUnordered(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 2, 10, 30)
	store.add(t, "body", "b", 2, 8, 20, 31)

	postings := proximityPostings(t, store, NewWindowNode(3, NewTermNode("body", "a"), NewTermNode("body", "b")))
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, uint64(2), postings.Get(0).DocId)
	assert.Equal(t, []int{10, 31}, postings.Get(0).Positions)
}

func TestNestedProximity(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 0, 10)
	store.add(t, "body", "b", 1, 1, 11)
	store.add(t, "body", "c", 1, 12)

	node := NewNearNode(1,
		NewNearNode(1, NewTermNode("body", "a"), NewTermNode("body", "b")),
		NewTermNode("body", "c"),
	)

	postings := proximityPostings(t, store, node)
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, []int{12}, postings.Get(0).Positions)
}

func TestProximityRequiresOneField(t *testing.T) {
	store := newMemoryStore(10)

	node := NewWindowNode(3, NewTermNode("body", "a"), NewTermNode("title", "b"))
	err := node.Initialize(NewExecutionContext(store, NewRankedBoolean()))
	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestNearScoreIsMatchCount(t *testing.T) {
	store := newMemoryStore(10)
	store.add(t, "body", "a", 1, 5, 10)
	store.add(t, "body", "b", 1, 6, 11)

	root := NewOrNode(NewTermScoreNode(NewNearNode(1, NewTermNode("body", "a"), NewTermNode("body", "b"))))
	results := evaluate(t, root, store, NewRankedBoolean())

	require.Equal(t, 1, results.Len())
	assert.Equal(t, 2.0, results.Score(1))
}
