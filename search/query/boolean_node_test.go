package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booleanStore(t *testing.T) *memoryStore {
	store := newMemoryStore(10)

	store.add(t, "body", "apple", 1, 0, 3, 8)
	store.add(t, "body", "apple", 2, 1)
	store.add(t, "body", "apple", 4, 2, 5)

	store.add(t, "body", "pie", 2, 2, 4)
	store.add(t, "body", "pie", 3, 0)
	store.add(t, "body", "pie", 4, 7)

	for docId, length := range []int{0, 10, 5, 4, 8, 3} {
		store.setLength("body", uint64(docId), length)
	}

	return store
}

func TestUnrankedBoolean(t *testing.T) {
	store := booleanStore(t)

	results := evaluate(t, NewAndNode(term("apple"), term("pie")), store, NewUnrankedBoolean())
	assert.Equal(t, []DocScore{{2, 1}, {4, 1}}, results.Entries())

	results = evaluate(t, NewOrNode(term("apple"), term("pie")), store, NewUnrankedBoolean())
	assert.Equal(t, []DocScore{{1, 1}, {2, 1}, {3, 1}, {4, 1}}, results.Entries())
}

func TestRankedBooleanAndIsMin(t *testing.T) {
	store := booleanStore(t)

	results := evaluate(t, NewAndNode(term("apple"), term("pie")), store, NewRankedBoolean())

	assert.Equal(t, []DocScore{{2, 1}, {4, 1}}, results.Entries())
}

func TestRankedBooleanOrIsMax(t *testing.T) {
	store := booleanStore(t)

	results := evaluate(t, NewOrNode(term("apple"), term("pie")), store, NewRankedBoolean())

	assert.Equal(t, []DocScore{{1, 3}, {2, 2}, {3, 1}, {4, 2}}, results.Entries())
}

func TestAndOfOneTermIsTheTerm(t *testing.T) {
	store := booleanStore(t)

	expected := evaluate(t, term("apple"), store, NewRankedBoolean())
	actual := evaluate(t, NewAndNode(term("apple")), store, NewRankedBoolean())

	assert.Equal(t, expected.Entries(), actual.Entries())
	assert.Equal(t, 3, actual.Len())
}

func TestMissingTermNeverMatches(t *testing.T) {
	store := booleanStore(t)

	results := evaluate(t, NewOrNode(term("banana")), store, NewRankedBoolean())
	assert.Equal(t, 0, results.Len())

	results = evaluate(t, NewAndNode(term("apple"), term("banana")), store, NewRankedBoolean())
	assert.Equal(t, 0, results.Len())
}

func TestBM25Sum(t *testing.T) {
	store := booleanStore(t)
	store.add(t, "title", "apple", 3, 0)
	store.setLength("title", 3, 2)
	store.setLength("title", 5, 4)

	model := NewBM25(DefaultBM25K1, DefaultBM25B, DefaultBM25K3)
	titleApple := NewTermScoreNode(NewTermNode("title", "apple"))
	results := evaluate(t, NewSumNode(term("apple"), titleApple), store, model)

	require.Equal(t, 4, results.Len())

	// body: N=10, df=3, avgdl=30/6=5
	idf := math.Log((10 - 3 + 0.5) / (3 + 0.5))
	bodyScore := func(tf, length float64) float64 {
		return idf * tf / (tf + 1.2*(0.25+0.75*length/5))
	}
	assert.InDelta(t, bodyScore(3, 10), results.Score(1), 1e-12)
	assert.InDelta(t, bodyScore(1, 5), results.Score(2), 1e-12)
	assert.InDelta(t, bodyScore(2, 8), results.Score(4), 1e-12)

	// title: df=1, avgdl=6/2=3
	titleIdf := math.Log((10 - 1 + 0.5) / (1 + 0.5))
	assert.InDelta(t, titleIdf*1/(1+1.2*(0.25+0.75*2.0/3)), results.Score(3), 1e-12)
}

func TestBM25IdfIsNotNegative(t *testing.T) {
	store := newMemoryStore(2)
	store.add(t, "body", "common", 0, 0)
	store.add(t, "body", "common", 1, 0)
	store.setLength("body", 0, 1)
	store.setLength("body", 1, 1)

	results := evaluate(t, NewSumNode(term("common")), store, NewBM25(1.2, 0.75, 500))

	assert.Equal(t, []DocScore{{0, 0}, {1, 0}}, results.Entries())
}

func indriModel() RetrievalModel {
	return NewIndri(DefaultIndriMu, DefaultIndriLambda)
}

func TestIndriLeaf(t *testing.T) {
	store := booleanStore(t)

	results := evaluate(t, NewAndNode(term("apple")), store, indriModel())
	require.Equal(t, 3, results.Len())

	// ctf=6, |C|=30
	collectionProb := 6.0 / 30
	expected := 0.8*(3+2500*collectionProb)/(10+2500) + 0.2*collectionProb
	assert.InDelta(t, expected, results.Score(1), 1e-12)
}

func TestIndriDefaultScoreIsScoreWithoutOccurrence(t *testing.T) {
	store := newMemoryStore(3)
	for tf := 1; tf <= 3; tf++ {
		positions := make([]int, tf)
		for i := range positions {
			positions[i] = i
		}
		store.add(t, "body", "apple", uint64(tf-1), positions...)
		store.setLength("body", uint64(tf-1), 10)
	}

	node := term("apple")
	require.NoError(t, node.Initialize(NewExecutionContext(store, indriModel())))

	previous, err := node.DefaultScore(0)
	require.NoError(t, err)

	for node.HasMatch() {
		docId, _ := node.CurrentDocument()
		score, err := node.Score()
		require.NoError(t, err)

		assert.Greater(t, score, previous)
		previous = score
		node.AdvancePast(docId)
	}

	// Same formula with tf=0
	collectionProb := 6.0 / 30
	defaultScore, err := node.DefaultScore(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.8*(2500*collectionProb)/(10+2500)+0.2*collectionProb, defaultScore, 1e-12)
}

func TestIndriAndUsesDefaultScores(t *testing.T) {
	store := booleanStore(t)

	apple := term("apple")
	pie := term("pie")
	root := NewAndNode(apple, pie)
	results := evaluate(t, root, store, indriModel())

	// Every document having one of the terms matches
	assert.Equal(t, 4, results.Len())

	appleOnly := results.Score(1)
	pieDefault, err := pie.DefaultScore(1)
	require.NoError(t, err)

	context := NewExecutionContext(store, indriModel())
	appleAlone := term("apple")
	require.NoError(t, appleAlone.Initialize(context))
	appleScore, err := appleAlone.Score()
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(appleScore*pieDefault), appleOnly, 1e-12)
}

func TestIndriWeightedOperators(t *testing.T) {
	store := booleanStore(t)

	equal := evaluate(t, NewAndNode(term("apple"), term("pie")), store, indriModel())
	weighted := evaluate(t, NewWAndNode([]float64{2, 2}, term("apple"), term("pie")), store, indriModel())

	require.Equal(t, equal.Len(), weighted.Len())
	for _, entry := range equal.Entries() {
		assert.InDelta(t, entry.Score, weighted.Score(entry.DocId), 1e-12)
	}

	sum := evaluate(t, NewWSumNode([]float64{3, 1}, term("apple"), term("pie")), store, indriModel())
	require.Equal(t, 4, sum.Len())

	apple := term("apple")
	pie := term("pie")
	require.NoError(t, NewAndNode(apple, pie).Initialize(NewExecutionContext(store, indriModel())))
	appleScore, err := apple.Score()
	require.NoError(t, err)
	pieDefault, err := pie.DefaultScore(1)
	require.NoError(t, err)

	assert.InDelta(t, 0.75*appleScore+0.25*pieDefault, sum.Score(1), 1e-12)
}

func TestWeightCountMustMatchArguments(t *testing.T) {
	store := booleanStore(t)

	root := NewWSumNode([]float64{1}, term("apple"), term("pie"))
	err := root.Initialize(NewExecutionContext(store, indriModel()))

	assert.ErrorIs(t, err, ErrMalformedQuery)
}

func TestUnsupportedCombinations(t *testing.T) {
	store := booleanStore(t)

	tests := []struct {
		node  ScoreNode
		model RetrievalModel
	}{
		{NewOrNode(term("apple")), indriModel()},
		{NewOrNode(term("apple")), NewBM25(1.2, 0.75, 500)},
		{NewSumNode(term("apple")), indriModel()},
		{NewSumNode(term("apple")), NewRankedBoolean()},
		{NewAndNode(term("apple")), NewBM25(1.2, 0.75, 500)},
		{NewWAndNode([]float64{1}, term("apple")), NewRankedBoolean()},
		{NewWSumNode([]float64{1}, term("apple")), NewBM25(1.2, 0.75, 500)},
	}

	for _, test := range tests {
		err := test.node.Initialize(NewExecutionContext(store, test.model))

		var unsupportedErr *UnsupportedCombinationError
		assert.ErrorAs(t, err, &unsupportedErr, test.node.String())
		assert.ErrorIs(t, err, ErrUnsupportedCombination)
		assert.Equal(t, test.model.Kind, unsupportedErr.Model)
	}
}

func TestDefaultScoreRequiresIndri(t *testing.T) {
	store := booleanStore(t)

	node := term("apple")
	require.NoError(t, node.Initialize(NewExecutionContext(store, NewBM25(1.2, 0.75, 500))))

	_, err := node.DefaultScore(1)
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
}

func TestOperatorWithoutArguments(t *testing.T) {
	store := booleanStore(t)

	err := NewAndNode().Initialize(NewExecutionContext(store, NewRankedBoolean()))
	assert.ErrorIs(t, err, ErrMalformedQuery)

	err = NewNearNode(1).Initialize(NewExecutionContext(store, NewRankedBoolean()))
	assert.ErrorIs(t, err, ErrMalformedQuery)
}
