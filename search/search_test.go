package search_test

import (
	"testing"

	"github.com/larose/lynxeval/search"
	"github.com/larose/lynxeval/search/index"
	"github.com/larose/lynxeval/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(id, title, body string) index.Document {
	return index.Document{
		{FieldType: index.ByteFieldType, Name: "id", Value: []byte(id)},
		{FieldType: index.TextFieldType, Name: "title", Value: []byte(title)},
		{FieldType: index.TextFieldType, Name: "body", Value: []byte(body)},
	}
}

// initSimpleIndex writes three documents in one segment, so that d1 < d2 < d3.
func initSimpleIndex(t *testing.T) string {
	directory := t.TempDir()

	indexWriter := index.NewIndexWriter(directory)
	require.NoError(t, indexWriter.AddDocuments([]index.Document{
		newDocument("d1", "Apple pie", "Apple pie recipe, with apple."),
		newDocument("d2", "Juice", "apple juice"),
		newDocument("d3", "Juice", "orange juice"),
	}))

	return directory
}

func openIndex(t *testing.T, directory string) *index.IndexReader {
	indexReader, err := index.NewIndexReader(directory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = indexReader.Close() })

	return indexReader
}

func externalIds(t *testing.T, indexReader *index.IndexReader, results *query.RankedList) []string {
	ids := make([]string, 0, results.Len())
	for _, entry := range results.Entries() {
		id, exists, err := indexReader.Attribute("id", entry.DocId)
		require.NoError(t, err)
		require.True(t, exists)

		ids = append(ids, id)
	}

	return ids
}

func parse(t *testing.T, queryString string, model query.RetrievalModel) query.ScoreNode {
	root, err := query.NewParser(query.DefaultField, "title").Parse(queryString, model)
	require.NoError(t, err)

	return root
}

func TestSearchTerm(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewRankedBoolean()

	results, err := search.Search(parse(t, "apple", model), indexReader, model)
	require.NoError(t, err)

	assert.Equal(t, []string{"d1", "d2"}, externalIds(t, indexReader, results))
	assert.Equal(t, 2.0, results.Get(0).Score)
	assert.Equal(t, 1.0, results.Get(1).Score)
}

func TestSearchAcrossTwoFields(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewUnrankedBoolean()

	results, err := search.Search(parse(t, "juice.title pie", model), indexReader, model)
	require.NoError(t, err)

	assert.Equal(t, []string{"d1", "d2", "d3"}, externalIds(t, indexReader, results))
	for _, entry := range results.Entries() {
		assert.Equal(t, 1.0, entry.Score)
	}
}

func TestEvaluateTopN(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewRankedBoolean()

	collector := query.NewTopNCollector(2)
	require.NoError(t, search.Evaluate(parse(t, "juice", model), indexReader, model, collector))

	// Equal scores: the first document collected wins
	results := collector.Get()
	assert.Equal(t, []string{"d2", "d3"}, externalIds(t, indexReader, results))
}

func TestEvaluateNear(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewRankedBoolean()

	results, err := search.Search(parse(t, "#near/1(apple pie)", model), indexReader, model)
	require.NoError(t, err)

	assert.Equal(t, []string{"d1"}, externalIds(t, indexReader, results))
	assert.Equal(t, 1.0, results.Get(0).Score)
}

func TestEvaluateBM25(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewBM25(query.DefaultBM25K1, query.DefaultBM25B, query.DefaultBM25K3)

	results, err := search.Search(parse(t, "orange", model), indexReader, model)
	require.NoError(t, err)

	require.Equal(t, 1, results.Len())
	assert.Greater(t, results.Get(0).Score, 0.0)
}

func TestEvaluateQueryWithoutTerms(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewRankedBoolean()

	results, err := search.Search(parse(t, "?!", model), indexReader, model)
	require.NoError(t, err)
	assert.Equal(t, 0, results.Len())
}

func TestEvaluateUnsupportedCombination(t *testing.T) {
	indexReader := openIndex(t, initSimpleIndex(t))
	model := query.NewIndri(query.DefaultIndriMu, query.DefaultIndriLambda)

	_, err := search.Search(parse(t, "#or(apple juice)", model), indexReader, model)
	assert.ErrorIs(t, err, query.ErrUnsupportedCombination)

	var combinationErr *query.UnsupportedCombinationError
	require.ErrorAs(t, err, &combinationErr)
	assert.Equal(t, query.Indri, combinationErr.Model)
}

func TestSearchDeleteDocument(t *testing.T) {
	directory := initSimpleIndex(t)

	indexWriter := index.NewIndexWriter(directory)
	require.NoError(t, indexWriter.DeleteDocuments("id", [][]byte{[]byte("d1")}))

	indexReader := openIndex(t, directory)
	model := query.NewRankedBoolean()

	results, err := search.Search(parse(t, "apple", model), indexReader, model)
	require.NoError(t, err)

	assert.Equal(t, []string{"d2"}, externalIds(t, indexReader, results))
}
