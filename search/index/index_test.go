package index

import (
	"testing"

	"github.com/larose/lynxeval/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(id, title, body string) Document {
	return Document{
		{FieldType: ByteFieldType, Name: "id", Value: []byte(id)},
		{FieldType: TextFieldType, Name: "title", Value: []byte(title)},
		{FieldType: TextFieldType, Name: "body", Value: []byte(body)},
	}
}

func openIndex(t *testing.T, directory string) *IndexReader {
	reader, err := NewIndexReader(directory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	return reader
}

func docIdOf(t *testing.T, reader *IndexReader, externalId string) uint64 {
	docId, exists, err := reader.LookupExternalId("id", externalId)
	require.NoError(t, err)
	require.True(t, exists, externalId)

	return docId
}

func TestEmptyIndex(t *testing.T) {
	reader := openIndex(t, t.TempDir())

	postings, err := reader.Postings("body", "apple")
	require.NoError(t, err)
	assert.Equal(t, 0, postings.Len())

	total, err := reader.TotalDocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), total)
}

func TestIndexRoundTrip(t *testing.T) {
	directory := t.TempDir()
	writer := NewIndexWriter(directory)

	require.NoError(t, writer.AddDocuments([]Document{
		newDocument("d1", "Apple pie", "The apple pie recipe, with apple."),
		newDocument("d2", "Pear", "A pear is not an apple"),
	}))
	require.NoError(t, writer.AddDocuments([]Document{
		newDocument("d3", "", "apple apple apple"),
	}))

	reader := openIndex(t, directory)
	require.Len(t, reader.SegmentReaders, 2)

	total, err := reader.TotalDocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)

	d1, d2, d3 := docIdOf(t, reader, "d1"), docIdOf(t, reader, "d2"), docIdOf(t, reader, "d3")

	postings, err := reader.Postings("body", "apple")
	require.NoError(t, err)
	require.NoError(t, postings.Validate())
	require.Equal(t, 3, postings.Len())
	assert.Equal(t, uint64(6), postings.CollectionTermFrequency())

	positionsByDoc := make(map[uint64][]int)
	for i := 0; i < postings.Len(); i++ {
		positionsByDoc[postings.Get(i).DocId] = postings.Get(i).Positions
	}
	assert.Equal(t, []int{1, 5}, positionsByDoc[d1])
	assert.Equal(t, []int{5}, positionsByDoc[d2])
	assert.Equal(t, []int{0, 1, 2}, positionsByDoc[d3])

	length, err := reader.FieldLength("body", d1)
	require.NoError(t, err)
	assert.Equal(t, 6, length)

	length, err = reader.FieldLength("title", d3)
	require.NoError(t, err)
	assert.Equal(t, 0, length)

	// "The apple pie recipe with apple" + "A pear is not an apple" + "apple apple apple"
	totalLength, err := reader.TotalFieldLength("body")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), totalLength)

	docCount, err := reader.DocCountForField("title")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), docCount)

	externalId, exists, err := reader.Attribute("id", d2)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "d2", externalId)

	_, exists, err = reader.Attribute("missing", d2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteDocuments(t *testing.T) {
	directory := t.TempDir()
	writer := NewIndexWriter(directory)

	require.NoError(t, writer.AddDocuments([]Document{
		newDocument("d1", "", "apple"),
		newDocument("d2", "", "apple pie"),
		newDocument("d3", "", "pie"),
	}))

	require.NoError(t, writer.DeleteDocuments("id", [][]byte{[]byte("d2"), []byte("unknown")}))

	reader := openIndex(t, directory)

	total, err := reader.TotalDocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	postings, err := reader.Postings("body", "apple")
	require.NoError(t, err)
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, docIdOf(t, reader, "d1"), postings.Get(0).DocId)

	_, exists, err := reader.LookupExternalId("id", "d2")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, writer.DeleteDocuments("id", [][]byte{[]byte("d3")}))

	reader = openIndex(t, directory)
	total, err = reader.TotalDocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestIndexEvaluation(t *testing.T) {
	directory := t.TempDir()
	writer := NewIndexWriter(directory)

	require.NoError(t, writer.AddDocuments([]Document{
		newDocument("d1", "", "new york city"),
		newDocument("d2", "", "york is new"),
	}))

	reader := openIndex(t, directory)

	near := query.NewNearNode(1, query.NewTermNode("body", "new"), query.NewTermNode("body", "york"))
	require.NoError(t, near.Initialize(query.NewExecutionContext(reader, query.NewRankedBoolean())))

	require.True(t, near.HasMatch())
	docId, _ := near.CurrentDocument()
	assert.Equal(t, docIdOf(t, reader, "d1"), docId)

	near.AdvancePast(docId)
	assert.False(t, near.HasMatch())
}
