package trec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRanking(t *testing.T) {
	var buffer bytes.Buffer
	writer := NewWriter(&buffer, "run1")

	require.NoError(t, writer.WriteRanking("10", []string{"doc-a", "doc-b"}, []float64{1.5, 0.25}))
	require.NoError(t, writer.WriteRanking("11", nil, nil))
	require.NoError(t, writer.Flush())

	expected := "10 Q0 doc-a 1 1.500000000000000000 run1\n" +
		"10 Q0 doc-b 2 0.250000000000000000 run1\n" +
		"11 Q0 dummyRecord 1 0 run1\n"
	assert.Equal(t, expected, buffer.String())
}

func TestWriteRankingLengthMismatch(t *testing.T) {
	writer := NewWriter(&bytes.Buffer{}, "run1")
	assert.Error(t, writer.WriteRanking("10", []string{"doc-a"}, nil))
}

func TestReadRun(t *testing.T) {
	input := `10 Q0 doc-a 1 12.5 bm25
10 Q0 doc-b 2 3 bm25

10.1 Q0 doc-b 1 0.75 bm25
11 Q0 dummyRecord 1 0 bm25
`

	run, err := ReadRun(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "10.1", "11"}, run.QueryIds)

	entries, exists := run.Get("10")
	require.True(t, exists)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{QueryId: "10", ExternalId: "doc-a", Rank: 1, Score: 12.5, Tag: "bm25"}, entries[0])

	entries, exists = run.Get("11")
	assert.True(t, exists)
	assert.Empty(t, entries)

	_, exists = run.Get("12")
	assert.False(t, exists)

	assert.Equal(t, 12.5, run.MaxScore())
}

func TestReadRunRejectsMalformedLines(t *testing.T) {
	for _, line := range []string{"10 Q0 doc-a 1", "10 Q0 doc-a first 1.0 tag", "10 Q0 doc-a 1 high tag"} {
		_, err := ReadRun(strings.NewReader(line))
		assert.ErrorIs(t, err, ErrMalformedLine, line)
	}
}
