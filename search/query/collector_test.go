package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopNCollector(t *testing.T) {
	collector := NewTopNCollector(3)

	collector.Collect(1, 0.1)
	collector.Collect(2, 0.5)
	collector.Collect(3, 0.3)
	collector.Collect(4, 0.9)
	collector.Collect(5, 0.2)

	assert.Equal(t, 3, collector.Len())
	assert.Equal(t, []DocScore{{4, 0.9}, {2, 0.5}, {3, 0.3}}, collector.Get().Entries())
}

func TestTopNCollectorTiesKeepFirstCollected(t *testing.T) {
	collector := NewTopNCollector(2)

	collector.Collect(7, 1)
	collector.Collect(3, 1)
	collector.Collect(9, 1)

	assert.Equal(t, []DocScore{{7, 1}, {3, 1}}, collector.Get().Entries())
}

func TestTopNCollectorEmpty(t *testing.T) {
	collector := NewTopNCollector(0)
	collector.Collect(1, 1)

	assert.Equal(t, 0, collector.Get().Len())
}
