package diversity

import (
	"github.com/larose/lynxeval/search/query"
)

// MaxScoreSum is the largest of the sum of the baseline scores and, for each
// intent, the sum of its scores on the documents of the baseline.
func MaxScoreSum(baseline *query.RankedList, intents []*query.RankedList) float64 {
	maxSum := 0.0
	for _, entry := range baseline.Entries() {
		maxSum += entry.Score
	}

	for _, intent := range intents {
		sum := 0.0
		for _, entry := range intent.Entries() {
			if baseline.Contains(entry.DocId) {
				sum += entry.Score
			}
		}

		maxSum = max(maxSum, sum)
	}

	return maxSum
}

// Normalize divides every score of the baseline and of the intents by
// MaxScoreSum. Rankings without a positive score are left untouched.
func Normalize(baseline *query.RankedList, intents []*query.RankedList) {
	normalizer := MaxScoreSum(baseline, intents)
	if normalizer <= 0 {
		return
	}

	baseline.Scale(normalizer)
	for _, intent := range intents {
		intent.Scale(normalizer)
	}
}

// NeedsNormalization reports whether a score of one of the rankings is not a
// probability.
func NeedsNormalization(rankings ...*query.RankedList) bool {
	for _, ranking := range rankings {
		for _, entry := range ranking.Entries() {
			if entry.Score > 1 {
				return true
			}
		}
	}

	return false
}
