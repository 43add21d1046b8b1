package diversity

import (
	"github.com/larose/lynxeval/search/query"
)

// xQuAD selects at each round the candidate d maximizing
//
//	(1-lambda) P(d|q) + lambda sum_i 1/n P(d|q_i) prod_{s selected} (1 - P(s|q_i))
//
// The product only depends on the intent, so it is kept per intent and
// updated after each selection.
func xQuAD(baseline *query.RankedList, intents []*query.RankedList, options Options) *query.RankedList {
	pool := newCandidatePool(baseline)
	result := query.NewRankedList()

	intentWeight := 1 / float64(len(intents))

	coverage := make([]float64, len(intents))
	for i := range coverage {
		coverage[i] = 1
	}

	score := func(candidate query.DocScore) float64 {
		relevance := (1 - options.Lambda) * candidate.Score

		novelty := 0.0
		for i, intent := range intents {
			novelty += intentWeight * intent.Score(candidate.DocId) * coverage[i]
		}

		return relevance + options.Lambda*novelty
	}

	for result.Len() < options.MaxResultRankingLength {
		index, bestScore, ok := pool.best(score)
		if !ok {
			break
		}

		selected := pool.remove(index)
		result.Add(selected.DocId, bestScore)

		for i, intent := range intents {
			coverage[i] *= 1 - intent.Score(selected.DocId)
		}
	}

	return result
}
