package diversity

import (
	"github.com/larose/lynxeval/search/query"
)

// degenerateScoreStep spaces the scores of the documents appended once no
// candidate is relevant to any intent.
const degenerateScoreStep = 0.0001

// pm2 gives every intent a quota v = |baseline| / n of the ranking. At each
// round the intent i* with the highest quotient qt_i = v / (2 s_i + 1) gets
// the seat, and the candidate d maximizing
//
//	lambda qt_i* P(d|q_i*) + (1-lambda) sum_{i != i*} qt_i P(d|q_i)
//
// is selected. Each intent is then credited with its share of P(d|q_i).
func pm2(baseline *query.RankedList, intents []*query.RankedList, options Options) *query.RankedList {
	pool := newCandidatePool(baseline)
	result := query.NewRankedList()

	quota := float64(baseline.Len()) / float64(len(intents))
	quotients := make([]float64, len(intents))
	served := make([]float64, len(intents))

	for result.Len() < options.MaxResultRankingLength {
		target := 0
		for i := range intents {
			quotients[i] = quota / (2*served[i] + 1)
			if quotients[i] > quotients[target] {
				target = i
			}
		}

		score := func(candidate query.DocScore) float64 {
			targetScore := options.Lambda * quotients[target] * intents[target].Score(candidate.DocId)

			otherScore := 0.0
			for i, intent := range intents {
				if i != target {
					otherScore += quotients[i] * intent.Score(candidate.DocId)
				}
			}

			return targetScore + (1-options.Lambda)*otherScore
		}

		index, bestScore, ok := pool.best(score)
		if !ok {
			break
		}

		selected := pool.remove(index)
		result.Add(selected.DocId, bestScore)

		total := 0.0
		for _, intent := range intents {
			total += intent.Score(selected.DocId)
		}

		if total == 0 {
			appendDegenerate(result, pool, options.MaxResultRankingLength)
			break
		}

		for i, intent := range intents {
			served[i] += intent.Score(selected.DocId) / total
		}
	}

	return result
}

// appendDegenerate fills the ranking with the remaining candidates in
// baseline order, with decreasing scores -step * index.
func appendDegenerate(result *query.RankedList, pool *candidatePool, length int) {
	for index, candidate := range pool.remaining() {
		if result.Len() >= length {
			return
		}

		result.Add(candidate.DocId, -degenerateScoreStep*float64(index))
	}
}
