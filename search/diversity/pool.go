package diversity

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/larose/lynxeval/search/query"
)

// candidatePool is the shrinking set of baseline documents not selected yet.
// Selected documents are tombstoned so that the baseline keeps its order.
type candidatePool struct {
	entries []query.DocScore
	removed *roaring.Bitmap
}

func newCandidatePool(baseline *query.RankedList) *candidatePool {
	return &candidatePool{
		entries: baseline.Entries(),
		removed: roaring.NewBitmap(),
	}
}

func (p *candidatePool) Len() int {
	return len(p.entries) - int(p.removed.GetCardinality())
}

// best returns the index of the first candidate with the strictly highest
// score, in baseline order.
func (p *candidatePool) best(score func(candidate query.DocScore) float64) (int, float64, bool) {
	bestIndex := -1
	bestScore := 0.0

	for i, candidate := range p.entries {
		if p.removed.Contains(uint32(i)) {
			continue
		}

		candidateScore := score(candidate)
		if bestIndex < 0 || candidateScore > bestScore {
			bestIndex = i
			bestScore = candidateScore
		}
	}

	return bestIndex, bestScore, bestIndex >= 0
}

func (p *candidatePool) remove(i int) query.DocScore {
	p.removed.Add(uint32(i))
	return p.entries[i]
}

// remaining returns the candidates still in the pool, in baseline order.
func (p *candidatePool) remaining() []query.DocScore {
	candidates := make([]query.DocScore, 0, p.Len())
	for i, candidate := range p.entries {
		if !p.removed.Contains(uint32(i)) {
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}
