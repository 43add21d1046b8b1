// Package diversity re-ranks a baseline ranking so that its top documents
// cover the intents of a query, with xQuAD or PM2.
package diversity

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/larose/lynxeval/search/query"
)

var ErrInvalidOptions = errors.New("invalid diversification options")

type Algorithm int

const (
	XQuAD Algorithm = iota
	PM2
)

func (a Algorithm) String() string {
	switch a {
	case XQuAD:
		return "xQuAD"
	case PM2:
		return "PM2"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "xquad":
		return XQuAD, nil
	case "pm2":
		return PM2, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidOptions, name)
	}
}

type Options struct {
	Algorithm Algorithm
	// Lambda trades relevance (0) for intent coverage (1)
	Lambda float64
	// MaxInputRankingLength caps the baseline and every intent ranking
	MaxInputRankingLength int
	// MaxResultRankingLength caps the diversified ranking
	MaxResultRankingLength int
	// Normalize divides every score by the largest score sum, see
	// MaxScoreSum. Rankings that are not probabilities need it.
	Normalize bool
}

// Validate checks the options against the number of intents of a query.
func (o Options) Validate(intentCount int) error {
	switch {
	case o.Algorithm != XQuAD && o.Algorithm != PM2:
		return fmt.Errorf("%w: unknown algorithm %s", ErrInvalidOptions, o.Algorithm)
	case o.Lambda < 0 || o.Lambda > 1:
		return fmt.Errorf("%w: lambda %v is not in [0, 1]", ErrInvalidOptions, o.Lambda)
	case o.MaxInputRankingLength <= 0:
		return fmt.Errorf("%w: max input ranking length must be positive", ErrInvalidOptions)
	case o.MaxResultRankingLength <= 0:
		return fmt.Errorf("%w: max result ranking length must be positive", ErrInvalidOptions)
	case intentCount == 0:
		return fmt.Errorf("%w: no intent", ErrInvalidOptions)
	}

	return nil
}

// Diversify truncates and possibly normalizes copies of baseline and intents,
// so the callers' rankings are left untouched. The pool of candidates is the
// baseline in its current order, which breaks ties. The result is sorted by
// descending score.
func Diversify(baseline *query.RankedList, intents []*query.RankedList, options Options) (*query.RankedList, error) {
	if err := options.Validate(len(intents)); err != nil {
		return nil, err
	}

	baseline = baseline.Clone()
	intents = cloneAll(intents)

	Truncate(baseline, intents, options.MaxInputRankingLength)

	if options.Normalize {
		Normalize(baseline, intents)
	}

	var result *query.RankedList
	switch options.Algorithm {
	case XQuAD:
		result = xQuAD(baseline, intents, options)
	default:
		result = pm2(baseline, intents, options)
	}

	result.Sort()

	slog.Debug("diversified ranking",
		"algorithm", options.Algorithm,
		"intents", len(intents),
		"candidates", baseline.Len(),
		"results", result.Len(),
	)

	return result, nil
}

func cloneAll(rankings []*query.RankedList) []*query.RankedList {
	clones := make([]*query.RankedList, len(rankings))
	for i, ranking := range rankings {
		clones[i] = ranking.Clone()
	}

	return clones
}

// Truncate cuts the baseline and the intents to the same length:
// min(|baseline|, maxLength).
func Truncate(baseline *query.RankedList, intents []*query.RankedList, maxLength int) {
	length := min(baseline.Len(), maxLength)

	baseline.Truncate(length)
	for _, intent := range intents {
		intent.Truncate(length)
	}
}
