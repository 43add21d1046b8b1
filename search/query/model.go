package query

import (
	"fmt"
	"strings"
)

type ModelKind byte

const (
	UnrankedBoolean ModelKind = iota
	RankedBoolean
	BM25
	Indri
)

func (k ModelKind) String() string {
	switch k {
	case UnrankedBoolean:
		return "UnrankedBoolean"
	case RankedBoolean:
		return "RankedBoolean"
	case BM25:
		return "BM25"
	case Indri:
		return "Indri"
	default:
		return fmt.Sprintf("ModelKind(%d)", byte(k))
	}
}

// RetrievalModel selects the match policy and the scoring formulas of every
// node of a tree. Only the parameters of Kind are meaningful.
type RetrievalModel struct {
	Kind ModelKind

	// BM25
	K1 float64
	B  float64
	K3 float64

	// Indri
	Mu     float64
	Lambda float64
}

const (
	DefaultBM25K1      = 1.2
	DefaultBM25B       = 0.75
	DefaultBM25K3      = 500
	DefaultIndriMu     = 2500
	DefaultIndriLambda = 0.2
)

func NewUnrankedBoolean() RetrievalModel {
	return RetrievalModel{Kind: UnrankedBoolean}
}

func NewRankedBoolean() RetrievalModel {
	return RetrievalModel{Kind: RankedBoolean}
}

func NewBM25(k1, b, k3 float64) RetrievalModel {
	return RetrievalModel{Kind: BM25, K1: k1, B: b, K3: k3}
}

func NewIndri(mu, lambda float64) RetrievalModel {
	return RetrievalModel{Kind: Indri, Mu: mu, Lambda: lambda}
}

// ParseModelKind accepts the algorithm names case-insensitively.
func ParseModelKind(name string) (ModelKind, error) {
	switch strings.ToLower(name) {
	case "unrankedboolean":
		return UnrankedBoolean, nil
	case "rankedboolean":
		return RankedBoolean, nil
	case "bm25":
		return BM25, nil
	case "indri":
		return Indri, nil
	default:
		return 0, fmt.Errorf("unknown retrieval algorithm %q", name)
	}
}

func (m RetrievalModel) String() string {
	switch m.Kind {
	case BM25:
		return fmt.Sprintf("BM25(k1=%g, b=%g, k3=%g)", m.K1, m.B, m.K3)
	case Indri:
		return fmt.Sprintf("Indri(mu=%g, lambda=%g)", m.Mu, m.Lambda)
	default:
		return m.Kind.String()
	}
}

// DefaultOperator is the operator wrapping every query string evaluated with
// the model.
func (m RetrievalModel) DefaultOperator() string {
	switch m.Kind {
	case BM25:
		return "#sum"
	case Indri:
		return "#and"
	default:
		return "#or"
	}
}
