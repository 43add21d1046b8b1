package query

import (
	"math"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermScoreNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// TermScoreNode turns the posting list of an inverted node into document
// scores.
type TermScoreNode struct {
	Child   InvertedNode
	context *ExecutionContext

	// Document independent values, computed once
	idf            float64
	queryWeight    float64
	avgFieldLength float64
	collectionProb float64
}

func NewTermScoreNode(child InvertedNode) *TermScoreNode {
	return &TermScoreNode{Child: child}
}

func (t *TermScoreNode) Initialize(context *ExecutionContext) error {
	t.context = context

	if err := t.Child.Initialize(context); err != nil {
		return err
	}

	model := context.Model
	postings := t.Child.PostingList()

	switch model.Kind {
	case UnrankedBoolean, RankedBoolean:
		return nil
	case BM25:
		totalDocCount, err := context.TotalDocCount()
		if err != nil {
			return err
		}

		stats, err := context.FieldStats(t.Child.Field())
		if err != nil {
			return err
		}

		docFreq := float64(postings.DocumentFrequency())
		t.idf = math.Max(0, math.Log((float64(totalDocCount)-docFreq+0.5)/(docFreq+0.5)))
		// Query term frequency is always 1
		t.queryWeight = (model.K3 + 1) * 1 / (model.K3 + 1)
		if stats.DocCount > 0 {
			t.avgFieldLength = float64(stats.TotalFieldLength) / float64(stats.DocCount)
		}
		return nil
	case Indri:
		stats, err := context.FieldStats(t.Child.Field())
		if err != nil {
			return err
		}

		if stats.TotalFieldLength > 0 {
			t.collectionProb = float64(postings.CollectionTermFrequency()) / float64(stats.TotalFieldLength)
		}
		return nil
	default:
		return unsupported("#score", model.Kind)
	}
}

func (t *TermScoreNode) HasMatch() bool {
	return t.Child.HasMatch()
}

func (t *TermScoreNode) CurrentDocument() (uint64, bool) {
	return t.Child.CurrentDocument()
}

func (t *TermScoreNode) AdvancePast(docId uint64) {
	t.Child.AdvancePast(docId)
}

func (t *TermScoreNode) AdvanceTo(docId uint64) {
	t.Child.AdvanceTo(docId)
}

func (t *TermScoreNode) Score() (float64, error) {
	posting, ok := t.Child.CurrentPosting()
	if !ok {
		return 0, nil
	}

	model := t.context.Model
	termFreq := float64(posting.TermFreq())

	switch model.Kind {
	case UnrankedBoolean:
		return 1.0, nil
	case RankedBoolean:
		return termFreq, nil
	case BM25:
		fieldLength, err := t.context.FieldLength(t.Child.Field(), posting.DocId)
		if err != nil {
			return 0, err
		}

		lengthNorm := 1 - model.B
		if t.avgFieldLength > 0 {
			lengthNorm += model.B * float64(fieldLength) / t.avgFieldLength
		}

		termWeight := termFreq / (termFreq + model.K1*lengthNorm)
		return t.idf * termWeight * t.queryWeight, nil
	case Indri:
		return t.indriScore(termFreq, posting.DocId)
	default:
		return 0, unsupported("#score", model.Kind)
	}
}

func (t *TermScoreNode) DefaultScore(docId uint64) (float64, error) {
	if t.context.Model.Kind != Indri {
		return 0, unsupported("#score default", t.context.Model.Kind)
	}

	return t.indriScore(0, docId)
}

// indriScore is the Dirichlet smoothed probability mixed with the collection
// probability.
func (t *TermScoreNode) indriScore(termFreq float64, docId uint64) (float64, error) {
	fieldLength, err := t.context.FieldLength(t.Child.Field(), docId)
	if err != nil {
		return 0, err
	}

	model := t.context.Model
	docProb := (termFreq + model.Mu*t.collectionProb) / (float64(fieldLength) + model.Mu)

	return (1-model.Lambda)*docProb + model.Lambda*t.collectionProb, nil
}

func (t *TermScoreNode) String() string {
	return "#score(" + t.Child.String() + ")"
}
