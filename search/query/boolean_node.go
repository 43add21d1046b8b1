package query

import (
	"math"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// AndNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type AndNode struct {
	combinator
}

func NewAndNode(children ...ScoreNode) *AndNode {
	return &AndNode{combinator{Children: children}}
}

func (n *AndNode) Initialize(context *ExecutionContext) error {
	switch context.Model.Kind {
	case UnrankedBoolean, RankedBoolean:
		return n.initialize("#and", context, matchAll[ScoreNode])
	case Indri:
		return n.initialize("#and", context, matchMin[ScoreNode])
	default:
		return unsupported("#and", context.Model.Kind)
	}
}

func (n *AndNode) Score() (float64, error) {
	docId, ok := n.CurrentDocument()
	if !ok {
		return 0, nil
	}

	switch n.context.Model.Kind {
	case UnrankedBoolean:
		return 1.0, nil
	case RankedBoolean:
		score := math.MaxFloat64
		for _, child := range n.Children {
			if !matchesDocument(child, docId) {
				continue
			}

			childScore, err := child.Score()
			if err != nil {
				return 0, err
			}

			score = math.Min(score, childScore)
		}
		return score, nil
	case Indri:
		exponent := 1 / float64(len(n.Children))
		score := 1.0
		for _, child := range n.Children {
			childScore, err := n.childScore(child, docId)
			if err != nil {
				return 0, err
			}

			score *= math.Pow(childScore, exponent)
		}
		return score, nil
	default:
		return 0, unsupported("#and", n.context.Model.Kind)
	}
}

func (n *AndNode) DefaultScore(docId uint64) (float64, error) {
	if n.context.Model.Kind != Indri {
		return 0, unsupported("#and default", n.context.Model.Kind)
	}

	exponent := 1 / float64(len(n.Children))
	score := 1.0
	for _, child := range n.Children {
		childScore, err := child.DefaultScore(docId)
		if err != nil {
			return 0, err
		}

		score *= math.Pow(childScore, exponent)
	}

	return score, nil
}

func (n *AndNode) String() string {
	return n.format("#and", nil)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// OrNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type OrNode struct {
	combinator
}

func NewOrNode(children ...ScoreNode) *OrNode {
	return &OrNode{combinator{Children: children}}
}

func (n *OrNode) Initialize(context *ExecutionContext) error {
	switch context.Model.Kind {
	case UnrankedBoolean, RankedBoolean:
		return n.initialize("#or", context, matchMin[ScoreNode])
	default:
		return unsupported("#or", context.Model.Kind)
	}
}

// Score ignores the children that are not on the current document.
func (n *OrNode) Score() (float64, error) {
	docId, ok := n.CurrentDocument()
	if !ok {
		return 0, nil
	}

	if n.context.Model.Kind == UnrankedBoolean {
		return 1.0, nil
	}

	score := 0.0
	for _, child := range n.Children {
		if !matchesDocument(child, docId) {
			continue
		}

		childScore, err := child.Score()
		if err != nil {
			return 0, err
		}

		score = math.Max(score, childScore)
	}

	return score, nil
}

func (n *OrNode) DefaultScore(docId uint64) (float64, error) {
	return 0, unsupported("#or default", n.context.Model.Kind)
}

func (n *OrNode) String() string {
	return n.format("#or", nil)
}
