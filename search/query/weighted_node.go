package query

import (
	"math"
	"strconv"
)

func formatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'g', -1, 64)
}

// normalizeWeights returns weight_i / sum(weights).
func normalizeWeights(operator string, weights []float64, childCount int) ([]float64, error) {
	if len(weights) != childCount {
		return nil, malformed("%s has %d weights for %d arguments", operator, len(weights), childCount)
	}

	total := 0.0
	for _, weight := range weights {
		total += weight
	}

	if total == 0 {
		return nil, malformed("%s weights sum to 0", operator)
	}

	normalized := make([]float64, len(weights))
	for i, weight := range weights {
		normalized[i] = weight / total
	}

	return normalized, nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// SumNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// SumNode adds the BM25 scores of the children on the current document. It is
// typically used to search one query across several fields.
type SumNode struct {
	combinator
}

func NewSumNode(children ...ScoreNode) *SumNode {
	return &SumNode{combinator{Children: children}}
}

func (n *SumNode) Initialize(context *ExecutionContext) error {
	if context.Model.Kind != BM25 {
		return unsupported("#sum", context.Model.Kind)
	}

	return n.initialize("#sum", context, matchMin[ScoreNode])
}

func (n *SumNode) Score() (float64, error) {
	docId, ok := n.CurrentDocument()
	if !ok {
		return 0, nil
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

		score += childScore
	}

	return score, nil
}

func (n *SumNode) DefaultScore(docId uint64) (float64, error) {
	return 0, unsupported("#sum default", n.context.Model.Kind)
}

func (n *SumNode) String() string {
	return n.format("#sum", nil)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// WAndNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// WAndNode is the Indri #and where child i gets the exponent
// Weights[i] / sum(Weights) instead of 1/n.
type WAndNode struct {
	combinator
	Weights []float64

	normalized []float64
}

func NewWAndNode(weights []float64, children ...ScoreNode) *WAndNode {
	return &WAndNode{combinator: combinator{Children: children}, Weights: weights}
}

func (n *WAndNode) Initialize(context *ExecutionContext) error {
	if context.Model.Kind != Indri {
		return unsupported("#wand", context.Model.Kind)
	}

	normalized, err := normalizeWeights("#wand", n.Weights, len(n.Children))
	if err != nil {
		return err
	}
	n.normalized = normalized

	return n.initialize("#wand", context, matchMin[ScoreNode])
}

func (n *WAndNode) Score() (float64, error) {
	docId, ok := n.CurrentDocument()
	if !ok {
		return 0, nil
	}

	score := 1.0
	for i, child := range n.Children {
		childScore, err := n.childScore(child, docId)
		if err != nil {
			return 0, err
		}

		score *= math.Pow(childScore, n.normalized[i])
	}

	return score, nil
}

func (n *WAndNode) DefaultScore(docId uint64) (float64, error) {
	score := 1.0
	for i, child := range n.Children {
		childScore, err := child.DefaultScore(docId)
		if err != nil {
			return 0, err
		}

		score *= math.Pow(childScore, n.normalized[i])
	}

	return score, nil
}

func (n *WAndNode) String() string {
	return n.format("#wand", n.Weights)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// WSumNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// WSumNode is the weighted arithmetic mean of the Indri scores of its
// children.
type WSumNode struct {
	combinator
	Weights []float64

	normalized []float64
}

func NewWSumNode(weights []float64, children ...ScoreNode) *WSumNode {
	return &WSumNode{combinator: combinator{Children: children}, Weights: weights}
}

func (n *WSumNode) Initialize(context *ExecutionContext) error {
	if context.Model.Kind != Indri {
		return unsupported("#wsum", context.Model.Kind)
	}

	normalized, err := normalizeWeights("#wsum", n.Weights, len(n.Children))
	if err != nil {
		return err
	}
	n.normalized = normalized

	return n.initialize("#wsum", context, matchMin[ScoreNode])
}

func (n *WSumNode) Score() (float64, error) {
	docId, ok := n.CurrentDocument()
	if !ok {
		return 0, nil
	}

	score := 0.0
	for i, child := range n.Children {
		childScore, err := n.childScore(child, docId)
		if err != nil {
			return 0, err
		}

		score += n.normalized[i] * childScore
	}

	return score, nil
}

func (n *WSumNode) DefaultScore(docId uint64) (float64, error) {
	score := 0.0
	for i, child := range n.Children {
		childScore, err := child.DefaultScore(docId)
		if err != nil {
			return 0, err
		}

		score += n.normalized[i] * childScore
	}

	return score, nil
}

func (n *WSumNode) String() string {
	return n.format("#wsum", n.Weights)
}
