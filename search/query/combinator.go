package query

import (
	"strings"
)

// combinator holds the document cursor shared by the score operators. The
// current document is the one chosen by the match policy, it is recomputed
// after every move.
type combinator struct {
	Children []ScoreNode

	context *ExecutionContext
	policy  matchPolicy

	cached  bool
	matched bool
	docId   uint64
}

func (c *combinator) initialize(operator string, context *ExecutionContext, policy matchPolicy) error {
	if len(c.Children) == 0 {
		return malformed("%s without arguments", operator)
	}

	for _, child := range c.Children {
		if err := child.Initialize(context); err != nil {
			return err
		}
	}

	c.context = context
	c.policy = policy
	c.cached = false

	return nil
}

func (c *combinator) HasMatch() bool {
	if !c.cached {
		c.docId, c.matched = c.policy(c.Children)
		c.cached = true
	}

	return c.matched
}

func (c *combinator) CurrentDocument() (uint64, bool) {
	if !c.HasMatch() {
		return 0, false
	}

	return c.docId, true
}

func (c *combinator) AdvancePast(docId uint64) {
	for _, child := range c.Children {
		child.AdvancePast(docId)
	}
	c.cached = false
}

func (c *combinator) AdvanceTo(docId uint64) {
	for _, child := range c.Children {
		child.AdvanceTo(docId)
	}
	c.cached = false
}

// childScore is the score of a child matching docId, or its default score.
func (c *combinator) childScore(child ScoreNode, docId uint64) (float64, error) {
	if matchesDocument(child, docId) {
		return child.Score()
	}

	return child.DefaultScore(docId)
}

func (c *combinator) format(operator string, weights []float64) string {
	var builder strings.Builder
	builder.WriteString(operator)
	builder.WriteByte('(')

	for i, child := range c.Children {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if weights != nil {
			builder.WriteString(formatWeight(weights[i]))
			builder.WriteByte(' ')
		}
		builder.WriteString(child.String())
	}

	builder.WriteByte(')')
	return builder.String()
}
