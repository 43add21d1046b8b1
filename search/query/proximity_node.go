package query

import (
	"fmt"
	"strings"
)

// evaluateProximity walks the documents shared by all children and builds a
// posting for each of them where matchPositions finds at least one match.
func evaluateProximity(children []InvertedNode, matchPositions func() []int) (*PostingList, error) {
	result := NewPostingList()

	for {
		docId, ok := matchAll(children)
		if !ok {
			return result, nil
		}

		positions := matchPositions()
		if len(positions) > 0 {
			if err := result.Append(docId, positions); err != nil {
				return nil, err
			}
		}

		for _, child := range children {
			child.AdvancePast(docId)
		}
	}
}

func formatOperator(name string, children []InvertedNode) string {
	args := make([]string, len(children))
	for i, child := range children {
		args[i] = child.String()
	}

	return name + "(" + strings.Join(args, " ") + ")"
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// NearNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// NearNode matches its arguments in order, each at most Distance positions
// after the previous one. The position of a match is the position of the last
// argument.
type NearNode struct {
	invertedCursor
	Children []InvertedNode
	Distance int
}

func NewNearNode(distance int, children ...InvertedNode) *NearNode {
	return &NearNode{Children: children, Distance: distance}
}

func (n *NearNode) Initialize(context *ExecutionContext) error {
	field, err := initializeChildren(n.operator(), context, n.Children)
	if err != nil {
		return err
	}

	postings, err := evaluateProximity(n.Children, n.matchPositions)
	if err != nil {
		return err
	}

	n.invertedCursor = invertedCursor{field: field, postings: postings}

	return nil
}

func (n *NearNode) matchPositions() []int {
	positions := make([]int, 0, 4)
	first := n.Children[0]

	for {
		currentLoc, ok := first.CurrentLocation()
		if !ok {
			return positions
		}

		matched := true
		for _, child := range n.Children[1:] {
			child.AdvanceLocationPast(currentLoc)

			loc, ok := child.CurrentLocation()
			if !ok {
				return positions
			}

			if loc-currentLoc > n.Distance {
				first.AdvanceLocation()
				matched = false
				break
			}

			currentLoc = loc
		}

		if !matched {
			continue
		}

		positions = append(positions, currentLoc)
		for _, child := range n.Children {
			child.AdvanceLocation()
		}
	}
}

func (n *NearNode) operator() string {
	return fmt.Sprintf("#near/%d", n.Distance)
}

func (n *NearNode) String() string {
	return formatOperator(n.operator(), n.Children)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// WindowNode
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// WindowNode matches its arguments in any order when they all fit in a span
// smaller than Distance. The position of a match is its last position.
type WindowNode struct {
	invertedCursor
	Children []InvertedNode
	Distance int
}

func NewWindowNode(distance int, children ...InvertedNode) *WindowNode {
	return &WindowNode{Children: children, Distance: distance}
}

func (n *WindowNode) Initialize(context *ExecutionContext) error {
	field, err := initializeChildren(n.operator(), context, n.Children)
	if err != nil {
		return err
	}

	postings, err := evaluateProximity(n.Children, n.matchPositions)
	if err != nil {
		return err
	}

	n.invertedCursor = invertedCursor{field: field, postings: postings}

	return nil
}

func (n *WindowNode) matchPositions() []int {
	positions := make([]int, 0, 4)

	for {
		minLoc, maxLoc, minIndex := 0, 0, 0

		for i, child := range n.Children {
			loc, ok := child.CurrentLocation()
			if !ok {
				return positions
			}

			if i == 0 || loc < minLoc {
				minLoc = loc
				minIndex = i
			}
			if i == 0 || loc > maxLoc {
				maxLoc = loc
			}
		}

		if maxLoc-minLoc >= n.Distance {
			n.Children[minIndex].AdvanceLocation()
			continue
		}

		positions = append(positions, maxLoc)
		for _, child := range n.Children {
			child.AdvanceLocation()
		}
	}
}

func (n *WindowNode) operator() string {
	return fmt.Sprintf("#window/%d", n.Distance)
}

func (n *WindowNode) String() string {
	return formatOperator(n.operator(), n.Children)
}
