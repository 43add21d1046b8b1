package query

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/larose/lynxeval/search/analysis"
)

const DefaultField = "body"

// Parser builds operator trees from query strings such as
//
//	#and(#near/1(new york) city.title)
//	#wsum(0.7 apple 0.3 #window/8(apple pie))
//
// A term is word or word.field. Terms are normalized with the tokenizer used
// at indexing time: a word may produce several terms or none.
type Parser struct {
	DefaultField string
	// Fields is the set of field suffixes recognized in word.field
	Fields map[string]struct{}
}

func NewParser(defaultField string, fields ...string) *Parser {
	parser := &Parser{
		DefaultField: defaultField,
		Fields:       make(map[string]struct{}, len(fields)+1),
	}

	parser.Fields[defaultField] = struct{}{}
	for _, field := range fields {
		parser.Fields[strings.ToLower(field)] = struct{}{}
	}

	return parser
}

// Parse wraps queryString in the default operator of the model. A query
// without any term gives an operator without arguments, which never matches.
func (p *Parser) Parse(queryString string, model RetrievalModel) (ScoreNode, error) {
	tokens := lex(model.DefaultOperator() + "(" + queryString + ")")

	state := &parserState{parser: p, tokens: tokens}

	operator, _ := state.next()
	node, err := state.parseOperator(operator)
	if err != nil {
		return nil, err
	}

	if token, ok := state.next(); ok {
		return nil, malformed("unexpected %q after the end of the query", token)
	}

	scoreNode, ok := node.(ScoreNode)
	if !ok {
		return nil, malformed("%s is not a score operator", node)
	}

	return scoreNode, nil
}

// lex splits on spaces and around parentheses.
func lex(input string) []string {
	tokens := make([]string, 0, 16)
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, input[start:end])
			start = -1
		}
	}

	for i, r := range input {
		switch {
		case r == '(' || r == ')':
			flush(i)
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(input))

	return tokens
}

type parserState struct {
	parser *Parser
	tokens []string
	pos    int
}

func (s *parserState) next() (string, bool) {
	if s.pos >= len(s.tokens) {
		return "", false
	}

	token := s.tokens[s.pos]
	s.pos++
	return token, true
}

func (s *parserState) peek() (string, bool) {
	if s.pos >= len(s.tokens) {
		return "", false
	}

	return s.tokens[s.pos], true
}

type argument struct {
	node   Node
	weight float64
}

func (s *parserState) parseOperator(operator string) (Node, error) {
	name, distance, err := parseOperatorName(operator)
	if err != nil {
		return nil, err
	}

	if token, ok := s.next(); !ok || token != "(" {
		return nil, malformed("missing ( after %s", operator)
	}

	weighted := name == "#wand" || name == "#wsum"

	args := make([]argument, 0, 4)
	for {
		token, ok := s.peek()
		if !ok {
			return nil, malformed("missing ) for %s", operator)
		}

		if token == ")" {
			s.pos++
			break
		}

		weight := 1.0
		if weighted {
			s.pos++
			weight, err = strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, malformed("%s expects a weight, got %q", operator, token)
			}

			token, ok = s.peek()
			if !ok || token == ")" {
				return nil, malformed("%s weight %q without argument", operator, formatWeight(weight))
			}
		}

		nodes, err := s.parseArgument()
		if err != nil {
			return nil, err
		}

		for _, node := range nodes {
			args = append(args, argument{node: node, weight: weight})
		}
	}

	return s.build(name, distance, args)
}

// parseArgument returns no node for a term that normalizes to nothing or for
// an operator that ends up without arguments.
func (s *parserState) parseArgument() ([]Node, error) {
	token, _ := s.next()

	if token == "(" {
		return nil, malformed("unexpected (")
	}

	if strings.HasPrefix(token, "#") {
		node, err := s.parseOperator(token)
		if err != nil {
			return nil, err
		}

		if isEmptyOperator(node) {
			return nil, nil
		}

		return []Node{node}, nil
	}

	field := s.parser.DefaultField
	word := token
	if i := strings.LastIndexByte(token, '.'); i > 0 {
		if _, exists := s.parser.Fields[strings.ToLower(token[i+1:])]; exists {
			field = strings.ToLower(token[i+1:])
			word = token[:i]
		}
	}

	terms := analysis.Tokenize(word)
	nodes := make([]Node, 0, len(terms))
	for _, term := range terms {
		nodes = append(nodes, NewTermNode(field, term))
	}

	return nodes, nil
}

func (s *parserState) build(name string, distance int, args []argument) (Node, error) {
	switch name {
	case "#near", "#window":
		children := make([]InvertedNode, 0, len(args))
		for _, arg := range args {
			child, ok := arg.node.(InvertedNode)
			if !ok {
				return nil, malformed("%s argument %s is not a term or proximity operator", name, arg.node)
			}
			children = append(children, child)
		}

		if name == "#near" {
			return NewNearNode(distance, children...), nil
		}
		return NewWindowNode(distance, children...), nil
	}

	children := make([]ScoreNode, 0, len(args))
	weights := make([]float64, 0, len(args))
	for _, arg := range args {
		weights = append(weights, arg.weight)

		switch child := arg.node.(type) {
		case ScoreNode:
			children = append(children, child)
		case InvertedNode:
			children = append(children, NewTermScoreNode(child))
		}
	}

	switch name {
	case "#and":
		return NewAndNode(children...), nil
	case "#or":
		return NewOrNode(children...), nil
	case "#sum":
		return NewSumNode(children...), nil
	case "#wand":
		return NewWAndNode(weights, children...), nil
	default:
		return NewWSumNode(weights, children...), nil
	}
}

func parseOperatorName(operator string) (string, int, error) {
	lower := strings.ToLower(operator)

	switch lower {
	case "#and", "#or", "#sum", "#wand", "#wsum":
		return lower, 0, nil
	}

	name, distanceString, found := strings.Cut(lower, "/")
	if found && (name == "#near" || name == "#window") {
		distance, err := strconv.Atoi(distanceString)
		if err != nil || distance < 0 {
			return "", 0, malformed("invalid distance in %s", operator)
		}

		return name, distance, nil
	}

	return "", 0, malformed("unknown operator %s", operator)
}

func isEmptyOperator(node Node) bool {
	switch n := node.(type) {
	case *NearNode:
		return len(n.Children) == 0
	case *WindowNode:
		return len(n.Children) == 0
	case *AndNode:
		return len(n.Children) == 0
	case *OrNode:
		return len(n.Children) == 0
	case *SumNode:
		return len(n.Children) == 0
	case *WAndNode:
		return len(n.Children) == 0
	case *WSumNode:
		return len(n.Children) == 0
	default:
		return false
	}
}
