package analysis

import (
	"unicode"
	"unicode/utf8"
)

type Token struct {
	Text []byte
	// Position of the token in the token stream of the field
	Position uint32
}

type StandardTokenizer struct {
	input           []byte
	inputIndex      int
	position        uint32
	token           *Token
	tokenBuffer     []rune
	tokenTextBuffer []byte
}

func NewStandardTokenizer() *StandardTokenizer {
	return &StandardTokenizer{
		token:           &Token{},
		tokenBuffer:     make([]rune, 0, 100),
		tokenTextBuffer: make([]byte, 100),
	}
}

func (t *StandardTokenizer) Reset(input []byte) {
	t.input = input
	t.inputIndex = 0
	t.position = 0
}

func runesToBytes(rs []rune, out []byte) ([]byte, []byte) {
	size := 0
	for _, r := range rs {
		size += utf8.RuneLen(r)
	}

	if cap(out) < size {
		out = make([]byte, size)
	}

	count := 0
	for _, r := range rs {
		count += utf8.EncodeRune(out[count:], r)
	}

	return out, out[:size]
}

func (t *StandardTokenizer) emit() (*Token, bool) {
	t.tokenTextBuffer, t.token.Text = runesToBytes(t.tokenBuffer, t.tokenTextBuffer)
	t.token.Position = t.position
	t.position++
	return t.token, true
}

// Token is valid until the next call to NextToken
func (t *StandardTokenizer) NextToken() (*Token, bool) {
	t.tokenBuffer = t.tokenBuffer[:0]

	for t.inputIndex < len(t.input) {
		r, size := utf8.DecodeRune(t.input[t.inputIndex:])
		t.inputIndex += size

		// TODO: apply unicode normalization (NFKC) before lowercasing
		normalizedRune := unicode.ToLower(r)

		if unicode.IsSpace(normalizedRune) || unicode.IsPunct(normalizedRune) || unicode.IsSymbol(normalizedRune) {
			if len(t.tokenBuffer) > 0 {
				return t.emit()
			}
			continue
		}

		t.tokenBuffer = append(t.tokenBuffer, normalizedRune)
	}

	if len(t.tokenBuffer) > 0 {
		return t.emit()
	}

	return nil, false
}

// Tokenize returns a copy of every token of text.
func Tokenize(text string) []string {
	tokenizer := NewStandardTokenizer()
	tokenizer.Reset([]byte(text))

	tokens := make([]string, 0, 4)
	for {
		token, ok := tokenizer.NextToken()
		if !ok {
			break
		}

		tokens = append(tokens, string(token.Text))
	}

	return tokens
}
