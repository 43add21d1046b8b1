package query

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCombination = errors.New("unsupported operator and retrieval model combination")

	// ErrMalformedQuery covers syntax errors and trees that cannot match
	// anything, such as operators without arguments.
	ErrMalformedQuery = errors.New("malformed query")
)

type UnsupportedCombinationError struct {
	Operator string
	Model    ModelKind
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("%s does not support the %s operator", e.Model, e.Operator)
}

func (e *UnsupportedCombinationError) Unwrap() error {
	return ErrUnsupportedCombination
}

func unsupported(operator string, model ModelKind) error {
	return &UnsupportedCombinationError{Operator: operator, Model: model}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedQuery, fmt.Sprintf(format, args...))
}
