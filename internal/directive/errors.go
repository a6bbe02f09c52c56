package directive

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError.
	ErrSyntax = errors.New("directive syntax error")
	// ErrInvalidSentinel is returned for a sentinel that could collide with
	// identifiers, whitespace or code delimiters.
	ErrInvalidSentinel = errors.New("invalid sentinel")
)

// Position is a 1-based line and byte column in the source document.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError describes malformed directive structure.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
