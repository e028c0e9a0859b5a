package compiler

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel wrapped by every lexical and parse error.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a tokenizer or parser failure at a source line.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func syntaxErrorf(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}
