package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/hlang/compiler"
)

// ErrRuntime is the sentinel wrapped by every evaluation error.
var ErrRuntime = errors.New("runtime error")

// RuntimeError reports a failure while evaluating a program.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return ErrRuntime
}

func runtimeErrorf(line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// atLine converts an error raised without position information (natives,
// resolvers) into a RuntimeError at line. RuntimeErrors and syntax errors
// pass through.
func atLine(line int, err error) error {
	var re *RuntimeError
	if errors.As(err, &re) || errors.Is(err, compiler.ErrSyntax) {
		return err
	}
	return &RuntimeError{Line: line, Message: err.Error()}
}
