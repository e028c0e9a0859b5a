package vm

import (
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/hlang/compiler"
)

// DefaultMaxCallDepth bounds nested calls before "stack overflow".
const DefaultMaxCallDepth = 1000

// ---------------------------------------------------------------------------
// Interpreter: tree-walking evaluator
// ---------------------------------------------------------------------------

// Interpreter executes Hlang programs against a persistent global
// environment. It is not safe for concurrent use.
type Interpreter struct {
	globals  *Environment
	stdout   io.Writer
	resolver ModuleResolver
	logger   commonlog.Logger

	tabWidth     int
	maxCallDepth int
	depth        int

	exported    map[string]struct{}
	exportOrder []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout sets the writer "print" writes to. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// WithResolver sets the module resolver consulted by "import".
func WithResolver(r ModuleResolver) Option {
	return func(in *Interpreter) { in.resolver = r }
}

// WithMaxCallDepth sets the call depth limit. Values below 1 are ignored.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxCallDepth = n
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l commonlog.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithTabWidth sets the tab stop Run uses when tokenizing.
func WithTabWidth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.tabWidth = n
		}
	}
}

// New creates an interpreter with natives defined in its global frame.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		globals:      NewEnvironment(nil),
		stdout:       os.Stdout,
		logger:       commonlog.GetLogger("hlang.vm"),
		tabWidth:     compiler.DefaultTabWidth,
		maxCallDepth: DefaultMaxCallDepth,
		exported:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	defineNatives(in.globals)
	return in
}

// Globals returns the global environment.
func (in *Interpreter) Globals() *Environment {
	return in.globals
}

// Stdout returns the writer "print" writes to.
func (in *Interpreter) Stdout() io.Writer {
	return in.stdout
}

// Resolver returns the configured module resolver, or nil.
func (in *Interpreter) Resolver() ModuleResolver {
	return in.resolver
}

// Interpret executes program in the global environment. It stops at the
// first runtime error.
func (in *Interpreter) Interpret(program []compiler.Stmt) error {
	in.depth = 0
	for _, stmt := range program {
		out, err := in.execute(stmt, in.globals)
		if err != nil {
			return err
		}
		switch out.kind {
		case outcomeBreak:
			return runtimeErrorf(out.line, "break outside of loop")
		case outcomeReturn:
			return runtimeErrorf(out.line, "cannot return from top-level code")
		}
	}
	return nil
}

// Evaluate evaluates a single expression in the global environment.
func (in *Interpreter) Evaluate(expr compiler.Expr) (Value, error) {
	in.depth = 0
	return in.evaluate(expr, in.globals)
}

// Run tokenizes, parses and interprets src.
func (in *Interpreter) Run(src string) error {
	program, err := compiler.Parse(src, compiler.WithTabWidth(in.tabWidth))
	if err != nil {
		return err
	}
	return in.Interpret(program)
}

// Execute interprets program like Interpret, except that when its last
// statement is a bare expression that expression's value is returned with
// ok set.
func (in *Interpreter) Execute(program []compiler.Stmt) (value Value, ok bool, err error) {
	n := len(program)
	if n == 0 {
		return nil, false, nil
	}
	last, isExpr := program[n-1].(*compiler.ExprStmt)
	if !isExpr {
		return nil, false, in.Interpret(program)
	}
	if err := in.Interpret(program[:n-1]); err != nil {
		return nil, false, err
	}
	if value, err = in.Evaluate(last.Expr); err != nil {
		return nil, false, err
	}
	return value, true, nil
}
