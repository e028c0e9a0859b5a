package vm

import (
	"fmt"

	"github.com/chazu/hlang/compiler"
)

// ---------------------------------------------------------------------------
// Callable: anything that can appear before "(...)"
// ---------------------------------------------------------------------------

// Callable is implemented by native functions, user functions, bound
// methods, lambdas and classes.
type Callable interface {
	// Arity is the number of arguments the callable expects.
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// NativeFunction is a Go function exposed to Hlang code. Errors it returns
// are reported at the line of the call.
type NativeFunction struct {
	Name  string
	Args  int
	Apply func(in *Interpreter, args []Value) (Value, error)
}

func (n *NativeFunction) Arity() int { return n.Args }

func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.Apply(in, args)
}

func (n *NativeFunction) String() string {
	return fmt.Sprintf("<native function %s>", n.Name)
}

// ---------------------------------------------------------------------------
// Function: user-defined functions, methods and lambdas
// ---------------------------------------------------------------------------

// Function is a user function closed over the environment it was declared
// in. Methods additionally record the class that declares them.
type Function struct {
	name    string
	params  []compiler.Token
	body    []compiler.Stmt
	closure *Environment

	class     *Class // declaring class; nil for plain functions and lambdas
	isStatic  bool
	isPrivate bool
}

func newFunction(decl *compiler.Function, closure *Environment, class *Class) *Function {
	return &Function{
		name:      decl.Name.Lexeme,
		params:    decl.Params,
		body:      decl.Body,
		closure:   closure,
		class:     class,
		isStatic:  decl.IsStatic,
		isPrivate: decl.IsPrivate,
	}
}

func newLambda(decl *compiler.Lambda, closure *Environment) *Function {
	return &Function{
		name:    "lambda",
		params:  decl.Params,
		body:    decl.Body,
		closure: closure,
	}
}

// Name returns the declared name ("lambda" for anonymous functions).
func (f *Function) Name() string { return f.name }

func (f *Function) Arity() int { return len(f.params) }

// Call runs the body in a fresh frame whose parent is the closure, so free
// variables resolve where the function was declared.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for i, p := range f.params {
		env.Define(p.Lexeme, args[i])
	}

	out, err := in.executeBlock(f.body, env)
	if err != nil {
		return nil, err
	}

	if out.kind == outcomeBreak {
		return nil, runtimeErrorf(out.line, "break outside of loop")
	}
	if f.isConstructor() {
		// init always yields the instance, even after an early return.
		this, _ := f.closure.Get(thisName)
		return this, nil
	}
	if out.kind == outcomeReturn {
		return out.value, nil
	}
	return nil, nil
}

func (f *Function) String() string {
	if f.class != nil {
		return fmt.Sprintf("<method %s.%s>", f.class.Name, f.name)
	}
	return fmt.Sprintf("<function %s>", f.name)
}

// isConstructor reports whether f is a bound init method.
func (f *Function) isConstructor() bool {
	if f.class == nil || f.isStatic || f.name != initName {
		return false
	}
	_, bound := f.closure.values[thisName]
	return bound
}

// bind returns a copy of the method whose closure binds "this" to inst and
// "parent" to a proxy for the declaring class's parent.
func (f *Function) bind(inst *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define(thisName, inst)
	if f.class != nil && f.class.Parent != nil {
		env.Define(parentName, &ParentProxy{Instance: inst, Class: f.class.Parent})
	}
	bound := *f
	bound.closure = env
	return &bound
}
