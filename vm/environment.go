package vm

import "sort"

// ---------------------------------------------------------------------------
// Environment: lexical scope chain
// ---------------------------------------------------------------------------

// Environment is one frame of bindings with a link to its enclosing frame.
// Frames are shared by closures and may outlive the code that created them.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a frame enclosed by parent (nil for globals).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent returns the enclosing frame.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define binds name in this frame, shadowing outer bindings and replacing
// an existing binding in the same frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks name up through the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates the nearest frame defining name. It reports false when no
// frame defines it.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return true
		}
	}
	return false
}

// Names returns the names bound in this frame, sorted. Hidden bindings are
// excluded.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		if isHidden(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
