package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Classes and instances
// ---------------------------------------------------------------------------

const (
	initName   = "init"
	thisName   = "this"
	parentName = "parent"

	// classKey binds the lexically enclosing class inside method closures.
	// The leading space keeps it out of reach of user identifiers.
	classKey = " class"
)

func isHidden(name string) bool {
	return strings.HasPrefix(name, " ")
}

// Class is a class value: a method table plus an optional parent class.
// Calling a class constructs an instance.
type Class struct {
	Name    string
	Parent  *Class
	Methods map[string]*Function
}

// NewClass creates a class with an empty method table.
func NewClass(name string, parent *Class) *Class {
	return &Class{
		Name:    name,
		Parent:  parent,
		Methods: make(map[string]*Function),
	}
}

// FindMethod resolves name on c and then up the parent chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) initializer() (*Function, bool) {
	m, ok := c.FindMethod(initName)
	if !ok || m.isStatic {
		return nil, false
	}
	return m, true
}

// Arity is the arity of init, or 0 without one.
func (c *Class) Arity() int {
	if init, ok := c.initializer(); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs an instance and runs init on it.
func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	inst := &Instance{Class: c, Fields: make(map[string]Value)}
	if init, ok := c.initializer(); ok {
		if _, err := init.bind(inst).Call(in, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (c *Class) String() string {
	return fmt.Sprintf("<class %s>", c.Name)
}

// Instance is an object with its own field table. Instances compare by
// identity.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) String() string {
	return fmt.Sprintf("<%s instance>", i.Class.Name)
}

// ParentProxy is the value of "parent" inside a method: method lookups start
// at Class and bind to Instance.
type ParentProxy struct {
	Instance *Instance
	Class    *Class
}

func (p *ParentProxy) String() string {
	return fmt.Sprintf("<parent %s>", p.Class.Name)
}
