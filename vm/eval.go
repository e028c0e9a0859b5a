package vm

import (
	"math"

	"github.com/chazu/hlang/compiler"
)

// ---------------------------------------------------------------------------
// Expression evaluation
// ---------------------------------------------------------------------------

func (in *Interpreter) evaluate(expr compiler.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *compiler.Literal:
		return e.Value, nil

	case *compiler.Variable:
		v, ok := env.Get(e.Name.Lexeme)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "undefined variable '%s'", e.Name.Lexeme)
		}
		return v, nil

	case *compiler.Assign:
		return in.evalAssign(e, env)

	case *compiler.Logical:
		left, err := in.evaluate(e.Left, env)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == compiler.TokenOr {
			if IsTruthy(left) {
				return left, nil
			}
		} else if !IsTruthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right, env)

	case *compiler.Binary:
		left, err := in.evaluate(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(e.Right, env)
		if err != nil {
			return nil, err
		}
		return binaryOp(e, left, right)

	case *compiler.Unary:
		return in.evalUnary(e, env)

	case *compiler.Call:
		return in.evalCall(e, env)

	case *compiler.Get:
		obj, err := in.evaluate(e.Object, env)
		if err != nil {
			return nil, err
		}
		return in.getProperty(obj, e.Name, env)

	case *compiler.Set:
		obj, err := in.evaluate(e.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "only instances have fields, got %s", TypeName(obj))
		}
		value, err := in.evaluate(e.Value, env)
		if err != nil {
			return nil, err
		}
		inst.Fields[e.Name.Lexeme] = value
		return value, nil

	case *compiler.Index:
		obj, err := in.evaluate(e.Object, env)
		if err != nil {
			return nil, err
		}
		index, err := in.evaluate(e.Index, env)
		if err != nil {
			return nil, err
		}
		return indexValue(e.Line(), obj, index)

	case *compiler.SetIndex:
		return in.evalSetIndex(e, env)

	case *compiler.List:
		list := &List{Elements: make([]Value, 0, len(e.Elements))}
		for _, el := range e.Elements {
			v, err := in.evaluate(el, env)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, v)
		}
		return list, nil

	case *compiler.This:
		v, ok := env.Get(thisName)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "cannot use 'this' outside of a method")
		}
		return v, nil

	case *compiler.Parent:
		v, ok := env.Get(parentName)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "cannot use 'parent' outside of a subclass method")
		}
		return v, nil

	case *compiler.Lambda:
		return newLambda(e, env), nil
	}
	return nil, runtimeErrorf(expr.Line(), "unknown expression %T", expr)
}

func (in *Interpreter) evalAssign(e *compiler.Assign, env *Environment) (Value, error) {
	var value Value
	if e.Value != nil {
		v, err := in.evaluate(e.Value, env)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if e.Declare {
		env.Define(e.Name.Lexeme, value)
		return value, nil
	}
	if !env.Assign(e.Name.Lexeme, value) {
		return nil, runtimeErrorf(e.Line(), "undefined variable '%s'", e.Name.Lexeme)
	}
	return value, nil
}

func binaryOp(e *compiler.Binary, left, right Value) (Value, error) {
	switch e.Op {
	case compiler.OpEqual:
		return Equal(left, right), nil
	case compiler.OpNotEqual:
		return !Equal(left, right), nil
	case compiler.OpAdd:
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
	}

	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		if e.Op == compiler.OpAdd {
			return nil, runtimeErrorf(e.Line(), "operands of '%s' must be two numbers or two strings, got %s and %s",
				e.Op, TypeName(left), TypeName(right))
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				if result, ok := compareStrings(e.Op, ls, rs); ok {
					return result, nil
				}
			}
		}
		return nil, runtimeErrorf(e.Line(), "operands of '%s' must be numbers, got %s and %s",
			e.Op, TypeName(left), TypeName(right))
	}

	switch e.Op {
	case compiler.OpAdd:
		return l + r, nil
	case compiler.OpSubtract:
		return l - r, nil
	case compiler.OpMultiply:
		return l * r, nil
	case compiler.OpDivide:
		return l / r, nil
	case compiler.OpModulus:
		return math.Mod(l, r), nil
	case compiler.OpGreater:
		return l > r, nil
	case compiler.OpGreaterEqual:
		return l >= r, nil
	case compiler.OpLess:
		return l < r, nil
	case compiler.OpLessEqual:
		return l <= r, nil
	}
	return nil, runtimeErrorf(e.Line(), "unknown operator '%s'", e.Op)
}

// compareStrings orders strings lexically for the relational operators.
func compareStrings(op compiler.BinaryOp, l, r string) (bool, bool) {
	switch op {
	case compiler.OpGreater:
		return l > r, true
	case compiler.OpGreaterEqual:
		return l >= r, true
	case compiler.OpLess:
		return l < r, true
	case compiler.OpLessEqual:
		return l <= r, true
	}
	return false, false
}

func (in *Interpreter) evalUnary(e *compiler.Unary, env *Environment) (Value, error) {
	switch e.Operator.Type {
	case compiler.TokenIncrement, compiler.TokenDecrement:
		return in.evalStep(e, env)
	}

	right, err := in.evaluate(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case compiler.TokenNot:
		return !IsTruthy(right), nil
	case compiler.TokenMinus:
		n, ok := right.(float64)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "operand of '-' must be a number, got %s", TypeName(right))
		}
		return -n, nil
	case compiler.TokenTypeKeyword:
		return TypeName(right), nil
	case compiler.TokenComplement:
		n, ok := right.(float64)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "operand of 'complement' must be a number, got %s", TypeName(right))
		}
		return float64(^int64(n)), nil
	}
	return nil, runtimeErrorf(e.Line(), "unknown unary operator '%s'", e.Operator.Lexeme)
}

// evalStep implements increment/decrement on a variable, field or list
// element. The target's object and index are evaluated once.
func (in *Interpreter) evalStep(e *compiler.Unary, env *Environment) (Value, error) {
	amount := 1.0
	if e.Amount != nil {
		v, err := in.evaluate(e.Amount, env)
		if err != nil {
			return nil, err
		}
		n, ok := v.(float64)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "'%s' amount must be a number, got %s", e.Operator.Lexeme, TypeName(v))
		}
		amount = n
	}
	if e.Operator.Type == compiler.TokenDecrement {
		amount = -amount
	}

	step := func(current Value) (float64, error) {
		n, ok := current.(float64)
		if !ok {
			return 0, runtimeErrorf(e.Line(), "cannot %s a %s", e.Operator.Lexeme, TypeName(current))
		}
		return n + amount, nil
	}

	switch target := e.Right.(type) {
	case *compiler.Variable:
		name := target.Name.Lexeme
		current, ok := env.Get(name)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "undefined variable '%s'", name)
		}
		next, err := step(current)
		if err != nil {
			return nil, err
		}
		env.Assign(name, next)
		return next, nil

	case *compiler.Get:
		obj, err := in.evaluate(target.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErrorf(e.Line(), "only instances have fields, got %s", TypeName(obj))
		}
		current, ok := inst.Fields[target.Name.Lexeme]
		if !ok {
			return nil, runtimeErrorf(e.Line(), "undefined property '%s'", target.Name.Lexeme)
		}
		next, err := step(current)
		if err != nil {
			return nil, err
		}
		inst.Fields[target.Name.Lexeme] = next
		return next, nil

	case *compiler.Index:
		obj, err := in.evaluate(target.Object, env)
		if err != nil {
			return nil, err
		}
		index, err := in.evaluate(target.Index, env)
		if err != nil {
			return nil, err
		}
		list, i, err := listSlot(e.Line(), obj, index)
		if err != nil {
			return nil, err
		}
		next, err := step(list.Elements[i])
		if err != nil {
			return nil, err
		}
		list.Elements[i] = next
		return next, nil
	}
	return nil, runtimeErrorf(e.Line(), "invalid '%s' target", e.Operator.Lexeme)
}

func (in *Interpreter) evalCall(e *compiler.Call, env *Environment) (Value, error) {
	callee, err := in.evaluate(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		v, err := in.evaluate(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErrorf(e.Line(), "can only call functions and classes, got %s", TypeName(callee))
	}
	if fn.Arity() != len(args) {
		return nil, runtimeErrorf(e.Line(), "%s expected %d arguments but got %d", fn, fn.Arity(), len(args))
	}

	if in.depth >= in.maxCallDepth {
		return nil, runtimeErrorf(e.Line(), "stack overflow")
	}
	in.depth++
	result, err := fn.Call(in, args)
	in.depth--
	if err != nil {
		return nil, atLine(e.Line(), err)
	}
	return result, nil
}

// getProperty resolves obj.name: fields first, then methods.
func (in *Interpreter) getProperty(obj Value, name compiler.Token, env *Environment) (Value, error) {
	key := name.Lexeme
	switch x := obj.(type) {
	case *Instance:
		if v, ok := x.Fields[key]; ok {
			return v, nil
		}
		m, ok := x.Class.FindMethod(key)
		if !ok {
			return nil, runtimeErrorf(name.Line, "undefined property '%s' on %s", key, x)
		}
		if m.isStatic {
			return nil, runtimeErrorf(name.Line, "static method '%s' must be called on class '%s'", key, m.class.Name)
		}
		if err := checkAccess(m, name.Line, env); err != nil {
			return nil, err
		}
		return m.bind(x), nil

	case *Class:
		m, ok := x.FindMethod(key)
		if !ok {
			return nil, runtimeErrorf(name.Line, "undefined method '%s' on class '%s'", key, x.Name)
		}
		if !m.isStatic {
			return nil, runtimeErrorf(name.Line, "'%s' is not a static method of class '%s'", key, x.Name)
		}
		if err := checkAccess(m, name.Line, env); err != nil {
			return nil, err
		}
		return m, nil

	case *ParentProxy:
		m, ok := x.Class.FindMethod(key)
		if !ok || m.isStatic {
			return nil, runtimeErrorf(name.Line, "undefined parent method '%s'", key)
		}
		if err := checkAccess(m, name.Line, env); err != nil {
			return nil, err
		}
		return m.bind(x.Instance), nil
	}
	return nil, runtimeErrorf(name.Line, "only instances and classes have properties, got %s", TypeName(obj))
}

// checkAccess rejects a private method unless the code reaching for it is
// lexically inside the class that declares it.
func checkAccess(m *Function, line int, env *Environment) error {
	if !m.isPrivate {
		return nil
	}
	if enclosing, ok := env.Get(classKey); ok && enclosing == m.class {
		return nil
	}
	return runtimeErrorf(line, "cannot access private method '%s' of class '%s'", m.name, m.class.Name)
}

// listSlot validates a list element reference.
func listSlot(line int, obj, index Value) (*List, int, error) {
	list, ok := obj.(*List)
	if !ok {
		return nil, 0, runtimeErrorf(line, "can only assign elements of a list, got %s", TypeName(obj))
	}
	i, ok := asInt(index)
	if !ok {
		return nil, 0, runtimeErrorf(line, "list index must be an integer, got %s", Stringify(index))
	}
	if i < 0 || i >= len(list.Elements) {
		return nil, 0, runtimeErrorf(line, "list index %d out of range [0, %d)", i, len(list.Elements))
	}
	return list, i, nil
}

// indexValue reads xs[i] for lists and strings (one character).
func indexValue(line int, obj, index Value) (Value, error) {
	if s, ok := obj.(string); ok {
		runes := []rune(s)
		i, ok := asInt(index)
		if !ok {
			return nil, runtimeErrorf(line, "string index must be an integer, got %s", Stringify(index))
		}
		if i < 0 || i >= len(runes) {
			return nil, runtimeErrorf(line, "string index %d out of range [0, %d)", i, len(runes))
		}
		return string(runes[i]), nil
	}
	if _, ok := obj.(*List); !ok {
		return nil, runtimeErrorf(line, "can only index lists and strings, got %s", TypeName(obj))
	}
	list, i, err := listSlot(line, obj, index)
	if err != nil {
		return nil, err
	}
	return list.Elements[i], nil
}

func (in *Interpreter) evalSetIndex(e *compiler.SetIndex, env *Environment) (Value, error) {
	obj, err := in.evaluate(e.Object, env)
	if err != nil {
		return nil, err
	}
	index, err := in.evaluate(e.Index, env)
	if err != nil {
		return nil, err
	}
	value, err := in.evaluate(e.Value, env)
	if err != nil {
		return nil, err
	}
	list, i, err := listSlot(e.Line(), obj, index)
	if err != nil {
		return nil, err
	}
	list.Elements[i] = value
	return value, nil
}
