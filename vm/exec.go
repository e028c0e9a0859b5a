package vm

import (
	"io"

	"github.com/chazu/hlang/compiler"
)

// ---------------------------------------------------------------------------
// Statement execution
// ---------------------------------------------------------------------------

// outcomeKind tells the enclosing construct how a statement finished.
type outcomeKind int

const (
	outcomeNormal outcomeKind = iota
	outcomeReturn             // unwinding to the nearest function call
	outcomeBreak              // unwinding to the nearest loop
)

// outcome is the control result of executing a statement. Return and break
// are ordinary results, not errors.
type outcome struct {
	kind  outcomeKind
	value Value // returned value
	line  int   // line of the return/break statement
}

var normal = outcome{}

func (in *Interpreter) execute(stmt compiler.Stmt, env *Environment) (outcome, error) {
	switch s := stmt.(type) {
	case *compiler.Print:
		v, err := in.evaluate(s.Expr, env)
		if err != nil {
			return normal, err
		}
		if _, err := io.WriteString(in.stdout, Stringify(v)+"\n"); err != nil {
			return normal, runtimeErrorf(s.Line(), "print: %v", err)
		}
		return normal, nil

	case *compiler.ExprStmt:
		_, err := in.evaluate(s.Expr, env)
		return normal, err

	case *compiler.Block:
		return in.executeBlock(s.Statements, NewEnvironment(env))

	case *compiler.If:
		cond, err := in.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if IsTruthy(cond) {
			return in.execute(s.Then, env)
		}
		if s.Else != nil {
			return in.execute(s.Else, env)
		}
		return normal, nil

	case *compiler.While:
		return in.executeWhile(s, env)

	case *compiler.ForEach:
		return in.executeForEach(s, env)

	case *compiler.Function:
		env.Define(s.Name.Lexeme, newFunction(s, env, nil))
		return normal, nil

	case *compiler.Class:
		return normal, in.declareClass(s, env)

	case *compiler.Return:
		var value Value
		if s.Value != nil {
			v, err := in.evaluate(s.Value, env)
			if err != nil {
				return normal, err
			}
			value = v
		}
		return outcome{kind: outcomeReturn, value: value, line: s.Line()}, nil

	case *compiler.Break:
		return outcome{kind: outcomeBreak, line: s.Line()}, nil

	case *compiler.Import:
		return normal, in.executeImport(s, env)

	case *compiler.Export:
		return normal, in.executeExport(s)
	}
	return normal, runtimeErrorf(stmt.Line(), "unknown statement %T", stmt)
}

// executeBlock runs statements in env, stopping at the first non-normal
// outcome and handing it to the caller.
func (in *Interpreter) executeBlock(stmts []compiler.Stmt, env *Environment) (outcome, error) {
	for _, stmt := range stmts {
		out, err := in.execute(stmt, env)
		if err != nil || out.kind != outcomeNormal {
			return out, err
		}
	}
	return normal, nil
}

func (in *Interpreter) executeWhile(s *compiler.While, env *Environment) (outcome, error) {
	for {
		cond, err := in.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if !IsTruthy(cond) {
			return normal, nil
		}

		out, err := in.executeBlock(s.Body.Statements, NewEnvironment(env))
		if err != nil {
			return normal, err
		}
		switch out.kind {
		case outcomeBreak:
			return normal, nil
		case outcomeReturn:
			return out, nil
		}
	}
}

// executeForEach iterates over a snapshot of the list, binding the item in a
// fresh frame per iteration.
func (in *Interpreter) executeForEach(s *compiler.ForEach, env *Environment) (outcome, error) {
	iterable, err := in.evaluate(s.Iterable, env)
	if err != nil {
		return normal, err
	}

	var items []Value
	switch x := iterable.(type) {
	case *List:
		items = append(items, x.Elements...)
	case string:
		for _, r := range x {
			items = append(items, string(r))
		}
	default:
		return normal, runtimeErrorf(s.Line(), "can only iterate over a list or string, got %s", TypeName(iterable))
	}

	for _, item := range items {
		iterEnv := NewEnvironment(env)
		iterEnv.Define(s.Item.Lexeme, item)
		out, err := in.executeBlock(s.Body.Statements, iterEnv)
		if err != nil {
			return normal, err
		}
		switch out.kind {
		case outcomeBreak:
			return normal, nil
		case outcomeReturn:
			return out, nil
		}
	}
	return normal, nil
}

// declareClass builds the method table and binds the class by name. Methods
// close over a frame that records the class, which is how private access is
// checked lexically.
func (in *Interpreter) declareClass(s *compiler.Class, env *Environment) error {
	var parent *Class
	if s.Parent != nil {
		v, err := in.evaluate(s.Parent, env)
		if err != nil {
			return err
		}
		pc, ok := v.(*Class)
		if !ok {
			return runtimeErrorf(s.Parent.Line(), "parent class '%s' must be a class, got %s",
				s.Parent.Name.Lexeme, TypeName(v))
		}
		parent = pc
	}

	class := NewClass(s.Name.Lexeme, parent)
	classEnv := NewEnvironment(env)
	classEnv.Define(classKey, class)
	for _, m := range s.Methods {
		class.Methods[m.Name.Lexeme] = newFunction(m, classEnv, class)
	}
	env.Define(class.Name, class)

	if parent != nil {
		in.logger.Debugf("class %s extends %s (%d methods)", class.Name, parent.Name, len(class.Methods))
	} else {
		in.logger.Debugf("class %s (%d methods)", class.Name, len(class.Methods))
	}
	return nil
}
