package vm

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Value: runtime values
// ---------------------------------------------------------------------------

// Value is any Hlang runtime value. The dynamic type is one of float64,
// string, bool, nil (nothing), *List, Callable, *Instance or *ParentProxy.
type Value = any

// List is a mutable, ordered sequence. Lists compare by identity.
type List struct {
	Elements []Value
}

// NewList creates a list holding elems.
func NewList(elems ...Value) *List {
	return &List{Elements: elems}
}

// Kind names reported by "type of".
const (
	KindNumber   = "number"
	KindString   = "string"
	KindBoolean  = "boolean"
	KindNothing  = "nothing"
	KindList     = "list"
	KindFunction = "function"
	KindClass    = "class"
	KindInstance = "instance"
)

// TypeName returns the kind name of v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return KindNothing
	case float64:
		return KindNumber
	case string:
		return KindString
	case bool:
		return KindBoolean
	case *List:
		return KindList
	case *Class:
		return KindClass
	case Callable:
		return KindFunction
	case *Instance, *ParentProxy:
		return KindInstance
	}
	return "unknown"
}

// IsTruthy reports whether v counts as true: everything except false and
// nothing.
func IsTruthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	}
	return true
}

// Equal reports value equality: numbers, strings and booleans by value,
// everything else by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return a == b
}

// Stringify returns the printed form of v.
func Stringify(v Value) string {
	var b strings.Builder
	writeValue(&b, v, nil)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, seen map[*List]bool) {
	switch x := v.(type) {
	case nil:
		b.WriteString("nothing")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case float64:
		b.WriteString(formatNumber(x))
	case string:
		b.WriteString(x)
	case *List:
		if seen[x] {
			b.WriteString("[...]")
			return
		}
		if seen == nil {
			seen = make(map[*List]bool)
		}
		seen[x] = true
		b.WriteByte('[')
		for i, el := range x.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el, seen)
		}
		b.WriteByte(']')
		delete(seen, x)
	case *Instance:
		b.WriteString(x.String())
	case *ParentProxy:
		b.WriteString(x.String())
	case Callable:
		b.WriteString(x.String())
	default:
		b.WriteString("<unknown>")
	}
}

// formatNumber prints integral values without a fraction ("3") and others
// in their shortest form ("2.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// asInt converts an integral number to an int.
func asInt(v Value) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
