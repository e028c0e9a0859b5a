package vm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Native functions registered in every global environment
// ---------------------------------------------------------------------------

var natives = []*NativeFunction{
	{Name: "clock", Args: 0, Apply: nativeClock},
	{Name: "length", Args: 1, Apply: nativeLength},
	{Name: "append", Args: 2, Apply: nativeAppend},
	{Name: "text", Args: 1, Apply: nativeText},
	{Name: "number", Args: 1, Apply: nativeNumber},
}

// NativeNames returns the names of the built-in functions.
func NativeNames() []string {
	names := make([]string, len(natives))
	for i, n := range natives {
		names[i] = n.Name
	}
	return names
}

// LookupNative returns the built-in function called name.
func LookupNative(name string) (*NativeFunction, bool) {
	for _, n := range natives {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func defineNatives(env *Environment) {
	for _, n := range natives {
		env.Define(n.Name, n)
	}
}

// nativeClock returns seconds since the Unix epoch.
func nativeClock(_ *Interpreter, _ []Value) (Value, error) {
	return float64(time.Now().UnixNano()) / float64(time.Second), nil
}

func nativeLength(_ *Interpreter, args []Value) (Value, error) {
	switch x := args[0].(type) {
	case *List:
		return float64(len(x.Elements)), nil
	case string:
		return float64(utf8.RuneCountInString(x)), nil
	}
	return nil, fmt.Errorf("length expects a list or string, got %s", TypeName(args[0]))
}

func nativeAppend(_ *Interpreter, args []Value) (Value, error) {
	list, ok := args[0].(*List)
	if !ok {
		return nil, fmt.Errorf("append expects a list, got %s", TypeName(args[0]))
	}
	list.Elements = append(list.Elements, args[1])
	return list, nil
}

func nativeText(_ *Interpreter, args []Value) (Value, error) {
	return Stringify(args[0]), nil
}

func nativeNumber(_ *Interpreter, args []Value) (Value, error) {
	switch x := args[0].(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to a number", x)
		}
		return f, nil
	}
	return nil, fmt.Errorf("number expects a string or number, got %s", TypeName(args[0]))
}
