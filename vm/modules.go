package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/hlang/compiler"
)

// ---------------------------------------------------------------------------
// Module binding contract
// ---------------------------------------------------------------------------

// ModuleResolver supplies the exported bindings of a module for "import".
// The interpreter defines only the binding contract; locating and running
// module sources is the resolver's job.
type ModuleResolver interface {
	ResolveImport(name string) (map[string]Value, error)
}

// ModuleResolverFunc adapts a function to ModuleResolver.
type ModuleResolverFunc func(name string) (map[string]Value, error)

func (f ModuleResolverFunc) ResolveImport(name string) (map[string]Value, error) {
	return f(name)
}

// executeExport marks a top-level name as visible to importers.
func (in *Interpreter) executeExport(s *compiler.Export) error {
	name := s.Name.Lexeme
	if _, ok := in.globals.Get(name); !ok {
		return runtimeErrorf(s.Line(), "cannot export undefined name '%s'", name)
	}
	if _, ok := in.exported[name]; !ok {
		in.exported[name] = struct{}{}
		in.exportOrder = append(in.exportOrder, name)
	}
	return nil
}

func (in *Interpreter) executeImport(s *compiler.Import, env *Environment) error {
	name, module := s.Name.Lexeme, s.Module()
	if in.resolver == nil {
		return runtimeErrorf(s.Line(), "cannot import '%s' from '%s': no module resolver", name, module)
	}

	in.logger.Debugf("import %s from %s", name, module)
	bindings, err := in.resolver.ResolveImport(module)
	if err != nil {
		// A module that fails to parse stays a syntax error; its message
		// carries the module's own line.
		if errors.Is(err, compiler.ErrSyntax) {
			return fmt.Errorf("cannot import '%s' from '%s': %w", name, module, err)
		}
		return runtimeErrorf(s.Line(), "cannot import '%s' from '%s': %v", name, module, err)
	}
	value, ok := bindings[name]
	if !ok {
		return runtimeErrorf(s.Line(), "module '%s' does not export '%s'", module, name)
	}
	env.Define(name, value)
	return nil
}

// Exports returns the current values of the names marked with "export".
func (in *Interpreter) Exports() map[string]Value {
	out := make(map[string]Value, len(in.exportOrder))
	for _, name := range in.exportOrder {
		v, _ := in.globals.Get(name)
		out[name] = v
	}
	return out
}

// ExportNames returns exported names in export order.
func (in *Interpreter) ExportNames() []string {
	return append([]string(nil), in.exportOrder...)
}
