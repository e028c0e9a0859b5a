// Package vm implements the Hlang tree-walking interpreter.
//
// This package contains:
//   - the runtime value model (numbers, strings, booleans, nothing, lists,
//     callables, classes and instances)
//   - lexically scoped environments
//   - statement execution with explicit return/break outcomes
//   - classes with single inheritance, private and static methods
//   - native functions and the module import/export contract
package vm
