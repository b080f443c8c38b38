// Package prelude implements the standard prelude spec.md §6 names
// alongside the compiler/interpreter contracts: abs, min, max (ordinary
// wisp source, compiled and run like any program) and stringFromInteger
// (a native function — base-10 digit extraction has no reasonable
// expression in the language itself).
package prelude

import (
	_ "embed"
	"fmt"
	"strconv"

	"wisp/internal/ast"
	"wisp/internal/compiler"
	"wisp/internal/interp"
	"wisp/internal/object"
	"wisp/internal/parser"
)

//go:embed prelude.wisp
var source string

// Load registers stringFromInteger as a native function in globals, then
// compiles and runs the embedded prelude against the same frame, binding
// abs/min/max as ordinary wisp functions. Callers (cmd/wisp, the REPL) run
// this once against the root closure before running user source.
func Load(heap *object.Heap, globals *object.Closure) error {
	if err := defineStringFromInteger(heap, globals); err != nil {
		return err
	}

	root, err := parser.Parse(source)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	exe, cerr := compiler.Compile(root, ast.NewSource(source, "<prelude>"), nil)
	if cerr != nil {
		return fmt.Errorf("prelude: %s", cerr.Error())
	}
	vm := interp.NewVM(heap, exe, globals)
	if _, err := vm.Run(); err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	return nil
}

func defineStringFromInteger(heap *object.Heap, globals *object.Closure) error {
	fn, err := object.NewNativeFunction(heap, "stringFromInteger", 1, stringFromInteger)
	if err != nil {
		return err
	}
	return globals.Define(heap, object.NewStringUnmanaged("stringFromInteger"), fn)
}

func stringFromInteger(h *object.Heap, args []object.Object) (object.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("stringFromInteger expects 1 argument, got %d", len(args))
	}
	n, ok := args[0].(*object.Int)
	if !ok {
		return nil, fmt.Errorf("stringFromInteger expects an int, got %s", args[0].Type().Name)
	}
	return object.NewString(h, strconv.FormatInt(n.Value, 10))
}
