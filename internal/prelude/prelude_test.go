package prelude

import (
	"testing"

	"wisp/internal/ast"
	"wisp/internal/compiler"
	"wisp/internal/interp"
	"wisp/internal/object"
	"wisp/internal/parser"
)

func runWithPrelude(t *testing.T, src string) object.Object {
	t.Helper()
	heap := object.NewHeap(0)
	globals, err := object.NewClosure(heap, nil)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}
	if err := Load(heap, globals); err != nil {
		t.Fatalf("Load: %v", err)
	}

	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	exe, cerr := compiler.Compile(root, ast.NewSource(src, "<test>"), nil)
	if cerr != nil {
		t.Fatalf("compile(%q): %v", src, cerr)
	}
	vm := interp.NewVM(heap, exe, globals)
	results, err := vm.Run()
	if err != nil {
		t.Fatalf("run(%q): %v", src, err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v, want exactly one value", results)
	}
	return results[0]
}

func wantInt(t *testing.T, got object.Object, want int64) {
	t.Helper()
	i, ok := got.(*object.Int)
	if !ok {
		t.Fatalf("result %v is not an Int", got)
	}
	if i.Value != want {
		t.Fatalf("result = %d, want %d", i.Value, want)
	}
}

func TestAbsNegatesNegativeOperand(t *testing.T) {
	wantInt(t, runWithPrelude(t, "return abs(-7);"), 7)
}

func TestAbsPassesThroughPositiveOperand(t *testing.T) {
	wantInt(t, runWithPrelude(t, "return abs(7);"), 7)
}

func TestMinReturnsSmallerOperand(t *testing.T) {
	wantInt(t, runWithPrelude(t, "return min(3, 9);"), 3)
}

func TestMaxReturnsLargerOperand(t *testing.T) {
	wantInt(t, runWithPrelude(t, "return max(3, 9);"), 9)
}

func TestStringFromIntegerProducesDecimalDigits(t *testing.T) {
	heap := object.NewHeap(0)
	globals, err := object.NewClosure(heap, nil)
	if err != nil {
		t.Fatalf("NewClosure: %v", err)
	}
	if err := Load(heap, globals); err != nil {
		t.Fatalf("Load: %v", err)
	}
	root, err := parser.Parse(`return stringFromInteger(42);`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	exe, cerr := compiler.Compile(root, ast.NewSource("return stringFromInteger(42);", "<test>"), nil)
	if cerr != nil {
		t.Fatalf("compile: %v", cerr)
	}
	vm := interp.NewVM(heap, exe, globals)
	results, err := vm.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s, ok := results[0].(*object.String)
	if !ok {
		t.Fatalf("result %v is not a String", results[0])
	}
	if s.Value != "42" {
		t.Fatalf("result = %q, want %q", s.Value, "42")
	}
}
