package compiler

import (
	"testing"

	"github.com/kr/pretty"

	"wisp/internal/ast"
	"wisp/internal/bytecode"
	"wisp/internal/diag"
	"wisp/internal/parser"
)

// expOp describes the opcode/operand shape this test suite checks an
// Instruction against, without committing to exact source offsets.
type expOp struct {
	op   bytecode.Opcode
	ints []int64
	strs []string
}

func op(o bytecode.Opcode, ints ...int64) expOp       { return expOp{op: o, ints: ints} }
func strOp(o bytecode.Opcode, s string) expOp         { return expOp{op: o, strs: []string{s}} }
func strIntOp(o bytecode.Opcode, s string, i int64) expOp {
	return expOp{op: o, strs: []string{s}, ints: []int64{i}}
}

func compileSource(t *testing.T, src string) *bytecode.Executable {
	t.Helper()
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	exe, cerr := Compile(root, ast.NewSource(src, "<test>"), nil)
	if cerr != nil {
		t.Fatalf("compile(%q): %v", src, cerr)
	}
	return exe
}

func assertInstrs(t *testing.T, exe *bytecode.Executable, want []expOp) {
	t.Helper()
	if exe.Len() != len(want) {
		t.Fatalf("instruction count = %d, want %d\ngot:  %s\nwant: %s", exe.Len(), len(want), dump(exe), pretty.Sprint(want))
	}
	for i, w := range want {
		got := exe.At(i)
		if got.Op != w.op {
			t.Fatalf("instr %d opcode = %s, want %s\ngot:  %s\nwant: %s", i, got.Op, w.op, dump(exe), pretty.Sprint(want))
		}
		for j, wantInt := range w.ints {
			if j >= len(got.Operands) {
				t.Fatalf("instr %d missing int operand %d", i, j)
			}
			o := got.Operands[j]
			var gotInt int64
			switch o.Kind {
			case bytecode.OperandInt:
				gotInt = o.Int
			case bytecode.OperandPromise:
				v, ok := o.Promise.Read()
				if !ok {
					t.Fatalf("instr %d operand %d: unresolved promise", i, j)
				}
				gotInt = v
			default:
				t.Fatalf("instr %d operand %d kind = %v, want int-ish", i, j, o.Kind)
			}
			if gotInt != wantInt {
				t.Fatalf("instr %d (%s) int operand %d = %d, want %d\ngot:  %s", i, got.Op, j, gotInt, wantInt, dump(exe))
			}
		}
		for j, wantStr := range w.strs {
			if j >= len(got.Operands) {
				t.Fatalf("instr %d missing string operand %d", i, j)
			}
			if got.Operands[j].Str != wantStr {
				t.Fatalf("instr %d (%s) string operand %d = %q, want %q", i, got.Op, j, got.Operands[j].Str, wantStr)
			}
		}
	}
}

func dump(exe *bytecode.Executable) string {
	s := ""
	for i := 0; i < exe.Len(); i++ {
		instr := exe.At(i)
		s += pretty.Sprintf("%d: %s %v\n", i, instr.Op, instr.Operands)
	}
	return s
}

func TestScenario1_ReturnLiteral(t *testing.T) {
	exe := compileSource(t, "return 1;")
	assertInstrs(t, exe, []expOp{
		op(bytecode.PUSHINT, 1),
		op(bytecode.RETURN, 1),
		op(bytecode.RETURN, 0),
	})
}

func TestScenario2_IfElseNoElse(t *testing.T) {
	exe := compileSource(t, "if x < 0 return -x; return x;")
	assertInstrs(t, exe, []expOp{
		strOp(bytecode.PUSHVAR, "x"),
		op(bytecode.PUSHINT, 0),
		op(bytecode.LSS),
		op(bytecode.JUMPIFNOTANDPOP, 7),
		strOp(bytecode.PUSHVAR, "x"),
		op(bytecode.NEG),
		op(bytecode.RETURN, 1),
		strOp(bytecode.PUSHVAR, "x"),
		op(bytecode.RETURN, 1),
		op(bytecode.RETURN, 0),
	})
}

func TestScenario3_WhileLoop(t *testing.T) {
	exe := compileSource(t, "while n > 0 { n = n - 1; }")
	assertInstrs(t, exe, []expOp{
		strOp(bytecode.PUSHVAR, "n"), // 0: S
		op(bytecode.PUSHINT, 0),
		op(bytecode.GRT),
		op(bytecode.JUMPIFNOTANDPOP, 10),
		strOp(bytecode.PUSHVAR, "n"),
		op(bytecode.PUSHINT, 1),
		op(bytecode.SUB),
		strOp(bytecode.ASS, "n"),
		op(bytecode.POP, 1),
		op(bytecode.JUMP, 0),
		op(bytecode.RETURN, 0), // 10: E
	})
}

func TestScenario4_MultiAssignFromCall(t *testing.T) {
	exe := compileSource(t, "a, b = f(x);")
	// Reverse LHS store order: b (inner, index 1) is bound first, then a.
	// The uniform compound trailing-POP rule (spec.md §4.4) also discards
	// the assignment-expression's own leftover result when it appears as a
	// bare statement, exactly as it does for any other expression
	// statement (see scenario 5's call statement) — hence the final POP 1
	// before the defensive RETURN 0.
	assertInstrs(t, exe, []expOp{
		strOp(bytecode.PUSHVAR, "x"),
		strOp(bytecode.PUSHVAR, "f"),
		op(bytecode.CALL, 1, 2),
		strOp(bytecode.ASS, "b"),
		op(bytecode.POP, 1),
		strOp(bytecode.ASS, "a"),
		op(bytecode.POP, 1),
		op(bytecode.RETURN, 0),
	})
}

func TestScenario5_FullShape(t *testing.T) {
	exe := compileSource(t, "fun g(x) return x+1; g(2);")
	assertInstrs(t, exe, []expOp{
		op(bytecode.PUSHFUN, 4, 1),
		strOp(bytecode.ASS, "g"),
		op(bytecode.POP, 1),
		op(bytecode.JUMP, 11),
		strOp(bytecode.ASS, "x"),
		op(bytecode.POP, 1),
		strOp(bytecode.PUSHVAR, "x"),
		op(bytecode.PUSHINT, 1),
		op(bytecode.ADD),
		op(bytecode.RETURN, 1),
		op(bytecode.RETURN, 0),
		op(bytecode.PUSHINT, 2),
		strOp(bytecode.PUSHVAR, "g"),
		op(bytecode.CALL, 1, 1),
		op(bytecode.POP, 1),
		op(bytecode.RETURN, 0),
	})
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	root, err := parser.Parse("break;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, cerr := Compile(root, ast.NewSource("break;", "<test>"), nil); cerr == nil {
		t.Fatalf("expected BreakOutsideLoop error")
	}
}

func TestBreakInsideWhileJumpsPastLoop(t *testing.T) {
	exe := compileSource(t, "while true { break; }")
	// PUSHTRU; JUMPIFNOTANDPOP E; JUMP E; JUMP S; E: RETURN 0
	assertInstrs(t, exe, []expOp{
		op(bytecode.PUSHTRU),
		op(bytecode.JUMPIFNOTANDPOP, 4),
		op(bytecode.JUMP, 4),
		op(bytecode.JUMP, 0),
		op(bytecode.RETURN, 0),
	})
}

func TestDoWhileBackEdgeIsDirectInt(t *testing.T) {
	exe := compileSource(t, "do { n = n - 1; } while n > 0;")
	for i := 0; i < exe.Len(); i++ {
		instr := exe.At(i)
		if instr.Op == bytecode.JUMPIFANDPOP {
			if instr.Operands[0].Kind != bytecode.OperandInt {
				t.Fatalf("do-while back-edge operand kind = %v, want OperandInt (direct INT, not a Promise)", instr.Operands[0].Kind)
			}
		}
	}
}

func TestTupleArityAtBoundSucceeds(t *testing.T) {
	src := "a1"
	for i := 2; i <= 32; i++ {
		src += ", a" + itoa(i)
	}
	src += " = f();"
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, cerr := Compile(root, ast.NewSource(src, "<test>"), nil); cerr != nil {
		t.Fatalf("arity-32 assignment should compile: %v", cerr)
	}
}

func TestTupleArityOverBoundFails(t *testing.T) {
	src := "a1"
	for i := 2; i <= 33; i++ {
		src += ", a" + itoa(i)
	}
	src += " = f();"
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, cerr := Compile(root, ast.NewSource(src, "<test>"), nil); cerr == nil {
		t.Fatalf("arity-33 assignment should fail with TuplePairTooLarge")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestMultiParamFunctionBindsArgsInDeclarationOrder(t *testing.T) {
	exe := compileSource(t, "fun f(a, b) return a; f(1, 2);")
	// Caller pushes 1, then 2 (source order), so the prologue must consume
	// the stack top-down in reverse of declaration order: ASS "b" first
	// (binds to 2, the last-pushed argument), then ASS "a" (binds to 1).
	var bound []string
	for i := 0; i < exe.Len(); i++ {
		instr := exe.At(i)
		if instr.Op == bytecode.ASS && len(bound) < 2 && i > 0 {
			// Skip the ASS "f" emitted for the function-name binding at
			// the very start of the program.
			if instr.Operands[0].Str == "f" {
				continue
			}
			bound = append(bound, instr.Operands[0].Str)
		}
	}
	if len(bound) != 2 || bound[0] != "b" || bound[1] != "a" {
		t.Fatalf("parameter ASS order = %v, want [b a] (reverse of declaration order)", bound)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	root, err := parser.Parse("1 = 2;")
	if err == nil {
		// the grammar accepts a literal on the LHS, so the rejection has to
		// come from the compiler; either outcome (parse-time or
		// compile-time rejection) satisfies the spec's intent that a
		// non-ident/non-index LHS is rejected.
		if _, cerr := Compile(root, ast.NewSource("1 = 2;", "<test>"), nil); cerr == nil {
			t.Fatalf("expected a compile error for a literal assignment target")
		}
	}
}

// TestMapLiteralWithListKeyIsUnhashableAtCompileTime exercises the
// UnhashableKey diag.Error path spec.md §7 calls out: a map literal whose
// key is itself a list literal is rejected at compile time, not left to
// fail later at the runtime INSERT.
func TestMapLiteralWithListKeyIsUnhashableAtCompileTime(t *testing.T) {
	src := `m = {[1, 2]: 3};`
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	_, cerr := Compile(root, ast.NewSource(src, "<test>"), nil)
	if cerr == nil {
		t.Fatalf("expected a compile error for a list-literal map key")
	}
	if cerr.Kind != diag.KindUnhashableKey {
		t.Fatalf("error kind = %s, want %s", cerr.Kind, diag.KindUnhashableKey)
	}
}
