// Package compiler implements the AST-to-bytecode code generator:
// spec.md §4.4's lowering rules, driven by the Promise forward-reference
// patcher in internal/bytecode and backed by a per-compile scratch arena.
package compiler

import (
	"wisp/internal/ast"
	"wisp/internal/bytecode"
	"wisp/internal/diag"
	"wisp/internal/object"
	"wisp/internal/scratch"
)

const maxTupleArity = 32

// Compile lowers root into a finalized Executable. If arena is nil, one is
// created and released internally before Compile returns (spec.md §6's
// "optional scratch allocator" contract).
func Compile(root ast.Node, src *ast.Source, arena *scratch.Arena) (*bytecode.Executable, *diag.Error) {
	owned := arena == nil
	if owned {
		arena = scratch.New()
	}
	if owned {
		defer arena.Release()
	}

	g := &generator{
		b:    bytecode.NewExeBuilder(arena),
		file: src.File,
	}

	if err := g.emitNode(root, nil); err != nil {
		return nil, err
	}
	// Defensive trailing RETURN 0 at the program level, mirroring compile()
	// in the source: every compiled unit ends with a return even if every
	// path through the AST already returned explicitly.
	g.b.Append(bytecode.RETURN, []bytecode.Operand{bytecode.IntOperand(0)}, len(src.Text), 0)

	exe, err := g.b.Finalize(src.Text, src.File)
	if err != nil {
		return nil, diag.New(diag.KindUnresolvedJumpTarget, src.File, "compiler.Compile", 0, "%s", err.Error())
	}
	return exe, nil
}

// generator carries the state threaded through one compile pass: the
// instruction builder and the source file name used in diagnostics.
// break_dest is threaded through emitNode's parameter, not stored here,
// matching spec.md §4.4's "each recursive call is given a break
// destination."
type generator struct {
	b    *bytecode.ExeBuilder
	file string
}

func (g *generator) errf(node ast.Node, kind diag.Kind, format string, args ...interface{}) *diag.Error {
	span := node.Span()
	return diag.New(kind, g.file, "compiler.emitNode", span.Offset, format, args...)
}

// checkLiteralKeyHashable statically rejects a map literal key that is
// itself a list or map literal. spec.md §7 calls this case out directly:
// "UnhashableKey / IncomparableKey (runtime, reported through the same
// channel when the compiler hashes literal map keys — rare but
// possible)". A key written as a literal is known to produce a List or
// Map object — neither has a Hash capability (internal/object) — without
// waiting for the runtime INSERT to fail, so the compiler reports it
// through diag.Error instead. Non-literal keys (identifiers, calls, ...)
// can't be checked here and still fall back to the interpreter's own
// RuntimeError at runtime.
func (g *generator) checkLiteralKeyHashable(key ast.Node) *diag.Error {
	span := key.Span()
	switch key.(type) {
	case ast.List:
		return diag.Wrap(object.ErrUnhashable{Type: object.ListType.Name}, diag.KindUnhashableKey, g.file, "compiler.emitNode", span.Offset)
	case ast.MapLit:
		return diag.Wrap(object.ErrUnhashable{Type: object.MapType.Name}, diag.KindUnhashableKey, g.file, "compiler.emitNode", span.Offset)
	default:
		return nil
	}
}

func (g *generator) emit(op bytecode.Opcode, span ast.Span, operands ...bytecode.Operand) {
	g.b.Append(op, operands, span.Offset, span.Length)
}

// emitNode dispatches on node's concrete type and emits its lowering.
// breakDest is the Promise that `break` should jump to, or nil outside any
// loop.
func (g *generator) emitNode(node ast.Node, breakDest *bytecode.Promise) *diag.Error {
	switch n := node.(type) {
	case ast.IntLit:
		g.emit(bytecode.PUSHINT, n.Span(), bytecode.IntOperand(n.Value))
	case ast.FloatLit:
		g.emit(bytecode.PUSHFLT, n.Span(), bytecode.FloatOperand(n.Value))
	case ast.StringLit:
		g.emit(bytecode.PUSHSTR, n.Span(), bytecode.StringOperand(n.Value))
	case ast.Ident:
		g.emit(bytecode.PUSHVAR, n.Span(), bytecode.StringOperand(n.Name))
	case ast.NoneLit:
		g.emit(bytecode.PUSHNNE, n.Span())
	case ast.TrueLit:
		g.emit(bytecode.PUSHTRU, n.Span())
	case ast.FalseLit:
		g.emit(bytecode.PUSHFLS, n.Span())

	case ast.Unary:
		if err := g.emitNode(n.Operand, breakDest); err != nil {
			return err
		}
		g.emit(unaryOpcode(n.Op), n.Span())

	case ast.Binary:
		if err := g.emitNode(n.Left, breakDest); err != nil {
			return err
		}
		if err := g.emitNode(n.Right, breakDest); err != nil {
			return err
		}
		g.emit(binaryOpcode(n.Op), n.Span())

	case ast.List:
		g.emit(bytecode.PUSHLST, n.Span(), bytecode.IntOperand(int64(len(n.Items))))
		for i, item := range n.Items {
			g.emit(bytecode.PUSHINT, item.Span(), bytecode.IntOperand(int64(i)))
			if err := g.emitNode(item, breakDest); err != nil {
				return err
			}
			g.emit(bytecode.INSERT, item.Span())
		}

	case ast.MapLit:
		g.emit(bytecode.PUSHMAP, n.Span(), bytecode.IntOperand(int64(len(n.Keys))))
		for i := range n.Keys {
			if err := g.checkLiteralKeyHashable(n.Keys[i]); err != nil {
				return err
			}
			if err := g.emitNode(n.Keys[i], breakDest); err != nil {
				return err
			}
			if err := g.emitNode(n.Values[i], breakDest); err != nil {
				return err
			}
			g.emit(bytecode.INSERT, n.Span())
		}

	case ast.Index:
		if err := g.emitNode(n.Set, breakDest); err != nil {
			return err
		}
		if err := g.emitNode(n.Idx, breakDest); err != nil {
			return err
		}
		g.emit(bytecode.SELECT, n.Span())

	case ast.Call:
		if err := g.emitCall(n, 1, breakDest); err != nil {
			return err
		}

	case ast.Assign:
		if err := g.emitAssign(n, breakDest); err != nil {
			return err
		}

	case ast.IfElse:
		if err := g.emitIfElse(n, breakDest); err != nil {
			return err
		}

	case ast.While:
		if err := g.emitWhile(n); err != nil {
			return err
		}

	case ast.DoWhile:
		if err := g.emitDoWhile(n); err != nil {
			return err
		}

	case ast.Break:
		if breakDest == nil {
			return g.errf(n, diag.KindBreakOutsideLoop, "break outside of any loop")
		}
		g.emit(bytecode.JUMP, n.Span(), bytecode.PromiseOperand(breakDest))

	case ast.Compound:
		for _, stmt := range n.Stmts {
			if err := g.emitNode(stmt, breakDest); err != nil {
				return err
			}
			if ast.IsExpr(stmt) {
				g.emit(bytecode.POP, stmt.Span(), bytecode.IntOperand(1))
			}
		}

	case ast.Return:
		if err := g.emitReturn(n, breakDest); err != nil {
			return err
		}

	case ast.FuncDef:
		if err := g.emitFuncDef(n); err != nil {
			return err
		}

	default:
		return g.errf(node, diag.KindInvalidAssignmentTarget, "unhandled node type %T", node)
	}
	return nil
}

func unaryOpcode(op ast.UnaryOp) bytecode.Opcode {
	switch op {
	case ast.UnaryNot:
		return bytecode.NOT
	case ast.UnaryPos:
		return bytecode.POS
	default:
		return bytecode.NEG
	}
}

func binaryOpcode(op ast.BinaryOp) bytecode.Opcode {
	switch op {
	case ast.BinaryAdd:
		return bytecode.ADD
	case ast.BinarySub:
		return bytecode.SUB
	case ast.BinaryMul:
		return bytecode.MUL
	case ast.BinaryDiv:
		return bytecode.DIV
	case ast.BinaryEql:
		return bytecode.EQL
	case ast.BinaryNql:
		return bytecode.NQL
	case ast.BinaryLss:
		return bytecode.LSS
	case ast.BinaryLeq:
		return bytecode.LEQ
	case ast.BinaryGrt:
		return bytecode.GRT
	case ast.BinaryGeq:
		return bytecode.GEQ
	case ast.BinaryAnd:
		return bytecode.AND
	default:
		return bytecode.OR
	}
}

// emitCall lowers f(args...) with a caller-specified returns count
// (spec.md §4.4's Call rule): arguments first in source order, then the
// callee, then CALL argc,returns.
func (g *generator) emitCall(n ast.Call, returns int, breakDest *bytecode.Promise) *diag.Error {
	for _, a := range n.Args {
		if err := g.emitNode(a, breakDest); err != nil {
			return err
		}
	}
	if err := g.emitNode(n.Func, breakDest); err != nil {
		return err
	}
	g.emit(bytecode.CALL, n.Span(), bytecode.IntOperand(int64(len(n.Args))), bytecode.IntOperand(int64(returns)))
	return nil
}
