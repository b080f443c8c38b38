package compiler

import (
	"wisp/internal/ast"
	"wisp/internal/bytecode"
	"wisp/internal/diag"
)

// trailingPop emits POP 1 after a branch/body node that is itself an
// expression (assignment included), discarding its value so that, like the
// non-expression statements (compound, if/else, loops, return, break,
// function definitions), it leaves nothing behind — spec.md §4.4's
// trailing-POP discipline, applied identically in if/else branches, loop
// bodies, and compound blocks.
func (g *generator) trailingPop(node ast.Node) {
	if ast.IsExpr(node) {
		g.emit(bytecode.POP, node.Span(), bytecode.IntOperand(1))
	}
}

// emitIfElse lowers if/else per spec.md §4.4: a JUMPIFNOTANDPOP to the
// else branch (or to done, when there is none), a JUMP past the true
// branch when there is an else, and the trailing-POP discipline on each
// branch.
func (g *generator) emitIfElse(n ast.IfElse, breakDest *bytecode.Promise) *diag.Error {
	if err := g.emitNode(n.Cond, breakDest); err != nil {
		return err
	}

	elseOrDone, err := g.b.NewPromise()
	if err != nil {
		return g.allocErr(n, err)
	}
	g.emit(bytecode.JUMPIFNOTANDPOP, n.Span(), bytecode.PromiseOperand(elseOrDone))

	if gerr := g.emitNode(n.TrueBranch, breakDest); gerr != nil {
		return gerr
	}
	g.trailingPop(n.TrueBranch)

	if n.FalseBranch == nil {
		if perr := elseOrDone.Resolve(int64(g.b.InstrCount())); perr != nil {
			return g.allocErr(n, perr)
		}
		return nil
	}

	done, err := g.b.NewPromise()
	if err != nil {
		return g.allocErr(n, err)
	}
	g.emit(bytecode.JUMP, n.Span(), bytecode.PromiseOperand(done))

	if perr := elseOrDone.Resolve(int64(g.b.InstrCount())); perr != nil {
		return g.allocErr(n, perr)
	}
	if gerr := g.emitNode(n.FalseBranch, breakDest); gerr != nil {
		return gerr
	}
	g.trailingPop(n.FalseBranch)

	if perr := done.Resolve(int64(g.b.InstrCount())); perr != nil {
		return g.allocErr(n, perr)
	}
	return nil
}

// emitWhile lowers `while cond body` per spec.md §4.4.
func (g *generator) emitWhile(n ast.While) *diag.Error {
	start := g.b.InstrCount()

	if err := g.emitNode(n.Cond, nil); err != nil {
		return err
	}

	end, perr := g.b.NewPromise()
	if perr != nil {
		return g.allocErr(n, perr)
	}
	g.emit(bytecode.JUMPIFNOTANDPOP, n.Span(), bytecode.PromiseOperand(end))

	if err := g.emitNode(n.Body, end); err != nil {
		return err
	}
	g.trailingPop(n.Body)

	g.emit(bytecode.JUMP, n.Span(), bytecode.IntOperand(int64(start)))
	if err := end.Resolve(int64(g.b.InstrCount())); err != nil {
		return g.allocErr(n, err)
	}
	return nil
}

// emitDoWhile lowers `do body while cond` per spec.md §4.4. The back-edge
// is a direct INT operand, not a Promise, because the target is already
// known at emission time.
func (g *generator) emitDoWhile(n ast.DoWhile) *diag.Error {
	start := g.b.InstrCount()

	// break inside a do-while has no natural "past the loop" instruction
	// index until the condition is lowered, so we allocate the break
	// Promise up front and resolve it after the back-edge jump, same as
	// while's `end`.
	end, perr := g.b.NewPromise()
	if perr != nil {
		return g.allocErr(n, perr)
	}

	if err := g.emitNode(n.Body, end); err != nil {
		return err
	}
	g.trailingPop(n.Body)

	if err := g.emitNode(n.Cond, end); err != nil {
		return err
	}
	g.emit(bytecode.JUMPIFANDPOP, n.Span(), bytecode.IntOperand(int64(start)))

	if err := end.Resolve(int64(g.b.InstrCount())); err != nil {
		return g.allocErr(n, err)
	}
	return nil
}

// emitFuncDef lowers a function definition per spec.md §4.4's inline-body
// layout: the function value is pushed and bound before the jump over the
// body, so the body's entry index is known without a second pass.
func (g *generator) emitFuncDef(n ast.FuncDef) *diag.Error {
	funcIndex, perr := g.b.NewPromise()
	if perr != nil {
		return g.allocErr(n, perr)
	}
	jump, perr := g.b.NewPromise()
	if perr != nil {
		return g.allocErr(n, perr)
	}

	g.emit(bytecode.PUSHFUN, n.Span(), bytecode.PromiseOperand(funcIndex), bytecode.IntOperand(int64(len(n.Params))))
	g.emit(bytecode.ASS, n.Span(), bytecode.StringOperand(n.Name))
	g.emit(bytecode.POP, n.Span(), bytecode.IntOperand(1))
	g.emit(bytecode.JUMP, n.Span(), bytecode.PromiseOperand(jump))

	if err := funcIndex.Resolve(int64(g.b.InstrCount())); err != nil {
		return g.allocErr(n, err)
	}

	// Arguments are pushed by the caller in source order (a0 first, deepest
	// on the stack; a_{k-1} last, on top — spec.md §4.4's Call rule), so the
	// prologue must consume them top-down in the reverse of declaration
	// order for param[i] to bind to argument i.
	for i := len(n.Params) - 1; i >= 0; i-- {
		g.emit(bytecode.ASS, n.Span(), bytecode.StringOperand(n.Params[i]))
		g.emit(bytecode.POP, n.Span(), bytecode.IntOperand(1))
	}

	if err := g.emitNode(n.Body, nil); err != nil {
		return err
	}
	g.trailingPop(n.Body)

	g.emit(bytecode.RETURN, n.Span(), bytecode.IntOperand(0))

	if err := jump.Resolve(int64(g.b.InstrCount())); err != nil {
		return g.allocErr(n, err)
	}
	return nil
}

func (g *generator) allocErr(n ast.Node, err error) *diag.Error {
	return diag.New(diag.KindOOM, g.file, "compiler", n.Span().Offset, "%s", err.Error())
}
