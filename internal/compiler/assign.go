package compiler

import (
	"wisp/internal/ast"
	"wisp/internal/bytecode"
	"wisp/internal/diag"
)

// flattenTuple walks a right-nested ast.Pair tree left to right into a flat
// slice, mirroring the source's flattenTupleTree and its fixed 32-element
// static bound (spec.md §4.4, §7's TuplePairTooLarge).
func (g *generator) flattenTuple(root ast.Node) ([]ast.Node, *diag.Error) {
	var out []ast.Node
	node := root
	for {
		if pair, ok := node.(ast.Pair); ok {
			out = append(out, pair.Head)
			if len(out) > maxTupleArity {
				return nil, g.errf(pair, diag.KindTuplePairTooLarge,
					"tuple exceeds the maximum static arity of %d", maxTupleArity)
			}
			node = pair.Tail
			continue
		}
		out = append(out, node)
		if len(out) > maxTupleArity {
			return nil, g.errf(node, diag.KindTuplePairTooLarge,
				"tuple exceeds the maximum static arity of %d", maxTupleArity)
		}
		return out, nil
	}
}

// emitAssign lowers `lhs = rhs` per spec.md §4.4's Assignment rule.
func (g *generator) emitAssign(n ast.Assign, breakDest *bytecode.Promise) *diag.Error {
	targets, ferr := g.flattenTuple(n.Target)
	if ferr != nil {
		return ferr
	}

	if len(targets) == 1 {
		if err := g.emitNode(n.Value, breakDest); err != nil {
			return err
		}
	} else {
		call, ok := n.Value.(ast.Call)
		if !ok {
			return g.errf(n, diag.KindTupleArityMismatch,
				"assigning to %d targets requires a call expression on the right-hand side", len(targets))
		}
		if err := g.emitCall(call, len(targets), breakDest); err != nil {
			return err
		}
	}

	for i := len(targets) - 1; i >= 0; i-- {
		target := targets[i]
		switch t := target.(type) {
		case ast.Ident:
			g.emit(bytecode.ASS, t.Span(), bytecode.StringOperand(t.Name))
		case ast.Index:
			if err := g.emitNode(t.Set, breakDest); err != nil {
				return err
			}
			if err := g.emitNode(t.Idx, breakDest); err != nil {
				return err
			}
			g.emit(bytecode.INSERT2, t.Span())
		default:
			return g.errf(target, diag.KindInvalidAssignmentTarget,
				"assignment target must be an identifier or an index expression")
		}
		if i > 0 {
			g.emit(bytecode.POP, target.Span(), bytecode.IntOperand(1))
		}
	}
	return nil
}

// emitReturn lowers `return expr0, expr1, ...;` (or a bare `return;`) per
// spec.md §4.4's Return rule.
func (g *generator) emitReturn(n ast.Return, breakDest *bytecode.Promise) *diag.Error {
	if n.Value == nil {
		g.emit(bytecode.RETURN, n.Span(), bytecode.IntOperand(0))
		return nil
	}
	values, ferr := g.flattenTuple(n.Value)
	if ferr != nil {
		return ferr
	}
	for _, v := range values {
		if err := g.emitNode(v, breakDest); err != nil {
			return err
		}
	}
	g.emit(bytecode.RETURN, n.Span(), bytecode.IntOperand(int64(len(values))))
	return nil
}
