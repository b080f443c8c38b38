package interp

import (
	"fmt"

	"wisp/internal/bytecode"
	"wisp/internal/object"
)

// negate implements unary NEG for int and float operands.
func negate(h *object.Heap, v object.Object) (object.Object, error) {
	switch n := v.(type) {
	case *object.Int:
		return object.NewInt(h, -n.Value)
	case *object.Float:
		return object.NewFloat(h, -n.Value)
	default:
		return nil, fmt.Errorf("cannot negate a %s", v.Type().Name)
	}
}

// numeric coerces a and b to a common representation: both ints stay
// int64; either operand being a Float promotes both to float64.
func numeric(a, b object.Object) (af, bf float64, ai, bi int64, isFloat bool, ok bool) {
	ai, aok := object.ToInt(a)
	bi2, bok := object.ToInt(b)
	_, aIsFloat := a.(*object.Float)
	_, bIsFloat := b.(*object.Float)
	if !aok || !bok {
		return 0, 0, 0, 0, false, false
	}
	if aIsFloat || bIsFloat {
		af, _ = object.ToFloat(a)
		bf, _ = object.ToFloat(b)
		return af, bf, 0, 0, true, true
	}
	return 0, 0, ai, bi2, false, true
}

// arith implements ADD/SUB/MUL/DIV. String ADD is concatenation, matching
// the prelude's stringFromInteger-adjacent expectation that `+` composes
// strings the way it composes numbers.
func arith(h *object.Heap, op bytecode.Opcode, a, b object.Object) (object.Object, error) {
	if op == bytecode.ADD {
		as, aIsStr := a.(*object.String)
		bs, bIsStr := b.(*object.String)
		if aIsStr && bIsStr {
			return object.NewString(h, as.Value+bs.Value)
		}
	}

	af, bf, ai, bi, isFloat, ok := numeric(a, b)
	if !ok {
		return nil, fmt.Errorf("unsupported operand types: %s and %s", a.Type().Name, b.Type().Name)
	}
	if isFloat {
		switch op {
		case bytecode.ADD:
			return object.NewFloat(h, af+bf)
		case bytecode.SUB:
			return object.NewFloat(h, af-bf)
		case bytecode.MUL:
			return object.NewFloat(h, af*bf)
		case bytecode.DIV:
			return object.NewFloat(h, af/bf)
		}
	}
	switch op {
	case bytecode.ADD:
		return object.NewInt(h, ai+bi)
	case bytecode.SUB:
		return object.NewInt(h, ai-bi)
	case bytecode.MUL:
		return object.NewInt(h, ai*bi)
	case bytecode.DIV:
		if bi == 0 {
			return object.NewFloat(h, float64(ai)/float64(bi))
		}
		return object.NewInt(h, ai/bi)
	}
	return nil, fmt.Errorf("unsupported operand types: %s and %s", a.Type().Name, b.Type().Name)
}

// compareOp implements EQL/NQL/LSS/LEQ/GRT/GEQ. Equality delegates to the
// operand's own Compare capability (structural equality, per spec.md §3);
// ordering operators require numeric operands.
func compareOp(op bytecode.Opcode, a, b object.Object) (bool, error) {
	if op == bytecode.EQL || op == bytecode.NQL {
		if a.Type() != b.Type() {
			return op == bytecode.NQL, nil
		}
		eq, err := object.Compare(a, b)
		if err != nil {
			return false, err
		}
		if op == bytecode.NQL {
			return !eq, nil
		}
		return eq, nil
	}

	af, bf, ai, bi, isFloat, ok := numeric(a, b)
	if !ok {
		return false, fmt.Errorf("unsupported operand types: %s and %s", a.Type().Name, b.Type().Name)
	}
	if isFloat {
		switch op {
		case bytecode.LSS:
			return af < bf, nil
		case bytecode.LEQ:
			return af <= bf, nil
		case bytecode.GRT:
			return af > bf, nil
		case bytecode.GEQ:
			return af >= bf, nil
		}
	}
	switch op {
	case bytecode.LSS:
		return ai < bi, nil
	case bytecode.LEQ:
		return ai <= bi, nil
	case bytecode.GRT:
		return ai > bi, nil
	case bytecode.GEQ:
		return ai >= bi, nil
	}
	return false, fmt.Errorf("unsupported operand types: %s and %s", a.Type().Name, b.Type().Name)
}
