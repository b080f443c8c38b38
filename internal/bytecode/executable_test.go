package bytecode

import (
	"testing"

	"wisp/internal/scratch"
)

func TestPromiseResolveIsIdempotent(t *testing.T) {
	arena := scratch.New()
	defer arena.Release()

	p, err := NewPromise(arena)
	if err != nil {
		t.Fatalf("NewPromise: %v", err)
	}
	if p.IsResolved() {
		t.Fatalf("new promise should be unresolved")
	}
	if err := p.Resolve(42); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if err := p.Resolve(42); err != nil {
		t.Fatalf("re-resolving with the same payload should be a no-op: %v", err)
	}
	if err := p.Resolve(43); err == nil {
		t.Fatalf("re-resolving with a different payload should be an error")
	}
	v, ok := p.Read()
	if !ok || v != 42 {
		t.Fatalf("Read() = (%d, %v), want (42, true)", v, ok)
	}
}

func TestFinalizeResolvesAllPromiseOperands(t *testing.T) {
	arena := scratch.New()
	defer arena.Release()

	b := NewExeBuilder(arena)
	target, err := b.NewPromise()
	if err != nil {
		t.Fatalf("NewPromise: %v", err)
	}

	b.Append(JUMP, []Operand{PromiseOperand(target)}, 0, 0)
	b.Append(PUSHINT, []Operand{IntOperand(1)}, 1, 1)

	if err := target.Resolve(int64(b.InstrCount())); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	exe, err := b.Finalize("source", "<test>")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for i := 0; i < exe.Len(); i++ {
		for _, operand := range exe.At(i).Operands {
			if operand.Kind == OperandPromise {
				t.Fatalf("instruction %d still carries a PROMISE operand after Finalize", i)
			}
		}
	}

	jumpOperand := exe.At(0).Operands[0]
	if jumpOperand.Kind != OperandInt || jumpOperand.Int != 2 {
		t.Fatalf("jump target = %+v, want INT 2", jumpOperand)
	}
}

func TestFinalizeFailsOnUnresolvedPromise(t *testing.T) {
	arena := scratch.New()
	defer arena.Release()

	b := NewExeBuilder(arena)
	p, err := b.NewPromise()
	if err != nil {
		t.Fatalf("NewPromise: %v", err)
	}
	b.Append(JUMP, []Operand{PromiseOperand(p)}, 0, 0)

	if _, err := b.Finalize("source", "<test>"); err == nil {
		t.Fatalf("Finalize should fail on an unresolved promise")
	}
}
