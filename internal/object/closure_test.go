package object

import "testing"

func TestClosureResolvesThroughPrevChain(t *testing.T) {
	h := NewHeap(0)
	outer, _ := NewClosure(h, nil)
	inner, _ := NewClosure(h, outer)

	k, _ := NewString(h, "x")
	v, _ := NewInt(h, 7)
	if err := outer.Define(h, k, v); err != nil {
		t.Fatalf("Define: %v", err)
	}

	got, ok, err := inner.Get(k)
	if err != nil || !ok {
		t.Fatalf("Get through chain = (%v, %v, %v)", got, ok, err)
	}
	if got.(*Int).Value != 7 {
		t.Fatalf("Get = %d, want 7", got.(*Int).Value)
	}
}

func TestClosureAssignRebindsInOwningFrame(t *testing.T) {
	h := NewHeap(0)
	outer, _ := NewClosure(h, nil)
	inner, _ := NewClosure(h, outer)

	k, _ := NewString(h, "x")
	v1, _ := NewInt(h, 1)
	outer.Define(h, k, v1)

	v2, _ := NewInt(h, 2)
	if err := inner.Assign(h, k, v2); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if _, ok, _ := inner.Vars.Get(k); ok {
		t.Fatalf("Assign leaked a binding into the inner frame")
	}
	got, _, _ := outer.Get(k)
	if got.(*Int).Value != 2 {
		t.Fatalf("outer frame not rebound: got %d, want 2", got.(*Int).Value)
	}
}

func TestClosureAssignToUnboundNameDefinesLocally(t *testing.T) {
	h := NewHeap(0)
	inner, _ := NewClosure(h, nil)

	k, _ := NewString(h, "y")
	v, _ := NewInt(h, 9)
	if err := inner.Assign(h, k, v); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	got, ok, _ := inner.Vars.Get(k)
	if !ok || got.(*Int).Value != 9 {
		t.Fatalf("Assign to unbound name did not define it locally")
	}
}
