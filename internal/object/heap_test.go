package object

import "testing"

func TestHeapOOM(t *testing.T) {
	h := NewHeap(intSize) // room for exactly one Int
	if _, err := NewInt(h, 1); err != nil {
		t.Fatalf("first allocation should fit: %v", err)
	}
	if _, err := NewInt(h, 2); err == nil {
		t.Fatalf("second allocation should exceed the budget")
	} else if _, ok := err.(ErrOOM); !ok {
		t.Fatalf("error = %T, want ErrOOM", err)
	}
}

func TestHeapUnboundedByDefault(t *testing.T) {
	h := NewHeap(0)
	for i := 0; i < 10_000; i++ {
		if _, err := NewInt(h, int64(i)); err != nil {
			t.Fatalf("allocation %d failed on an unbounded heap: %v", i, err)
		}
	}
}

func TestTraceVisitsEachReferenceExactlyOnce(t *testing.T) {
	h := NewHeap(0)
	leaf, _ := NewInt(h, 1)
	list, _ := NewList(h, []Object{leaf, leaf, leaf})

	seen := map[Object]int{}
	for _, o := range h.Trace([]Object{list}) {
		seen[o]++
	}
	if seen[list] != 1 {
		t.Fatalf("list visited %d times, want 1", seen[list])
	}
	if seen[leaf] != 1 {
		t.Fatalf("shared leaf visited %d times, want 1", seen[leaf])
	}
}

func TestTraceFollowsClosureChain(t *testing.T) {
	h := NewHeap(0)
	outer, _ := NewClosure(h, nil)
	inner, _ := NewClosure(h, outer)

	k, _ := NewString(h, "x")
	v, _ := NewInt(h, 42)
	outer.Define(h, k, v)

	reached := h.Trace([]Object{inner})
	var sawOuter bool
	for _, o := range reached {
		if c, ok := o.(*Closure); ok && c == outer {
			sawOuter = true
		}
	}
	if !sawOuter {
		t.Fatalf("Trace from inner closure did not reach its Prev frame")
	}
}
