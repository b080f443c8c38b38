package object

import "testing"

func TestListSelectAndInsert(t *testing.T) {
	h := NewHeap(0)
	a, _ := NewInt(h, 1)
	b, _ := NewInt(h, 2)
	l, err := NewList(h, []Object{a, b})
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}

	idx, _ := NewInt(h, 1)
	got, err := Select(l, idx, h)
	if err != nil || got.(*Int).Value != 2 {
		t.Fatalf("Select(1) = (%v, %v), want (2, nil)", got, err)
	}

	appendIdx, _ := NewInt(h, 2)
	c, _ := NewInt(h, 3)
	if err := Insert(l, appendIdx, c, h); err != nil {
		t.Fatalf("Insert at len(): %v", err)
	}
	if Count(l) != 3 {
		t.Fatalf("Count = %d, want 3", Count(l))
	}

	outOfRange, _ := NewInt(h, 5)
	if _, err := Select(l, outOfRange, h); err == nil {
		t.Fatalf("Select out of range should fail")
	}
}

func TestAtomicSingletonsAreIdentical(t *testing.T) {
	if NewBool(true) != NewBool(true) {
		t.Fatalf("NewBool(true) is not a stable singleton")
	}
	if None_() != None_() {
		t.Fatalf("None_() is not a stable singleton")
	}
	if NewBool(true) == NewBool(false) {
		t.Fatalf("true and false singletons collapsed to the same object")
	}
}
