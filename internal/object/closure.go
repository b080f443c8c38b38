package object

import "io"

// Closure is the lexically-chained scope frame from o_closure.c: a Map of
// this frame's own bindings plus a pointer to the enclosing frame. Select
// walks Prev until a frame's own Vars map has the key or the chain ends.
type Closure struct {
	base
	Prev *Closure // nil at the outermost frame
	Vars *Map
}

var ClosureType = newType("closure", AtomicComposite)

const closureHeaderSize = 24

func NewClosure(h *Heap, prev *Closure) (*Closure, error) {
	if err := h.charge(closureHeaderSize); err != nil {
		return nil, err
	}
	vars, err := NewMap(h, 0)
	if err != nil {
		return nil, err
	}
	return &Closure{base: newBase(ClosureType), Prev: prev, Vars: vars}, nil
}

// Get resolves key by walking this frame, then Prev, then Prev.Prev, ...
func (c *Closure) Get(key Object) (Object, bool, error) {
	for f := c; f != nil; f = f.Prev {
		v, ok, err := f.Vars.Get(key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// Define binds key to val in this frame specifically, never walking Prev —
// the operation a FuncDef's parameter binding and a local declaration use.
func (c *Closure) Define(h *Heap, key, val Object) error {
	return c.Vars.Set(h, key, val)
}

// Assign rebinds key to val in the nearest enclosing frame that already
// defines it, falling back to defining it in this frame when no ancestor
// does (matching the source's "ASS just inserts in the current scope when
// the target is unbound" fallback).
func (c *Closure) Assign(h *Heap, key, val Object) error {
	for f := c; f != nil; f = f.Prev {
		if _, ok, err := f.Vars.Get(key); err != nil {
			return err
		} else if ok {
			return f.Vars.Set(h, key, val)
		}
	}
	return c.Vars.Set(h, key, val)
}

func init() {
	ClosureType.Select = func(o Object, key Object, h *Heap) (Object, error) {
		v, ok, err := o.(*Closure).Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return None_(), nil
		}
		return v, nil
	}
	ClosureType.Insert = func(o Object, key, val Object, h *Heap) error {
		return o.(*Closure).Assign(h, key, val)
	}
	ClosureType.Walk = func(o Object, visit func(slot *Object)) {
		c := o.(*Closure)
		if c.Prev != nil {
			var prevSlot Object = c.Prev
			visit(&prevSlot)
		}
		var varsSlot Object = c.Vars
		visit(&varsSlot)
	}
	ClosureType.Print = func(o Object, w io.Writer) { io.WriteString(w, "<closure>") }
}
