package object

import (
	"io"
)

// List is the sequential composite: indexable by integer, appends at its
// current length when a write targets one-past-the-end (spec.md §3's
// list insert rule).
type List struct {
	base
	Items []Object
}

var ListType = newType("list", AtomicComposite)

const listHeaderSize = 24

func NewList(h *Heap, items []Object) (*List, error) {
	if err := h.charge(listHeaderSize + len(items)*8); err != nil {
		return nil, err
	}
	return &List{base: newBase(ListType), Items: items}, nil
}

func init() {
	ListType.Count = func(o Object) int { return len(o.(*List).Items) }
	ListType.Select = func(o Object, key Object, h *Heap) (Object, error) {
		l := o.(*List)
		idx, ok := ToInt(key)
		if !ok {
			return nil, ErrNotIndexable{Type: key.Type().Name}
		}
		if idx < 0 || int(idx) >= len(l.Items) {
			return nil, ErrIndexOutOfRange{Index: int(idx), Count: len(l.Items)}
		}
		return l.Items[idx], nil
	}
	ListType.Insert = func(o Object, key, val Object, h *Heap) error {
		l := o.(*List)
		idx, ok := ToInt(key)
		if !ok {
			return ErrNotIndexable{Type: key.Type().Name}
		}
		switch {
		case idx >= 0 && int(idx) < len(l.Items):
			l.Items[idx] = val
			return nil
		case int(idx) == len(l.Items):
			if err := h.AllocRaw(8); err != nil {
				return err
			}
			l.Items = append(l.Items, val)
			return nil
		default:
			return ErrIndexOutOfRange{Index: int(idx), Count: len(l.Items)}
		}
	}
	ListType.Copy = func(o Object, h *Heap) (Object, error) {
		l := o.(*List)
		items := make([]Object, len(l.Items))
		copy(items, l.Items)
		return NewList(h, items)
	}
	ListType.ToBool = func(o Object) bool { return len(o.(*List).Items) != 0 }
	ListType.Walk = func(o Object, visit func(slot *Object)) {
		l := o.(*List)
		for i := range l.Items {
			visit(&l.Items[i])
		}
	}
	ListType.Print = func(o Object, w io.Writer) {
		l := o.(*List)
		io.WriteString(w, "[")
		for i, it := range l.Items {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			Print(it, w)
		}
		io.WriteString(w, "]")
	}
}
