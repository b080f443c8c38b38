package object

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"
)

// ---- none -----------------------------------------------------------

type None struct{ base }

var NoneType = newType("none", AtomicNone)

var theNone = &None{base: staticBase(NoneType)}

// None_ returns the single none singleton.
func None_() *None { return theNone }

func init() {
	NoneType.Hash = func(o Object) (int64, error) { return 0, nil }
	NoneType.Compare = func(a, b Object) (bool, error) {
		_, ok := b.(*None)
		return ok, nil
	}
	NoneType.ToBool = func(o Object) bool { return false }
	NoneType.Print = func(o Object, w io.Writer) { io.WriteString(w, "none") }
}

// ---- bool -------------------------------------------------------------

type Bool struct {
	base
	Value bool
}

var BoolType = newType("bool", AtomicBool)

var (
	trueObj  = &Bool{base: staticBase(BoolType), Value: true}
	falseObj = &Bool{base: staticBase(BoolType), Value: false}
)

// NewBool returns one of the two static bool singletons.
func NewBool(v bool) *Bool {
	if v {
		return trueObj
	}
	return falseObj
}

func init() {
	BoolType.Hash = func(o Object) (int64, error) {
		if o.(*Bool).Value {
			return 1, nil
		}
		return 0, nil
	}
	BoolType.Compare = func(a, b Object) (bool, error) {
		bb, ok := b.(*Bool)
		return ok && a.(*Bool).Value == bb.Value, nil
	}
	BoolType.ToBool = func(o Object) bool { return o.(*Bool).Value }
	BoolType.ToInt = func(o Object) int64 {
		if o.(*Bool).Value {
			return 1
		}
		return 0
	}
	BoolType.ToFloat = func(o Object) float64 {
		if o.(*Bool).Value {
			return 1
		}
		return 0
	}
	BoolType.Print = func(o Object, w io.Writer) {
		if o.(*Bool).Value {
			io.WriteString(w, "true")
		} else {
			io.WriteString(w, "false")
		}
	}
}

// ---- int ----------------------------------------------------------------

type Int struct {
	base
	Value int64
}

var IntType = newType("int", AtomicInt)

const intSize = 16

func NewInt(h *Heap, v int64) (*Int, error) {
	if err := h.charge(intSize); err != nil {
		return nil, err
	}
	return &Int{base: newBase(IntType), Value: v}, nil
}

func init() {
	IntType.Hash = func(o Object) (int64, error) { return o.(*Int).Value, nil }
	IntType.Compare = func(a, b Object) (bool, error) {
		bb, ok := b.(*Int)
		return ok && a.(*Int).Value == bb.Value, nil
	}
	IntType.Copy = func(o Object, h *Heap) (Object, error) { return NewInt(h, o.(*Int).Value) }
	IntType.ToBool = func(o Object) bool { return o.(*Int).Value != 0 }
	IntType.ToInt = func(o Object) int64 { return o.(*Int).Value }
	IntType.ToFloat = func(o Object) float64 { return float64(o.(*Int).Value) }
	IntType.Print = func(o Object, w io.Writer) { fmt.Fprintf(w, "%d", o.(*Int).Value) }
}

// ---- float --------------------------------------------------------------

type Float struct {
	base
	Value float64
}

var FloatType = newType("float", AtomicFloat)

const floatSize = 16

func NewFloat(h *Heap, v float64) (*Float, error) {
	if err := h.charge(floatSize); err != nil {
		return nil, err
	}
	return &Float{base: newBase(FloatType), Value: v}, nil
}

func init() {
	FloatType.Hash = func(o Object) (int64, error) {
		return int64(math.Float64bits(o.(*Float).Value)), nil
	}
	FloatType.Compare = func(a, b Object) (bool, error) {
		bb, ok := b.(*Float)
		return ok && a.(*Float).Value == bb.Value, nil
	}
	FloatType.Copy = func(o Object, h *Heap) (Object, error) { return NewFloat(h, o.(*Float).Value) }
	FloatType.ToBool = func(o Object) bool { return o.(*Float).Value != 0 }
	FloatType.ToInt = func(o Object) int64 { return int64(o.(*Float).Value) }
	FloatType.ToFloat = func(o Object) float64 { return o.(*Float).Value }
	FloatType.Print = func(o Object, w io.Writer) { fmt.Fprintf(w, "%g", o.(*Float).Value) }
}

// ---- string ---------------------------------------------------------------

type String struct {
	base
	Value string
}

var StringType = newType("string", AtomicString)

func stringSize(s string) int { return 24 + len(s) }

func NewString(h *Heap, v string) (*String, error) {
	if err := h.charge(stringSize(v)); err != nil {
		return nil, err
	}
	return &String{base: newBase(StringType), Value: v}, nil
}

// NewStringUnmanaged builds a String that is not charged against any
// Heap's budget — for transient lookup keys (variable names turned into
// Map keys for a Closure.Get/Define call) that are never themselves
// inserted into a Map (Map.Set copies its key via object.Copy, which
// allocates the heap-resident copy that actually gets retained).
func NewStringUnmanaged(v string) *String {
	return &String{base: staticBase(StringType), Value: v}
}

func init() {
	StringType.Hash = func(o Object) (int64, error) {
		hh := fnv.New64a()
		io.WriteString(hh, o.(*String).Value)
		return int64(hh.Sum64()), nil
	}
	StringType.Compare = func(a, b Object) (bool, error) {
		bb, ok := b.(*String)
		return ok && a.(*String).Value == bb.Value, nil
	}
	StringType.Copy = func(o Object, h *Heap) (Object, error) { return NewString(h, o.(*String).Value) }
	StringType.ToBool = func(o Object) bool { return len(o.(*String).Value) != 0 }
	StringType.Count = func(o Object) int { return len(o.(*String).Value) }
	StringType.Print = func(o Object, w io.Writer) { fmt.Fprintf(w, "%q", o.(*String).Value) }
	StringType.Select = func(o Object, key Object, h *Heap) (Object, error) {
		s := o.(*String)
		idx, ok := ToInt(key)
		if !ok {
			return nil, ErrNotIndexable{Type: key.Type().Name}
		}
		if idx < 0 || int(idx) >= len(s.Value) {
			return nil, ErrIndexOutOfRange{Index: int(idx), Count: len(s.Value)}
		}
		return NewString(h, string(s.Value[idx]))
	}
}
