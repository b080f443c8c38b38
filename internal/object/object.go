// Package object implements the runtime value representation and heap
// allocator the generated bytecode operates on (spec.md §3-§4.1-§4.3):
// the polymorphic Object model, the open-addressed Map, and the
// lexically-chained Closure.
package object

import "io"

// Flags carries per-instance bits. STATIC marks an object that is not
// heap-owned and must never be freed, moved, or mutated in place — the
// boolean singletons, the none singleton, every Type descriptor, and the
// transient lookup keys NewStringUnmanaged builds.
type Flags uint8

const FlagStatic Flags = 1 << 0

// Object is any runtime value. Every concrete variant embeds base, which
// supplies Type() and Flags().
type Object interface {
	Type() *Type
	Flags() Flags
}

type base struct {
	typ   *Type
	flags Flags
}

func (b *base) Type() *Type  { return b.typ }
func (b *base) Flags() Flags { return b.flags }

func newBase(t *Type) base { return base{typ: t} }

func staticBase(t *Type) base { return base{typ: t, flags: FlagStatic} }

// AtomicKind classifies the small set of built-in, pass-by-value-shaped
// types the interpreter coerces to/from directly. Composite types (List,
// Map, Closure, Function...) have no atomic kind.
type AtomicKind int

const (
	AtomicNone AtomicKind = iota
	AtomicBool
	AtomicInt
	AtomicFloat
	AtomicString
	AtomicComposite
)

// Capability function signatures — spec.md's capability table (§3). A nil
// field means "absent": unhashable, incomparable, not indexable, and so on.
type (
	HashFunc    func(o Object) (int64, error)
	CompareFunc func(a, b Object) (bool, error)
	CopyFunc    func(o Object, heap *Heap) (Object, error)
	SelectFunc  func(o Object, key Object, heap *Heap) (Object, error)
	InsertFunc  func(o Object, key, val Object, heap *Heap) error
	CountFunc   func(o Object) int
	ToBoolFunc  func(o Object) bool
	ToIntFunc   func(o Object) int64
	ToFloatFunc func(o Object) float64
	PrintFunc   func(o Object, w io.Writer)
	WalkFunc    func(o Object, visit func(slot *Object))
)

// Type is a type descriptor. It is itself an Object — its own Type() is
// TypeType, "the type of types" (spec.md §3).
type Type struct {
	base

	Name   string
	Size   int // informational instance size, mirrors the source's sizeof bookkeeping
	Atomic AtomicKind

	Hash    HashFunc
	Compare CompareFunc
	Copy    CopyFunc
	Select  SelectFunc
	Insert  InsertFunc
	Count   CountFunc
	ToBool  ToBoolFunc
	ToInt   ToIntFunc
	ToFloat ToFloatFunc
	Print   PrintFunc
	Walk    WalkFunc
}

// TypeType is the process-wide "type of types" singleton; every Type's
// Type() method returns it, and its own Type() returns itself.
var TypeType = &Type{Name: "type", Atomic: AtomicComposite}

func init() {
	TypeType.base = staticBase(TypeType)
}

func newType(name string, atomic AtomicKind) *Type {
	t := &Type{Name: name, Atomic: atomic}
	t.base = staticBase(TypeType)
	return t
}

// Hash reports the hash of o via its Type's capability table.
func Hash(o Object) (int64, error) {
	t := o.Type()
	if t.Hash == nil {
		return 0, ErrUnhashable{Type: t.Name}
	}
	return t.Hash(o)
}

// Compare reports structural equality between two values of the same type.
func Compare(a, b Object) (bool, error) {
	t := a.Type()
	if t.Compare == nil {
		return false, ErrIncomparable{Type: t.Name}
	}
	return t.Compare(a, b)
}

// Copy deep-ish copies o, used when o becomes a map key (spec.md's map key
// copy rule).
func Copy(o Object, heap *Heap) (Object, error) {
	t := o.Type()
	if t.Copy == nil {
		return o, nil // immutable atomic values may elide the copy (spec.md §9)
	}
	return t.Copy(o, heap)
}

// Select performs an indexed read o[key].
func Select(o Object, key Object, heap *Heap) (Object, error) {
	t := o.Type()
	if t.Select == nil {
		return nil, ErrNotIndexable{Type: t.Name}
	}
	return t.Select(o, key, heap)
}

// Insert performs an indexed write o[key] = val.
func Insert(o Object, key, val Object, heap *Heap) error {
	t := o.Type()
	if t.Insert == nil {
		return ErrReadOnly{Type: t.Name}
	}
	return t.Insert(o, key, val, heap)
}

// Count reports the cardinality of a collection.
func Count(o Object) int {
	t := o.Type()
	if t.Count == nil {
		return -1
	}
	return t.Count(o)
}

// ToBool, ToInt, ToFloat coerce o via its Type's capability table, falling
// back to permissive defaults for composite types without a coercion
// (true for non-nil composites, 0 otherwise) the way the interpreter needs
// when evaluating truthiness of, say, a function value.
func ToBool(o Object) bool {
	if t := o.Type(); t.ToBool != nil {
		return t.ToBool(o)
	}
	return true
}

func ToInt(o Object) (int64, bool) {
	if t := o.Type(); t.ToInt != nil {
		return t.ToInt(o), true
	}
	return 0, false
}

func ToFloat(o Object) (float64, bool) {
	if t := o.Type(); t.ToFloat != nil {
		return t.ToFloat(o), true
	}
	return 0, false
}

// Print writes a human-readable rendering of o to w.
func Print(o Object, w io.Writer) {
	if t := o.Type(); t.Print != nil {
		t.Print(o, w)
		return
	}
	io.WriteString(w, "<"+o.Type().Name+">")
}

// Walk enumerates every outgoing Object reference o holds, for tracing.
func Walk(o Object, visit func(slot *Object)) {
	if t := o.Type(); t.Walk != nil {
		t.Walk(o, visit)
	}
}
