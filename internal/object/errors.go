package object

import "fmt"

// ErrOOM is returned by Heap allocation methods once the configured byte
// budget is exhausted (spec.md §6).
type ErrOOM struct {
	Requested int
	Used      int64
	Limit     int64
}

func (e ErrOOM) Error() string {
	return fmt.Sprintf("out of memory: requested %d bytes, used %d of %d byte budget", e.Requested, e.Used, e.Limit)
}

// ErrUnhashable is returned when a value without a Hash capability is used
// as a map key.
type ErrUnhashable struct{ Type string }

func (e ErrUnhashable) Error() string { return fmt.Sprintf("unhashable key of type %q", e.Type) }

// ErrIncomparable is returned when two map keys collide on hash but the
// key's type carries no Compare capability.
type ErrIncomparable struct{ Type string }

func (e ErrIncomparable) Error() string { return fmt.Sprintf("incomparable key of type %q", e.Type) }

// ErrNotIndexable is returned when Select is attempted on a value without
// a Select capability.
type ErrNotIndexable struct{ Type string }

func (e ErrNotIndexable) Error() string { return fmt.Sprintf("type %q does not support indexing", e.Type) }

// ErrReadOnly is returned when Insert is attempted on a value without an
// Insert capability.
type ErrReadOnly struct{ Type string }

func (e ErrReadOnly) Error() string { return fmt.Sprintf("type %q does not support index assignment", e.Type) }

// ErrIndexOutOfRange is returned by List's Select/Insert capabilities.
type ErrIndexOutOfRange struct {
	Index, Count int
}

func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for length %d", e.Index, e.Count)
}
