package object

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Heap is the allocation and accounting authority every constructor in
// this package goes through (spec.md §4.1). Go's own garbage collector is
// the actual memory manager — idiomatic Go gives us no business writing a
// manual allocator or a moving collector — so Heap's job is the part of
// spec.md §4.1 that Go doesn't already do for free: enforcing an optional
// byte budget (surfacing OOM the way the source's bump allocator does),
// counting live objects, and providing a walk-based reachability audit
// over a caller-supplied root set.
type Heap struct {
	id      uuid.UUID
	limit   int64 // 0 means unbounded
	used    int64
	objects int64
}

// NewHeap creates a Heap. A limit of 0 disables the byte budget.
func NewHeap(limit int64) *Heap {
	return &Heap{id: uuid.New(), limit: limit}
}

func (h *Heap) ID() uuid.UUID { return h.id }

// SetLimit adjusts the byte budget after construction. (The CLI's
// --max-heap flag does not use it; it passes its limit to NewHeap.)
func (h *Heap) SetLimit(bytes int64) { h.limit = bytes }

// Stats is a point-in-time snapshot of heap usage, suitable for
// diagnostics; its String method formats byte sizes with go-humanize.
type Stats struct {
	Used    int64
	Limit   int64
	Objects int64
}

func (s Stats) String() string {
	if s.Limit == 0 {
		return humanize.Bytes(uint64(s.Used)) + " used, " + humanize.Comma(s.Objects) + " objects, unbounded"
	}
	return humanize.Bytes(uint64(s.Used)) + " of " + humanize.Bytes(uint64(s.Limit)) + " used, " + humanize.Comma(s.Objects) + " objects"
}

func (h *Heap) Stats() Stats {
	return Stats{Used: h.used, Limit: h.limit, Objects: h.objects}
}

// charge accounts n bytes against the budget, failing with ErrOOM if the
// limit would be exceeded. Every constructor in this package calls it
// before building its Go value.
func (h *Heap) charge(n int) error {
	if h.limit > 0 && h.used+int64(n) > h.limit {
		return ErrOOM{Requested: n, Used: h.used, Limit: h.limit}
	}
	h.used += int64(n)
	h.objects++
	return nil
}

// AllocRaw charges n bytes without creating a tracked Object — the
// realization of spec.md §4.1's "alloc_raw", used by Map for its mapper
// and key/value backing arrays, which are heap-accounted but are not
// themselves walkable Objects.
func (h *Heap) AllocRaw(n int) error {
	if h.limit > 0 && h.used+int64(n) > h.limit {
		return ErrOOM{Requested: n, Used: h.used, Limit: h.limit}
	}
	h.used += int64(n)
	return nil
}

// ReleaseRaw gives back n bytes previously charged via AllocRaw — used
// when Map's grow() retires an old backing array in favor of a larger one.
func (h *Heap) ReleaseRaw(n int) {
	h.used -= int64(n)
	if h.used < 0 {
		h.used = 0
	}
}

// Trace walks every Object transitively reachable from roots, visiting
// each reachable object exactly once (spec.md §8's walk invariant), and
// returns the set it found. It is an audit tool — a non-moving,
// non-collecting heap has nothing to reclaim on its own — wired for
// leak-detection tests and for the "every reference Walk enumerates is
// itself heap-resident" property.
func (h *Heap) Trace(roots []Object) []Object {
	seen := make(map[Object]bool)
	var order []Object
	var visit func(o Object)
	visit = func(o Object) {
		if o == nil || seen[o] {
			return
		}
		seen[o] = true
		order = append(order, o)
		Walk(o, func(slot *Object) {
			if slot != nil && *slot != nil {
				visit(*slot)
			}
		})
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}
