package bytecode

import (
	"encoding/binary"
	"fmt"

	"wisp/internal/scratch"
)

// PromiseState tracks whether a Promise has been written to yet.
type PromiseState int

const (
	Unresolved PromiseState = iota
	Resolved
)

// Promise is the write-once forward-reference cell described in spec.md
// §4.5. Its payload lives in bytes handed out by the per-compile scratch
// Arena, matching the source's "allocated in the codegen scratch
// allocator" rule instead of an ordinary Go heap allocation.
type Promise struct {
	state PromiseState
	buf   []byte
}

// NewPromise allocates an unresolved Promise sized for one int64 payload,
// backed by arena.
func NewPromise(arena *scratch.Arena) (*Promise, error) {
	buf, err := arena.Alloc(8)
	if err != nil {
		return nil, err
	}
	return &Promise{state: Unresolved, buf: buf}, nil
}

// Resolve writes payload into the cell. Resolving an already-resolved
// Promise with the same payload is a no-op; resolving it with a different
// payload is a bug (spec.md §4.5, §8 round-trip property).
func (p *Promise) Resolve(payload int64) error {
	if p.state == Resolved {
		existing := int64(binary.LittleEndian.Uint64(p.buf))
		if existing == payload {
			return nil
		}
		return fmt.Errorf("promise already resolved to %d, cannot re-resolve to %d", existing, payload)
	}
	binary.LittleEndian.PutUint64(p.buf, uint64(payload))
	p.state = Resolved
	return nil
}

// Read returns the resolved payload, or ok=false if the Promise has not
// been resolved yet.
func (p *Promise) Read() (int64, bool) {
	if p.state != Resolved {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(p.buf)), true
}

func (p *Promise) IsResolved() bool { return p.state == Resolved }
