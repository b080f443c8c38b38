// Package scratch provides the per-compile bump allocator spec.md treats
// as an external collaborator ("the bump-pointer scratch allocator... is
// treated as external collaborator"). Rather than hand-rolling one, it
// wraps modernc.org/memory.Allocator, the arena allocator already present
// in the example corpus's dependency graph.
package scratch

import (
	"sync"

	"github.com/pkg/errors"
	"modernc.org/memory"
)

// Arena is acquired on entry to compiler.Compile and released on every
// exit path (spec.md §5). It backs every Promise payload cell allocated
// during one compile call.
type Arena struct {
	mu     sync.Mutex
	alloc  memory.Allocator
	blocks [][]byte
	freed  bool
}

func New() *Arena {
	return &Arena{}
}

// Alloc returns n zeroed bytes owned by the arena. The returned slice stays
// valid until Release is called.
func (a *Arena) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.freed {
		return nil, errors.New("scratch: arena already released")
	}

	b, err := a.alloc.Calloc(n)
	if err != nil {
		return nil, errors.Wrap(err, "scratch: out of memory")
	}
	a.blocks = append(a.blocks, b)
	return b, nil
}

// Release frees every block the arena handed out. It is safe to call more
// than once; only the first call does any work, matching the "released on
// every exit path" requirement without double-freeing on the error path.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.freed {
		return
	}
	for _, b := range a.blocks {
		a.alloc.Free(b)
	}
	a.blocks = nil
	a.freed = true
}
