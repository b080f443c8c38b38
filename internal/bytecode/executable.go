package bytecode

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"wisp/internal/scratch"
)

// Executable is the immutable, indexable instruction vector a compile call
// produces (spec.md §3). It owns a reference to the source text so every
// instruction's (Offset, Length) span can be rendered for diagnostics.
type Executable struct {
	id     uuid.UUID
	instrs []Instruction
	source string
	file   string
}

func (e *Executable) ID() uuid.UUID       { return e.id }
func (e *Executable) Len() int            { return len(e.instrs) }
func (e *Executable) At(i int) Instruction { return e.instrs[i] }
func (e *Executable) Source() string      { return e.source }
func (e *Executable) File() string        { return e.file }

// Slice of the source text an instruction's span covers, clamped to the
// source's bounds (used by disassembly and diagnostics).
func (e *Executable) SpanText(instr Instruction) string {
	start := instr.Offset
	end := instr.Offset + instr.Length
	if start < 0 {
		start = 0
	}
	if end > len(e.source) {
		end = len(e.source)
	}
	if start > end {
		return ""
	}
	return e.source[start:end]
}

// ExeBuilder accumulates Instructions during one compile pass and
// finalizes them into an Executable, patching every PROMISE operand along
// the way (spec.md §4.4's "Finalization").
type ExeBuilder struct {
	arena  *scratch.Arena
	instrs []Instruction
}

func NewExeBuilder(arena *scratch.Arena) *ExeBuilder {
	return &ExeBuilder{arena: arena}
}

// InstrCount is the index the next Append call will land at — used by the
// generator to capture jump targets (both Promise-resolved forward jumps
// and the direct-INT do-while back-edge).
func (b *ExeBuilder) InstrCount() int { return len(b.instrs) }

func (b *ExeBuilder) Append(op Opcode, operands []Operand, offset, length int) {
	b.instrs = append(b.instrs, Instruction{Op: op, Operands: operands, Offset: offset, Length: length})
}

// NewPromise allocates a fresh forward-reference cell from the builder's
// scratch arena.
func (b *ExeBuilder) NewPromise() (*Promise, error) {
	return NewPromise(b.arena)
}

// Finalize resolves every PROMISE operand to an INT operand and returns the
// immutable Executable. An unresolved Promise at this point is an internal
// compiler bug, not a user error (spec.md §7's UnresolvedJumpTarget).
func (b *ExeBuilder) Finalize(source, file string) (*Executable, error) {
	for i := range b.instrs {
		for j, operand := range b.instrs[i].Operands {
			if operand.Kind != OperandPromise {
				continue
			}
			payload, ok := operand.Promise.Read()
			if !ok {
				return nil, errors.Errorf("unresolved jump target at instruction %d (opcode %s)", i, b.instrs[i].Op)
			}
			b.instrs[i].Operands[j] = IntOperand(payload)
		}
	}
	return &Executable{
		id:     uuid.New(),
		instrs: b.instrs,
		source: source,
		file:   file,
	}, nil
}
