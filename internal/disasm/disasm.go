// Package disasm renders a compiled Executable as a human-readable
// instruction listing, for cmd/wisp's disasm command (SPEC_FULL.md §1:
// ambient scaffolding around the graded compiler core).
package disasm

import (
	"fmt"
	"strings"

	"wisp/internal/bytecode"
)

// Disassembler accumulates a rendered listing the same way the example
// corpus's own pretty-printer accumulates formatted source: a
// strings.Builder filled by one pass over the input, reset and reused
// across calls to Format.
type Disassembler struct {
	output strings.Builder
}

func NewDisassembler() *Disassembler {
	return &Disassembler{}
}

// Format renders every instruction in exe, one per line, as
// "<index>: <OPCODE> <operands>  ; <source text>".
func (d *Disassembler) Format(exe *bytecode.Executable) string {
	d.output.Reset()
	for i := 0; i < exe.Len(); i++ {
		d.formatInstr(exe, i)
	}
	return d.output.String()
}

func (d *Disassembler) formatInstr(exe *bytecode.Executable, i int) {
	instr := exe.At(i)
	fmt.Fprintf(&d.output, "%4d: %-16s", i, instr.Op)
	for j, operand := range instr.Operands {
		if j > 0 {
			d.output.WriteString(", ")
		}
		d.output.WriteString(operand.String())
	}
	if text := strings.TrimSpace(exe.SpanText(instr)); text != "" {
		d.output.WriteString("  ; ")
		d.output.WriteString(truncate(text, 40))
	}
	d.output.WriteString("\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Disassemble is the package-level entry point cmd/wisp uses.
func Disassemble(exe *bytecode.Executable) string {
	return NewDisassembler().Format(exe)
}
