// Package repl implements an interactive read-compile-run loop over
// internal/compiler and internal/interp — the REPL named as ambient
// scaffolding in SPEC_FULL.md §1, grounded on the example corpus's own
// line-at-a-time REPL shape: a fresh lexer/parser/compiler and VM per
// line, all sharing one Heap and one root closure, so globals persist
// across lines.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"wisp/internal/ast"
	"wisp/internal/compiler"
	"wisp/internal/interp"
	"wisp/internal/object"
	"wisp/internal/parser"
	"wisp/internal/prelude"
)

const prompt = ">>> "

// Start runs the loop, reading lines from in until EOF or a bare "exit"
// line, writing prompts and results to out and errors to errOut.
// showPrompt suppresses the ">>> " prompt when out isn't a terminal
// (cmd/wisp decides this via github.com/mattn/go-isatty before calling in).
func Start(in io.Reader, out, errOut io.Writer, showPrompt bool) error {
	fmt.Fprintln(out, "wisp REPL | type 'exit' to quit")

	heap := object.NewHeap(0)
	globals, err := object.NewClosure(heap, nil)
	if err != nil {
		return err
	}
	if err := prelude.Load(heap, globals); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if showPrompt {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		root, perr := parser.Parse(line)
		if perr != nil {
			fmt.Fprintf(errOut, "parse error: %s\n", perr)
			continue
		}
		exe, cerr := compiler.Compile(root, ast.NewSource(line, "<repl>"), nil)
		if cerr != nil {
			fmt.Fprintf(errOut, "compile error: %s\n", cerr)
			continue
		}
		vm := interp.NewVM(heap, exe, globals)
		results, rerr := vm.Run()
		if rerr != nil {
			fmt.Fprintf(errOut, "runtime error: %s\n", rerr)
			continue
		}
		for _, r := range results {
			object.Print(r, out)
			fmt.Fprintln(out)
		}
	}
	return scanner.Err()
}
