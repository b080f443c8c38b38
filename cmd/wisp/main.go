// Command wisp is the CLI driver for the language: run scripts, disassemble
// compiled bytecode, or drop into a REPL. SPEC_FULL.md §1 scopes this down
// from the example corpus's much larger CLI (lint/fmt/doc/build/watch/mod
// are all out of scope here) to run/disasm/repl/version/help, in the same
// hand-rolled os.Args-switch idiom.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"wisp/internal/ast"
	"wisp/internal/bytecode"
	"wisp/internal/clilog"
	"wisp/internal/compiler"
	"wisp/internal/disasm"
	"wisp/internal/interp"
	"wisp/internal/object"
	"wisp/internal/parser"
	"wisp/internal/prelude"
	"wisp/internal/repl"
)

const versionString = "wisp 0.1.0"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "disasm":
		cmdDisasm(os.Args[2:])
	case "repl":
		cmdRepl()
	case "version", "--version", "-v":
		fmt.Println(versionString)
	case "help", "--help", "-h":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`wisp - a small stack-based scripting language

Usage:
  wisp run <file> [--max-heap=<bytes>]   compile and execute a script
  wisp disasm <file>                     print a script's compiled bytecode
  wisp repl                              start an interactive session
  wisp version                           print the version
  wisp help                              print this message`)
}

func cmdRun(args []string) {
	if len(args) == 0 {
		clilog.Fatalf("run requires a filename")
	}
	filename := args[0]
	var maxHeap int64
	for _, a := range args[1:] {
		if n, ok := parseMaxHeap(a); ok {
			maxHeap = n
		}
	}

	exe, err := loadAndCompile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	heap := object.NewHeap(maxHeap)
	globals, err := object.NewClosure(heap, nil)
	if err != nil {
		clilog.Fatalf("%s", err)
	}
	if err := prelude.Load(heap, globals); err != nil {
		clilog.Fatalf("prelude: %s", err)
	}

	vm := interp.NewVM(heap, exe, globals)
	results, rerr := vm.Run()
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", rerr)
		os.Exit(1)
	}
	for _, r := range results {
		object.Print(r, os.Stdout)
		fmt.Println()
	}
}

func cmdDisasm(args []string) {
	if len(args) == 0 {
		clilog.Fatalf("disasm requires a filename")
	}
	exe, err := loadAndCompile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	color := isatty.IsTerminal(os.Stdout.Fd())
	fmt.Print(colorize(disasm.Disassemble(exe), color))
}

func cmdRepl() {
	showPrompt := isatty.IsTerminal(os.Stdout.Fd())
	if err := repl.Start(os.Stdin, os.Stdout, os.Stderr, showPrompt); err != nil {
		clilog.Fatalf("%s", err)
	}
}

// loadAndCompile reads, parses, and compiles filename, logging internal
// compiler errors (OOM, UnresolvedJumpTarget) through clilog before
// returning — the ambient logging SPEC_FULL.md §7 calls for.
func loadAndCompile(filename string) (*bytecode.Executable, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	root, perr := parser.Parse(string(src))
	if perr != nil {
		return nil, fmt.Errorf("parse error: %w", perr)
	}
	exe, cerr := compiler.Compile(root, ast.NewSource(string(src), filename), nil)
	if cerr != nil {
		if cerr.Internal {
			clilog.ReportError(cerr)
		}
		return nil, cerr
	}
	return exe, nil
}

// parseMaxHeap recognizes "--max-heap=<bytes>"; any other argument is
// reported as not-matched so callers can ignore unrecognized flags.
func parseMaxHeap(arg string) (int64, bool) {
	const prefix = "--max-heap="
	if !strings.HasPrefix(arg, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(arg, prefix), 10, 64)
	if err != nil {
		clilog.Fatalf("invalid --max-heap value %q: %v", arg, err)
	}
	return n, true
}

// colorize highlights each disassembly line in cyan when stdout is a
// terminal (github.com/mattn/go-isatty decides this), matching the
// DOMAIN STACK's "colorize disassembly/REPL output" wiring.
func colorize(s string, enabled bool) string {
	if !enabled {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = "\033[36m" + line + "\033[0m"
	}
	return strings.Join(lines, "\n")
}

// wispMain exposes main's logic as a func() int for
// github.com/rogpeppe/go-internal/testscript's RunMain harness, which
// re-execs this test binary as a subprocess per script and dispatches to
// registered commands by name.
func wispMain() int {
	main()
	return 0
}
