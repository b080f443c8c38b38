// Package clilog is cmd/wisp's structured-logging wrapper (SPEC_FULL.md
// §7's ambient-logging expansion), in the style of the example corpus's
// own ad hoc log.Fatalf/fmt.Fprintf diagnostics: a thin layer over the
// standard log package, not a third-party logging framework, since that's
// what the teacher itself reaches for at the CLI boundary.
package clilog

import (
	"log"
	"os"

	"wisp/internal/diag"
)

var logger = log.New(os.Stderr, "wisp: ", log.LstdFlags)

// ReportError logs a diag.Error's structured one-line report (diag's own
// Report method) before the caller exits non-zero. Internal errors (OOM,
// UnresolvedJumpTarget) get an explicit "internal error" tag so an
// operator can tell a compiler bug from a user mistake at a glance.
func ReportError(err *diag.Error) {
	logger.Print(err.Report())
}

// Fatalf is log.Fatalf under a "wisp: " prefix, for the CLI's own
// argument/IO errors that never touch the diag.Error channel.
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
