// Package diag implements the Error channel spec.md §6/§7 describes: a
// reportable error value carrying an occurred/internal split, a source
// location, and a formatted message with a truncation flag, the Go
// restatement of the source's vsnprintf-with-fallback-to-fixed-buffer
// pattern (the message is kept whole up to hardMessageCap).
package diag

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
)

// Kind enumerates the error kinds spec.md §7 names.
type Kind int

const (
	KindOOM Kind = iota
	KindUnresolvedJumpTarget
	KindBreakOutsideLoop
	KindTupleArityMismatch
	KindInvalidAssignmentTarget
	KindTuplePairTooLarge
	KindUnhashableKey
	KindIncomparableKey
)

var kindNames = map[Kind]string{
	KindOOM:                     "OOM",
	KindUnresolvedJumpTarget:    "UnresolvedJumpTarget",
	KindBreakOutsideLoop:        "BreakOutsideLoop",
	KindTupleArityMismatch:      "TupleArityMismatch",
	KindInvalidAssignmentTarget: "InvalidAssignmentTarget",
	KindTuplePairTooLarge:       "TuplePairTooLarge",
	KindUnhashableKey:           "UnhashableKey",
	KindIncomparableKey:         "IncomparableKey",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// internalKinds are bugs in this program, not mistakes in the user's
// source — spec.md §7 calls these out so downstream UI can distinguish
// them from ordinary compile errors.
var internalKinds = map[Kind]bool{
	KindOOM:                  true,
	KindUnresolvedJumpTarget: true,
}

// spec.md §6 describes a fixed ≥256-byte inline report buffer that the
// source falls back to — truncating — only when the malloc for a larger
// buffer fails. Go's fmt.Sprintf has no equivalent allocation-failure
// path, so New keeps the full formatted message whenever formatting
// succeeds, which in practice is always. hardMessageCap is the Go
// analogue of that malloc-failure fallback: a backstop against a runaway
// formatted message (e.g. a deeply nested value dump) growing large
// enough to itself be a memory hazard, rather than a bound ordinary
// messages ever hit.
const hardMessageCap = 64 * 1024

// Error is the Error channel value. It satisfies the standard error
// interface so it composes with ordinary Go error handling at the CLI
// boundary, while still carrying the richer field set spec.md §6 requires.
type Error struct {
	ID        uuid.UUID
	Occurred  bool
	Internal  bool
	Kind      Kind
	File      string
	Func      string
	Line      int
	Message   string
	Truncated bool
	Time      time.Time
	cause     error
}

// New builds a reportable Error. The formatted message is kept in full
// unless it exceeds hardMessageCap, in which case it is truncated and
// Truncated is set — the Go analogue of the source falling back to its
// fixed inline buffer when the larger allocation fails.
func New(kind Kind, file, fn string, line int, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	truncated := false
	if len(msg) > hardMessageCap {
		msg = msg[:hardMessageCap]
		truncated = true
	}
	return &Error{
		ID:        uuid.New(),
		Occurred:  true,
		Internal:  internalKinds[kind],
		Kind:      kind,
		File:      file,
		Func:      fn,
		Line:      line,
		Message:   msg,
		Truncated: truncated,
		Time:      time.Now(),
		cause:     errors.Errorf("%s: %s", kind, msg),
	}
}

// Wrap attaches kind/location information to an existing error (e.g. one
// surfaced from the object package's capability dispatch), preserving it
// as the Error's cause chain via github.com/pkg/errors.
func Wrap(err error, kind Kind, file, fn string, line int) *Error {
	e := New(kind, file, fn, line, "%s", err.Error())
	e.cause = errors.Wrap(err, kind.String())
	return e
}

func (e *Error) Error() string {
	suffix := ""
	if e.Truncated {
		suffix = " (truncated)"
	}
	return fmt.Sprintf("%s:%d: %s: %s%s", e.File, e.Line, e.Kind, e.Message, suffix)
}

// Cause returns the underlying error, for github.com/pkg/errors.Cause
// compatibility.
func (e *Error) Cause() error { return e.cause }

// Report renders a one-line, timestamped diagnostic for the CLI's
// structured log (internal/clilog), using strftime formatting the way the
// example corpus's diagnostics render timestamps.
func (e *Error) Report() string {
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", e.Time)
	tag := "error"
	if e.Internal {
		tag = "internal error"
	}
	return fmt.Sprintf("[%s] %s (%s) %s:%d: %s", ts, tag, e.ID, e.File, e.Line, e.Message)
}
