package diag

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestNewSetsOccurredAndPopulatesFields(t *testing.T) {
	e := New(KindBreakOutsideLoop, "prog.wisp", "compiler.emitNode", 42, "break outside of any loop")
	if !e.Occurred {
		t.Fatalf("Occurred = false, want true")
	}
	if e.File != "prog.wisp" || e.Func != "compiler.emitNode" || e.Line != 42 {
		t.Fatalf("location fields = %q/%q/%d, want prog.wisp/compiler.emitNode/42", e.File, e.Func, e.Line)
	}
	if e.Message != "break outside of any loop" {
		t.Fatalf("Message = %q, want %q", e.Message, "break outside of any loop")
	}
	if e.ID.String() == "" {
		t.Fatalf("ID is zero-valued")
	}
}

func TestNewKeepsFullMessageUnderHardCap(t *testing.T) {
	// spec.md §6's fixed-buffer fallback only fires on allocation
	// failure; fmt.Sprintf never fails that way, so a message well under
	// hardMessageCap must survive untruncated.
	msg := strings.Repeat("x", 1000)
	e := New(KindOOM, "f", "fn", 1, "%s", msg)
	if e.Truncated {
		t.Fatalf("Truncated = true for a %d-byte message, want false", len(msg))
	}
	if e.Message != msg {
		t.Fatalf("Message was altered: got %d bytes, want %d", len(e.Message), len(msg))
	}
}

func TestNewTruncatesPastHardMessageCap(t *testing.T) {
	msg := strings.Repeat("y", hardMessageCap+100)
	e := New(KindOOM, "f", "fn", 1, "%s", msg)
	if !e.Truncated {
		t.Fatalf("Truncated = false, want true")
	}
	if len(e.Message) != hardMessageCap {
		t.Fatalf("Message length = %d, want %d", len(e.Message), hardMessageCap)
	}
}

func TestInternalKindsAreFlaggedInternal(t *testing.T) {
	if e := New(KindOOM, "f", "fn", 1, "out of memory"); !e.Internal {
		t.Fatalf("KindOOM: Internal = false, want true")
	}
	if e := New(KindUnresolvedJumpTarget, "f", "fn", 1, "unresolved"); !e.Internal {
		t.Fatalf("KindUnresolvedJumpTarget: Internal = false, want true")
	}
	if e := New(KindBreakOutsideLoop, "f", "fn", 1, "break"); e.Internal {
		t.Fatalf("KindBreakOutsideLoop: Internal = true, want false (a user-source mistake, not a bug)")
	}
}

func TestKindStringNamesEveryVariant(t *testing.T) {
	kinds := []Kind{
		KindOOM, KindUnresolvedJumpTarget, KindBreakOutsideLoop, KindTupleArityMismatch,
		KindInvalidAssignmentTarget, KindTuplePairTooLarge, KindUnhashableKey, KindIncomparableKey,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "" || s == "Unknown" {
			t.Fatalf("Kind(%d).String() = %q, want a real name", k, s)
		}
		if seen[s] {
			t.Fatalf("duplicate Kind name %q", s)
		}
		seen[s] = true
	}
}

func TestKindStringFallsBackToUnknown(t *testing.T) {
	if s := Kind(999).String(); s != "Unknown" {
		t.Fatalf("Kind(999).String() = %q, want %q", s, "Unknown")
	}
}

func TestWrapPreservesUnderlyingErrorAsCause(t *testing.T) {
	underlying := errors.New("unhashable key of type \"list\"")
	e := Wrap(underlying, KindUnhashableKey, "prog.wisp", "compiler.emitNode", 7)
	if e.Kind != KindUnhashableKey {
		t.Fatalf("Kind = %s, want %s", e.Kind, KindUnhashableKey)
	}
	if !strings.Contains(e.Message, "unhashable key") {
		t.Fatalf("Message = %q, want it to mention the wrapped error", e.Message)
	}
	cause := e.Cause()
	if cause == nil || !strings.Contains(cause.Error(), "unhashable key") {
		t.Fatalf("Cause() = %v, want it to wrap %v", cause, underlying)
	}
}

func TestErrorStringIncludesLocationAndTruncationSuffix(t *testing.T) {
	e := New(KindOOM, "prog.wisp", "heap.charge", 3, "out of memory")
	if got := e.Error(); !strings.Contains(got, "prog.wisp") || !strings.Contains(got, "OOM") {
		t.Fatalf("Error() = %q, want it to mention file and kind", got)
	}
	e.Message = strings.Repeat("z", hardMessageCap)
	e.Truncated = true
	if got := e.Error(); !strings.Contains(got, "(truncated)") {
		t.Fatalf("Error() = %q, want a truncation suffix", got)
	}
}

func TestReportTagsInternalErrorsDifferentlyFromOrdinaryOnes(t *testing.T) {
	ordinary := New(KindBreakOutsideLoop, "prog.wisp", "compiler.emitNode", 1, "break outside of any loop")
	if r := ordinary.Report(); strings.Contains(r, "internal") {
		t.Fatalf("Report() = %q, want no \"internal\" tag for a user-source error", r)
	}
	internal := New(KindOOM, "prog.wisp", "heap.charge", 1, "out of memory")
	if r := internal.Report(); !strings.Contains(r, "internal error") {
		t.Fatalf("Report() = %q, want it tagged as an internal error", r)
	}
}
