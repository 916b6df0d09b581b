package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(PhaseWindow, KindResourceGone).
		Op("read").
		Detail("row buffer invalidated").
		Build()

	msg := err.Error()
	if !strings.HasPrefix(msg, "[window] resource_gone") {
		t.Fatalf("unexpected prefix: %q", msg)
	}
	if !strings.Contains(msg, "in read") {
		t.Fatalf("missing op: %q", msg)
	}
	if !strings.Contains(msg, "row buffer invalidated") {
		t.Fatalf("missing detail: %q", msg)
	}
}

func TestError_CauseChain(t *testing.T) {
	cause := stderrors.New("trap: out of bounds")
	err := HostCall(PhaseEngine, "fetch next", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("cause should be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "caused by: trap: out of bounds") {
		t.Fatalf("cause missing from message: %q", err.Error())
	}
}

func TestError_IsMatching(t *testing.T) {
	err := Unsupported(PhaseCursor, "absolute positioning")

	// Exact match
	if !stderrors.Is(err, &Error{Phase: PhaseCursor, Kind: KindUnsupported}) {
		t.Fatal("exact phase+kind should match")
	}
	// Kind wildcard across phases
	if !stderrors.Is(err, &Error{Kind: KindUnsupported}) {
		t.Fatal("kind-only target should match any phase")
	}
	// Mismatches
	if stderrors.Is(err, &Error{Kind: KindInvalidArgument}) {
		t.Fatal("different kind should not match")
	}
	if stderrors.Is(err, &Error{Phase: PhaseWindow, Kind: KindUnsupported}) {
		t.Fatal("different phase should not match")
	}
}

func TestKindOf(t *testing.T) {
	err := InvalidArgument(PhaseCursor, "set fetch size", "size must be positive", -5)
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument, got %q", KindOf(err))
	}
	if PhaseOf(err) != PhaseCursor {
		t.Fatalf("expected cursor, got %q", PhaseOf(err))
	}

	// Wrapped one level deeper
	wrapped := fmt.Errorf("advance: %w", err)
	if !IsKind(wrapped, KindInvalidArgument) {
		t.Fatal("kind should survive wrapping")
	}

	if KindOf(stderrors.New("plain")) != "" {
		t.Fatal("plain error should have no kind")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{Unsupported(PhaseCursor, "rewind"), KindUnsupported},
		{InvalidArgument(PhaseCursor, "op", "bad", 0), KindInvalidArgument},
		{ResourceGone(PhaseWindow, "read", "gone"), KindResourceGone},
		{HostCall(PhaseEngine, "call", stderrors.New("x")), KindHostCall},
		{NotFound(PhaseIdentity, "name of", "id 42"), KindNotFound},
		{Closed(PhaseWindow, "reset"), KindClosed},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Fatalf("expected %q, got %q", tt.kind, tt.err.Kind)
		}
		if tt.err.Error() == "" {
			t.Fatal("empty message")
		}
	}
}
