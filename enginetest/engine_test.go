package enginetest

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/nexabase/hostbridge/errors"
)

func TestEngine_Identities(t *testing.T) {
	ctx := context.Background()
	eng := New()
	eng.UserID = 10
	eng.SessionID = 20
	eng.Names = map[int32]string{10: "alice"}

	id, err := eng.CurrentUser(ctx)
	if err != nil || id != 10 {
		t.Fatalf("CurrentUser = %d, %v", id, err)
	}
	id, err = eng.SessionUser(ctx)
	if err != nil || id != 20 {
		t.Fatalf("SessionUser = %d, %v", id, err)
	}

	name, err := eng.NameOf(ctx, 10)
	if err != nil || name != "alice" {
		t.Fatalf("NameOf = %q, %v", name, err)
	}
	if _, err := eng.NameOf(ctx, 99); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestEngine_CursorLifecycle(t *testing.T) {
	ctx := context.Background()
	eng := New()
	eng.Rows = [][]byte{[]byte("one"), []byte("two")}

	h, err := eng.OpenCursor(ctx, 16)
	if err != nil {
		t.Fatal(err)
	}

	row, ok, err := eng.FetchNext(ctx, h, 16)
	if err != nil || !ok {
		t.Fatalf("fetch 1: %v, %v", ok, err)
	}
	got, err := io.ReadAll(row)
	if err != nil || string(got) != "one" {
		t.Fatalf("row 1 = %q, %v", got, err)
	}

	row2, ok, err := eng.FetchNext(ctx, h, 16)
	if err != nil || !ok {
		t.Fatalf("fetch 2: %v, %v", ok, err)
	}
	// The first row's buffer was reused.
	if _, err := row.Read(make([]byte, 1)); !errors.IsKind(err, errors.KindResourceGone) {
		t.Fatalf("stale row: want resource_gone, got %v", err)
	}
	got, _ = io.ReadAll(row2)
	if string(got) != "two" {
		t.Fatalf("row 2 = %q", got)
	}

	_, ok, err = eng.FetchNext(ctx, h, 16)
	if err != nil || ok {
		t.Fatalf("fetch past end: %v, %v", ok, err)
	}

	if err := eng.CloseCursor(ctx, h); err != nil {
		t.Fatal(err)
	}
	if err := eng.CloseCursor(ctx, h); err != nil {
		t.Fatalf("closing an unknown handle must be a no-op: %v", err)
	}
}

func TestEngine_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	eng := New()
	eng.Rows = [][]byte{[]byte("one")}

	h, _ := eng.OpenCursor(ctx, 0)
	row, _, err := eng.FetchNext(ctx, h, 0)
	if err != nil {
		t.Fatal(err)
	}

	eng.InvalidateAll()

	if _, err := row.Read(make([]byte, 1)); !errors.IsKind(err, errors.KindResourceGone) {
		t.Fatalf("want resource_gone after rollback, got %v", err)
	}
}

func TestEngine_FailureInjection(t *testing.T) {
	ctx := context.Background()
	eng := New()
	eng.Fail = stderrors.New("backend down")

	if _, err := eng.CurrentUser(ctx); !stderrors.Is(err, eng.Fail) {
		t.Fatalf("want injected error, got %v", err)
	}
	if _, err := eng.OpenCursor(ctx, 0); !stderrors.Is(err, eng.Fail) {
		t.Fatalf("want injected error, got %v", err)
	}
}

func TestEngine_ClosedEngine(t *testing.T) {
	ctx := context.Background()
	eng := New()
	h, _ := eng.OpenCursor(ctx, 0)

	if err := eng.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := eng.CloseCursor(ctx, h); !errors.IsKind(err, errors.KindClosed) {
		t.Fatalf("want closed, got %v", err)
	}
	if _, _, err := eng.FetchNext(ctx, h, 0); !errors.IsKind(err, errors.KindClosed) {
		t.Fatalf("want closed, got %v", err)
	}
}

func TestEngine_CountsCalls(t *testing.T) {
	ctx := context.Background()
	eng := New()

	before := eng.Calls()
	_, _ = eng.CurrentUser(ctx)
	_, _ = eng.SessionUser(ctx)
	if eng.Calls()-before != 2 {
		t.Fatalf("calls = %d, want 2", eng.Calls()-before)
	}
	if eng.MaxOccupancy() != 1 {
		t.Fatalf("single-threaded use must observe occupancy 1, got %d", eng.MaxOccupancy())
	}
}
