package hostbridge_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	hostbridge "github.com/nexabase/hostbridge"
	"github.com/nexabase/hostbridge/enginetest"
	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/gate"
	"github.com/nexabase/hostbridge/identity"
)

func newBridge(eng *enginetest.Engine) *hostbridge.Bridge {
	// Each test gets its own gate so parallel tests don't serialize on the
	// process-wide default.
	return hostbridge.New(eng, hostbridge.WithGate(gate.New()))
}

func TestBridge_Identities(t *testing.T) {
	ctx := context.Background()
	eng := enginetest.New()
	eng.UserID = 42
	eng.SessionID = 7
	eng.Names = map[int32]string{42: "alice", 7: "bob"}
	b := newBridge(eng)

	cur, err := b.CurrentUser(ctx)
	if err != nil || cur != identity.ID(42) {
		t.Fatalf("CurrentUser = %v, %v", cur, err)
	}
	ses, err := b.SessionUser(ctx)
	if err != nil || ses != identity.ID(7) {
		t.Fatalf("SessionUser = %v, %v", ses, err)
	}

	name, err := b.NameOf(ctx, cur)
	if err != nil || name != "alice" {
		t.Fatalf("NameOf = %q, %v", name, err)
	}
	if _, err := b.NameOf(ctx, identity.ID(1000)); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestBridge_RowScan(t *testing.T) {
	ctx := context.Background()
	eng := enginetest.New()
	eng.Rows = [][]byte{[]byte("first row"), []byte("second row"), []byte("third row")}
	b := newBridge(eng)

	rows, err := b.OpenRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close(ctx)

	var got []string
	for {
		ok, err := rows.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		data, err := io.ReadAll(rows.Current())
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, string(data))
	}

	want := []string{"first row", "second row", "third row"}
	if len(got) != len(want) {
		t.Fatalf("scanned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

// The gate must keep every native call exclusive even when identities,
// cursors and windows are driven from many goroutines at once.
func TestBridge_NoNativeOverlap(t *testing.T) {
	ctx := context.Background()
	eng := enginetest.New()
	eng.Rows = [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	eng.CallDelay = 50 * time.Microsecond
	b := newBridge(eng)

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				switch (i + j) % 3 {
				case 0:
					if _, err := b.CurrentUser(ctx); err != nil {
						t.Errorf("current user: %v", err)
						return
					}
				case 1:
					if _, err := b.NameOf(ctx, identity.ID(42)); err != nil {
						t.Errorf("name of: %v", err)
						return
					}
				default:
					rows, err := b.OpenRows(ctx)
					if err != nil {
						t.Errorf("open rows: %v", err)
						return
					}
					for {
						ok, err := rows.Next(ctx)
						if err != nil || !ok {
							break
						}
					}
					_ = rows.Close(ctx)
				}
			}
		}(i)
	}
	wg.Wait()

	if eng.MaxOccupancy() != 1 {
		t.Fatalf("%d native calls overlapped inside the engine", eng.MaxOccupancy())
	}
	if eng.Calls() == 0 {
		t.Fatal("probe saw no calls")
	}
}

func TestBridge_RollbackKillsWindows(t *testing.T) {
	ctx := context.Background()
	eng := enginetest.New()
	eng.Rows = [][]byte{[]byte("payload")}
	b := newBridge(eng)

	rows, err := b.OpenRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := rows.Next(ctx); err != nil || !ok {
		t.Fatalf("advance: %v, %v", ok, err)
	}

	eng.InvalidateAll()

	if _, err := rows.Current().Read(make([]byte, 1)); !errors.IsKind(err, errors.KindResourceGone) {
		t.Fatalf("want resource_gone, got %v", err)
	}
}

func TestBridge_CloseTolerantCursorClose(t *testing.T) {
	ctx := context.Background()
	eng := enginetest.New()
	eng.Rows = [][]byte{[]byte("x")}
	b := newBridge(eng)

	rows, err := b.OpenRows(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Engine goes away first; closing the cursor afterwards is a no-op,
	// not an error.
	if err := b.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rows.Close(ctx); err != nil {
		t.Fatalf("cursor close after engine close: %v", err)
	}
}
