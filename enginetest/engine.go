package enginetest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	hostbridge "github.com/nexabase/hostbridge"
	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/window"
)

// Engine is a scripted, instrumented hostbridge.Engine. Configure the
// exported fields before use; they must not change while calls are in
// flight.
type Engine struct {
	// UserID and SessionID are returned by the identity snapshots.
	UserID    int32
	SessionID int32

	// Names resolves identities for NameOf; missing ids produce not_found.
	Names map[int32]string

	// Rows is the result set every cursor iterates.
	Rows [][]byte

	// FetchSize is the reported default batching hint; 0 means 64.
	FetchSize int

	// Fail, when set, makes every native call return this error.
	Fail error

	// CallDelay widens the race window inside each native call so overlap
	// bugs surface under the occupancy probe.
	CallDelay time.Duration

	occupancy atomic.Int32
	maxOcc    atomic.Int32
	calls     atomic.Int64

	mu         sync.Mutex
	cursors    map[hostbridge.CursorHandle]*fakeCursor
	nextHandle uint32
	closed     bool
}

// fakeCursor reuses one row buffer the way a host engine does: each fetch
// invalidates the previous row's window.
type fakeCursor struct {
	anchor sync.Mutex
	next   int
	live   *bool
}

// New creates an engine with one user, one resolvable name and no rows.
func New() *Engine {
	return &Engine{
		UserID:    42,
		SessionID: 42,
		Names:     map[int32]string{42: "postgres"},
		cursors:   make(map[hostbridge.CursorHandle]*fakeCursor),
	}
}

// MaxOccupancy reports the highest number of native calls ever observed in
// flight at once. Anything above 1 means the gate failed.
func (e *Engine) MaxOccupancy() int32 {
	return e.maxOcc.Load()
}

// Calls reports the total number of native calls made.
func (e *Engine) Calls() int64 {
	return e.calls.Load()
}

// InvalidateAll kills every live row window, standing in for a transaction
// rollback ending the regions' validity.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.cursors {
		c.anchor.Lock()
		if c.live != nil {
			*c.live = false
		}
		c.anchor.Unlock()
	}
}

func (e *Engine) enter() func() {
	// The probe must stay lock-free or it would serialize the very calls
	// it is checking for overlap.
	n := e.occupancy.Add(1)
	for {
		max := e.maxOcc.Load()
		if n <= max || e.maxOcc.CompareAndSwap(max, n) {
			break
		}
	}
	e.calls.Add(1)
	if e.CallDelay > 0 {
		time.Sleep(e.CallDelay)
	}
	return func() { e.occupancy.Add(-1) }
}

// CurrentUser implements identity.Source.
func (e *Engine) CurrentUser(ctx context.Context) (int32, error) {
	defer e.enter()()
	if e.Fail != nil {
		return 0, e.Fail
	}
	return e.UserID, nil
}

// SessionUser implements identity.Source.
func (e *Engine) SessionUser(ctx context.Context) (int32, error) {
	defer e.enter()()
	if e.Fail != nil {
		return 0, e.Fail
	}
	return e.SessionID, nil
}

// NameOf implements identity.Source.
func (e *Engine) NameOf(ctx context.Context, id int32) (string, error) {
	defer e.enter()()
	if e.Fail != nil {
		return "", e.Fail
	}
	name, ok := e.Names[id]
	if !ok {
		return "", errors.NotFound(errors.PhaseEngine, "name of", "identity dropped")
	}
	return name, nil
}

// OpenCursor implements hostbridge.Engine.
func (e *Engine) OpenCursor(ctx context.Context, fetchSize int) (hostbridge.CursorHandle, error) {
	defer e.enter()()
	if e.Fail != nil {
		return 0, e.Fail
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, errors.Closed(errors.PhaseEngine, "open cursor")
	}
	e.nextHandle++
	h := hostbridge.CursorHandle(e.nextHandle)
	e.cursors[h] = &fakeCursor{}
	return h, nil
}

// FetchNext implements hostbridge.Engine.
func (e *Engine) FetchNext(ctx context.Context, h hostbridge.CursorHandle, fetchSize int) (*window.Reader, bool, error) {
	defer e.enter()()
	if e.Fail != nil {
		return nil, false, e.Fail
	}

	e.mu.Lock()
	c, ok := e.cursors[h]
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, false, errors.Closed(errors.PhaseEngine, "fetch next")
	}
	if !ok {
		return nil, false, errors.NotFound(errors.PhaseEngine, "fetch next", "unknown cursor handle")
	}

	c.anchor.Lock()
	defer c.anchor.Unlock()

	if c.live != nil {
		*c.live = false
	}
	if c.next >= len(e.Rows) {
		return nil, false, nil
	}

	live := true
	c.live = &live
	region := window.NewRegion(e.Rows[c.next])
	c.next++

	reader := window.NewReader(&c.anchor, window.AccessorFunc(func() (*window.Region, error) {
		if !live {
			return nil, errors.ResourceGone(errors.PhaseWindow, "access", "row buffer reused by engine")
		}
		return region, nil
	}))
	return reader, true, nil
}

// CloseCursor implements hostbridge.Engine.
func (e *Engine) CloseCursor(ctx context.Context, h hostbridge.CursorHandle) error {
	defer e.enter()()
	if e.Fail != nil {
		return e.Fail
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.Closed(errors.PhaseEngine, "close cursor")
	}
	c, ok := e.cursors[h]
	if !ok {
		return nil
	}
	c.anchor.Lock()
	if c.live != nil {
		*c.live = false
	}
	c.anchor.Unlock()
	delete(e.cursors, h)
	return nil
}

// DefaultFetchSize implements hostbridge.Engine.
func (e *Engine) DefaultFetchSize() int {
	if e.FetchSize > 0 {
		return e.FetchSize
	}
	return 64
}

// Close implements hostbridge.Engine.
func (e *Engine) Close(ctx context.Context) error {
	defer e.enter()()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for h, c := range e.cursors {
		c.anchor.Lock()
		if c.live != nil {
			*c.live = false
		}
		c.anchor.Unlock()
		delete(e.cursors, h)
	}
	return nil
}
