package wazeroengine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	hostbridge "github.com/nexabase/hostbridge"
	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/window"
)

const (
	exportMemory      = "memory"
	exportCurrentUser = "engine_current_user"
	exportSessionUser = "engine_session_user"
	exportNameOf      = "engine_name_of"
	exportCursorOpen  = "engine_cursor_open"
	exportCursorFetch = "engine_cursor_fetch"
	exportCursorClose = "engine_cursor_close"
)

// Engine runs an engine wasm module under wazero and exposes it through
// the hostbridge.Engine contract. Methods must be invoked under the call
// gate; the wasm instance tolerates no concurrent calls.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	mem     api.Memory

	currentUser api.Function
	sessionUser api.Function
	nameOf      api.Function
	cursorOpen  api.Function
	cursorFetch api.Function
	cursorClose api.Function

	log       *zap.Logger
	fetchSize int

	mu      sync.Mutex
	cursors map[hostbridge.CursorHandle]*guestCursor
}

// guestCursor pairs a guest-side cursor handle with the anchor and
// generation that govern its row windows. Fetching or closing bumps the
// generation under the anchor, so a liveness check can never interleave
// with the invalidation.
type guestCursor struct {
	anchor sync.Mutex
	gen    uint64
	guest  uint32
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDefaultFetchSize overrides the default batching hint of 64.
func WithDefaultFetchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.fetchSize = n
		}
	}
}

// New compiles and instantiates the engine module from wasm bytes.
func New(ctx context.Context, wasm []byte, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:       zap.NewNop(),
		fetchSize: 64,
		cursors:   make(map[hostbridge.CursorHandle]*guestCursor),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.runtime = wazero.NewRuntime(ctx)

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		_ = e.runtime.Close(ctx)
		return nil, errors.HostCall(errors.PhaseEngine, "compile engine module", err)
	}

	e.module, err = e.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("engine"))
	if err != nil {
		_ = e.runtime.Close(ctx)
		return nil, errors.HostCall(errors.PhaseEngine, "instantiate engine module", err)
	}

	if e.mem = e.module.Memory(); e.mem == nil {
		_ = e.runtime.Close(ctx)
		return nil, errors.NotFound(errors.PhaseEngine, "load engine", "module exports no memory")
	}

	for _, exp := range []struct {
		name string
		fn   *api.Function
	}{
		{exportCurrentUser, &e.currentUser},
		{exportSessionUser, &e.sessionUser},
		{exportNameOf, &e.nameOf},
		{exportCursorOpen, &e.cursorOpen},
		{exportCursorFetch, &e.cursorFetch},
		{exportCursorClose, &e.cursorClose},
	} {
		if *exp.fn = e.module.ExportedFunction(exp.name); *exp.fn == nil {
			_ = e.runtime.Close(ctx)
			return nil, errors.NotFound(errors.PhaseEngine, "load engine",
				"missing export "+exp.name)
		}
	}

	e.log.Debug("engine module loaded", zap.String("name", e.module.Name()))
	return e, nil
}

// CurrentUser implements identity.Source.
func (e *Engine) CurrentUser(ctx context.Context) (int32, error) {
	res, err := e.currentUser.Call(ctx)
	if err != nil {
		return 0, errors.HostCall(errors.PhaseEngine, exportCurrentUser, err)
	}
	return int32(uint32(res[0])), nil
}

// SessionUser implements identity.Source.
func (e *Engine) SessionUser(ctx context.Context) (int32, error) {
	res, err := e.sessionUser.Call(ctx)
	if err != nil {
		return 0, errors.HostCall(errors.PhaseEngine, exportSessionUser, err)
	}
	return int32(uint32(res[0])), nil
}

// NameOf implements identity.Source. An id the engine does not know yields
// a not_found error, distinct from the call itself failing.
func (e *Engine) NameOf(ctx context.Context, id int32) (string, error) {
	res, err := e.nameOf.Call(ctx, uint64(uint32(id)))
	if err != nil {
		return "", errors.HostCall(errors.PhaseEngine, exportNameOf, err)
	}
	ptr, n, ok := unpackRegion(res[0])
	if !ok {
		return "", errors.NotFound(errors.PhaseEngine, "name of", "identity not known to engine")
	}
	view, ok := e.mem.Read(ptr, n)
	if !ok {
		return "", errors.New(errors.PhaseEngine, errors.KindHostCall).
			Op("name of").
			Detail("name region %d+%d out of range", ptr, n).
			Build()
	}
	// The view aliases guest memory; the string copy detaches it.
	return string(view), nil
}

// OpenCursor implements hostbridge.Engine.
func (e *Engine) OpenCursor(ctx context.Context, fetchSize int) (hostbridge.CursorHandle, error) {
	res, err := e.cursorOpen.Call(ctx, uint64(uint32(fetchSize)))
	if err != nil {
		return 0, errors.HostCall(errors.PhaseEngine, exportCursorOpen, err)
	}
	guest := uint32(res[0])
	if guest == 0 {
		return 0, errors.New(errors.PhaseEngine, errors.KindHostCall).
			Op("open cursor").
			Detail("engine refused to open a cursor").
			Build()
	}

	e.mu.Lock()
	h := hostbridge.CursorHandle(guest)
	e.cursors[h] = &guestCursor{guest: guest}
	e.mu.Unlock()

	e.log.Debug("guest cursor opened", zap.Uint32("handle", guest))
	return h, nil
}

// FetchNext implements hostbridge.Engine. Advancing invalidates the
// previous row's window before the guest may reuse its buffer.
func (e *Engine) FetchNext(ctx context.Context, h hostbridge.CursorHandle, fetchSize int) (*window.Reader, bool, error) {
	e.mu.Lock()
	c, ok := e.cursors[h]
	e.mu.Unlock()
	if !ok {
		return nil, false, errors.NotFound(errors.PhaseEngine, "fetch next", "unknown cursor handle")
	}

	// Invalidation and the guest call happen under the anchor: a reader of
	// the previous row either finishes before the buffer is reused or
	// observes resource_gone, never stale bytes.
	c.anchor.Lock()
	defer c.anchor.Unlock()
	c.gen++

	res, err := e.cursorFetch.Call(ctx, uint64(c.guest))
	if err != nil {
		return nil, false, errors.HostCall(errors.PhaseEngine, exportCursorFetch, err)
	}
	ptr, n, ok := unpackRegion(res[0])
	if !ok {
		return nil, false, nil
	}
	view, ok := e.mem.Read(ptr, n)
	if !ok {
		return nil, false, errors.New(errors.PhaseEngine, errors.KindHostCall).
			Op("fetch next").
			Detail("row region %d+%d out of range", ptr, n).
			Build()
	}

	region := window.NewRegion(view)
	gen := c.gen
	reader := window.NewReader(&c.anchor, window.AccessorFunc(func() (*window.Region, error) {
		if c.gen != gen {
			return nil, errors.ResourceGone(errors.PhaseWindow, "access",
				"row buffer invalidated by cursor advance")
		}
		return region, nil
	}))
	return reader, true, nil
}

// CloseCursor implements hostbridge.Engine. Closing an unknown handle is a
// no-op, so cursor teardown stays idempotent.
func (e *Engine) CloseCursor(ctx context.Context, h hostbridge.CursorHandle) error {
	e.mu.Lock()
	c, ok := e.cursors[h]
	delete(e.cursors, h)
	e.mu.Unlock()
	if !ok {
		return nil
	}

	c.anchor.Lock()
	c.gen++
	c.anchor.Unlock()

	if _, err := e.cursorClose.Call(ctx, uint64(c.guest)); err != nil {
		return errors.HostCall(errors.PhaseEngine, exportCursorClose, err)
	}
	e.log.Debug("guest cursor closed", zap.Uint32("handle", c.guest))
	return nil
}

// DefaultFetchSize implements hostbridge.Engine.
func (e *Engine) DefaultFetchSize() int {
	return e.fetchSize
}

// Close implements hostbridge.Engine, tearing down the wazero runtime and
// with it every region the engine ever handed out.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	for h, c := range e.cursors {
		c.anchor.Lock()
		c.gen++
		c.anchor.Unlock()
		delete(e.cursors, h)
	}
	e.mu.Unlock()

	if err := e.runtime.Close(ctx); err != nil {
		return errors.HostCall(errors.PhaseEngine, "close engine", err)
	}
	return nil
}

// unpackRegion splits the guest's packed ptr<<32|len convention. Zero means
// "nothing": end of data or an unknown id.
func unpackRegion(packed uint64) (ptr, n uint32, ok bool) {
	if packed == 0 {
		return 0, 0, false
	}
	return uint32(packed >> 32), uint32(packed), true
}
