package hostbridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexabase/hostbridge/cursor"
	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/gate"
	"github.com/nexabase/hostbridge/identity"
	"github.com/nexabase/hostbridge/window"
)

// CursorHandle identifies an open host-side cursor. Handle 0 is reserved
// and always invalid.
type CursorHandle uint32

// Engine is the set of native entry points the bridge calls. Every method
// must be assumed non-reentrant; the bridge invokes them only while holding
// the gate, so implementations must not take the gate themselves.
type Engine interface {
	identity.Source

	// OpenCursor opens a host-side cursor over the engine's current result
	// source, with fetchSize as the batching hint.
	OpenCursor(ctx context.Context, fetchSize int) (CursorHandle, error)

	// FetchNext produces the next row's reader, or ok=false at end of
	// data. Advancing may invalidate the previous row's reader.
	FetchNext(ctx context.Context, h CursorHandle, fetchSize int) (row *window.Reader, ok bool, err error)

	// CloseCursor releases a host-side cursor. Must be idempotent.
	CloseCursor(ctx context.Context, h CursorHandle) error

	// DefaultFetchSize reports the engine's default batching hint.
	DefaultFetchSize() int

	// Close tears down the engine.
	Close(ctx context.Context) error
}

// Bridge ties one engine to one call gate and is the construction root for
// everything above: identities, windows and cursors all route their native
// calls through it.
type Bridge struct {
	engine Engine
	gate   *gate.Gate
	log    *zap.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithGate uses g instead of the process-wide default gate. Only isolate a
// gate when the engine's native code is unrelated to every other engine in
// the process.
func WithGate(g *gate.Gate) Option {
	return func(b *Bridge) { b.gate = g }
}

// WithLogger sets the bridge logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New creates a bridge over engine.
func New(engine Engine, opts ...Option) *Bridge {
	b := &Bridge{
		engine: engine,
		gate:   gate.Default(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Gate returns the gate serializing this bridge's native calls.
func (b *Bridge) Gate() *gate.Gate {
	return b.gate
}

// CurrentUser returns the identity of the currently executing principal.
func (b *Bridge) CurrentUser(ctx context.Context) (identity.ID, error) {
	return identity.Current(ctx, b.gate, b.engine)
}

// SessionUser returns the identity that began the session.
func (b *Bridge) SessionUser(ctx context.Context) (identity.ID, error) {
	return identity.Session(ctx, b.gate, b.engine)
}

// NameOf resolves an identity to its display name.
func (b *Bridge) NameOf(ctx context.Context, id identity.ID) (string, error) {
	return identity.Name(ctx, b.gate, b.engine, id)
}

// OpenRows opens a forward-only cursor over the engine's current result
// source.
func (b *Bridge) OpenRows(ctx context.Context) (*cursor.Rows, error) {
	fetchSize := b.engine.DefaultFetchSize()

	var handle CursorHandle
	err := b.gate.Serialize(ctx, func(ctx context.Context) error {
		h, err := b.engine.OpenCursor(ctx, fetchSize)
		if err != nil {
			if errors.KindOf(err) != "" {
				return err
			}
			return errors.HostCall(errors.PhaseCursor, "open cursor", err)
		}
		handle = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug("cursor opened",
		zap.Uint32("handle", uint32(handle)),
		zap.Int("fetch_size", fetchSize))

	return cursor.New(b.gate, &engineSource{bridge: b, handle: handle}, fetchSize), nil
}

// Close tears down the engine under the gate.
func (b *Bridge) Close(ctx context.Context) error {
	return b.gate.Serialize(ctx, func(ctx context.Context) error {
		return b.engine.Close(ctx)
	})
}

// engineSource adapts one open engine cursor to cursor.Source. Its methods
// run inside the gate; Rows serializes before delegating.
type engineSource struct {
	bridge *Bridge
	handle CursorHandle
}

func (s *engineSource) Fetch(ctx context.Context, fetchSize int) (*window.Reader, bool, error) {
	row, ok, err := s.bridge.engine.FetchNext(ctx, s.handle, fetchSize)
	if err != nil {
		if errors.KindOf(err) != "" {
			return nil, false, err
		}
		return nil, false, errors.HostCall(errors.PhaseCursor, "fetch next", err)
	}
	return row, ok, nil
}

func (s *engineSource) Close(ctx context.Context) error {
	if err := s.bridge.engine.CloseCursor(ctx, s.handle); err != nil {
		if errors.KindOf(err) != "" {
			return err
		}
		return errors.HostCall(errors.PhaseCursor, "close cursor", err)
	}
	s.bridge.log.Debug("cursor closed", zap.Uint32("handle", uint32(s.handle)))
	return nil
}
