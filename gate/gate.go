package gate

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Gate is a reentrant mutual-exclusion gate around host-engine native code.
// The zero value is not usable; construct with New or use Default.
type Gate struct {
	mu  sync.Mutex
	log *zap.Logger
}

// ownerKey marks a context as executing inside a particular gate.
type ownerKey struct{}

var (
	defaultGate *Gate
	defaultOnce sync.Once
)

// Default returns the process-wide gate. All bridge components that share
// one host engine must share one gate; this is the well-known instance for
// the common single-engine process.
func Default() *Gate {
	defaultOnce.Do(func() {
		defaultGate = New()
	})
	return defaultGate
}

// New creates an independent gate. Use only when isolating a second engine
// whose native code is unrelated to the default one.
func New() *Gate {
	return &Gate{log: zap.NewNop()}
}

// SetLogger replaces the gate's logger. A nil logger restores the no-op
// default. Not safe to call concurrently with Serialize.
func (g *Gate) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	g.log = l
}

// Serialize runs fn while holding the gate, releasing it on every exit path
// including panics. The context passed to fn is marked as owning the gate,
// so fn may call Serialize again on the same gate without deadlocking,
// provided it passes that context along.
func (g *Gate) Serialize(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.owns(ctx) {
		return fn(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("gate acquired")
	return fn(context.WithValue(ctx, ownerKey{}, g))
}

// Held reports whether ctx is executing inside this gate. Intended for
// accessor implementations that want to assert their locking discipline.
func (g *Gate) Held(ctx context.Context) bool {
	return g.owns(ctx)
}

func (g *Gate) owns(ctx context.Context) bool {
	owner, _ := ctx.Value(ownerKey{}).(*Gate)
	return owner == g
}
