// Package identity represents host-assigned security principals as opaque
// value types. An ID is only ever constructed from a value the host engine
// handed out; the managed side never derives one arithmetically. Two IDs
// built from the same native value compare equal regardless of when or
// where they were obtained, so IDs are usable as map keys.
package identity

import (
	"context"
	"fmt"

	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/gate"
)

// ID is an immutable host-assigned identity.
type ID int32

// String returns a stable textual form without calling into the host.
// Resolving the display name requires a gated lookup; use Name.
func (id ID) String() string {
	return fmt.Sprintf("acl:%d", int32(id))
}

// Source is the host engine's identity surface. All three calls are native
// entry points and must run under the gate; the helpers below do that.
type Source interface {
	CurrentUser(ctx context.Context) (int32, error)
	SessionUser(ctx context.Context) (int32, error)
	NameOf(ctx context.Context, id int32) (string, error)
}

// Current returns the identity of the currently executing principal.
func Current(ctx context.Context, g *gate.Gate, src Source) (ID, error) {
	var id ID
	err := g.Serialize(ctx, func(ctx context.Context) error {
		raw, err := src.CurrentUser(ctx)
		if err != nil {
			return errors.HostCall(errors.PhaseIdentity, "current user", err)
		}
		id = ID(raw)
		return nil
	})
	return id, err
}

// Session returns the identity that began the session. Under privilege
// switching this can differ from Current.
func Session(ctx context.Context, g *gate.Gate, src Source) (ID, error) {
	var id ID
	err := g.Serialize(ctx, func(ctx context.Context) error {
		raw, err := src.SessionUser(ctx)
		if err != nil {
			return errors.HostCall(errors.PhaseIdentity, "session user", err)
		}
		id = ID(raw)
		return nil
	})
	return id, err
}

// Name resolves id to its display name. Lookup misses keep the engine's
// not_found kind so callers can tell "identity was dropped" from a failed
// host call.
func Name(ctx context.Context, g *gate.Gate, src Source, id ID) (string, error) {
	var name string
	err := g.Serialize(ctx, func(ctx context.Context) error {
		n, err := src.NameOf(ctx, int32(id))
		if err != nil {
			if errors.IsKind(err, errors.KindNotFound) {
				return err
			}
			return errors.HostCall(errors.PhaseIdentity, "name of "+id.String(), err)
		}
		name = n
		return nil
	})
	return name, err
}
