// Package window exposes host-owned memory regions as byte streams.
//
// A Reader wraps a Region supplied on demand by an Accessor. The accessor is
// the sole authority on liveness: every stream operation except Close asks
// it for the current region first, and the accessor must fail the instant
// the backing memory's validity window has ended (end of a host call,
// transaction rollback, cursor row advance) or the window is closed. What
// ends a region's validity is the accessor implementer's decision; nothing
// here hard-codes a trigger.
//
// All operations take the anchor lock before touching shared state. The
// anchor must be the same lock any external actor takes while invalidating
// the backing region, so "check validity" and "invalidate" can never
// interleave.
//
// Mark tolerates a failed liveness probe; Reset does not. A caller that
// marks a dying stream and never resets sees no spurious failure, but the
// same invalidity surfaces the moment a reset is attempted. That asymmetry
// is deliberate.
package window
