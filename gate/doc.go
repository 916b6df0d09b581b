// Package gate serializes entry into host-engine native code.
//
// The host engine is single threaded and non-reentrant across its own call
// stack, so every native entry point in the bridge runs under one
// process-wide mutual-exclusion gate. A Gate is a pure serialization
// wrapper: it transforms no results and swallows no failures.
//
//	g := gate.Default()
//	err := g.Serialize(ctx, func(ctx context.Context) error {
//	    row, ok, err = engine.FetchNext(ctx, h, fetchSize)
//	    return err // sole occupant of native code until here
//	})
//
// Gated operations may nest: the context passed to the gated function
// carries an ownership token, and a nested Serialize call that presents an
// owned context runs inline instead of deadlocking. Dropping that context
// drops the reentrancy, so gated functions must thread their ctx through.
//
// Fairness is whatever sync.Mutex provides; mutual exclusion is the only
// guaranteed property.
package gate
