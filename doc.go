// Package hostbridge bridges multi-threaded Go and a single-threaded,
// transaction-scoped host engine.
//
// The host engine is assumed non-reentrant: no two native calls may execute
// concurrently, and the memory regions it hands out (result rows, large
// object buffers) stay valid only for a window of time the managed side
// does not control. The bridge makes both assumptions structural:
//
//   - every native entry point runs under one process-wide call gate
//     (package gate);
//   - host-owned memory is only reachable through liveness-checked stream
//     windows (package window);
//   - row iteration is a forward-only cursor that rejects, loudly, every
//     operation the host model cannot provide (package cursor);
//   - host-assigned principals are opaque value identities (package
//     identity).
//
// # Quick Start
//
//	eng, err := wazeroengine.New(ctx, engineWASM)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b := hostbridge.New(eng)
//	defer b.Close(ctx)
//
//	user, err := b.CurrentUser(ctx)
//	name, err := b.NameOf(ctx, user)
//
//	rows, err := b.OpenRows(ctx)
//	defer rows.Close(ctx)
//	for {
//	    ok, err := rows.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    data, _ := io.ReadAll(rows.Current())
//	}
//
// # Thread Safety
//
// Bridge and Engine are safe for concurrent use; the gate totally orders
// native calls from all goroutines. Rows and window readers are
// single-owner state: one goroutine drives each, though their host calls
// still serialize through the gate.
//
// # Engines
//
// Engine implementations decide what ends a memory region's validity
// (cursor advance, end of call, transaction rollback) and report it through
// their window accessors. The wazeroengine package provides an Engine over
// a WebAssembly engine module; enginetest provides an instrumented
// in-memory fake for tests.
package hostbridge
