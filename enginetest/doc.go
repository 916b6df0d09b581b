// Package enginetest provides an instrumented in-memory hostbridge.Engine
// for tests.
//
// The fake serves scripted identities and rows, injects failures on demand,
// and records native-call occupancy so tests can assert that the gate never
// let two callers into "native code" at once:
//
//	eng := enginetest.New()
//	eng.Rows = [][]byte{[]byte("row one"), []byte("row two")}
//	b := hostbridge.New(eng, hostbridge.WithGate(gate.New()))
//	... hammer b from N goroutines ...
//	if eng.MaxOccupancy() != 1 {
//	    t.Fatal("overlapping native calls")
//	}
//
// Like a real engine, the fake reuses its row buffer: producing a row
// invalidates the previous row's window, and InvalidateAll kills every live
// window, standing in for a transaction rollback.
package enginetest
