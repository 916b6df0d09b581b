// Package cursor presents host-engine row iteration as a forward-only
// cursor.
//
// The host's row source is one-pass: it knows the current row and how to
// produce the next one, nothing else. Rather than emulate rewinding or
// random access by buffering rows (which silently explodes memory on large
// results), every positioning operation the model cannot provide fails
// loudly with an unsupported-feature error, forcing callers to adapt
// instead of degrade.
//
// Row numbering follows the JDBC convention: 0 means before the first row,
// n >= 1 is the n-th row, and a negative row means closed or after the last
// row. The row number only ever moves forward, and never leaves the closed
// state.
//
// Advancing is a native call, so Next runs under the call gate even though
// a Rows is otherwise single-owner state.
package cursor
