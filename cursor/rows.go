package cursor

import (
	"context"

	"github.com/nexabase/hostbridge/errors"
	"github.com/nexabase/hostbridge/gate"
	"github.com/nexabase/hostbridge/window"
)

// Direction is a fetch direction hint. Only forward iteration exists.
type Direction int

// Forward is the sole supported fetch direction.
const Forward Direction = iota

// TypeForwardOnly is the sole cursor type the host iteration model offers.
const TypeForwardOnly = "forward-only"

// DefaultFetchSize is used when the row source reports no default of its
// own.
const DefaultFetchSize = 64

// rowClosed is the row-number sentinel for closed or after-last.
const rowClosed = -1

// Source produces rows by forward iteration against the host engine. Fetch
// and Close are native calls; Rows invokes them under the gate, so
// implementations must not take the gate themselves.
type Source interface {
	// Fetch produces the next row's reader, or ok=false at end of data.
	// fetchSize is the caller's batching hint for the host row source.
	// Producing a row may invalidate the previous row's reader.
	Fetch(ctx context.Context, fetchSize int) (row *window.Reader, ok bool, err error)

	// Close releases the host-side cursor. Must be idempotent.
	Close(ctx context.Context) error
}

// Rows is a forward-only cursor over a Source.
//
// A Rows is single-owner state: one goroutine drives it. The gate it holds
// is only for the host calls it delegates, not for its own fields.
type Rows struct {
	gate      *gate.Gate
	src       Source
	cur       *window.Reader
	row       int
	fetchSize int
	srcClosed bool
}

// New creates a cursor over src. fetchSize is the host-provided default
// hint; values below 1 fall back to DefaultFetchSize.
func New(g *gate.Gate, src Source, fetchSize int) *Rows {
	if fetchSize < 1 {
		fetchSize = DefaultFetchSize
	}
	return &Rows{gate: g, src: src, fetchSize: fetchSize}
}

// Next advances to the next row, reporting false at end of data. Reaching
// the end parks the cursor after the last row. The previous row's reader
// must be assumed invalid after a successful advance.
func (r *Rows) Next(ctx context.Context) (bool, error) {
	if r.row < 0 {
		return false, nil
	}

	var (
		row *window.Reader
		ok  bool
	)
	err := r.gate.Serialize(ctx, func(ctx context.Context) error {
		var err error
		row, ok, err = r.src.Fetch(ctx, r.fetchSize)
		return err
	})
	if err != nil {
		return false, err
	}
	if !ok {
		r.row = rowClosed
		r.cur = nil
		return false, nil
	}
	r.row++
	r.cur = row
	return true, nil
}

// Current returns the reader over the current row, or nil when the cursor
// is not positioned on one. The reader stays valid only until the next
// advance or close.
func (r *Rows) Current() *window.Reader {
	return r.cur
}

// Row returns the current row number: 0 before the first row, n >= 1 when
// positioned, negative when closed or after the last row.
func (r *Rows) Row() int {
	return r.row
}

// IsBeforeFirst reports whether the cursor has not yet advanced.
func (r *Rows) IsBeforeFirst() bool {
	return r.row == 0
}

// IsAfterLast reports whether the cursor is closed or past the last row.
func (r *Rows) IsAfterLast() bool {
	return r.row < 0
}

// IsFirst reports whether the cursor is on the first row.
func (r *Rows) IsFirst() bool {
	return r.row == 1
}

// FetchDirection returns the fetch direction, always Forward.
func (r *Rows) FetchDirection() Direction {
	return Forward
}

// SetFetchDirection accepts Forward and rejects everything else.
func (r *Rows) SetFetchDirection(d Direction) error {
	if d != Forward {
		return errors.Unsupported(errors.PhaseCursor, "non-forward fetch direction")
	}
	return nil
}

// FetchSize returns the current batching hint.
func (r *Rows) FetchSize() int {
	return r.fetchSize
}

// SetFetchSize sets the batching hint passed to the host row source.
func (r *Rows) SetFetchSize(n int) error {
	if n <= 0 {
		return errors.InvalidArgument(
			errors.PhaseCursor, "set fetch size", "fetch size must be positive", n)
	}
	r.fetchSize = n
	return nil
}

// Type returns the cursor type, always TypeForwardOnly.
func (r *Rows) Type() string {
	return TypeForwardOnly
}

// Close releases the host-side cursor and forces the row number to the
// closed sentinel. Reaching end of data only parks the cursor after the
// last row; Close must still run to release the host side. Closing twice
// is a no-op the second time.
func (r *Rows) Close(ctx context.Context) error {
	r.row = rowClosed
	r.cur = nil
	if r.srcClosed {
		return nil
	}
	r.srcClosed = true

	err := r.gate.Serialize(ctx, func(ctx context.Context) error {
		return r.src.Close(ctx)
	})
	if err != nil && !errors.IsKind(err, errors.KindClosed) {
		return err
	}
	return nil
}

// Positioning operations the one-pass host cursor cannot provide. They all
// short-circuit through reject so the failure category and message shape
// stay uniform.

// First fails: cursor positioning is not available.
func (r *Rows) First() error { return r.reject("cursor positioning") }

// Last fails: cursor positioning is not available.
func (r *Rows) Last() error { return r.reject("cursor positioning") }

// Absolute fails: cursor positioning is not available.
func (r *Rows) Absolute(row int) error { return r.reject("cursor positioning") }

// Relative fails: cursor positioning is not available.
func (r *Rows) Relative(rows int) error { return r.reject("cursor positioning") }

// Previous fails: reverse positioning is not available.
func (r *Rows) Previous() error { return r.reject("reverse positioning") }

// BeforeFirst fails: cursor positioning is not available.
func (r *Rows) BeforeFirst() error { return r.reject("cursor positioning") }

// AfterLast fails: cursor positioning is not available.
func (r *Rows) AfterLast() error { return r.reject("cursor positioning") }

func (r *Rows) reject(feature string) error {
	return errors.Unsupported(errors.PhaseCursor, feature)
}
