package window

import (
	"github.com/nexabase/hostbridge/errors"
)

// ErrNoMark is returned by Region.Reset when no mark has been set.
var ErrNoMark = errors.InvalidArgument(
	errors.PhaseWindow, "reset", "reset attempted when mark not set", nil)

// Region is a positioned view over a host-owned byte range. It tracks a
// read position and an optional mark, never copying the backing bytes.
//
// A Region carries no liveness state of its own; handing one out is the
// accessor's assertion that the backing memory is live right now. Callers
// must hold the window anchor for the duration of any Region use.
type Region struct {
	data []byte
	pos  int
	mark int
}

// NewRegion creates a region over data with the position at the start and
// no mark set. The region aliases data; it does not copy.
func NewRegion(data []byte) *Region {
	return &Region{data: data, mark: -1}
}

// Remaining reports the number of unread bytes.
func (r *Region) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte consumes and returns the next byte. ok is false when the region
// is exhausted.
func (r *Region) ReadByte() (b byte, ok bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b = r.data[r.pos]
	r.pos++
	return b, true
}

// Read copies up to len(p) bytes into p, clamped to the remaining bytes,
// and returns the number copied. Zero means the region is exhausted.
func (r *Region) Read(p []byte) int {
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n
}

// Skip advances the position by up to n bytes, clamped to the remaining
// bytes, and returns the actual count skipped.
func (r *Region) Skip(n int64) int64 {
	if n < 0 {
		return 0
	}
	remaining := int64(r.Remaining())
	if n > remaining {
		n = remaining
	}
	r.pos += int(n)
	return n
}

// Mark records the current position for a later Reset.
func (r *Region) Mark() {
	r.mark = r.pos
}

// Reset restores the position to the most recent mark, or returns ErrNoMark
// if Mark was never called.
func (r *Region) Reset() error {
	if r.mark < 0 {
		return ErrNoMark
	}
	r.pos = r.mark
	return nil
}
