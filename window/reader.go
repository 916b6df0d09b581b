package window

import (
	"io"
	"sync"
)

// Accessor supplies the current live region for a window, or fails once the
// backing memory should no longer be accessed. It is invoked with the
// window's anchor held.
type Accessor interface {
	Region() (*Region, error)
}

// AccessorFunc adapts a function to the Accessor interface.
type AccessorFunc func() (*Region, error)

// Region implements Accessor.
func (f AccessorFunc) Region() (*Region, error) {
	return f()
}

// Reader streams a host-owned memory region through an Accessor.
// It implements io.Reader, io.ByteReader and io.Closer.
//
// Reader never caches region validity: every operation except Close routes
// through the accessor under the anchor lock. Once closed, operations
// observe end-of-stream without consulting the accessor again.
type Reader struct {
	anchor sync.Locker
	acc    Accessor
	closed bool
}

// NewReader creates a reader over the regions supplied by acc. The anchor
// must be the same lock held by whatever can invalidate the backing region.
func NewReader(anchor sync.Locker, acc Accessor) *Reader {
	return &Reader{anchor: anchor, acc: acc}
}

// ReadByte returns the next byte, or io.EOF when the region is exhausted or
// the reader is closed.
func (r *Reader) ReadByte() (byte, error) {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return 0, io.EOF
	}
	region, err := r.acc.Region()
	if err != nil {
		return 0, err
	}
	b, ok := region.ReadByte()
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// Read copies up to len(p) bytes into p, clamped to the bytes remaining in
// the region. It returns (0, io.EOF) at end of stream or after Close.
func (r *Reader) Read(p []byte) (int, error) {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return 0, io.EOF
	}
	region, err := r.acc.Region()
	if err != nil {
		return 0, err
	}
	n := region.Read(p)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Skip advances past up to n bytes and returns the count actually skipped,
// clamped to the bytes remaining.
func (r *Reader) Skip(n int64) (int64, error) {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return 0, nil
	}
	region, err := r.acc.Region()
	if err != nil {
		return 0, err
	}
	return region.Skip(n), nil
}

// Available reports the number of unread bytes in the current region.
// A closed reader reports zero.
func (r *Reader) Available() (int, error) {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return 0, nil
	}
	region, err := r.acc.Region()
	if err != nil {
		return 0, err
	}
	return region.Remaining(), nil
}

// Close marks the reader closed. Closing twice is a no-op; Close never
// consults the accessor.
func (r *Reader) Close() error {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	r.closed = true
	return nil
}

// Mark records the current position for a later Reset. A failure of the
// liveness probe is swallowed here: it only matters if the caller later
// resets, and Reset will surface it then.
func (r *Reader) Mark() {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return
	}
	region, err := r.acc.Region()
	if err != nil {
		return
	}
	region.Mark()
}

// Reset restores the position to the most recent mark. It fails with
// ErrNoMark if Mark was never called, and with the accessor's error if the
// region is no longer live. A closed reader resets as a no-op.
func (r *Reader) Reset() error {
	r.anchor.Lock()
	defer r.anchor.Unlock()

	if r.closed {
		return nil
	}
	region, err := r.acc.Region()
	if err != nil {
		return err
	}
	return region.Reset()
}

// MarkSupported reports that Mark and Reset are available.
func (r *Reader) MarkSupported() bool {
	return true
}
