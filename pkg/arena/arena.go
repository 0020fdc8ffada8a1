// Package arena implements the append-only byte store every ingested
// line's text lives in.
package arena

import "sync"

// MinReservation is the initial byte reservation.
const MinReservation = 1 << 20 // 1 MiB

// MaxWindowLength is the largest length a single append can publish:
// an item's length is a 16-bit field. Callers (pkg/ingest) are
// responsible for truncating longer lines before calling Append;
// Append itself enforces the limit as a fatal assertion.
const MaxWindowLength = 1<<16 - 1

// Arena is a grow-only byte sequence. It follows a single-writer,
// many-readers discipline: Append is called from exactly one goroutine
// (the ingest loop), while any number of scorer goroutines call
// ReadWith/StringOf concurrently with each other and with the writer.
//
// A sync.RWMutex is held for the duration of the write and for the
// duration of each read borrow. Growth reallocates and copies under
// the exclusive lock, so no reader ever observes a torn append or a
// use-after-free on a previous backing array.
//
// The zero value is not usable; construct with New.
type Arena struct {
	mu  sync.RWMutex
	buf []byte
}

// New returns an Arena with the minimum initial reservation.
func New() *Arena {
	return &Arena{buf: make([]byte, 0, MinReservation)}
}

// Append copies bytes into the arena and returns the window
// (offset, length) at which they now live. The window is byte-stable
// for the arena's lifetime.
//
// Append panics if len(bytes) exceeds MaxWindowLength: callers must
// truncate before appending (see pkg/ingest), since that truncation
// policy decision belongs to the ingest loop, not the arena.
func (a *Arena) Append(bytes []byte) (offset uint32, length uint16) {
	if len(bytes) > MaxWindowLength {
		panic("arena: append exceeds MaxWindowLength; caller must truncate first")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	offset = uint32(len(a.buf))
	a.buf = append(a.buf, bytes...)
	length = uint16(len(bytes))

	return offset, length
}

// ReadWith invokes f with a slice covering [offset, offset+length).
// The slice is only valid for the duration of f; do not retain it.
func (a *Arena) ReadWith(offset uint32, length uint16, f func([]byte)) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	end := offset + uint32(length)
	f(a.buf[offset:end:end])
}

// StringOf decodes the window to a UTF-8 string. This is the cold
// path: reserve it for final selection output, not for scoring.
func (a *Arena) StringOf(offset uint32, length uint16) string {
	var s string

	a.ReadWith(offset, length, func(b []byte) {
		s = string(b)
	})

	return s
}

// Len returns the current arena length. It is a point-in-time
// observation: a concurrent Append may have already extended the
// arena by the time the caller acts on the result.
func (a *Arena) Len() uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return uint32(len(a.buf))
}

// ShrinkToFit reclaims growth headroom. Called once after ingest
// completion.
func (a *Arena) ShrinkToFit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cap(a.buf) == len(a.buf) {
		return
	}

	shrunk := make([]byte, len(a.buf))
	copy(shrunk, a.buf)
	a.buf = shrunk
}
