package store

import (
	"sync"

	"github.com/foundryfind/ff/pkg/arena"
)

// CandidateStore is the façade that owns both the arena and the
// chunked store and serializes "bytes + Item" publication, so that any
// Item visible outside the façade already has its bytes present in the
// arena.
type CandidateStore struct {
	mu     sync.Mutex
	arena  *arena.Arena
	chunks *ChunkedStore
}

// New returns an empty CandidateStore.
func New() *CandidateStore {
	return &CandidateStore{
		arena:  arena.New(),
		chunks: NewChunkedStore(),
	}
}

// Arena exposes the backing arena so the ingest fast path can append
// raw bytes directly (no extra copy) before calling Register.
func (c *CandidateStore) Arena() *arena.Arena {
	return c.arena
}

// Register publishes an Item for bytes a caller has already appended
// to c.Arena() (the ingest fast path).
func (c *CandidateStore) Register(offset uint32, length uint16) Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.chunks.Append(offset, length)
}

// Append is the slow path: it appends text to the arena itself, then
// publishes the Item, as one serialized operation.
func (c *CandidateStore) Append(text []byte) Item {
	if len(text) > arena.MaxWindowLength {
		text = text[:arena.MaxWindowLength]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	offset, length := c.arena.Append(text)

	return c.chunks.Append(offset, length)
}

// Snapshot returns an immutable, point-in-time view of the store.
func (c *CandidateStore) Snapshot() Snapshot {
	return c.chunks.Snapshot()
}

// TotalCount returns the number of Items ever published.
func (c *CandidateStore) TotalCount() int {
	return c.chunks.TotalCount()
}

// StringOf decodes an Item's bytes to a UTF-8 string (cold path, used
// for final selection output).
func (c *CandidateStore) StringOf(item Item) string {
	return c.arena.StringOf(item.Offset, item.Length)
}

// ReadWith invokes f with the raw bytes backing item, valid only for
// the duration of f. This is the hot path scorers use.
func (c *CandidateStore) ReadWith(item Item, f func([]byte)) {
	c.arena.ReadWith(item.Offset, item.Length, f)
}

// SealAndShrink reclaims growth headroom in both the arena and the
// chunk index. Called once after ingest completion.
func (c *CandidateStore) SealAndShrink() {
	c.arena.ShrinkToFit()
	c.chunks.ShrinkToFit()
}
