// Package cache implements the per-chunk, per-query memo of matched
// items with prefix/suffix sub-query reuse, bounded by a TinyLFU
// admission/eviction policy so a long interactive session doesn't grow
// the memo without limit.
package cache

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/store"
)

const chunkCapacity = store.ChunkCapacity

// admissionLimit is a fifth of the chunk capacity: an entry is only
// stored when its result set is small enough to mean the query was
// highly selective against that chunk.
const admissionLimit = 20

type key struct {
	chunkIndex int
	query      string
}

func hashKey(k key) uint64 {
	var h xxhash.Digest

	var idx [8]byte

	binary.LittleEndian.PutUint64(idx[:], uint64(k.chunkIndex))
	_, _ = h.Write(idx[:])
	_, _ = h.WriteString(k.query)

	return h.Sum64()
}

// Cache is the chunk-result memo. The zero value is not usable;
// construct with New. All methods are safe for concurrent use; the
// internal lock is held only for the duration of the TinyLFU operation
// itself, never while scoring or while a caller holds a snapshot
// borrow.
type Cache struct {
	mu       sync.Mutex
	lfu      *tinylfu.T[key, []match.MatchedItem]
	capacity int
}

// New returns a cache sized to hold approximately capacity entries.
// Callers size this to a small multiple of the chunk count, a rough
// estimate of how many distinct queries per chunk are worth memoizing
// before eviction kicks in.
func New(capacity int) *Cache {
	if capacity < 16 {
		capacity = 16
	}

	return &Cache{lfu: tinylfu.New[key, []match.MatchedItem](capacity, capacity*10, hashKey), capacity: capacity}
}

// Lookup is an exact hit: it requires chunkCount == store.ChunkCapacity
// (only sealed chunks are cacheable).
func (c *Cache) Lookup(chunkIndex, chunkCount int, query string) ([]match.MatchedItem, bool) {
	if chunkCount != chunkCapacity {
		return nil, false
	}

	c.mu.Lock()
	items, ok := c.lfu.Get(key{chunkIndex: chunkIndex, query: query})
	c.mu.Unlock()

	return items, ok
}

// Search is the sub-key reuse path: it tries removing characters from
// the end (prefix sub-queries) and from the start (suffix
// sub-queries), alternating, longest first, and returns the first
// cached superset it finds so the caller can re-score those items
// against the full query. It never returns an exact hit for query
// itself; callers should call Lookup first.
func (c *Cache) Search(chunkIndex, chunkCount int, query string) ([]match.MatchedItem, bool) {
	if chunkCount != chunkCapacity || len(query) == 0 {
		return nil, false
	}

	for length := len(query) - 1; length > 0; length-- {
		prefix := query[:length]
		if items, ok := c.Lookup(chunkIndex, chunkCount, prefix); ok {
			return items, true
		}

		suffix := query[len(query)-length:]
		if items, ok := c.Lookup(chunkIndex, chunkCount, suffix); ok {
			return items, true
		}
	}

	return nil, false
}

// Add stores a chunk's result set for query. Result sets larger than
// admissionLimit are silently dropped rather than cached, since a
// low-selectivity query's memo is rarely reused profitably and would
// only evict more useful entries.
func (c *Cache) Add(chunkIndex, chunkCount int, query string, items []match.MatchedItem) {
	if chunkCount != chunkCapacity || len(items) > admissionLimit {
		return
	}

	stored := make([]match.MatchedItem, len(items))
	copy(stored, items)

	c.mu.Lock()
	c.lfu.Add(key{chunkIndex: chunkIndex, query: query}, stored)
	c.mu.Unlock()
}

// Clear discards every memoized entry. Called whenever the store's
// total count has advanced past the last sealed boundary observed: a
// newly sealed chunk invalidates every cache entry keyed against an
// older chunk partitioning.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.lfu = tinylfu.New[key, []match.MatchedItem](c.capacity, c.capacity*10, hashKey)
	c.mu.Unlock()
}
