package store

import "sync"

// ChunkedStore is the ordered sequence of sealed chunks plus one tail
// chunk. It is written only by the ingest loop; matching workers only
// ever see immutable Snapshots.
//
// Lock discipline mirrors the arena: a single sync.RWMutex held for
// the duration of Append and for the duration of Snapshot's copy, so
// a snapshot never observes a chunk half-sealed.
type ChunkedStore struct {
	mu     sync.RWMutex
	sealed []*chunk
	tail   chunk
	total  int
}

// NewChunkedStore returns an empty store.
func NewChunkedStore() *ChunkedStore {
	return &ChunkedStore{}
}

// Append publishes a new Item for the given arena window and returns
// it. Index is assigned as the current total count, so indices are
// monotonic from 0.
func (s *ChunkedStore) Append(offset uint32, length uint16) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{Index: uint32(s.total), Offset: offset, Length: length}

	s.tail.items[s.tail.count] = item
	s.tail.count++
	s.total++

	if s.tail.count == ChunkCapacity {
		sealedCopy := s.tail // value copy: fixed-size array, cheap and safe to share afterwards.
		s.sealed = append(s.sealed, &sealedCopy)
		s.tail = chunk{}
	}

	return item
}

// TotalCount returns the number of Items ever appended.
func (s *ChunkedStore) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.total
}

// Snapshot captures an immutable, point-in-time view: the sealed
// sequence is shared copy-on-write (sealed chunks are never mutated
// again, so sharing the slice of pointers is safe), and the tail is
// copied by value.
func (s *ChunkedStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sealed := make([]*chunk, len(s.sealed))
	copy(sealed, s.sealed)

	return Snapshot{
		sealed: sealed,
		tail:   s.tail,
	}
}

// ShrinkToFit trims the sealed-chunk slice's spare capacity. Called
// once after ingest completion.
func (s *ChunkedStore) ShrinkToFit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.sealed) == len(s.sealed) {
		return
	}

	trimmed := make([]*chunk, len(s.sealed))
	copy(trimmed, s.sealed)
	s.sealed = trimmed
}
