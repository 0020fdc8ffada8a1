package store

// Snapshot is a value-type, immutable view of a ChunkedStore at one
// point in time. Every method on Snapshot is a pure read;
// further writes to the live store never mutate an already-taken
// Snapshot. Snapshots are safe to share across goroutines.
type Snapshot struct {
	sealed []*chunk
	tail   chunk
}

// Count is the total number of Items visible in this snapshot.
func (s Snapshot) Count() int {
	return len(s.sealed)*ChunkCapacity + s.tail.count
}

// ChunkCount is the number of chunks (sealed plus, if non-empty, the
// tail) this snapshot partitions into.
func (s Snapshot) ChunkCount() int {
	n := len(s.sealed)
	if s.tail.count > 0 {
		n++
	}

	return n
}

// SealedChunkCount is the number of sealed (cacheable) chunks.
func (s Snapshot) SealedChunkCount() int {
	return len(s.sealed)
}

// ChunkAt returns the items of chunk i (0-based, sealed chunks first,
// tail last) and whether that chunk is sealed.
func (s Snapshot) ChunkAt(i int) (items []Item, sealed bool) {
	if i < len(s.sealed) {
		c := s.sealed[i]
		return c.items[:c.count], true
	}

	if i == len(s.sealed) && s.tail.count > 0 {
		return s.tail.items[:s.tail.count], false
	}

	return nil, false
}

// ItemAt looks up an Item by its global ingestion index, via
// (index/C, index%C).
func (s Snapshot) ItemAt(index int) (Item, bool) {
	chunkIdx := index / ChunkCapacity
	offset := index % ChunkCapacity

	items, _ := s.ChunkAt(chunkIdx)
	if offset >= len(items) {
		return Item{}, false
	}

	return items[offset], true
}
