// Package store implements the chunked candidate store and the
// point-in-time snapshots the matching engine reads.
package store

// ChunkCapacity is the fixed number of Items a chunk holds.
const ChunkCapacity = 100

// Item is an immutable, published candidate line. index is the
// ingestion order (monotonic from 0); offset/length are a window into
// the arena that backs this store.
type Item struct {
	Index  uint32
	Offset uint32
	Length uint16
}

// chunk is a fixed-capacity batch of Items. It is either sealed (full,
// immutable, never mutated again) or the live tail (the current write
// target).
type chunk struct {
	items [ChunkCapacity]Item
	count int
}
