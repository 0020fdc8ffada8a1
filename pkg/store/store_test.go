package store

import "testing"

func TestSnapshotCountMatchesSumOfChunks(t *testing.T) {
	cs := New()

	const n = ChunkCapacity*3 + 17
	for i := 0; i < n; i++ {
		cs.Append([]byte("line"))
	}

	snap := cs.Snapshot()
	if snap.Count() != n {
		t.Fatalf("Count() = %d, want %d", snap.Count(), n)
	}

	sum := 0
	for i := 0; i < snap.ChunkCount(); i++ {
		items, _ := snap.ChunkAt(i)
		sum += len(items)
	}

	if sum != n {
		t.Fatalf("sum of chunk counts = %d, want %d", sum, n)
	}
}

func TestSnapshotItemIndexMatchesPosition(t *testing.T) {
	cs := New()

	const n = ChunkCapacity*2 + 5
	for i := 0; i < n; i++ {
		cs.Append([]byte("x"))
	}

	snap := cs.Snapshot()
	for i := 0; i < snap.Count(); i++ {
		item, ok := snap.ItemAt(i)
		if !ok {
			t.Fatalf("ItemAt(%d) not found", i)
		}

		if int(item.Index) != i {
			t.Fatalf("item at position %d has Index %d", i, item.Index)
		}
	}
}

func TestChunkBoundariesRollOverCleanly(t *testing.T) {
	cs := New()

	const n = ChunkCapacity * 4 // exactly C*k items
	for i := 0; i < n; i++ {
		cs.Append([]byte("x"))
	}

	snap := cs.Snapshot()
	if snap.SealedChunkCount() != 4 {
		t.Fatalf("SealedChunkCount() = %d, want 4", snap.SealedChunkCount())
	}

	if snap.ChunkCount() != 4 {
		t.Fatalf("ChunkCount() = %d, want 4 (tail should be empty)", snap.ChunkCount())
	}

	for i := 0; i < 4; i++ {
		items, sealed := snap.ChunkAt(i)
		if !sealed {
			t.Fatalf("chunk %d should be sealed", i)
		}

		if len(items) != ChunkCapacity {
			t.Fatalf("chunk %d has %d items, want %d", i, len(items), ChunkCapacity)
		}
	}
}

func TestSnapshotIsImmutableAcrossFurtherWrites(t *testing.T) {
	cs := New()

	for i := 0; i < 10; i++ {
		cs.Append([]byte("x"))
	}

	snap := cs.Snapshot()

	for i := 0; i < 1000; i++ {
		cs.Append([]byte("y"))
	}

	if snap.Count() != 10 {
		t.Fatalf("snapshot mutated by later writes: Count() = %d, want 10", snap.Count())
	}
}

func TestRegisterFastPathMatchesAppendSlowPath(t *testing.T) {
	cs := New()

	off, length := cs.Arena().Append([]byte("fast-path"))
	item := cs.Register(off, length)

	if cs.StringOf(item) != "fast-path" {
		t.Fatalf("StringOf = %q, want %q", cs.StringOf(item), "fast-path")
	}
}

func TestStringOfRoundTripsTrimmedLine(t *testing.T) {
	cs := New()
	item := cs.Append([]byte("hello"))

	if got := cs.StringOf(item); got != "hello" {
		t.Fatalf("StringOf = %q, want %q", got, "hello")
	}
}

func TestSealAndShrinkPreservesData(t *testing.T) {
	cs := New()

	for i := 0; i < ChunkCapacity+3; i++ {
		cs.Append([]byte("z"))
	}

	cs.SealAndShrink()

	snap := cs.Snapshot()
	if snap.Count() != ChunkCapacity+3 {
		t.Fatalf("Count() after SealAndShrink = %d, want %d", snap.Count(), ChunkCapacity+3)
	}
}
