package ingest

import (
	"io"
	"strings"
	"testing"

	"github.com/foundryfind/ff/pkg/arena"
	"github.com/foundryfind/ff/pkg/store"
)

func TestRunPublishesTrimmedNonEmptyLines(t *testing.T) {
	cs := store.New()
	input := "apple\n  banana  \n\n\t\ncherry"

	n, err := Run(strings.NewReader(input), cs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}

	snap := cs.Snapshot()
	if snap.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", snap.Count())
	}

	want := []string{"apple", "banana", "cherry"}
	for i, w := range want {
		item, _ := snap.ItemAt(i)
		if got := cs.StringOf(item); got != w {
			t.Fatalf("item %d = %q, want %q", i, got, w)
		}
	}
}

func TestRunCarriesOverBufferStraddlingLine(t *testing.T) {
	cs := store.New()

	// Force a straddling read by using a reader that returns data in
	// small, irregular chunks so a line spans more than one Read call.
	line := strings.Repeat("x", bufSize-10) + "\ny\n"
	n, err := Run(&chunkedReader{data: []byte(line), chunk: 37}, cs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	snap := cs.Snapshot()
	item0, _ := snap.ItemAt(0)
	if int(item0.Length) != bufSize-10 {
		t.Fatalf("first item length = %d, want %d", item0.Length, bufSize-10)
	}

	item1, _ := snap.ItemAt(1)
	if cs.StringOf(item1) != "y" {
		t.Fatalf("second item = %q, want \"y\"", cs.StringOf(item1))
	}
}

func TestRunTruncatesOverlongLine(t *testing.T) {
	cs := store.New()

	overlong := strings.Repeat("z", bufSize+500)
	input := overlong + "\nshort\n"

	n, err := Run(strings.NewReader(input), cs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	snap := cs.Snapshot()
	item0, _ := snap.ItemAt(0)
	if int(item0.Length) != arena.MaxWindowLength {
		t.Fatalf("overlong item length = %d, want %d", item0.Length, arena.MaxWindowLength)
	}

	item1, _ := snap.ItemAt(1)
	if cs.StringOf(item1) != "short" {
		t.Fatalf("item after overlong line = %q, want \"short\"", cs.StringOf(item1))
	}
}

func TestRunHandlesTrailingLineWithoutNewline(t *testing.T) {
	cs := store.New()

	n, err := Run(strings.NewReader("a\nb\nc"), cs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
}

func TestRunCallsSealAndShrinkAtEOF(t *testing.T) {
	cs := store.New()

	for i := 0; i < store.ChunkCapacity+5; i++ {
		cs.Append([]byte("warmup"))
	}

	_, err := Run(strings.NewReader("final\n"), cs)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	snap := cs.Snapshot()
	if snap.Count() != store.ChunkCapacity+6 {
		t.Fatalf("Count() = %d, want %d", snap.Count(), store.ChunkCapacity+6)
	}
}

// chunkedReader returns data in small fixed-size chunks, to exercise
// the carry-over path deterministically regardless of bufio internals.
type chunkedReader struct {
	data  []byte
	chunk int
	pos   int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}

	n := r.chunk
	if n > len(p) {
		n = len(p)
	}

	remaining := len(r.data) - r.pos
	if n > remaining {
		n = remaining
	}

	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n

	return n, nil
}
