package topk

import (
	"testing"

	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/store"
)

func zeroLength(store.Item) int { return 0 }

// Synthetic items with descending scores, top-K=3, should come back
// in score order.
func TestTopThreeByDescendingScore(t *testing.T) {
	h := New(3, zeroLength)

	scores := []int32{5, 4, 3, 2, 1}
	for i, s := range scores {
		h.Push(match.MatchedItem{Item: store.Item{Index: uint32(i)}, Score: s})
	}

	got := h.IntoSortedDescending()
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}

	wantIndices := []uint32{0, 1, 2}
	for i, w := range wantIndices {
		if got[i].Item.Index != w {
			t.Fatalf("got[%d].Index = %d, want %d (full: %+v)", i, got[i].Item.Index, w, got)
		}
	}
}

func TestHeapNeverExceedsK(t *testing.T) {
	h := New(2, zeroLength)

	for i := 0; i < 100; i++ {
		h.Push(match.MatchedItem{Item: store.Item{Index: uint32(i)}, Score: int32(i)})
	}

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	got := h.IntoSortedDescending()
	if got[0].Item.Index != 99 || got[1].Item.Index != 98 {
		t.Fatalf("unexpected top-2: %+v", got)
	}
}

func TestUnboundedHeapKeepsEverything(t *testing.T) {
	h := New(-1, zeroLength)

	for i := 0; i < 50; i++ {
		h.Push(match.MatchedItem{Item: store.Item{Index: uint32(i)}, Score: int32(i)})
	}

	if h.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", h.Len())
	}
}

func TestMergeCombinesWorkerHeaps(t *testing.T) {
	a := New(2, zeroLength)
	a.Push(match.MatchedItem{Item: store.Item{Index: 0}, Score: 10})
	a.Push(match.MatchedItem{Item: store.Item{Index: 1}, Score: 9})

	b := New(2, zeroLength)
	b.Push(match.MatchedItem{Item: store.Item{Index: 2}, Score: 20})
	b.Push(match.MatchedItem{Item: store.Item{Index: 3}, Score: 1})

	final := New(2, zeroLength)
	final.Merge(a)
	final.Merge(b)

	got := final.IntoSortedDescending()
	if len(got) != 2 || got[0].Item.Index != 2 || got[1].Item.Index != 0 {
		t.Fatalf("unexpected merged top-2: %+v", got)
	}
}

func TestZeroKKeepsNothing(t *testing.T) {
	h := New(0, zeroLength)
	h.Push(match.MatchedItem{Item: store.Item{Index: 0}, Score: 10})

	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
}
