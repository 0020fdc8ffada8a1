// Package topk implements the bounded min-heap top-K merger: it keeps
// only the K best candidates under the "worst of two" comparator,
// worst at the root, and produces a strictly ordered descending
// result.
package topk

import (
	"sort"

	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/store"
)

// Heap is a bounded min-heap of size K. The zero value is not usable;
// construct with New.
type Heap struct {
	k        int
	items    []match.MatchedItem
	lengthOf func(store.Item) int
}

// New returns an empty heap bounded to k entries. lengthOf resolves an
// Item's text length for the comparator's second key; k < 0 means
// unbounded (interactive mode keeps all visible items), and k == 0
// keeps nothing.
func New(k int, lengthOf func(store.Item) int) *Heap {
	initialCap := k
	if initialCap < 0 {
		initialCap = 0
	}

	return &Heap{k: k, items: make([]match.MatchedItem, 0, initialCap), lengthOf: lengthOf}
}

// Len reports the current number of held items.
func (h *Heap) Len() int { return len(h.items) }

// Push offers a candidate. If the heap has room, it is kept
// unconditionally; otherwise it replaces the current worst item only
// if it beats it.
func (h *Heap) Push(item match.MatchedItem) {
	if h.k < 0 || len(h.items) < h.k {
		h.items = append(h.items, item)
		h.siftUp(len(h.items) - 1)

		return
	}

	if len(h.items) == 0 {
		return // k == 0: nothing is ever kept.
	}

	if h.worse(h.items[0], item) {
		h.items[0] = item
		h.siftDown(0)
	}
}

// Merge folds another heap's contents into this one by sorted
// insertion; the engine uses this to fold per-worker heaps into the
// final result.
func (h *Heap) Merge(other *Heap) {
	for _, item := range other.items {
		h.Push(item)
	}
}

// IntoSortedDescending copies and sorts the held items best-first.
func (h *Heap) IntoSortedDescending() []match.MatchedItem {
	out := make([]match.MatchedItem, len(h.items))
	copy(out, h.items)

	sort.Slice(out, func(i, j int) bool {
		return h.worse(out[j], out[i])
	})

	return out
}

func (h *Heap) worse(a, b match.MatchedItem) bool {
	return match.Worse(a, b, h.lengthOf)
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.worse(h.items[i], h.items[parent]) {
			break
		}

		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)

	for {
		left, right := 2*i+1, 2*i+2
		worst := i

		if left < n && h.worse(h.items[left], h.items[worst]) {
			worst = left
		}

		if right < n && h.worse(h.items[right], h.items[worst]) {
			worst = right
		}

		if worst == i {
			return
		}

		h.items[i], h.items[worst] = h.items[worst], h.items[i]
		i = worst
	}
}
