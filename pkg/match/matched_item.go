// Package match defines MatchedItem, the scored-candidate type shared
// by the chunk cache, the matching engine, and the top-K merger.
package match

import "github.com/foundryfind/ff/pkg/store"

// MatchedItem is a candidate that matched a query, with its raw score
// and packed ordering keys (see pkg/score.Pack).
type MatchedItem struct {
	Item   store.Item
	Score  int32
	Points uint64
}

// Better reports whether a ranks strictly ahead of b under the
// general packed-keys comparator: higher Points wins; ties are broken
// by the un-truncated Item.Index, lower winning, which is what keeps
// the order a strict total order even once Points' 16-bit tie
// component wraps past 65536 items.
func Better(a, b MatchedItem) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}

	return a.Item.Index < b.Item.Index
}

// Worse is the top-K merger's "worst of two" comparator: lower score,
// else greater length, else greater index. It is deliberately narrower
// than Better (no scheme-key component); the merger uses Worse
// (inverted) to decide both heap eviction and final output order,
// while Better/Points remain the general-purpose comparator carried on
// every result for scheme-aware metadata and the non-interactive
// `pts=` surface.
func Worse(a, b MatchedItem, lengthOf func(store.Item) int) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}

	la, lb := lengthOf(a.Item), lengthOf(b.Item)
	if la != lb {
		return la > lb
	}

	return a.Item.Index > b.Item.Index
}
