// Package engine implements the matching engine: it tokenises a
// query, partitions a store snapshot across worker goroutines,
// consults the chunk cache per chunk per token, and merges per-worker
// top-K heaps into one ordered result.
package engine

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/foundryfind/ff/pkg/cache"
	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/score"
	"github.com/foundryfind/ff/pkg/store"
	"github.com/foundryfind/ff/pkg/topk"
)

// TextReader resolves an Item's raw bytes for the duration of a
// callback, the same contract as arena.Arena.ReadWith / the
// CandidateStore façade's ReadWith.
type TextReader interface {
	ReadWith(item store.Item, f func([]byte))
}

// Options configures one matching pass.
type Options struct {
	CaseSensitive bool
	Scheme        score.Scheme
	// TopK bounds the result size; <0 means unbounded (all visible
	// items, the interactive-mode default).
	TopK int
}

const defaultNonInteractiveTopK = 30

// scratchPool recycles DP scratch buffers across matching passes, so a
// steady stream of keystrokes doesn't reallocate per-worker rows every
// pass.
var scratchPool = score.NewScratchPool()

// DefaultOptions returns the non-interactive defaults.
func DefaultOptions() Options {
	return Options{TopK: defaultNonInteractiveTopK}
}

func lengthOf(item store.Item) int { return int(item.Length) }

// Search runs one full matching pass: tokenise, partition, score, and
// merge. ctx is checked between chunks so a pass can be cancelled at a
// partition boundary; a cancelled pass returns whatever partial
// ranking it had accumulated.
func Search(ctx context.Context, query string, snap store.Snapshot, reader TextReader, c *cache.Cache, opts Options) []match.MatchedItem {
	tokens := strings.Fields(query)
	chunkCount := snap.ChunkCount()

	if len(tokens) == 0 {
		return emptyPatternResults(snap, opts)
	}

	patterns := make([]*score.PreparedPattern, len(tokens))
	longest := 0

	for i, t := range tokens {
		patterns[i] = score.NewPreparedPattern(t, opts.CaseSensitive)
		if len(patterns[i].Bytes()) > len(patterns[longest].Bytes()) {
			longest = i
		}
	}

	workers := clamp(runtime.GOMAXPROCS(0), 1, 16)
	if workers > chunkCount {
		workers = chunkCount
	}

	if workers < 1 {
		workers = 1
	}

	ranges := partitionRanges(chunkCount, workers)

	heaps := make([]*topk.Heap, len(ranges))

	var wg sync.WaitGroup

	for i, r := range ranges {
		i, r := i, r

		wg.Add(1)

		go func() {
			defer wg.Done()

			heaps[i] = searchPartition(ctx, r, snap, reader, c, patterns, longest, opts)
		}()
	}

	wg.Wait()

	final := topk.New(opts.TopK, lengthOf)
	for _, h := range heaps {
		if h != nil {
			final.Merge(h)
		}
	}

	return final.IntoSortedDescending()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

type chunkRange struct{ start, end int } // [start, end)

func partitionRanges(chunkCount, workers int) []chunkRange {
	if chunkCount == 0 {
		return nil
	}

	base := chunkCount / workers
	rem := chunkCount % workers

	ranges := make([]chunkRange, 0, workers)

	pos := 0
	for w := 0; w < workers && pos < chunkCount; w++ {
		size := base
		if w < rem {
			size++
		}

		if size == 0 {
			continue
		}

		ranges = append(ranges, chunkRange{start: pos, end: pos + size})
		pos += size
	}

	return ranges
}

// tokenItem is one item surviving a single token's match within a
// chunk scan.
type tokenItem struct {
	item  store.Item
	score int32
}

func searchPartition(ctx context.Context, r chunkRange, snap store.Snapshot, reader TextReader, c *cache.Cache, patterns []*score.PreparedPattern, longest int, opts Options) *topk.Heap {
	heap := topk.New(opts.TopK, lengthOf)

	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	for chunkIdx := r.start; chunkIdx < r.end; chunkIdx++ {
		if ctx != nil && ctx.Err() != nil {
			return heap
		}

		items, sealed := snap.ChunkAt(chunkIdx)
		chunkCount := len(items) // equals store.ChunkCapacity whenever sealed

		perToken := make([][]tokenItem, len(patterns))
		for ti, p := range patterns {
			perToken[ti] = matchChunkForToken(chunkIdx, chunkCount, sealed, items, p, reader, c, scratch)
		}

		for _, mi := range intersectTokens(perToken) {
			var delimsBeforeMatch int
			if opts.Scheme == score.SchemePath {
				// Recomputed fresh rather than carried through the token
				// sets, so cache hits and scans pack identical keys.
				reader.ReadWith(mi.item, func(text []byte) {
					if _, firstOcc, ok := score.Match(patterns[longest], text, scratch); ok {
						delimsBeforeMatch = score.CountDelimitersBefore(text, firstOcc)
					}
				})
			}

			points := score.Pack(mi.totalScore, score.PackSchemeKey(opts.Scheme, delimsBeforeMatch), int(mi.item.Length), mi.item.Index)
			heap.Push(match.MatchedItem{Item: mi.item, Score: mi.totalScore, Points: points})
		}
	}

	return heap
}

// matchChunkForToken resolves one token's matches within one chunk,
// consulting the cache first: exact hit, else search for a reusable
// narrower set and rescore, else scan.
func matchChunkForToken(chunkIdx, chunkCount int, sealed bool, items []store.Item, p *score.PreparedPattern, reader TextReader, c *cache.Cache, scratch *score.MatcherScratch) []tokenItem {
	token := string(p.Bytes())

	if sealed {
		if cached, ok := c.Lookup(chunkIdx, chunkCount, token); ok {
			return fromCached(cached)
		}

		if superset, ok := c.Search(chunkIdx, chunkCount, token); ok {
			rescored := rescoreAgainst(superset, p, reader, scratch)
			writeBack(c, chunkIdx, chunkCount, token, rescored)

			return rescored
		}
	}

	results := scanChunk(items, p, reader, scratch)
	if sealed {
		writeBack(c, chunkIdx, chunkCount, token, results)
	}

	return results
}

func fromCached(cached []match.MatchedItem) []tokenItem {
	out := make([]tokenItem, len(cached))
	for i, m := range cached {
		out[i] = tokenItem{item: m.Item, score: m.Score}
	}

	return out
}

func rescoreAgainst(superset []match.MatchedItem, p *score.PreparedPattern, reader TextReader, scratch *score.MatcherScratch) []tokenItem {
	out := make([]tokenItem, 0, len(superset))

	for _, m := range superset {
		var (
			s  int32
			ok bool
		)

		reader.ReadWith(m.Item, func(text []byte) {
			if !p.MayMatch(scratch.ByteSet(text, p.CaseSensitive())) {
				return
			}

			s, _, ok = score.Match(p, text, scratch)
		})

		if ok {
			out = append(out, tokenItem{item: m.Item, score: s})
		}
	}

	return out
}

func scanChunk(items []store.Item, p *score.PreparedPattern, reader TextReader, scratch *score.MatcherScratch) []tokenItem {
	out := make([]tokenItem, 0, len(items))

	for _, it := range items {
		var (
			s  int32
			ok bool
		)

		reader.ReadWith(it, func(text []byte) {
			// Cheap O(1) bitmask rejection before paying for the O(n)
			// greedy-containment walk inside Match.
			if !p.MayMatch(scratch.ByteSet(text, p.CaseSensitive())) {
				return
			}

			s, _, ok = score.Match(p, text, scratch)
		})

		if ok {
			out = append(out, tokenItem{item: it, score: s})
		}
	}

	return out
}

func writeBack(c *cache.Cache, chunkIdx, chunkCount int, token string, results []tokenItem) {
	if len(results) == 0 {
		return
	}

	asMatched := make([]match.MatchedItem, len(results))
	for i, r := range results {
		asMatched[i] = match.MatchedItem{Item: r.item, Score: r.score}
	}

	c.Add(chunkIdx, chunkCount, token, asMatched)
}

type mergedItem struct {
	item       store.Item
	totalScore int32
}

// intersectTokens keeps only items present in every token's result set
// (tokens are AND), summing scores.
func intersectTokens(perToken [][]tokenItem) []mergedItem {
	if len(perToken) == 0 {
		return nil
	}

	counts := make(map[uint32]*mergedItem, len(perToken[0]))

	for ti, results := range perToken {
		if ti == 0 {
			for _, r := range results {
				counts[r.item.Index] = &mergedItem{item: r.item, totalScore: r.score}
			}

			continue
		}

		seen := make(map[uint32]tokenItem, len(results))
		for _, r := range results {
			seen[r.item.Index] = r
		}

		for idx, acc := range counts {
			r, ok := seen[idx]
			if !ok {
				delete(counts, idx)
				continue
			}

			acc.totalScore += r.score
		}
	}

	out := make([]mergedItem, 0, len(counts))
	for _, acc := range counts {
		out = append(out, *acc)
	}

	return out
}

// SearchItems re-scores an explicit pool of items rather than a full
// snapshot. This is the incremental-narrowing path: when the new query
// extends the previous one, the pipeline restricts the candidate pool
// to the previous result's items instead of re-partitioning the whole
// store. The scorer still runs on every candidate; only the pool
// shrinks, so there is no cache lookup here (the pool is already small
// and ad hoc, not a stable chunk).
func SearchItems(ctx context.Context, query string, items []store.Item, reader TextReader, opts Options) []match.MatchedItem {
	tokens := strings.Fields(query)

	heap := topk.New(opts.TopK, lengthOf)

	if len(tokens) == 0 {
		for _, it := range items {
			points := score.Pack(0, score.PackSchemeKey(opts.Scheme, 0), int(it.Length), it.Index)
			heap.Push(match.MatchedItem{Item: it, Score: 0, Points: points})
		}

		return heap.IntoSortedDescending()
	}

	patterns := make([]*score.PreparedPattern, len(tokens))
	longest := 0

	for i, t := range tokens {
		patterns[i] = score.NewPreparedPattern(t, opts.CaseSensitive)
		if len(patterns[i].Bytes()) > len(patterns[longest].Bytes()) {
			longest = i
		}
	}

	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	for _, it := range items {
		if ctx != nil && ctx.Err() != nil {
			return heap.IntoSortedDescending()
		}

		var (
			totalScore      int32
			longestFirstOcc int
			survives        = true
		)

		for ti, p := range patterns {
			var (
				s        int32
				firstOcc int
				ok       bool
			)

			reader.ReadWith(it, func(text []byte) {
				if !p.MayMatch(scratch.ByteSet(text, p.CaseSensitive())) {
					return
				}

				s, firstOcc, ok = score.Match(p, text, scratch)
			})

			if !ok {
				survives = false
				break
			}

			totalScore += s
			if ti == longest {
				longestFirstOcc = firstOcc
			}
		}

		if !survives {
			continue
		}

		var delimsBeforeMatch int
		if opts.Scheme == score.SchemePath {
			reader.ReadWith(it, func(text []byte) {
				delimsBeforeMatch = score.CountDelimitersBefore(text, longestFirstOcc)
			})
		}

		points := score.Pack(totalScore, score.PackSchemeKey(opts.Scheme, delimsBeforeMatch), int(it.Length), it.Index)
		heap.Push(match.MatchedItem{Item: it, Score: totalScore, Points: points})
	}

	return heap.IntoSortedDescending()
}

func emptyPatternResults(snap store.Snapshot, opts Options) []match.MatchedItem {
	heap := topk.New(opts.TopK, lengthOf)

	for i := 0; i < snap.Count(); i++ {
		item, ok := snap.ItemAt(i)
		if !ok {
			continue
		}

		points := score.Pack(0, score.PackSchemeKey(opts.Scheme, 0), int(item.Length), item.Index)
		heap.Push(match.MatchedItem{Item: item, Score: 0, Points: points})
	}

	return heap.IntoSortedDescending()
}
