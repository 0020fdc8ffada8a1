package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/foundryfind/ff/internal/config"
	"github.com/foundryfind/ff/pkg/cache"
	"github.com/foundryfind/ff/pkg/engine"
	"github.com/foundryfind/ff/pkg/ingest"
	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/score"
	"github.com/foundryfind/ff/pkg/store"
)

// runQuery implements the non-interactive query surface: read stdin
// to EOF, run one matching pass against the whole store, and print up
// to cfg.TopK lines of the form
// "#<rank> score=<S> pts=(k3,k2,k1,k0) pos=[p1,...] <text>".
func runQuery(ctx context.Context, stdin io.Reader, o *IO, query string, cfg config.Config) error {
	cs := store.New()

	if _, err := ingest.Run(stdin, cs); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	scheme, ok := score.ParseScheme(cfg.Scheme)
	if !ok {
		scheme = score.SchemeDefault
	}

	opts := engine.Options{
		CaseSensitive: cfg.CaseSensitive,
		Scheme:        scheme,
		TopK:          cfg.TopK,
	}

	c := cache.New(cs.Snapshot().ChunkCount()*4 + 16)
	results := engine.Search(ctx, query, cs.Snapshot(), cs, c, opts)

	tokens := strings.Fields(query)
	patterns := make([]*score.PreparedPattern, len(tokens))

	for i, t := range tokens {
		patterns[i] = score.NewPreparedPattern(t, cfg.CaseSensitive)
	}

	for rank, m := range results {
		printResultLine(o, rank+1, m, patterns, cs)
	}

	return nil
}

func printResultLine(o *IO, rank int, m match.MatchedItem, patterns []*score.PreparedPattern, cs *store.CandidateStore) {
	k3, k2, k1, k0 := score.Unpack(m.Points)

	var (
		positions []int
		text      string
	)

	cs.ReadWith(m.Item, func(b []byte) {
		text = string(b)
		positions = highlightPositions(b, patterns)
	})

	o.Printf("#%d score=%d pts=(%d,%d,%d,%d) pos=%s %s\n",
		rank, m.Score, k3, k2, k1, k0, formatPositions(positions), text)
}

// highlightPositions merges the matched byte positions of every query
// token against text, via the scorer's highlight entry point.
func highlightPositions(text []byte, patterns []*score.PreparedPattern) []int {
	scratch := score.NewMatcherScratch()
	seen := make(map[int]struct{})

	for _, p := range patterns {
		_, positions, ok := score.MatchHighlight(p, text, scratch)
		if !ok {
			continue
		}

		for _, pos := range positions {
			seen[pos] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for pos := range seen {
		out = append(out, pos)
	}

	sort.Ints(out)

	return out
}

func formatPositions(positions []int) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprintf("%d", p)
	}

	return "[" + strings.Join(parts, ",") + "]"
}
