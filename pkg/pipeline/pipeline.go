// Package pipeline implements the query-stream state machine:
// Idle/Debouncing/Matching transitions, a 100ms (default) debounce,
// incremental narrowing when a query is a strict prefix extension of
// the previous one, and a growth-tick timer that reruns the current
// query when the store has grown and no keystroke is in flight.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/foundryfind/ff/pkg/cache"
	"github.com/foundryfind/ff/pkg/engine"
	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/store"
)

// State is one of the three pipeline states.
type State int

const (
	Idle State = iota
	Debouncing
	Matching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Matching:
		return "matching"
	default:
		return "unknown"
	}
}

// DefaultDebounce and DefaultGrowthTick are the interactive defaults.
const (
	DefaultDebounce   = 100 * time.Millisecond
	DefaultGrowthTick = 100 * time.Millisecond
)

// Reader is the subset of *store.CandidateStore the pipeline needs:
// taking snapshots, reading item text, and observing total growth.
type Reader interface {
	engine.TextReader
	Snapshot() store.Snapshot
	TotalCount() int
}

// Pipeline drives one interactive matching session: it owns the
// Idle/Debouncing/Matching state, debounces bursts of Query calls, and
// delivers each settled match via the onResult callback given to New.
//
// A Pipeline must not be copied after first use. Query, and the
// goroutine started by Run, may run concurrently; all state is guarded
// by mu.
type Pipeline struct {
	reader Reader
	cache  *cache.Cache
	opts   engine.Options

	debounce   time.Duration
	growthTick time.Duration
	onResult   func([]match.MatchedItem)

	mu           sync.Mutex
	state        State
	pendingQuery string
	lastQuery    string
	lastResult   []store.Item
	timer        *time.Timer
	cancelMatch  context.CancelFunc
}

// New constructs a Pipeline. onResult is invoked once per settled
// match pass, from whichever goroutine happened to finish it.
func New(reader Reader, c *cache.Cache, opts engine.Options, debounce, growthTick time.Duration, onResult func([]match.MatchedItem)) *Pipeline {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if growthTick <= 0 {
		growthTick = DefaultGrowthTick
	}

	return &Pipeline{
		reader:     reader,
		cache:      c,
		opts:       opts,
		debounce:   debounce,
		growthTick: growthTick,
		onResult:   onResult,
	}
}

// Query feeds one keystroke's query string into the pipeline. It
// implements the full state machine: a new keystroke in Idle starts
// debouncing; in Debouncing it resets the timer (latest value wins,
// earlier values never run); in Matching it cancels the in-flight pass
// and transitions back to Debouncing.
func (p *Pipeline) Query(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pendingQuery = q

	switch p.state {
	case Idle:
		p.state = Debouncing
		p.resetTimerLocked()
	case Debouncing:
		p.resetTimerLocked()
	case Matching:
		if p.cancelMatch != nil {
			p.cancelMatch()
		}

		p.state = Debouncing
		p.resetTimerLocked()
	}
}

func (p *Pipeline) resetTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
	}

	p.timer = time.AfterFunc(p.debounce, p.fire)
}

// fire runs when the debounce window elapses undisturbed.
func (p *Pipeline) fire() {
	p.mu.Lock()

	if p.state != Debouncing {
		p.mu.Unlock()
		return
	}

	query := p.pendingQuery
	ctx, cancel := context.WithCancel(context.Background())
	p.cancelMatch = cancel
	p.state = Matching

	p.mu.Unlock()

	p.runAndSettle(ctx, query)
}

// runAndSettle runs one matching pass and, unless it was preempted by
// a newer keystroke in the meantime, records the result and
// transitions back to Idle.
func (p *Pipeline) runAndSettle(ctx context.Context, query string) {
	results := p.match(ctx, query)

	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.state == Matching {
		p.state = Idle
		p.lastQuery = query
		p.lastResult = itemsOf(results)
	}
	p.mu.Unlock()

	p.onResult(results)
}

// match picks the incremental-narrowing path when query strictly
// extends the previous query, else runs a full snapshot pass.
func (p *Pipeline) match(ctx context.Context, query string) []match.MatchedItem {
	p.mu.Lock()
	prevQuery, prevItems := p.lastQuery, p.lastResult
	p.mu.Unlock()

	if prevQuery != "" && query != prevQuery && strings.HasPrefix(query, prevQuery) {
		return engine.SearchItems(ctx, query, prevItems, p.reader, p.opts)
	}

	return engine.Search(ctx, query, p.reader.Snapshot(), p.reader, p.cache, p.opts)
}

func itemsOf(results []match.MatchedItem) []store.Item {
	out := make([]store.Item, len(results))
	for i, m := range results {
		out[i] = m.Item
	}

	return out
}

// Run starts the growth-tick background timer and blocks until ctx is
// cancelled. It observes the store's total count; when it has
// increased and the pipeline is Idle (no keystroke ran recently), it
// reruns the current query on the grown snapshot, bypassing the
// debounce. It also clears the chunk cache whenever growth crosses a
// new sealed-chunk boundary, since sealed-chunk entries are keyed
// against the older partitioning.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.growthTick)
	defer ticker.Stop()

	lastCount := p.reader.TotalCount()
	lastSealedBoundary := lastCount / store.ChunkCapacity

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := p.reader.TotalCount()
			if cur == lastCount {
				continue
			}

			lastCount = cur

			if boundary := cur / store.ChunkCapacity; boundary != lastSealedBoundary {
				lastSealedBoundary = boundary
				p.cache.Clear()
			}

			p.mu.Lock()
			idle := p.state == Idle
			query := p.lastQuery
			p.mu.Unlock()

			if !idle {
				continue
			}

			growthCtx, cancel := context.WithCancel(ctx)

			p.mu.Lock()
			p.state = Matching
			p.cancelMatch = cancel
			p.mu.Unlock()

			p.runAndSettle(growthCtx, query)
		}
	}
}

// State reports the pipeline's current state, mainly for tests and
// diagnostics.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}
