// Package tui is ff's thin terminal boundary: a liner-backed prompt
// that feeds each submitted query into the matching pipeline, prints
// the number of matches, and offers the top results as Tab
// completions, plus a small selection syntax. Raw-mode
// rendering, ANSI styling, and mouse/keyboard parsing are deliberately
// out of scope; liner owns the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"
	"golang.org/x/sys/unix"

	"github.com/foundryfind/ff/internal/config"
	"github.com/foundryfind/ff/pkg/cache"
	"github.com/foundryfind/ff/pkg/engine"
	"github.com/foundryfind/ff/pkg/ingest"
	"github.com/foundryfind/ff/pkg/match"
	"github.com/foundryfind/ff/pkg/pipeline"
	"github.com/foundryfind/ff/pkg/score"
	"github.com/foundryfind/ff/pkg/store"
)

var errNoResultsToSelect = errors.New("no results to select from")

const previewCount = 10

// defaultLineWidth bounds how much of a candidate line is rendered
// when the terminal width cannot be queried (stdout is not a tty).
const defaultLineWidth = 120

// Run boots the interactive prompt: it starts the ingest loop over
// stdin, drives a Pipeline against the growing store, and loops a
// liner prompt until the user selects an item (printed to out) or
// aborts (ctx cancelled, Ctrl+C/Ctrl+D with no pending query).
func Run(ctx context.Context, stdin io.Reader, out, errOut io.Writer, cfg config.Config) error {
	cs := store.New()

	ingestErrCh := make(chan error, 1)

	go func() {
		_, err := ingest.Run(stdin, cs)
		ingestErrCh <- err
	}()

	scheme, ok := score.ParseScheme(cfg.Scheme)
	if !ok {
		scheme = score.SchemeDefault
	}

	opts := engine.Options{
		CaseSensitive: cfg.CaseSensitive,
		Scheme:        scheme,
		TopK:          -1, // interactive mode keeps all visible items
	}

	c := cache.New(64)

	sess := &session{cs: cs, width: terminalWidth(out)}

	p := pipeline.New(cs, c, opts, durationMS(cfg.DebounceMS, pipeline.DefaultDebounce),
		durationMS(cfg.GrowthTickMS, pipeline.DefaultGrowthTick), sess.onResult)

	pipelineCtx, cancelPipeline := context.WithCancel(ctx)
	defer cancelPipeline()

	go p.Run(pipelineCtx)

	selected, err := runPrompt(ctx, out, errOut, p, sess)
	if err != nil {
		return err
	}

	select {
	case ingestErr := <-ingestErrCh:
		if ingestErr != nil {
			fmt.Fprintln(errOut, "warning: input stream ended early:", ingestErr)
		}
	default:
		// Ingest is still running (the user selected before EOF); it is
		// torn down by dropping its output sink on process exit.
	}

	if selected != nil {
		fmt.Fprintln(out, cs.StringOf(*selected))
	}

	return nil
}

// session holds the most recent settled results, guarded by a mutex
// since Pipeline invokes onResult from whichever goroutine finished
// the pass.
type session struct {
	cs    *store.CandidateStore
	width int

	mu      sync.Mutex
	results []match.MatchedItem
}

func (s *session) onResult(items []match.MatchedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = items
}

func (s *session) snapshot() []match.MatchedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]match.MatchedItem, len(s.results))
	copy(out, s.results)

	return out
}

// runPrompt runs the prompt/refine/select loop. Typing a query
// refines the filter; once a query has been entered, a bare Enter
// selects the top-ranked result (before that it runs the empty query);
// "!<n>" selects the nth listed result; Ctrl+C/Ctrl+D/ctx-cancel exits
// with no selection.
func runPrompt(ctx context.Context, out, errOut io.Writer, p *pipeline.Pipeline, sess *session) (*store.Item, error) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return completions(ctx, p, sess, partial)
	})

	query := ""

	for {
		if ctx.Err() != nil {
			return nil, nil //nolint:nilnil // explicit "no selection" on cancellation
		}

		printResults(out, sess.snapshot())

		input, err := line.Prompt("ff> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil, nil //nolint:nilnil
			}

			return nil, fmt.Errorf("reading prompt: %w", err)
		}

		line.AppendHistory(input)

		trimmed := strings.TrimSpace(input)

		switch {
		case trimmed == "" && query != "":
			item, ok := selectResult(sess.snapshot(), 1)
			if !ok {
				fmt.Fprintln(errOut, errNoResultsToSelect)
				continue
			}

			return &item, nil

		case strings.HasPrefix(trimmed, "!"):
			rank, convErr := strconv.Atoi(strings.TrimPrefix(trimmed, "!"))
			if convErr != nil {
				fmt.Fprintln(errOut, "usage: !<rank> to select a listed result")
				continue
			}

			item, ok := selectResult(sess.snapshot(), rank)
			if !ok {
				fmt.Fprintln(errOut, errNoResultsToSelect)
				continue
			}

			return &item, nil

		default:
			query = trimmed
			p.Query(query)
			waitForSettle(ctx, p)
		}
	}
}

func completions(ctx context.Context, p *pipeline.Pipeline, sess *session, partial string) []string {
	p.Query(partial)
	waitForSettle(ctx, p)

	results := sess.snapshot()
	out := make([]string, 0, min(len(results), previewCount))

	for i, m := range results {
		if i >= previewCount {
			break
		}

		out = append(out, runewidth.Truncate(sess.cs.StringOf(m.Item), sess.width, "…"))
	}

	return out
}

func selectResult(results []match.MatchedItem, rank int) (store.Item, bool) {
	if rank < 1 || rank > len(results) {
		return store.Item{}, false
	}

	return results[rank-1].Item, true
}

func printResults(out io.Writer, results []match.MatchedItem) {
	fmt.Fprintf(out, "%d matches\n", len(results))
}

// waitForSettle blocks until the pipeline returns to Idle (the
// matching pass this Query call started has settled) or a bounded
// timeout elapses, so the interactive loop never hangs if a pass is
// somehow stuck.
func waitForSettle(ctx context.Context, p *pipeline.Pipeline) {
	deadline := time.Now().Add(2 * time.Second)

	for p.State() != pipeline.Idle {
		if ctx.Err() != nil || time.Now().After(deadline) {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}
}

func durationMS(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}

	return time.Duration(ms) * time.Millisecond
}

// terminalWidth queries the controlling terminal's column count via
// unix.IoctlGetWinsize, falling back to defaultLineWidth when out
// isn't a tty (e.g. redirected to a file).
func terminalWidth(out io.Writer) int {
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return defaultLineWidth
	}

	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return defaultLineWidth
	}

	return int(ws.Col)
}
