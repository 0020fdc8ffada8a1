package score

import "sync"

// MatcherScratch holds the per-worker reusable buffers the DP needs:
// two rolling score rows, the previous row's "was this column a match"
// flags (needed for the consecutive-match bonus), and, only when
// positions are requested, the full backtrack matrix. Buffers grow to
// the longest text encountered and are never shrunk.
//
// A MatcherScratch must not be shared across goroutines; the matching
// engine hands one to each worker.
type MatcherScratch struct {
	hPrev []int32
	hCur  []int32

	matchPrev []bool
	matchCur  []bool

	// backtrack[i*cols+j] records whether column j was the matched
	// column for pattern row i. Only populated by MatchHighlight.
	backtrack []bool
	cols      int
	rows      int
}

// NewMatcherScratch returns an empty scratch buffer; it grows lazily on
// first use.
func NewMatcherScratch() *MatcherScratch {
	return &MatcherScratch{}
}

func (s *MatcherScratch) ensureRows(n int) {
	if cap(s.hPrev) < n {
		s.hPrev = make([]int32, n)
		s.hCur = make([]int32, n)
		s.matchPrev = make([]bool, n)
		s.matchCur = make([]bool, n)
	}

	s.hPrev = s.hPrev[:n]
	s.hCur = s.hCur[:n]
	s.matchPrev = s.matchPrev[:n]
	s.matchCur = s.matchCur[:n]
}

func (s *MatcherScratch) ensureBacktrack(rows, cols int) {
	needed := rows * cols
	if cap(s.backtrack) < needed {
		s.backtrack = make([]bool, needed)
	}

	s.backtrack = s.backtrack[:needed]
	s.rows = rows
	s.cols = cols
}

// ByteSet computes text's required-bitmask-shaped byte set for use
// with PreparedPattern.MayMatch. It is a thin, allocation-free
// pass-through to the package-level ByteSet; it hangs off
// MatcherScratch so call sites that already thread a scratch buffer
// through the hot loop have one obvious place to reach for it.
func (s *MatcherScratch) ByteSet(text []byte, caseSensitive bool) [4]uint64 {
	return ByteSet(text, caseSensitive)
}

// ScratchPool hands out per-goroutine MatcherScratch values so the
// matching engine's worker pool does not allocate DP buffers on every
// candidate.
type ScratchPool struct {
	pool sync.Pool
}

// NewScratchPool creates an empty pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{
		pool: sync.Pool{New: func() any { return NewMatcherScratch() }},
	}
}

// Get returns a scratch buffer, reused from the pool when available.
func (p *ScratchPool) Get() *MatcherScratch {
	return p.pool.Get().(*MatcherScratch) //nolint:forcetypeassert
}

// Put returns a scratch buffer to the pool for reuse.
func (p *ScratchPool) Put(s *MatcherScratch) {
	p.pool.Put(s)
}
