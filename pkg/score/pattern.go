package score

// PreparedPattern holds the per-query-token state the scorer needs,
// computed once per token rather than once per candidate.
type PreparedPattern struct {
	// bytes are the pattern bytes, already folded to lowercase ASCII
	// when CaseSensitive is false.
	bytes []byte

	// caseSensitive, when true, disables ASCII case folding in both
	// the pre-filter and the scoring DP.
	caseSensitive bool

	// required is a bitmask over the 256 possible byte values: bit b is
	// set iff some pattern byte folds to b. Used as a cheap O(1)
	// rejection before running the more expensive greedy-containment
	// walk: if any pattern byte's class of required bytes is absent
	// from the text's observed byte set, there is no point even
	// attempting the DP.
	required [4]uint64 // 256 bits
}

// NewPreparedPattern builds a PreparedPattern for one query token.
func NewPreparedPattern(token string, caseSensitive bool) *PreparedPattern {
	raw := []byte(token)
	bytes := make([]byte, len(raw))

	var required [4]uint64

	for i, b := range raw {
		if !caseSensitive {
			b = foldByte(b)
		}

		bytes[i] = b
		required[b>>6] |= 1 << (b & 63)
	}

	return &PreparedPattern{
		bytes:         bytes,
		caseSensitive: caseSensitive,
		required:      required,
	}
}

// Bytes returns the prepared (possibly folded) pattern bytes.
func (p *PreparedPattern) Bytes() []byte { return p.bytes }

// Empty reports whether the token is the empty pattern, which matches
// everything with score 0.
func (p *PreparedPattern) Empty() bool { return len(p.bytes) == 0 }

// CaseSensitive reports whether ASCII case folding is disabled.
func (p *PreparedPattern) CaseSensitive() bool { return p.caseSensitive }

// MayMatch is the cheap rejection check: it returns false only when it
// is certain the pattern cannot match inside text (every required byte
// must be observed in text). A true result is not a guarantee of a
// match, only that the containment walk is worth attempting.
func (p *PreparedPattern) MayMatch(textBytes [4]uint64) bool {
	for i := range p.required {
		if p.required[i]&textBytes[i] != p.required[i] {
			return false
		}
	}

	return true
}

// ByteSet computes the required-bitmask-shaped byte set of a text
// window, case-folded the same way the pattern is, so it can be
// compared against PreparedPattern.MayMatch. MatcherScratch.ByteSet is
// a pass-through to this function; neither caches the set, so each
// call walks the whole text.
func ByteSet(text []byte, caseSensitive bool) [4]uint64 {
	var set [4]uint64

	for _, b := range text {
		if !caseSensitive {
			b = foldByte(b)
		}

		set[b>>6] |= 1 << (b & 63)
	}

	return set
}
