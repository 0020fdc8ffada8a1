package score

import "testing"

func matchScore(t *testing.T, pattern, text string) (int32, bool) {
	t.Helper()

	p := NewPreparedPattern(pattern, false)
	s := NewMatcherScratch()
	sc, _, ok := Match(p, []byte(text), s)

	return sc, ok
}

func TestEmptyPatternMatchesEverythingWithZeroScore(t *testing.T) {
	p := NewPreparedPattern("", false)
	s := NewMatcherScratch()

	sc, first, ok := Match(p, []byte("anything"), s)
	if !ok || sc != 0 || first != -1 {
		t.Fatalf("empty pattern: score=%d first=%d ok=%v", sc, first, ok)
	}

	hsc, positions, hok := MatchHighlight(p, []byte("anything"), s)
	if !hok || hsc != 0 || len(positions) != 0 {
		t.Fatalf("empty pattern highlight: score=%d positions=%v ok=%v", hsc, positions, hok)
	}
}

func TestTextShorterThanPatternNeverMatches(t *testing.T) {
	if _, ok := matchScore(t, "hello", "hi"); ok {
		t.Fatalf("expected no match")
	}
}

func TestOutOfOrderBytesDoNotMatch(t *testing.T) {
	if _, ok := matchScore(t, "ba", "ab"); ok {
		t.Fatalf("expected no match for out-of-order pattern")
	}
}

// A delimiter-boundary bonus outranks a plain substring match.
func TestDelimiterBoundaryBeatsPlainSubstring(t *testing.T) {
	scoreFooBar, ok1 := matchScore(t, "fb", "foo_bar")
	scoreFooBarNoDelim, ok2 := matchScore(t, "fb", "foobar")

	if !ok1 || !ok2 {
		t.Fatalf("expected both to match: %v %v", ok1, ok2)
	}

	if !(scoreFooBar > scoreFooBarNoDelim) {
		t.Fatalf("score(foo_bar)=%d should be > score(foobar)=%d", scoreFooBar, scoreFooBarNoDelim)
	}
}

func TestCaseSensitiveDisablesFolding(t *testing.T) {
	p := NewPreparedPattern("ABC", true)
	s := NewMatcherScratch()

	if _, _, ok := Match(p, []byte("abc"), s); ok {
		t.Fatalf("case-sensitive pattern should not match differently-cased text")
	}

	if _, _, ok := Match(p, []byte("ABCdef"), s); !ok {
		t.Fatalf("case-sensitive pattern should match exact case")
	}
}

func TestHighlightPositionsAreAscendingAndInBounds(t *testing.T) {
	p := NewPreparedPattern("ace", false)
	s := NewMatcherScratch()

	_, positions, ok := MatchHighlight(p, []byte("abcdef"), s)
	if !ok {
		t.Fatalf("expected match")
	}

	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %v", positions)
	}

	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			t.Fatalf("positions not strictly ascending: %v", positions)
		}
	}

	want := []int{0, 2, 4}
	for i, w := range want {
		if positions[i] != w {
			t.Fatalf("positions[%d] = %d, want %d (full: %v)", i, positions[i], w, positions)
		}
	}
}

func TestConsecutiveBonusAppliedAtMostOncePerPosition(t *testing.T) {
	scoreConsecutive, ok := matchScore(t, "abc", "abcxxx")
	if !ok {
		t.Fatalf("expected match")
	}

	// 3*16 match + 8*2 doubled first-char bonus + 2*4 consecutive: one
	// consecutive bonus each for 'b' and 'c', none for 'a'.
	if scoreConsecutive != 72 {
		t.Fatalf("consecutive match score = %d, want 72", scoreConsecutive)
	}

	// Plain letters as separators, so no boundary bonus offsets the gaps.
	scoreScattered, ok2 := matchScore(t, "abc", "axbxcxxx")
	if !ok2 {
		t.Fatalf("expected match")
	}

	if !(scoreConsecutive > scoreScattered) {
		t.Fatalf("consecutive match should score higher: %d vs %d", scoreConsecutive, scoreScattered)
	}
}

func TestScratchReuseAcrossCallsIsIdempotent(t *testing.T) {
	p := NewPreparedPattern("app", false)
	s := NewMatcherScratch()

	sc1, _, ok1 := Match(p, []byte("apple"), s)
	_, _, ok2 := Match(p, []byte("snappy"), s)
	sc3, _, ok3 := Match(p, []byte("apple"), s)

	if !ok1 || !ok2 || !ok3 {
		t.Fatalf("expected all matches: %v %v %v", ok1, ok2, ok3)
	}

	if sc1 != sc3 {
		t.Fatalf("reusing scratch changed the result: %d != %d", sc1, sc3)
	}
}

// "ap" should match the two ap-prefixed fruit names and nothing else.
func TestGreedyContainmentOverFruitNames(t *testing.T) {
	p := NewPreparedPattern("ap", false)
	s := NewMatcherScratch()

	for _, tc := range []struct {
		text    string
		matches bool
	}{
		{"apple", true},
		{"apricot", true},
		{"banana", false},
		{"cherry", false},
	} {
		_, _, ok := Match(p, []byte(tc.text), s)
		if ok != tc.matches {
			t.Fatalf("%q: match=%v, want %v", tc.text, ok, tc.matches)
		}
	}
}
