package score

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	schemeKey := PackSchemeKey(SchemeDefault, 0)
	p := Pack(42, schemeKey, 10, 7)

	k3, k2, k1, k0 := Unpack(p)
	if k3 != packScoreKey(42) {
		t.Fatalf("k3 = %d, want %d", k3, packScoreKey(42))
	}

	if k2 != schemeKey {
		t.Fatalf("k2 = %d, want %d", k2, schemeKey)
	}

	if k1 != packLengthKey(10) {
		t.Fatalf("k1 = %d, want %d", k1, packLengthKey(10))
	}

	if k0 != packTieKey(7) {
		t.Fatalf("k0 = %d, want %d", k0, packTieKey(7))
	}
}

func TestHigherScoreAlwaysWins(t *testing.T) {
	low := Pack(1, PackSchemeKey(SchemeDefault, 0), 1000, 0)
	high := Pack(2, PackSchemeKey(SchemeDefault, 0), 1000, 1000)

	if !(high > low) {
		t.Fatalf("higher score should always outrank a lower one regardless of other keys")
	}
}

func TestPathSchemeFewerDelimitersWins(t *testing.T) {
	fewer := Pack(10, PackSchemeKey(SchemePath, 0), 5, 0)
	more := Pack(10, PackSchemeKey(SchemePath, 3), 5, 0)

	if !(fewer > more) {
		t.Fatalf("fewer delimiters before match should outrank more, at equal score")
	}
}

func TestLengthPenaltyShorterWins(t *testing.T) {
	short := Pack(10, PackSchemeKey(SchemeDefault, 0), 3, 0)
	long := Pack(10, PackSchemeKey(SchemeDefault, 0), 30, 0)

	if !(short > long) {
		t.Fatalf("shorter text should outrank longer text at equal score/scheme")
	}
}

func TestTieBreakLowerIndexWins(t *testing.T) {
	first := Pack(10, PackSchemeKey(SchemeDefault, 0), 3, 0)
	second := Pack(10, PackSchemeKey(SchemeDefault, 0), 3, 1)

	if !(first > second) {
		t.Fatalf("lower index should outrank higher index at equal score/scheme/length")
	}
}

func TestEmptyPatternOrderingFallsThroughToLengthThenIndex(t *testing.T) {
	// Empty-pattern ordering falls through to (length asc, index asc).
	a := Pack(0, PackSchemeKey(SchemeDefault, 0), 3, 5)
	b := Pack(0, PackSchemeKey(SchemeDefault, 0), 10, 0)

	if !(a > b) {
		t.Fatalf("shorter text must win over lower index when scores are tied at zero")
	}
}
