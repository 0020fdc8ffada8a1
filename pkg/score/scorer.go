package score

import "math"

// Match scores and gap penalties.
const (
	scoreMatch        int32 = 16
	scoreGapStart     int32 = -3
	scoreGapExt       int32 = -1
	bonusConsecutive  int32 = 4
	bonusFirstCharMul int32 = 2
)

const negInf = int32(math.MinInt32 / 2)

// Match scores pattern against text and reports whether it matched.
// FirstOccurrence is the text index (0-based) the greedy containment
// pre-filter found for the pattern's first byte; it is a cheap stand-in
// for the position of the first matched byte used by the `path` scheme
// tie-break, computed without paying for a full backtrack. text must
// be the raw, un-folded line bytes.
func Match(p *PreparedPattern, text []byte, scratch *MatcherScratch) (matchScore int32, firstOccurrence int, ok bool) {
	matchScore, firstOccurrence, _, ok = run(p, text, scratch, false)
	return matchScore, firstOccurrence, ok
}

// MatchHighlight scores pattern against text and additionally
// reconstructs the matched byte positions via backtracking. Positions
// are returned in ascending text-offset order.
func MatchHighlight(p *PreparedPattern, text []byte, scratch *MatcherScratch) (matchScore int32, positions []int, ok bool) {
	matchScore, _, positions, ok = run(p, text, scratch, true)
	return matchScore, positions, ok
}

// CountDelimitersBefore counts path-delimiter bytes in text[:pos],
// used by the `path` ordering scheme.
func CountDelimitersBefore(text []byte, pos int) int {
	if pos > len(text) {
		pos = len(text)
	}

	n := 0

	for i := 0; i < pos; i++ {
		if delimiterBytes[text[i]] {
			n++
		}
	}

	return n
}

// run is the shared DP core for Match and MatchHighlight.
func run(p *PreparedPattern, text []byte, scratch *MatcherScratch, wantPositions bool) (int32, int, []int, bool) {
	patBytes := p.bytes

	if len(patBytes) == 0 {
		// Empty pattern: matches everything with score 0.
		return 0, -1, nil, true
	}

	if len(text) < len(patBytes) {
		return 0, -1, nil, false
	}

	first, last, ok := greedyContainment(patBytes, text, p.caseSensitive)
	if !ok {
		return 0, -1, nil, false
	}

	patLen := len(patBytes)
	windowLen := last - first + 1
	cols := windowLen + 1

	scratch.ensureRows(cols)

	hPrev := scratch.hPrev
	hCur := scratch.hCur
	matchPrev := scratch.matchPrev
	matchCur := scratch.matchCur

	for c := 0; c < cols; c++ {
		hPrev[c] = 0 // row 0 baseline: zero pattern chars consumed, score 0 anywhere.
		matchPrev[c] = false
	}

	if wantPositions {
		scratch.ensureBacktrack(patLen+1, cols)
	}

	for i := 1; i <= patLen; i++ {
		hCur[0] = negInf
		matchCur[0] = false

		openedGap := false
		pb := patBytes[i-1]

		for c := 1; c < cols; c++ {
			absIdx := first + c - 1
			tb := text[absIdx]

			if !p.caseSensitive {
				tb = foldByte(tb)
			}

			var (
				best        int32 = negInf
				bestIsMatch bool
			)

			if tb == pb && hPrev[c-1] > negInf/2 {
				bonus := boundaryBonus(text, absIdx)
				if i == 1 {
					bonus *= bonusFirstCharMul
				}

				consec := int32(0)
				if i > 1 && matchPrev[c-1] {
					consec = bonusConsecutive
				}

				best = hPrev[c-1] + scoreMatch + bonus + consec
				bestIsMatch = true
			}

			if hCur[c-1] > negInf/2 {
				gapPenalty := scoreGapStart
				if openedGap {
					gapPenalty = scoreGapExt
				}

				gapVal := hCur[c-1] + gapPenalty
				if gapVal > best {
					best = gapVal
					bestIsMatch = false
				}
			}

			if best <= negInf/2 {
				hCur[c] = negInf
				matchCur[c] = false
			} else {
				hCur[c] = best
				matchCur[c] = bestIsMatch
			}

			openedGap = !bestIsMatch

			if wantPositions {
				scratch.backtrack[i*cols+c] = bestIsMatch
			}
		}

		hPrev, hCur = hCur, hPrev
		matchPrev, matchCur = matchCur, matchPrev
	}

	bestEnd := -1
	bestVal := negInf

	for c := 1; c < cols; c++ {
		if hPrev[c] > bestVal {
			bestVal = hPrev[c]
			bestEnd = c
		}
	}

	if bestEnd == -1 || bestVal <= 0 {
		return 0, first, nil, false
	}

	var positions []int

	if wantPositions {
		positions = make([]int, 0, patLen)
		i, c := patLen, bestEnd

		for i > 0 {
			cell := i*cols + c
			if scratch.backtrack[cell] {
				positions = append(positions, first+c-1)
				i--
				c--
			} else {
				c--
			}
		}

		for l, r := 0, len(positions)-1; l < r; l, r = l+1, r-1 {
			positions[l], positions[r] = positions[r], positions[l]
		}
	}

	return bestVal, first, positions, true
}

// greedyContainment walks text once, matching pattern bytes in order.
// It returns the text index of the first and last matched pattern
// byte, bounding the DP window.
func greedyContainment(pattern, text []byte, caseSensitive bool) (first, last int, ok bool) {
	cursor := 0
	first, last = -1, -1

	for _, pb := range pattern {
		found := -1

		for j := cursor; j < len(text); j++ {
			tb := text[j]
			if !caseSensitive {
				tb = foldByte(tb)
			}

			if tb == pb {
				found = j
				break
			}
		}

		if found == -1 {
			return -1, -1, false
		}

		if first == -1 {
			first = found
		}

		last = found
		cursor = found + 1
	}

	return first, last, true
}
