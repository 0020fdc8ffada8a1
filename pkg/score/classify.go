package score

// class is the character classification the boundary-bonus table is
// keyed on: every byte in the text falls into exactly one of these
// buckets.
type class uint8

const (
	classWhitespace class = iota
	classDelimiter
	classLower
	classUpper
	classNumber
	classNonWord
)

// delimiterBytes are the ASCII punctuation bytes treated as path/word
// separators. The exact set varies across fuzzy finders; this is the
// fixed set this implementation commits to.
var delimiterBytes = [256]bool{
	'_': true, '-': true, '.': true, ',': true, ';': true, ':': true,
	'!': true, '?': true, '/': true, '\\': true, '|': true,
}

func classify(b byte) class {
	switch {
	case b == ' ' || b == '\t':
		return classWhitespace
	case delimiterBytes[b]:
		return classDelimiter
	case b >= 'a' && b <= 'z':
		return classLower
	case b >= 'A' && b <= 'Z':
		return classUpper
	case b >= '0' && b <= '9':
		return classNumber
	default:
		return classNonWord
	}
}

func isWordClass(c class) bool {
	return c == classLower || c == classUpper || c == classNumber
}

// boundaryBonus computes the boundary bonus for a matched byte at text
// index idx (0-based). text must be the raw, un-folded bytes: case
// folding is only applied for match comparison, never for
// classification, otherwise the camelCase transition bonus could never
// fire.
func boundaryBonus(text []byte, idx int) int32 {
	var prevClass class
	if idx == 0 {
		// Synthetic whitespace predecessor: the opening byte counts as
		// a word start.
		prevClass = classWhitespace
	} else {
		prevClass = classify(text[idx-1])
	}

	curClass := classify(text[idx])

	switch {
	case prevClass == classWhitespace:
		return 8
	case prevClass == classDelimiter:
		return 7
	case (prevClass == classLower || prevClass == classNumber) && curClass == classUpper:
		return 7
	case !isWordClass(prevClass) && isWordClass(curClass):
		return 6
	default:
		return 0
	}
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}
