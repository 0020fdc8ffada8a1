package score

// Scheme selects the secondary ordering policy.
type Scheme uint8

const (
	SchemeDefault Scheme = iota
	SchemePath
	SchemeHistory
)

// ParseScheme parses the --scheme flag value.
func ParseScheme(s string) (Scheme, bool) {
	switch s {
	case "", "default":
		return SchemeDefault, true
	case "path":
		return SchemePath, true
	case "history":
		return SchemeHistory, true
	default:
		return 0, false
	}
}

// Packed ordering keys. Four 16-bit components are packed
// MSB-first into one uint64 so the whole comparator reduces to a
// single unsigned integer compare:
//
//	bits 63..48: score       (signed score biased by +0x8000 so that
//	                           higher raw score => higher packed value)
//	bits 47..32: scheme key  (0xFFFF = no penalty; lower means more
//	                           delimiters appear before the first match,
//	                           encoded so that "fewer is better")
//	bits 31..16: length key  (0xFFFF - clamped text length; shorter
//	                           text => higher key)
//	bits 15..0:  tie key     (0xFFFF - (index & 0xFFFF); lower index
//	                           => higher key)
//
// The tie key is necessarily lossy once more than 65536 items are
// ingested (Item.index is 32 bits); match.Better falls back to
// comparing the un-truncated index directly whenever the packed keys
// are equal, so "strict total order, stable against index" still
// holds exactly; the packed uint64 is a fast-path comparator, not the
// sole source of truth.
const scoreBias = 0x8000

func clampU16(v int64) uint16 {
	if v < 0 {
		return 0
	}

	if v > 0xFFFF {
		return 0xFFFF
	}

	return uint16(v)
}

func packScoreKey(score int32) uint16 {
	return clampU16(int64(score) + scoreBias)
}

// PackSchemeKey computes the second ordering key for the given scheme.
// delimsBeforeMatch is the number of path-delimiter bytes that appear
// to the left of the first matched byte in the text.
func PackSchemeKey(s Scheme, delimsBeforeMatch int) uint16 {
	switch s {
	case SchemePath:
		return 0xFFFF - clampU16(int64(delimsBeforeMatch))
	default: // SchemeDefault, SchemeHistory
		return 0xFFFF
	}
}

func packLengthKey(textLen int) uint16 {
	return 0xFFFF - clampU16(int64(textLen))
}

func packTieKey(index uint32) uint16 {
	return 0xFFFF - uint16(index&0xFFFF)
}

// Pack combines the four ordering keys into one comparable uint64.
// schemeKey is produced by PackSchemeKey.
func Pack(rawScore int32, schemeKey uint16, textLen int, index uint32) uint64 {
	k3 := uint64(packScoreKey(rawScore))
	k2 := uint64(schemeKey)
	k1 := uint64(packLengthKey(textLen))
	k0 := uint64(packTieKey(index))

	return k3<<48 | k2<<32 | k1<<16 | k0
}

// Unpack splits a packed points value back into its four 16-bit
// components, MSB first, for the non-interactive `pts=(k3,k2,k1,k0)`
// output surface.
func Unpack(points uint64) (k3, k2, k1, k0 uint16) {
	k3 = uint16(points >> 48)
	k2 = uint16(points >> 32)
	k1 = uint16(points >> 16)
	k0 = uint16(points)

	return k3, k2, k1, k0
}
