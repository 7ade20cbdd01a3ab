package zhconv

import (
	"math/bits"
	"strings"
	"unicode/utf8"
)

// delimiters are passed through unchanged and separate text ranges.
const delimiters = " \t\n\r!\"#$%&'()*+,-./:;<=>?@[\\]^_{}|~＝、。“”‘’『』「」﹁﹂—－（）《》〈〉？！…／＼︒︑︔︓︿﹀︹︺︙︐［﹇］﹈︕︖︰︳︴︽︾︵︶｛︷｝︸﹃﹄【︻】︼　～．，；："

var delimiterSet = func() map[rune]struct{} {
	set := make(map[rune]struct{}, utf8.RuneCountInString(delimiters))
	for _, r := range delimiters {
		set[r] = struct{}{}
	}
	return set
}()

// IsDelimiter reports whether r is one of the punctuation or whitespace
// characters that separate convertible ranges.
func IsDelimiter(r rune) bool {
	_, ok := delimiterSet[r]
	return ok
}

// isPassThrough is true for segments that never change: the empty string and
// a single delimiter.
func isPassThrough(segment string) bool {
	if segment == "" {
		return true
	}
	r, size := utf8.DecodeRuneInString(segment)
	return size == len(segment) && IsDelimiter(r)
}

// ConvertSegmentIndexed replaces, left to right, the longest key of merged
// found at each position of segment.
//
// idx prunes the candidate lengths: at every position only lengths whose mask
// bit is set for the starting code point are looked up, longest first.
// globalCap bounds probing and must not be smaller than the longest key of
// merged. The result is identical to ConvertSegment over the dictionaries
// merged was built from.
func ConvertSegmentIndexed(segment string, merged MergedMap, idx *StarterIndex, globalCap int) string {
	if isPassThrough(segment) {
		return segment
	}
	offsets := runeByteOffsets(segment)
	n := len(offsets) - 1
	var out strings.Builder
	out.Grow(len(segment))
	for i := 0; i < n; {
		c, _ := utf8.DecodeRuneInString(segment[offsets[i]:])
		mask, cap := idx.MaskCap(c)
		if mask == 0 || cap == 0 {
			out.WriteString(segment[offsets[i]:offsets[i+1]])
			i++
			continue
		}
		capHere := min(n-i, cap, globalCap)
		m := mask & lengthsUpTo(capHere)
		matched := false
		for m != 0 {
			L := bits.Len64(m) // longest remaining candidate
			if repl, ok := merged[segment[offsets[i]:offsets[i+L]]]; ok {
				out.WriteString(repl)
				i += L
				matched = true
				break
			}
			m &^= uint64(1) << (L - 1)
		}
		if !matched {
			out.WriteString(segment[offsets[i]:offsets[i+1]])
			i++
		}
	}
	return out.String()
}

// lengthsUpTo returns a mask with the bits for lengths 1..L set.
func lengthsUpTo(L int) uint64 {
	if L >= 64 {
		return ^uint64(0)
	}
	if L <= 0 {
		return 0
	}
	return uint64(1)<<L - 1
}

// ConvertSegment is the unindexed matcher. At every position it tries each
// length from min(maxWordLength, remaining) down to 1 and asks dicts in
// precedence order, skipping dictionaries whose keys are all shorter.
//
// It needs no preparation and serves as fallback when a merged map or starter
// index cannot be built.
func ConvertSegment(segment string, dicts []*Dictionary, maxWordLength int) string {
	if isPassThrough(segment) {
		return segment
	}
	offsets := runeByteOffsets(segment)
	n := len(offsets) - 1
	var out strings.Builder
	out.Grow(len(segment))
	for i := 0; i < n; {
		matched := false
		for L := min(maxWordLength, n-i); L > 0 && !matched; L-- {
			word := segment[offsets[i]:offsets[i+L]]
			for _, d := range dicts {
				if d.MaxKeyLength() < L {
					continue
				}
				if repl, ok := d.Lookup(word); ok {
					out.WriteString(repl)
					i += L
					matched = true
					break
				}
			}
		}
		if !matched {
			out.WriteString(segment[offsets[i]:offsets[i+1]])
			i++
		}
	}
	return out.String()
}

// runeByteOffsets returns the byte offset of every code point in s, followed
// by len(s).
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return offsets
}
