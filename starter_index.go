package zhconv

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxGlobalCap is the longest key length a starter index can represent: one
// mask bit per length.
const MaxGlobalCap = 64

const bmpSize = 0x10000

var (
	// ErrKeyTooLong is returned when a dictionary key is longer than the cap
	// an index is built for. Such a key would be unreachable.
	ErrKeyTooLong = errors.New("dictionary key exceeds global cap")
	// ErrCapOutOfRange is returned for a global cap outside 1..MaxGlobalCap.
	ErrCapOutOfRange = errors.New("global cap out of range")
)

// starter is the per-code-point entry for astral starters.
type starter struct {
	mask uint64
	cap  uint16
}

// StarterIndex records, for every code point that starts a dictionary key,
// which key lengths exist (mask bit L-1 for length L) and the longest one (cap).
//
// BMP code points are stored in dense arrays indexed by code point:
//   - bmpMask: 65536 * 8 bytes = 512 KB
//   - bmpCap:  65536 * 2 bytes = 128 KB
//
// Astral code points are rare as starters and go into a sparse map.
//
// The index may over-report (a bit set without a key of that length at a
// given position), never under-report. Matches are always confirmed by a
// lookup in the merged map.
type StarterIndex struct {
	bmpMask   []uint64
	bmpCap    []uint16
	astral    map[rune]starter
	globalCap int
}

func newStarterIndex(globalCap int) *StarterIndex {
	return &StarterIndex{
		bmpMask:   make([]uint64, bmpSize),
		bmpCap:    make([]uint16, bmpSize),
		astral:    make(map[rune]starter),
		globalCap: globalCap,
	}
}

// BuildStarterIndex builds an index over the keys of dicts. The result
// depends only on the set of (starter, length) pairs, not on the order of
// dicts.
//
// globalCap must cover the longest key of all dicts (see RequiredCap);
// a longer key is reported as ErrKeyTooLong rather than dropped.
func BuildStarterIndex(dicts []*Dictionary, globalCap int) (*StarterIndex, error) {
	if globalCap < 1 || globalCap > MaxGlobalCap {
		return nil, fmt.Errorf("%w: %d", ErrCapOutOfRange, globalCap)
	}
	idx := newStarterIndex(globalCap)
	var err error
	for _, d := range dicts {
		d.Each(func(key, _ string) bool {
			c, _ := utf8.DecodeRuneInString(key)
			L := utf8.RuneCountInString(key)
			if L > globalCap {
				err = fmt.Errorf("%w: %q (%d > %d) in %s", ErrKeyTooLong, key, L, globalCap, d.Name())
				return false
			}
			idx.mark(c, L)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	tracer().Infof("starter index built: cap=%d starters=%d", globalCap, idx.StarterCount())
	return idx, nil
}

func (idx *StarterIndex) mark(c rune, L int) {
	assertf(L >= 1 && L <= idx.globalCap, "key length outside index cap")
	bit := uint64(1) << (L - 1)
	if c >= 0 && c < bmpSize {
		idx.bmpMask[c] |= bit
		if uint16(L) > idx.bmpCap[c] {
			idx.bmpCap[c] = uint16(L)
		}
		return
	}
	s := idx.astral[c]
	s.mask |= bit
	if uint16(L) > s.cap {
		s.cap = uint16(L)
	}
	idx.astral[c] = s
}

// MaskCap returns the length mask and the longest key length for keys
// starting with c. Code points that start no key yield (0, 0).
func (idx *StarterIndex) MaskCap(c rune) (mask uint64, cap int) {
	if c >= 0 && c < bmpSize {
		return idx.bmpMask[c], int(idx.bmpCap[c])
	}
	s, ok := idx.astral[c]
	if !ok {
		return 0, 0
	}
	return s.mask, int(s.cap)
}

// GlobalCap returns the cap the index was built for.
func (idx *StarterIndex) GlobalCap() int {
	if idx == nil {
		return 0
	}
	return idx.globalCap
}

// Covers reports whether the index may be used for dictionaries whose longest
// key has requiredCap code points. An index built for a smaller cap could
// hide valid matches and has to be rebuilt.
func (idx *StarterIndex) Covers(requiredCap int) bool {
	return idx != nil && idx.globalCap >= requiredCap
}

// StarterCount returns the number of distinct starter code points.
func (idx *StarterIndex) StarterCount() int {
	n := len(idx.astral)
	for _, m := range idx.bmpMask {
		if m != 0 {
			n++
		}
	}
	return n
}
