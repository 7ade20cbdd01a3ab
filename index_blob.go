package zhconv

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strconv"
)

// IndexBlobSchema is the version of the persisted starter index format.
const IndexBlobSchema = 1

// ErrMalformedBlob is returned for a persisted starter index that cannot be
// decoded. Callers treat it like a missing index and build one in memory.
var ErrMalformedBlob = errors.New("malformed starter index blob")

// IndexBlob is the persisted form of a StarterIndex, embeddable as field
// "starter_index" of a dictionary document.
//
// BMPMask holds 0x10000 little-endian uint64 masks, BMPCap 0x10000
// little-endian uint16 caps, both base64 encoded.
//
// Astral starters come in two layouts, and PackIndexBlob writes both: the
// list Astral, and the maps AstralMask/AstralCap keyed by the decimal code
// point, as written by the OpenCC pure-Python tools. A reader needs at least
// one of them. If both are present they must agree.
type IndexBlob struct {
	Schema     int               `json:"schema"`
	GlobalCap  int               `json:"global_cap"`
	BMPMask    string            `json:"bmp_mask"`
	BMPCap     string            `json:"bmp_cap"`
	Astral     []AstralStarter   `json:"astral"`
	AstralMask map[string]uint64 `json:"astral_mask"`
	AstralCap  map[string]int    `json:"astral_cap"`
}

// AstralStarter is the index entry of one code point beyond the BMP.
type AstralStarter struct {
	CodePoint rune   `json:"cp"`
	Mask      uint64 `json:"mask"`
	Cap       int    `json:"cap"`
}

// PackIndexBlob encodes idx for persistence.
func PackIndexBlob(idx *StarterIndex) *IndexBlob {
	assertf(idx != nil, "cannot pack a nil starter index")
	masks := make([]byte, 8*bmpSize)
	caps := make([]byte, 2*bmpSize)
	for c := 0; c < bmpSize; c++ {
		binary.LittleEndian.PutUint64(masks[8*c:], idx.bmpMask[c])
		binary.LittleEndian.PutUint16(caps[2*c:], idx.bmpCap[c])
	}
	blob := &IndexBlob{
		Schema:    IndexBlobSchema,
		GlobalCap: idx.globalCap,
		BMPMask:   base64.StdEncoding.EncodeToString(masks),
		BMPCap:    base64.StdEncoding.EncodeToString(caps),
		Astral:     make([]AstralStarter, 0, len(idx.astral)),
		AstralMask: make(map[string]uint64, len(idx.astral)),
		AstralCap:  make(map[string]int, len(idx.astral)),
	}
	for c, s := range idx.astral {
		if s.mask == 0 {
			continue
		}
		blob.Astral = append(blob.Astral, AstralStarter{CodePoint: c, Mask: s.mask, Cap: int(s.cap)})
		key := strconv.Itoa(int(c))
		blob.AstralMask[key] = s.mask
		blob.AstralCap[key] = int(s.cap)
	}
	sort.Slice(blob.Astral, func(i, j int) bool {
		return blob.Astral[i].CodePoint < blob.Astral[j].CodePoint
	})
	return blob
}

// UnpackIndexBlob decodes a persisted starter index. Every inconsistency is
// reported as ErrMalformedBlob; the blob is never partially applied.
func UnpackIndexBlob(blob *IndexBlob) (*StarterIndex, error) {
	if blob == nil {
		return nil, fmt.Errorf("%w: missing", ErrMalformedBlob)
	}
	if blob.Schema != IndexBlobSchema {
		return nil, fmt.Errorf("%w: unknown schema %d", ErrMalformedBlob, blob.Schema)
	}
	if blob.GlobalCap < 1 || blob.GlobalCap > MaxGlobalCap {
		return nil, fmt.Errorf("%w: global cap %d", ErrMalformedBlob, blob.GlobalCap)
	}
	masks, err := base64.StdEncoding.DecodeString(blob.BMPMask)
	if err != nil {
		return nil, fmt.Errorf("%w: bmp_mask: %v", ErrMalformedBlob, err)
	}
	caps, err := base64.StdEncoding.DecodeString(blob.BMPCap)
	if err != nil {
		return nil, fmt.Errorf("%w: bmp_cap: %v", ErrMalformedBlob, err)
	}
	if len(masks) != 8*bmpSize || len(caps) != 2*bmpSize {
		return nil, fmt.Errorf("%w: bmp arrays have %d/%d bytes", ErrMalformedBlob, len(masks), len(caps))
	}
	idx := newStarterIndex(blob.GlobalCap)
	for c := 0; c < bmpSize; c++ {
		mask := binary.LittleEndian.Uint64(masks[8*c:])
		cap := binary.LittleEndian.Uint16(caps[2*c:])
		if !consistent(mask, int(cap), blob.GlobalCap) {
			return nil, fmt.Errorf("%w: entry U+%04X mask=%#x cap=%d", ErrMalformedBlob, c, mask, cap)
		}
		idx.bmpMask[c] = mask
		idx.bmpCap[c] = cap
	}
	astral, err := astralStarters(blob)
	if err != nil {
		return nil, err
	}
	for _, a := range astral {
		if a.CodePoint < bmpSize || a.CodePoint > 0x10FFFF || a.Mask == 0 {
			return nil, fmt.Errorf("%w: astral entry %#x", ErrMalformedBlob, a.CodePoint)
		}
		if !consistent(a.Mask, a.Cap, blob.GlobalCap) {
			return nil, fmt.Errorf("%w: astral entry %#x mask=%#x cap=%d", ErrMalformedBlob, a.CodePoint, a.Mask, a.Cap)
		}
		idx.astral[a.CodePoint] = starter{mask: a.Mask, cap: uint16(a.Cap)}
	}
	return idx, nil
}

// astralStarters collects the astral entries of blob from either layout.
// A blob with neither layout is incomplete: it would hide every key starting
// beyond the BMP.
func astralStarters(blob *IndexBlob) ([]AstralStarter, error) {
	hasList := blob.Astral != nil
	hasMaps := blob.AstralMask != nil || blob.AstralCap != nil
	if !hasList && !hasMaps {
		return nil, fmt.Errorf("%w: astral starters missing", ErrMalformedBlob)
	}
	if !hasMaps {
		return blob.Astral, nil
	}
	if len(blob.AstralMask) != len(blob.AstralCap) {
		return nil, fmt.Errorf("%w: astral_mask and astral_cap differ in size", ErrMalformedBlob)
	}
	fromMaps := make(map[rune]AstralStarter, len(blob.AstralMask))
	for key, mask := range blob.AstralMask {
		cp, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: astral key %q", ErrMalformedBlob, key)
		}
		cap, ok := blob.AstralCap[key]
		if !ok {
			return nil, fmt.Errorf("%w: astral key %q has no cap", ErrMalformedBlob, key)
		}
		c := rune(cp)
		if int(c) != cp {
			return nil, fmt.Errorf("%w: astral key %q", ErrMalformedBlob, key)
		}
		fromMaps[c] = AstralStarter{CodePoint: c, Mask: mask, Cap: cap}
	}
	if hasList {
		if len(blob.Astral) != len(fromMaps) {
			return nil, fmt.Errorf("%w: astral list and maps disagree", ErrMalformedBlob)
		}
		for _, a := range blob.Astral {
			if fromMaps[a.CodePoint] != a {
				return nil, fmt.Errorf("%w: astral list and maps disagree at %#x", ErrMalformedBlob, a.CodePoint)
			}
		}
	}
	astral := make([]AstralStarter, 0, len(fromMaps))
	for _, a := range fromMaps {
		astral = append(astral, a)
	}
	return astral, nil
}

// consistent checks that cap is the highest length present in mask.
func consistent(mask uint64, cap int, globalCap int) bool {
	if mask == 0 {
		return cap == 0
	}
	return cap == bits.Len64(mask) && cap <= globalCap
}
