package zhconv

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of prepared fast paths a FastPathCache keeps.
const DefaultCacheSize = 64

// ErrNoEntries is returned by Prepare for dictionaries without any entries.
// There is nothing to index; every text passes through unchanged.
var ErrNoEntries = errors.New("no dictionary entries to index")

// RequiredCap returns the longest key length, in code points, across dicts.
// A starter index used for dicts must be built for at least this cap.
func RequiredCap(dicts []*Dictionary) int {
	maxLen := 0
	for _, d := range dicts {
		maxLen = max(maxLen, d.MaxKeyLength())
	}
	return maxLen
}

// FastPath bundles what the indexed matcher needs for one ordered set of
// dictionaries. It is immutable and may be shared between goroutines.
type FastPath struct {
	Merged    MergedMap
	Index     *StarterIndex
	GlobalCap int
}

// Convert converts one segment with the indexed matcher.
func (fp *FastPath) Convert(segment string) string {
	return ConvertSegmentIndexed(segment, fp.Merged, fp.Index, fp.GlobalCap)
}

// FastPathCache owns prepared fast paths, keyed by the fingerprints of the
// dictionaries (in precedence order) and the global cap.
//
// Lookups and builds are serialized by a mutex; a prepared FastPath is then
// used without locking. Prepare all fast paths before fanning out conversions.
type FastPathCache struct {
	mu     sync.Mutex
	paths  *lru.Cache // signature+cap -> *FastPath
	merged *lru.Cache // signature -> MergedMap
}

// NewFastPathCache creates a cache holding up to size prepared fast paths.
func NewFastPathCache(size int) *FastPathCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	paths, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	merged, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &FastPathCache{paths: paths, merged: merged}
}

// Prepare returns the fast path for dicts, building and caching what is
// missing. persisted, if not nil, is a starter index loaded from storage; it
// is used only if it covers the longest key of dicts, otherwise a new index
// is built.
//
// An error means no fast path is available for dicts and the caller has to
// use ConvertSegment instead.
func (fc *FastPathCache) Prepare(dicts []*Dictionary, persisted *StarterIndex) (*FastPath, error) {
	globalCap := RequiredCap(dicts)
	if globalCap == 0 {
		return nil, ErrNoEntries
	}
	sig := signature(dicts)
	key := fmt.Sprintf("%s/%d", sig, globalCap)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fp, ok := fc.paths.Get(key); ok {
		return fp.(*FastPath), nil
	}
	var merged MergedMap
	if m, ok := fc.merged.Get(sig); ok {
		merged = m.(MergedMap)
	}
	var idx *StarterIndex
	if persisted.Covers(globalCap) {
		idx = persisted
	} else {
		if persisted != nil {
			tracer().Infof("persisted starter index is stale (cap %d < %d), rebuilding",
				persisted.GlobalCap(), globalCap)
		}
		var err error
		if idx, err = BuildStarterIndex(dicts, globalCap); err != nil {
			return nil, err
		}
	}
	if merged == nil {
		merged = MergeInPrecedence(dicts...)
		fc.merged.Add(sig, merged)
	}
	fp := &FastPath{Merged: merged, Index: idx, GlobalCap: globalCap}
	fc.paths.Add(key, fp)
	return fp, nil
}

// Len returns the number of cached fast paths.
func (fc *FastPathCache) Len() int {
	return fc.paths.Len()
}

func signature(dicts []*Dictionary) string {
	fps := make([]string, len(dicts))
	for i, d := range dicts {
		fps[i] = d.Fingerprint()
	}
	return strings.Join(fps, ":")
}
