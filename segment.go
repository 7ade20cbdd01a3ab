package zhconv

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// Range is a half-open byte range [Start, End) of a text.
type Range struct {
	Start, End int
}

// SplitRanges splits text at delimiters.
//
// If inclusive is true, every delimiter closes the range it terminates.
// Otherwise delimiters are returned as ranges of their own, and the text
// between them as separate ranges.
func SplitRanges(text string, inclusive bool) []Range {
	ranges := make([]Range, 0, 16)
	start := 0
	for i, r := range text {
		if !IsDelimiter(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if inclusive {
			ranges = append(ranges, Range{start, end})
		} else {
			if i > start {
				ranges = append(ranges, Range{start, i})
			}
			ranges = append(ranges, Range{i, end})
		}
		start = end
	}
	if start < len(text) {
		ranges = append(ranges, Range{start, len(text)})
	}
	return ranges
}

// Options control how a Replacer distributes work.
//
// Texts with more than ParallelMinRanges ranges and at least ParallelMinChars
// bytes are converted by up to MaxWorkers goroutines. The output does not
// depend on these settings.
type Options struct {
	ParallelMinRanges int
	ParallelMinChars  int
	MaxWorkers        int
}

// DefaultOptions returns the default dispatch thresholds.
func DefaultOptions() Options {
	return Options{
		ParallelMinRanges: 1000,
		ParallelMinChars:  1_000_000,
		MaxWorkers:        4,
	}
}

// Replacer applies one round of dictionaries to whole texts.
type Replacer struct {
	cache *FastPathCache
	opts  Options
}

// NewReplacer creates a Replacer drawing fast paths from cache.
func NewReplacer(cache *FastPathCache, opts Options) *Replacer {
	if cache == nil {
		cache = NewFastPathCache(DefaultCacheSize)
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &Replacer{cache: cache, opts: opts}
}

// Replace converts text with dicts, given in descending precedence.
// persisted is an optional stored starter index covering dicts.
//
// The indexed matcher is used whenever a fast path can be prepared; otherwise
// Replace falls back to ConvertSegment with identical results.
func (rp *Replacer) Replace(text string, dicts []*Dictionary, persisted *StarterIndex) string {
	if text == "" {
		return text
	}
	convert := rp.segmentConverter(dicts, persisted)
	ranges := SplitRanges(text, true)
	if len(ranges) == 1 && ranges[0] == (Range{0, len(text)}) {
		return convert(text)
	}
	if len(ranges) > rp.opts.ParallelMinRanges && len(text) >= rp.opts.ParallelMinChars && rp.opts.MaxWorkers > 1 {
		return convertParallel(text, ranges, rp.opts.MaxWorkers, convert)
	}
	return convertRanges(text, ranges, convert)
}

func (rp *Replacer) segmentConverter(dicts []*Dictionary, persisted *StarterIndex) func(string) string {
	fp, err := rp.cache.Prepare(dicts, persisted)
	if err == nil {
		return fp.Convert
	}
	if !errors.Is(err, ErrNoEntries) {
		tracer().Infof("no indexed fast path, using unindexed matcher: %v", err)
	}
	maxWordLength := RequiredCap(dicts)
	return func(segment string) string {
		return ConvertSegment(segment, dicts, maxWordLength)
	}
}

func convertRanges(text string, ranges []Range, convert func(string) string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range ranges {
		out.WriteString(convert(text[r.Start:r.End]))
	}
	return out.String()
}

// convertParallel splits ranges into contiguous groups, converts each group
// in its own goroutine and joins the results in original order.
func convertParallel(text string, ranges []Range, workers int, convert func(string) string) string {
	groups := chunkRanges(ranges, workers)
	results := make([]string, len(groups))
	var wg sync.WaitGroup
	for g, group := range groups {
		g, group := g, group
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[g] = convertRanges(text, group, convert)
		}()
	}
	wg.Wait()
	return strings.Join(results, "")
}

// chunkRanges divides ranges into at most count groups of nearly equal size.
func chunkRanges(ranges []Range, count int) [][]Range {
	if len(ranges) == 0 {
		return nil
	}
	size := (len(ranges) + count - 1) / count
	groups := make([][]Range, 0, count)
	for i := 0; i < len(ranges); i += size {
		groups = append(groups, ranges[i:min(i+size, len(ranges))])
	}
	return groups
}
