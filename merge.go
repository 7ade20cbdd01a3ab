package zhconv

// MergedMap is a flat, precedence-resolved phrase map. It is treated as
// read-only once built and may be shared between goroutines.
type MergedMap map[string]string

// MergeInPrecedence flattens dicts into one map. dicts are given in
// descending precedence: if a key occurs in more than one dictionary, the
// value of the dictionary listed first is kept.
func MergeInPrecedence(dicts ...*Dictionary) MergedMap {
	size := 0
	for _, d := range dicts {
		size += d.Len()
	}
	merged := make(MergedMap, size)
	for _, d := range dicts {
		d.Each(func(key, value string) bool {
			if _, present := merged[key]; !present {
				merged[key] = value
			}
			return true
		})
	}
	return merged
}

// Lookup returns the replacement for key.
func (m MergedMap) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
