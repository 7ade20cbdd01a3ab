package zhconv

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/minio/blake2b-simd"
)

// EntryReader yields dictionary entries one-by-one.
// It should return io.EOF when the stream is exhausted.
type EntryReader interface {
	Next() (key string, value string, err error)
}

// Dictionary is an immutable mapping from source phrases to replacements.
//
// Keys are sequences of code points. The maximum key length is always
// computed from the keys themselves; it is what bounds match probing, so it
// must never under-report.
type Dictionary struct {
	name         string
	entries      map[string]string
	maxKeyLength int    // in code points
	fingerprint  string // content hash, hex encoded
}

// NewDictionary creates a dictionary from an in-memory map. The map is
// copied, empty keys are dropped.
func NewDictionary(name string, entries map[string]string) *Dictionary {
	dict := &Dictionary{
		name:    name,
		entries: make(map[string]string, len(entries)),
	}
	for k, v := range entries {
		dict.add(k, v)
	}
	dict.seal()
	return dict
}

// LoadEntries compiles a dictionary from a streaming, format-agnostic source.
//
// File format parsing is intentionally outside the base package. Use adapters
// like package opencctxt to parse concrete formats and feed this API.
// If a key occurs more than once, the last occurrence wins.
func LoadEntries(name string, reader EntryReader) (*Dictionary, error) {
	dict := &Dictionary{
		name:    name,
		entries: make(map[string]string, 1024),
	}
	for {
		key, value, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dictionary %q: %w", name, err)
		}
		dict.add(key, value)
	}
	dict.seal()
	tracer().Debugf("dictionary %s: %d entries, max key length %d", name, len(dict.entries), dict.maxKeyLength)
	return dict, nil
}

func (dict *Dictionary) add(key, value string) {
	if key == "" {
		return
	}
	dict.entries[key] = value
	if n := utf8.RuneCountInString(key); n > dict.maxKeyLength {
		dict.maxKeyLength = n
	}
}

// seal computes the content fingerprint. Entries are hashed in key order, so
// equal content yields equal fingerprints regardless of insertion order.
func (dict *Dictionary) seal() {
	keys := make([]string, 0, len(dict.entries))
	for k := range dict.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := blake2b.New256()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(dict.entries[k]))
		h.Write([]byte{0})
	}
	dict.fingerprint = hex.EncodeToString(h.Sum(nil))
}

// Name returns the identifier the dictionary was created with.
func (dict *Dictionary) Name() string {
	if dict == nil {
		return ""
	}
	return dict.name
}

// Len returns the number of entries.
func (dict *Dictionary) Len() int {
	if dict == nil {
		return 0
	}
	return len(dict.entries)
}

// MaxKeyLength returns the length of the longest key in code points, or 0 for
// an empty dictionary.
func (dict *Dictionary) MaxKeyLength() int {
	if dict == nil {
		return 0
	}
	return dict.maxKeyLength
}

// Lookup returns the replacement for key.
func (dict *Dictionary) Lookup(key string) (string, bool) {
	if dict == nil {
		return "", false
	}
	v, ok := dict.entries[key]
	return v, ok
}

// Each calls f for every entry, in no particular order, until f returns false.
func (dict *Dictionary) Each(f func(key, value string) bool) {
	if dict == nil {
		return
	}
	for k, v := range dict.entries {
		if !f(k, v) {
			return
		}
	}
}

// Fingerprint identifies the dictionary's content.
// Dictionaries with equal entries have equal fingerprints.
func (dict *Dictionary) Fingerprint() string {
	if dict == nil {
		return emptyFingerprint
	}
	return dict.fingerprint
}

var emptyFingerprint = func() string {
	sum := blake2b.Sum256(nil)
	return hex.EncodeToString(sum[:])
}()

func (dict *Dictionary) String() string {
	return fmt.Sprintf("Dictionary(%s,entries=%d,maxlen=%d)", dict.Name(), dict.Len(), dict.MaxKeyLength())
}
