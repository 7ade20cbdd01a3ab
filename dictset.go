package zhconv

import (
	"fmt"
	"sync"
)

// Slot names one of the dictionaries of a DictionarySet.
type Slot int

// The dictionaries of the OpenCC data set.
const (
	STCharacters Slot = iota
	STPhrases
	TSCharacters
	TSPhrases
	TWPhrases
	TWPhrasesRev
	TWVariants
	TWVariantsRev
	TWVariantsRevPhrases
	HKVariants
	HKVariantsRev
	HKVariantsRevPhrases
	JPSCharacters
	JPSPhrases
	JPVariants
	JPVariantsRev
	slotCount
)

var slotNames = [slotCount]struct{ field, file string }{
	{"st_characters", "STCharacters.txt"},
	{"st_phrases", "STPhrases.txt"},
	{"ts_characters", "TSCharacters.txt"},
	{"ts_phrases", "TSPhrases.txt"},
	{"tw_phrases", "TWPhrases.txt"},
	{"tw_phrases_rev", "TWPhrasesRev.txt"},
	{"tw_variants", "TWVariants.txt"},
	{"tw_variants_rev", "TWVariantsRev.txt"},
	{"tw_variants_rev_phrases", "TWVariantsRevPhrases.txt"},
	{"hk_variants", "HKVariants.txt"},
	{"hk_variants_rev", "HKVariantsRev.txt"},
	{"hk_variants_rev_phrases", "HKVariantsRevPhrases.txt"},
	{"jps_characters", "JPShinjitaiCharacters.txt"},
	{"jps_phrases", "JPShinjitaiPhrases.txt"},
	{"jp_variants", "JPVariants.txt"},
	{"jp_variants_rev", "JPVariantsRev.txt"},
}

// Slots returns all slots in canonical order.
func Slots() []Slot {
	slots := make([]Slot, slotCount)
	for i := range slots {
		slots[i] = Slot(i)
	}
	return slots
}

// String returns the field name of the slot in a dictionary document.
func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s].field
}

// FileName returns the name of the OpenCC text file for the slot.
func (s Slot) FileName() string {
	if s < 0 || s >= slotCount {
		return ""
	}
	return slotNames[s].file
}

// DictionarySet holds the dictionaries of all slots and, optionally, a
// persisted starter index built over all of them.
type DictionarySet struct {
	dicts [slotCount]*Dictionary

	mu      sync.Mutex // guards the index fields and slot replacement
	blob    *IndexBlob
	decoded bool
	index   *StarterIndex // unpacked blob, nil if absent or malformed
}

// NewDictionarySet creates a set with all slots empty.
func NewDictionarySet() *DictionarySet {
	set := &DictionarySet{}
	for i := range set.dicts {
		set.dicts[i] = NewDictionary(Slot(i).String(), nil)
	}
	return set
}

// Set places d into slot s. Sets are populated once, before conversion starts.
// A starter index attached earlier may not cover d and is dropped.
func (set *DictionarySet) Set(s Slot, d *Dictionary) {
	assertf(s >= 0 && s < slotCount, "slot out of range")
	if d == nil {
		d = NewDictionary(s.String(), nil)
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	set.dicts[s] = d
	if set.blob != nil {
		tracer().Debugf("slot %s replaced, dropping starter index", s)
		set.blob = nil
		set.decoded = false
		set.index = nil
	}
}

// Get returns the dictionary in slot s. Unset slots hold an empty dictionary.
func (set *DictionarySet) Get(s Slot) *Dictionary {
	assertf(s >= 0 && s < slotCount, "slot out of range")
	return set.dicts[s]
}

// Dictionaries returns the dictionaries of the given slots, in order.
func (set *DictionarySet) Dictionaries(slots ...Slot) []*Dictionary {
	dicts := make([]*Dictionary, len(slots))
	for i, s := range slots {
		dicts[i] = set.Get(s)
	}
	return dicts
}

// SetIndexBlob attaches a persisted starter index. It is decoded lazily.
func (set *DictionarySet) SetIndexBlob(blob *IndexBlob) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.blob = blob
	set.decoded = false
	set.index = nil
}

// IndexBlob returns the attached persisted starter index, if any.
func (set *DictionarySet) IndexBlob() *IndexBlob {
	set.mu.Lock()
	defer set.mu.Unlock()
	return set.blob
}

// StarterIndex returns the persisted starter index, or nil if there is none
// or it cannot be decoded. A malformed blob is not an error: callers build an
// index in memory instead.
func (set *DictionarySet) StarterIndex() *StarterIndex {
	set.mu.Lock()
	defer set.mu.Unlock()
	if set.decoded || set.blob == nil {
		return set.index
	}
	set.decoded = true
	idx, err := UnpackIndexBlob(set.blob)
	if err != nil {
		tracer().Errorf("ignoring persisted starter index: %v", err)
		return nil
	}
	set.index = idx
	return set.index
}

// BuildStarterIndex builds a starter index over the keys of all slots, capped
// at the longest key of the set. Being built over every dictionary, it is
// valid for any subset of them.
func (set *DictionarySet) BuildStarterIndex() (*StarterIndex, error) {
	all := set.Dictionaries(Slots()...)
	return BuildStarterIndex(all, RequiredCap(all))
}

// InjectStarterIndex attaches idx to the set, both as decoded index and in
// its persisted form.
func (set *DictionarySet) InjectStarterIndex(idx *StarterIndex) {
	blob := PackIndexBlob(idx)
	set.mu.Lock()
	defer set.mu.Unlock()
	set.blob = blob
	set.decoded = true
	set.index = idx
}

func (set *DictionarySet) String() string {
	loaded := 0
	for _, d := range set.dicts {
		if d.Len() > 0 {
			loaded++
		}
	}
	return fmt.Sprintf("DictionarySet(loaded=%d,index=%v)", loaded, set.blob != nil)
}
