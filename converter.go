package zhconv

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Config names a conversion.
type Config string

// Supported conversions.
const (
	S2T   Config = "s2t"   // Simplified → Traditional
	T2S   Config = "t2s"   // Traditional → Simplified
	S2TW  Config = "s2tw"  // Simplified → Traditional (Taiwan)
	TW2S  Config = "tw2s"  // Traditional (Taiwan) → Simplified
	S2TWP Config = "s2twp" // Simplified → Traditional (Taiwan), with Taiwan phrases
	TW2SP Config = "tw2sp" // Traditional (Taiwan) → Simplified, with mainland phrases
	S2HK  Config = "s2hk"  // Simplified → Traditional (Hong Kong)
	HK2S  Config = "hk2s"  // Traditional (Hong Kong) → Simplified
	T2TW  Config = "t2tw"  // Traditional → Taiwan standard
	TW2T  Config = "tw2t"  // Taiwan standard → Traditional
	T2TWP Config = "t2twp" // Traditional → Taiwan standard, with phrases
	TW2TP Config = "tw2tp" // Taiwan standard → Traditional, with phrases
	T2HK  Config = "t2hk"  // Traditional → Hong Kong standard
	HK2T  Config = "hk2t"  // Hong Kong standard → Traditional
	T2JP  Config = "t2jp"  // Kyujitai → Japanese Shinjitai
	JP2T  Config = "jp2t"  // Japanese Shinjitai → Kyujitai
)

var (
	// ErrInvalidConfig is returned for an unknown conversion name.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEmptyInput is returned when there is nothing to convert.
	ErrEmptyInput = errors.New("input text is empty")
)

// punctuation direction of a conversion
type punctuation int

const (
	punctNone punctuation = iota
	punctS2T
	punctT2S
)

// plan lists up to three conversion rounds. Each round is a list of slots in
// descending precedence; rounds are applied one after the other.
type plan struct {
	rounds [][]Slot
	punct  punctuation
}

var plans = map[Config]plan{
	S2T:   {rounds: [][]Slot{{STPhrases, STCharacters}}, punct: punctS2T},
	T2S:   {rounds: [][]Slot{{TSPhrases, TSCharacters}}, punct: punctT2S},
	S2TW:  {rounds: [][]Slot{{STPhrases, STCharacters}, {TWVariants}}, punct: punctS2T},
	TW2S:  {rounds: [][]Slot{{TWVariantsRevPhrases, TWVariantsRev}, {TSPhrases, TSCharacters}}, punct: punctT2S},
	S2TWP: {rounds: [][]Slot{{STPhrases, STCharacters}, {TWPhrases}, {TWVariants}}, punct: punctS2T},
	TW2SP: {rounds: [][]Slot{{TWPhrasesRev, TWVariantsRevPhrases, TWVariantsRev}, {TSPhrases, TSCharacters}}, punct: punctT2S},
	S2HK:  {rounds: [][]Slot{{STPhrases, STCharacters}, {HKVariants}}, punct: punctS2T},
	HK2S:  {rounds: [][]Slot{{HKVariantsRevPhrases, HKVariantsRev}, {TSPhrases, TSCharacters}}, punct: punctT2S},
	T2TW:  {rounds: [][]Slot{{TWVariants}}},
	TW2T:  {rounds: [][]Slot{{TWVariantsRevPhrases, TWVariantsRev}}},
	T2TWP: {rounds: [][]Slot{{TWPhrases}, {TWVariants}}},
	TW2TP: {rounds: [][]Slot{{TWVariantsRevPhrases, TWVariantsRev}, {TWPhrasesRev}}},
	T2HK:  {rounds: [][]Slot{{HKVariants}}},
	HK2T:  {rounds: [][]Slot{{HKVariantsRevPhrases, HKVariantsRev}}},
	T2JP:  {rounds: [][]Slot{{JPVariants}}},
	JP2T:  {rounds: [][]Slot{{JPSPhrases, JPSCharacters, JPVariantsRev}}},
}

var supportedConfigs = []Config{
	S2T, T2S, S2TW, TW2S, S2TWP, TW2SP, S2HK, HK2S,
	T2TW, TW2T, T2TWP, TW2TP, T2HK, HK2T, T2JP, JP2T,
}

// SupportedConfigs returns all conversion names.
func SupportedConfigs() []Config {
	configs := make([]Config, len(supportedConfigs))
	copy(configs, supportedConfigs)
	return configs
}

// ParseConfig returns the conversion named by s, ignoring case.
func ParseConfig(s string) (Config, error) {
	c := Config(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := plans[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidConfig, s)
	}
	return c, nil
}

var (
	punctS2TReplacer = strings.NewReplacer("“", "「", "”", "」", "‘", "『", "’", "』")
	punctT2SReplacer = strings.NewReplacer("「", "“", "」", "”", "『", "‘", "』", "’")
)

// Option configures a Converter.
type Option func(*Converter)

// WithCacheSize sets the number of prepared fast paths kept by the converter.
func WithCacheSize(size int) Option {
	return func(c *Converter) {
		c.cacheSize = size
	}
}

// WithParallelism sets when and how wide conversions are run in parallel.
func WithParallelism(minRanges, minChars, workers int) Option {
	return func(c *Converter) {
		c.opts = Options{
			ParallelMinRanges: minRanges,
			ParallelMinChars:  minChars,
			MaxWorkers:        workers,
		}
	}
}

// Converter converts texts with the dictionaries of a DictionarySet.
// It is safe for concurrent use once created; the set must not be modified
// while conversions run.
type Converter struct {
	set       *DictionarySet
	replacer  *Replacer
	cacheSize int
	opts      Options
}

// New creates a converter over set.
func New(set *DictionarySet, options ...Option) *Converter {
	if set == nil {
		set = NewDictionarySet()
	}
	c := &Converter{
		set:       set,
		cacheSize: DefaultCacheSize,
		opts:      DefaultOptions(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.replacer = NewReplacer(NewFastPathCache(c.cacheSize), c.opts)
	return c
}

// Convert converts text according to config. If punct is set, quotation
// marks are converted as well for conversions between Simplified and
// Traditional Chinese.
func (c *Converter) Convert(text string, config Config, punct bool) (string, error) {
	if text == "" {
		return "", ErrEmptyInput
	}
	p, ok := plans[config]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidConfig, config)
	}
	persisted := c.set.StarterIndex()
	for _, round := range p.rounds {
		text = c.replacer.Replace(text, c.set.Dictionaries(round...), persisted)
	}
	if punct {
		switch p.punct {
		case punctS2T:
			text = punctS2TReplacer.Replace(text)
		case punctT2S:
			text = punctT2SReplacer.Replace(text)
		}
	}
	return text, nil
}

// ST converts Simplified characters one by one, without phrases.
func (c *Converter) ST(text string) string {
	return ConvertSegment(text, c.set.Dictionaries(STCharacters), 1)
}

// TS converts Traditional characters one by one, without phrases.
func (c *Converter) TS(text string) string {
	return ConvertSegment(text, c.set.Dictionaries(TSCharacters), 1)
}

// Script is the result of ZhoCheck.
type Script int

// Scripts detected by ZhoCheck.
const (
	ScriptUnknown Script = iota
	ScriptTraditional
	ScriptSimplified
)

func (s Script) String() string {
	switch s {
	case ScriptTraditional:
		return "traditional"
	case ScriptSimplified:
		return "simplified"
	}
	return "unknown"
}

const zhoCheckLength = 100

// ZhoCheck guesses whether text is written in Traditional or Simplified
// Chinese, looking at the first 100 characters after removing ASCII
// punctuation, whitespace, digits and Latin letters.
func (c *Converter) ZhoCheck(text string) Script {
	if text == "" {
		return ScriptUnknown
	}
	var sample strings.Builder
	n := 0
	for _, r := range text {
		if n == zhoCheckLength {
			break
		}
		if ignoredByZhoCheck(r) {
			continue
		}
		sample.WriteRune(r)
		n++
	}
	s := sample.String()
	if s != c.TS(s) {
		return ScriptTraditional
	} else if s != c.ST(s) {
		return ScriptSimplified
	}
	return ScriptUnknown
}

func ignoredByZhoCheck(r rune) bool {
	switch {
	case r == '著':
		return true
	case r >= utf8.RuneSelf:
		return false
	case r >= '!' && r <= '~': // printable ASCII: punctuation, digits, letters
		return true
	}
	return r == ' ' || r == '\t' || r == '\n' || r == '\v' || r == '\f' || r == '\r'
}
