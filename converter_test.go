package zhconv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet() *DictionarySet {
	set := NewDictionarySet()
	set.Set(STPhrases, NewDictionary("st_phrases", map[string]string{"龙王": "龍王", "干涉": "干涉"}))
	set.Set(STCharacters, NewDictionary("st_characters", map[string]string{
		"龙": "龍", "干": "幹", "发": "發", "台": "台", "软": "軟",
	}))
	set.Set(TSPhrases, NewDictionary("ts_phrases", map[string]string{"龍王": "龙王"}))
	set.Set(TSCharacters, NewDictionary("ts_characters", map[string]string{
		"龍": "龙", "幹": "干", "發": "发", "乾": "干", "軟": "软",
	}))
	set.Set(TWPhrases, NewDictionary("tw_phrases", map[string]string{"軟件": "軟體"}))
	set.Set(TWPhrasesRev, NewDictionary("tw_phrases_rev", map[string]string{"軟體": "軟件"}))
	set.Set(TWVariants, NewDictionary("tw_variants", map[string]string{"台": "臺"}))
	set.Set(TWVariantsRev, NewDictionary("tw_variants_rev", map[string]string{"臺": "台"}))
	set.Set(TWVariantsRevPhrases, NewDictionary("tw_variants_rev_phrases", map[string]string{"臺灣": "台湾"}))
	set.Set(HKVariants, NewDictionary("hk_variants", map[string]string{"群": "羣"}))
	set.Set(HKVariantsRev, NewDictionary("hk_variants_rev", map[string]string{"羣": "群"}))
	set.Set(HKVariantsRevPhrases, NewDictionary("hk_variants_rev_phrases", map[string]string{"羣龍": "群龍"}))
	set.Set(JPSCharacters, NewDictionary("jps_characters", map[string]string{"竜": "龍"}))
	set.Set(JPSPhrases, NewDictionary("jps_phrases", map[string]string{"竜王": "龍皇"}))
	set.Set(JPVariants, NewDictionary("jp_variants", map[string]string{"龍": "竜"}))
	set.Set(JPVariantsRev, NewDictionary("jp_variants_rev", map[string]string{"竜": "X"}))
	return set
}

func TestConvertConfigs(t *testing.T) {
	c := New(testSet())
	tests := []struct {
		config Config
		input  string
		want   string
	}{
		{S2T, "龙王发干涉", "龍王發干涉"},
		{T2S, "龍王發乾", "龙王发干"},
		{S2TW, "台龙", "臺龍"},
		{TW2S, "臺龍", "台龙"},
		{T2TW, "台", "臺"},
		{TW2T, "臺", "台"},
		{S2TWP, "软件台", "軟體臺"},
		{TW2SP, "軟體臺", "软件台"},
		{TW2SP, "臺灣", "台湾"},
		{S2HK, "龙群", "龍羣"},
		{HK2S, "羣龍無", "群龙無"},
		{T2TWP, "軟件台", "軟體臺"},
		{TW2TP, "軟體臺", "軟件台"},
		{T2HK, "群", "羣"},
		{HK2T, "羣龍羣", "群龍群"},
		{T2JP, "龍", "竜"},
		{JP2T, "竜王竜", "龍皇龍"},
	}
	for _, tt := range tests {
		got, err := c.Convert(tt.input, tt.config, false)
		require.NoError(t, err, "config %s", tt.config)
		assert.Equal(t, tt.want, got, "config %s", tt.config)
	}
}

func TestConvertPunctuation(t *testing.T) {
	c := New(testSet())
	got, err := c.Convert("“龙”‘王’", S2T, true)
	require.NoError(t, err)
	assert.Equal(t, "「龍」『王』", got)
	got, err = c.Convert("「龍」", T2S, true)
	require.NoError(t, err)
	assert.Equal(t, "“龙”", got)
	got, err = c.Convert("“龙”", S2T, false)
	require.NoError(t, err)
	assert.Equal(t, "“龍”", got)
	got, err = c.Convert("“臺”", T2TW, true)
	require.NoError(t, err)
	assert.Equal(t, "“臺”", got, "variant-only configs leave punctuation alone")
}

func TestConvertErrors(t *testing.T) {
	c := New(testSet())
	_, err := c.Convert("", S2T, false)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	_, err = c.Convert("龙", Config("x2y"), false)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestParseConfig(t *testing.T) {
	for _, config := range SupportedConfigs() {
		parsed, err := ParseConfig(string(config))
		require.NoError(t, err)
		assert.Equal(t, config, parsed)
	}
	parsed, err := ParseConfig(" S2TWP ")
	require.NoError(t, err)
	assert.Equal(t, S2TWP, parsed)
	_, err = ParseConfig("s2x")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Len(t, SupportedConfigs(), 16)
}

func TestConvertWithPersistedIndex(t *testing.T) {
	set := testSet()
	idx, err := set.BuildStarterIndex()
	require.NoError(t, err)
	set.InjectStarterIndex(idx)
	c := New(set, WithCacheSize(2), WithParallelism(1, 1, 2))
	got, err := c.Convert("龙王，发干涉。台", S2TW, false)
	require.NoError(t, err)
	assert.Equal(t, "龍王，發干涉。臺", got)

	set.SetIndexBlob(&IndexBlob{Schema: 99})
	c = New(set)
	got, err = c.Convert("龙王，发干涉。台", S2TW, false)
	require.NoError(t, err)
	assert.Equal(t, "龍王，發干涉。臺", got, "a malformed persisted index is ignored")
}

func TestCharacterConversionAndZhoCheck(t *testing.T) {
	c := New(testSet())
	assert.Equal(t, "龍王", c.ST("龙王"), "character conversion ignores phrases")
	assert.Equal(t, "龙王", c.TS("龍王"))
	assert.Equal(t, ScriptTraditional, c.ZhoCheck("Hello, 龍王!"))
	assert.Equal(t, ScriptSimplified, c.ZhoCheck("123 龙王"))
	assert.Equal(t, ScriptUnknown, c.ZhoCheck("Hello, world 42"))
	assert.Equal(t, ScriptUnknown, c.ZhoCheck(""))
	assert.Equal(t, "traditional", ScriptTraditional.String())
}
