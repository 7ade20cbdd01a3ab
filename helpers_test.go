package zhconv

import (
	"io"
	"reflect"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

var defaultGopterParameters = gopter.DefaultTestParameters()

type sliceEntryReader struct {
	entries [][2]string
	index   int
}

func (r *sliceEntryReader) Next() (string, string, error) {
	if r.index >= len(r.entries) {
		return "", "", io.EOF
	}
	entry := r.entries[r.index]
	r.index++
	return entry[0], entry[1], nil
}

// testAlphabet mixes BMP, astral and delimiter code points, few enough that
// generated keys collide and overlap.
var testAlphabet = []rune{'龍', '王', '重', '干', 'a', 'b', 0x20000, 0x2A6D6, ' ', '，'}

func genRune() gopter.Gen {
	return gen.IntRange(0, len(testAlphabet)-1).Map(func(i int) rune {
		return testAlphabet[i]
	})
}

func genKey(maxLen int) gopter.Gen {
	return gen.IntRange(1, maxLen).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), genRune()).Map(func(rs []rune) string {
			return string(rs)
		})
	}, reflect.TypeOf(""))
}

func genKeys() gopter.Gen {
	return gen.SliceOf(genKey(5))
}

func genText() gopter.Gen {
	return gen.SliceOf(genRune()).Map(func(rs []rune) string {
		return string(rs)
	})
}

// dictFromKeys maps every key to a replacement tagged with the dictionary's
// name, so that the winning dictionary shows in the output.
func dictFromKeys(name string, keys []string) *Dictionary {
	entries := make(map[string]string, len(keys))
	for _, k := range keys {
		entries[k] = "<" + name + ":" + k + ">"
	}
	return NewDictionary(name, entries)
}

func gen64() gopter.Gen {
	return gen.Int64()
}
