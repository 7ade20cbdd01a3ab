/*
Package zhconv converts text between Chinese script variants (Simplified,
Traditional, Taiwan, Hong Kong and Japanese Shinjitai forms) by forward
longest-match substitution over a set of precedence-ordered dictionaries.

Dictionaries of one conversion round are merged into a single map, where the
dictionary listed first wins on key collisions. Matching is accelerated by a
starter index: for every code point that can start a key it records a bit mask
of the possible key lengths and the longest such length. The matcher probes
only lengths whose bit is set, so most positions cost a single array read.
BMP code points live in dense arrays, astral code points in a sparse map.

The starter index may be persisted alongside the dictionary data (see package
dictjson). A persisted index is optional and never authoritative: if it is
missing, malformed, or built for a smaller maximum key length, a fresh one is
built in memory. If no index can be built at all, conversion falls back to an
unindexed matcher with identical output.

Format adapters are kept outside this package. Use package opencctxt to read
OpenCC plain-text dictionaries and package dictjson to read and write the JSON
dictionary document.

Further Reading

	https://github.com/BYVoid/OpenCC
	https://github.com/BYVoid/OpenCC/tree/master/data/dictionary

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package zhconv

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'zhconv'
func tracer() tracing.Trace {
	return tracing.Select("zhconv")
}

func assertf(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
