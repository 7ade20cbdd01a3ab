/*
Package opencctxt reads dictionaries in the plain-text format of the OpenCC
data set.

Every line holds a source phrase, a tab, and one or more space-separated
replacements:

	干	幹 乾 干
	干涉	干涉
	乾隆	乾隆

Only the first replacement is used. Blank lines and lines starting with '#'
are skipped, as are malformed lines without a replacement.
*/
package opencctxt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/zhconv"
)

// tracer writes to trace with key 'zhconv.opencctxt'
func tracer() tracing.Trace {
	return tracing.Select("zhconv.opencctxt")
}

// Reader streams dictionary entries from OpenCC text files.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over reader.
func NewReader(reader io.Reader) *Reader {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next entry as (key, value).
// It returns io.EOF when exhausted.
func (r *Reader) Next() (string, string, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if r.line == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := decodeLine(line)
		if !ok {
			tracer().Infof("ignoring malformed dictionary line %d: %q", r.line, line)
			continue
		}
		return key, value, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", "", err
	}
	return "", "", io.EOF
}

func decodeLine(line string) (string, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// LoadDictionary parses OpenCC text data and returns the dictionary.
func LoadDictionary(name string, reader io.Reader) (*zhconv.Dictionary, error) {
	return zhconv.LoadEntries(name, NewReader(reader))
}

// LoadSet loads every slot of a dictionary set from the OpenCC text files in
// fsys, e.g. os.DirFS("dicts"). Missing files leave their slot empty.
func LoadSet(fsys fs.FS) (*zhconv.DictionarySet, error) {
	set := zhconv.NewDictionarySet()
	loaded := 0
	for _, slot := range zhconv.Slots() {
		f, err := fsys.Open(slot.FileName())
		if errors.Is(err, fs.ErrNotExist) {
			tracer().Debugf("no dictionary file for %s", slot)
			continue
		} else if err != nil {
			return nil, err
		}
		dict, err := LoadDictionary(slot.String(), f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot.FileName(), err)
		}
		set.Set(slot, dict)
		loaded++
	}
	tracer().Infof("loaded %d dictionaries", loaded)
	return set, nil
}
