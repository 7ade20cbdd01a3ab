/*
Package dictjson reads and writes the JSON dictionary document.

The document is an object with one field per dictionary slot (see
zhconv.Slot), each either

	[ { "phrase": "replacement", ... }, maxlength ]

or

	{ "map": { "phrase": "replacement", ... }, "maxlength": maxlength }

Unknown fields are ignored. The optional field "starter_index" holds a
persisted starter index (zhconv.IndexBlob). Readers unaware of it lose
nothing; it is regenerable and never authoritative over the dictionaries.
*/
package dictjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/zhconv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StarterIndexField is the document field holding the persisted starter index.
const StarterIndexField = "starter_index"

// ErrMalformedDocument is returned for input that is not a JSON object.
var ErrMalformedDocument = errors.New("malformed dictionary document")

// tracer writes to trace with key 'zhconv.dictjson'
func tracer() tracing.Trace {
	return tracing.Select("zhconv.dictjson")
}

// Decode builds a dictionary set from a document. Slots missing from the
// document stay empty. A malformed "starter_index" is dropped with a warning;
// the index will then be built in memory when needed.
func Decode(doc []byte) (*zhconv.DictionarySet, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedDocument)
	}
	set := zhconv.NewDictionarySet()
	for _, slot := range zhconv.Slots() {
		field := root.Get(slot.String())
		if !field.Exists() {
			continue
		}
		entries, declared, ok := decodeSlot(field)
		if !ok {
			tracer().Infof("field %s has an unknown shape, ignored", slot)
			continue
		}
		dict := zhconv.NewDictionary(slot.String(), entries)
		if declared < dict.MaxKeyLength() {
			tracer().Infof("field %s declares max length %d, keys have up to %d",
				slot, declared, dict.MaxKeyLength())
		}
		set.Set(slot, dict)
	}
	if blob, ok := readStarterIndex(root); ok {
		set.SetIndexBlob(blob)
	}
	return set, nil
}

// decodeSlot accepts [map, maxlength] and {"map": ..., "maxlength": ...}.
func decodeSlot(field gjson.Result) (map[string]string, int, bool) {
	var m, maxlen gjson.Result
	switch {
	case field.IsArray():
		arr := field.Array()
		if len(arr) != 2 {
			return nil, 0, false
		}
		m, maxlen = arr[0], arr[1]
	case field.IsObject():
		m, maxlen = field.Get("map"), field.Get("maxlength")
	default:
		return nil, 0, false
	}
	if !m.IsObject() || maxlen.Type != gjson.Number {
		return nil, 0, false
	}
	entries := make(map[string]string)
	m.ForEach(func(k, v gjson.Result) bool {
		entries[k.String()] = v.String()
		return true
	})
	return entries, int(maxlen.Int()), true
}

// ReadStarterIndex extracts the persisted starter index from a document
// without decoding the dictionaries.
func ReadStarterIndex(doc []byte) (*zhconv.IndexBlob, bool) {
	if !gjson.ValidBytes(doc) {
		return nil, false
	}
	return readStarterIndex(gjson.ParseBytes(doc))
}

func readStarterIndex(root gjson.Result) (*zhconv.IndexBlob, bool) {
	field := root.Get(StarterIndexField)
	if !field.Exists() {
		return nil, false
	}
	if !field.IsObject() {
		tracer().Errorf("ignoring %s: not an object", StarterIndexField)
		return nil, false
	}
	blob := &zhconv.IndexBlob{}
	if err := json.Unmarshal([]byte(field.Raw), blob); err != nil {
		tracer().Errorf("ignoring %s: %v", StarterIndexField, err)
		return nil, false
	}
	return blob, true
}

// Encode writes set as a document, every slot as [map, maxlength]. The
// attached starter index, if any, is written to "starter_index".
func Encode(set *zhconv.DictionarySet) ([]byte, error) {
	doc := []byte("{}")
	for _, slot := range zhconv.Slots() {
		raw, err := encodeSlot(set.Get(slot))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot, err)
		}
		if doc, err = sjson.SetRawBytes(doc, slot.String(), raw); err != nil {
			return nil, err
		}
	}
	if blob := set.IndexBlob(); blob != nil {
		return EmbedStarterIndex(doc, blob)
	}
	return doc, nil
}

func encodeSlot(dict *zhconv.Dictionary) ([]byte, error) {
	entries := make(map[string]string, dict.Len())
	dict.Each(func(k, v string) bool {
		entries[k] = v
		return true
	})
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]interface{}{entries, dict.MaxKeyLength()}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EmbedStarterIndex sets the "starter_index" field of doc, leaving all other
// fields untouched. A nil blob removes the field.
func EmbedStarterIndex(doc []byte, blob *zhconv.IndexBlob) ([]byte, error) {
	if blob == nil {
		return sjson.DeleteBytes(doc, StarterIndexField)
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(doc, StarterIndexField, raw)
}

// Persist loads and stores documents by name.
type Persist interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Store(ctx context.Context, name string, doc []byte) error
}

// Fetch loads and decodes the named document.
func Fetch(ctx context.Context, p Persist, name string) (*zhconv.DictionarySet, error) {
	doc, err := p.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return Decode(doc)
}

// Save encodes set and stores it under name.
func Save(ctx context.Context, p Persist, name string, set *zhconv.DictionarySet) error {
	doc, err := Encode(set)
	if err != nil {
		return err
	}
	return p.Store(ctx, name, doc)
}
