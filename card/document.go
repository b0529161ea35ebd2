// Package card understands loosely structured JSON documents describing
// conversational personas (character cards, versions 2 and 3) and keyed
// knowledge snippets (lorebooks).
//
// No schema is enforced. Classification and field lookup are best-effort
// heuristics over whatever structure the document has.
package card

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when input is not valid JSON.
var ErrMalformed = errors.New("invalid JSON format")

// Document is a parsed JSON value. Object keys are visited in the order they
// appear in the source, which classification and field search depend on.
type Document struct {
	v gjson.Result
}

// Parse parses raw JSON. Only syntax is checked.
func Parse(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, ErrMalformed
	}
	return Document{v: gjson.ParseBytes(data)}, nil
}

// MustParse is Parse for known good input, it panics on malformed JSON.
func MustParse(s string) Document {
	d, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

func (d Document) Exists() bool {
	return d.v.Exists()
}

func (d Document) IsObject() bool {
	return d.v.IsObject()
}

func (d Document) IsArray() bool {
	return d.v.IsArray()
}

func (d Document) IsString() bool {
	return d.v.Type == gjson.String
}

func (d Document) IsNull() bool {
	return !d.v.Exists() || d.v.Type == gjson.Null
}

// Field returns value stored under key when document is an object. When key
// is duplicated the first occurrence wins.
func (d Document) Field(key string) (Document, bool) {
	if !d.v.IsObject() {
		return Document{}, false
	}
	var (
		found Document
		ok    bool
	)
	d.v.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found, ok = Document{v: v}, true
			return false
		}
		return true
	})
	return found, ok
}

// Has reports whether object has key, regardless of its value.
func (d Document) Has(key string) bool {
	_, ok := d.Field(key)
	return ok
}

// HasAny reports whether object has at least one of the keys.
func (d Document) HasAny(keys ...string) bool {
	if !d.v.IsObject() {
		return false
	}
	found := false
	d.v.ForEach(func(k, _ gjson.Result) bool {
		for _, key := range keys {
			if k.Str == key {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// Path follows nested object keys.
func (d Document) Path(keys ...string) (Document, bool) {
	cur := d
	for _, key := range keys {
		next, ok := cur.Field(key)
		if !ok {
			return Document{}, false
		}
		cur = next
	}
	return cur, true
}

// Each calls fn for every key/value pair of an object in source order until fn
// returns false.
func (d Document) Each(fn func(key string, value Document) bool) {
	if !d.v.IsObject() {
		return
	}
	d.v.ForEach(func(k, v gjson.Result) bool {
		return fn(k.Str, Document{v: v})
	})
}

// Items returns array elements, or object values in source order.
func (d Document) Items() []Document {
	var out []Document
	switch {
	case d.v.IsArray():
		for _, v := range d.v.Array() {
			out = append(out, Document{v: v})
		}
	case d.v.IsObject():
		d.v.ForEach(func(_, v gjson.Result) bool {
			out = append(out, Document{v: v})
			return true
		})
	}
	return out
}

// First returns the first value of an object or the first element of an array.
func (d Document) First() (Document, bool) {
	items := d.Items()
	if len(items) == 0 {
		return Document{}, false
	}
	return items[0], true
}

// Text returns string value as is and compact JSON for anything else.
func (d Document) Text() string {
	switch d.v.Type {
	case gjson.String:
		return d.v.Str
	case gjson.Null:
		return ""
	default:
		return strings.TrimSpace(gjson.Get(d.v.Raw, "@ugly").Raw)
	}
}

// Truthy reports whether value carries anything: non-empty string, array or
// object, non-zero number or true.
func (d Document) Truthy() bool {
	switch d.v.Type {
	case gjson.String:
		return d.v.Str != ""
	case gjson.Number:
		return d.v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return len(d.Items()) > 0
	default:
		return false
	}
}

// Raw returns source text of the value.
func (d Document) Raw() string {
	return d.v.Raw
}
