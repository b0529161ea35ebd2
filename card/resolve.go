package card

// CharacterNote is the logical field cards keep under
// extensions.depth_prompt.prompt by convention.
const CharacterNote = "character_note"

// FieldPaths lists known locations of logical fields in priority order. Paths
// are tried before heuristic search, which makes lookup of these fields
// independent of key order in the document.
var FieldPaths = map[string][][]string{
	CharacterNote: {
		{"character_note"},
		{"extensions", "depth_prompt", "prompt"},
		{"data", "character_note"},
		{"data", "extensions", "depth_prompt", "prompt"},
	},
	"prompt": {
		{"prompt"},
		{"extensions", "depth_prompt", "prompt"},
		{"data", "prompt"},
		{"data", "extensions", "depth_prompt", "prompt"},
	},
	"name": {
		{"name"},
		{"data", "name"},
		{"char_name"},
		{"data", "char_name"},
	},
}

// Lookup returns the first non-null value found at one of paths.
func Lookup(doc Document, paths [][]string) (Document, bool) {
	for _, p := range paths {
		if v, ok := doc.Path(p...); ok && !v.IsNull() {
			return v, true
		}
	}
	return Document{}, false
}

// Resolve finds value of a logical field somewhere in the document. Absence is
// a normal result and null values count as absent: a null key does not stop
// the search, which goes on into nested objects.
//
// Fields listed in FieldPaths are looked up there first. Otherwise (or when no
// path matches) a depth-first search runs: literal key at current level, then
// every nested object in source order, first match wins. When nothing is
// found the search is repeated rooted at "data". This is a heuristic, when
// the key occurs at several places the one visited first is returned and
// callers should not assume it is the only one.
func Resolve(doc Document, field string) (Document, bool) {
	if paths, ok := FieldPaths[field]; ok {
		if v, ok := Lookup(doc, paths); ok {
			return v, true
		}
	}
	if v, ok := search(doc, field); ok {
		return v, true
	}
	if data, ok := doc.Field("data"); ok && data.IsObject() {
		return search(data, field)
	}
	return Document{}, false
}

func search(d Document, field string) (Document, bool) {
	if !d.IsObject() {
		return Document{}, false
	}
	if v, ok := d.Field(field); ok && !v.IsNull() {
		return v, true
	}

	var (
		found Document
		ok    bool
	)
	d.Each(func(key string, value Document) bool {
		if !value.IsObject() {
			return true
		}
		if found, ok = search(value, field); ok {
			return false
		}
		if key == "extensions" && field == CharacterNote {
			found, ok = depthPrompt(value)
		}
		return !ok
	})
	return found, ok
}

func depthPrompt(ext Document) (Document, bool) {
	dp, ok := ext.Field("depth_prompt")
	if !ok || !dp.IsObject() {
		return Document{}, false
	}
	if p, ok := dp.Field("prompt"); ok && !p.IsNull() {
		return p, true
	}
	return Document{}, false
}

// Unwrap returns card body: "data" object of version 3 cards or the document
// itself.
func Unwrap(doc Document) Document {
	if data, ok := doc.Field("data"); ok && data.IsObject() {
		return data
	}
	return doc
}

// DisplayName returns card name or fallback when card has none.
func DisplayName(doc Document, fallback string) string {
	if v, ok := Resolve(doc, "name"); ok && v.IsString() && v.Text() != "" {
		return v.Text()
	}
	return fallback
}
