package extract

import (
	"fmt"
	"slices"
	"strings"
)

// Fields which could be selected for extraction.
var (
	CharacterFields = []string{
		"description", "personality", "prompt", "scenario",
		"first_mes", "mes_example", "alternate_greetings", "character_book",
	}
	LorebookFields = []string{"label", "content", "key"}

	// FieldLabels are human readable field names.
	FieldLabels = map[string]string{
		"description":         "Character Definition",
		"personality":         "Personality",
		"prompt":              "Character Note",
		"scenario":            "Scenario",
		"first_mes":           "First Message",
		"mes_example":         "Example Messages",
		"alternate_greetings": "Alternate Greetings",
		"character_book":      "Character Book Entries",
		"label":               "Labels",
		"content":             "Content",
		"key":                 "Keys",
	}
)

// Selection tells which fields user wants to extract.
type Selection map[string]bool

// NewSelection selects fields, which must belong to allowed set.
func NewSelection(allowed []string, fields ...string) (Selection, error) {
	s := make(Selection, len(allowed))
	for _, f := range allowed {
		s[f] = false
	}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !slices.Contains(allowed, f) {
			return nil, fmt.Errorf("unknown field %q, expected one of %s", f, strings.Join(allowed, ", "))
		}
		s[f] = true
	}
	return s, nil
}

// Selected returns selected field names in their canonical order.
func (s Selection) Selected(allowed []string) []string {
	var out []string
	for _, f := range allowed {
		if s[f] {
			out = append(out, f)
		}
	}
	return out
}

// Labels returns human readable names of selected fields.
func (s Selection) Labels(allowed []string) []string {
	selected := s.Selected(allowed)
	for i, f := range selected {
		if l, ok := FieldLabels[f]; ok {
			selected[i] = l
		}
	}
	return selected
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	for _, v := range s {
		if v {
			return false
		}
	}
	return true
}
