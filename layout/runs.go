package layout

import (
	"strings"

	"cardx/extract"
)

// FromRuns builds story directly from extraction. Result is the same story
// Reparse would produce from flattened runs, without depending on text
// patterns.
func FromRuns(mode Mode, runs []extract.Run, title string) []Block {
	s := newStory(title)
	for _, r := range runs {
		switch r.Tag {
		case extract.Header:
			s.name(headerName(r.Text))
		case extract.SectionTitle:
			t := Clean(r.Text)
			switch {
			case t == "":
			case mode == LorebookMode:
				s.entryTitle(t)
			default:
				s.section(t)
			}
		case extract.Separator:
			if isNameRule(r.Text) {
				s.flush()
			}
		case extract.Content:
			for line := range strings.Lines(r.Text) {
				if c := Clean(line); c != "" {
					s.line(c)
				}
			}
		case extract.BookEntry:
			if c := Clean(r.Text); c != "" {
				s.entry(c)
			}
		}
	}
	return s.done()
}

// headerName takes display name out of its frame.
func headerName(text string) string {
	for line := range strings.Lines(text) {
		if !blank(line) && !isNameRule(line) {
			return Clean(line)
		}
	}
	return ""
}
