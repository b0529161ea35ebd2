package layout

import (
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"cardx/extract"
)

// detectLines is how many non-empty lines are examined to detect mode.
const detectLines = 10

func isNameRule(line string) bool {
	return extract.IsRule(strings.TrimSpace(line), extract.NameRuleChar)
}

func isSectionRule(line string) bool {
	return extract.IsRule(strings.TrimSpace(line), extract.SectionRuleChar)
}

func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// nameAt checks for a display name framed by rules starting at line i.
func nameAt(lines []string, i int) (string, bool) {
	if i+2 >= len(lines) || !isNameRule(lines[i]) {
		return "", false
	}
	name := strings.TrimSpace(lines[i+1])
	if name == "" || isNameRule(name) || !isNameRule(lines[i+2]) {
		return "", false
	}
	return Clean(name), true
}

// DetectMode guesses how formatted text was produced. First lines are searched
// for entry keys or bullets, which are typical for lorebooks.
//
// Text starting with a framed name is always a character extraction, before
// the search. This is intentional: alternate greetings or a description
// mentioning "Keys:" may follow the name closely and must not switch a
// character extraction into lorebook mode.
func DetectMode(lines []string) Mode {
	first := slices.IndexFunc(lines, func(l string) bool { return !blank(l) })
	if first < 0 {
		return CharacterMode
	}
	if _, ok := nameAt(lines, first); ok {
		return CharacterMode
	}
	seen := 0
	for _, l := range lines[first:] {
		if blank(l) {
			continue
		}
		t := strings.TrimSpace(l)
		if strings.Contains(t, "Keys:") || (strings.HasPrefix(t, extract.Bullet) && !strings.Contains(t, "CHARACTER")) {
			return LorebookMode
		}
		if seen++; seen == detectLines {
			break
		}
	}
	return CharacterMode
}

func isEntryLine(clean string) bool {
	for _, p := range []string{"Keys:", "->", extract.Bullet + " ", "Greeting"} {
		if strings.HasPrefix(clean, p) {
			return true
		}
	}
	return false
}

// Reparse rebuilds story from formatted text, recovering structure from line
// patterns alone. Title is put at the top of the story.
//
// Rules framing a line are taken for a character name, so body text with
// the same pattern is misinterpreted. In lorebook mode any line followed by a
// blank line is taken for an entry title.
func Reparse(text, title string, log *zap.Logger) []Block {
	lines := strings.Split(text, "\n")
	s := newStory(title)

	mode := DetectMode(lines)
	log.Debug("Text mode detected", zap.Stringer("mode", mode), zap.Int("lines", len(lines)))
	if mode == LorebookMode {
		reparseLorebook(s, lines, log)
	} else {
		reparseCharacters(s, lines, log)
	}
	return s.done()
}

func reparseLorebook(s *story, lines []string, log *zap.Logger) {
	for i := 0; i < len(lines); i++ {
		clean := Clean(strings.TrimRightFunc(lines[i], unicode.IsSpace))
		if clean == "" {
			continue
		}
		if strings.HasPrefix(clean, "Keys:") {
			s.entry(clean)
			continue
		}
		if i+1 < len(lines) && (blank(lines[i+1]) || isSectionRule(lines[i+1])) {
			log.Debug("Entry title", zap.Int("line", i+1), zap.String("title", clean))
			s.entryTitle(clean)
			// rule or blank line after title
			i++
			continue
		}
		s.line(clean)
	}
}

func reparseCharacters(s *story, lines []string, log *zap.Logger) {
	titles := extract.SectionTitles()
	for i := 0; i < len(lines); i++ {
		if isNameRule(lines[i]) {
			log.Debug("Potential separator", zap.Int("line", i+1))
			s.flush()
			if name, ok := nameAt(lines, i); ok {
				log.Debug("Complete name pattern", zap.Int("line", i+2), zap.String("name", name))
				s.name(name)
				i += 2
				continue
			}
			if i+1 < len(lines) && (blank(lines[i+1]) || isNameRule(lines[i+1])) {
				i++
			}
			continue
		}

		clean := Clean(strings.TrimRightFunc(lines[i], unicode.IsSpace))
		switch {
		case clean == "":
		case slices.Contains(titles, clean):
			log.Debug("Section title", zap.Int("line", i+1), zap.String("title", clean))
			s.section(clean)
		case isEntryLine(clean):
			s.entry(clean)
		default:
			s.line(clean)
		}
	}
}
