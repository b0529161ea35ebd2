// Package extract turns card and lorebook documents into sequences of tagged
// text runs, which are used for preview and as a source for all exports.
package extract

import (
	"strings"
)

// Tag describes role of a run in the extraction.
type Tag int

const (
	Header Tag = iota
	SectionTitle
	Content
	Separator
	BookEntry
)

func (t Tag) String() string {
	switch t {
	case Header:
		return "header"
	case SectionTitle:
		return "section_title"
	case Content:
		return "content"
	case Separator:
		return "separator"
	case BookEntry:
		return "book_entry"
	default:
		return "unknown"
	}
}

// Run is a piece of extraction with its literal text, line breaks included.
type Run struct {
	Tag  Tag
	Text string
}

const (
	// RuleWidth is width of rule lines framing names and underlining titles.
	RuleWidth = 50
	// CardSeparatorWidth is width of the rule separating cards.
	CardSeparatorWidth = 60

	NameRuleChar    = "="
	SectionRuleChar = "─"
	Bullet          = "►"
)

var (
	nameRule    = strings.Repeat(NameRuleChar, RuleWidth)
	sectionRule = strings.Repeat(SectionRuleChar, RuleWidth)
)

// Flatten produces formatted text out of runs.
func Flatten(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsRule reports whether line is made of a single repeated character c.
func IsRule(line, c string) bool {
	return line != "" && strings.Trim(line, c) == ""
}

// Plain produces plain text out of formatted text: rules, blank lines and
// bullets are dropped and remaining lines are separated by empty lines.
func Plain(text string) string {
	var lines []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" || IsRule(line, NameRuleChar) || IsRule(line, SectionRuleChar) {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, Bullet))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n\n")
}
