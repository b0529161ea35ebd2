// Package layout builds paginated document story - ordered list of styled
// blocks - either from extraction runs directly or by re-parsing previously
// saved formatted text.
package layout

import (
	"fmt"
	"strings"

	"cardx/card"
	"cardx/extract"
	"cardx/utils/debug"
)

// Kind of a story block.
type Kind int

const (
	Paragraph Kind = iota
	Title
	Rule
	PageBreak
	Spacer
)

func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case Title:
		return "title"
	case Rule:
		return "rule"
	case PageBreak:
		return "page-break"
	case Spacer:
		return "spacer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Style of text carrying block.
type Style int

const (
	NoStyle Style = iota
	DocumentTitle
	CharacterName
	CharacterSeparator
	SectionTitle
	LorebookTitle
	Content
	BookEntry
)

func (s Style) String() string {
	switch s {
	case NoStyle:
		return "none"
	case DocumentTitle:
		return "document-title"
	case CharacterName:
		return "character-name"
	case CharacterSeparator:
		return "character-separator"
	case SectionTitle:
		return "section-title"
	case LorebookTitle:
		return "lorebook-title"
	case Content:
		return "content"
	case BookEntry:
		return "book-entry"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Block is a single styled unit of the story. Height is only meaningful for
// spacers and is in points.
type Block struct {
	Kind   Kind
	Style  Style
	Text   string
	Height float64
}

// Mode selects how story is structured.
type Mode int

const (
	CharacterMode Mode = iota
	LorebookMode
)

func (m Mode) String() string {
	if m == LorebookMode {
		return "lorebook"
	}
	return "character"
}

// ModeFor returns story mode for the kind of extracted documents.
func ModeFor(k card.Kind) Mode {
	if k == card.Lorebook {
		return LorebookMode
	}
	return CharacterMode
}

const (
	entrySpace = 20
	nameSpace  = 12
)

// Clean prepares text for output with standard PDF fonts, which only cover
// printable 7-bit range.
func Clean(text string) string {
	text = strings.NewReplacer("■", "", "□", "", extract.Bullet, "->", "\t", " ").Replace(text)
	text = strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

// story accumulates blocks. Consecutive content lines are buffered and become
// a single paragraph when something else interrupts them.
type story struct {
	blocks []Block
	buf    []string
	names  int
}

func newStory(title string) *story {
	s := &story{}
	s.add(Block{Kind: Title, Style: DocumentTitle, Text: Clean(title)}, Block{Kind: Rule})
	return s
}

func (s *story) add(b ...Block) {
	s.blocks = append(s.blocks, b...)
}

func (s *story) line(text string) {
	s.buf = append(s.buf, text)
}

func (s *story) flush() {
	if len(s.buf) == 0 {
		return
	}
	content := strings.Join(s.buf, "\n")
	s.buf = nil
	if strings.TrimSpace(content) != "" {
		s.add(Block{Kind: Paragraph, Style: Content, Text: content})
	}
}

// name starts new character, every character but the first one starts on
// a new page.
func (s *story) name(name string) {
	s.flush()
	if s.names > 0 {
		s.add(Block{Kind: PageBreak})
	} else {
		s.add(Block{Kind: Spacer, Height: entrySpace})
	}
	rule := strings.Repeat(extract.NameRuleChar, extract.RuleWidth)
	s.add(
		Block{Kind: Paragraph, Style: CharacterSeparator, Text: rule},
		Block{Kind: Title, Style: CharacterName, Text: name},
		Block{Kind: Paragraph, Style: CharacterSeparator, Text: rule},
		Block{Kind: Spacer, Height: nameSpace},
	)
	s.names++
}

func (s *story) section(title string) {
	s.flush()
	s.add(Block{Kind: Title, Style: SectionTitle, Text: title})
	// example dialogue usually starts with its own markup
	if title != extract.ExamplesTitle {
		s.add(Block{Kind: Rule})
	}
}

func (s *story) entryTitle(title string) {
	s.flush()
	s.add(
		Block{Kind: Spacer, Height: entrySpace},
		Block{Kind: Title, Style: LorebookTitle, Text: title},
		Block{Kind: Rule},
	)
}

func (s *story) entry(text string) {
	s.flush()
	s.add(Block{Kind: Paragraph, Style: BookEntry, Text: text})
}

func (s *story) done() []Block {
	s.flush()
	return s.blocks
}

// PageBreaks counts page breaks in the story.
func PageBreaks(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		if b.Kind == PageBreak {
			n++
		}
	}
	return n
}

// Dump returns readable listing of the story for debug report.
func Dump(blocks []Block) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Story (%d)", len(blocks))
	for i, b := range blocks {
		switch b.Kind {
		case Spacer:
			tw.Line(1, "%03d %s %.0fpt", i, b.Kind, b.Height)
		case Rule, PageBreak:
			tw.Line(1, "%03d %s", i, b.Kind)
		default:
			tw.TextBlock(1, fmt.Sprintf("%03d %s/%s", i, b.Kind, b.Style), b.Text)
		}
	}
	return tw.String()
}
