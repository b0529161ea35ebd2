package extract

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"cardx/card"
)

// UnnamedCharacter is displayed for cards without name.
const UnnamedCharacter = "Unnamed Character"

// Section maps card field to the title it is presented under.
type Section struct {
	Field string
	Title string
}

// Sections are simple text fields of a character card in presentation order.
var Sections = []Section{
	{"description", "CHARACTER DEFINITION"},
	{"personality", "PERSONALITY"},
	{"prompt", "CHARACTER NOTE"},
	{"scenario", "SCENARIO"},
	{"first_mes", "FIRST MESSAGE"},
	{"mes_example", ExamplesTitle},
}

const (
	ExamplesTitle  = "EXAMPLE MESSAGES"
	GreetingsTitle = "ALTERNATE GREETINGS"
	BookTitle      = "CHARACTER BOOK"
)

// SectionTitles returns all titles character extraction may produce.
func SectionTitles() []string {
	titles := make([]string, 0, len(Sections)+2)
	for _, s := range Sections {
		titles = append(titles, s.Title)
	}
	return append(titles, GreetingsTitle, BookTitle)
}

// Card is a character document together with its origin.
type Card struct {
	Source string
	Name   string
	Doc    card.Document
}

// NewCard names card after its content, or after the source file when card
// has no name.
func NewCard(source string, doc card.Document) Card {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return Card{Source: source, Name: card.DisplayName(doc, stem), Doc: doc}
}

// SortCards orders cards by name ignoring case, ties keep their order.
func SortCards(cards []Card) []Card {
	sorted := slices.Clone(cards)
	fold := cases.Fold()
	slices.SortStableFunc(sorted, func(a, b Card) int {
		return strings.Compare(fold.String(a.Name), fold.String(b.Name))
	})
	return sorted
}

func titled(title string) []Run {
	return []Run{
		{Tag: SectionTitle, Text: "\n" + title + "\n"},
		{Tag: Separator, Text: sectionRule + "\n"},
	}
}

// Character extracts selected fields of a single character card.
func Character(doc card.Document, sel Selection, log *zap.Logger) []Run {
	name := card.DisplayName(doc, UnnamedCharacter)
	log.Debug("Extracting character", zap.String("name", name))

	runs := []Run{{Tag: Header, Text: nameRule + "\n" + name + "\n" + nameRule + "\n"}}

	for _, s := range Sections {
		if !sel[s.Field] {
			continue
		}
		v, ok := card.Resolve(doc, s.Field)
		if !ok || !v.Truthy() {
			log.Debug("No content found", zap.String("field", s.Field))
			continue
		}
		log.Debug("Field found", zap.String("field", s.Field), zap.Int("length", len(v.Text())))
		runs = append(runs, titled(s.Title)...)
		runs = append(runs, Run{Tag: Content, Text: v.Text() + "\n"})
	}
	if sel["alternate_greetings"] {
		runs = append(runs, greetings(doc, log)...)
	}
	if sel["character_book"] {
		runs = append(runs, book(doc, log)...)
	}
	return runs
}

func greetings(doc card.Document, log *zap.Logger) []Run {
	v, ok := card.Resolve(doc, "alternate_greetings")
	if !ok || !v.IsArray() || !v.Truthy() {
		log.Debug("No alternate greetings found")
		return nil
	}
	runs := titled(GreetingsTitle)
	for i, g := range v.Items() {
		runs = append(runs,
			Run{Tag: BookEntry, Text: Bullet + " Greeting " + strconv.Itoa(i+1) + "\n"},
			Run{Tag: Content, Text: strings.TrimSpace(g.Text()) + "\n"},
		)
	}
	return runs
}

// entryTitle returns "name" of an entry falling back to "comment".
func entryTitle(entry card.Document) string {
	if v, ok := entry.Field("name"); ok {
		return v.Text()
	}
	if v, ok := entry.Field("comment"); ok {
		return v.Text()
	}
	return ""
}

func book(doc card.Document, log *zap.Logger) []Run {
	v, ok := card.Resolve(doc, "character_book")
	if !ok || !v.IsObject() {
		log.Debug("No character book found")
		return nil
	}
	entries, ok := v.Field("entries")
	if !ok {
		log.Debug("Character book has no entries")
		return nil
	}
	runs := titled(BookTitle)
	for _, e := range entries.Items() {
		title := entryTitle(e)
		content, _ := e.Field("content")
		if title == "" || !content.Truthy() {
			continue
		}
		runs = append(runs,
			Run{Tag: BookEntry, Text: Bullet + " " + title + "\n"},
			Run{Tag: Content, Text: content.Text() + "\n\n"},
		)
	}
	return runs
}

// Multiple extracts several cards ordered by name and separated by a wide
// rule.
func Multiple(cards []Card, sel Selection, log *zap.Logger) []Run {
	var runs []Run
	for i, c := range SortCards(cards) {
		if i > 0 {
			runs = append(runs, Run{Tag: Separator, Text: "\n\n" + strings.Repeat(NameRuleChar, CardSeparatorWidth) + "\n\n"})
		}
		runs = append(runs, Character(c.Doc, sel, log.With(zap.String("source", c.Source)))...)
	}
	return runs
}

// Lorebook extracts selected fields of every lorebook entry in source order.
func Lorebook(doc card.Document, sel Selection, log *zap.Logger) []Run {
	entries, ok := doc.Field("entries")
	if !ok {
		log.Debug("Lorebook has no entries")
		return nil
	}

	var runs []Run
	for i, e := range entries.Items() {
		if i > 0 {
			runs = append(runs, Run{Tag: Separator, Text: "\n\n"})
		}
		if sel["label"] {
			if label := entryTitle(e); label != "" {
				runs = append(runs,
					Run{Tag: SectionTitle, Text: label + "\n"},
					Run{Tag: Separator, Text: sectionRule + "\n"},
				)
			}
		}
		if sel["content"] {
			if v, ok := e.Field("content"); ok && v.Truthy() {
				runs = append(runs, Run{Tag: Content, Text: v.Text() + "\n"})
			}
		}
		if sel["key"] {
			if v, ok := e.Field("key"); ok && v.Truthy() {
				runs = append(runs, Run{Tag: BookEntry, Text: "Keys: " + keyText(v) + "\n"})
			}
		}
	}
	log.Debug("Lorebook extracted", zap.Int("entries", len(entries.Items())))
	return runs
}

func keyText(v card.Document) string {
	if !v.IsArray() {
		return v.Text()
	}
	items := v.Items()
	keys := make([]string, 0, len(items))
	for _, k := range items {
		keys = append(keys, k.Text())
	}
	return strings.Join(keys, ", ")
}
