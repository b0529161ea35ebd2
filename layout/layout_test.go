package layout

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"cardx/card"
	"cardx/extract"
)

var nameRule = strings.Repeat("=", 50)

func selectAll(t *testing.T, allowed []string) extract.Selection {
	t.Helper()
	sel, err := extract.NewSelection(allowed, allowed...)
	if err != nil {
		t.Fatalf("NewSelection() error = %v", err)
	}
	return sel
}

func titles(blocks []Block, style Style) []string {
	var out []string
	for _, b := range blocks {
		if b.Style == style && b.Kind == Title {
			out = append(out, b.Text)
		}
	}
	return out
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"► Greeting 1", "-> Greeting 1"},
		{"■ box □", "box"},
		{"Émile says “hi”", "mile says hi"},
		{"tab\there", "tab here"},
		{"─────", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReparseCharacter(t *testing.T) {
	doc := card.MustParse(`{"name": "Ava", "description": "A pilot.", "personality": "Brave."}`)
	sel, _ := extract.NewSelection(extract.CharacterFields, "description", "personality")
	text := extract.Flatten(extract.Character(doc, sel, zaptest.NewLogger(t)))

	got := Reparse(text, "ava", zaptest.NewLogger(t))
	want := []Block{
		{Kind: Title, Style: DocumentTitle, Text: "ava"},
		{Kind: Rule},
		{Kind: Spacer, Height: 20},
		{Kind: Paragraph, Style: CharacterSeparator, Text: nameRule},
		{Kind: Title, Style: CharacterName, Text: "Ava"},
		{Kind: Paragraph, Style: CharacterSeparator, Text: nameRule},
		{Kind: Spacer, Height: 12},
		{Kind: Title, Style: SectionTitle, Text: "CHARACTER DEFINITION"},
		{Kind: Rule},
		{Kind: Paragraph, Style: Content, Text: "A pilot."},
		{Kind: Title, Style: SectionTitle, Text: "PERSONALITY"},
		{Kind: Rule},
		{Kind: Paragraph, Style: Content, Text: "Brave."},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Reparse() =\n%s\nwant\n%s", Dump(got), Dump(want))
	}
}

func TestReparseLorebook(t *testing.T) {
	doc := card.MustParse(`{"entries": {"0": {"comment": "Rule1", "content": "Always be kind.", "key": ["kind","nice"]}}}`)
	text := extract.Flatten(extract.Lorebook(doc, selectAll(t, extract.LorebookFields), zaptest.NewLogger(t)))

	got := Reparse(text, "book", zaptest.NewLogger(t))
	want := []Block{
		{Kind: Title, Style: DocumentTitle, Text: "book"},
		{Kind: Rule},
		{Kind: Spacer, Height: 20},
		{Kind: Title, Style: LorebookTitle, Text: "Rule1"},
		{Kind: Rule},
		{Kind: Paragraph, Style: Content, Text: "Always be kind."},
		{Kind: Paragraph, Style: BookEntry, Text: "Keys: kind, nice"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Reparse() =\n%s\nwant\n%s", Dump(got), Dump(want))
	}
}

func TestReparseExampleMessagesHasNoRule(t *testing.T) {
	text := nameRule + "\nAva\n" + nameRule + "\n\nEXAMPLE MESSAGES\n" + strings.Repeat("─", 50) + "\n<START>\nHi.\n"
	got := Reparse(text, "t", zaptest.NewLogger(t))
	i := slices.IndexFunc(got, func(b Block) bool { return b.Text == "EXAMPLE MESSAGES" })
	if i < 0 || i+1 >= len(got) {
		t.Fatalf("section missing:\n%s", Dump(got))
	}
	if next := got[i+1]; next.Kind != Paragraph || next.Text != "<START>\nHi." {
		t.Errorf("block after section = %+v", next)
	}
}

func TestReparseBookEntries(t *testing.T) {
	text := nameRule + "\nAva\n" + nameRule + "\n" +
		"\nALTERNATE GREETINGS\n" + strings.Repeat("─", 50) + "\n" +
		"► Greeting 1\nHello!\n" +
		"Greeting for everyone\n" +
		"Keys: a\n"
	got := Reparse(text, "t", zaptest.NewLogger(t))

	var entries []string
	for _, b := range got {
		if b.Style == BookEntry {
			entries = append(entries, b.Text)
		}
	}
	want := []string{"-> Greeting 1", "Greeting for everyone", "Keys: a"}
	if !slices.Equal(entries, want) {
		t.Errorf("entries = %q, want %q", entries, want)
	}
}

func TestReparseStrayRule(t *testing.T) {
	text := "intro\n" + nameRule + "\nbody one\nbody two\n"
	got := Reparse(text, "t", zaptest.NewLogger(t))
	var contents []string
	for _, b := range got {
		if b.Style == Content {
			contents = append(contents, b.Text)
		}
	}
	if want := []string{"intro", "body one\nbody two"}; !slices.Equal(contents, want) {
		t.Errorf("contents = %q, want %q", contents, want)
	}
	if n := len(titles(got, CharacterName)); n != 0 {
		t.Errorf("found %d names, want 0", n)
	}
}

func TestReparseLogsDecisions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	text := nameRule + "\nAva\n" + nameRule + "\n\nPERSONALITY\n" + strings.Repeat("─", 50) + "\nBrave.\n" + nameRule + "\n"
	Reparse(text, "ava", zap.New(core))

	if got := logs.FilterMessage("Potential separator").Len(); got != 2 {
		t.Errorf("separators logged %d times, want 2", got)
	}
	names := logs.FilterMessage("Complete name pattern").All()
	if len(names) != 1 || names[0].ContextMap()["name"] != "Ava" {
		t.Errorf("names logged = %v", names)
	}
	if logs.FilterMessage("Section title").Len() != 1 {
		t.Error("section title not logged")
	}
	modes := logs.FilterMessage("Text mode detected").All()
	if len(modes) != 1 || modes[0].ContextMap()["mode"] != CharacterMode.String() {
		t.Errorf("mode logged = %v", modes)
	}
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Mode
	}{
		{"empty", "", CharacterMode},
		{"keys", "Rule\n───\nbody\nKeys: a\n", LorebookMode},
		{"bullet", "\n► Entry\n", LorebookMode},
		{"bullet with character", "► CHARACTER BOOK\n", CharacterMode},
		{"greetings right after name", nameRule + "\nAva\n" + nameRule + "\n\nALTERNATE GREETINGS\n───\n► Greeting 1\nhi\n", CharacterMode},
		{"keys in description after name", nameRule + "\nAva\n" + nameRule + "\n\nCHARACTER DEFINITION\n───\nKeys: none\n", CharacterMode},
		{"keys too late", strings.Repeat("line\n", 10) + "Keys: a\n", CharacterMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMode(strings.Split(tt.text, "\n")); got != tt.want {
				t.Errorf("DetectMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLorebookBlankLineTitle(t *testing.T) {
	// without keys content is followed by blank line and taken for title
	text := "First\n" + strings.Repeat("─", 50) + "\nOne.\n\n\nKeys: x\n"
	got := titles(Reparse(text, "t", zaptest.NewLogger(t)), LorebookTitle)
	if want := []string{"First", "One."}; !slices.Equal(got, want) {
		t.Errorf("titles = %q, want %q", got, want)
	}
}

func characterDocs(n int) []extract.Card {
	names := []string{"delta", "Bravo", "alpha", "Charlie", "echo"}
	cards := make([]extract.Card, 0, n)
	for i := range n {
		doc := card.MustParse(fmt.Sprintf(`{"name": %q, "description": "About %s.", "scenario": "Line one.\nLine two.", "alternate_greetings": ["Hi from %s"],
			"character_book": {"entries": [{"name": "Home", "content": "Somewhere."}]}}`, names[i], names[i], names[i]))
		cards = append(cards, extract.NewCard(names[i]+".json", doc))
	}
	return cards
}

func TestRoundTrip(t *testing.T) {
	sel := selectAll(t, extract.CharacterFields)
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d cards", n), func(t *testing.T) {
			cards := characterDocs(n)
			runs := extract.Multiple(cards, sel, zaptest.NewLogger(t))
			blocks := Reparse(extract.Flatten(runs), "cards", zaptest.NewLogger(t))

			var wantNames, wantSections []string
			for _, c := range extract.SortCards(cards) {
				wantNames = append(wantNames, c.Name)
			}
			for _, r := range runs {
				if r.Tag == extract.SectionTitle {
					wantSections = append(wantSections, strings.TrimSpace(r.Text))
				}
			}

			if got := titles(blocks, CharacterName); !slices.Equal(got, wantNames) {
				t.Errorf("names = %q, want %q", got, wantNames)
			}
			if got := titles(blocks, SectionTitle); !slices.Equal(got, wantSections) {
				t.Errorf("sections = %q, want %q", got, wantSections)
			}
			if got := PageBreaks(blocks); got != n-1 {
				t.Errorf("page breaks = %d, want %d", got, n-1)
			}
			if got := PageBreaks(FromRuns(CharacterMode, runs, "cards")); got != n-1 {
				t.Errorf("FromRuns() page breaks = %d, want %d", got, n-1)
			}
		})
	}
}

func TestFromRunsMatchesReparse(t *testing.T) {
	t.Run("characters", func(t *testing.T) {
		runs := extract.Multiple(characterDocs(3), selectAll(t, extract.CharacterFields), zaptest.NewLogger(t))
		direct := FromRuns(CharacterMode, runs, "cards")
		parsed := Reparse(extract.Flatten(runs), "cards", zaptest.NewLogger(t))
		if !slices.Equal(direct, parsed) {
			t.Errorf("FromRuns() =\n%s\nReparse() =\n%s", Dump(direct), Dump(parsed))
		}
	})

	t.Run("lorebook", func(t *testing.T) {
		doc := card.MustParse(`{"entries": {
			"0": {"comment": "Rule1", "content": "Always be kind.\nEven to robots.", "key": ["kind", "nice"]},
			"1": {"name": "Rule2", "content": "Never lie.", "key": "lie"}
		}}`)
		runs := extract.Lorebook(doc, selectAll(t, extract.LorebookFields), zaptest.NewLogger(t))
		direct := FromRuns(LorebookMode, runs, "book")
		parsed := Reparse(extract.Flatten(runs), "book", zaptest.NewLogger(t))
		if !slices.Equal(direct, parsed) {
			t.Errorf("FromRuns() =\n%s\nReparse() =\n%s", Dump(direct), Dump(parsed))
		}
	})
}

func TestFromRunsLorebookWithoutKeys(t *testing.T) {
	doc := card.MustParse(`{"entries": {"0": {"comment": "Rule1", "content": "One."}, "1": {"comment": "Rule2", "content": "Two."}}}`)
	sel, _ := extract.NewSelection(extract.LorebookFields, "label", "content")
	runs := extract.Lorebook(doc, sel, zaptest.NewLogger(t))

	blocks := FromRuns(LorebookMode, runs, "book")
	if got := titles(blocks, LorebookTitle); !slices.Equal(got, []string{"Rule1", "Rule2"}) {
		t.Errorf("titles = %q", got)
	}
}

func TestDump(t *testing.T) {
	out := Dump([]Block{{Kind: Spacer, Height: 12}, {Kind: Title, Style: CharacterName, Text: "Ava"}})
	for _, want := range []string{"000 spacer 12pt", `001 title/character-name: "Ava"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() = %q, missing %q", out, want)
		}
	}
}
