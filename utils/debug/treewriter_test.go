package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "Runs", nil, "Runs\n"},
		{"nested", 2, "block %d", []any{3}, "    block 3\n"},
		{"negative depth", -1, "%s=%d", []any{"pages", 2}, "pages=2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"empty value", 0, "text", "", "text: \n"},
		{"plain", 1, "content", "A pilot.", "  content: \"A pilot.\"\n"},
		{"line breaks", 0, "header", "===\nAva\n===\n", "header: \"===\\nAva\\n===\\n\"\n"},
		{"unicode kept", 0, "entry", "► Greeting 1", "entry: \"► Greeting 1\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Bytes(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "Story (%d)", 1)
	tw.TextBlock(1, "title", "cards")
	if got, want := string(tw.Bytes()), "Story (1)\n  title: \"cards\"\n"; got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}
