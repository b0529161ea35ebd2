package convert

import (
	"io"
	"os"

	"github.com/fatih/color"

	"cardx/config"
	"cardx/extract"
)

// palette returns preview colour for every run tag.
func palette(colorize bool) map[extract.Tag]*color.Color {
	p := map[extract.Tag]*color.Color{
		extract.Header:       color.RGB(0x29, 0x80, 0xB9).Add(color.Bold),
		extract.SectionTitle: color.RGB(0x16, 0xA0, 0x85).Add(color.Bold),
		extract.BookEntry:    color.RGB(0x8E, 0x44, 0xAD).Add(color.Italic),
		extract.Content:      color.RGB(0x2C, 0x3E, 0x50),
		extract.Separator:    color.RGB(0xBD, 0xC3, 0xC7),
	}
	for _, c := range p {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// printPreview writes runs to w, every run styled according to its tag.
func printPreview(w io.Writer, runs []extract.Run, colorize bool) error {
	p := palette(colorize)
	for _, r := range runs {
		if _, err := p[r.Tag].Fprint(w, r.Text); err != nil {
			return err
		}
	}
	return nil
}

// canColor reports whether w is a terminal able to show colours.
func canColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && config.EnableColorOutput(f)
}
