// Package pdf renders story blocks into paginated PDF document.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/moby/sys/atomicwriter"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"cardx/config"
	"cardx/layout"
)

type rgb struct {
	r, g, b int
}

var (
	blue   = rgb{0x29, 0x80, 0xB9}
	green  = rgb{0x16, 0xA0, 0x85}
	purple = rgb{0x8E, 0x44, 0xAD}
	ink    = rgb{0x2C, 0x3E, 0x50}
	grey   = rgb{0xE0, 0xE0, 0xE0}
)

type style struct {
	size    float64
	font    string
	color   rgb
	before  float64
	after   float64
	align   string
	indent  float64
	leading float64
	// keep block on the same page with the beginning of the next one
	keep bool
}

var styles = map[layout.Style]style{
	layout.DocumentTitle:      {size: 16, font: "B", color: blue, after: 20, align: "C"},
	layout.CharacterName:      {size: 14, font: "B", color: blue, before: 10, after: 10, align: "C", keep: true},
	layout.CharacterSeparator: {size: 12, color: blue, before: 5, after: 5, align: "C"},
	layout.SectionTitle:       {size: 14, font: "B", color: green, before: 20, align: "L", keep: true},
	layout.LorebookTitle:      {size: 14, font: "B", color: green, before: 20, align: "L", keep: true},
	layout.Content:            {size: 11, color: ink, after: 10, align: "L", indent: 20, leading: 14},
	layout.BookEntry:          {size: 11, font: "I", color: purple, before: 5, after: 5, align: "L", indent: 20},
}

// room for a title together with a couple of lines which follow it
const keepRoom = 60

// Generator produces PDF files according to configuration.
type Generator struct {
	cfg *config.PDFConfig
	log *zap.Logger
}

func New(cfg *config.PDFConfig, log *zap.Logger) *Generator {
	return &Generator{cfg: cfg, log: log}
}

// Write renders story and atomically replaces file at path with the result.
// Document title is the file name without extension. Any failure is reported
// as RenderError and leaves path untouched.
func (g *Generator) Write(ctx context.Context, blocks []layout.Block, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, pages, err := g.Render(blocks, title)
	if err != nil {
		return classify(err)
	}
	if err := verify(data, pages); err != nil {
		return classify(err)
	}
	if err := atomicwriter.WriteFile(path, data, 0o644); err != nil {
		return classify(err)
	}
	g.log.Debug("PDF written", zap.String("file", path), zap.Int("pages", pages), zap.Int("size", len(data)))
	return nil
}

// Render produces document in memory returning its content and page count.
func (g *Generator) Render(blocks []layout.Block, title string) ([]byte, int, error) {
	doc := gofpdf.New("P", "pt", g.cfg.PageSize, "")
	doc.SetMargins(g.cfg.Margin, g.cfg.Margin, g.cfg.Margin)
	doc.SetAutoPageBreak(true, g.cfg.Margin)
	doc.SetTitle(title, true)
	doc.SetAuthor(g.cfg.Author, true)
	doc.SetSubject(g.cfg.Subject, true)
	doc.SetCreator("cardx", true)
	doc.AddPage()
	if doc.Err() {
		return nil, 0, doc.Error()
	}

	r := renderer{doc: doc, family: g.cfg.FontFamily}
	for i, b := range blocks {
		r.block(b)
		if doc.Err() {
			return nil, 0, fmt.Errorf("block %d (%s): %w", i, b.Kind, doc.Error())
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), doc.PageCount(), nil
}

func verify(data []byte, pages int) error {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("generated document is not readable: %w", err)
	}
	if n < 1 || n != pages {
		return fmt.Errorf("generated document has %d pages, expected %d", n, pages)
	}
	return nil
}

type renderer struct {
	doc    *gofpdf.Fpdf
	family string
}

func (r *renderer) block(b layout.Block) {
	switch b.Kind {
	case layout.PageBreak:
		r.doc.AddPage()
	case layout.Spacer:
		r.doc.Ln(b.Height)
	case layout.Rule:
		r.rule()
	default:
		st, ok := styles[b.Style]
		if !ok {
			st = styles[layout.Content]
		}
		r.text(b.Text, st)
	}
}

func (r *renderer) rule() {
	pageW, _ := r.doc.GetPageSize()
	lm, _, rm, _ := r.doc.GetMargins()

	r.doc.Ln(5)
	y := r.doc.GetY()
	r.doc.SetLineWidth(1)
	r.doc.SetDrawColor(grey.r, grey.g, grey.b)
	r.doc.Line(lm, y, pageW-rm, y)
	r.doc.SetDrawColor(0, 0, 0)
	r.doc.SetLineWidth(0.2)
	r.doc.Ln(10)
}

func (r *renderer) fits(height float64) bool {
	_, pageH := r.doc.GetPageSize()
	_, _, _, bm := r.doc.GetMargins()
	return r.doc.GetY()+height <= pageH-bm
}

func (r *renderer) text(text string, st style) {
	leading := st.leading
	if leading == 0 {
		leading = st.size * 1.2
	}
	if st.keep && !r.fits(st.before+leading+keepRoom) {
		r.doc.AddPage()
	}

	lm, _, rm, _ := r.doc.GetMargins()
	r.doc.SetLeftMargin(lm + st.indent)
	r.doc.SetRightMargin(rm + st.indent)
	r.doc.SetX(lm + st.indent)

	r.doc.SetFont(r.family, st.font, st.size)
	r.doc.SetTextColor(st.color.r, st.color.g, st.color.b)
	if st.before > 0 {
		r.doc.Ln(st.before)
	}
	r.doc.MultiCell(0, leading, text, "", st.align, false)
	if st.after > 0 {
		r.doc.Ln(st.after)
	}

	r.doc.SetLeftMargin(lm)
	r.doc.SetRightMargin(rm)
	r.doc.SetTextColor(0, 0, 0)
}
