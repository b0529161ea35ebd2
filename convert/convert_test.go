package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cardx/card"
	"cardx/common"
	"cardx/config"
	"cardx/extract"
	"cardx/session"
	"cardx/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Cfg = cfg
	return ctx, env
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

const (
	avaCard = `{"spec": "chara_card_v2", "data": {
		"name": "Ava",
		"description": "A pilot.",
		"personality": "Brave.",
		"alternate_greetings": ["Hi!"],
		"character_book": {"entries": [{"name": "Ship", "content": "Old but fast."}]}
	}}`
	zedCard  = `{"name": "zed", "description": "Z."}`
	loreBook = `{"entries": {"0": {"comment": "Rule1", "content": "Always be kind.", "key": ["kind", "nice"]}}}`
)

func importFiles(t *testing.T, ctx context.Context, env *state.LocalEnv, mode common.ImportMode, paths ...string) *session.Session {
	t.Helper()
	s, err := importSources(ctx, env, mode, paths, nil, env.Log)
	if err != nil {
		t.Fatalf("importSources() error = %v", err)
	}
	return s
}

func TestExport_Text(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "ava.json", avaCard)
	s := importFiles(t, ctx, env, common.ImportModeAuto, src)

	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0755); err != nil {
		t.Fatal(err)
	}

	name, err := export(ctx, env, s, common.OutputFmtFormatted, out, env.Log)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if name != filepath.Join(out, "ava.txt") {
		t.Errorf("output = %s", name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	formatted := string(data)
	for _, want := range []string{"\nAva\n", "CHARACTER DEFINITION", "► Greeting 1", "► Ship", "Old but fast."} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted output missing %q:\n%s", want, formatted)
		}
	}

	plain := filepath.Join(out, "plain")
	name, err = export(ctx, env, s, common.OutputFmtPlain, plain, env.Log)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if name != plain+".txt" {
		t.Errorf("output = %s, want extension added", name)
	}
	data, err = os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != extract.Plain(formatted) {
		t.Errorf("plain output differs:\n%s", data)
	}
	if strings.Contains(string(data), "=====") || strings.Contains(string(data), "►") {
		t.Errorf("plain output keeps decorations:\n%s", data)
	}
}

func TestExport_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	s := importFiles(t, ctx, env, common.ImportModeCard, writeFile(t, dir, "ava.json", avaCard))

	target := writeFile(t, dir, "result.txt", "keep me")
	if _, err := export(ctx, env, s, common.OutputFmtFormatted, target, env.Log); err == nil {
		t.Fatal("export() replaced existing file")
	}
	if data, _ := os.ReadFile(target); string(data) != "keep me" {
		t.Errorf("existing file changed: %q", data)
	}

	env.Overwrite = true
	if _, err := export(ctx, env, s, common.OutputFmtFormatted, target, env.Log); err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if data, _ := os.ReadFile(target); !strings.Contains(string(data), "Ava") {
		t.Errorf("file not overwritten: %q", data)
	}
}

func TestExport_PDF(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	s := importFiles(t, ctx, env, common.ImportModeAuto,
		writeFile(t, dir, "zed.json", zedCard),
		writeFile(t, dir, "ava.json", avaCard),
		writeFile(t, dir, "broken.json", `{"name":`),
	)
	if len(s.Rejected) != 1 {
		t.Fatalf("rejected = %v", s.Rejected)
	}

	name, err := export(ctx, env, s, common.OutputFmtPdf, dir, env.Log)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if name != filepath.Join(dir, "characters.pdf") {
		t.Errorf("output = %s", name)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pages, err := api.PageCount(f, nil)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if pages < 2 {
		t.Errorf("pages = %d, want at least one per card", pages)
	}
}

func TestExport_Lorebook(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	s := importFiles(t, ctx, env, common.ImportModeLorebook, writeFile(t, dir, "world.json", loreBook))

	name, err := export(ctx, env, s, common.OutputFmtFormatted, dir, env.Log)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	want := "Rule1\n" + strings.Repeat("─", 50) + "\nAlways be kind.\nKeys: kind, nice\n"
	if string(data) != want {
		t.Errorf("lorebook output = %q, want %q", data, want)
	}
}

func TestRender(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	s := importFiles(t, ctx, env, common.ImportModeAuto,
		writeFile(t, dir, "zed.json", zedCard),
		writeFile(t, dir, "ava.json", avaCard),
	)
	text, err := export(ctx, env, s, common.OutputFmtFormatted, dir, env.Log)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}

	// byte order mark and windows line ends are accepted
	data, err := os.ReadFile(text)
	if err != nil {
		t.Fatal(err)
	}
	bom := writeFile(t, dir, "edited.txt", "\xef\xbb\xbf"+strings.ReplaceAll(string(data), "\n", "\r\n"))

	for _, src := range []string{text, bom} {
		name, err := render(ctx, env, src, dir, env.Log)
		if err != nil {
			t.Fatalf("render(%s) error = %v", src, err)
		}
		if filepath.Ext(name) != ".pdf" || stem(name) != stem(src) {
			t.Errorf("output = %s", name)
		}
		f, err := os.Open(name)
		if err != nil {
			t.Fatal(err)
		}
		pages, err := api.PageCount(f, nil)
		f.Close()
		if err != nil || pages < 2 {
			t.Errorf("PageCount() = %d, %v", pages, err)
		}
	}

	if _, err := render(ctx, env, filepath.Join(dir, "absent.txt"), dir, env.Log); err == nil {
		t.Error("render() accepted missing source")
	}
}

func TestPrintPreview(t *testing.T) {
	runs := extract.Character(
		card.MustParse(avaCard),
		extract.Selection{"description": true, "alternate_greetings": true},
		zaptest.NewLogger(t),
	)

	var plain bytes.Buffer
	if err := printPreview(&plain, runs, false); err != nil {
		t.Fatalf("printPreview() error = %v", err)
	}
	if plain.String() != extract.Flatten(runs) {
		t.Errorf("preview without colours = %q", plain.String())
	}

	var colored bytes.Buffer
	if err := printPreview(&colored, runs, true); err != nil {
		t.Fatalf("printPreview() error = %v", err)
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("preview has no colour sequences")
	}
	if !strings.Contains(colored.String(), "Greeting 1") {
		t.Errorf("preview = %q", colored.String())
	}

	if canColor(&colored) {
		t.Error("buffer reported as terminal")
	}
}

func TestCommands(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "ava.json", avaCard)

	var buf bytes.Buffer
	flags := []cli.Flag{
		&cli.StringFlag{Name: "mode", Value: "auto"},
		&cli.StringSliceFlag{Name: "fields"},
		&cli.StringFlag{Name: "to"},
		&cli.StringFlag{Name: "output"},
		&cli.BoolFlag{Name: "overwrite"},
	}

	preview := &cli.Command{Name: "preview", Flags: flags, Action: Preview, Writer: &buf}
	if err := preview.Run(ctx, []string{"preview", "--fields", "personality", src}); err != nil {
		t.Fatalf("preview error = %v", err)
	}
	if !strings.Contains(buf.String(), "PERSONALITY") || strings.Contains(buf.String(), "CHARACTER DEFINITION") {
		t.Errorf("preview output = %q", buf.String())
	}

	out := filepath.Join(dir, "ava-plain")
	extractCmd := &cli.Command{Name: "extract", Flags: flags, Action: Extract}
	if err := extractCmd.Run(ctx, []string{"extract", "--to", "plain", "--output", out, src}); err != nil {
		t.Fatalf("extract error = %v", err)
	}
	if _, err := os.Stat(out + ".txt"); err != nil {
		t.Errorf("plain output not written: %v", err)
	}
	if env.Overwrite {
		t.Error("overwrite enabled without flag")
	}

	extractCmd = &cli.Command{Name: "extract", Flags: flags, Action: Extract}
	if err := extractCmd.Run(ctx, []string{"extract", "--mode", "lorebook", "--output", out, src}); err == nil {
		t.Error("extract accepted character card as lorebook")
	}

	extractCmd = &cli.Command{Name: "extract", Flags: flags, Action: Extract}
	if err := extractCmd.Run(ctx, []string{"extract", "--mode", "batch", src}); err == nil {
		t.Error("extract accepted unknown mode")
	}

	extractCmd = &cli.Command{Name: "extract", Flags: flags, Action: Extract}
	if err := extractCmd.Run(ctx, []string{"extract"}); err == nil {
		t.Error("extract accepted empty source list")
	}
}

func TestSplitFields(t *testing.T) {
	got := splitFields([]string{"description, personality", "", " key "})
	want := []string{"description", "personality", "key"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitFields() = %v, want %v", got, want)
	}
}
