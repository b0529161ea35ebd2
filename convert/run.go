// Package convert implements commands turning imported cards into preview,
// text and PDF output.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cardx/common"
	"cardx/config"
	"cardx/extract"
	"cardx/layout"
	"cardx/pdf"
	"cardx/session"
	"cardx/state"
)

// Extract imports sources and saves selected fields in requested format.
func Extract(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	format := env.Cfg.Output.Format
	if cmd.IsSet("to") {
		f, err := common.ParseOutputFmt(cmd.String("to"))
		if err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Stringer("format", format), zap.Error(err))
		} else {
			format = f
		}
	}
	env.Overwrite = cmd.Bool("overwrite") || env.Cfg.Output.Overwrite

	s, err := importSession(ctx, cmd, env, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Stringer("session", s.ID), zap.Int("documents", len(s.Cards)), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = export(ctx, env, s, format, cmd.String("output"), log)
	return err
}

// export extracts session and saves the result, returning name of the
// produced file.
func export(ctx context.Context, env *state.LocalEnv, s *session.Session, format common.OutputFmt, output string, log *zap.Logger) (string, error) {
	outputName, err := buildOutputPath(sessionValues(s, format), defaultStem(s), output, format, env)
	if err != nil {
		return "", err
	}
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return "", err
	}

	runs := s.Extract(log)
	env.Rpt.StoreData("extraction.txt", []byte(extract.Dump(runs)))

	if err := generate(ctx, env, format, layout.ModeFor(s.Kind), runs, outputName, log); err != nil {
		return "", fmt.Errorf("unable to generate output: %w", err)
	}
	env.Rpt.Store("result"+filepath.Ext(outputName), outputName)

	log.Info("Extraction saved", zap.String("to", outputName), zap.Strings("fields", s.Selection.Labels(s.Fields())))
	return outputName, nil
}

// Preview imports sources and prints styled extraction to standard output.
func Preview(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preview")

	s, err := importSession(ctx, cmd, env, log)
	if err != nil {
		return err
	}

	runs := s.Extract(log)
	env.Rpt.StoreData("extraction.txt", []byte(extract.Dump(runs)))

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	return printPreview(w, runs, env.Cfg.Preview.Color && canColor(w))
}

// Render produces PDF out of previously saved formatted text.
func Render(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().First()
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	env.Overwrite = cmd.Bool("overwrite") || env.Cfg.Output.Overwrite

	_, err := render(ctx, env, src, cmd.String("output"), log)
	return err
}

func render(ctx context.Context, env *state.LocalEnv, src, output string, log *zap.Logger) (string, error) {
	text, err := readText(src)
	if err != nil {
		return "", err
	}
	if err := env.Rpt.StoreCopy("source.txt", src); err != nil {
		log.Debug("Unable to store source in report", zap.Error(err))
	}

	name := stem(src)
	values := Values{Name: name, Kind: "text", Count: 1, SourceFile: name, Format: common.OutputFmtPdf.String()}
	outputName, err := buildOutputPath(values, name, output, common.OutputFmtPdf, env)
	if err != nil {
		return "", err
	}
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return "", err
	}

	log.Debug("Formatted text read", zap.String("file", src), zap.Int("size", len(text)))

	blocks := layout.Reparse(text, stem(outputName), log)
	env.Rpt.StoreData("story.txt", []byte(layout.Dump(blocks)))

	if err := pdf.New(&env.Cfg.PDF, log).Write(ctx, blocks, outputName); err != nil {
		return "", err
	}
	env.Rpt.Store("result.pdf", outputName)

	log.Info("PDF saved", zap.String("from", src), zap.String("to", outputName), zap.Int("blocks", len(blocks)))
	return outputName, nil
}

// readText reads text file removing byte order mark, if any.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read formatted text: %w", err)
	}
	data, _, err = transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("unable to decode formatted text: %w", err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// importSession collects command sources and imports them into a new
// session.
func importSession(ctx context.Context, cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) (*session.Session, error) {
	if cmd.Args().Len() == 0 {
		return nil, errors.New("no input source has been specified")
	}
	mode, err := common.ParseImportMode(cmd.String("mode"))
	if err != nil {
		return nil, fmt.Errorf("unknown import mode: %w", err)
	}
	return importSources(ctx, env, mode, cmd.Args().Slice(), cmd.StringSlice("fields"), log)
}

func importSources(ctx context.Context, env *state.LocalEnv, mode common.ImportMode, paths, fields []string, log *zap.Logger) (*session.Session, error) {
	srcs, err := session.Collect(ctx, paths, log)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, errors.New("no character cards or lorebooks found")
	}
	storeSources(env.Rpt, srcs)

	return session.Import(ctx, mode, srcs, &env.Cfg.Extraction, splitFields(fields), log)
}

// splitFields accepts both repeated flags and comma separated lists.
func splitFields(in []string) []string {
	var out []string
	for _, f := range in {
		for p := range strings.SplitSeq(f, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func storeSources(rpt *config.Report, srcs []session.Source) {
	for i, src := range srcs {
		if src.Err != nil {
			continue
		}
		rpt.StoreData(fmt.Sprintf("sources/%03d-%s", i, filepath.Base(src.Name)), src.Data)
	}
}
