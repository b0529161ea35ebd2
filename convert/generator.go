package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/moby/sys/atomicwriter"
	"go.uber.org/zap"

	"cardx/common"
	"cardx/extract"
	"cardx/layout"
	"cardx/pdf"
	"cardx/state"
)

// generate writes extraction result in the specified format to outputPath.
func generate(ctx context.Context, env *state.LocalEnv, format common.OutputFmt, mode layout.Mode, runs []extract.Run, outputPath string, log *zap.Logger) error {
	switch format {
	case common.OutputFmtFormatted:
		return writeText(outputPath, extract.Flatten(runs))
	case common.OutputFmtPlain:
		return writeText(outputPath, extract.Plain(extract.Flatten(runs)))
	case common.OutputFmtPdf:
		blocks := layout.FromRuns(mode, runs, stem(outputPath))
		env.Rpt.StoreData("story.txt", []byte(layout.Dump(blocks)))
		return pdf.New(&env.Cfg.PDF, log).Write(ctx, blocks, outputPath)
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
}

func writeText(path, text string) error {
	if err := atomicwriter.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("unable to save text: %w", err)
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
