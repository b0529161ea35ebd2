package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cardx/common"
	"cardx/config"
	"cardx/state"
)

// buildOutputPath returns output file path. Explicit output naming a file is
// used as is (with extension added when missing). Otherwise file is placed in
// the output directory (current one by default) and named either by the
// configured template or after fallback. Name is cleaned and, if requested,
// transliterated.
func buildOutputPath(values Values, fallback, output string, format common.OutputFmt, env *state.LocalEnv) (string, error) {
	outDir := output
	if output == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		outDir = wd
	} else if info, err := os.Stat(output); err != nil || !info.IsDir() {
		if filepath.Ext(output) == "" {
			output += format.Ext()
		}
		return output, nil
	}

	defaultFile := cleanPathSegment(fallback, env) + format.Ext()
	if env.Cfg.Output.NameTemplate == "" {
		return filepath.Join(outDir, defaultFile), nil
	}

	expandedName := expandOutputNameTemplate(values, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile), nil
	}
	return assemblePathWithSubdirs(outDir, expandedName, format, env), nil
}

func expandOutputNameTemplate(values Values, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(config.NameTemplateFieldName, env.Cfg.Output.NameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(filepath.FromSlash(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, format common.OutputFmt, env *state.LocalEnv) string {
	segments := splitPath(expandedName)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+format.Ext())
	return filepath.Join(parts...)
}

// splitPath breaks relative path into its elements dropping empty and
// relative ones, so template cannot escape output directory.
func splitPath(path string) []string {
	var segments []string
	for s := range strings.SplitSeq(path, string(os.PathSeparator)) {
		if s = strings.TrimSpace(s); s == "" || s == "." || s == ".." {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

// prepareOutput makes sure file could be written to path, refusing to replace
// existing file unless overwrite is requested.
func prepareOutput(path string, overwrite bool, log *zap.Logger) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", path)
		}
		log.Warn("Overwriting existing file", zap.String("file", path))
		return nil
	case !os.IsNotExist(err):
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
