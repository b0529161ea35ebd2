package session

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cardx/archive"
	"cardx/card"
)

// Source is a single input file. Reading failures are kept with the source so
// they could be reported together with other per file problems.
type Source struct {
	Name string
	Data []byte
	Err  error
}

// Stem returns file name without directories and extension.
func (s Source) Stem() string {
	base := filepath.Base(filepath.FromSlash(s.Name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var inputExts = []string{".json", ".png"}

func isInput(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return slices.Contains(inputExts, strings.ToLower(filepath.Ext(name)))
}

// Collect reads all sources named by paths. Directories are searched
// recursively and zip archives are expanded, in both cases files are taken in
// natural order of their names.
func Collect(ctx context.Context, paths []string, log *zap.Logger) ([]Source, error) {
	var out []Source
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			out = append(out, Source{Name: p, Err: err})
			continue
		}
		if info.IsDir() {
			srcs, err := collectDir(ctx, p, log)
			if err != nil {
				return nil, err
			}
			out = append(out, srcs...)
			continue
		}
		out = append(out, collectFile(p, log)...)
	}
	log.Debug("Sources collected", zap.Int("count", len(out)))
	return out, nil
}

func collectDir(ctx context.Context, dir string, log *zap.Logger) ([]Source, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() && (isInput(path) || strings.EqualFold(filepath.Ext(path), ".zip")) {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %s: %w", dir, err)
	}
	sort.Sort(natural.StringSlice(names))

	var out []Source
	for _, n := range names {
		out = append(out, collectFile(n, log)...)
	}
	return out, nil
}

func collectFile(path string, log *zap.Logger) []Source {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Source{{Name: path, Err: err}}
	}
	if !filetype.Is(data, "zip") {
		return []Source{{Name: path, Data: data}}
	}

	var out []Source
	err = archive.Walk(path, archive.Extensions(inputExts...), func(arc string, f *zip.File) error {
		src := Source{Name: filepath.Join(arc, filepath.FromSlash(f.Name))}
		src.Data, src.Err = readEntry(f)
		out = append(out, src)
		return nil
	})
	if err != nil {
		return []Source{{Name: path, Err: fmt.Errorf("unable to read archive: %w", err)}}
	}
	log.Debug("Archive expanded", zap.String("archive", path), zap.Int("files", len(out)))
	return out
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Decode turns source into a document. PNG images are searched for embedded
// card data, byte order marks are removed.
func Decode(src Source) (card.Document, error) {
	if src.Err != nil {
		return card.Document{}, src.Err
	}
	data := src.Data
	if filetype.Is(data, "png") {
		var err error
		if data, err = card.FromPNG(data); err != nil {
			return card.Document{}, err
		}
	} else if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return card.Document{}, fmt.Errorf("unsupported file type %s", kind.MIME.Value)
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return card.Document{}, err
	}
	return card.Parse(data)
}
