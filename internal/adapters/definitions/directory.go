package definitions

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/jobrunner/meridian/internal/domain"
)

// Directory serves the definitions of every YAML file below a directory. The
// files are read by Reload; lookups use the last successfully loaded set.
type Directory struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[Catalogue]
}

// NewDirectory creates a directory source and loads it once. A missing
// directory is created empty.
func NewDirectory(ctx context.Context, path string, logger *slog.Logger) (*Directory, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating definitions directory: %w", err)
	}
	d := &Directory{path: path, logger: logger}
	d.current.Store(&Catalogue{byKey: map[string]*domain.RawDefinition{}})
	if _, err := d.Reload(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the directory being served.
func (d *Directory) Path() string {
	return d.path
}

// Lookup implements output.DefinitionSource.
func (d *Directory) Lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	return d.current.Load().Lookup(ctx, code)
}

// Codes implements output.DefinitionLister.
func (d *Directory) Codes(ctx context.Context) ([]domain.CRSCode, error) {
	return d.current.Load().Codes(ctx)
}

// Reload implements output.DefinitionReloader. It parses every definition file
// and swaps the served set only if all of them are valid.
func (d *Directory) Reload(ctx context.Context) (int, error) {
	files, err := d.files()
	if err != nil {
		return 0, &domain.BackingStoreError{Operation: "reload", Err: err}
	}

	var defs []*domain.RawDefinition
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return 0, &domain.BackingStoreError{Operation: "read", Code: file, Err: err}
		}
		parsed, err := Parse(data)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", file, err)
		}
		defs = append(defs, parsed...)
	}

	catalogue, err := NewCatalogue(defs)
	if err != nil {
		return 0, err
	}
	d.current.Store(catalogue)
	d.logger.Info("definitions loaded", "path", d.path, "files", len(files), "definitions", catalogue.Len())
	return catalogue.Len(), nil
}

func (d *Directory) files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.path && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isDefinitionFile(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func isDefinitionFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
