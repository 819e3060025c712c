// Package storage provides the object storage adapters definition files are
// synced from.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/meridian/internal/domain"
)

// isDefinitionKey reports whether an object key names a YAML definition file.
func isDefinitionKey(key string) bool {
	base := key
	if i := strings.LastIndexAny(key, `/\`); i >= 0 {
		base = key[i+1:]
	}
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".yaml" || ext == ".yml"
}

// relativeKey strips the configured prefix from an object key.
func relativeKey(key, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}

// joinKey prepends the prefix to a relative key.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

// writeFile streams r into dest through a temporary file in the same
// directory, so a watcher never observes a half-written definition file.
func writeFile(dest string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func storageError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Operation: op, Key: key, Err: err}
}
