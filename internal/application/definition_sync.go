package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jobrunner/meridian/internal/ports/output"
)

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added       int
	Removed     int
	Definitions int
}

// DefinitionSync mirrors definition files from object storage into a local
// directory, reloads the file-backed source and refreshes the registry.
type DefinitionSync struct {
	storage   output.ObjectStorage
	reloader  output.DefinitionReloader
	registry  *Registry
	metrics   output.MetricsCollector
	logger    *slog.Logger
	localPath string

	// retry bounds each download; replaced in tests.
	retry func() backoff.BackOff
}

// NewDefinitionSync creates a new definition sync. reloader may be nil when the
// source reads the directory on every lookup; storage may be nil when only
// Reload is used. Pass an untyped nil: a nil pointer wrapped in either
// interface is not nil.
func NewDefinitionSync(
	storage output.ObjectStorage,
	reloader output.DefinitionReloader,
	registry *Registry,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	localPath string,
) *DefinitionSync {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &DefinitionSync{
		storage:   storage,
		reloader:  reloader,
		registry:  registry,
		metrics:   metrics,
		logger:    logger,
		localPath: localPath,
		retry: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return backoff.WithMaxRetries(b, 4)
		},
	}
}

// IsDefinitionFile reports whether the key names a YAML definition file.
func IsDefinitionFile(key string) bool {
	ext := strings.ToLower(filepath.Ext(key))
	return ext == ".yaml" || ext == ".yml"
}

// Sync downloads new and changed definition files, deletes local files that no
// longer exist remotely, then reloads and refreshes.
func (s *DefinitionSync) Sync(ctx context.Context) (SyncStats, error) {
	if s.storage == nil {
		return SyncStats{}, fmt.Errorf("syncing definitions: no storage configured")
	}
	s.logger.Info("syncing definitions from storage")

	start := time.Now()
	objects, err := s.storage.List(ctx)
	s.metrics.IncStorageOperations("list", err == nil)
	s.metrics.ObserveStorageDuration("list", time.Since(start))
	if err != nil {
		return SyncStats{}, fmt.Errorf("listing definitions: %w", err)
	}

	stats := SyncStats{}
	remote := make(map[string]struct{})
	for _, obj := range objects {
		if !IsDefinitionFile(obj.Key) {
			continue
		}
		remote[filepath.Clean(filepath.FromSlash(obj.Key))] = struct{}{}

		localPath := filepath.Join(s.localPath, filepath.FromSlash(obj.Key))
		if upToDate(localPath, obj) {
			s.logger.Debug("definition file unchanged, skipping", "key", obj.Key)
			continue
		}
		if err := s.download(ctx, obj.Key, localPath); err != nil {
			s.logger.Error("failed to download definition file", "key", obj.Key, "error", err)
			continue
		}
		stats.Added++
	}

	for _, path := range s.findFilesToRemove(remote) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete local definition file", "path", path, "error", err)
			continue
		}
		s.logger.Debug("deleted local definition file", "path", path)
		stats.Removed++
	}

	stats.Definitions, err = s.Reload(ctx)
	if err != nil {
		return stats, err
	}

	s.logger.Info("sync completed", "added", stats.Added, "removed", stats.Removed, "definitions", stats.Definitions)
	return stats, nil
}

// Reload re-reads the local files and forgets negatively cached codes.
func (s *DefinitionSync) Reload(ctx context.Context) (int, error) {
	n := 0
	if s.reloader != nil {
		var err error
		if n, err = s.reloader.Reload(ctx); err != nil {
			return 0, fmt.Errorf("reloading definitions: %w", err)
		}
	}
	s.registry.Refresh()
	return n, nil
}

func (s *DefinitionSync) download(ctx context.Context, key, dest string) error {
	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		err := s.storage.Download(ctx, key, dest)
		s.metrics.IncStorageOperations("download", err == nil)
		s.metrics.ObserveStorageDuration("download", time.Since(start))
		return err
	}
	notify := func(err error, d time.Duration) {
		s.logger.Warn("download failed, retrying", "key", key, "attempt", attempt, "retry_in", d, "error", err)
	}
	return backoff.RetryNotify(op, backoff.WithContext(s.retry(), ctx), notify)
}

func upToDate(localPath string, obj output.StorageObject) bool {
	info, err := os.Stat(localPath)
	return err == nil && obj.MatchesLocal(info)
}

// findFilesToRemove returns local definition files without a remote counterpart.
func (s *DefinitionSync) findFilesToRemove(remote map[string]struct{}) []string {
	var toRemove []string
	_ = filepath.WalkDir(s.localPath, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !IsDefinitionFile(path) {
			return nil
		}
		rel, err := filepath.Rel(s.localPath, path)
		if err != nil {
			return nil
		}
		if _, ok := remote[rel]; !ok {
			toRemove = append(toRemove, path)
		}
		return nil
	})
	return toRemove
}
