package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobrunner/meridian/internal/ports/output"
)

// newTestSync takes the reloader as the port type so that a nil argument
// stays an untyped nil.
func newTestSync(t *testing.T, storage *mockStorage, reloader output.DefinitionReloader) (*DefinitionSync, *Registry) {
	t.Helper()
	registry := NewRegistry(newCountingSource(), nil, testLogger(), RegistryConfig{})
	t.Cleanup(registry.Close)
	return NewDefinitionSync(storage, reloader, registry, nil, testLogger(), t.TempDir()), registry
}

func TestSyncService_RateLimiting(t *testing.T) {
	sync, _ := newTestSync(t, &mockStorage{}, &mockReloader{})
	service := NewSyncService(sync, time.Hour, testLogger())

	ctx := context.Background()

	// First call should succeed (sync will return 0 added since storage is empty)
	result, err := service.TriggerSync(ctx)
	if err != nil {
		t.Errorf("first sync should succeed, got error: %v", err)
	}
	if result.FilesAdded != 0 {
		t.Errorf("expected 0 files added with empty storage, got %d", result.FilesAdded)
	}

	// Immediate second call should be rate limited
	_, err = service.TriggerSync(ctx)
	if err != ErrRateLimited {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestSyncService_StartStop(t *testing.T) {
	storage := &mockStorage{}
	reloader := &mockReloader{}
	sync, _ := newTestSync(t, storage, reloader)

	// Use a short interval for testing
	service := NewSyncService(sync, 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for reloader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	service.Stop()

	if reloader.calls.Load() == 0 {
		t.Error("expected at least one scheduled sync")
	}
	if service.NextSync().IsZero() {
		t.Error("next sync time should be set")
	}
}

func TestSyncService_Interval(t *testing.T) {
	sync, _ := newTestSync(t, &mockStorage{}, nil)

	interval := 5 * time.Minute
	service := NewSyncService(sync, interval, testLogger())

	if service.Interval() != interval {
		t.Errorf("Interval() = %v, want %v", service.Interval(), interval)
	}
}

func TestSyncService_TriggerReportsStats(t *testing.T) {
	storage := &mockStorage{
		objects: []output.StorageObject{
			{Key: "germany.yaml", Size: 5},
			{Key: "README.md", Size: 3},
		},
		content: map[string]string{"germany.yaml": "crs: "},
	}
	reloader := &mockReloader{count: 7}
	sync, _ := newTestSync(t, storage, reloader)
	service := NewSyncService(sync, time.Hour, testLogger())

	result, err := service.TriggerSync(context.Background())
	if err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}
	if result.FilesAdded != 1 {
		t.Errorf("FilesAdded = %d, want 1", result.FilesAdded)
	}
	if result.Definitions != 7 {
		t.Errorf("Definitions = %d, want 7", result.Definitions)
	}
	if result.SyncedAt.IsZero() {
		t.Error("SyncedAt should be set")
	}
}

func TestSyncService_CooldownElapses(t *testing.T) {
	sync, _ := newTestSync(t, &mockStorage{}, &mockReloader{})
	service := NewSyncService(sync, 0, testLogger()).WithCooldown(20 * time.Millisecond)

	if _, err := service.TriggerSync(context.Background()); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	if _, err := service.TriggerSync(context.Background()); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second trigger error = %v, want ErrRateLimited", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := service.TriggerSync(context.Background()); err != nil {
		t.Errorf("trigger after cooldown: %v", err)
	}
}

func TestSyncService_StartWithoutInterval(t *testing.T) {
	sync, _ := newTestSync(t, &mockStorage{}, &mockReloader{})
	service := NewSyncService(sync, 0, testLogger())

	service.Start(context.Background())
	service.Stop()

	if !service.NextSync().IsZero() {
		t.Error("an unscheduled service should report no next sync")
	}
}

func TestSyncService_TriggerPropagatesErrors(t *testing.T) {
	sync, _ := newTestSync(t, &mockStorage{listErr: errors.New("bucket gone")}, &mockReloader{})
	service := NewSyncService(sync, time.Hour, testLogger())

	if _, err := service.TriggerSync(context.Background()); err == nil {
		t.Error("expected the storage error")
	}
}

func TestSyncService_StopCancelsRunningSync(t *testing.T) {
	storage := &mockStorage{
		objects:  []output.StorageObject{{Key: "germany.yaml"}},
		blocking: make(chan struct{}, 1),
	}
	sync, _ := newTestSync(t, storage, &mockReloader{})
	service := NewSyncService(sync, 10*time.Millisecond, testLogger())

	service.Start(context.Background())
	select {
	case <-storage.blocking:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled sync never started a download")
	}

	stopped := make(chan struct{})
	go func() {
		service.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not cancel the running sync")
	}
}
