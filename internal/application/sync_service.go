package application

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrRateLimited is returned when a manual sync is requested within the
// cooldown of the previous one.
var ErrRateLimited = errors.New("rate limit exceeded")

// DefaultSyncCooldown is the minimum spacing of manual syncs.
const DefaultSyncCooldown = 30 * time.Second

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	FilesAdded      int       `json:"files_added"`
	FilesRemoved    int       `json:"files_removed"`
	Definitions     int       `json:"definitions"`
	SyncedAt        time.Time `json:"synced_at"`
	NextScheduledAt time.Time `json:"next_scheduled_at,omitempty"`
}

// SyncService runs a DefinitionSync on a schedule and on demand. Scheduled
// and manual runs that overlap share a single pass over the storage, bound
// to the context of the caller that started it.
type SyncService struct {
	sync     *DefinitionSync
	interval time.Duration
	cooldown time.Duration
	logger   *slog.Logger

	runs     singleflight.Group
	lastAPI  atomic.Int64 // unix nanos of the last accepted manual trigger
	nextSync atomic.Int64 // unix nanos, 0 while unscheduled

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncService creates a sync service. A zero interval disables the
// scheduler; manual triggers still work.
func NewSyncService(sync *DefinitionSync, interval time.Duration, logger *slog.Logger) *SyncService {
	return &SyncService{
		sync:     sync,
		interval: interval,
		cooldown: DefaultSyncCooldown,
		logger:   logger,
	}
}

// WithCooldown overrides the spacing of manual triggers.
func (s *SyncService) WithCooldown(d time.Duration) *SyncService {
	s.cooldown = d
	return s
}

// Start begins the periodic scheduler. It is a no-op without an interval.
func (s *SyncService) Start(ctx context.Context) {
	if s.interval <= 0 || s.done != nil {
		return
	}
	s.logger.Info("starting definition sync", "interval", s.interval)

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.schedule(time.Now())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("definition sync stopped")
			return
		case now := <-ticker.C:
			s.logger.Debug("scheduled definition sync")
			if _, err := s.syncOnce(ctx); err != nil {
				s.logger.Error("scheduled definition sync failed", "error", err)
			}
			s.schedule(now)
		}
	}
}

// Stop halts the scheduler. A scheduled sync in flight is canceled and Stop
// waits for it to return.
func (s *SyncService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// TriggerSync runs a sync now. Calls within the cooldown of the last
// accepted trigger fail with ErrRateLimited.
func (s *SyncService) TriggerSync(ctx context.Context) (SyncResult, error) {
	now := time.Now()
	last := s.lastAPI.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < s.cooldown {
		return SyncResult{}, ErrRateLimited
	}
	if !s.lastAPI.CompareAndSwap(last, now.UnixNano()) {
		return SyncResult{}, ErrRateLimited
	}
	return s.syncOnce(ctx)
}

func (s *SyncService) syncOnce(ctx context.Context) (SyncResult, error) {
	v, err, shared := s.runs.Do("sync", func() (any, error) {
		stats, err := s.sync.Sync(ctx)
		if err != nil {
			return SyncResult{}, err
		}
		return SyncResult{
			FilesAdded:   stats.Added,
			FilesRemoved: stats.Removed,
			Definitions:  stats.Definitions,
			SyncedAt:     time.Now(),
		}, nil
	})
	if shared {
		s.logger.Debug("joined running definition sync")
	}
	if err != nil {
		return SyncResult{}, err
	}
	result := v.(SyncResult)
	result.NextScheduledAt = s.NextSync()
	return result, nil
}

func (s *SyncService) schedule(from time.Time) {
	s.nextSync.Store(from.Add(s.interval).UnixNano())
}

// NextSync returns when the scheduler runs next, or the zero time.
func (s *SyncService) NextSync() time.Time {
	n := s.nextSync.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}
