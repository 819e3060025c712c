// Package application contains the application services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

// RegistryConfig holds the cache settings of a Registry.
type RegistryConfig struct {
	NotFoundTTL      time.Duration // How long an unknown code stays negatively cached
	NotFoundCapacity uint64        // Maximum number of negatively cached codes, 0 for unbounded
	LookupTimeout    time.Duration // Bound of a single definition source call
}

// DefaultRegistryConfig returns the defaults used when a field is zero.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		NotFoundTTL:      5 * time.Minute,
		NotFoundCapacity: 10000,
		LookupTimeout:    5 * time.Second,
	}
}

// Registry resolves CRS codes to immutable coordinate systems and caches them.
// At most one build runs per missing key; hits read a sharded map without
// locking.
type Registry struct {
	source  output.DefinitionSource
	metrics output.MetricsCollector
	logger  *slog.Logger
	cfg     RegistryConfig

	published cmap.ConcurrentMap[string, crs.CoordinateSystem]
	datums    cmap.ConcurrentMap[string, *domain.Datum]
	notFound  *ttlcache.Cache[string, struct{}]
	group     singleflight.Group
	closed    atomic.Bool
}

// NewRegistry creates a registry reading from source.
func NewRegistry(
	source output.DefinitionSource,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg RegistryConfig,
) *Registry {
	defaults := DefaultRegistryConfig()
	if cfg.NotFoundTTL <= 0 {
		cfg.NotFoundTTL = defaults.NotFoundTTL
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaults.LookupTimeout
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}

	opts := []ttlcache.Option[string, struct{}]{
		ttlcache.WithTTL[string, struct{}](cfg.NotFoundTTL),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	}
	if cfg.NotFoundCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, struct{}](cfg.NotFoundCapacity))
	}

	r := &Registry{
		source:    source,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		published: cmap.New[crs.CoordinateSystem](),
		datums:    cmap.New[*domain.Datum](),
		notFound:  ttlcache.New[string, struct{}](opts...),
	}
	r.datums.Set(domain.WGS84DatumCode.Key(), domain.WGS84Datum)
	go r.notFound.Start()
	return r
}

// ResolveString parses a code and resolves it.
func (r *Registry) ResolveString(ctx context.Context, code string) (crs.CoordinateSystem, error) {
	return r.Resolve(ctx, domain.ParseCode(code))
}

// Resolve returns the CRS for a structured code. Repeated calls return the same
// object. Unknown codes yield an error wrapping domain.ErrNotFound.
func (r *Registry) Resolve(ctx context.Context, code domain.CRSCode) (crs.CoordinateSystem, error) {
	return r.resolve(ctx, code, nil)
}

func (r *Registry) resolve(ctx context.Context, code domain.CRSCode, visiting []string) (crs.CoordinateSystem, error) {
	if r.closed.Load() {
		return nil, domain.ErrRegistryClosed
	}
	if !code.IsStructured() {
		return nil, fmt.Errorf("%w: %q is not a CODESPACE:CODE identifier", domain.ErrInvalidCode, code.Original)
	}

	key := code.Key()
	if c, ok := r.published.Get(key); ok {
		r.metrics.IncCacheLookup(output.LookupHit)
		return c, nil
	}
	if r.notFound.Has(key) {
		r.metrics.IncCacheLookup(output.LookupNegative)
		return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, key)
	}
	if slices.Contains(visiting, key) {
		return nil, &domain.DefinitionError{Code: visiting[0], Field: "base",
			Message: fmt.Sprintf("base CRS cycle through %s", key)}
	}
	r.metrics.IncCacheLookup(output.LookupMiss)

	// The shared build must outlive the caller that started it.
	buildCtx := context.WithoutCancel(ctx)
	chain := append(slices.Clone(visiting), key)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.build(buildCtx, code, chain)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(crs.CoordinateSystem), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) build(ctx context.Context, code domain.CRSCode, chain []string) (crs.CoordinateSystem, error) {
	key := code.Key()
	if c, ok := r.published.Get(key); ok {
		return c, nil
	}
	r.logger.Debug("resolving crs", "code", key)

	def, err := r.lookup(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.notFound.Set(key, struct{}{}, ttlcache.DefaultTTL)
			r.logger.Debug("crs not found", "code", key)
			return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, key)
		}
		r.metrics.IncCacheLookup(output.LookupError)
		r.logger.Error("definition lookup failed", "code", key, "error", err)
		return nil, err
	}

	c, err := r.assemble(ctx, def, chain)
	if err != nil {
		r.logger.Debug("crs assembly failed", "code", key, "error", err)
		return nil, err
	}
	return r.publish(key, def, c), nil
}

// lookup calls the source bounded by the lookup timeout, even when the source
// ignores its context.
func (r *Registry) lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	type result struct {
		def *domain.RawDefinition
		err error
	}
	ch := make(chan result, 1)
	start := time.Now()
	go func() {
		def, err := r.source.Lookup(ctx, code)
		ch <- result{def, err}
	}()

	select {
	case res := <-ch:
		r.metrics.ObserveSourceDuration(time.Since(start))
		switch {
		case res.err == nil && res.def == nil:
			return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
		case res.err == nil, errors.Is(res.err, domain.ErrNotFound), errors.Is(res.err, domain.ErrBackingStore):
			return res.def, res.err
		default:
			return nil, &domain.BackingStoreError{Operation: "lookup", Code: code.String(), Err: res.err}
		}
	case <-ctx.Done():
		r.metrics.ObserveSourceDuration(time.Since(start))
		return nil, &domain.BackingStoreError{Operation: "lookup", Code: code.String(), Err: ctx.Err()}
	}
}

// publish stores c under the requested key and every structured identifier of
// its definition. An object already published under the requested key wins.
func (r *Registry) publish(key string, def *domain.RawDefinition, c crs.CoordinateSystem) crs.CoordinateSystem {
	if !r.published.SetIfAbsent(key, c) {
		c, _ = r.published.Get(key)
	}
	for _, id := range def.Codes() {
		r.published.SetIfAbsent(id.Key(), c)
	}
	if k := crs.Key(c); k != key {
		r.published.SetIfAbsent(k, c)
	}
	r.metrics.SetCRSCached(r.published.Count())
	r.logger.Debug("crs published", "code", key, "name", c.Name())
	return c
}

// Preload resolves every code, stopping at the first failure.
func (r *Registry) Preload(ctx context.Context, codes ...string) error {
	for _, code := range codes {
		if _, err := r.ResolveString(ctx, code); err != nil {
			return fmt.Errorf("preloading %s: %w", code, err)
		}
	}
	return nil
}

// Refresh forgets every negatively cached code so that definitions added to the
// source become visible. Published CRSs are kept.
func (r *Registry) Refresh() {
	n := r.notFound.Len()
	r.notFound.DeleteAll()
	r.logger.Info("registry refreshed", "forgotten", n)
}

// Close drops every cached object. Later calls fail with ErrRegistryClosed.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.notFound.Stop()
	r.notFound.DeleteAll()
	r.published.Clear()
	r.datums.Clear()
	r.metrics.SetCRSCached(0)
}

// IsClosed reports whether Close was called.
func (r *Registry) IsClosed() bool {
	return r.closed.Load()
}

// Len returns the number of published keys.
func (r *Registry) Len() int {
	return r.published.Count()
}

// Keys returns the published keys.
func (r *Registry) Keys() []string {
	keys := r.published.Keys()
	slices.Sort(keys)
	return keys
}

// NegativeLen returns the number of negatively cached codes.
func (r *Registry) NegativeLen() int {
	return r.notFound.Len()
}
