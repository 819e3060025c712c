package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/transform"
)

// CRSService resolves codes and transforms coordinates between them.
type CRSService struct {
	registry *Registry
	composer *transform.Composer
	metrics  output.MetricsCollector
	logger   *slog.Logger
}

// NewCRSService creates a new CRS service.
func NewCRSService(
	registry *Registry,
	composer *transform.Composer,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *CRSService {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &CRSService{
		registry: registry,
		composer: composer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve returns the CRS for a code. AUTO and AUTO2 codes are synthesized on
// every call and never cached by the registry.
func (s *CRSService) Resolve(ctx context.Context, code string) (crs.CoordinateSystem, error) {
	if crs.IsAutoCode(code) {
		req, err := crs.ParseAutoCode(code)
		if err != nil {
			return nil, err
		}
		return crs.SynthesizeAutoRequest(req)
	}
	return s.registry.ResolveString(ctx, code)
}

// SynthesizeAuto builds a WMS auto CRS around a reference point in degrees.
func (s *CRSService) SynthesizeAuto(_ context.Context, id int, lon0, lat0 float64) (*crs.Projected, error) {
	return crs.SynthesizeAuto(id, lon0, lat0)
}

// Path resolves both codes and returns the cached path between them.
func (s *CRSService) Path(ctx context.Context, source, target string) (*transform.Path, error) {
	src, err := s.Resolve(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	tgt, err := s.Resolve(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return s.composer.Path(src, tgt)
}

// Transform moves a coordinate from the source to the target CRS.
func (s *CRSService) Transform(ctx context.Context, source, target string, c domain.Coordinate) (domain.Coordinate, error) {
	start := time.Now()
	out, err := applyPath(ctx, s, source, target, func(p *transform.Path) (domain.Coordinate, error) {
		return p.Apply(c)
	})
	s.observe("point", start, err)
	return out, err
}

// TransformAll moves every coordinate from the source to the target CRS.
func (s *CRSService) TransformAll(ctx context.Context, source, target string, cs []domain.Coordinate) ([]domain.Coordinate, error) {
	start := time.Now()
	out, err := applyPath(ctx, s, source, target, func(p *transform.Path) ([]domain.Coordinate, error) {
		return p.ApplyAll(cs)
	})
	s.observe("batch", start, err)
	return out, err
}

// TransformGeometry moves a geometry from the source to the target CRS.
func (s *CRSService) TransformGeometry(ctx context.Context, source, target string, g orb.Geometry) (orb.Geometry, error) {
	start := time.Now()
	out, err := applyPath(ctx, s, source, target, func(p *transform.Path) (orb.Geometry, error) {
		return transform.Geometry(p, g)
	})
	s.observe("geometry", start, err)
	return out, err
}

func (s *CRSService) observe(kind string, start time.Time, err error) {
	s.metrics.IncTransformCount(kind, err == nil)
	s.metrics.ObserveTransformDuration(kind, time.Since(start))
	if err != nil {
		s.logger.Debug("transformation failed", "kind", kind, "error", err)
	}
}

func applyPath[T any](ctx context.Context, s *CRSService, source, target string, apply func(*transform.Path) (T, error)) (T, error) {
	var zero T
	p, err := s.Path(ctx, source, target)
	if err != nil {
		return zero, err
	}
	return apply(p)
}
