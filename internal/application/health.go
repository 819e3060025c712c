package application

import (
	"context"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/input"
	"github.com/jobrunner/meridian/internal/transform"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry *Registry
	composer *transform.Composer
	probe    domain.CRSCode
}

// NewHealthService creates a new health service. Readiness resolves probe,
// which defaults to EPSG:4326.
func NewHealthService(registry *Registry, composer *transform.Composer, probe string) *HealthService {
	if probe == "" {
		probe = "EPSG:4326"
	}
	return &HealthService{
		registry: registry,
		composer: composer,
		probe:    domain.ParseCode(probe),
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return !s.registry.IsClosed()
}

// IsReady returns true if the probe code resolves.
func (s *HealthService) IsReady(ctx context.Context) bool {
	if s.registry.IsClosed() {
		return false
	}
	_, err := s.registry.Resolve(ctx, s.probe)
	return err == nil
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	ready := s.IsReady(ctx)

	components := map[string]string{
		"registry":    "ok",
		"definitions": "ok",
	}
	if s.registry.IsClosed() {
		components["registry"] = "closed"
	}
	if !ready {
		components["definitions"] = "probe " + s.probe.String() + " unresolved"
	}

	return input.HealthDetails{
		Healthy:     s.IsHealthy(ctx),
		Ready:       ready,
		CRSCached:   s.registry.Len(),
		PathsCached: s.composer.Len(),
		Components:  components,
	}
}
