// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

// CRSService defines the primary port for CRS resolution and coordinate
// transformation.
type CRSService interface {
	// Resolve returns the CRS for a code. AUTO and AUTO2 codes are synthesized.
	Resolve(ctx context.Context, code string) (crs.CoordinateSystem, error)

	// Transform moves a coordinate from the source to the target CRS.
	Transform(ctx context.Context, source, target string, c domain.Coordinate) (domain.Coordinate, error)

	// TransformAll moves every coordinate from the source to the target CRS.
	TransformAll(ctx context.Context, source, target string, cs []domain.Coordinate) ([]domain.Coordinate, error)

	// TransformGeometry moves a geometry from the source to the target CRS.
	TransformGeometry(ctx context.Context, source, target string, g orb.Geometry) (orb.Geometry, error)

	// SynthesizeAuto builds a WMS auto CRS around a reference point in degrees.
	SynthesizeAuto(ctx context.Context, id int, lon0, lat0 float64) (*crs.Projected, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy     bool              // Overall health status
	Ready       bool              // Ready to accept requests
	CRSCached   int               // Number of published CRS keys
	PathsCached int               // Number of cached transformation paths
	Components  map[string]string // Component statuses
}
