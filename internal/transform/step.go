// Package transform composes and applies transformation paths between resolved
// coordinate reference systems, pivoting datum shifts through WGS84.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

// Step is one stage of a path. Between steps a coordinate travels as a
// vector whose meaning depends on the stage: CRS axes, (lon, lat, h) in
// radians east of Greenwich, (easting, northing, h) in metres, or geocentric
// X, Y, Z in metres.
type Step interface {
	Name() string
	Apply(v r3.Vec) (r3.Vec, error)
}

func toCoordinate(v r3.Vec) domain.Coordinate {
	return domain.Coordinate{X: v.X, Y: v.Y, Z: v.Z}
}

func fromCoordinate(c domain.Coordinate) r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// geographicAxes converts between a geographic CRS's axes and (lon, lat, h).
type geographicAxes struct {
	crs     *crs.Geographic
	inverse bool
}

func (s geographicAxes) Name() string {
	if s.inverse {
		return fmt.Sprintf("to %s axes", s.crs.Code())
	}
	return fmt.Sprintf("from %s axes", s.crs.Code())
}

func (s geographicAxes) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		return fromCoordinate(s.crs.FromLonLat(v.X, v.Y, v.Z)), nil
	}
	lon, lat, h := s.crs.ToLonLat(toCoordinate(v))
	return r3.Vec{X: lon, Y: lat, Z: h}, nil
}

// projectedAxes converts between a projected CRS's axes and (easting, northing, h).
type projectedAxes struct {
	crs     *crs.Projected
	inverse bool
}

func (s projectedAxes) Name() string {
	if s.inverse {
		return fmt.Sprintf("to %s axes", s.crs.Code())
	}
	return fmt.Sprintf("from %s axes", s.crs.Code())
}

func (s projectedAxes) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		return fromCoordinate(s.crs.FromEastNorth(v.X, v.Y, v.Z)), nil
	}
	e, n, h := s.crs.ToEastNorth(toCoordinate(v))
	return r3.Vec{X: e, Y: n, Z: h}, nil
}

// geocentricAxes converts between a geocentric CRS's units and metres.
type geocentricAxes struct {
	crs     *crs.Geocentric
	inverse bool
}

func (s geocentricAxes) Name() string {
	if s.inverse {
		return fmt.Sprintf("to %s axes", s.crs.Code())
	}
	return fmt.Sprintf("from %s axes", s.crs.Code())
}

func (s geocentricAxes) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		return fromCoordinate(s.crs.FromMetres(v.X, v.Y, v.Z)), nil
	}
	x, y, z := s.crs.ToMetres(toCoordinate(v))
	return r3.Vec{X: x, Y: y, Z: z}, nil
}

// projectionStep applies a map projection. Projection longitudes are relative
// to the base CRS's prime meridian, pm is its Greenwich longitude.
type projectionStep struct {
	proj    projection.Projection
	pm      float64
	inverse bool
}

func (s projectionStep) Name() string {
	if s.inverse {
		return "inverse " + s.proj.Method().String()
	}
	return s.proj.Method().String()
}

func (s projectionStep) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		lat, lon, err := s.proj.Inverse(v.X, v.Y)
		if err != nil {
			return r3.Vec{}, err
		}
		return r3.Vec{X: lon + s.pm, Y: lat, Z: v.Z}, nil
	}
	x, y, err := s.proj.Forward(v.Y, v.X-s.pm)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: x, Y: y, Z: v.Z}, nil
}

// geocentricConversion converts (lon, lat, h) to geocentric X, Y, Z on an
// ellipsoid, or back when inverse is set.
type geocentricConversion struct {
	ellipsoid domain.Ellipsoid
	inverse   bool
}

func (s geocentricConversion) Name() string {
	if s.inverse {
		return "geocentric to geographic on " + s.ellipsoid.Name
	}
	return "geographic to geocentric on " + s.ellipsoid.Name
}

func (s geocentricConversion) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		lat, lon, h := s.ellipsoid.FromGeocentric(v)
		return r3.Vec{X: lon, Y: lat, Z: h}, nil
	}
	return s.ellipsoid.ToGeocentric(v.Y, v.X, v.Z), nil
}

// helmertStep shifts geocentric coordinates to WGS84, or from WGS84 when
// inverse is set.
type helmertStep struct {
	datum   *domain.Datum
	inverse bool
}

func (s helmertStep) Name() string {
	if s.inverse {
		return fmt.Sprintf("helmert WGS 84 to %s", s.datum.Code)
	}
	return fmt.Sprintf("helmert %s to WGS 84", s.datum.Code)
}

func (s helmertStep) Apply(v r3.Vec) (r3.Vec, error) {
	if s.inverse {
		return s.datum.ToWGS84.ApplyInverse(v), nil
	}
	return s.datum.ToWGS84.Apply(v), nil
}
