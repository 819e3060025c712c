// Package crs defines the resolved coordinate reference systems and the
// synthesizer for WMS auto projections.
package crs

import (
	"fmt"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

// CoordinateSystem is a resolved, immutable CRS. The set of implementations is
// closed: *Geographic, *Projected and *Geocentric.
type CoordinateSystem interface {
	Code() domain.CRSCode
	Name() string
	Kind() domain.CRSKind
	Datum() *domain.Datum
	Axes() []domain.Axis
	isCoordinateSystem()
}

// Geographic is a two-dimensional geodetic CRS.
type Geographic struct {
	code  domain.CRSCode
	name  string
	datum *domain.Datum
	axes  [2]domain.Axis
	order axisOrder
}

// NewGeographic creates a geographic CRS. Nil axes default to longitude,
// latitude in degrees.
func NewGeographic(code domain.CRSCode, name string, datum *domain.Datum, axes []domain.Axis) (*Geographic, error) {
	if datum == nil {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "datum", Message: "required"}
	}
	if axes == nil {
		axes = domain.LonLatAxes
	}
	if len(axes) != 2 {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "axes",
			Message: fmt.Sprintf("geographic CRS needs 2 axes, got %d", len(axes))}
	}
	order, err := newAxisOrder(code, axes, domain.UnitKindAngular)
	if err != nil {
		return nil, err
	}
	return &Geographic{
		code:  code,
		name:  name,
		datum: datum,
		axes:  [2]domain.Axis{axes[0], axes[1]},
		order: order,
	}, nil
}

func (g *Geographic) Code() domain.CRSCode { return g.code }
func (g *Geographic) Name() string         { return g.name }
func (g *Geographic) Kind() domain.CRSKind { return domain.KindGeographic }
func (g *Geographic) Datum() *domain.Datum { return g.datum }
func (g *Geographic) Axes() []domain.Axis  { return g.axes[:] }
func (g *Geographic) isCoordinateSystem()  {}
func (g *Geographic) String() string       { return describe(g) }

// ToLonLat converts a coordinate in the CRS's axis order and units to
// longitude and latitude in radians east of Greenwich.
func (g *Geographic) ToLonLat(c domain.Coordinate) (lon, lat, h float64) {
	lon, lat = g.order.normalize(c)
	return lon + g.datum.PrimeMeridian.Longitude, lat, c.Z
}

// FromLonLat is the inverse of ToLonLat.
func (g *Geographic) FromLonLat(lon, lat, h float64) domain.Coordinate {
	return g.order.denormalize(lon-g.datum.PrimeMeridian.Longitude, lat, h)
}

// Projected is a map projection applied to a geographic base CRS.
type Projected struct {
	code       domain.CRSCode
	name       string
	base       *Geographic
	projection projection.Projection
	axes       [2]domain.Axis
	order      axisOrder
}

// NewProjected creates a projected CRS. Nil axes default to easting, northing in
// metres. The projection must be bound to the base datum's ellipsoid.
func NewProjected(code domain.CRSCode, name string, base *Geographic, p projection.Projection, axes []domain.Axis) (*Projected, error) {
	if base == nil {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "base", Message: "a geographic base CRS is required"}
	}
	if p == nil {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "projection", Message: "required"}
	}
	if !p.Ellipsoid().SameShape(base.Datum().Ellipsoid) {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "projection",
			Message: "projection ellipsoid differs from the base datum ellipsoid"}
	}
	if axes == nil {
		axes = domain.EastNorthAxes
	}
	if len(axes) != 2 {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "axes",
			Message: fmt.Sprintf("projected CRS needs 2 axes, got %d", len(axes))}
	}
	order, err := newAxisOrder(code, axes, domain.UnitKindLinear)
	if err != nil {
		return nil, err
	}
	return &Projected{
		code:       code,
		name:       name,
		base:       base,
		projection: p,
		axes:       [2]domain.Axis{axes[0], axes[1]},
		order:      order,
	}, nil
}

func (p *Projected) Code() domain.CRSCode              { return p.code }
func (p *Projected) Name() string                      { return p.name }
func (p *Projected) Kind() domain.CRSKind              { return domain.KindProjected }
func (p *Projected) Datum() *domain.Datum              { return p.base.datum }
func (p *Projected) Axes() []domain.Axis               { return p.axes[:] }
func (p *Projected) Base() *Geographic                 { return p.base }
func (p *Projected) Projection() projection.Projection { return p.projection }
func (p *Projected) isCoordinateSystem()               {}
func (p *Projected) String() string                    { return describe(p) }

// ToEastNorth converts a coordinate to easting and northing in metres.
func (p *Projected) ToEastNorth(c domain.Coordinate) (e, n, h float64) {
	e, n = p.order.normalize(c)
	return e, n, c.Z
}

// FromEastNorth is the inverse of ToEastNorth.
func (p *Projected) FromEastNorth(e, n, h float64) domain.Coordinate {
	return p.order.denormalize(e, n, h)
}

// Geocentric is an earth-centred cartesian CRS.
type Geocentric struct {
	code   domain.CRSCode
	name   string
	datum  *domain.Datum
	axes   [3]domain.Axis
	factor [3]float64
}

// NewGeocentric creates a geocentric CRS. Nil axes default to X, Y, Z in metres.
func NewGeocentric(code domain.CRSCode, name string, datum *domain.Datum, axes []domain.Axis) (*Geocentric, error) {
	if datum == nil {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "datum", Message: "required"}
	}
	if axes == nil {
		axes = domain.GeocentricAxes
	}
	if len(axes) != 3 {
		return nil, &domain.DefinitionError{Code: code.String(), Field: "axes",
			Message: fmt.Sprintf("geocentric CRS needs 3 axes, got %d", len(axes))}
	}
	g := &Geocentric{code: code, name: name, datum: datum}
	for i, a := range axes {
		u := a.Unit
		if u == nil {
			u = domain.Metre
		}
		if u.Kind != domain.UnitKindLinear {
			return nil, &domain.DefinitionError{Code: code.String(), Field: "axes",
				Message: fmt.Sprintf("axis %q needs a linear unit", a.Name)}
		}
		g.axes[i] = a
		g.factor[i] = u.Factor
	}
	return g, nil
}

func (g *Geocentric) Code() domain.CRSCode { return g.code }
func (g *Geocentric) Name() string         { return g.name }
func (g *Geocentric) Kind() domain.CRSKind { return domain.KindGeocentric }
func (g *Geocentric) Datum() *domain.Datum { return g.datum }
func (g *Geocentric) Axes() []domain.Axis  { return g.axes[:] }
func (g *Geocentric) isCoordinateSystem()  {}
func (g *Geocentric) String() string       { return describe(g) }

// ToMetres converts a coordinate to X, Y, Z in metres.
func (g *Geocentric) ToMetres(c domain.Coordinate) (x, y, z float64) {
	return c.X * g.factor[0], c.Y * g.factor[1], c.Z * g.factor[2]
}

// FromMetres is the inverse of ToMetres.
func (g *Geocentric) FromMetres(x, y, z float64) domain.Coordinate {
	return domain.Coordinate{X: x / g.factor[0], Y: y / g.factor[1], Z: z / g.factor[2]}
}

// Key returns the cache key of a CRS.
func Key(c CoordinateSystem) string {
	return c.Code().Key()
}

func describe(c CoordinateSystem) string {
	if c.Name() == "" {
		return c.Code().String()
	}
	return fmt.Sprintf("%s (%s)", c.Code(), c.Name())
}
