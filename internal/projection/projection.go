package projection

import (
	"fmt"
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// Projection maps geodetic latitude/longitude on its ellipsoid to planar
// easting/northing in metres. Implementations are immutable and safe for
// concurrent use.
type Projection interface {
	Method() Method
	Parameters() Parameters
	Ellipsoid() domain.Ellipsoid
	// Forward projects (lat, lon) in radians to (x, y) in metres.
	Forward(lat, lon float64) (x, y float64, err error)
	// Inverse maps (x, y) in metres back to (lat, lon) in radians.
	Inverse(x, y float64) (lat, lon float64, err error)
}

// Hemisphere selects the axis convention of a transverse Mercator projection.
// South is the south-orientated variant (EPSG 9808): both axes are reversed
// before the false origin is added. It does not pick a false northing;
// southern-hemisphere grids such as UTM south keep North and carry
// FalseNorthing 10000000 instead.
type Hemisphere int

// Hemispheres.
const (
	North Hemisphere = iota
	South            // south-orientated, both axes reversed
)

// String returns the string representation of the hemisphere.
func (h Hemisphere) String() string {
	if h == South {
		return "south"
	}
	return "north"
}

// Parameters holds the projection parameters. Angles are radians, false
// origin values metres.
type Parameters struct {
	LatitudeOfOrigin  float64
	LongitudeOfOrigin float64
	FalseEasting      float64
	FalseNorthing     float64
	ScaleFactor       float64 // 0 is read as 1
	TrueScaleLatitude float64
	FirstParallel     float64
	SecondParallel    float64
	Hemisphere        Hemisphere

	present uint16
}

// Set assigns a classified parameter value and records its presence.
// NotSupported values are ignored.
func (p *Parameters) Set(kind ParameterKind, value float64) {
	switch kind {
	case LatitudeOfNaturalOrigin:
		p.LatitudeOfOrigin = value
	case LongitudeOfNaturalOrigin:
		p.LongitudeOfOrigin = value
	case FalseEasting:
		p.FalseEasting = value
	case FalseNorthing:
		p.FalseNorthing = value
	case ScaleAtNaturalOrigin:
		p.ScaleFactor = value
	case TrueScaleLatitude:
		p.TrueScaleLatitude = value
	case FirstParallelLatitude:
		p.FirstParallel = value
	case SecondParallelLatitude:
		p.SecondParallel = value
	default:
		return
	}
	p.present |= 1 << uint(kind)
}

// Has reports whether the parameter was assigned through Set.
func (p Parameters) Has(kind ParameterKind) bool {
	return p.present&(1<<uint(kind)) != 0
}

// Get returns the value of an assigned parameter.
func (p Parameters) Get(kind ParameterKind) (float64, bool) {
	if !p.Has(kind) {
		return 0, false
	}
	switch kind {
	case LatitudeOfNaturalOrigin:
		return p.LatitudeOfOrigin, true
	case LongitudeOfNaturalOrigin:
		return p.LongitudeOfOrigin, true
	case FalseEasting:
		return p.FalseEasting, true
	case FalseNorthing:
		return p.FalseNorthing, true
	case ScaleAtNaturalOrigin:
		return p.ScaleFactor, true
	case TrueScaleLatitude:
		return p.TrueScaleLatitude, true
	case FirstParallelLatitude:
		return p.FirstParallel, true
	case SecondParallelLatitude:
		return p.SecondParallel, true
	}
	return 0, false
}

// Scale returns the scale factor at the natural origin.
func (p Parameters) Scale() float64 {
	if p.ScaleFactor == 0 {
		return 1
	}
	return p.ScaleFactor
}

func (p Parameters) validate(m Method) error {
	values := []struct {
		field string
		v     float64
	}{
		{"latitude_of_origin", p.LatitudeOfOrigin},
		{"longitude_of_origin", p.LongitudeOfOrigin},
		{"false_easting", p.FalseEasting},
		{"false_northing", p.FalseNorthing},
		{"scale_factor", p.ScaleFactor},
		{"true_scale_latitude", p.TrueScaleLatitude},
		{"first_parallel", p.FirstParallel},
		{"second_parallel", p.SecondParallel},
	}
	for _, f := range values {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &domain.ValidationError{Field: f.field, Value: f.v, Constraint: "finite",
				Message: fmt.Sprintf("%s parameter must be finite", m)}
		}
	}
	for _, f := range []struct {
		field string
		v     float64
	}{
		{"latitude_of_origin", p.LatitudeOfOrigin},
		{"true_scale_latitude", p.TrueScaleLatitude},
		{"first_parallel", p.FirstParallel},
		{"second_parallel", p.SecondParallel},
	} {
		if math.Abs(f.v) > math.Pi/2+angleEpsilon {
			return &domain.ValidationError{Field: f.field, Value: f.v, Constraint: "[-π/2, π/2]",
				Message: "latitude out of range"}
		}
	}
	if p.ScaleFactor < 0 {
		return &domain.ValidationError{Field: "scale_factor", Value: p.ScaleFactor, Constraint: "> 0",
			Message: "scale factor must be positive"}
	}
	return nil
}

// New builds a projection of the given method bound to the ellipsoid.
func New(m Method, p Parameters, e domain.Ellipsoid) (Projection, error) {
	if m == Unsupported {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProjection, m)
	}
	if err := p.validate(m); err != nil {
		return nil, err
	}

	b := base{method: m, params: p, ellipsoid: e, a: e.SemiMajorAxis, e: e.Eccentricity(), e2: e.EccentricitySquared()}

	switch m {
	case TransverseMercator:
		return newTransverseMercator(b)
	case LambertConformalConic:
		return newLambertConformalConic(b)
	case LambertAzimuthalEqualArea:
		return newLambertAzimuthalEqualArea(b)
	case StereographicAzimuthal:
		return newStereographic(b)
	case StereographicAlternative:
		return newStereographicAlternative(b)
	case Orthographic:
		return newOrthographic(b)
	case Equirectangular:
		return newEquirectangular(b)
	case Mollweide:
		return newMollweide(b)
	default:
		return nil, fmt.Errorf("%w: method %d", domain.ErrUnsupportedProjection, int(m))
	}
}

// base carries what every projection shares.
type base struct {
	method    Method
	params    Parameters
	ellipsoid domain.Ellipsoid
	a         float64
	e         float64
	e2        float64
}

func (b *base) Method() Method              { return b.method }
func (b *base) Parameters() Parameters      { return b.params }
func (b *base) Ellipsoid() domain.Ellipsoid { return b.ellipsoid }

func (b *base) forwardError(lat, lon float64, reason string) error {
	return &domain.ProjectionDomainError{Method: b.method.String(), A: lat, B: lon, Reason: reason}
}

func (b *base) inverseError(x, y float64, reason string) error {
	return &domain.ProjectionDomainError{Method: b.method.String(), A: x, B: y, Inverse: true, Reason: reason}
}

// checkForward rejects non-finite input and latitudes beyond the poles.
func (b *base) checkForward(lat, lon float64) error {
	if !finite(lat) || !finite(lon) {
		return b.forwardError(lat, lon, "non-finite coordinate")
	}
	if math.Abs(lat) > math.Pi/2+angleEpsilon {
		return b.forwardError(lat, lon, "latitude beyond pole")
	}
	return nil
}

func (b *base) checkInverse(x, y float64) error {
	if !finite(x) || !finite(y) {
		return b.inverseError(x, y, "non-finite coordinate")
	}
	return nil
}

// checkResult turns NaN results into domain errors.
func (b *base) checkResult(inLat, inLon, x, y float64) error {
	if !finite(x) || !finite(y) {
		return b.forwardError(inLat, inLon, "no finite projection")
	}
	return nil
}

func (b *base) checkInverseResult(inX, inY, lat, lon float64) error {
	if !finite(lat) || !finite(lon) || math.Abs(lat) > math.Pi/2+angleEpsilon {
		return b.inverseError(inX, inY, "no finite inverse")
	}
	return nil
}
