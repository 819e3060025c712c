package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ellipsoid is a reference ellipsoid of revolution. Either the inverse flattening
// or the semi-minor axis is authoritative; the other one is derived.
type Ellipsoid struct {
	Code              CRSCode
	Name              string
	SemiMajorAxis     float64 // metres
	SemiMinorAxis     float64 // metres
	InverseFlattening float64
	Unit              *Unit

	flattening float64
	e2         float64
}

// NewEllipsoid creates an ellipsoid from semi-major axis and inverse flattening,
// both in metres / unitless.
func NewEllipsoid(code CRSCode, name string, semiMajor, inverseFlattening float64) (Ellipsoid, error) {
	if !(semiMajor > 0) || math.IsInf(semiMajor, 0) {
		return Ellipsoid{}, &ValidationError{
			Field:      "semi_major_axis",
			Value:      semiMajor,
			Constraint: "> 0",
			Message:    "semi-major axis must be positive",
		}
	}
	if !(inverseFlattening > 1) || math.IsInf(inverseFlattening, 0) {
		return Ellipsoid{}, &ValidationError{
			Field:      "inverse_flattening",
			Value:      inverseFlattening,
			Constraint: "0 < 1/invf < 1",
			Message:    "flattening must be between 0 and 1",
		}
	}

	f := 1 / inverseFlattening
	return Ellipsoid{
		Code:              code,
		Name:              name,
		SemiMajorAxis:     semiMajor,
		SemiMinorAxis:     semiMajor * (1 - f),
		InverseFlattening: inverseFlattening,
		Unit:              Metre,
		flattening:        f,
		e2:                f * (2 - f),
	}, nil
}

// NewEllipsoidFromAxes creates an ellipsoid from its semi-major and semi-minor axes.
func NewEllipsoidFromAxes(code CRSCode, name string, semiMajor, semiMinor float64) (Ellipsoid, error) {
	if !(semiMinor > 0) || !(semiMinor < semiMajor) {
		return Ellipsoid{}, &ValidationError{
			Field:      "semi_minor_axis",
			Value:      semiMinor,
			Constraint: fmt.Sprintf("(0, %g)", semiMajor),
			Message:    "semi-minor axis must be positive and smaller than the semi-major axis",
		}
	}
	e, err := NewEllipsoid(code, name, semiMajor, semiMajor/(semiMajor-semiMinor))
	if err != nil {
		return Ellipsoid{}, err
	}
	e.SemiMinorAxis = semiMinor
	return e, nil
}

// NewSphere creates a sphere. Spheres are only used by the spherical auto projections.
func NewSphere(code CRSCode, name string, radius float64) (Ellipsoid, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Ellipsoid{}, &ValidationError{
			Field:      "radius",
			Value:      radius,
			Constraint: "> 0",
			Message:    "radius must be positive",
		}
	}
	return Ellipsoid{
		Code:          code,
		Name:          name,
		SemiMajorAxis: radius,
		SemiMinorAxis: radius,
		Unit:          Metre,
	}, nil
}

// Flattening returns f.
func (e Ellipsoid) Flattening() float64 {
	return e.flattening
}

// EccentricitySquared returns e².
func (e Ellipsoid) EccentricitySquared() float64 {
	return e.e2
}

// Eccentricity returns e.
func (e Ellipsoid) Eccentricity() float64 {
	return math.Sqrt(e.e2)
}

// SecondEccentricitySquared returns e'².
func (e Ellipsoid) SecondEccentricitySquared() float64 {
	return e.e2 / (1 - e.e2)
}

// IsSphere reports whether the ellipsoid has no flattening.
func (e Ellipsoid) IsSphere() bool {
	return e.e2 == 0
}

// PrimeVerticalRadius returns the radius of curvature in the prime vertical at lat.
func (e Ellipsoid) PrimeVerticalRadius(lat float64) float64 {
	s := math.Sin(lat)
	return e.SemiMajorAxis / math.Sqrt(1-e.e2*s*s)
}

// SameShape reports whether both ellipsoids have identical parameters.
func (e Ellipsoid) SameShape(o Ellipsoid) bool {
	return e.SemiMajorAxis == o.SemiMajorAxis && e.e2 == o.e2
}

// ToGeocentric converts geodetic latitude, longitude (radians) and ellipsoidal
// height (metres) to geocentric cartesian coordinates.
func (e Ellipsoid) ToGeocentric(lat, lon, h float64) r3.Vec {
	n := e.PrimeVerticalRadius(lat)
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return r3.Vec{
		X: (n + h) * cosLat * cosLon,
		Y: (n + h) * cosLat * sinLon,
		Z: (n*(1-e.e2) + h) * sinLat,
	}
}

const (
	geocentricTolerance     = 1e-14
	geocentricMaxIterations = 30
)

// FromGeocentric converts geocentric cartesian coordinates to geodetic latitude,
// longitude (radians) and ellipsoidal height (metres).
func (e Ellipsoid) FromGeocentric(v r3.Vec) (lat, lon, h float64) {
	a := e.SemiMajorAxis
	p := math.Hypot(v.X, v.Y)

	if p < 1e-9 {
		b := a * math.Sqrt(1-e.e2)
		if v.Z < 0 {
			return -math.Pi / 2, 0, -v.Z - b
		}
		return math.Pi / 2, 0, v.Z - b
	}

	lon = math.Atan2(v.Y, v.X)
	lat = math.Atan2(v.Z, p*(1-e.e2))
	for i := 0; i < geocentricMaxIterations; i++ {
		n := e.PrimeVerticalRadius(lat)
		next := math.Atan2(v.Z+e.e2*n*math.Sin(lat), p)
		done := math.Abs(next-lat) < geocentricTolerance
		lat = next
		if done {
			break
		}
	}

	sinLat, cosLat := math.Sincos(lat)
	h = p*cosLat + v.Z*sinLat - a*math.Sqrt(1-e.e2*sinLat*sinLat)
	return lat, lon, h
}
