package domain

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PrimeMeridian is the zero longitude of a datum.
type PrimeMeridian struct {
	Code      CRSCode
	Name      string
	Longitude float64 // radians east of Greenwich
}

// Greenwich is the Greenwich prime meridian.
var Greenwich = PrimeMeridian{
	Code: NewCRSCode("EPSG", "8901"),
	Name: "Greenwich",
}

// IsGreenwich reports whether the meridian has no offset.
func (p PrimeMeridian) IsGreenwich() bool {
	return p.Longitude == 0
}

const arcSecond = math.Pi / (180 * 3600)

// Helmert is a seven-parameter position-vector transformation to WGS84.
type Helmert struct {
	Code CRSCode
	DX   float64 // metres
	DY   float64 // metres
	DZ   float64 // metres
	EX   float64 // arc-seconds
	EY   float64 // arc-seconds
	EZ   float64 // arc-seconds
	PPM  float64 // parts per million
}

// HasValues reports whether the transformation is anything but the identity placeholder.
func (h *Helmert) HasValues() bool {
	if h == nil {
		return false
	}
	return h.DX != 0 || h.DY != 0 || h.DZ != 0 ||
		h.EX != 0 || h.EY != 0 || h.EZ != 0 || h.PPM != 0
}

func (h *Helmert) translation() r3.Vec {
	return r3.Vec{X: h.DX, Y: h.DY, Z: h.DZ}
}

// Apply shifts a geocentric position with the small-angle similarity transform
// X' = T + (1 + ppm·1e-6)·R·X.
func (h *Helmert) Apply(v r3.Vec) r3.Vec {
	ex, ey, ez := h.EX*arcSecond, h.EY*arcSecond, h.EZ*arcSecond
	rotated := r3.Vec{
		X: v.X - ez*v.Y + ey*v.Z,
		Y: ez*v.X + v.Y - ex*v.Z,
		Z: -ey*v.X + ex*v.Y + v.Z,
	}
	return r3.Add(h.translation(), r3.Scale(1+h.PPM*1e-6, rotated))
}

// ApplyInverse undoes Apply with the first-order inverse
// X = (1 - ppm·1e-6)·Rᵀ·(X' - T). It is not an exact matrix inverse.
func (h *Helmert) ApplyInverse(v r3.Vec) r3.Vec {
	ex, ey, ez := h.EX*arcSecond, h.EY*arcSecond, h.EZ*arcSecond
	d := r3.Sub(v, h.translation())
	rotated := r3.Vec{
		X: d.X + ez*d.Y - ey*d.Z,
		Y: -ez*d.X + d.Y + ex*d.Z,
		Z: ey*d.X - ex*d.Y + d.Z,
	}
	return r3.Scale(1-h.PPM*1e-6, rotated)
}

// Datum is a geodetic datum. Datums are shared read-only by every CRS referencing them.
type Datum struct {
	Code          CRSCode
	Name          string
	Ellipsoid     Ellipsoid
	PrimeMeridian PrimeMeridian
	ToWGS84       *Helmert // nil when no shift is known
}

// WGS84 identifiers.
var (
	WGS84DatumCode     = NewCRSCode("EPSG", "6326")
	WGS84EllipsoidCode = NewCRSCode("EPSG", "7030")
)

// WGS84 ellipsoid constants.
const (
	WGS84SemiMajorAxis     = 6378137.0
	WGS84InverseFlattening = 298.257223563
)

// WGS84Ellipsoid returns the WGS84 ellipsoid.
func WGS84Ellipsoid() Ellipsoid {
	e, _ := NewEllipsoid(WGS84EllipsoidCode, "WGS 84", WGS84SemiMajorAxis, WGS84InverseFlattening)
	return e
}

// WGS84Datum is the pivot datum of every transformation.
var WGS84Datum = &Datum{
	Code:          WGS84DatumCode,
	Name:          "World Geodetic System 1984",
	Ellipsoid:     WGS84Ellipsoid(),
	PrimeMeridian: Greenwich,
}

// IsWGS84 reports whether the datum is WGS84 by code.
func (d *Datum) IsWGS84() bool {
	return d != nil && d.Code.Equal(WGS84DatumCode)
}

// CanReachWGS84 reports whether coordinates on the datum can be shifted to WGS84.
func (d *Datum) CanReachWGS84() bool {
	return d.IsWGS84() || d.ToWGS84.HasValues()
}

// SameAs reports whether both datums are the same object or carry the same
// structured code. Datums without a structured code only match themselves.
func (d *Datum) SameAs(o *Datum) bool {
	if d == nil || o == nil {
		return false
	}
	if d == o {
		return true
	}
	return d.Code.IsStructured() && o.Code.IsStructured() && d.Code.Equal(o.Code)
}
