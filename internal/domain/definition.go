package domain

import (
	"fmt"
	"strings"
)

// CRSKind is the kind of coordinate system a raw definition describes.
type CRSKind string

// CRS kinds.
const (
	KindGeographic CRSKind = "geographic"
	KindProjected  CRSKind = "projected"
	KindGeocentric CRSKind = "geocentric"
)

// RawDefinition is the primitive parameter set a definition source returns for a
// CRS code. Angles carry their unit by name; the registry converts them.
type RawDefinition struct {
	Code        string         `yaml:"code"`
	Identifiers []string       `yaml:"identifiers,omitempty"` // Further structured codes of the same CRS
	Name        string         `yaml:"name"`
	Aliases     []string       `yaml:"aliases,omitempty"` // Free-text names
	Kind        CRSKind        `yaml:"kind"`
	Base        string         `yaml:"base,omitempty"` // Code of the base geographic CRS
	Datum       *RawDatum      `yaml:"datum,omitempty"`
	Axes        []RawAxis      `yaml:"axes,omitempty"`
	Projection  *RawProjection `yaml:"projection,omitempty"`
}

// RawDatum describes a geodetic datum.
type RawDatum struct {
	Code          string            `yaml:"code"`
	Name          string            `yaml:"name"`
	Ellipsoid     RawEllipsoid      `yaml:"ellipsoid"`
	PrimeMeridian *RawPrimeMeridian `yaml:"prime_meridian,omitempty"`
	ToWGS84       *RawHelmert       `yaml:"to_wgs84,omitempty"`
}

// RawEllipsoid describes an ellipsoid. Exactly one of InverseFlattening and
// SemiMinorAxis must be set.
type RawEllipsoid struct {
	Code              string  `yaml:"code"`
	Name              string  `yaml:"name"`
	SemiMajorAxis     float64 `yaml:"semi_major_axis"`
	InverseFlattening float64 `yaml:"inverse_flattening,omitempty"`
	SemiMinorAxis     float64 `yaml:"semi_minor_axis,omitempty"`
	Unit              string  `yaml:"unit,omitempty"`
}

// RawPrimeMeridian describes a prime meridian.
type RawPrimeMeridian struct {
	Code      string  `yaml:"code"`
	Name      string  `yaml:"name"`
	Longitude float64 `yaml:"longitude"`
	Unit      string  `yaml:"unit,omitempty"`
}

// RawHelmert carries the seven Bursa-Wolf parameters to WGS84.
type RawHelmert struct {
	Code string  `yaml:"code,omitempty"`
	DX   float64 `yaml:"dx"`
	DY   float64 `yaml:"dy"`
	DZ   float64 `yaml:"dz"`
	EX   float64 `yaml:"ex"`
	EY   float64 `yaml:"ey"`
	EZ   float64 `yaml:"ez"`
	PPM  float64 `yaml:"ppm"`
}

// RawAxis describes one axis.
type RawAxis struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
	Unit      string `yaml:"unit,omitempty"`
}

// RawProjection describes the conversion of a projected CRS. Method holds every
// alias of the projection method in preference order.
type RawProjection struct {
	Method     []string       `yaml:"method"`
	Hemisphere string         `yaml:"hemisphere,omitempty"` // north (default) or south
	Parameters []RawParameter `yaml:"parameters"`
}

// RawParameter is one projection parameter with all its aliases.
type RawParameter struct {
	Codes []string `yaml:"codes"`
	Value float64  `yaml:"value"`
	Unit  string   `yaml:"unit,omitempty"`
}

// Codes returns the structured identifiers of the definition, primary code first.
func (d *RawDefinition) Codes() []CRSCode {
	codes := make([]CRSCode, 0, 1+len(d.Identifiers))
	for _, s := range append([]string{d.Code}, d.Identifiers...) {
		c := ParseCode(s)
		if c.IsStructured() {
			codes = append(codes, c)
		}
	}
	return codes
}

// Matches reports whether the definition is identified by the code, either by a
// structured identifier or, for unstructured codes, by name or alias.
func (d *RawDefinition) Matches(code CRSCode) bool {
	if code.IsStructured() {
		for _, c := range d.Codes() {
			if c.Equal(code) {
				return true
			}
		}
		return false
	}
	for _, alias := range append([]string{d.Name}, d.Aliases...) {
		if code.MatchesAlias(alias) {
			return true
		}
	}
	return false
}

// Validate checks the structural completeness of the definition.
func (d *RawDefinition) Validate() error {
	if !ParseCode(d.Code).IsStructured() {
		return d.fail("code", fmt.Sprintf("%q is not a CODESPACE:CODE identifier", d.Code))
	}

	switch d.Kind {
	case KindGeographic, KindGeocentric:
		if d.Datum == nil {
			return d.fail("datum", "required")
		}
	case KindProjected:
		if d.Base == "" && d.Datum == nil {
			return d.fail("base", "either base or datum is required")
		}
		if d.Projection == nil || len(d.Projection.Method) == 0 {
			return d.fail("projection.method", "required")
		}
		switch strings.ToLower(d.Projection.Hemisphere) {
		case "", "north", "south":
		default:
			return d.fail("projection.hemisphere", "must be north or south")
		}
	default:
		return d.fail("kind", fmt.Sprintf("unknown kind %q", d.Kind))
	}

	if d.Datum != nil {
		e := d.Datum.Ellipsoid
		if (e.InverseFlattening != 0) == (e.SemiMinorAxis != 0) {
			return d.fail("datum.ellipsoid", "exactly one of inverse_flattening and semi_minor_axis is required")
		}
	}

	want := 2
	if d.Kind == KindGeocentric {
		want = 3
	}
	if len(d.Axes) != 0 && len(d.Axes) != want {
		return d.fail("axes", fmt.Sprintf("%s CRS needs %d axes, got %d", d.Kind, want, len(d.Axes)))
	}
	return nil
}

func (d *RawDefinition) fail(field, msg string) error {
	return &DefinitionError{Code: d.Code, Field: field, Message: msg}
}
