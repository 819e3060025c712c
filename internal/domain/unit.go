package domain

import "math"

// UnitKind classifies what a unit measures.
type UnitKind int

// Unit kinds.
const (
	UnitKindLinear UnitKind = iota
	UnitKindAngular
	UnitKindScale
)

// String returns the string representation of the unit kind.
func (k UnitKind) String() string {
	switch k {
	case UnitKindLinear:
		return "linear"
	case UnitKindAngular:
		return "angular"
	case UnitKindScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Unit is a unit of measure with a conversion factor to its base unit
// (metre, radian or unity).
type Unit struct {
	Name   string
	Code   CRSCode
	Kind   UnitKind
	Factor float64
}

// Well-known units.
var (
	Metre           = &Unit{Name: "metre", Code: NewCRSCode("EPSG", "9001"), Kind: UnitKindLinear, Factor: 1}
	Foot            = &Unit{Name: "foot", Code: NewCRSCode("EPSG", "9002"), Kind: UnitKindLinear, Factor: 0.3048}
	USSurveyFoot    = &Unit{Name: "US survey foot", Code: NewCRSCode("EPSG", "9003"), Kind: UnitKindLinear, Factor: 1200.0 / 3937.0}
	Kilometre       = &Unit{Name: "kilometre", Code: NewCRSCode("EPSG", "9036"), Kind: UnitKindLinear, Factor: 1000}
	Radian          = &Unit{Name: "radian", Code: NewCRSCode("EPSG", "9101"), Kind: UnitKindAngular, Factor: 1}
	Degree          = &Unit{Name: "degree", Code: NewCRSCode("EPSG", "9102"), Kind: UnitKindAngular, Factor: math.Pi / 180}
	ArcSecond       = &Unit{Name: "arc-second", Code: NewCRSCode("EPSG", "9104"), Kind: UnitKindAngular, Factor: math.Pi / (180 * 3600)}
	Grad            = &Unit{Name: "grad", Code: NewCRSCode("EPSG", "9105"), Kind: UnitKindAngular, Factor: math.Pi / 200}
	Unity           = &Unit{Name: "unity", Code: NewCRSCode("EPSG", "9201"), Kind: UnitKindScale, Factor: 1}
	PartsPerMillion = &Unit{Name: "parts per million", Code: NewCRSCode("EPSG", "9202"), Kind: UnitKindScale, Factor: 1e-6}
)

var knownUnits = []*Unit{Metre, Foot, USSurveyFoot, Kilometre, Radian, Degree, ArcSecond, Grad, Unity, PartsPerMillion}

var unitAliases = map[string]*Unit{
	"m":       Metre,
	"meter":   Metre,
	"metres":  Metre,
	"meters":  Metre,
	"ft":      Foot,
	"us ft":   USSurveyFoot,
	"km":      Kilometre,
	"rad":     Radian,
	"deg":     Degree,
	"degrees": Degree,
	"dd":      Degree,
	"arcsec":  ArcSecond,
	"gon":     Grad,
	"ppm":     PartsPerMillion,
	"scale":   Unity,
}

// LookupUnit finds a unit by name, alias or code (e.g. "EPSG:9102").
func LookupUnit(name string) (*Unit, bool) {
	code := ParseCode(name)
	n := NormalizeName(name)
	for _, u := range knownUnits {
		if code.IsStructured() && u.Code.Equal(code) {
			return u, true
		}
		if NormalizeName(u.Name) == n {
			return u, true
		}
	}
	if u, ok := unitAliases[n]; ok {
		return u, true
	}
	return nil, false
}

// ToBase converts a value in this unit to the base unit.
func (u *Unit) ToBase(v float64) float64 {
	return v * u.Factor
}

// FromBase converts a value in the base unit to this unit.
func (u *Unit) FromBase(v float64) float64 {
	return v / u.Factor
}

// String returns the unit name.
func (u *Unit) String() string {
	return u.Name
}
