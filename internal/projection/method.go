// Package projection classifies projection methods and implements their forward
// and inverse formulas. Angles are radians, lengths metres.
package projection

// Method is one of the supported projection methods.
type Method int

// Projection methods. Orthographic, Equirectangular and Mollweide are only
// produced by the auto CRS synthesizer.
const (
	Unsupported Method = iota
	TransverseMercator
	LambertConformalConic
	LambertAzimuthalEqualArea
	StereographicAzimuthal
	StereographicAlternative
	Orthographic
	Equirectangular
	Mollweide
)

// String returns the string representation of the method.
func (m Method) String() string {
	switch m {
	case TransverseMercator:
		return "Transverse Mercator"
	case LambertConformalConic:
		return "Lambert Conformal Conic"
	case LambertAzimuthalEqualArea:
		return "Lambert Azimuthal Equal Area"
	case StereographicAzimuthal:
		return "Stereographic"
	case StereographicAlternative:
		return "Oblique Stereographic"
	case Orthographic:
		return "Orthographic"
	case Equirectangular:
		return "Equirectangular"
	case Mollweide:
		return "Mollweide"
	default:
		return "Unsupported"
	}
}

// ParameterKind identifies what a projection parameter means.
type ParameterKind int

// Parameter kinds.
const (
	NotSupported ParameterKind = iota
	LatitudeOfNaturalOrigin
	LongitudeOfNaturalOrigin
	FalseEasting
	FalseNorthing
	ScaleAtNaturalOrigin
	TrueScaleLatitude
	FirstParallelLatitude
	SecondParallelLatitude
)

// String returns the string representation of the parameter kind.
func (k ParameterKind) String() string {
	switch k {
	case LatitudeOfNaturalOrigin:
		return "latitude of natural origin"
	case LongitudeOfNaturalOrigin:
		return "longitude of natural origin"
	case FalseEasting:
		return "false easting"
	case FalseNorthing:
		return "false northing"
	case ScaleAtNaturalOrigin:
		return "scale factor at natural origin"
	case TrueScaleLatitude:
		return "latitude of true scale"
	case FirstParallelLatitude:
		return "latitude of 1st standard parallel"
	case SecondParallelLatitude:
		return "latitude of 2nd standard parallel"
	default:
		return "not supported"
	}
}

// IsAngular reports whether values of the kind are angles.
func (k ParameterKind) IsAngular() bool {
	switch k {
	case LatitudeOfNaturalOrigin, LongitudeOfNaturalOrigin, TrueScaleLatitude,
		FirstParallelLatitude, SecondParallelLatitude:
		return true
	default:
		return false
	}
}

// IsLinear reports whether values of the kind are lengths.
func (k ParameterKind) IsLinear() bool {
	return k == FalseEasting || k == FalseNorthing
}
