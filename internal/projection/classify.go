package projection

import (
	"strings"

	"github.com/jobrunner/meridian/internal/domain"
)

// MethodRule is one row of the method classification table.
type MethodRule struct {
	Name   string
	Method Method
	Match  func(domain.CRSCode) bool
}

// ParameterRule is one row of the parameter classification table.
type ParameterRule struct {
	Name  string
	Kind  ParameterKind
	Match func(domain.CRSCode) bool
}

// Row order is significant: "Oblique Stereographic" must hit the alternative
// group before the azimuthal catch-all sees the word "stereographic".
var methodRules = []MethodRule{
	{
		Name:   "transverse mercator",
		Method: TransverseMercator,
		Match: aliasGroup(
			[]string{"9807", "9808"},
			"transverse mercator", "transverse mercator (south orientated)",
			"transverse mercator south orientated", "gauss kruger", "gauss krüger",
			"gauss krueger", "tmerc"),
	},
	{
		Name:   "lambert azimuthal equal area",
		Method: LambertAzimuthalEqualArea,
		Match: aliasGroup(
			[]string{"9820", "1027"},
			"lambert azimuthal equal area", "lambert azimuthal equal area (spherical)", "laea"),
	},
	{
		Name:   "stereographic alternative",
		Method: StereographicAlternative,
		Match: aliasGroup(
			[]string{"9809", "9810", "9829", "9830"},
			"oblique stereographic", "polar stereographic", "polar stereographic (variant a)",
			"polar stereographic (variant b)", "double stereographic",
			"stereographic north pole", "stereographic south pole", "sterea"),
	},
	{
		Name:   "stereographic azimuthal",
		Method: StereographicAzimuthal,
		Match:  nameContains("stereographic"),
	},
	{
		Name:   "lambert conformal conic",
		Method: LambertConformalConic,
		Match: aliasGroup(
			[]string{"9801", "9802", "9803"},
			"lambert conformal conic", "lambert conformal conic 1sp", "lambert conformal conic 2sp",
			"lambert conic conformal (1sp)", "lambert conic conformal (2sp)",
			"lambert conformal conic (2sp belgium)", "lcc"),
	},
	{
		Name:   "orthographic",
		Method: Orthographic,
		Match:  aliasGroup([]string{"9840"}, "orthographic", "ortho"),
	},
	{
		Name:   "equirectangular",
		Method: Equirectangular,
		Match: aliasGroup(
			[]string{"1028", "1029", "9842", "9823"},
			"equirectangular", "equidistant cylindrical", "plate carree", "eqc"),
	},
	{
		Name:   "mollweide",
		Method: Mollweide,
		Match:  aliasGroup(nil, "mollweide", "moll"),
	},
}

var parameterRules = []ParameterRule{
	{
		Name: "latitude of natural origin",
		Kind: LatitudeOfNaturalOrigin,
		Match: aliasGroup(
			[]string{"8801", "8821"},
			"latitude of natural origin", "latitude of false origin", "latitude of origin",
			"latitude of center", "latitude of centre", "lat 0"),
	},
	{
		Name: "longitude of natural origin",
		Kind: LongitudeOfNaturalOrigin,
		Match: aliasGroup(
			[]string{"8802", "8822", "8833"},
			"longitude of natural origin", "longitude of false origin", "longitude of origin",
			"longitude of center", "longitude of centre", "central meridian", "lon 0"),
	},
	{
		Name: "false easting",
		Kind: FalseEasting,
		Match: aliasGroup(
			[]string{"8806", "8826"},
			"false easting", "easting at false origin", "x 0"),
	},
	{
		Name: "false northing",
		Kind: FalseNorthing,
		Match: aliasGroup(
			[]string{"8807", "8827"},
			"false northing", "northing at false origin", "y 0"),
	},
	{
		Name: "scale factor at natural origin",
		Kind: ScaleAtNaturalOrigin,
		Match: aliasGroup(
			[]string{"8805"},
			"scale factor at natural origin", "scale factor", "k", "k 0"),
	},
	{
		Name: "latitude of true scale",
		Kind: TrueScaleLatitude,
		Match: aliasGroup(
			[]string{"8832"},
			"latitude of standard parallel", "latitude of true scale", "standard parallel", "lat ts"),
	},
	{
		Name: "latitude of 1st standard parallel",
		Kind: FirstParallelLatitude,
		Match: aliasGroup(
			[]string{"8823"},
			"latitude of 1st standard parallel", "standard parallel 1", "lat 1"),
	},
	{
		Name: "latitude of 2nd standard parallel",
		Kind: SecondParallelLatitude,
		Match: aliasGroup(
			[]string{"8824"},
			"latitude of 2nd standard parallel", "standard parallel 2", "lat 2"),
	},
}

// Classify returns the method of the first code that matches a table row.
// Zero codes are skipped. Unknown input yields Unsupported.
func Classify(codes ...domain.CRSCode) Method {
	for _, c := range codes {
		if c.IsZero() {
			continue
		}
		for _, r := range methodRules {
			if r.Match(c) {
				return r.Method
			}
		}
	}
	return Unsupported
}

// ClassifyStrings parses and classifies method aliases.
func ClassifyStrings(aliases ...string) Method {
	return Classify(domain.ParseCodes(aliases...)...)
}

// ClassifyParameter returns the kind of the first code that matches a parameter
// row, or NotSupported.
func ClassifyParameter(codes ...domain.CRSCode) ParameterKind {
	for _, c := range codes {
		if c.IsZero() {
			continue
		}
		for _, r := range parameterRules {
			if r.Match(c) {
				return r.Kind
			}
		}
	}
	return NotSupported
}

// MethodRules returns a copy of the ordered method table.
func MethodRules() []MethodRule {
	return append([]MethodRule(nil), methodRules...)
}

// ParameterRules returns a copy of the ordered parameter table.
func ParameterRules() []ParameterRule {
	return append([]ParameterRule(nil), parameterRules...)
}

// SouthOrientated reports whether the method aliases name the south-orientated
// transverse Mercator (EPSG:9808).
func SouthOrientated(codes ...domain.CRSCode) bool {
	for _, c := range codes {
		if c.IsStructured() && c.Codespace == "EPSG" && c.Code == "9808" {
			return true
		}
		if !c.IsStructured() && strings.Contains(domain.NormalizeName(c.Original), "south orientated") {
			return true
		}
	}
	return false
}

// aliasGroup matches EPSG codes from epsg and free-text names equal to one of
// names after normalization.
func aliasGroup(epsg []string, names ...string) func(domain.CRSCode) bool {
	codes := make(map[string]struct{}, len(epsg))
	for _, c := range epsg {
		codes[c] = struct{}{}
	}
	normalized := make(map[string]struct{}, len(names))
	for _, n := range names {
		normalized[domain.NormalizeName(n)] = struct{}{}
	}

	return func(c domain.CRSCode) bool {
		if c.IsStructured() {
			if c.Codespace != "EPSG" {
				return false
			}
			_, ok := codes[c.Code]
			return ok
		}
		_, ok := normalized[domain.NormalizeName(c.Original)]
		return ok
	}
}

// nameContains matches free text only.
func nameContains(fragment string) func(domain.CRSCode) bool {
	return func(c domain.CRSCode) bool {
		if c.IsStructured() {
			return false
		}
		return strings.Contains(domain.NormalizeName(c.Original), fragment)
	}
}
