package crs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

// WMS auto projection identifiers.
const (
	AutoUTM                   = 42001
	AutoTransverseMercator    = 42002
	AutoOrthographic          = 42003
	AutoEquirectangular       = 42004
	AutoMollweide             = 42005
	autoScaleFactor           = 0.9996
	autoFalseEasting          = 500000.0
	autoSouthernFalseNorthing = 10000000.0
)

// AutoRequest is a parsed AUTO or AUTO2 code.
type AutoRequest struct {
	ID   int
	Unit *domain.Unit
	Lon0 float64 // degrees
	Lat0 float64 // degrees
	v2   bool
}

// Code returns the canonical code of the request.
func (r AutoRequest) Code() domain.CRSCode {
	lon := strconv.FormatFloat(r.Lon0, 'f', -1, 64)
	lat := strconv.FormatFloat(r.Lat0, 'f', -1, 64)
	if r.v2 {
		factor := strconv.FormatFloat(r.Unit.Factor, 'f', -1, 64)
		return domain.NewCRSCode("AUTO2", fmt.Sprintf("%d,%s,%s,%s", r.ID, factor, lon, lat))
	}
	return domain.NewCRSCode("AUTO", fmt.Sprintf("%d,%s,%s,%s", r.ID, r.Unit.Code.Code, lon, lat))
}

var autoUnits = map[string]*domain.Unit{
	"9001": domain.Metre,
	"9002": domain.Foot,
	"9003": domain.USSurveyFoot,
}

// IsAutoCode reports whether s uses the AUTO or AUTO2 codespace.
func IsAutoCode(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	return strings.HasPrefix(upper, "AUTO:") || strings.HasPrefix(upper, "AUTO2:")
}

// ParseAutoCode parses AUTO:id[,unit],lon,lat and AUTO2:id,factor,lon,lat.
func ParseAutoCode(s string) (AutoRequest, error) {
	text := strings.TrimSpace(s)
	idx := strings.Index(text, ":")
	if idx < 0 || !IsAutoCode(text) {
		return AutoRequest{}, fmt.Errorf("%w: %q is not an auto code", domain.ErrInvalidCode, s)
	}
	v2 := strings.EqualFold(text[:idx], "AUTO2")
	parts := strings.Split(text[idx+1:], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var req AutoRequest
	req.v2 = v2
	switch {
	case v2 && len(parts) == 4:
	case !v2 && len(parts) == 4:
	case !v2 && len(parts) == 3:
		parts = []string{parts[0], "9001", parts[1], parts[2]}
	default:
		return AutoRequest{}, fmt.Errorf("%w: %q has %d fields", domain.ErrInvalidCode, s, len(parts))
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return AutoRequest{}, fmt.Errorf("%w: auto id %q", domain.ErrInvalidCode, parts[0])
	}
	req.ID = id

	if v2 {
		factor, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || !(factor > 0) || math.IsInf(factor, 0) {
			return AutoRequest{}, fmt.Errorf("%w: unit factor %q", domain.ErrInvalidCode, parts[1])
		}
		req.Unit = unitForFactor(factor)
	} else {
		u, ok := autoUnits[parts[1]]
		if !ok {
			return AutoRequest{}, fmt.Errorf("%w: auto unit %q", domain.ErrInvalidCode, parts[1])
		}
		req.Unit = u
	}

	if req.Lon0, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return AutoRequest{}, fmt.Errorf("%w: longitude %q", domain.ErrInvalidCode, parts[2])
	}
	if req.Lat0, err = strconv.ParseFloat(parts[3], 64); err != nil {
		return AutoRequest{}, fmt.Errorf("%w: latitude %q", domain.ErrInvalidCode, parts[3])
	}
	return req, nil
}

func unitForFactor(factor float64) *domain.Unit {
	for _, u := range []*domain.Unit{domain.Metre, domain.Foot, domain.USSurveyFoot} {
		if u.Factor == factor {
			return u
		}
	}
	return &domain.Unit{Name: "auto unit", Kind: domain.UnitKindLinear, Factor: factor}
}

// SynthesizeAuto builds a fresh projected CRS for an auto id at a reference
// point given in degrees. Unknown ids yield ErrUnsupportedAutoID.
func SynthesizeAuto(id int, lon0, lat0 float64) (*Projected, error) {
	return SynthesizeAutoRequest(AutoRequest{ID: id, Unit: domain.Metre, Lon0: lon0, Lat0: lat0})
}

// SynthesizeAutoRequest builds the CRS of a parsed auto code, honouring its unit.
func SynthesizeAutoRequest(r AutoRequest) (*Projected, error) {
	if math.IsNaN(r.Lon0) || math.IsInf(r.Lon0, 0) || r.Lon0 < -180 || r.Lon0 > 180 {
		return nil, &domain.ValidationError{Field: "lon0", Value: r.Lon0, Constraint: "[-180, 180]",
			Message: "reference longitude out of range"}
	}
	if math.IsNaN(r.Lat0) || math.IsInf(r.Lat0, 0) || r.Lat0 < -90 || r.Lat0 > 90 {
		return nil, &domain.ValidationError{Field: "lat0", Value: r.Lat0, Constraint: "[-90, 90]",
			Message: "reference latitude out of range"}
	}
	if r.Unit == nil {
		r.Unit = domain.Metre
	}

	var (
		method projection.Method
		params projection.Parameters
		name   string
	)
	falseNorthing := 0.0
	if r.Lat0 < 0 {
		falseNorthing = autoSouthernFalseNorthing
	}

	switch r.ID {
	case AutoUTM:
		zone := int(math.Min(math.Floor((r.Lon0+180)/6)+1, 60))
		method = projection.TransverseMercator
		params.Set(projection.LongitudeOfNaturalOrigin, radians(float64(-183+6*zone)))
		params.Set(projection.ScaleAtNaturalOrigin, autoScaleFactor)
		params.Set(projection.FalseEasting, autoFalseEasting)
		params.Set(projection.FalseNorthing, falseNorthing)
		name = fmt.Sprintf("Auto UTM zone %d", zone)
	case AutoTransverseMercator:
		method = projection.TransverseMercator
		params.Set(projection.LongitudeOfNaturalOrigin, radians(r.Lon0))
		params.Set(projection.ScaleAtNaturalOrigin, autoScaleFactor)
		params.Set(projection.FalseEasting, autoFalseEasting)
		params.Set(projection.FalseNorthing, falseNorthing)
		name = "Auto Transverse Mercator"
	case AutoOrthographic:
		method = projection.Orthographic
		params.Set(projection.LongitudeOfNaturalOrigin, radians(r.Lon0))
		params.Set(projection.LatitudeOfNaturalOrigin, radians(r.Lat0))
		name = "Auto Orthographic"
	case AutoEquirectangular:
		method = projection.Equirectangular
		params.Set(projection.LongitudeOfNaturalOrigin, radians(r.Lon0))
		params.Set(projection.TrueScaleLatitude, radians(r.Lat0))
		name = "Auto Equirectangular"
	case AutoMollweide:
		method = projection.Mollweide
		params.Set(projection.LongitudeOfNaturalOrigin, radians(r.Lon0))
		name = "Auto Mollweide"
	default:
		return nil, fmt.Errorf("%w: %d", domain.ErrUnsupportedAutoID, r.ID)
	}

	base, err := NewGeographic(domain.NewCRSCode("CRS", "84"), "WGS 84 (CRS84)", domain.WGS84Datum, nil)
	if err != nil {
		return nil, err
	}
	p, err := projection.New(method, params, domain.WGS84Datum.Ellipsoid)
	if err != nil {
		return nil, fmt.Errorf("auto projection %d: %w", r.ID, err)
	}
	axes := []domain.Axis{
		{Name: "Easting", Orientation: domain.AxisEast, Unit: r.Unit},
		{Name: "Northing", Orientation: domain.AxisNorth, Unit: r.Unit},
	}
	return NewProjected(r.Code(), name, base, p, axes)
}

func radians(deg float64) float64 {
	return domain.Degree.ToBase(deg)
}
