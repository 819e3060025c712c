package projection

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// newStereographic builds the ellipsoidal oblique stereographic of Snyder
// (21-27) on the conformal latitude. A polar origin switches to the polar
// formulas.
func newStereographic(b base) (Projection, error) {
	p := b.params
	if math.Abs(math.Abs(p.LatitudeOfOrigin)-math.Pi/2) < angleEpsilon {
		return newPolarStereographic(b, p.LatitudeOfOrigin < 0)
	}

	s := &stereographic{base: b, k0: p.Scale()}
	phi1 := p.LatitudeOfOrigin
	chi1 := conformalLatitude(phi1, b.e)
	s.sinChi1, s.cosChi1 = math.Sincos(chi1)
	s.akm1 = 2 * b.a * s.k0 * msfn(phi1, b.e2)
	return s, nil
}

type stereographic struct {
	base
	k0      float64
	sinChi1 float64
	cosChi1 float64
	akm1    float64 // 2·a·k0·m1
}

func (s *stereographic) Forward(lat, lon float64) (float64, float64, error) {
	if err := s.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - s.params.LongitudeOfOrigin)
	sinChi, cosChi := math.Sincos(conformalLatitude(lat, s.e))
	cosDlon := math.Cos(dlon)

	denom := s.cosChi1 * (1 + s.sinChi1*sinChi + s.cosChi1*cosChi*cosDlon)
	if math.Abs(denom) < angleEpsilon {
		return 0, 0, s.forwardError(lat, lon, "antipode of the projection centre")
	}
	bigA := s.akm1 / denom

	x := s.params.FalseEasting + bigA*cosChi*math.Sin(dlon)
	y := s.params.FalseNorthing + bigA*(s.cosChi1*sinChi-s.sinChi1*cosChi*cosDlon)
	if err := s.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (s *stereographic) Inverse(x, y float64) (float64, float64, error) {
	if err := s.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - s.params.FalseEasting
	dy := y - s.params.FalseNorthing
	rho := math.Hypot(dx, dy)
	if rho == 0 {
		return s.params.LatitudeOfOrigin, adjustLon(s.params.LongitudeOfOrigin), nil
	}

	ce := 2 * math.Atan(rho*s.cosChi1/s.akm1)
	sinCe, cosCe := math.Sincos(ce)
	chi := math.Asin(math.Max(-1, math.Min(1, cosCe*s.sinChi1+dy*sinCe*s.cosChi1/rho)))
	lat := geodeticFromConformal(chi, s.e)
	lon := adjustLon(s.params.LongitudeOfOrigin +
		math.Atan2(dx*sinCe, rho*s.cosChi1*cosCe-dy*s.sinChi1*sinCe))
	if err := s.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// polarStereographic implements the polar aspect (EPSG 9810 variant A with a
// scale factor, 9829 variant B with a latitude of true scale).
type polarStereographic struct {
	base
	south bool
	c     float64 // ρ = c·t
}

func newPolarStereographic(b base, south bool) (*polarStereographic, error) {
	p := b.params
	ps := &polarStereographic{base: b, south: south}
	e := b.e
	root := math.Sqrt(math.Pow(1+e, 1+e) * math.Pow(1-e, 1-e))

	k0 := p.Scale()
	if p.Has(TrueScaleLatitude) {
		phiC := math.Abs(p.TrueScaleLatitude)
		if phiC < angleEpsilon {
			return nil, &domain.ValidationError{Field: "true_scale_latitude", Value: p.TrueScaleLatitude,
				Constraint: "≠ 0", Message: "polar stereographic needs a non-equatorial true scale latitude"}
		}
		if math.Abs(phiC-math.Pi/2) < angleEpsilon {
			k0 = 1
		} else {
			k0 = msfn(phiC, b.e2) * root / (2 * tsfn(phiC, e))
		}
	}
	ps.c = 2 * b.a * k0 / root
	return ps, nil
}

func (ps *polarStereographic) Forward(lat, lon float64) (float64, float64, error) {
	if err := ps.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	phi := lat
	if ps.south {
		phi = -lat
	}
	if phi < -math.Pi/2+angleEpsilon {
		return 0, 0, ps.forwardError(lat, lon, "opposite pole")
	}

	rho := ps.c * tsfn(phi, ps.e)
	dlon := adjustLon(lon - ps.params.LongitudeOfOrigin)
	x := ps.params.FalseEasting + rho*math.Sin(dlon)
	y := ps.params.FalseNorthing - rho*math.Cos(dlon)
	if ps.south {
		y = ps.params.FalseNorthing + rho*math.Cos(dlon)
	}
	if err := ps.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (ps *polarStereographic) Inverse(x, y float64) (float64, float64, error) {
	if err := ps.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - ps.params.FalseEasting
	dy := y - ps.params.FalseNorthing
	rho := math.Hypot(dx, dy)

	lat := phi2(rho/ps.c, ps.e)
	var lon float64
	if ps.south {
		lat = -lat
		lon = math.Atan2(dx, dy)
	} else {
		lon = math.Atan2(dx, -dy)
	}
	if rho == 0 {
		lon = 0
	}
	lon = adjustLon(ps.params.LongitudeOfOrigin + lon)
	if err := ps.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
