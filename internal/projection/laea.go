package projection

import "math"

type laeaAspect int

const (
	laeaOblique laeaAspect = iota
	laeaNorthPole
	laeaSouthPole
)

// lambertAzimuthalEqualArea implements EPSG 9820 in its oblique, equatorial
// and polar aspects.
type lambertAzimuthalEqualArea struct {
	base
	aspect laeaAspect
	qp     float64
	rq     float64
	d      float64
	sinB0  float64
	cosB0  float64
}

func newLambertAzimuthalEqualArea(b base) (*lambertAzimuthalEqualArea, error) {
	p := b.params
	l := &lambertAzimuthalEqualArea{base: b}
	l.qp = qsfn(math.Pi/2, b.e, b.e2)
	l.rq = b.a * math.Sqrt(l.qp/2)

	switch {
	case math.Abs(p.LatitudeOfOrigin-math.Pi/2) < angleEpsilon:
		l.aspect = laeaNorthPole
	case math.Abs(p.LatitudeOfOrigin+math.Pi/2) < angleEpsilon:
		l.aspect = laeaSouthPole
	default:
		phi0 := p.LatitudeOfOrigin
		beta0 := math.Asin(qsfn(phi0, b.e, b.e2) / l.qp)
		l.sinB0, l.cosB0 = math.Sincos(beta0)
		s := math.Sin(phi0)
		l.d = b.a * (math.Cos(phi0) / math.Sqrt(1-b.e2*s*s)) / (l.rq * l.cosB0)
	}
	return l, nil
}

func (l *lambertAzimuthalEqualArea) authalic(lat float64) float64 {
	ratio := qsfn(lat, l.e, l.e2) / l.qp
	return math.Asin(math.Max(-1, math.Min(1, ratio)))
}

func (l *lambertAzimuthalEqualArea) Forward(lat, lon float64) (float64, float64, error) {
	if err := l.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - l.params.LongitudeOfOrigin)
	fe, fn := l.params.FalseEasting, l.params.FalseNorthing

	var x, y float64
	switch l.aspect {
	case laeaNorthPole, laeaSouthPole:
		sign := 1.0
		if l.aspect == laeaSouthPole {
			sign = -1
		}
		if math.Abs(lat+sign*math.Pi/2) < angleEpsilon {
			return 0, 0, l.forwardError(lat, lon, "antipode of the projection centre")
		}
		rho := l.a * math.Sqrt(math.Max(0, l.qp-sign*qsfn(lat, l.e, l.e2)))
		x = fe + rho*math.Sin(dlon)
		y = fn - sign*rho*math.Cos(dlon)
	default:
		beta := l.authalic(lat)
		sinB, cosB := math.Sincos(beta)
		denom := 1 + l.sinB0*sinB + l.cosB0*cosB*math.Cos(dlon)
		if denom < angleEpsilon {
			return 0, 0, l.forwardError(lat, lon, "antipode of the projection centre")
		}
		bb := l.rq * math.Sqrt(2/denom)
		x = fe + bb*l.d*cosB*math.Sin(dlon)
		y = fn + bb/l.d*(l.cosB0*sinB-l.sinB0*cosB*math.Cos(dlon))
	}

	if err := l.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (l *lambertAzimuthalEqualArea) Inverse(x, y float64) (float64, float64, error) {
	if err := l.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - l.params.FalseEasting
	dy := y - l.params.FalseNorthing
	lon0 := l.params.LongitudeOfOrigin

	var lat, lon float64
	switch l.aspect {
	case laeaNorthPole, laeaSouthPole:
		sign := 1.0
		if l.aspect == laeaSouthPole {
			sign = -1
		}
		rho := math.Hypot(dx, dy)
		q := sign * (l.qp - (rho/l.a)*(rho/l.a))
		if math.Abs(q) > l.qp*(1+1e-12) {
			return 0, 0, l.inverseError(x, y, "outside the projected disc")
		}
		lat = authalicLatitudeInverse(math.Max(-l.qp, math.Min(l.qp, q)), l.qp, l.e, l.e2)
		if rho == 0 {
			lon = lon0
		} else {
			lon = lon0 + math.Atan2(dx, -sign*dy)
		}
	default:
		rho := math.Hypot(dx/l.d, l.d*dy)
		if rho > 2*l.rq*(1+1e-12) {
			return 0, 0, l.inverseError(x, y, "outside the projected disc")
		}
		if rho == 0 {
			return l.params.LatitudeOfOrigin, adjustLon(lon0), nil
		}
		c := 2 * math.Asin(math.Min(1, rho/(2*l.rq)))
		sinC, cosC := math.Sincos(c)
		sinBeta := cosC*l.sinB0 + l.d*dy*sinC*l.cosB0/rho
		sinBeta = math.Max(-1, math.Min(1, sinBeta))
		lat = authalicLatitudeInverse(l.qp*sinBeta, l.qp, l.e, l.e2)
		lon = lon0 + math.Atan2(dx*sinC, l.d*rho*l.cosB0*cosC-l.d*l.d*dy*l.sinB0*sinC)
	}

	lon = adjustLon(lon)
	if err := l.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
