package projection

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// lambertConformalConic implements EPSG 9801 (one standard parallel, scaled) and
// 9802 (two standard parallels). The variant follows from the presence of the
// first standard parallel.
type lambertConformalConic struct {
	base
	n   float64
	akF float64 // a·k0·F
	rF  float64 // radius at the latitude of origin
}

func newLambertConformalConic(b base) (*lambertConformalConic, error) {
	p := b.params
	l := &lambertConformalConic{base: b}

	var k0, n, f float64
	if p.Has(FirstParallelLatitude) {
		phi1, phi2 := p.FirstParallel, p.SecondParallel
		if !p.Has(SecondParallelLatitude) {
			phi2 = phi1
		}
		if math.Abs(phi1+phi2) < angleEpsilon {
			return nil, &domain.ValidationError{Field: "second_parallel", Value: phi2,
				Constraint: "φ1 ≠ -φ2", Message: "standard parallels symmetric about the equator"}
		}
		m1, m2 := msfn(phi1, b.e2), msfn(phi2, b.e2)
		t1, t2 := tsfn(phi1, b.e), tsfn(phi2, b.e)
		if math.Abs(phi1-phi2) < angleEpsilon {
			n = math.Sin(phi1)
		} else {
			n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
		}
		f = m1 / (n * math.Pow(t1, n))
		k0 = 1
	} else {
		phi0 := p.LatitudeOfOrigin
		if math.Abs(phi0) < angleEpsilon {
			return nil, &domain.ValidationError{Field: "latitude_of_origin", Value: phi0,
				Constraint: "≠ 0", Message: "one standard parallel cone needs a non-equatorial origin"}
		}
		n = math.Sin(phi0)
		f = msfn(phi0, b.e2) / (n * math.Pow(tsfn(phi0, b.e), n))
		k0 = p.Scale()
	}

	l.n = n
	l.akF = b.a * k0 * f
	l.rF = l.radius(p.LatitudeOfOrigin)
	return l, nil
}

func (l *lambertConformalConic) radius(phi float64) float64 {
	if math.Abs(phi-math.Copysign(math.Pi/2, l.n)) < angleEpsilon {
		return 0
	}
	return l.akF * math.Pow(tsfn(phi, l.e), l.n)
}

func (l *lambertConformalConic) Forward(lat, lon float64) (float64, float64, error) {
	if err := l.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	if math.Abs(lat+math.Copysign(math.Pi/2, l.n)) < angleEpsilon {
		return 0, 0, l.forwardError(lat, lon, "opposite pole of the cone")
	}

	r := l.radius(lat)
	theta := l.n * adjustLon(lon-l.params.LongitudeOfOrigin)
	x := l.params.FalseEasting + r*math.Sin(theta)
	y := l.params.FalseNorthing + l.rF - r*math.Cos(theta)
	if err := l.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (l *lambertConformalConic) Inverse(x, y float64) (float64, float64, error) {
	if err := l.checkInverse(x, y); err != nil {
		return 0, 0, err
	}

	dx := x - l.params.FalseEasting
	dy := l.rF - (y - l.params.FalseNorthing)
	sign := math.Copysign(1, l.n)
	r := sign * math.Hypot(dx, dy)
	theta := math.Atan2(sign*dx, sign*dy)

	var lat float64
	if r == 0 {
		lat = math.Copysign(math.Pi/2, l.n)
	} else {
		lat = phi2(math.Pow(r/l.akF, 1/l.n), l.e)
	}
	lon := adjustLon(theta/l.n + l.params.LongitudeOfOrigin)
	if err := l.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
