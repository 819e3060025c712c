package projection

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// The auto projections are spherical with R equal to the semi-major axis.

type orthographic struct {
	base
	r       float64
	sinPhi0 float64
	cosPhi0 float64
}

func newOrthographic(b base) (*orthographic, error) {
	o := &orthographic{base: b, r: b.a}
	o.sinPhi0, o.cosPhi0 = math.Sincos(b.params.LatitudeOfOrigin)
	return o, nil
}

func (o *orthographic) Forward(lat, lon float64) (float64, float64, error) {
	if err := o.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - o.params.LongitudeOfOrigin)
	sinPhi, cosPhi := math.Sincos(lat)
	cosDlon := math.Cos(dlon)

	if o.sinPhi0*sinPhi+o.cosPhi0*cosPhi*cosDlon < -angleEpsilon {
		return 0, 0, o.forwardError(lat, lon, "far hemisphere")
	}
	x := o.params.FalseEasting + o.r*cosPhi*math.Sin(dlon)
	y := o.params.FalseNorthing + o.r*(o.cosPhi0*sinPhi-o.sinPhi0*cosPhi*cosDlon)
	return x, y, nil
}

func (o *orthographic) Inverse(x, y float64) (float64, float64, error) {
	if err := o.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - o.params.FalseEasting
	dy := y - o.params.FalseNorthing
	rho := math.Hypot(dx, dy)
	if rho > o.r*(1+1e-12) {
		return 0, 0, o.inverseError(x, y, "outside the visible hemisphere")
	}
	if rho == 0 {
		return o.params.LatitudeOfOrigin, adjustLon(o.params.LongitudeOfOrigin), nil
	}

	c := math.Asin(math.Min(1, rho/o.r))
	sinC, cosC := math.Sincos(c)
	lat := math.Asin(math.Max(-1, math.Min(1, cosC*o.sinPhi0+dy*sinC*o.cosPhi0/rho)))
	lon := adjustLon(o.params.LongitudeOfOrigin +
		math.Atan2(dx*sinC, rho*o.cosPhi0*cosC-dy*o.sinPhi0*sinC))
	return lat, lon, nil
}

type equirectangular struct {
	base
	r      float64
	cosPhi float64
}

func newEquirectangular(b base) (*equirectangular, error) {
	c := math.Cos(b.params.TrueScaleLatitude)
	if c < angleEpsilon {
		return nil, &domain.ValidationError{Field: "true_scale_latitude", Value: b.params.TrueScaleLatitude,
			Constraint: "(-π/2, π/2)", Message: "standard parallel must not be a pole"}
	}
	return &equirectangular{base: b, r: b.a, cosPhi: c}, nil
}

func (q *equirectangular) Forward(lat, lon float64) (float64, float64, error) {
	if err := q.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - q.params.LongitudeOfOrigin)
	x := q.params.FalseEasting + q.r*dlon*q.cosPhi
	y := q.params.FalseNorthing + q.r*(lat-q.params.LatitudeOfOrigin)
	return x, y, nil
}

func (q *equirectangular) Inverse(x, y float64) (float64, float64, error) {
	if err := q.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	lat := (y-q.params.FalseNorthing)/q.r + q.params.LatitudeOfOrigin
	dlon := (x - q.params.FalseEasting) / (q.r * q.cosPhi)
	if math.Abs(lat) > math.Pi/2+angleEpsilon || math.Abs(dlon) > math.Pi+angleEpsilon {
		return 0, 0, q.inverseError(x, y, "outside the projected rectangle")
	}
	return lat, adjustLon(q.params.LongitudeOfOrigin + dlon), nil
}

type mollweide struct {
	base
	r float64
}

func newMollweide(b base) (*mollweide, error) {
	return &mollweide{base: b, r: b.a}, nil
}

// auxiliaryAngle solves 2θ + sin 2θ = π sin φ by Newton iteration.
func (m *mollweide) auxiliaryAngle(lat float64) float64 {
	if math.Abs(lat) >= math.Pi/2-angleEpsilon {
		return math.Copysign(math.Pi/2, lat)
	}
	target := math.Pi * math.Sin(lat)
	t := lat // t = 2θ
	for i := 0; i < 4*maxIterations; i++ {
		delta := -(t + math.Sin(t) - target) / (1 + math.Cos(t))
		t += delta
		if math.Abs(delta) < iterTolerance {
			break
		}
	}
	return t / 2
}

func (m *mollweide) Forward(lat, lon float64) (float64, float64, error) {
	if err := m.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - m.params.LongitudeOfOrigin)
	theta := m.auxiliaryAngle(lat)
	x := m.params.FalseEasting + 2*math.Sqrt2/math.Pi*m.r*dlon*math.Cos(theta)
	y := m.params.FalseNorthing + math.Sqrt2*m.r*math.Sin(theta)
	return x, y, nil
}

func (m *mollweide) Inverse(x, y float64) (float64, float64, error) {
	if err := m.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - m.params.FalseEasting
	dy := y - m.params.FalseNorthing
	s := dy / (math.Sqrt2 * m.r)
	if math.Abs(s) > 1+1e-12 {
		return 0, 0, m.inverseError(x, y, "outside the projected ellipse")
	}
	theta := math.Asin(math.Max(-1, math.Min(1, s)))
	lat := math.Asin(math.Max(-1, math.Min(1, (2*theta+math.Sin(2*theta))/math.Pi)))

	cosTheta := math.Cos(theta)
	if cosTheta < angleEpsilon {
		return lat, adjustLon(m.params.LongitudeOfOrigin), nil
	}
	dlon := math.Pi * dx / (2 * math.Sqrt2 * m.r * cosTheta)
	if math.Abs(dlon) > math.Pi+angleEpsilon {
		return 0, 0, m.inverseError(x, y, "outside the projected ellipse")
	}
	return lat, adjustLon(m.params.LongitudeOfOrigin + dlon), nil
}
