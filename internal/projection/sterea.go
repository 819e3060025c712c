package projection

import "math"

// newStereographicAlternative dispatches the EPSG stereographic family: a true
// scale latitude selects polar variant B, a polar origin variant A, anything
// else the oblique double stereographic (9809) on the conformal sphere.
func newStereographicAlternative(b base) (Projection, error) {
	p := b.params
	switch {
	case p.Has(TrueScaleLatitude):
		return newPolarStereographic(b, p.TrueScaleLatitude < 0)
	case math.Abs(math.Abs(p.LatitudeOfOrigin)-math.Pi/2) < angleEpsilon:
		return newPolarStereographic(b, p.LatitudeOfOrigin < 0)
	}
	return newObliqueStereographic(b)
}

type obliqueStereographic struct {
	base
	twoRk0  float64 // 2·R·k0
	n       float64
	c       float64
	sinChi0 float64
	cosChi0 float64
}

func newObliqueStereographic(b base) (*obliqueStereographic, error) {
	p := b.params
	e, e2 := b.e, b.e2
	phi0 := p.LatitudeOfOrigin
	sinPhi0 := math.Sin(phi0)
	cosPhi0 := math.Cos(phi0)
	w := 1 - e2*sinPhi0*sinPhi0

	rho0 := b.a * (1 - e2) / math.Pow(w, 1.5)
	nu0 := b.a / math.Sqrt(w)
	r := math.Sqrt(rho0 * nu0)
	n := math.Sqrt(1 + e2*math.Pow(cosPhi0, 4)/(1-e2))

	s1 := (1 + sinPhi0) / (1 - sinPhi0)
	s2 := (1 - e*sinPhi0) / (1 + e*sinPhi0)
	w1 := math.Pow(s1*math.Pow(s2, e), n)
	sinChi := (w1 - 1) / (w1 + 1)
	c := (n + sinPhi0) * (1 - sinChi) / ((n - sinPhi0) * (1 + sinChi))
	w2 := c * w1
	chi0 := math.Asin((w2 - 1) / (w2 + 1))

	o := &obliqueStereographic{base: b, twoRk0: 2 * r * p.Scale(), n: n, c: c}
	o.sinChi0, o.cosChi0 = math.Sincos(chi0)
	return o, nil
}

// sphereLatitude maps φ to the conformal sphere.
func (o *obliqueStereographic) sphereLatitude(phi float64) float64 {
	s := math.Sin(phi)
	sa := (1 + s) / (1 - s)
	sb := (1 - o.e*s) / (1 + o.e*s)
	w := o.c * math.Pow(sa*math.Pow(sb, o.e), o.n)
	return math.Asin((w - 1) / (w + 1))
}

func (o *obliqueStereographic) Forward(lat, lon float64) (float64, float64, error) {
	if err := o.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}

	var chi float64
	switch {
	case lat >= math.Pi/2-angleEpsilon:
		chi = math.Pi / 2
	case lat <= -math.Pi/2+angleEpsilon:
		chi = -math.Pi / 2
	default:
		chi = o.sphereLatitude(lat)
	}
	dLambda := o.n * adjustLon(lon-o.params.LongitudeOfOrigin)
	if math.Abs(dLambda) > math.Pi {
		return 0, 0, o.forwardError(lat, lon, "longitude wraps on the conformal sphere")
	}
	sinChi, cosChi := math.Sincos(chi)
	cosD := math.Cos(dLambda)

	bb := 1 + sinChi*o.sinChi0 + cosChi*o.cosChi0*cosD
	if bb < angleEpsilon {
		return 0, 0, o.forwardError(lat, lon, "antipode of the projection centre")
	}

	x := o.params.FalseEasting + o.twoRk0*cosChi*math.Sin(dLambda)/bb
	y := o.params.FalseNorthing + o.twoRk0*(sinChi*o.cosChi0-cosChi*o.sinChi0*cosD)/bb
	if err := o.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (o *obliqueStereographic) Inverse(x, y float64) (float64, float64, error) {
	if err := o.checkInverse(x, y); err != nil {
		return 0, 0, err
	}
	dx := x - o.params.FalseEasting
	dy := y - o.params.FalseNorthing
	rho := math.Hypot(dx, dy)
	if rho == 0 {
		return o.params.LatitudeOfOrigin, adjustLon(o.params.LongitudeOfOrigin), nil
	}

	// Spherical stereographic inverse on the conformal sphere.
	ce := 2 * math.Atan(rho/o.twoRk0)
	sinCe, cosCe := math.Sincos(ce)
	sinChi := math.Max(-1, math.Min(1, cosCe*o.sinChi0+dy*sinCe*o.cosChi0/rho))
	dLambda := math.Atan2(dx*sinCe, rho*o.cosChi0*cosCe-dy*o.sinChi0*sinCe)
	lon := adjustLon(dLambda/o.n + o.params.LongitudeOfOrigin)

	var lat float64
	if math.Abs(sinChi) >= 1-1e-15 {
		lat = math.Copysign(math.Pi/2, sinChi)
	} else {
		psi := 0.5 * math.Log((1+sinChi)/(o.c*(1-sinChi))) / o.n
		lat = 2*math.Atan(math.Exp(psi)) - math.Pi/2
		for i := 0; i < maxIterations; i++ {
			s := math.Sin(lat)
			psiI := math.Log(math.Tan(lat/2+math.Pi/4) * math.Pow((1-o.e*s)/(1+o.e*s), o.e/2))
			next := lat - (psiI-psi)*math.Cos(lat)*(1-o.e2*s*s)/(1-o.e2)
			if math.Abs(next-lat) < iterTolerance {
				lat = next
				break
			}
			lat = next
		}
	}

	if err := o.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
