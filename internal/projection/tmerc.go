package projection

import "math"

// transverseMercator implements EPSG 9807 and its south-orientated variant 9808
// with the fourth order Krüger series in JHS form.
type transverseMercator struct {
	base
	k0     float64
	bigB   float64
	m0     float64
	sign   float64
	fwdH   [4]float64
	invH   [4]float64
	maxLon float64
}

func newTransverseMercator(b base) (*transverseMercator, error) {
	p := b.params
	f := b.ellipsoid.Flattening()
	n := f / (2 - f)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n

	t := &transverseMercator{
		base:   b,
		k0:     p.Scale(),
		bigB:   b.a / (1 + n) * (1 + n2/4 + n4/64),
		sign:   1,
		maxLon: math.Pi/2 - angleEpsilon,
		fwdH: [4]float64{
			n/2 - 2.0/3*n2 + 5.0/16*n3 + 41.0/180*n4,
			13.0/48*n2 - 3.0/5*n3 + 557.0/1440*n4,
			61.0/240*n3 - 103.0/140*n4,
			49561.0 / 161280 * n4,
		},
		invH: [4]float64{
			n/2 - 2.0/3*n2 + 37.0/96*n3 - 1.0/360*n4,
			1.0/48*n2 + 1.0/15*n3 - 437.0/1440*n4,
			17.0/480*n3 - 37.0/840*n4,
			4397.0 / 161280 * n4,
		},
	}
	if p.Hemisphere == South {
		t.sign = -1
	}
	t.m0 = t.meridianArc(p.LatitudeOfOrigin)
	return t, nil
}

// meridianArc returns B·ξ for a point on the central meridian.
func (t *transverseMercator) meridianArc(phi float64) float64 {
	if phi == 0 {
		return 0
	}
	if math.Abs(phi) >= math.Pi/2 {
		return math.Copysign(t.bigB*math.Pi/2, phi)
	}
	beta := t.conformalBeta(phi)
	xi0 := math.Asin(math.Sin(beta))
	xi := xi0
	for k, h := range t.fwdH {
		xi += h * math.Sin(float64(2*(k+1))*xi0)
	}
	return t.bigB * xi
}

func (t *transverseMercator) conformalBeta(phi float64) float64 {
	q := math.Asinh(math.Tan(phi)) - t.e*math.Atanh(t.e*math.Sin(phi))
	return math.Atan(math.Sinh(q))
}

func (t *transverseMercator) Forward(lat, lon float64) (float64, float64, error) {
	if err := t.checkForward(lat, lon); err != nil {
		return 0, 0, err
	}
	dlon := adjustLon(lon - t.params.LongitudeOfOrigin)
	if math.Abs(dlon) >= t.maxLon {
		return 0, 0, t.forwardError(lat, lon, "90° or more from the central meridian")
	}

	beta := t.conformalBeta(lat)
	eta0 := math.Atanh(math.Cos(beta) * math.Sin(dlon))
	xi0 := math.Asin(math.Sin(beta) * math.Cosh(eta0))

	xi, eta := xi0, eta0
	for k, h := range t.fwdH {
		m := float64(2 * (k + 1))
		xi += h * math.Sin(m*xi0) * math.Cosh(m*eta0)
		eta += h * math.Cos(m*xi0) * math.Sinh(m*eta0)
	}

	x := t.params.FalseEasting + t.sign*t.k0*t.bigB*eta
	y := t.params.FalseNorthing + t.sign*t.k0*(t.bigB*xi-t.m0)
	if err := t.checkResult(lat, lon, x, y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (t *transverseMercator) Inverse(x, y float64) (float64, float64, error) {
	if err := t.checkInverse(x, y); err != nil {
		return 0, 0, err
	}

	etaP := t.sign * (x - t.params.FalseEasting) / (t.bigB * t.k0)
	xiP := (t.sign*(y-t.params.FalseNorthing) + t.k0*t.m0) / (t.bigB * t.k0)

	xi0, eta0 := xiP, etaP
	for k, h := range t.invH {
		m := float64(2 * (k + 1))
		xi0 -= h * math.Sin(m*xiP) * math.Cosh(m*etaP)
		eta0 -= h * math.Cos(m*xiP) * math.Sinh(m*etaP)
	}

	beta := math.Asin(math.Sin(xi0) / math.Cosh(eta0))
	qP := math.Asinh(math.Tan(beta))
	q := qP
	for i := 0; i < maxIterations; i++ {
		next := qP + t.e*math.Atanh(t.e*math.Tanh(q))
		if math.Abs(next-q) < 1e-14 {
			q = next
			break
		}
		q = next
	}

	lat := math.Atan(math.Sinh(q))
	lon := adjustLon(t.params.LongitudeOfOrigin + math.Asin(math.Tanh(eta0)/math.Cos(beta)))
	if err := t.checkInverseResult(x, y, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
