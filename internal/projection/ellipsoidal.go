package projection

import "math"

const (
	angleEpsilon  = 1e-10
	iterTolerance = 1e-15
	maxIterations = 30
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// adjustLon wraps a longitude difference into [-π, π].
func adjustLon(lon float64) float64 {
	if math.Abs(lon) <= math.Pi {
		return lon
	}
	lon = math.Mod(lon+math.Pi, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon - math.Pi
}

// tsfn is Snyder's t, the conformal colatitude function (15-9).
func tsfn(phi, e float64) float64 {
	s := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-s)/(1+s), e/2)
}

// msfn is Snyder's m (14-15).
func msfn(phi, e2 float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e2*s*s)
}

// phi2 inverts tsfn (7-9).
func phi2(ts, e float64) float64 {
	phi := math.Pi/2 - 2*math.Atan(ts)
	for i := 0; i < maxIterations; i++ {
		s := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(ts*math.Pow((1-s)/(1+s), e/2))
		if math.Abs(next-phi) < iterTolerance {
			return next
		}
		phi = next
	}
	return phi
}

// qsfn is Snyder's q, the authalic function (3-12).
func qsfn(phi, e, e2 float64) float64 {
	s := math.Sin(phi)
	if e < 1e-12 {
		return 2 * s
	}
	es := e * s
	return (1 - e2) * (s/(1-es*es) - math.Log((1-es)/(1+es))/(2*e))
}

// authalicLatitudeInverse returns φ for a given q (3-16).
func authalicLatitudeInverse(q, qp, e, e2 float64) float64 {
	if math.Abs(math.Abs(q)-math.Abs(qp)) < 1e-14 {
		return math.Copysign(math.Pi/2, q)
	}
	if e < 1e-12 {
		return math.Asin(math.Max(-1, math.Min(1, q/2)))
	}
	phi := math.Asin(math.Max(-1, math.Min(1, q/2)))
	for i := 0; i < maxIterations; i++ {
		s := math.Sin(phi)
		es := e * s
		one := 1 - es*es
		delta := one * one / (2 * math.Cos(phi)) *
			(q/(1-e2) - s/one + math.Log((1-es)/(1+es))/(2*e))
		phi += delta
		if math.Abs(delta) < iterTolerance {
			break
		}
	}
	return phi
}

// conformalLatitude returns χ (3-1).
func conformalLatitude(phi, e float64) float64 {
	s := e * math.Sin(phi)
	return 2*math.Atan(math.Tan(math.Pi/4+phi/2)*math.Pow((1-s)/(1+s), e/2)) - math.Pi/2
}

// geodeticFromConformal inverts conformalLatitude (3-4).
func geodeticFromConformal(chi, e float64) float64 {
	phi := chi
	for i := 0; i < maxIterations; i++ {
		s := e * math.Sin(phi)
		next := 2*math.Atan(math.Tan(math.Pi/4+chi/2)*math.Pow((1+s)/(1-s), e/2)) - math.Pi/2
		if math.Abs(next-phi) < iterTolerance {
			return next
		}
		phi = next
	}
	return phi
}
