package domain

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewEllipsoid(t *testing.T) {
	tests := []struct {
		name    string
		a       float64
		invF    float64
		wantErr bool
	}{
		{"bessel", 6377397.155, 299.1528128, false},
		{"wgs84", WGS84SemiMajorAxis, WGS84InverseFlattening, false},
		{"zero axis", 0, 298.257223563, true},
		{"negative axis", -1, 298.257223563, true},
		{"flattening of one", 6378137, 1, true},
		{"no flattening", 6378137, 0, true},
		{"NaN axis", math.NaN(), 298.257223563, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEllipsoid(NewCRSCode("EPSG", "7004"), tt.name, tt.a, tt.invF)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEllipsoid() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestEllipsoidDerivedValues(t *testing.T) {
	e := WGS84Ellipsoid()

	if math.Abs(e.SemiMinorAxis-6356752.314245179) > 1e-6 {
		t.Errorf("b = %.9f", e.SemiMinorAxis)
	}
	if math.Abs(e.EccentricitySquared()-0.00669437999014) > 1e-14 {
		t.Errorf("e² = %.15f", e.EccentricitySquared())
	}
	if math.Abs(e.Flattening()-1/WGS84InverseFlattening) > 1e-18 {
		t.Errorf("f = %g", e.Flattening())
	}
	if e.IsSphere() {
		t.Error("WGS84 must not be a sphere")
	}
}

func TestNewEllipsoidFromAxes(t *testing.T) {
	e, err := NewEllipsoidFromAxes(NewCRSCode("EPSG", "7019"), "GRS 1980", 6378137, 6356752.314140356)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(e.InverseFlattening-298.257222101) > 1e-6 {
		t.Errorf("1/f = %.9f", e.InverseFlattening)
	}
	if e.SemiMinorAxis != 6356752.314140356 {
		t.Errorf("semi-minor axis must stay authoritative, got %.9f", e.SemiMinorAxis)
	}

	if _, err := NewEllipsoidFromAxes(CRSCode{}, "bad", 6378137, 6378137); err == nil {
		t.Error("expected error for b == a")
	}
}

func TestNewSphere(t *testing.T) {
	s, err := NewSphere(CRSCode{}, "sphere", 6378137)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsSphere() {
		t.Error("expected a sphere")
	}
	if _, err := NewSphere(CRSCode{}, "sphere", 0); err == nil {
		t.Error("expected error for zero radius")
	}
}

func TestGeocentricKnownValues(t *testing.T) {
	e := WGS84Ellipsoid()

	v := e.ToGeocentric(0, 0, 0)
	if math.Abs(v.X-WGS84SemiMajorAxis) > 1e-9 || math.Abs(v.Y) > 1e-9 || math.Abs(v.Z) > 1e-9 {
		t.Errorf("equator/greenwich: got %+v", v)
	}

	v = e.ToGeocentric(math.Pi/2, 0, 0)
	if math.Abs(v.Z-e.SemiMinorAxis) > 1e-6 || math.Abs(v.X) > 1e-6 {
		t.Errorf("north pole: got %+v", v)
	}

	lat, _, h := e.FromGeocentric(r3.Vec{Z: -e.SemiMinorAxis - 10})
	if lat != -math.Pi/2 || math.Abs(h-10) > 1e-6 {
		t.Errorf("south pole: lat=%g h=%g", lat, h)
	}
}

func TestGeocentricRoundTrip(t *testing.T) {
	ellipsoids := map[string]Ellipsoid{"wgs84": WGS84Ellipsoid()}
	bessel, err := NewEllipsoid(NewCRSCode("EPSG", "7004"), "Bessel 1841", 6377397.155, 299.1528128)
	if err != nil {
		t.Fatal(err)
	}
	ellipsoids["bessel"] = bessel

	for name, e := range ellipsoids {
		t.Run(name, func(t *testing.T) {
			for lat := -89.0; lat <= 89; lat += 11 {
				for lon := -179.0; lon <= 179; lon += 23 {
					for _, h := range []float64{-100, 0, 3500} {
						phi, lam := lat*math.Pi/180, lon*math.Pi/180
						gotLat, gotLon, gotH := e.FromGeocentric(e.ToGeocentric(phi, lam, h))
						if math.Abs(gotLat-phi) > 1e-12 || math.Abs(gotLon-lam) > 1e-12 || math.Abs(gotH-h) > 1e-5 {
							t.Fatalf("(%g, %g, %g): got (%g, %g, %g)", lat, lon, h,
								gotLat*180/math.Pi, gotLon*180/math.Pi, gotH)
						}
					}
				}
			}
		})
	}
}
