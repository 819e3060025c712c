package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wroge/wgs84"

	"github.com/jobrunner/meridian/internal/domain"
)

// TestTransverseMercatorAgainstWGS84 cross-checks against an independent
// implementation. Its lower-order series drifts by up to a metre three
// degrees off the central meridian, so only a narrow band is compared.
func TestTransverseMercatorAgainstWGS84(t *testing.T) {
	zones := []struct {
		name   string
		lon0   float64
		lat0   float64
		k0     float64
		fe, fn float64
	}{
		{"utm 32", 9, 0, 0.9996, 500000, 0},
		{"utm 33 south", 15, 0, 0.9996, 500000, 10000000},
		{"offset origin", 127.5, 38, 0.9996, 1000000, 2000000},
	}

	for _, z := range zones {
		t.Run(z.name, func(t *testing.T) {
			p, err := New(TransverseMercator, params(map[ParameterKind]float64{
				LatitudeOfNaturalOrigin:  rad(z.lat0),
				LongitudeOfNaturalOrigin: rad(z.lon0),
				ScaleAtNaturalOrigin:     z.k0,
				FalseEasting:             z.fe,
				FalseNorthing:            z.fn,
			}), domain.WGS84Ellipsoid())
			require.NoError(t, err)

			reference := wgs84.LonLat().To(wgs84.WGS84().TransverseMercator(z.lon0, z.lat0, z.k0, z.fe, z.fn))

			for dlat := -20.0; dlat <= 20; dlat += 5 {
				for dlon := -1.0; dlon <= 1; dlon += 0.5 {
					lat := z.lat0 + dlat
					if z.fn == 10000000 {
						lat = -math.Abs(dlat) - 5
					}
					lon := z.lon0 + dlon

					x, y, err := p.Forward(rad(lat), rad(lon))
					require.NoError(t, err)
					wantX, wantY, _ := reference(lon, lat, 0)

					assert.InDelta(t, wantX, x, 0.2, "easting at (%g, %g)", lat, lon)
					assert.InDelta(t, wantY, y, 0.2, "northing at (%g, %g)", lat, lon)
				}
			}
		})
	}
}

// British National Grid worked example of the EPSG guidance note 7-2.
func TestTransverseMercatorBritishNationalGrid(t *testing.T) {
	airy, err := domain.NewEllipsoid(domain.NewCRSCode("EPSG", "7001"), "Airy 1830", 6377563.396, 299.3249646)
	require.NoError(t, err)

	p, err := New(TransverseMercator, params(map[ParameterKind]float64{
		LatitudeOfNaturalOrigin:  rad(49),
		LongitudeOfNaturalOrigin: rad(-2),
		ScaleAtNaturalOrigin:     0.9996012717,
		FalseEasting:             400000,
		FalseNorthing:            -100000,
	}), airy)
	require.NoError(t, err)

	lat, lon := rad(50.5), rad(0.5)
	x, y, err := p.Forward(lat, lon)
	require.NoError(t, err)
	assert.InDelta(t, 577274.99, x, 0.01)
	assert.InDelta(t, 69740.50, y, 0.01)

	gotLat, gotLon, err := p.Inverse(577274.99, 69740.50)
	require.NoError(t, err)
	assert.InDelta(t, lat, gotLat, 2e-9)
	assert.InDelta(t, lon, gotLon, 2e-9)
}

func TestTransverseMercatorSouthOrientated(t *testing.T) {
	north, err := New(TransverseMercator, params(map[ParameterKind]float64{
		LongitudeOfNaturalOrigin: rad(21),
	}), domain.WGS84Ellipsoid())
	require.NoError(t, err)

	sp := params(map[ParameterKind]float64{LongitudeOfNaturalOrigin: rad(21)})
	sp.Hemisphere = South
	south, err := New(TransverseMercator, sp, domain.WGS84Ellipsoid())
	require.NoError(t, err)

	xn, yn, err := north.Forward(rad(-25), rad(22))
	require.NoError(t, err)
	xs, ys, err := south.Forward(rad(-25), rad(22))
	require.NoError(t, err)

	assert.InDelta(t, -xn, xs, 1e-6)
	assert.InDelta(t, -yn, ys, 1e-6)
	assert.Equal(t, "south", sp.Hemisphere.String())
}

func TestTransverseMercatorCentralMeridian(t *testing.T) {
	p, err := New(TransverseMercator, params(map[ParameterKind]float64{
		LongitudeOfNaturalOrigin: rad(9), ScaleAtNaturalOrigin: 0.9996, FalseEasting: 500000,
	}), domain.WGS84Ellipsoid())
	require.NoError(t, err)

	x, y, err := p.Forward(0, rad(9))
	require.NoError(t, err)
	assert.InDelta(t, 500000, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	// Meridian arc from the equator to the pole, scaled.
	_, y, err = p.Forward(math.Pi/2, rad(9))
	require.NoError(t, err)
	assert.InDelta(t, 10001965.729*0.9996, y, 0.01)
}
