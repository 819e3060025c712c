package crs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

func deg(r float64) float64 { return r * 180 / math.Pi }

func TestSynthesizeAutoUTM(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		zone     float64
		cm       float64
		fn       float64
	}{
		{"central europe", 7, 50, 32, 9, 0},
		{"southern hemisphere", 7, -33, 32, 9, 10000000},
		{"antimeridian", 180, 10, 60, 177, 0},
		{"first zone", -180, 0, 1, -177, 0},
		{"zone boundary", 12, 45, 33, 15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := SynthesizeAuto(AutoUTM, tt.lon, tt.lat)
			require.NoError(t, err)

			params := p.Projection().Parameters()
			assert.Equal(t, projection.TransverseMercator, p.Projection().Method())
			assert.InDelta(t, tt.cm, deg(params.LongitudeOfOrigin), 1e-9)
			assert.Equal(t, 0.9996, params.ScaleFactor)
			assert.Equal(t, 500000.0, params.FalseEasting)
			assert.Equal(t, tt.fn, params.FalseNorthing)
			assert.Contains(t, p.Name(), "zone")
			assert.True(t, p.Datum().IsWGS84())
			assert.Equal(t, "CRS:84", p.Base().Code().Key())
		})
	}
}

func TestSynthesizeAutoMethods(t *testing.T) {
	tests := []struct {
		id     int
		method projection.Method
	}{
		{AutoTransverseMercator, projection.TransverseMercator},
		{AutoOrthographic, projection.Orthographic},
		{AutoEquirectangular, projection.Equirectangular},
		{AutoMollweide, projection.Mollweide},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			p, err := SynthesizeAuto(tt.id, -100, 40)
			require.NoError(t, err)
			assert.Equal(t, tt.method, p.Projection().Method())
			assert.InDelta(t, -100, deg(p.Projection().Parameters().LongitudeOfOrigin), 1e-9)

			// The reference longitude maps to the false easting.
			x, y, err := p.Projection().Forward(domain.Degree.ToBase(40), domain.Degree.ToBase(-100))
			require.NoError(t, err)
			fe := p.Projection().Parameters().FalseEasting
			assert.InDelta(t, fe, x, 1e-6)
			if tt.id == AutoOrthographic {
				assert.InDelta(t, 0, y, 1e-6)
			}
		})
	}

	t.Run("orthographic origin", func(t *testing.T) {
		p, err := SynthesizeAuto(AutoOrthographic, 10, 45)
		require.NoError(t, err)
		assert.InDelta(t, 45, deg(p.Projection().Parameters().LatitudeOfOrigin), 1e-9)
	})

	t.Run("equirectangular standard parallel", func(t *testing.T) {
		p, err := SynthesizeAuto(AutoEquirectangular, 10, 45)
		require.NoError(t, err)
		assert.InDelta(t, 45, deg(p.Projection().Parameters().TrueScaleLatitude), 1e-9)
	})
}

func TestSynthesizeAutoErrors(t *testing.T) {
	_, err := SynthesizeAuto(42006, 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnsupportedAutoID)
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	_, err = SynthesizeAuto(AutoUTM, 181, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = SynthesizeAuto(AutoUTM, 0, math.NaN())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSynthesizeAutoIsFresh(t *testing.T) {
	a, err := SynthesizeAuto(AutoUTM, 7, 50)
	require.NoError(t, err)
	b, err := SynthesizeAuto(AutoUTM, 7, 50)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Code(), b.Code())
}

func TestParseAutoCode(t *testing.T) {
	tests := []struct {
		in      string
		id      int
		unit    *domain.Unit
		lon     float64
		lat     float64
		code    string
		wantErr bool
	}{
		{in: "AUTO:42001,9001,7,50", id: 42001, unit: domain.Metre, lon: 7, lat: 50, code: "AUTO:42001,9001,7,50"},
		{in: "AUTO:42001,7,50", id: 42001, unit: domain.Metre, lon: 7, lat: 50, code: "AUTO:42001,9001,7,50"},
		{in: "auto:42003, 9002, -100.5, 40", id: 42003, unit: domain.Foot, lon: -100.5, lat: 40, code: "AUTO:42003,9002,-100.5,40"},
		{in: "AUTO2:42005,1,0,0", id: 42005, unit: domain.Metre, code: "AUTO2:42005,1,0,0"},
		{in: "AUTO2:42002,0.3048,10,20", id: 42002, unit: domain.Foot, lon: 10, lat: 20, code: "AUTO2:42002,0.3048,10,20"},
		{in: "AUTO:42001,9005,7,50", wantErr: true},
		{in: "AUTO:x,9001,7,50", wantErr: true},
		{in: "AUTO:42001,9001,east,50", wantErr: true},
		{in: "AUTO2:42001,7,50", wantErr: true},
		{in: "AUTO2:42001,-1,7,50", wantErr: true},
		{in: "EPSG:4326", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req, err := ParseAutoCode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, req.ID)
			assert.Same(t, tt.unit, req.Unit)
			assert.Equal(t, tt.lon, req.Lon0)
			assert.Equal(t, tt.lat, req.Lat0)
			assert.Equal(t, tt.code, req.Code().Key())
		})
	}
}

func TestSynthesizeAutoRequestHonoursUnit(t *testing.T) {
	req, err := ParseAutoCode("AUTO:42001,9002,9,0")
	require.NoError(t, err)
	p, err := SynthesizeAutoRequest(req)
	require.NoError(t, err)

	// 500 km false easting in feet.
	c := p.FromEastNorth(500000, 0, 0)
	assert.InDelta(t, 500000/0.3048, c.X, 1e-6)
	assert.Same(t, domain.Foot, p.Axes()[0].Unit)
}

func TestIsAutoCode(t *testing.T) {
	assert.True(t, IsAutoCode("AUTO:42001,7,50"))
	assert.True(t, IsAutoCode(" auto2:42001,1,7,50"))
	assert.False(t, IsAutoCode("EPSG:42001"))
	assert.False(t, IsAutoCode("AUTOMATIC"))
}
