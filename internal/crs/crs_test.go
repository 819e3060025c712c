package crs

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

func bessel(t *testing.T) *domain.Datum {
	t.Helper()
	e, err := domain.NewEllipsoid(domain.NewCRSCode("EPSG", "7004"), "Bessel 1841", 6377397.155, 299.1528128)
	require.NoError(t, err)
	return &domain.Datum{
		Code:          domain.NewCRSCode("EPSG", "6314"),
		Name:          "Deutsches Hauptdreiecksnetz",
		Ellipsoid:     e,
		PrimeMeridian: domain.Greenwich,
		ToWGS84: &domain.Helmert{
			DX: 598.1, DY: 73.7, DZ: 418.2,
			EX: 0.202, EY: 0.045, EZ: -2.455, PPM: 6.7,
		},
	}
}

func TestGeographicAxisOrder(t *testing.T) {
	latLon := []domain.Axis{
		{Name: "Latitude", Orientation: domain.AxisNorth, Unit: domain.Degree},
		{Name: "Longitude", Orientation: domain.AxisEast, Unit: domain.Degree},
	}

	tests := []struct {
		name    string
		axes    []domain.Axis
		in      domain.Coordinate
		wantLon float64
		wantLat float64
	}{
		{"default lon lat", nil, domain.NewCoordinate(7, 50), 7, 50},
		{"lat lon", latLon, domain.NewCoordinate(50, 7), 7, 50},
		{"grads", []domain.Axis{
			{Name: "Lon", Orientation: domain.AxisEast, Unit: domain.Grad},
			{Name: "Lat", Orientation: domain.AxisNorth, Unit: domain.Grad},
		}, domain.NewCoordinate(10, 50), 9, 45},
		{"west positive", []domain.Axis{
			{Name: "Lon", Orientation: domain.AxisWest, Unit: domain.Degree},
			{Name: "Lat", Orientation: domain.AxisNorth, Unit: domain.Degree},
		}, domain.NewCoordinate(7, 50), -7, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeographic(domain.NewCRSCode("TEST", "1"), "test", domain.WGS84Datum, tt.axes)
			require.NoError(t, err)

			lon, lat, _ := g.ToLonLat(tt.in)
			assert.InDelta(t, tt.wantLon*math.Pi/180, lon, 1e-12)
			assert.InDelta(t, tt.wantLat*math.Pi/180, lat, 1e-12)

			back := g.FromLonLat(lon, lat, 0)
			assert.InDelta(t, tt.in.X, back.X, 1e-9)
			assert.InDelta(t, tt.in.Y, back.Y, 1e-9)
		})
	}
}

func TestGeographicPrimeMeridian(t *testing.T) {
	paris := *domain.WGS84Datum
	paris.Code = domain.NewCRSCode("EPSG", "6807")
	paris.PrimeMeridian = domain.PrimeMeridian{
		Code:      domain.NewCRSCode("EPSG", "8903"),
		Name:      "Paris",
		Longitude: domain.Grad.ToBase(2.5969213),
	}
	g, err := NewGeographic(domain.NewCRSCode("EPSG", "4807"), "NTF (Paris)", &paris, nil)
	require.NoError(t, err)

	lon, _, _ := g.ToLonLat(domain.NewCoordinate(0, 45))
	assert.InDelta(t, domain.Grad.ToBase(2.5969213), lon, 1e-12)

	back := g.FromLonLat(lon, domain.Degree.ToBase(45), 0)
	assert.InDelta(t, 0, back.X, 1e-9)
}

func TestNewGeographicErrors(t *testing.T) {
	tests := []struct {
		name  string
		datum *domain.Datum
		axes  []domain.Axis
	}{
		{"nil datum", nil, nil},
		{"one axis", domain.WGS84Datum, domain.LonLatAxes[:1]},
		{"linear units", domain.WGS84Datum, domain.EastNorthAxes},
		{"two easting axes", domain.WGS84Datum, []domain.Axis{domain.LonLatAxes[0], domain.LonLatAxes[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeographic(domain.NewCRSCode("TEST", "1"), "", tt.datum, tt.axes)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			var defErr *domain.DefinitionError
			assert.True(t, errors.As(err, &defErr))
		})
	}
}

func TestProjectedFeet(t *testing.T) {
	base, err := NewGeographic(domain.NewCRSCode("EPSG", "4326"), "WGS 84", domain.WGS84Datum, nil)
	require.NoError(t, err)

	var params projection.Parameters
	params.Set(projection.LongitudeOfNaturalOrigin, domain.Degree.ToBase(9))
	p, err := projection.New(projection.TransverseMercator, params, domain.WGS84Ellipsoid())
	require.NoError(t, err)

	axes := []domain.Axis{
		{Name: "Y", Orientation: domain.AxisNorth, Unit: domain.USSurveyFoot},
		{Name: "X", Orientation: domain.AxisEast, Unit: domain.USSurveyFoot},
	}
	pr, err := NewProjected(domain.NewCRSCode("TEST", "2"), "feet", base, p, axes)
	require.NoError(t, err)

	e, n, _ := pr.ToEastNorth(domain.NewCoordinate(3937, 1200))
	// (north, east) in US survey feet: 1 ftUS = 1200/3937 m.
	assert.InDelta(t, 1200*1200.0/3937.0, e, 1e-9)
	assert.InDelta(t, 1200, n, 1e-9)

	c := pr.FromEastNorth(e, n, 5)
	assert.InDelta(t, 3937, c.X, 1e-9)
	assert.InDelta(t, 1200, c.Y, 1e-9)
	assert.Equal(t, 5.0, c.Z)

	assert.Equal(t, domain.KindProjected, pr.Kind())
	assert.Same(t, domain.WGS84Datum, pr.Datum())
	assert.Same(t, base, pr.Base())
	assert.Equal(t, "TEST:2 (feet)", pr.String())
}

func TestNewProjectedErrors(t *testing.T) {
	wgs84, err := NewGeographic(domain.NewCRSCode("EPSG", "4326"), "WGS 84", domain.WGS84Datum, nil)
	require.NoError(t, err)
	dhdn, err := NewGeographic(domain.NewCRSCode("EPSG", "4314"), "DHDN", bessel(t), nil)
	require.NoError(t, err)

	p, err := projection.New(projection.TransverseMercator, projection.Parameters{}, domain.WGS84Ellipsoid())
	require.NoError(t, err)

	tests := []struct {
		name string
		base *Geographic
		proj projection.Projection
		axes []domain.Axis
	}{
		{"nil base", nil, p, nil},
		{"nil projection", wgs84, nil, nil},
		{"ellipsoid mismatch", dhdn, p, nil},
		{"angular axes", wgs84, p, domain.LonLatAxes},
		{"three axes", wgs84, p, domain.GeocentricAxes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProjected(domain.NewCRSCode("TEST", "3"), "", tt.base, tt.proj, tt.axes)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGeocentric(t *testing.T) {
	g, err := NewGeocentric(domain.NewCRSCode("EPSG", "4978"), "WGS 84", domain.WGS84Datum, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KindGeocentric, g.Kind())
	assert.Len(t, g.Axes(), 3)

	x, y, z := g.ToMetres(domain.NewCoordinate3D(1, 2, 3))
	assert.Equal(t, []float64{1, 2, 3}, []float64{x, y, z})

	km := []domain.Axis{
		{Name: "X", Unit: domain.Kilometre},
		{Name: "Y", Orientation: domain.AxisEast, Unit: domain.Kilometre},
		{Name: "Z", Orientation: domain.AxisNorth, Unit: domain.Kilometre},
	}
	g, err = NewGeocentric(domain.NewCRSCode("TEST", "4"), "", domain.WGS84Datum, km)
	require.NoError(t, err)
	x, _, _ = g.ToMetres(domain.NewCoordinate3D(6378.137, 0, 0))
	assert.InDelta(t, 6378137, x, 1e-6)
	assert.InDelta(t, 6378.137, g.FromMetres(x, 0, 0).X, 1e-9)
	assert.Equal(t, "TEST:4", g.String())

	_, err = NewGeocentric(domain.NewCRSCode("TEST", "5"), "", domain.WGS84Datum, domain.LonLatAxes)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = NewGeocentric(domain.NewCRSCode("TEST", "5"), "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKey(t *testing.T) {
	g, err := NewGeographic(domain.ParseCode("urn:ogc:def:crs:EPSG::4326"), "WGS 84", domain.WGS84Datum, nil)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:4326", Key(g))
}
