package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

var parameterKinds = []projection.ParameterKind{
	projection.LatitudeOfNaturalOrigin,
	projection.LongitudeOfNaturalOrigin,
	projection.FalseEasting,
	projection.FalseNorthing,
	projection.ScaleAtNaturalOrigin,
	projection.TrueScaleLatitude,
	projection.FirstParallelLatitude,
	projection.SecondParallelLatitude,
}

// formatCRS describes a CRS for JSON output. Angles are given in degrees.
func formatCRS(c crs.CoordinateSystem) map[string]interface{} {
	axes := make([]map[string]interface{}, 0, len(c.Axes()))
	for _, a := range c.Axes() {
		axis := map[string]interface{}{
			"name":        a.Name,
			"orientation": a.Orientation.String(),
		}
		if a.Unit != nil {
			axis["unit"] = a.Unit.Name
		}
		axes = append(axes, axis)
	}

	out := map[string]interface{}{
		"code":  c.Code().String(),
		"name":  c.Name(),
		"kind":  string(c.Kind()),
		"datum": formatDatum(c.Datum()),
		"axes":  axes,
	}

	if p, ok := c.(*crs.Projected); ok {
		out["base"] = p.Base().Code().String()
		out["projection"] = formatProjection(p.Projection())
	}
	return out
}

func formatDatum(d *domain.Datum) map[string]interface{} {
	e := d.Ellipsoid
	out := map[string]interface{}{
		"code": d.Code.String(),
		"name": d.Name,
		"ellipsoid": map[string]interface{}{
			"code":               e.Code.String(),
			"name":               e.Name,
			"semi_major_axis":    e.SemiMajorAxis,
			"inverse_flattening": e.InverseFlattening,
		},
		"prime_meridian": domain.Degree.FromBase(d.PrimeMeridian.Longitude),
	}
	if h := d.ToWGS84; h != nil {
		out["to_wgs84"] = map[string]interface{}{
			"code": h.Code.String(),
			"dx":   h.DX,
			"dy":   h.DY,
			"dz":   h.DZ,
			"rx":   h.EX,
			"ry":   h.EY,
			"rz":   h.EZ,
			"ppm":  h.PPM,
		}
	}
	return out
}

func formatProjection(p projection.Projection) map[string]interface{} {
	params := p.Parameters()
	values := make(map[string]float64, len(parameterKinds))
	for _, kind := range parameterKinds {
		v, ok := params.Get(kind)
		if !ok {
			continue
		}
		if kind.IsAngular() {
			v = domain.Degree.FromBase(v)
		}
		values[kind.String()] = v
	}
	return map[string]interface{}{
		"method":     p.Method().String(),
		"parameters": values,
	}
}

// coordinateToSlice keeps the dimension of the request: dims is 2 or 3.
func coordinateToSlice(c domain.Coordinate, dims int) []float64 {
	if dims == 3 {
		return []float64{c.X, c.Y, c.Z}
	}
	return []float64{c.X, c.Y}
}
