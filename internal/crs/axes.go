package crs

import (
	"fmt"

	"github.com/jobrunner/meridian/internal/domain"
)

// axisOrder maps a two-axis coordinate to the internal (east, north) order in
// base units and back.
type axisOrder struct {
	swap  bool
	scale [2]float64 // sign · unit factor per stored axis
}

func newAxisOrder(code domain.CRSCode, axes []domain.Axis, kind domain.UnitKind) (axisOrder, error) {
	var o axisOrder
	switch {
	case axes[0].IsEasting() && axes[1].IsNorthing():
	case axes[0].IsNorthing() && axes[1].IsEasting():
		o.swap = true
	default:
		return o, &domain.DefinitionError{Code: code.String(), Field: "axes",
			Message: fmt.Sprintf("axes %s/%s are not one east-west and one north-south axis",
				axes[0].Orientation, axes[1].Orientation)}
	}

	for i, a := range axes {
		u := a.Unit
		if u == nil {
			u = domain.Metre
			if kind == domain.UnitKindAngular {
				u = domain.Degree
			}
		}
		if u.Kind != kind {
			return o, &domain.DefinitionError{Code: code.String(), Field: "axes",
				Message: fmt.Sprintf("axis %q has %s unit %s, want %s", a.Name, u.Kind, u, kind)}
		}
		o.scale[i] = a.Sign() * u.Factor
	}
	return o, nil
}

func (o axisOrder) normalize(c domain.Coordinate) (east, north float64) {
	a, b := c.X*o.scale[0], c.Y*o.scale[1]
	if o.swap {
		return b, a
	}
	return a, b
}

func (o axisOrder) denormalize(east, north, h float64) domain.Coordinate {
	if o.swap {
		return domain.Coordinate{X: north / o.scale[0], Y: east / o.scale[1], Z: h}
	}
	return domain.Coordinate{X: east / o.scale[0], Y: north / o.scale[1], Z: h}
}
