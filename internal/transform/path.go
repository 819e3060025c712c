package transform

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

// Path is an immutable sequence of steps from a source to a target CRS.
type Path struct {
	source crs.CoordinateSystem
	target crs.CoordinateSystem
	steps  []Step

	// keepHeight restores the input height when neither end is geocentric.
	keepHeight bool
}

func (p *Path) Source() crs.CoordinateSystem { return p.source }
func (p *Path) Target() crs.CoordinateSystem { return p.target }

// Steps returns a copy of the step sequence.
func (p *Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// IsIdentity reports whether the path leaves coordinates untouched.
func (p *Path) IsIdentity() bool {
	return len(p.steps) == 0
}

// Describe lists the step names.
func (p *Path) Describe() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Apply moves a coordinate from the source to the target CRS.
func (p *Path) Apply(c domain.Coordinate) (domain.Coordinate, error) {
	if err := c.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	v := fromCoordinate(c)
	for _, s := range p.steps {
		next, err := s.Apply(v)
		if err != nil {
			return domain.Coordinate{}, &domain.TransformationError{
				Source: p.source.Code().String(),
				Target: p.target.Code().String(),
				Err:    fmt.Errorf("%s: %w", s.Name(), err),
			}
		}
		v = next
	}
	out := toCoordinate(v)
	if p.keepHeight {
		out.Z = c.Z
	}
	return out, nil
}

// ApplyAll transforms every coordinate. It stops at the first failure and
// reports the index of the offending coordinate.
func (p *Path) ApplyAll(cs []domain.Coordinate) ([]domain.Coordinate, error) {
	out := make([]domain.Coordinate, len(cs))
	for i, c := range cs {
		r, err := p.Apply(c)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// Geometry moves a copy of g through the path. Points are read as (x, y) in the
// source axis order.
func Geometry(p *Path, g orb.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, nil
	}
	var firstErr error
	moved := project.Geometry(orb.Clone(g), func(pt orb.Point) orb.Point {
		if firstErr != nil {
			return pt
		}
		c, err := p.Apply(domain.NewCoordinate(pt[0], pt[1]))
		if err != nil {
			firstErr = err
			return pt
		}
		return orb.Point{c.X, c.Y}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return moved, nil
}
