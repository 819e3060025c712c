package transform

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

// Composer builds transformation paths and caches them per ordered pair of CRS
// keys. It is safe for concurrent use.
type Composer struct {
	paths cmap.ConcurrentMap[string, *Path]
	group singleflight.Group
}

// NewComposer creates an empty composer.
func NewComposer() *Composer {
	return &Composer{paths: cmap.New[*Path]()}
}

func pathKey(source, target crs.CoordinateSystem) string {
	return crs.Key(source) + " -> " + crs.Key(target)
}

// Path returns the cached path from source to target, composing it on first
// use. The reverse direction is composed on its own.
func (c *Composer) Path(source, target crs.CoordinateSystem) (*Path, error) {
	if source == nil || target == nil {
		return nil, &domain.ValidationError{Field: "crs", Constraint: "non-nil", Message: "source and target are required"}
	}
	key := pathKey(source, target)
	if p, ok := c.paths.Get(key); ok {
		return p, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if p, ok := c.paths.Get(key); ok {
			return p, nil
		}
		p, err := Compose(source, target)
		if err != nil {
			return nil, err
		}
		c.paths.Set(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Path), nil
}

// Cached reports whether a path for the ordered pair is cached.
func (c *Composer) Cached(source, target crs.CoordinateSystem) bool {
	return c.paths.Has(pathKey(source, target))
}

// Len returns the number of cached paths.
func (c *Composer) Len() int {
	return c.paths.Count()
}

// Reset drops every cached path.
func (c *Composer) Reset() {
	c.paths.Clear()
}

type stage int

const (
	stageGeodetic stage = iota
	stageCartesian
)

// Compose builds an uncached path from source to target.
func Compose(source, target crs.CoordinateSystem) (*Path, error) {
	p := &Path{
		source:     source,
		target:     target,
		keepHeight: source.Kind() != domain.KindGeocentric && target.Kind() != domain.KindGeocentric,
	}
	if crs.Key(source) == crs.Key(target) {
		return p, nil
	}

	var at stage
	switch s := source.(type) {
	case *crs.Geographic:
		p.steps = append(p.steps, geographicAxes{crs: s})
	case *crs.Projected:
		p.steps = append(p.steps,
			projectedAxes{crs: s},
			projectionStep{proj: s.Projection(), pm: s.Base().Datum().PrimeMeridian.Longitude, inverse: true},
		)
	case *crs.Geocentric:
		p.steps = append(p.steps, geocentricAxes{crs: s})
		at = stageCartesian
	default:
		return nil, unsupportedKind(source, target)
	}

	from, to := source.Datum(), target.Datum()
	if !from.SameAs(to) {
		if !from.CanReachWGS84() || !to.CanReachWGS84() {
			return nil, noPath(source, target, from, to)
		}
		if at == stageGeodetic {
			p.steps = append(p.steps, geocentricConversion{ellipsoid: from.Ellipsoid})
			at = stageCartesian
		}
		if !from.IsWGS84() {
			p.steps = append(p.steps, helmertStep{datum: from})
		}
		if !to.IsWGS84() {
			p.steps = append(p.steps, helmertStep{datum: to, inverse: true})
		}
	}

	switch t := target.(type) {
	case *crs.Geographic:
		if at == stageCartesian {
			p.steps = append(p.steps, geocentricConversion{ellipsoid: to.Ellipsoid, inverse: true})
		}
		p.steps = append(p.steps, geographicAxes{crs: t, inverse: true})
	case *crs.Projected:
		if at == stageCartesian {
			p.steps = append(p.steps, geocentricConversion{ellipsoid: to.Ellipsoid, inverse: true})
		}
		p.steps = append(p.steps,
			projectionStep{proj: t.Projection(), pm: t.Base().Datum().PrimeMeridian.Longitude},
			projectedAxes{crs: t, inverse: true},
		)
	case *crs.Geocentric:
		if at == stageGeodetic {
			p.steps = append(p.steps, geocentricConversion{ellipsoid: to.Ellipsoid})
		}
		p.steps = append(p.steps, geocentricAxes{crs: t, inverse: true})
	default:
		return nil, unsupportedKind(source, target)
	}
	return p, nil
}

func noPath(source, target crs.CoordinateSystem, from, to *domain.Datum) error {
	missing := from
	if from.CanReachWGS84() {
		missing = to
	}
	return &domain.TransformationError{
		Source: source.Code().String(),
		Target: target.Code().String(),
		Err:    fmt.Errorf("%w: datum %s has no shift to WGS 84", domain.ErrNoTransformationPath, missing.Code),
	}
}

func unsupportedKind(source, target crs.CoordinateSystem) error {
	return &domain.TransformationError{
		Source: source.Code().String(),
		Target: target.Code().String(),
		Err:    domain.ErrUnsupportedCRSKind,
	}
}
