package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/projection"
)

// assemble turns a raw definition into a CRS. Base CRS references resolve
// through the registry; chain holds the keys under construction.
func (r *Registry) assemble(ctx context.Context, def *domain.RawDefinition, chain []string) (crs.CoordinateSystem, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	code := domain.ParseCode(def.Code)

	axes, err := assembleAxes(def)
	if err != nil {
		return nil, err
	}

	switch def.Kind {
	case domain.KindGeographic:
		datum, err := r.internDatum(def)
		if err != nil {
			return nil, err
		}
		return crs.NewGeographic(code, def.Name, datum, axes)

	case domain.KindGeocentric:
		datum, err := r.internDatum(def)
		if err != nil {
			return nil, err
		}
		return crs.NewGeocentric(code, def.Name, datum, axes)

	case domain.KindProjected:
		base, err := r.assembleBase(ctx, def, code, chain)
		if err != nil {
			return nil, err
		}
		proj, err := assembleProjection(def, base.Datum().Ellipsoid)
		if err != nil {
			return nil, err
		}
		return crs.NewProjected(code, def.Name, base, proj, axes)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCRSKind, def.Kind)
}

func (r *Registry) assembleBase(ctx context.Context, def *domain.RawDefinition, code domain.CRSCode, chain []string) (*crs.Geographic, error) {
	if def.Base == "" {
		datum, err := r.internDatum(def)
		if err != nil {
			return nil, err
		}
		return crs.NewGeographic(code, def.Name+" (base)", datum, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()
	resolved, err := r.resolve(ctx, domain.ParseCode(def.Base), chain)
	if err != nil {
		return nil, fmt.Errorf("base %s of %s: %w", def.Base, def.Code, err)
	}
	base, ok := resolved.(*crs.Geographic)
	if !ok {
		return nil, &domain.DefinitionError{Code: def.Code, Field: "base",
			Message: fmt.Sprintf("%s is %s, not geographic", def.Base, resolved.Kind())}
	}
	return base, nil
}

// internDatum returns the shared datum for the definition's datum code,
// building it on first use. Datums without a code are never shared. A later
// definition whose datum values disagree with the shared one is logged and
// resolved against the shared datum.
func (r *Registry) internDatum(def *domain.RawDefinition) (*domain.Datum, error) {
	code := domain.ParseCode(def.Datum.Code)

	d, err := assembleDatum(def.Code, def.Datum)
	if err != nil {
		return nil, err
	}
	if !code.IsStructured() {
		return d, nil
	}
	if r.datums.SetIfAbsent(code.Key(), d) {
		return d, nil
	}

	shared, _ := r.datums.Get(code.Key())
	if !sameDatumValues(shared, d) {
		r.logger.Warn("conflicting datum definition, keeping the first one",
			"crs", def.Code, "datum", code.Key())
	}
	return shared, nil
}

func sameDatumValues(a, b *domain.Datum) bool {
	if !a.Ellipsoid.SameShape(b.Ellipsoid) || a.PrimeMeridian.Longitude != b.PrimeMeridian.Longitude {
		return false
	}
	ha, hb := a.ToWGS84, b.ToWGS84
	if !ha.HasValues() || !hb.HasValues() {
		return ha.HasValues() == hb.HasValues()
	}
	return ha.DX == hb.DX && ha.DY == hb.DY && ha.DZ == hb.DZ &&
		ha.EX == hb.EX && ha.EY == hb.EY && ha.EZ == hb.EZ && ha.PPM == hb.PPM
}

func assembleDatum(owner string, raw *domain.RawDatum) (*domain.Datum, error) {
	e, err := assembleEllipsoid(owner, raw.Ellipsoid)
	if err != nil {
		return nil, err
	}

	pm := domain.Greenwich
	if raw.PrimeMeridian != nil {
		u, err := unitOf(owner, "datum.prime_meridian.unit", raw.PrimeMeridian.Unit, domain.Degree, domain.UnitKindAngular)
		if err != nil {
			return nil, err
		}
		pm = domain.PrimeMeridian{
			Code:      domain.ParseCode(raw.PrimeMeridian.Code),
			Name:      raw.PrimeMeridian.Name,
			Longitude: u.ToBase(raw.PrimeMeridian.Longitude),
		}
	}

	d := &domain.Datum{
		Code:          domain.ParseCode(raw.Code),
		Name:          raw.Name,
		Ellipsoid:     e,
		PrimeMeridian: pm,
	}
	if h := raw.ToWGS84; h != nil {
		d.ToWGS84 = &domain.Helmert{
			Code: domain.ParseCode(h.Code),
			DX:   h.DX, DY: h.DY, DZ: h.DZ,
			EX: h.EX, EY: h.EY, EZ: h.EZ,
			PPM: h.PPM,
		}
	}
	return d, nil
}

func assembleEllipsoid(owner string, raw domain.RawEllipsoid) (domain.Ellipsoid, error) {
	u, err := unitOf(owner, "datum.ellipsoid.unit", raw.Unit, domain.Metre, domain.UnitKindLinear)
	if err != nil {
		return domain.Ellipsoid{}, err
	}
	code := domain.ParseCode(raw.Code)
	a := u.ToBase(raw.SemiMajorAxis)

	var e domain.Ellipsoid
	switch {
	case raw.InverseFlattening != 0:
		e, err = domain.NewEllipsoid(code, raw.Name, a, raw.InverseFlattening)
	case raw.SemiMinorAxis == raw.SemiMajorAxis:
		e, err = domain.NewSphere(code, raw.Name, a)
	default:
		e, err = domain.NewEllipsoidFromAxes(code, raw.Name, a, u.ToBase(raw.SemiMinorAxis))
	}
	if err != nil {
		return domain.Ellipsoid{}, fmt.Errorf("ellipsoid of %s: %w", owner, err)
	}
	return e, nil
}

func assembleAxes(def *domain.RawDefinition) ([]domain.Axis, error) {
	if len(def.Axes) == 0 {
		return nil, nil
	}
	axes := make([]domain.Axis, len(def.Axes))
	for i, a := range def.Axes {
		axes[i] = domain.Axis{Name: a.Name, Orientation: domain.ParseAxisOrientation(a.Direction)}
		if a.Unit == "" {
			continue
		}
		u, ok := domain.LookupUnit(a.Unit)
		if !ok {
			return nil, &domain.DefinitionError{Code: def.Code, Field: "axes",
				Message: fmt.Sprintf("unknown unit %q on axis %q", a.Unit, a.Name)}
		}
		axes[i].Unit = u
	}
	return axes, nil
}

// assembleProjection classifies the method and its parameters and binds the
// projection to the base ellipsoid. Parameters the classifier does not know
// are skipped.
func assembleProjection(def *domain.RawDefinition, e domain.Ellipsoid) (projection.Projection, error) {
	raw := def.Projection
	methodCodes := domain.ParseCodes(raw.Method...)
	method := projection.Classify(methodCodes...)
	if method == projection.Unsupported {
		return nil, fmt.Errorf("%w: %s uses %s", domain.ErrUnsupportedProjection, def.Code, strings.Join(raw.Method, ", "))
	}

	var params projection.Parameters
	for _, p := range raw.Parameters {
		kind := projection.ClassifyParameter(domain.ParseCodes(p.Codes...)...)
		if kind == projection.NotSupported {
			continue
		}
		field := "projection.parameters." + kind.String()
		var (
			u   *domain.Unit
			err error
		)
		switch {
		case kind.IsAngular():
			u, err = unitOf(def.Code, field, p.Unit, domain.Degree, domain.UnitKindAngular)
		case kind.IsLinear():
			u, err = unitOf(def.Code, field, p.Unit, domain.Metre, domain.UnitKindLinear)
		default:
			u, err = unitOf(def.Code, field, p.Unit, domain.Unity, domain.UnitKindScale)
		}
		if err != nil {
			return nil, err
		}
		params.Set(kind, u.ToBase(p.Value))
	}

	if strings.EqualFold(raw.Hemisphere, "south") || projection.SouthOrientated(methodCodes...) {
		params.Hemisphere = projection.South
	}

	proj, err := projection.New(method, params, e)
	if err != nil {
		return nil, fmt.Errorf("projection of %s: %w", def.Code, err)
	}
	return proj, nil
}

func unitOf(owner, field, name string, fallback *domain.Unit, kind domain.UnitKind) (*domain.Unit, error) {
	if name == "" {
		return fallback, nil
	}
	u, ok := domain.LookupUnit(name)
	if !ok {
		return nil, &domain.DefinitionError{Code: owner, Field: field, Message: fmt.Sprintf("unknown unit %q", name)}
	}
	if u.Kind != kind {
		return nil, &domain.DefinitionError{Code: owner, Field: field,
			Message: fmt.Sprintf("unit %s is %s, want %s", u, u.Kind, kind)}
	}
	return u, nil
}
