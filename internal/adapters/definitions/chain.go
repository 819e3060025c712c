package definitions

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

// Chain consults several sources in order. The first source that knows a code
// answers; a source failure stops the search so that a shadowed definition is
// never served by accident.
type Chain []output.DefinitionSource

// Lookup implements output.DefinitionSource.
func (c Chain) Lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	for _, source := range c {
		def, err := source.Lookup(ctx, code)
		switch {
		case err == nil && def != nil:
			return def, nil
		case err == nil, errors.Is(err, domain.ErrNotFound):
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
}

// Codes implements output.DefinitionLister over every listing member.
func (c Chain) Codes(ctx context.Context) ([]domain.CRSCode, error) {
	seen := make(map[string]struct{})
	var codes []domain.CRSCode
	for _, source := range c {
		lister, ok := source.(output.DefinitionLister)
		if !ok {
			continue
		}
		listed, err := lister.Codes(ctx)
		if err != nil {
			return nil, err
		}
		for _, code := range listed {
			if _, dup := seen[code.Key()]; dup {
				continue
			}
			seen[code.Key()] = struct{}{}
			codes = append(codes, code)
		}
	}
	slices.SortFunc(codes, compareCodes)
	return codes, nil
}

// Reload implements output.DefinitionReloader by reloading every member that
// supports it. It returns the total number of definitions reloaded.
func (c Chain) Reload(ctx context.Context) (int, error) {
	total := 0
	for _, source := range c {
		reloader, ok := source.(output.DefinitionReloader)
		if !ok {
			continue
		}
		n, err := reloader.Reload(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
