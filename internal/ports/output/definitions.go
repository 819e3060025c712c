package output

import (
	"context"

	"github.com/jobrunner/meridian/internal/domain"
)

// DefinitionSource defines the secondary port for raw CRS definitions.
type DefinitionSource interface {
	// Lookup returns the raw definition of a code. Unknown codes yield an
	// error wrapping domain.ErrNotFound.
	Lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error)
}

// DefinitionLister is implemented by sources that can enumerate their codes.
type DefinitionLister interface {
	// Codes returns the primary code of every definition.
	Codes(ctx context.Context) ([]domain.CRSCode, error)
}

// DefinitionReloader is implemented by sources backed by files that can change.
type DefinitionReloader interface {
	// Reload re-reads the backing files and returns the number of definitions.
	Reload(ctx context.Context) (int, error)
}
