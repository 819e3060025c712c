package definitions

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed builtin.yaml
var builtinYAML []byte

var builtin = sync.OnceValues(func() (*Catalogue, error) {
	defs, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin definitions: %w", err)
	}
	return NewCatalogue(defs)
})

// Builtin returns the catalogue compiled into the binary. It holds the common
// geographic CRSs of WGS 84, ETRS89, DHDN, Amersfoort and RGF93 together with
// their usual projected CRSs.
func Builtin() (*Catalogue, error) {
	return builtin()
}
