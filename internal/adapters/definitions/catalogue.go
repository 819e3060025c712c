// Package definitions provides the definition sources the registry resolves
// CRS codes from: the embedded catalogue, YAML files on disk and SQLite.
package definitions

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jobrunner/meridian/internal/domain"
)

// Document is the layout of a YAML definition file.
type Document struct {
	Definitions []*domain.RawDefinition `yaml:"definitions"`
}

// Parse decodes a YAML definition file. Unknown fields are rejected so that a
// misspelt parameter does not silently vanish.
func Parse(data []byte) ([]*domain.RawDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding definitions: %w", err)
	}
	return doc.Definitions, nil
}

// Marshal encodes definitions in the layout Parse reads.
func Marshal(defs ...*domain.RawDefinition) ([]byte, error) {
	return yaml.Marshal(Document{Definitions: defs})
}

// Catalogue is an immutable in-memory index of definitions.
type Catalogue struct {
	byKey map[string]*domain.RawDefinition
	defs  []*domain.RawDefinition
}

// NewCatalogue indexes the definitions under every structured identifier.
// An identifier claimed by two definitions is an error.
func NewCatalogue(defs []*domain.RawDefinition) (*Catalogue, error) {
	c := &Catalogue{
		byKey: make(map[string]*domain.RawDefinition, len(defs)),
		defs:  make([]*domain.RawDefinition, 0, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			continue
		}
		codes := def.Codes()
		if len(codes) == 0 {
			return nil, &domain.DefinitionError{Code: def.Code, Field: "code",
				Message: "definition has no CODESPACE:CODE identifier"}
		}
		for _, code := range codes {
			if prev, ok := c.byKey[code.Key()]; ok && prev != def {
				return nil, &domain.DefinitionError{Code: def.Code, Field: "code",
					Message: fmt.Sprintf("%s is already defined by %s", code, prev.Code)}
			}
			c.byKey[code.Key()] = def
		}
		c.defs = append(c.defs, def)
	}
	return c, nil
}

// Lookup implements output.DefinitionSource. Unstructured codes are matched
// against names and aliases in catalogue order.
func (c *Catalogue) Lookup(_ context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	if code.IsStructured() {
		if def, ok := c.byKey[code.Key()]; ok {
			return def, nil
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
	}
	for _, def := range c.defs {
		if def.Matches(code) {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrCRSNotFound, code)
}

// Codes implements output.DefinitionLister. It returns the primary code of
// every definition, sorted.
func (c *Catalogue) Codes(_ context.Context) ([]domain.CRSCode, error) {
	codes := make([]domain.CRSCode, 0, len(c.defs))
	for _, def := range c.defs {
		codes = append(codes, def.Codes()[0])
	}
	slices.SortFunc(codes, compareCodes)
	return codes, nil
}

// Len returns the number of definitions.
func (c *Catalogue) Len() int {
	return len(c.defs)
}

func compareCodes(a, b domain.CRSCode) int {
	if c := cmp.Compare(a.Codespace, b.Codespace); c != 0 {
		return c
	}
	// Numeric codes sort numerically.
	if isDigits(a.Code) && isDigits(b.Code) {
		if c := cmp.Compare(len(a.Code), len(b.Code)); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Code, b.Code)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
