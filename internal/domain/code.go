package domain

import (
	"strings"
	"unicode"
)

// CRSCode identifies a CRS, datum, ellipsoid or projection method.
//
// A structured code has a codespace and a code (EPSG:31466). Free-text aliases such
// as "Transverse_Mercator" keep an empty codespace and code and are only ever
// compared through MatchesAlias.
type CRSCode struct {
	Codespace string // Upper-case authority, e.g. EPSG
	Code      string // Code within the codespace
	Original  string // Text the code was parsed from
}

// NewCRSCode creates a structured code.
func NewCRSCode(codespace, code string) CRSCode {
	cs := strings.ToUpper(strings.TrimSpace(codespace))
	c := strings.TrimSpace(code)
	return CRSCode{Codespace: cs, Code: c, Original: cs + ":" + c}
}

// ParseCode parses a code string. It accepts CODESPACE:CODE, OGC URNs
// (urn:ogc:def:crs:EPSG::31466, urn:ogc:def:crs:EPSG:6.18:31466), OGC http URIs
// (http://www.opengis.net/def/crs/EPSG/0/31466,
// http://www.opengis.net/gml/srs/epsg.xml#31466). Anything else is kept as an
// unstructured alias.
func ParseCode(s string) CRSCode {
	text := strings.TrimSpace(s)
	if text == "" {
		return CRSCode{}
	}

	if cs, code, ok := parseStructured(text); ok {
		return CRSCode{
			Codespace: strings.ToUpper(cs),
			Code:      code,
			Original:  text,
		}
	}

	return CRSCode{Original: text}
}

// ParseCodes parses every string; empty strings yield zero codes.
func ParseCodes(ss ...string) []CRSCode {
	codes := make([]CRSCode, len(ss))
	for i, s := range ss {
		codes[i] = ParseCode(s)
	}
	return codes
}

func parseStructured(text string) (string, string, bool) {
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "urn:ogc:def:"), strings.HasPrefix(lower, "urn:x-ogc:def:"):
		// urn:ogc:def:<type>:<authority>:<version>:<code>
		parts := strings.Split(text, ":")
		if len(parts) < 6 {
			return "", "", false
		}
		authority := parts[4]
		code := parts[len(parts)-1]
		if authority == "" || code == "" {
			return "", "", false
		}
		return authority, code, true

	case strings.HasPrefix(lower, "http://www.opengis.net/gml/srs/"),
		strings.HasPrefix(lower, "https://www.opengis.net/gml/srs/"):
		// http://www.opengis.net/gml/srs/epsg.xml#31466
		hash := strings.LastIndex(text, "#")
		if hash < 0 || hash == len(text)-1 {
			return "", "", false
		}
		file := text[strings.LastIndex(text[:hash], "/")+1 : hash]
		authority := strings.TrimSuffix(file, ".xml")
		return authority, text[hash+1:], authority != ""

	case strings.HasPrefix(lower, "http://www.opengis.net/def/"),
		strings.HasPrefix(lower, "https://www.opengis.net/def/"):
		// http://www.opengis.net/def/<type>/<authority>/<version>/<code>
		rest := text[strings.Index(lower, "/def/")+len("/def/"):]
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) < 4 || parts[1] == "" || parts[len(parts)-1] == "" {
			return "", "", false
		}
		return parts[1], parts[len(parts)-1], true
	}

	idx := strings.Index(text, ":")
	if idx <= 0 || idx == len(text)-1 {
		return "", "", false
	}
	cs, code := text[:idx], text[idx+1:]
	if strings.ContainsAny(cs, " \t") || strings.ContainsAny(code, " \t:") {
		return "", "", false
	}
	return cs, code, true
}

// IsZero reports whether the code is absent.
func (c CRSCode) IsZero() bool {
	return c.Codespace == "" && c.Code == "" && c.Original == ""
}

// IsStructured reports whether the code has a codespace and a code.
func (c CRSCode) IsStructured() bool {
	return c.Codespace != "" && c.Code != ""
}

// Equal compares structured codes by codespace and code. When either side is
// unstructured the original texts must be identical.
func (c CRSCode) Equal(o CRSCode) bool {
	if c.IsStructured() && o.IsStructured() {
		return c.Codespace == o.Codespace && c.Code == o.Code
	}
	if c.IsStructured() != o.IsStructured() {
		return false
	}
	return c.Original == o.Original
}

// Key returns the canonical cache key of the code.
func (c CRSCode) Key() string {
	if c.IsStructured() {
		return c.Codespace + ":" + c.Code
	}
	return c.Original
}

// String returns the conventional CODESPACE:CODE rendering.
func (c CRSCode) String() string {
	return c.Key()
}

// MatchesAlias reports whether the free-text alias names this code. Comparison is
// case-insensitive and ignores underscores, hyphens and repeated whitespace.
func (c CRSCode) MatchesAlias(alias string) bool {
	n := NormalizeName(alias)
	if n == "" {
		return false
	}
	if NormalizeName(c.Original) == n {
		return true
	}
	return c.IsStructured() && NormalizeName(c.Key()) == n
}

// NormalizeName folds case, maps '_' and '-' to spaces and collapses whitespace.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
