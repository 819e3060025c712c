package domain

import (
	"errors"
	"testing"
)

func validGeographic() *RawDefinition {
	return &RawDefinition{
		Code:        "EPSG:4314",
		Identifiers: []string{"urn:ogc:def:crs:EPSG::4314"},
		Name:        "DHDN",
		Aliases:     []string{"Deutsches Hauptdreiecksnetz"},
		Kind:        KindGeographic,
		Datum: &RawDatum{
			Code: "EPSG:6314",
			Ellipsoid: RawEllipsoid{
				Code:              "EPSG:7004",
				SemiMajorAxis:     6377397.155,
				InverseFlattening: 299.1528128,
			},
		},
	}
}

func TestRawDefinitionValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *RawDefinition)
		wantField string
	}{
		{"valid", func(d *RawDefinition) {}, ""},
		{"free text code", func(d *RawDefinition) { d.Code = "DHDN" }, "code"},
		{"unknown kind", func(d *RawDefinition) { d.Kind = "vertical" }, "kind"},
		{"missing datum", func(d *RawDefinition) { d.Datum = nil }, "datum"},
		{"both flattening and minor axis", func(d *RawDefinition) {
			d.Datum.Ellipsoid.SemiMinorAxis = 6356078.963
		}, "datum.ellipsoid"},
		{"neither flattening nor minor axis", func(d *RawDefinition) {
			d.Datum.Ellipsoid.InverseFlattening = 0
		}, "datum.ellipsoid"},
		{"three axes on geographic", func(d *RawDefinition) {
			d.Axes = []RawAxis{{Name: "a"}, {Name: "b"}, {Name: "c"}}
		}, "axes"},
		{"projected without projection", func(d *RawDefinition) {
			d.Kind = KindProjected
		}, "projection.method"},
		{"projected with bad hemisphere", func(d *RawDefinition) {
			d.Kind = KindProjected
			d.Projection = &RawProjection{Method: []string{"EPSG:9807"}, Hemisphere: "east"}
		}, "projection.hemisphere"},
		{"projected without base", func(d *RawDefinition) {
			d.Kind = KindProjected
			d.Datum = nil
			d.Projection = &RawProjection{Method: []string{"EPSG:9807"}}
		}, "base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validGeographic()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var defErr *DefinitionError
			if !errors.As(err, &defErr) {
				t.Fatalf("expected DefinitionError, got %v", err)
			}
			if defErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", defErr.Field, tt.wantField)
			}
		})
	}
}

func TestRawDefinitionMatches(t *testing.T) {
	d := validGeographic()

	tests := []struct {
		code string
		want bool
	}{
		{"EPSG:4314", true},
		{"urn:ogc:def:crs:EPSG::4314", true},
		{"EPSG:4326", false},
		{"dhdn", true},
		{"deutsches_hauptdreiecksnetz", true},
		{"something else", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := d.Matches(ParseCode(tt.code)); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}

	if got := len(d.Codes()); got != 2 {
		t.Errorf("Codes() returned %d codes, want 2", got)
	}
}
