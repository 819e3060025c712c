package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(500000, 5700000)

	if c.X != 500000 {
		t.Errorf("expected X=500000, got %f", c.X)
	}
	if c.Y != 5700000 {
		t.Errorf("expected Y=5700000, got %f", c.Y)
	}
	if c.Z != 0 {
		t.Errorf("expected Z=0, got %f", c.Z)
	}
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{
			name:    "finite coordinate",
			coord:   NewCoordinate(9.9, 52.5),
			wantErr: false,
		},
		{
			name:    "with height",
			coord:   NewCoordinate3D(2500000, 5600000, 120),
			wantErr: false,
		},
		{
			name:    "NaN x",
			coord:   NewCoordinate(math.NaN(), 0),
			wantErr: true,
		},
		{
			name:    "infinite y",
			coord:   NewCoordinate(0, math.Inf(-1)),
			wantErr: true,
		},
		{
			name:    "infinite z",
			coord:   NewCoordinate3D(0, 0, math.Inf(1)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  string
	}{
		{
			name:  "2D",
			coord: NewCoordinate(9.9, 52.5),
			want:  "POINT(9.900000 52.500000)",
		},
		{
			name:  "3D",
			coord: NewCoordinate3D(9.9, 52.5, 100),
			want:  "POINT Z(9.900000 52.500000 100.000000)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coord.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
