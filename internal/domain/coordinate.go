// Package domain contains the geodetic primitives, code types and errors shared by
// every layer of the engine.
package domain

import (
	"fmt"
	"math"
)

// Coordinate is a position in the axis order and units of some CRS.
type Coordinate struct {
	X float64 // First axis (longitude, latitude or easting depending on the CRS)
	Y float64 // Second axis
	Z float64 // Height or geocentric Z (optional)
}

// NewCoordinate creates a two-dimensional coordinate.
func NewCoordinate(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// NewCoordinate3D creates a coordinate with height.
func NewCoordinate3D(x, y, z float64) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

// Validate rejects NaN and infinite ordinates.
func (c Coordinate) Validate() error {
	for _, v := range []struct {
		field string
		value float64
	}{{"x", c.X}, {"y", c.Y}, {"z", c.Z}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return &ValidationError{
				Field:      v.field,
				Value:      v.value,
				Constraint: "finite",
				Message:    "ordinate must be a finite number",
			}
		}
	}
	return nil
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	if c.Z != 0 {
		return fmt.Sprintf("POINT Z(%f %f %f)", c.X, c.Y, c.Z)
	}
	return fmt.Sprintf("POINT(%f %f)", c.X, c.Y)
}
