package domain

// AxisOrientation is the direction an axis points to.
type AxisOrientation int

// Axis orientations.
const (
	AxisOther AxisOrientation = iota
	AxisEast
	AxisWest
	AxisNorth
	AxisSouth
	AxisUp
	AxisDown
)

// String returns the string representation of the orientation.
func (o AxisOrientation) String() string {
	switch o {
	case AxisEast:
		return "east"
	case AxisWest:
		return "west"
	case AxisNorth:
		return "north"
	case AxisSouth:
		return "south"
	case AxisUp:
		return "up"
	case AxisDown:
		return "down"
	default:
		return "other"
	}
}

// ParseAxisOrientation parses an orientation name; unknown names yield AxisOther.
func ParseAxisOrientation(s string) AxisOrientation {
	switch NormalizeName(s) {
	case "east", "e":
		return AxisEast
	case "west", "w":
		return AxisWest
	case "north", "n":
		return AxisNorth
	case "south", "s":
		return AxisSouth
	case "up", "u":
		return AxisUp
	case "down", "d":
		return AxisDown
	default:
		return AxisOther
	}
}

// Axis is one axis of a coordinate system.
type Axis struct {
	Name        string
	Orientation AxisOrientation
	Unit        *Unit
}

// IsEasting reports whether the axis measures along east or west.
func (a Axis) IsEasting() bool {
	return a.Orientation == AxisEast || a.Orientation == AxisWest
}

// IsNorthing reports whether the axis measures along north or south.
func (a Axis) IsNorthing() bool {
	return a.Orientation == AxisNorth || a.Orientation == AxisSouth
}

// Sign returns -1 for axes pointing west, south or down and 1 otherwise.
func (a Axis) Sign() float64 {
	switch a.Orientation {
	case AxisWest, AxisSouth, AxisDown:
		return -1
	default:
		return 1
	}
}

// Default axis pairs.
var (
	LonLatAxes = []Axis{
		{Name: "Longitude", Orientation: AxisEast, Unit: Degree},
		{Name: "Latitude", Orientation: AxisNorth, Unit: Degree},
	}
	EastNorthAxes = []Axis{
		{Name: "Easting", Orientation: AxisEast, Unit: Metre},
		{Name: "Northing", Orientation: AxisNorth, Unit: Metre},
	}
	GeocentricAxes = []Axis{
		{Name: "X", Orientation: AxisOther, Unit: Metre},
		{Name: "Y", Orientation: AxisEast, Unit: Metre},
		{Name: "Z", Orientation: AxisNorth, Unit: Metre},
	}
)
