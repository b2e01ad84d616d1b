package noisemap

import (
	"fmt"
	"math"
)

// Projection selects how grid positions map to 3D sample points.
type Projection uint8

const (
	// Planar samples the plane y=0. X runs left to right, Y top to bottom.
	Planar Projection = iota
	// Cylindrical samples the unit cylinder around the y axis. X is the
	// angle in degrees, Y the height.
	Cylindrical
	// Spherical samples the unit sphere. X is the longitude and Y the
	// latitude, both in degrees.
	Spherical
)

var projectionNames = [...]string{
	Planar:      "planar",
	Cylindrical: "cylindrical",
	Spherical:   "spherical",
}

func (p Projection) String() string {
	if int(p) < len(projectionNames) {
		return projectionNames[p]
	}
	return fmt.Sprintf("projection(%d)", p)
}

// ParseProjection looks up a projection by name.
func ParseProjection(s string) (Projection, error) {
	for i, name := range projectionNames {
		if name == s {
			return Projection(i), nil
		}
	}
	return 0, fmt.Errorf("unknown projection %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Projection) MarshalText() ([]byte, error) {
	if int(p) >= len(projectionNames) {
		return nil, fmt.Errorf("unknown projection %d", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Projection) UnmarshalText(b []byte) error {
	v, err := ParseProjection(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Standard clip region edges.
const (
	South    = -90.0
	North    = 90.0
	West     = -180.0
	East     = 180.0
	AngleMin = -180.0
	AngleMax = 180.0
	Left     = -1.0
	Right    = 1.0
	Top      = -1.0
	Bottom   = 1.0
)

// Bounds is a clip region. X is the horizontal axis of the grid and Y the
// vertical one; see Projection for their units.
type Bounds struct {
	XMin float64 `yaml:"x_min" json:"x_min"`
	XMax float64 `yaml:"x_max" json:"x_max"`
	YMin float64 `yaml:"y_min" json:"y_min"`
	YMax float64 `yaml:"y_max" json:"y_max"`
}

// PlanarBounds returns the region [left,right] x [top,bottom].
func PlanarBounds(left, right, top, bottom float64) Bounds {
	return Bounds{XMin: left, XMax: right, YMin: top, YMax: bottom}
}

// CylindricalBounds returns the region [angleMin,angleMax] x [heightMin,heightMax].
func CylindricalBounds(angleMin, angleMax, heightMin, heightMax float64) Bounds {
	return Bounds{XMin: angleMin, XMax: angleMax, YMin: heightMin, YMax: heightMax}
}

// SphericalBounds returns the region [west,east] x [south,north].
func SphericalBounds(south, north, west, east float64) Bounds {
	return Bounds{XMin: west, XMax: east, YMin: south, YMax: north}
}

// StandardBounds returns the full region for p: the whole sphere, a full
// turn of the cylinder between heights -1 and 1, or the square [-1,1]².
func StandardBounds(p Projection) Bounds {
	switch p {
	case Cylindrical:
		return CylindricalBounds(AngleMin, AngleMax, Top, Bottom)
	case Spherical:
		return SphericalBounds(South, North, West, East)
	}
	return PlanarBounds(Left, Right, Top, Bottom)
}

// Validate reports ErrBounds unless both extents are positive.
func (b Bounds) Validate() error {
	// Written as !(max > min) so NaN edges are rejected too.
	if !(b.XMax > b.XMin) || !(b.YMax > b.YMin) {
		return fmt.Errorf("%w: x [%g,%g] y [%g,%g]", ErrBounds, b.XMin, b.XMax, b.YMin, b.YMax)
	}
	return nil
}

// Point maps a position in the clip region to the 3D sample point for p.
func Point(p Projection, u, v float64) (x, y, z float64) {
	switch p {
	case Cylindrical:
		a := u * math.Pi / 180
		return math.Cos(a), v, math.Sin(a)
	case Spherical:
		lon := u * math.Pi / 180
		lat := v * math.Pi / 180
		r := math.Cos(lat)
		return r * math.Cos(lon), math.Sin(lat), r * math.Sin(lon)
	}
	return u, 0, v
}

// Unproject is the inverse of Point for points on the projection surface.
// Angles come back in (-180,180].
func Unproject(p Projection, x, y, z float64) (u, v float64) {
	switch p {
	case Cylindrical:
		return math.Atan2(z, x) * 180 / math.Pi, y
	case Spherical:
		r := math.Sqrt(x*x + y*y + z*z)
		if r == 0 {
			return 0, 0
		}
		lat := math.Asin(math.Max(-1, math.Min(1, y/r)))
		return math.Atan2(z, x) * 180 / math.Pi, lat * 180 / math.Pi
	}
	return x, z
}
