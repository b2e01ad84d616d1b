package module

import (
	"math"

	"github.com/pthm-cable/xnoise/noise"
)

// Voronoi partitions space into cells around pseudo-random seed points, one
// per unit lattice cell. Each cell outputs a constant derived from its seed
// point; with UseDistance the distance to the seed point is added.
type Voronoi struct {
	Frequency    float64 `yaml:"frequency"`
	Displacement float64 `yaml:"displacement"`
	Seed         int32   `yaml:"seed"`
	UseDistance  bool    `yaml:"use_distance"`
}

// NewVoronoi returns Voronoi cells with frequency and displacement 1.
func NewVoronoi() *Voronoi { return &Voronoi{Frequency: 1, Displacement: 1} }

func (*Voronoi) Kind() Kind { return KindVoronoi }
func (*Voronoi) Sources() int { return 0 }

// Value returns the cell value at (x,y,z). Scaled coordinates are folded
// into the int32 lattice range first, as for the coherent noise generators.
func (v *Voronoi) Value(x, y, z float64) float64 {
	x = noise.MakeInt32Range(x * v.Frequency)
	y = noise.MakeInt32Range(y * v.Frequency)
	z = noise.MakeInt32Range(z * v.Frequency)
	xc, yc, zc := v.nearest(x, y, z)

	value := 0.0
	if v.UseDistance {
		dx, dy, dz := xc-x, yc-y, zc-z
		value = math.Sqrt(dx*dx+dy*dy+dz*dz)*noise.Sqrt3 - 1
	}
	cell := noise.ValueNoise3D(int32(math.Floor(xc)), int32(math.Floor(yc)), int32(math.Floor(zc)), 0)
	return value + v.Displacement*cell
}

// nearest returns the seed point closest to the already-scaled point (x,y,z).
func (v *Voronoi) nearest(x, y, z float64) (xc, yc, zc float64) {
	xi, yi, zi := cellOf(x), cellOf(y), cellOf(z)
	minDist := float64(math.MaxInt32)
	for zcu := zi - 2; zcu <= zi+2; zcu++ {
		for ycu := yi - 2; ycu <= yi+2; ycu++ {
			for xcu := xi - 2; xcu <= xi+2; xcu++ {
				xp := float64(xcu) + noise.ValueNoise3D(xcu, ycu, zcu, v.Seed)
				yp := float64(ycu) + noise.ValueNoise3D(xcu, ycu, zcu, v.Seed+1)
				zp := float64(zcu) + noise.ValueNoise3D(xcu, ycu, zcu, v.Seed+2)
				dx, dy, dz := xp-x, yp-y, zp-z
				d := dx*dx + dy*dy + dz*dz
				if d < minDist {
					minDist = d
					xc, yc, zc = xp, yp, zp
				}
			}
		}
	}
	return xc, yc, zc
}

// cellOf truncates toward zero and steps down for non-positive inputs. The
// 5x5x5 search window around the result always contains the nearest seed.
func cellOf(v float64) int32 {
	if v > 0 {
		return int32(v)
	}
	return int32(v) - 1
}
