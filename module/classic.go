package module

import (
	perlin "github.com/aquilax/go-perlin"
)

// ClassicPerlin is Ken Perlin's reference gradient noise summed over a few
// octaves. Each octave multiplies the frequency by Beta and divides the
// amplitude by Alpha. Alpha, Beta, Octaves and Seed are baked into the
// permutation tables, so they change only through SetParams.
type ClassicPerlin struct {
	Frequency float64 `yaml:"frequency"`

	alpha   float64
	beta    float64
	octaves int32
	seed    int64
	p       *perlin.Perlin
}

// NewClassicPerlin returns three octaves with alpha and beta 2.
func NewClassicPerlin() *ClassicPerlin {
	c := &ClassicPerlin{Frequency: 1}
	c.SetParams(2, 2, 3, 0)
	return c
}

func (*ClassicPerlin) Kind() Kind { return KindClassicPerlin }
func (*ClassicPerlin) Sources() int { return 0 }

func (c *ClassicPerlin) Alpha() float64 { return c.alpha }
func (c *ClassicPerlin) Beta() float64 { return c.beta }
func (c *ClassicPerlin) Octaves() int { return int(c.octaves) }
func (c *ClassicPerlin) Seed() int64 { return c.seed }

// SetParams rebuilds the permutation tables. Octaves is clamped to
// [1, OctavesMaximum].
func (c *ClassicPerlin) SetParams(alpha, beta float64, octaves int, seed int64) {
	c.alpha, c.beta, c.seed = alpha, beta, seed
	c.octaves = int32(clampOctaves(octaves))
	c.p = perlin.NewPerlin(alpha, beta, c.octaves, seed)
}

// Value returns the octave sum at (x,y,z).
func (c *ClassicPerlin) Value(x, y, z float64) float64 {
	return c.p.Noise3D(x*c.Frequency, y*c.Frequency, z*c.Frequency)
}
