package module

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/xnoise/noise"
)

// Simplex sums octaves of OpenSimplex noise. It has no lattice artefacts
// along the axes, at the price of not matching the Perlin lattice exactly.
// The seed is only settable through SetSeed because every octave keeps its
// own seeded permutation.
type Simplex struct {
	Frequency   float64 `yaml:"frequency"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
	OctaveCount int     `yaml:"octaves"`

	seed    int64
	octaves [noise.OctavesMaximum]opensimplex.Noise
}

// NewSimplex returns fractal OpenSimplex noise seeded with seed.
func NewSimplex(seed int64) *Simplex {
	s := &Simplex{
		Frequency:   1,
		Lacunarity:  2,
		Persistence: 0.5,
		OctaveCount: 6,
	}
	s.SetSeed(seed)
	return s
}

func (*Simplex) Kind() Kind { return KindSimplex }
func (*Simplex) Sources() int { return 0 }

// Seed returns the base seed.
func (s *Simplex) Seed() int64 { return s.seed }

// SetSeed reseeds every octave. Octave i uses seed+i.
func (s *Simplex) SetSeed(seed int64) {
	s.seed = seed
	for i := range s.octaves {
		s.octaves[i] = opensimplex.New(seed + int64(i))
	}
}

// Value returns the fractal sum at (x,y,z).
func (s *Simplex) Value(x, y, z float64) float64 {
	value := 0.0
	amplitude := 1.0
	x *= s.Frequency
	y *= s.Frequency
	z *= s.Frequency
	for i, n := 0, clampOctaves(s.OctaveCount); i < n; i++ {
		value += s.octaves[i].Eval3(x, y, z) * amplitude
		x *= s.Lacunarity
		y *= s.Lacunarity
		z *= s.Lacunarity
		amplitude *= s.Persistence
	}
	return value
}
