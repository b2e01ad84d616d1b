package module

import (
	"math"

	"github.com/pthm-cable/xnoise/noise"
)

// Const outputs the same value everywhere.
type Const struct {
	Constant float64 `yaml:"value"`
}

func (*Const) Kind() Kind { return KindConst }
func (*Const) Sources() int { return 0 }

// Value returns the constant; the coordinate is ignored.
func (c *Const) Value(_, _, _ float64) float64 { return c.Constant }

// Checker outputs a unit-sized 3D checkerboard of -1 and +1.
type Checker struct{}

func (*Checker) Kind() Kind { return KindChecker }
func (*Checker) Sources() int { return 0 }

// Value returns +1 when the cell's integer coordinates have even parity sum, -1 otherwise.
func (*Checker) Value(x, y, z float64) float64 {
	ix := int32(math.Floor(noise.MakeInt32Range(x)))
	iy := int32(math.Floor(noise.MakeInt32Range(y)))
	iz := int32(math.Floor(noise.MakeInt32Range(z)))
	if (ix&1)^(iy&1)^(iz&1) != 0 {
		return -1
	}
	return 1
}

// Cylinders outputs concentric cylinders around the y axis.
type Cylinders struct {
	Frequency float64 `yaml:"frequency"`
}

// NewCylinders returns cylinders with one ring per unit.
func NewCylinders() *Cylinders { return &Cylinders{Frequency: 1} }

func (*Cylinders) Kind() Kind { return KindCylinders }
func (*Cylinders) Sources() int { return 0 }

// Value is +1 on each cylinder surface and -1 halfway between two.
func (c *Cylinders) Value(x, _, z float64) float64 {
	x *= c.Frequency
	z *= c.Frequency
	d := math.Sqrt(x*x + z*z)
	small := d - math.Floor(d)
	large := 1 - small
	nearest := math.Min(small, large)
	return 1 - nearest*4
}

// Fractal holds the parameters shared by the octave-summing generators.
type Fractal struct {
	Frequency   float64       `yaml:"frequency"`
	Lacunarity  float64       `yaml:"lacunarity"`
	Persistence float64       `yaml:"persistence"`
	OctaveCount int           `yaml:"octaves"`
	Seed        int32         `yaml:"seed"`
	Quality     noise.Quality `yaml:"quality"`
}

func defaultFractal() Fractal {
	return Fractal{
		Frequency:   1,
		Lacunarity:  2,
		Persistence: 0.5,
		OctaveCount: 6,
		Quality:     noise.QualityStandard,
	}
}

// Octaves returns OctaveCount clamped to [1, noise.OctavesMaximum].
func (f *Fractal) Octaves() int {
	return clampOctaves(f.OctaveCount)
}

func clampOctaves(n int) int {
	if n < 1 {
		return 1
	}
	if n > noise.OctavesMaximum {
		return noise.OctavesMaximum
	}
	return n
}

// Perlin sums octaves of gradient coherent noise with amplitude persistence^i.
type Perlin struct {
	Fractal `yaml:",inline"`
}

// NewPerlin returns Perlin noise with the libnoise defaults: frequency 1,
// lacunarity 2, persistence 0.5, six octaves, seed 0, standard quality.
func NewPerlin() *Perlin { return &Perlin{Fractal: defaultFractal()} }

func (*Perlin) Kind() Kind { return KindPerlin }
func (*Perlin) Sources() int { return 0 }

// Value returns the fractal sum at (x,y,z).
func (p *Perlin) Value(x, y, z float64) float64 {
	value := 0.0
	amplitude := 1.0
	x *= p.Frequency
	y *= p.Frequency
	z *= p.Frequency
	for i, n := 0, p.Octaves(); i < n; i++ {
		nx := noise.MakeInt32Range(x)
		ny := noise.MakeInt32Range(y)
		nz := noise.MakeInt32Range(z)
		signal := noise.GradientCoherentNoise3D(nx, ny, nz, noise.OctaveSeed(p.Seed, i), p.Quality)
		value += signal * amplitude
		x *= p.Lacunarity
		y *= p.Lacunarity
		z *= p.Lacunarity
		amplitude *= p.Persistence
	}
	return value
}

// Billow is Perlin noise with each octave folded to 2|n|-1, giving puffy,
// cloud-like shapes. The sum is shifted up by 0.5.
type Billow struct {
	Fractal `yaml:",inline"`
}

// NewBillow returns billow noise with the same defaults as NewPerlin.
func NewBillow() *Billow { return &Billow{Fractal: defaultFractal()} }

func (*Billow) Kind() Kind { return KindBillow }
func (*Billow) Sources() int { return 0 }

// Value returns the billow sum at (x,y,z).
func (b *Billow) Value(x, y, z float64) float64 {
	value := 0.0
	amplitude := 1.0
	x *= b.Frequency
	y *= b.Frequency
	z *= b.Frequency
	for i, n := 0, b.Octaves(); i < n; i++ {
		nx := noise.MakeInt32Range(x)
		ny := noise.MakeInt32Range(y)
		nz := noise.MakeInt32Range(z)
		signal := noise.GradientCoherentNoise3D(nx, ny, nz, noise.OctaveSeed(b.Seed, i), b.Quality)
		signal = 2*math.Abs(signal) - 1
		value += signal * amplitude
		x *= b.Lacunarity
		y *= b.Lacunarity
		z *= b.Lacunarity
		amplitude *= b.Persistence
	}
	return value + 0.5
}
