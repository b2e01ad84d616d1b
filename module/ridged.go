package module

import (
	"math"

	"github.com/pthm-cable/xnoise/noise"
)

// RidgedMultifractal produces sharp ridges by folding each octave's signal
// into (offset-|n|)² and feeding the result back as the next octave's weight.
//
// Lacunarity and the spectral exponent determine a per-octave weight table.
// They are only settable through methods so the table is rebuilt at once and
// never observed stale.
type RidgedMultifractal struct {
	Frequency   float64       `yaml:"frequency"`
	OctaveCount int           `yaml:"octaves"`
	Gain        float64       `yaml:"gain"`
	Offset      float64       `yaml:"offset"`
	Seed        int32         `yaml:"seed"`
	Quality     noise.Quality `yaml:"quality"`

	lacunarity float64
	exponent   float64
	weights    [noise.OctavesMaximum]float64
}

// NewRidgedMultifractal returns ridged noise with frequency 1, lacunarity 2,
// six octaves, exponent 1, gain 2 and offset 1.
func NewRidgedMultifractal() *RidgedMultifractal {
	r := &RidgedMultifractal{
		Frequency:   1,
		OctaveCount: 6,
		Gain:        2,
		Offset:      1,
		Quality:     noise.QualityStandard,
		lacunarity:  2,
		exponent:    1,
	}
	r.updateWeights()
	return r
}

func (*RidgedMultifractal) Kind() Kind { return KindRidgedMultifractal }
func (*RidgedMultifractal) Sources() int { return 0 }

// Lacunarity returns the per-octave frequency multiplier.
func (r *RidgedMultifractal) Lacunarity() float64 { return r.lacunarity }

// SetLacunarity changes the frequency multiplier and rebuilds the weight table.
func (r *RidgedMultifractal) SetLacunarity(l float64) {
	r.lacunarity = l
	r.updateWeights()
}

// Exponent returns the spectral weight exponent.
func (r *RidgedMultifractal) Exponent() float64 { return r.exponent }

// SetExponent changes the spectral weight exponent and rebuilds the weight
// table. Higher values damp high-frequency octaves more.
func (r *RidgedMultifractal) SetExponent(e float64) {
	r.exponent = e
	r.updateWeights()
}

func (r *RidgedMultifractal) updateWeights() {
	f := 1.0
	for i := range r.weights {
		r.weights[i] = math.Pow(f, -r.exponent)
		f *= r.lacunarity
	}
}

// Value returns the ridged sum at (x,y,z), roughly in [-1,1].
func (r *RidgedMultifractal) Value(x, y, z float64) float64 {
	value := 0.0
	weight := 1.0
	x *= r.Frequency
	y *= r.Frequency
	z *= r.Frequency
	for i, n := 0, clampOctaves(r.OctaveCount); i < n; i++ {
		nx := noise.MakeInt32Range(x)
		ny := noise.MakeInt32Range(y)
		nz := noise.MakeInt32Range(z)
		seed := noise.OctaveSeed(r.Seed, i) & 0x7fffffff
		signal := noise.GradientCoherentNoise3D(nx, ny, nz, seed, r.Quality)
		signal = r.Offset - math.Abs(signal)
		signal *= signal
		signal *= weight
		weight = noise.Clamp01(signal * r.Gain)
		value += signal * r.weights[i]
		x *= r.lacunarity
		y *= r.lacunarity
		z *= r.lacunarity
	}
	return value*1.25 - 1
}
