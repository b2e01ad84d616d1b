package module

import "math"

// Abs outputs |source|.
type Abs struct{}

func (*Abs) Kind() Kind { return KindAbs }
func (*Abs) Sources() int { return 1 }

// Invert outputs -source.
type Invert struct{}

func (*Invert) Kind() Kind { return KindInvert }
func (*Invert) Sources() int { return 1 }

// Min outputs the smaller of its two sources.
type Min struct{}

func (*Min) Kind() Kind { return KindMin }
func (*Min) Sources() int { return 2 }

// Max outputs the larger of its two sources.
type Max struct{}

func (*Max) Kind() Kind { return KindMax }
func (*Max) Sources() int { return 2 }

// Add outputs the sum of its two sources.
type Add struct{}

func (*Add) Kind() Kind { return KindAdd }
func (*Add) Sources() int { return 2 }

// Multiply outputs the product of its two sources.
type Multiply struct{}

func (*Multiply) Kind() Kind { return KindMultiply }
func (*Multiply) Sources() int { return 2 }

// Power raises the first source to the power of the second.
type Power struct{}

func (*Power) Kind() Kind { return KindPower }
func (*Power) Sources() int { return 2 }

// Exponent maps the source from [-1,1] to [0,1], raises it to Exponent and
// maps it back.
type Exponent struct {
	Exponent float64 `yaml:"exponent"`
}

// NewExponent returns an identity exponent (1).
func NewExponent() *Exponent { return &Exponent{Exponent: 1} }

func (*Exponent) Kind() Kind { return KindExponent }
func (*Exponent) Sources() int { return 1 }

func (e *Exponent) apply(v float64) float64 {
	return math.Pow(math.Abs((v+1)/2), e.Exponent)*2 - 1
}

// ScaleBias outputs source*Scale + Bias.
type ScaleBias struct {
	Scale float64 `yaml:"scale"`
	Bias  float64 `yaml:"bias"`
}

// NewScaleBias returns the identity transform (scale 1, bias 0).
func NewScaleBias() *ScaleBias { return &ScaleBias{Scale: 1} }

func (*ScaleBias) Kind() Kind { return KindScaleBias }
func (*ScaleBias) Sources() int { return 1 }

// Clamp limits the source to [Min,Max]. Inverted bounds are swapped at
// evaluation time; the stored values are left alone.
type Clamp struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// NewClamp returns a clamp to [-1,1].
func NewClamp() *Clamp { return &Clamp{Min: -1, Max: 1} }

func (*Clamp) Kind() Kind { return KindClamp }
func (*Clamp) Sources() int { return 1 }

// SetBounds sets both bounds at once.
func (c *Clamp) SetBounds(lo, hi float64) {
	c.Min, c.Max = lo, hi
}

func (c *Clamp) apply(v float64) float64 {
	lo, hi := c.Min, c.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Blend interpolates between sources 0 and 1. Source 2 is the controller:
// -1 gives source 0, +1 gives source 1.
type Blend struct{}

func (*Blend) Kind() Kind { return KindBlend }
func (*Blend) Sources() int { return 3 }
