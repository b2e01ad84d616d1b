package module

// Displace offsets the input coordinate by three displacement sources before
// evaluating the base source. Slots: 0 base, 1 x, 2 y, 3 z.
type Displace struct{}

func (*Displace) Kind() Kind { return KindDisplace }
func (*Displace) Sources() int { return 4 }

// Translate shifts the input coordinate before evaluating its source.
type Translate struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (*Translate) Kind() Kind { return KindTranslate }
func (*Translate) Sources() int { return 1 }

// Scale multiplies the input coordinate per axis before evaluating its source.
type Scale struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// NewScale returns the identity scale.
func NewScale() *Scale { return &Scale{X: 1, Y: 1, Z: 1} }

func (*Scale) Kind() Kind { return KindScale }
func (*Scale) Sources() int { return 1 }

// Offsets applied before sampling each distortion field so the three axes
// read unrelated parts of their noise.
const (
	turbX0 = 12414.0 / 65536.0
	turbY0 = 65124.0 / 65536.0
	turbZ0 = 31337.0 / 65536.0
	turbX1 = 26519.0 / 65536.0
	turbY1 = 18128.0 / 65536.0
	turbZ1 = 60493.0 / 65536.0
	turbX2 = 53820.0 / 65536.0
	turbY2 = 11213.0 / 65536.0
	turbZ2 = 44845.0 / 65536.0
)

// Turbulence displaces the input coordinate by three internal Perlin fields
// scaled by Power, then evaluates its source there.
type Turbulence struct {
	Power float64

	XDistort *Perlin
	YDistort *Perlin
	ZDistort *Perlin
}

// NewTurbulence returns turbulence with power 1, frequency 1, roughness 3
// and seeds 0, 1 and 2 for the three axes.
func NewTurbulence() *Turbulence {
	t := &Turbulence{
		Power:    1,
		XDistort: NewPerlin(),
		YDistort: NewPerlin(),
		ZDistort: NewPerlin(),
	}
	t.SetRoughness(3)
	t.SetSeed(0)
	return t
}

func (*Turbulence) Kind() Kind { return KindTurbulence }
func (*Turbulence) Sources() int { return 1 }

// Frequency returns the distortion frequency.
func (t *Turbulence) Frequency() float64 { return t.XDistort.Frequency }

// SetFrequency sets the frequency of all three distortion fields.
func (t *Turbulence) SetFrequency(f float64) {
	t.XDistort.Frequency = f
	t.YDistort.Frequency = f
	t.ZDistort.Frequency = f
}

// Roughness returns the octave count of the distortion fields.
func (t *Turbulence) Roughness() int { return t.XDistort.OctaveCount }

// SetRoughness sets the octave count of all three distortion fields.
func (t *Turbulence) SetRoughness(octaves int) {
	t.XDistort.OctaveCount = octaves
	t.YDistort.OctaveCount = octaves
	t.ZDistort.OctaveCount = octaves
}

// Seed returns the x field's seed; y and z use Seed+1 and Seed+2.
func (t *Turbulence) Seed() int32 { return t.XDistort.Seed }

// SetSeed seeds the three distortion fields with seed, seed+1 and seed+2.
func (t *Turbulence) SetSeed(seed int32) {
	t.XDistort.Seed = seed
	t.YDistort.Seed = seed + 1
	t.ZDistort.Seed = seed + 2
}

func (t *Turbulence) distort(x, y, z float64) (float64, float64, float64) {
	dx := x + t.XDistort.Value(x+turbX0, y+turbY0, z+turbZ0)*t.Power
	dy := y + t.YDistort.Value(x+turbX1, y+turbY1, z+turbZ1)*t.Power
	dz := z + t.ZDistort.Value(x+turbX2, y+turbY2, z+turbZ2)*t.Power
	return dx, dy, dz
}
