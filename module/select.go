package module

// Select slot layout.
const (
	selectOutside = 0
	selectInside  = 1
	selectControl = 2
)

// Select picks source 1 where the controller (source 2) lies inside
// [min,max] and source 0 elsewhere. A non-zero fall-off blends the two with
// an S-curve across [min-fallOff, min+fallOff] and [max-fallOff, max+fallOff].
//
// The fall-off is silently limited to half the [min,max] range. The requested
// value is kept, so widening the range later restores it.
//
// The controller slot may stay unbound, in which case the controller reads
// as the constant 0.
type Select struct {
	min, max float64
	fallOff  float64
	raw      float64
}

// NewSelect returns a select over [lo,hi] with the given fall-off.
func NewSelect(lo, hi, fallOff float64) *Select {
	s := &Select{min: lo, max: hi}
	s.SetFallOff(fallOff)
	return s
}

func (*Select) Kind() Kind { return KindSelect }
func (*Select) Sources() int { return 3 }

// Min returns the lower bound.
func (s *Select) Min() float64 { return s.min }

// Max returns the upper bound.
func (s *Select) Max() float64 { return s.max }

// FallOff returns the effective (clamped) fall-off.
func (s *Select) FallOff() float64 { return s.fallOff }

// SetBounds sets both bounds and re-applies the fall-off limit.
func (s *Select) SetBounds(lo, hi float64) {
	s.min, s.max = lo, hi
	s.SetFallOff(s.raw)
}

// SetMin sets the lower bound.
func (s *Select) SetMin(lo float64) { s.SetBounds(lo, s.max) }

// SetMax sets the upper bound.
func (s *Select) SetMax(hi float64) { s.SetBounds(s.min, hi) }

// SetFallOff sets the blend width at each boundary.
func (s *Select) SetFallOff(f float64) {
	s.raw = f
	half := (s.max - s.min) / 2
	if f > half {
		f = half
	}
	s.fallOff = f
}
