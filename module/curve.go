package module

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/xnoise/curve"
	"github.com/pthm-cable/xnoise/noise"
)

// ControlPoint maps one input value of a Curve to an output value.
type ControlPoint struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

// Curve remaps its source through a cubic spline defined by control points
// kept sorted by input. At least four points are required.
//
// When Asset is set it replaces the control points entirely.
type Curve struct {
	Asset  curve.Evaluator `yaml:"-"`
	points []ControlPoint
}

func (*Curve) Kind() Kind { return KindCurve }
func (*Curve) Sources() int { return 1 }

// Add inserts a control point. A point whose input is already present is ignored.
func (c *Curve) Add(in, out float64) {
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].In >= in })
	if i < len(c.points) && c.points[i].In == in {
		return
	}
	c.points = append(c.points, ControlPoint{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = ControlPoint{In: in, Out: out}
}

// Clear removes all control points.
func (c *Curve) Clear() { c.points = c.points[:0] }

// ControlPoints returns a copy of the control points in input order.
func (c *Curve) ControlPoints() []ControlPoint {
	return append([]ControlPoint(nil), c.points...)
}

// ControlPointCount returns the number of control points.
func (c *Curve) ControlPointCount() int { return len(c.points) }

func (c *Curve) apply(v float64) float64 {
	if c.Asset != nil {
		return c.Asset.Evaluate(v)
	}
	n := len(c.points)
	// First point whose input is above v.
	ip := sort.Search(n, func(i int) bool { return v < c.points[i].In })

	i0 := clampIndex(ip-2, n)
	i1 := clampIndex(ip-1, n)
	i2 := clampIndex(ip, n)
	i3 := clampIndex(ip+1, n)
	if i1 == i2 {
		return c.points[i1].Out
	}
	in0, in1 := c.points[i1].In, c.points[i2].In
	alpha := (v - in0) / (in1 - in0)
	return noise.InterpolateCubic(c.points[i0].Out, c.points[i1].Out, c.points[i2].Out, c.points[i3].Out, alpha)
}

// Terrace remaps its source onto rounded steps between control points. The
// curve is flat at every control point and steepest midway between two.
// Inverted flips each step so it falls rather than rises.
//
// When Asset is set it replaces the generated terrace curve.
type Terrace struct {
	Asset    curve.Evaluator `yaml:"-"`
	points   []float64
	inverted bool
	shape    *curve.Hermite
}

// NewTerrace returns a terrace with no control points.
func NewTerrace() *Terrace {
	t := &Terrace{}
	t.rebuild()
	return t
}

func (*Terrace) Kind() Kind { return KindTerrace }
func (*Terrace) Sources() int { return 1 }

// Add inserts a control point. Duplicates are ignored.
func (t *Terrace) Add(in float64) {
	i := sort.SearchFloat64s(t.points, in)
	if i < len(t.points) && t.points[i] == in {
		return
	}
	t.points = append(t.points, 0)
	copy(t.points[i+1:], t.points[i:])
	t.points[i] = in
	t.rebuild()
}

// Clear removes all control points.
func (t *Terrace) Clear() {
	t.points = t.points[:0]
	t.rebuild()
}

// Generate replaces the control points with steps points spread evenly over [-1,1].
func (t *Terrace) Generate(steps int) error {
	if steps < 2 {
		return fmt.Errorf("%w: terrace needs at least 2 steps, got %d", ErrControlPoints, steps)
	}
	t.points = t.points[:0]
	size := 2.0 / float64(steps-1)
	for i := 0; i < steps; i++ {
		t.points = append(t.points, -1+float64(i)*size)
	}
	t.rebuild()
	return nil
}

// ControlPoints returns a copy of the control points in ascending order.
func (t *Terrace) ControlPoints() []float64 {
	return append([]float64(nil), t.points...)
}

// ControlPointCount returns the number of control points.
func (t *Terrace) ControlPointCount() int { return len(t.points) }

// Inverted reports whether the terrace steps are inverted.
func (t *Terrace) Inverted() bool { return t.inverted }

// SetInverted flips the step direction.
func (t *Terrace) SetInverted(inv bool) {
	t.inverted = inv
	t.rebuild()
}

func (t *Terrace) rebuild() {
	t.shape = curve.CircularTerrace(t.points, t.inverted)
}

func (t *Terrace) apply(v float64) float64 {
	if t.Asset != nil {
		return t.Asset.Evaluate(v)
	}
	return t.shape.Evaluate(v)
}
