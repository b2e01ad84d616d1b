// Package curve holds the scalar curve assets consumed by the Curve, Terrace
// and Select style operators and by colour gradients. Anything that can answer
// Evaluate(t) can be plugged in.
package curve

import (
	"sort"
)

// Evaluator maps a scalar input to a scalar output.
type Evaluator interface {
	Evaluate(t float64) float64
}

// Func adapts a plain function to an Evaluator.
type Func func(t float64) float64

// Evaluate calls f(t).
func (f Func) Evaluate(t float64) float64 { return f(t) }

// Keyframe is one Hermite control point. Tangents are slopes (rise over run).
type Keyframe struct {
	Time       float64 `yaml:"time"`
	Value      float64 `yaml:"value"`
	InTangent  float64 `yaml:"in_tangent"`
	OutTangent float64 `yaml:"out_tangent"`
}

// Hermite is a piecewise cubic Hermite curve through keyframes sorted by time.
// Inputs outside the keyed range clamp to the first or last value.
// A Hermite curve is immutable once built and safe for concurrent Evaluate.
type Hermite struct {
	keys []Keyframe
}

// NewHermite builds a curve from keys. Keys are copied and sorted by time;
// a key whose time duplicates an earlier one is dropped.
func NewHermite(keys ...Keyframe) *Hermite {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	out := sorted[:0]
	for _, k := range sorted {
		if len(out) > 0 && out[len(out)-1].Time == k.Time {
			continue
		}
		out = append(out, k)
	}
	return &Hermite{keys: out}
}

// Keys returns a copy of the curve's keyframes.
func (h *Hermite) Keys() []Keyframe {
	return append([]Keyframe(nil), h.keys...)
}

// Len returns the number of keyframes.
func (h *Hermite) Len() int { return len(h.keys) }

// Evaluate returns the curve value at t.
func (h *Hermite) Evaluate(t float64) float64 {
	n := len(h.keys)
	switch {
	case n == 0:
		return 0
	case t <= h.keys[0].Time:
		return h.keys[0].Value
	case t >= h.keys[n-1].Time:
		return h.keys[n-1].Value
	}

	// First key strictly after t; t lies in [keys[i-1], keys[i]).
	i := sort.Search(n, func(i int) bool { return h.keys[i].Time > t })
	k0, k1 := h.keys[i-1], h.keys[i]

	dt := k1.Time - k0.Time
	s := (t - k0.Time) / dt
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	return h00*k0.Value + h10*dt*k0.OutTangent + h01*k1.Value + h11*dt*k1.InTangent
}

// CircularTerrace builds the terrace curve through the sorted control points.
// Each span [x0,x1] is flat at both ends and steepest at its midpoint, which
// gives the rounded step profile of a terraced heightfield. With invert set
// each span runs from its upper value down to its lower one.
//
// Spans of zero or negative width are skipped.
func CircularTerrace(points []float64, invert bool) *Hermite {
	keys := make([]Keyframe, 0, len(points)*2)
	for i := 0; i+1 < len(points); i++ {
		x0, x1 := points[i], points[i+1]
		dx := x1 - x0
		if dx <= 0 {
			continue
		}
		y0, y1 := x0, x1
		if invert {
			y0, y1 = x1, x0
		}
		slope := (y1 - y0) / (dx * 0.5)
		keys = append(keys,
			Keyframe{Time: x0, Value: y0},
			Keyframe{Time: x0 + dx/2, Value: (y0 + y1) / 2, InTangent: slope, OutTangent: slope},
			Keyframe{Time: x1, Value: y1},
		)
	}
	return NewHermite(keys...)
}
