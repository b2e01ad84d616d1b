package accel

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
)

// Transform is the per-call bundle applied to every sample point before the
// graph sees it: p' = Rotation(Scale*(p + Displacement*TurbulencePower)) + Origin.
// A zero Scale and a zero Rotation both mean "unchanged", so the zero
// Transform is the identity.
type Transform struct {
	Origin   [3]float64
	Scale    [3]float64
	Rotation quat.Number

	// Displacement, if set, offsets each point by the field value at the
	// point's position in the clip region, times TurbulencePower.
	Displacement    *Field
	TurbulencePower float64
}

var (
	unitScale    = [3]float64{1, 1, 1}
	noRotation   = quat.Number{Real: 1}
	zeroRotation = quat.Number{}
)

// IsIdentity reports whether t leaves every point unchanged.
func (t Transform) IsIdentity() bool {
	return t.Origin == [3]float64{} &&
		(t.Scale == [3]float64{} || t.Scale == unitScale) &&
		(t.Rotation == zeroRotation || t.Rotation == noRotation) &&
		(t.Displacement == nil || t.TurbulencePower == 0)
}

// Euler returns the rotation by the given angles in degrees, applied about
// z first, then x, then y.
func Euler(x, y, z float64) quat.Number {
	return quat.Mul(quat.Mul(axisAngle(0, 1, 0, y), axisAngle(1, 0, 0, x)), axisAngle(0, 0, 1, z))
}

func axisAngle(ax, ay, az, deg float64) quat.Number {
	half := deg * math.Pi / 360
	s := math.Sin(half)
	return quat.Number{Real: math.Cos(half), Imag: ax * s, Jmag: ay * s, Kmag: az * s}
}

// Apply transforms a point without displacement.
func (t Transform) Apply(x, y, z float64) (float64, float64, float64) {
	if t.Scale != ([3]float64{}) {
		x *= t.Scale[0]
		y *= t.Scale[1]
		z *= t.Scale[2]
	}
	if t.Rotation != zeroRotation && t.Rotation != noRotation {
		q := quat.Scale(1/quat.Abs(t.Rotation), t.Rotation)
		p := quat.Mul(quat.Mul(q, quat.Number{Imag: x, Jmag: y, Kmag: z}), quat.Conj(q))
		x, y, z = p.Imag, p.Jmag, p.Kmag
	}
	return x + t.Origin[0], y + t.Origin[1], z + t.Origin[2]
}

// transformed wraps a source so every lookup goes through a Transform.
type transformed struct {
	src    module.Source
	t      Transform
	proj   noisemap.Projection
	bounds noisemap.Bounds
}

func (s *transformed) Value(x, y, z float64) float64 {
	if d := s.t.Displacement; d != nil && s.t.TurbulencePower != 0 {
		u, v := noisemap.Unproject(s.proj, x, y, z)
		b := s.bounds
		if s.proj != noisemap.Planar && u < b.XMin {
			u += 360
		}
		dx, dy, dz := d.At((u-b.XMin)/(b.XMax-b.XMin), (v-b.YMin)/(b.YMax-b.YMin))
		p := s.t.TurbulencePower
		x += dx * p
		y += dy * p
		z += dz * p
	}
	return s.src.Value(s.t.Apply(x, y, z))
}
