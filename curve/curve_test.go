package curve

import (
	"math"
	"testing"
)

func TestHermiteInterpolatesKeys(t *testing.T) {
	h := NewHermite(
		Keyframe{Time: 1, Value: 3},
		Keyframe{Time: -1, Value: -2},
		Keyframe{Time: 0, Value: 0.5, InTangent: 1, OutTangent: 1},
	)
	tests := []struct {
		t, want float64
	}{
		{-5, -2}, // clamped below
		{-1, -2},
		{0, 0.5},
		{1, 3},
		{9, 3}, // clamped above
	}
	for _, tt := range tests {
		if got := h.Evaluate(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestHermiteDropsDuplicateTimes(t *testing.T) {
	h := NewHermite(Keyframe{Time: 0, Value: 1}, Keyframe{Time: 0, Value: 2}, Keyframe{Time: 1, Value: 0})
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if got := h.Evaluate(0); got != 1 {
		t.Errorf("Evaluate(0) = %v, want first key value 1", got)
	}
}

func TestHermiteEmpty(t *testing.T) {
	if got := NewHermite().Evaluate(0.3); got != 0 {
		t.Errorf("empty curve = %v, want 0", got)
	}
}

func TestCircularTerraceIsMonotonicAndContinuous(t *testing.T) {
	h := CircularTerrace([]float64{-1, -0.2, 0.4, 1}, false)
	prev := h.Evaluate(-1)
	for i := 1; i <= 400; i++ {
		x := -1 + float64(i)*2/400
		v := h.Evaluate(x)
		if v < prev-1e-9 {
			t.Fatalf("terrace not monotonic at %v: %v < %v", x, v, prev)
		}
		if v-prev > 0.1 {
			t.Fatalf("terrace jumps at %v: %v -> %v", x, prev, v)
		}
		prev = v
	}
	for _, p := range []float64{-1, -0.2, 0.4, 1} {
		if got := h.Evaluate(p); math.Abs(got-p) > 1e-12 {
			t.Errorf("terrace at control point %v = %v", p, got)
		}
	}
}

func TestCircularTerraceInverted(t *testing.T) {
	h := CircularTerrace([]float64{0, 1}, true)
	if got := h.Evaluate(0); got != 1 {
		t.Errorf("inverted start = %v, want 1", got)
	}
	if got := h.Evaluate(1); got != 0 {
		t.Errorf("inverted end = %v, want 0", got)
	}
}

func TestFunc(t *testing.T) {
	var e Evaluator = Func(func(t float64) float64 { return t * 2 })
	if got := e.Evaluate(1.5); got != 3 {
		t.Errorf("Func.Evaluate = %v, want 3", got)
	}
}
