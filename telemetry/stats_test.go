package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
		{"p clamped", []float64{1, 2, 3}, 1.5, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeMapStats(t *testing.T) {
	values := []float32{0.9, -0.5, 0.1, 0.3, -0.9, 0.7, -0.1, 0.5, -0.3, -0.7}
	s := ComputeMapStats(values)

	if s.Samples != 10 || s.NaN != 0 {
		t.Errorf("samples = %d nan = %d, want 10 and 0", s.Samples, s.NaN)
	}
	if math.Abs(s.Mean) > 1e-6 {
		t.Errorf("mean = %v, want 0", s.Mean)
	}
	if math.Abs(s.Min+0.9) > 1e-6 || math.Abs(s.Max-0.9) > 1e-6 {
		t.Errorf("range = [%v,%v], want [-0.9,0.9]", s.Min, s.Max)
	}
	// Sample standard deviation of ±0.1, ±0.3, ±0.5, ±0.7, ±0.9.
	if math.Abs(s.StdDev-math.Sqrt(3.3/9)) > 1e-6 {
		t.Errorf("std = %v, want %v", s.StdDev, math.Sqrt(3.3/9))
	}
	if math.Abs(s.P10+0.9) > 1e-6 || math.Abs(s.P50+0.1) > 1e-6 || math.Abs(s.P90-0.7) > 1e-6 {
		t.Errorf("p10/p50/p90 = %v/%v/%v", s.P10, s.P50, s.P90)
	}
	if s.BelowRange != 0 || s.AboveRange != 0 {
		t.Errorf("out of range counts = %d/%d", s.BelowRange, s.AboveRange)
	}
}

func TestComputeMapStatsNaNAndRange(t *testing.T) {
	nan := float32(math.NaN())
	s := ComputeMapStats([]float32{nan, 1.5, -2, nan, 0})

	if s.NaN != 2 || s.Samples != 3 {
		t.Errorf("nan = %d samples = %d, want 2 and 3", s.NaN, s.Samples)
	}
	if s.AboveRange != 1 || s.BelowRange != 1 {
		t.Errorf("above = %d below = %d, want 1 and 1", s.AboveRange, s.BelowRange)
	}
	if s.Min != -2 || s.Max != 1.5 {
		t.Errorf("range = [%v,%v]", s.Min, s.Max)
	}
}

func TestComputeMapStatsEmpty(t *testing.T) {
	s := ComputeMapStats(nil)
	if s.Samples != 0 || s.Mean != 0 || s.P50 != 0 {
		t.Error("empty input should return zero stats")
	}

	one := ComputeMapStats([]float32{0.25})
	if one.Mean != 0.25 || one.StdDev != 0 || one.P90 != 0.25 {
		t.Errorf("single sample stats = %+v", one)
	}
}
