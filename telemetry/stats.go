package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MapStats holds the value distribution of one generated map.
type MapStats struct {
	RunID      string `csv:"run_id"`
	Pass       int    `csv:"pass"`
	Projection string `csv:"projection"`
	Width      int    `csv:"width"`
	Height     int    `csv:"height"`

	// Distribution over finite samples
	Samples int     `csv:"samples"`
	NaN     int     `csv:"nan"`
	Min     float64 `csv:"min"`
	Max     float64 `csv:"max"`
	Mean    float64 `csv:"mean"`
	StdDev  float64 `csv:"std"`
	P10     float64 `csv:"p10"`
	P50     float64 `csv:"p50"`
	P90     float64 `csv:"p90"`

	// Samples outside the nominal [-1,1] output range
	BelowRange int `csv:"below_range"`
	AboveRange int `csv:"above_range"`

	DurationMS    float64 `csv:"duration_ms"`
	SamplesPerSec float64 `csv:"samples_per_sec"`
}

// Percentile returns the empirical p-th quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeMapStats summarizes map values. NaN samples are counted and
// otherwise ignored.
func ComputeMapStats(values []float32) MapStats {
	finite := make([]float64, 0, len(values))
	var s MapStats
	for _, v := range values {
		if math.IsNaN(float64(v)) {
			s.NaN++
			continue
		}
		finite = append(finite, float64(v))
		switch {
		case v < -1:
			s.BelowRange++
		case v > 1:
			s.AboveRange++
		}
	}
	s.Samples = len(finite)
	if s.Samples == 0 {
		return s
	}

	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if s.Samples > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	} else {
		s.Mean = finite[0]
	}

	slices.Sort(finite)
	s.P10 = Percentile(finite, 0.10)
	s.P50 = Percentile(finite, 0.50)
	s.P90 = Percentile(finite, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s MapStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("pass", s.Pass),
		slog.String("projection", s.Projection),
		slog.Int("width", s.Width),
		slog.Int("height", s.Height),
		slog.Int("samples", s.Samples),
		slog.Int("nan", s.NaN),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.StdDev),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Int("below_range", s.BelowRange),
		slog.Int("above_range", s.AboveRange),
		slog.Float64("duration_ms", s.DurationMS),
	)
}

// LogStats logs the map stats using slog.
func (s MapStats) LogStats() {
	slog.Info("stats", "map", s)
}
