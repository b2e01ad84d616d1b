package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for a generation pass.
const (
	PhaseBuild    = "build_graph"
	PhaseGenerate = "generate"
	PhaseRender   = "render"
	PhaseEncode   = "encode"
	PhaseStats    = "stats"
)

var phases = []string{PhaseBuild, PhaseGenerate, PhaseRender, PhaseEncode, PhaseStats}

// PerfSample holds timing data for a single pass.
type PerfSample struct {
	PassDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of passes.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	passStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (preview window)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of passes to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartPass begins timing a new generation pass.
func (p *PerfCollector) StartPass() {
	p.passStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndPass finishes timing the current pass and records the sample.
func (p *PerfCollector) EndPass() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		PassDuration: now.Sub(p.passStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// Window returns the number of passes the collector averages over.
func (p *PerfCollector) Window() int { return p.windowSize }

// Passes returns how many passes are in the current window.
func (p *PerfCollector) Passes() int { return p.sampleCount }

// RecordFrame records frame timing for the preview window.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgPassDuration time.Duration
	MinPassDuration time.Duration
	MaxPassDuration time.Duration
	P95PassDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total pass time
	PhasePct map[string]float64

	PassesPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	durations := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i, s := range p.samples[:p.sampleCount] {
		durations[i] = float64(s.PassDuration)
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := time.Duration(floats.Sum(durations)) / time.Duration(p.sampleCount)
	minPass := time.Duration(floats.Min(durations))
	maxPass := time.Duration(floats.Max(durations))
	slices.Sort(durations)
	p95 := time.Duration(stat.Quantile(0.95, stat.Empirical, durations, nil))

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgPassDuration: avg,
		MinPassDuration: minPass,
		MaxPassDuration: maxPass,
		P95PassDuration: p95,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		PassesPerSecond: perSec,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_pass_us", s.AvgPassDuration.Microseconds(),
		"min_pass_us", s.MinPassDuration.Microseconds(),
		"max_pass_us", s.MaxPassDuration.Microseconds(),
		"p95_pass_us", s.P95PassDuration.Microseconds(),
		"passes_per_sec", s.PassesPerSecond,
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_pass_us", s.AvgPassDuration.Microseconds()),
		slog.Int64("min_pass_us", s.MinPassDuration.Microseconds()),
		slog.Int64("max_pass_us", s.MaxPassDuration.Microseconds()),
		slog.Int64("p95_pass_us", s.P95PassDuration.Microseconds()),
		slog.Float64("passes_per_sec", s.PassesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	RunID        string  `csv:"run_id"`
	PassEnd      int     `csv:"pass_end"`
	AvgPassUS    int64   `csv:"avg_pass_us"`
	MinPassUS    int64   `csv:"min_pass_us"`
	MaxPassUS    int64   `csv:"max_pass_us"`
	P95PassUS    int64   `csv:"p95_pass_us"`
	PassesPerSec float64 `csv:"passes_per_sec"`
	BuildPct     float64 `csv:"build_graph_pct"`
	GeneratePct  float64 `csv:"generate_pct"`
	RenderPct    float64 `csv:"render_pct"`
	EncodePct    float64 `csv:"encode_pct"`
	StatsPct     float64 `csv:"stats_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(runID string, passEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:        runID,
		PassEnd:      passEnd,
		AvgPassUS:    s.AvgPassDuration.Microseconds(),
		MinPassUS:    s.MinPassDuration.Microseconds(),
		MaxPassUS:    s.MaxPassDuration.Microseconds(),
		P95PassUS:    s.P95PassDuration.Microseconds(),
		PassesPerSec: s.PassesPerSecond,
		BuildPct:     s.PhasePct[PhaseBuild],
		GeneratePct:  s.PhasePct[PhaseGenerate],
		RenderPct:    s.PhasePct[PhaseRender],
		EncodePct:    s.PhasePct[PhaseEncode],
		StatsPct:     s.PhasePct[PhaseStats],
	}
}
