package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few passes
	for i := 0; i < 5; i++ {
		pc.StartPass()
		pc.StartPhase(PhaseGenerate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		pc.EndPass()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgPassDuration <= 0 {
		t.Error("expected positive average pass duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseGenerate]; !ok {
		t.Error("expected generate phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseRender]; !ok {
		t.Error("expected render phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartPass()
		pc.StartPhase(PhaseGenerate)
		pc.EndPass()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgPassDuration <= 0 {
		t.Error("expected positive average pass duration after window filled")
	}

	if stats.PassesPerSecond <= 0 {
		t.Error("expected positive passes per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartPass()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndPass()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgPassDuration != 0 {
		t.Error("expected zero avg pass duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartPass()
	pc.StartPhase(PhaseGenerate)
	time.Sleep(200 * time.Microsecond)
	pc.StartPhase(PhaseEncode)
	pc.EndPass()

	if pc.Passes() != 1 {
		t.Fatalf("Passes() = %d, want 1", pc.Passes())
	}
	row := pc.Stats().ToCSV("run", 7)
	if row.RunID != "run" || row.PassEnd != 7 {
		t.Errorf("row identity = %q/%d", row.RunID, row.PassEnd)
	}
	if row.GeneratePct <= 0 || row.GeneratePct > 100 {
		t.Errorf("generate pct = %v, want in (0,100]", row.GeneratePct)
	}
	if row.BuildPct != 0 {
		t.Errorf("build pct = %v, want 0 for an untimed phase", row.BuildPct)
	}
}

func TestPerfCollector_PassSpread(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 10; i++ {
		pc.samples[i] = PerfSample{PassDuration: time.Duration(10-i) * time.Millisecond}
	}
	pc.sampleCount = 10

	stats := pc.Stats()
	if stats.MinPassDuration != time.Millisecond || stats.MaxPassDuration != 10*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/10ms", stats.MinPassDuration, stats.MaxPassDuration)
	}
	if stats.AvgPassDuration != 5500*time.Microsecond {
		t.Errorf("avg = %v, want 5.5ms", stats.AvgPassDuration)
	}
	if stats.P95PassDuration != 10*time.Millisecond {
		t.Errorf("p95 = %v, want 10ms", stats.P95PassDuration)
	}
}
