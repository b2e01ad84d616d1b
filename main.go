package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/xnoise/config"
	"github.com/pthm-cable/xnoise/noisemap"
	"github.com/pthm-cable/xnoise/render"
	"github.com/pthm-cable/xnoise/telemetry"
)

// Options holds command-line overrides for a run.
type Options struct {
	OutputDir string
	Passes    int
	LogStats  bool
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for images, CSV logs and config snapshot (empty = use config)")
	passes := flag.Int("passes", 1, "Generate the map N times (timing runs)")
	logStats := flag.Bool("log-stats", false, "Output map stats via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := Options{
		OutputDir: cfg.Output.Dir,
		Passes:    *passes,
		LogStats:  *logStats,
	}
	if *outputDir != "" {
		opts.OutputDir = *outputDir
	}

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run generates the configured map opts.Passes times and writes the outputs
// of the last pass.
func run(ctx context.Context, cfg *config.Config, opts Options) error {
	om, err := telemetry.NewOutputManager(opts.OutputDir, cfg.Telemetry.CSV)
	if err != nil {
		return err
	}
	defer om.Close()

	if err := om.WriteConfig(cfg, cfg.Output.ConfigFile); err != nil {
		return err
	}

	if opts.Passes < 1 {
		opts.Passes = 1
	}
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	slog.Info("starting generation",
		"run_id", om.RunID(),
		"width", cfg.Map.Width,
		"height", cfg.Map.Height,
		"projection", cfg.Map.Projection,
		"passes", opts.Passes,
	)

	for pass := 1; pass <= opts.Passes; pass++ {
		last := pass == opts.Passes
		if err := runPass(ctx, cfg, om, perf, pass, last, opts.LogStats); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
		if pass%perf.Window() == 0 || last {
			stats := perf.Stats()
			stats.LogStats()
			if err := om.WritePerf(stats, pass); err != nil {
				return err
			}
		}
	}
	return nil
}

func runPass(ctx context.Context, cfg *config.Config, om *telemetry.OutputManager, perf *telemetry.PerfCollector, pass int, last, logStats bool) error {
	perf.StartPass()
	defer perf.EndPass()

	perf.StartPhase(telemetry.PhaseBuild)
	g, root, _, err := cfg.Graph.Build()
	if err != nil {
		return err
	}
	src, err := g.Module(root)
	if err != nil {
		return err
	}

	perf.StartPhase(telemetry.PhaseGenerate)
	m, err := noisemap.New(cfg.Map.Width, cfg.Map.Height, src)
	if err != nil {
		return err
	}
	defer m.Dispose()
	m.Workers = cfg.Workers
	m.Border = cfg.Derived.Border

	start := time.Now()
	if err := m.Generate(ctx, cfg.Map.Projection, cfg.Derived.Bounds, cfg.Map.Seamless); err != nil {
		return err
	}
	elapsed := time.Since(start)

	perf.StartPhase(telemetry.PhaseStats)
	data := m.Data
	if cfg.Map.Normalize {
		data = m.NormalizedData
	}
	values, _, _, err := data(true, 0, 0)
	if err != nil {
		return err
	}
	stats := telemetry.ComputeMapStats(values)
	stats.RunID = om.RunID()
	stats.Pass = pass
	stats.Projection = cfg.Map.Projection.String()
	stats.Width, stats.Height = cfg.Map.Width, cfg.Map.Height
	stats.DurationMS = float64(elapsed.Microseconds()) / 1000
	if elapsed > 0 {
		stats.SamplesPerSec = float64(cfg.Map.Width*cfg.Map.Height) / elapsed.Seconds()
	}
	if logStats {
		stats.LogStats()
	}
	if err := om.WriteStats(stats); err != nil {
		return err
	}

	if !last || om == nil {
		return nil
	}
	return writeOutputs(cfg, om, perf, m, pass)
}

func writeOutputs(cfg *config.Config, om *telemetry.OutputManager, perf *telemetry.PerfCollector, m *noisemap.Map, pass int) error {
	perf.StartPhase(telemetry.PhaseRender)
	images := make(map[string]image.Image, 3)

	if name := cfg.Output.HeightFile; name != "" {
		img, err := render.GrayImage(m)
		if err != nil {
			return err
		}
		images[name] = img
	}
	if name := cfg.Output.NormalFile; name != "" {
		img, err := render.NormalMap(m, cfg.Render.NormalIntensity)
		if err != nil {
			return err
		}
		images[name] = img
	}
	if name := cfg.Output.ColorFile; name != "" {
		grad, err := render.Preset(cfg.Render.Gradient)
		if err != nil {
			return err
		}
		img, err := render.ColorImage(m, grad)
		if err != nil {
			return err
		}
		images[name] = img
	}

	perf.StartPhase(telemetry.PhaseEncode)
	for name, img := range images {
		if err := writePNG(om.Path(name), img); err != nil {
			return err
		}
	}
	if cfg.Output.Snapshot {
		snap, err := telemetry.NewSnapshot(m, cfg.Map.Projection, cfg.Derived.Bounds, cfg.Map.Seamless, cfg.Map.Normalize)
		if err != nil {
			return err
		}
		snap.RunID = om.RunID()
		snap.Pass = pass
		path, err := telemetry.SaveSnapshot(snap, om.Dir())
		if err != nil {
			return err
		}
		slog.Info("snapshot saved", "path", path)
	}
	slog.Info("outputs written", "dir", om.Dir(), "images", len(images))
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
