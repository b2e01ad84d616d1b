// Noise graph preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/noisepreview -config config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/xnoise/accel"
	"github.com/pthm-cable/xnoise/camera"
	"github.com/pthm-cable/xnoise/config"
	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
	"github.com/pthm-cable/xnoise/render"
	"github.com/pthm-cable/xnoise/telemetry"
)

// View holds the preview settings that are not part of the graph.
type View struct {
	Node       int
	Projection noisemap.Projection
	Yaw        float32
	Pitch      float32
	Scale      float32
	Gradient   string
}

func defaultView(p noisemap.Projection) View {
	return View{Projection: p, Scale: 1, Gradient: "terrain"}
}

// transform returns the input transform applied before sampling.
func (v View) transform() accel.Transform {
	s := float64(v.Scale)
	return accel.Transform{
		Scale:    [3]float64{s, s, s},
		Rotation: accel.Euler(float64(v.Pitch), float64(v.Yaw), 0),
	}
}

// slider lays out labelled sliders down the control panel.
type slider struct {
	x, y, width float32
}

// slide draws one slider and reports whether the value changed.
func (s *slider) slide(label, format string, v *float32, lo, hi float32) bool {
	rl.DrawText(label, int32(s.x), int32(s.y), 14, rl.Gray)
	s.y += 18
	nv := gui.SliderBar(
		rl.Rectangle{X: s.x, Y: s.y, Width: s.width - 80, Height: 20},
		fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
		*v, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, *v), int32(s.x+s.width-70), int32(s.y+2), 16, rl.DarkGray)
	s.y += 35
	if nv != *v {
		*v = nv
		return true
	}
	return false
}

func (s *slider) slideInt(label string, v *int, lo, hi int) bool {
	f := float32(*v)
	if s.slide(label, "%.0f", &f, float32(lo), float32(hi)) && int(f) != *v {
		*v = int(f)
		return true
	}
	return false
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	g, _, ids, err := cfg.Graph.Build()
	if err != nil {
		slog.Error("failed to build graph", "error", err)
		os.Exit(1)
	}
	names := make([]string, len(cfg.Graph.Nodes))
	for i, n := range cfg.Graph.Nodes {
		names[i] = n.ID
	}

	screenW, screenH := int32(cfg.Preview.ScreenWidth), int32(cfg.Preview.ScreenHeight)
	rl.InitWindow(screenW, screenH, "Noise Graph Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Preview.TargetFPS))

	mapH := cfg.Preview.MapSize
	mapW := 2 * mapH
	previewW := float32(screenW) * 0.62
	previewH := previewW / 2
	panelX := previewW + 20
	panelWidth := float32(screenW) - panelX - 10

	img := rl.GenImageColor(mapW, mapH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	backend := &accel.CPU{Workers: cfg.Workers}
	pool := accel.NewBufferPool(2)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	pixels := make([]color.RGBA, mapW*mapH)

	view := defaultView(cfg.Map.Projection)
	cam := camera.ForProjection(float64(previewW), float64(previewH), view.Projection)
	for i, name := range names {
		if name == cfg.Graph.Root {
			view.Node = i
		}
	}

	var (
		stats      telemetry.MapStats
		lastErr    error
		needsRegen = true
	)

	for !rl.WindowShouldClose() {
		perf.RecordFrame()

		// Drag to pan, wheel to zoom around the cursor
		mouse := rl.GetMousePosition()
		mx, my := float64(mouse.X-10), float64(mouse.Y-10)
		hovering := cam.Contains(mx, my)
		if hovering && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			d := rl.GetMouseDelta()
			if d.X != 0 || d.Y != 0 {
				cam.Pan(float64(d.X), float64(d.Y))
				needsRegen = true
			}
		}
		if wheel := rl.GetMouseWheelMove(); hovering && wheel != 0 {
			cam.ZoomBy(math.Pow(1.1, float64(wheel)), mx, my)
			needsRegen = true
		}

		if needsRegen {
			stats, lastErr = regenerate(backend, pool, perf, g, ids[names[view.Node]], view, cam.Visible(), mapW, mapH, pixels)
			if lastErr == nil {
				rl.UpdateTexture(texture, pixels)
			}
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(mapW), Height: float32(mapH)},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, int32(previewW), int32(previewH), rl.DarkGray)

		statsY := int32(previewH + 25)
		if lastErr != nil {
			rl.DrawText(lastErr.Error(), 15, statsY, 16, rl.Red)
		} else {
			rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Mean: %.3f  Std: %.3f", stats.Min, stats.Max, stats.Mean, stats.StdDev), 15, statsY, 16, rl.DarkGray)
			rl.DrawText(fmt.Sprintf("P10: %.3f  P50: %.3f  P90: %.3f", stats.P10, stats.P50, stats.P90), 15, statsY+20, 16, rl.DarkGray)
		}
		ps := perf.Stats()
		rl.DrawText(fmt.Sprintf("Pass: %.1f ms  FPS: %.0f  Zoom: %.1fx", float64(ps.AvgPassDuration.Microseconds())/1000, ps.FPS, cam.Zoom), 15, statsY+40, 16, rl.DarkGray)
		if hovering && lastErr == nil {
			u, v := cam.ScreenToRegion(mx, my)
			x, y, z := view.transform().Apply(noisemap.Point(view.Projection, u, v))
			value := g.Value(ids[names[view.Node]], x, y, z)
			rl.DrawText(fmt.Sprintf("At (%.3f, %.3f): %.4f", u, v, value), 15, statsY+60, 16, rl.DarkGray)
		}

		// Control panel
		s := &slider{x: panelX, y: 10, width: panelWidth}
		rl.DrawText("Noise Graph", int32(s.x), int32(s.y), 20, rl.DarkGray)
		s.y += 35

		if gui.Button(rl.Rectangle{X: s.x, Y: s.y, Width: 30, Height: 24}, "<") {
			view.Node = (view.Node + len(names) - 1) % len(names)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: s.x + 35, Y: s.y, Width: 30, Height: 24}, ">") {
			view.Node = (view.Node + 1) % len(names)
			needsRegen = true
		}
		id := ids[names[view.Node]]
		rl.DrawText(fmt.Sprintf("%s (%s)", names[view.Node], g.Params(id).Kind()), int32(s.x+75), int32(s.y+4), 16, rl.DarkGray)
		s.y += 40

		if paramSliders(s, g.Params(id)) {
			needsRegen = true
		}

		rl.DrawLine(int32(s.x), int32(s.y), int32(s.x+s.width-20), int32(s.y), rl.LightGray)
		s.y += 15

		rl.DrawText("View", int32(s.x), int32(s.y), 16, rl.DarkGray)
		s.y += 25
		if s.slide("Yaw (degrees)", "%.0f", &view.Yaw, -180, 180) {
			needsRegen = true
		}
		if s.slide("Pitch (degrees)", "%.0f", &view.Pitch, -90, 90) {
			needsRegen = true
		}
		if s.slide("Input scale", "%.2f", &view.Scale, 0.25, 4) {
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: s.x, Y: s.y, Width: 120, Height: 30}, view.Projection.String()) {
			view.Projection = (view.Projection + 1) % 3
			cam = camera.ForProjection(float64(previewW), float64(previewH), view.Projection)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: s.x + 130, Y: s.y, Width: 120, Height: 30}, view.Gradient) {
			view.Gradient = toggleText(view.Gradient == "terrain", "grayscale", "terrain")
			needsRegen = true
		}
		s.y += 40
		if gui.Button(rl.Rectangle{X: s.x, Y: s.y, Width: 120, Height: 30}, "Reset View") {
			node := view.Node
			view = defaultView(view.Projection)
			view.Node = node
			cam.Reset()
			needsRegen = true
		}
		s.y += 45

		// Output YAML
		rl.DrawText("YAML params:", int32(s.x), int32(s.y), 16, rl.DarkGray)
		s.y += 25
		text := paramsYAML(g.Params(id))
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			if s.y > float32(screenH-50) {
				break
			}
			rl.DrawText(line, int32(s.x), int32(s.y), 14, rl.Gray)
			s.y += 16
		}

		rl.DrawText("Press C to copy node YAML to clipboard", int32(s.x), screenH-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(nodeYAML(g, id, names[view.Node], cfg.Graph.Nodes[view.Node].Sources))
		}

		rl.EndDrawing()
	}
}

// regenerate renders node through the CPU backend and colours the result.
// Rows are flipped so the top of the window is the top of the clip region.
func regenerate(b accel.Backend, pool *accel.BufferPool, perf *telemetry.PerfCollector, g *module.Graph, node module.ID, view View, bounds noisemap.Bounds, w, h int, pixels []color.RGBA) (telemetry.MapStats, error) {
	perf.StartPass()
	defer perf.EndPass()

	perf.StartPhase(telemetry.PhaseGenerate)
	req := &accel.Request{
		Graph:      g,
		Root:       node,
		Projection: view.Projection,
		Bounds:     bounds,
		Width:      w,
		Height:     h,
		Transform:  view.transform(),
	}
	buf, err := accel.RenderPooled(context.Background(), b, pool, req)
	if err != nil {
		return telemetry.MapStats{}, err
	}
	defer pool.Put(buf)

	perf.StartPhase(telemetry.PhaseRender)
	grad, err := render.Preset(view.Gradient)
	if err != nil {
		return telemetry.MapStats{}, err
	}
	for y := 0; y < h; y++ {
		src := buf.Data[y*w : (y+1)*w]
		dst := pixels[(h-1-y)*w : (h-y)*w]
		for x, v := range src {
			c := grad.Color(float64(v))
			dst[x] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		}
	}

	perf.StartPhase(telemetry.PhaseStats)
	stats := telemetry.ComputeMapStats(buf.Data)
	stats.Projection = view.Projection.String()
	stats.Width, stats.Height = w, h
	return stats, nil
}

// paramSliders draws sliders for the tunable settings of p.
func paramSliders(s *slider, p module.Params) bool {
	changed := false
	fractal := func(f *module.Fractal) {
		freq := float32(f.Frequency)
		if s.slide("Frequency", "%.2f", &freq, 0.1, 16) {
			f.Frequency = float64(freq)
			changed = true
		}
		changed = s.slideInt("Octaves", &f.OctaveCount, 1, 12) || changed
		pers := float32(f.Persistence)
		if s.slide("Persistence", "%.2f", &pers, 0.1, 0.9) {
			f.Persistence = float64(pers)
			changed = true
		}
		seed := int(f.Seed)
		if s.slideInt("Seed", &seed, 0, 999) {
			f.Seed = int32(seed)
			changed = true
		}
	}

	switch p := p.(type) {
	case *module.Perlin:
		fractal(&p.Fractal)
	case *module.Billow:
		fractal(&p.Fractal)
	case *module.RidgedMultifractal:
		freq := float32(p.Frequency)
		if s.slide("Frequency", "%.2f", &freq, 0.1, 16) {
			p.Frequency = float64(freq)
			changed = true
		}
		changed = s.slideInt("Octaves", &p.OctaveCount, 1, 12) || changed
		exp := float32(p.Exponent())
		if s.slide("Exponent", "%.2f", &exp, 0.25, 2) {
			p.SetExponent(float64(exp))
			changed = true
		}
	case *module.ClassicPerlin:
		freq := float32(p.Frequency)
		if s.slide("Frequency", "%.2f", &freq, 0.1, 16) {
			p.Frequency = float64(freq)
			changed = true
		}
		octaves, seed := p.Octaves(), int(p.Seed())
		beta := float32(p.Beta())
		retune := s.slideInt("Octaves", &octaves, 1, 8)
		retune = s.slide("Beta", "%.2f", &beta, 1, 4) || retune
		retune = s.slideInt("Seed", &seed, 0, 999) || retune
		if retune {
			p.SetParams(p.Alpha(), float64(beta), octaves, int64(seed))
			changed = true
		}
	case *module.Voronoi:
		freq := float32(p.Frequency)
		if s.slide("Frequency", "%.2f", &freq, 0.1, 16) {
			p.Frequency = float64(freq)
			changed = true
		}
		disp := float32(p.Displacement)
		if s.slide("Displacement", "%.2f", &disp, 0, 2) {
			p.Displacement = float64(disp)
			changed = true
		}
	case *module.ScaleBias:
		scale, bias := float32(p.Scale), float32(p.Bias)
		if s.slide("Scale", "%.2f", &scale, -2, 2) {
			p.Scale = float64(scale)
			changed = true
		}
		if s.slide("Bias", "%.2f", &bias, -1, 1) {
			p.Bias = float64(bias)
			changed = true
		}
	case *module.Turbulence:
		power := float32(p.Power)
		if s.slide("Power", "%.3f", &power, 0, 1) {
			p.Power = float64(power)
			changed = true
		}
		freq := float32(p.Frequency())
		if s.slide("Frequency", "%.2f", &freq, 0.1, 16) {
			p.SetFrequency(float64(freq))
			changed = true
		}
	case *module.Select:
		lo, hi, fall := float32(p.Min()), float32(p.Max()), float32(p.FallOff())
		if s.slide("Min", "%.2f", &lo, -1, 1) {
			p.SetMin(float64(lo))
			changed = true
		}
		if s.slide("Max", "%.2f", &hi, -1, 2) {
			p.SetMax(float64(hi))
			changed = true
		}
		if s.slide("Fall-off", "%.3f", &fall, 0, 0.5) {
			p.SetFallOff(float64(fall))
			changed = true
		}
	default:
		rl.DrawText("no tunable parameters", int32(s.x), int32(s.y), 14, rl.LightGray)
		s.y += 25
	}
	return changed
}

// paramsYAML renders p in the shape the config graph loader reads back.
func paramsYAML(p module.Params) string {
	data, err := yaml.Marshal(config.NodeParams(p))
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// nodeYAML renders a graph node entry that can be pasted into a config file.
func nodeYAML(g *module.Graph, id module.ID, name string, sources []string) string {
	node, err := config.EncodeNode(name, g.Params(id), sources)
	if err != nil {
		return err.Error()
	}
	data, err := yaml.Marshal([]config.NodeConfig{node})
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
