package accel

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
)

func perlinRequest(w, h int) *Request {
	g := module.New()
	root := g.MustAdd(module.NewPerlin())
	return &Request{
		Graph:      g,
		Root:       root,
		Projection: noisemap.Planar,
		Bounds:     noisemap.StandardBounds(noisemap.Planar),
		Width:      w,
		Height:     h,
	}
}

func TestCPUMatchesNoiseMap(t *testing.T) {
	req := perlinRequest(32, 24)
	req.Seamless = true
	dst := &Buffer{Width: 32, Height: 24, Data: make([]float32, 32*24)}
	if err := (&CPU{Workers: 2}).Render(context.Background(), req, dst); err != nil {
		t.Fatal(err)
	}

	src, err := req.Graph.Module(req.Root)
	if err != nil {
		t.Fatal(err)
	}
	m, err := noisemap.New(32, 24, src)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Dispose()
	if err := m.Generate(context.Background(), req.Projection, req.Bounds, true); err != nil {
		t.Fatal(err)
	}
	data, _, _, _ := m.Data(true, 0, 0)
	ref := &Buffer{Width: 32, Height: 24, Data: data}
	if d := MaxAbsDiff(dst, ref); d != 0 {
		t.Errorf("CPU backend differs from noise map by %v", d)
	}
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()
	cpu := &CPU{}

	req := perlinRequest(4, 4)
	if err := cpu.Render(ctx, req, &Buffer{Width: 3, Height: 4, Data: make([]float32, 12)}); !errors.Is(err, ErrBufferSize) {
		t.Errorf("wrong buffer err = %v, want ErrBufferSize", err)
	}

	req = perlinRequest(4, 4)
	req.Bounds.XMax = req.Bounds.XMin
	if err := cpu.Render(ctx, req, &Buffer{Width: 4, Height: 4, Data: make([]float32, 16)}); !errors.Is(err, noisemap.ErrBounds) {
		t.Errorf("empty bounds err = %v, want ErrBounds", err)
	}

	if err := cpu.Render(ctx, &Request{Width: 1, Height: 1}, &Buffer{}); !errors.Is(err, ErrNoGraph) {
		t.Errorf("nil graph err = %v, want ErrNoGraph", err)
	}

	g := module.New()
	inv := g.MustAdd(&module.Invert{})
	req = &Request{Graph: g, Root: inv, Bounds: noisemap.StandardBounds(noisemap.Planar), Width: 2, Height: 2}
	if err := cpu.Render(ctx, req, &Buffer{Width: 2, Height: 2, Data: make([]float32, 4)}); !errors.Is(err, module.ErrUnboundSource) {
		t.Errorf("unbound graph err = %v, want ErrUnboundSource", err)
	}
}

func TestTransformApply(t *testing.T) {
	var zero Transform
	if !zero.IsIdentity() {
		t.Error("zero Transform is not the identity")
	}
	if x, y, z := zero.Apply(1, 2, 3); x != 1 || y != 2 || z != 3 {
		t.Errorf("zero Apply = (%v,%v,%v)", x, y, z)
	}

	tr := Transform{
		Origin:   [3]float64{10, 0, 0},
		Scale:    [3]float64{2, 2, 2},
		Rotation: Euler(0, 0, 90),
	}
	if tr.IsIdentity() {
		t.Error("IsIdentity true for a real transform")
	}
	// (1,0,0) scaled to (2,0,0), rotated 90 degrees about z to (0,2,0), then moved.
	x, y, z := tr.Apply(1, 0, 0)
	if math.Abs(x-10) > 1e-12 || math.Abs(y-2) > 1e-12 || math.Abs(z) > 1e-12 {
		t.Errorf("Apply = (%v,%v,%v), want (10,2,0)", x, y, z)
	}
}

func TestTransformedRender(t *testing.T) {
	ctx := context.Background()
	req := perlinRequest(8, 8)
	req.Transform = Transform{Origin: [3]float64{0.5, 0, 0.25}}
	got := &Buffer{Width: 8, Height: 8, Data: make([]float32, 64)}
	if err := (&CPU{}).Render(ctx, req, got); err != nil {
		t.Fatal(err)
	}

	// Translating the graph input is the same as shifting the clip region.
	shifted := perlinRequest(8, 8)
	shifted.Graph, shifted.Root = req.Graph, req.Root
	shifted.Bounds = noisemap.PlanarBounds(-0.5, 1.5, -0.75, 1.25)
	want := &Buffer{Width: 8, Height: 8, Data: make([]float32, 64)}
	if err := (&CPU{}).Render(ctx, shifted, want); err != nil {
		t.Fatal(err)
	}
	if d := MaxAbsDiff(got, want); d > 1e-6 {
		t.Errorf("origin offset differs from shifted bounds by %v", d)
	}
}

func TestDisplacementField(t *testing.T) {
	ctx := context.Background()
	g := module.New()
	root := g.MustAdd(module.NewPerlin())

	// A field of (1,0,0) with power 0.5 shifts every x by 0.5.
	field := &Field{Width: 2, Height: 2, Data: []float32{1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0}}
	req := &Request{
		Graph:      g,
		Root:       root,
		Projection: noisemap.Planar,
		Bounds:     noisemap.PlanarBounds(0, 0.25, 0, 0.25),
		Width:      2,
		Height:     2,
		Transform:  Transform{Displacement: field, TurbulencePower: 0.5},
	}
	got := &Buffer{Width: 2, Height: 2, Data: make([]float32, 4)}
	if err := (&CPU{}).Render(ctx, req, got); err != nil {
		t.Fatal(err)
	}

	plain := *req
	plain.Transform = Transform{}
	plain.Bounds = noisemap.PlanarBounds(0.5, 0.75, 0, 0.25)
	want := &Buffer{Width: 2, Height: 2, Data: make([]float32, 4)}
	if err := (&CPU{}).Render(ctx, &plain, want); err != nil {
		t.Fatal(err)
	}
	if d := MaxAbsDiff(got, want); d > 1e-6 {
		t.Errorf("displaced render differs by %v", d)
	}

	bad := *req
	bad.Transform.Displacement = &Field{Width: 2, Height: 2, Data: make([]float32, 5)}
	if err := (&CPU{}).Render(ctx, &bad, got); err == nil {
		t.Error("malformed displacement field accepted")
	}
}

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(1)
	a := pool.Get(4, 2)
	if len(a.Data) != 8 {
		t.Fatalf("Get returned %d samples, want 8", len(a.Data))
	}
	pool.Put(a)
	pool.Put(&Buffer{Width: 4, Height: 2, Data: make([]float32, 8)})
	if pool.Idle() != 1 {
		t.Errorf("Idle = %d, want 1 after exceeding the per-size limit", pool.Idle())
	}
	if b := pool.Get(4, 2); b != a {
		t.Error("Get did not reuse the pooled buffer")
	}
	if pool.Idle() != 0 {
		t.Errorf("Idle = %d, want 0", pool.Idle())
	}
}

func TestRenderPooled(t *testing.T) {
	pool := NewBufferPool(0)
	cpu := &CPU{}
	buf, err := RenderPooled(context.Background(), cpu, pool, perlinRequest(6, 5))
	if err != nil {
		t.Fatal(err)
	}
	if buf.Width != 6 || buf.Height != 5 {
		t.Errorf("buffer %dx%d", buf.Width, buf.Height)
	}
	pool.Put(buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderPooled(ctx, cpu, pool, perlinRequest(6, 5)); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled render err = %v", err)
	}
	if pool.Idle() != 1 {
		t.Errorf("failed render did not return its buffer: Idle = %d", pool.Idle())
	}
}

func TestFlatten(t *testing.T) {
	g := module.New()
	p := g.MustAdd(module.NewPerlin())
	sb := g.MustAdd(&module.ScaleBias{Scale: 0.5, Bias: 0.1}, p)
	sum := g.MustAdd(&module.Add{}, sb, p)
	sel := g.MustAdd(module.NewSelect(-0.5, 0.5, 0.1), sum, p)

	nodes, err := Flatten(g, sel)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 4 {
		t.Fatalf("Flatten returned %d nodes, want 4 (shared Perlin once)", len(nodes))
	}
	pos := make(map[module.ID]int)
	for i, n := range nodes {
		pos[n.ID] = i
	}
	for _, n := range nodes {
		for _, s := range n.Sources {
			if s != module.None && pos[s] >= pos[n.ID] {
				t.Errorf("module %d listed before its source %d", n.ID, s)
			}
		}
	}
	last := nodes[len(nodes)-1]
	if last.ID != sel || last.Sources[2] != module.None {
		t.Errorf("root node = %+v", last)
	}
	if last.Values["fall_off"] != 0.1 {
		t.Errorf("select fall_off = %v", last.Values["fall_off"])
	}
	if v := nodes[pos[sb]].Values; v["scale"] != 0.5 || v["bias"] != 0.1 {
		t.Errorf("scale bias values = %v", v)
	}
	if v := nodes[pos[p]].Values; v["octaves"] != 6 || v["lacunarity"] != 2 {
		t.Errorf("perlin values = %v", v)
	}

	bad := g.MustAdd(&module.Abs{})
	if _, err := Flatten(g, bad); !errors.Is(err, module.ErrUnboundSource) {
		t.Errorf("Flatten unbound err = %v", err)
	}
}

func TestParamsOfControlPoints(t *testing.T) {
	tr := module.NewTerrace()
	if err := tr.Generate(3); err != nil {
		t.Fatal(err)
	}
	tr.SetInverted(true)
	v := ParamsOf(tr)
	if v["in0"] != -1 || v["in1"] != 0 || v["in2"] != 1 || v["inverted"] != 1 {
		t.Errorf("terrace params = %v", v)
	}
	if len(ParamsOf(&module.Abs{})) != 0 {
		t.Error("Abs has parameters")
	}
}
