package module

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestAddRejectsExtraSources(t *testing.T) {
	g := New()
	c := g.MustAdd(&Const{Constant: 1})
	_, err := g.Add(&Abs{}, c, c)
	if !errors.Is(err, ErrSlot) {
		t.Fatalf("Add with two sources on Abs: err = %v, want ErrSlot", err)
	}
	if g.Len() != 1 {
		t.Errorf("failed Add changed graph size to %d", g.Len())
	}
}

func TestAddRejectsUnknownSource(t *testing.T) {
	g := New()
	_, err := g.Add(&Abs{}, ID(7))
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("err = %v, want ErrUnknownModule", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *Graph) ID
		want  error
	}{
		{
			name: "unbound slot",
			build: func(g *Graph) ID {
				a := g.MustAdd(&Const{Constant: 1})
				return g.MustAdd(&Add{}, a)
			},
			want: ErrUnboundSource,
		},
		{
			name: "cycle through SetSource",
			build: func(g *Graph) ID {
				c := g.MustAdd(&Const{})
				a := g.MustAdd(&Abs{}, c)
				inv := g.MustAdd(&Invert{}, a)
				if err := g.SetSource(a, 0, inv); err != nil {
					t.Fatal(err)
				}
				return inv
			},
			want: ErrCycle,
		},
		{
			name: "curve with three points",
			build: func(g *Graph) ID {
				c := &Curve{}
				c.Add(-1, -1)
				c.Add(0, 0)
				c.Add(1, 1)
				return g.MustAdd(c, g.MustAdd(NewPerlin()))
			},
			want: ErrControlPoints,
		},
		{
			name: "terrace with one point",
			build: func(g *Graph) ID {
				tr := NewTerrace()
				tr.Add(0)
				return g.MustAdd(tr, g.MustAdd(NewPerlin()))
			},
			want: ErrControlPoints,
		},
		{
			name: "image without sampler",
			build: func(g *Graph) ID {
				return g.MustAdd(&Image{})
			},
			want: ErrNoSampler,
		},
		{
			name: "foreign params type",
			build: func(g *Graph) ID {
				return g.MustAdd(foreignParams{})
			},
			want: ErrUnsupported,
		},
		{
			name: "unknown root",
			build: func(g *Graph) ID {
				return ID(42)
			},
			want: ErrUnknownModule,
		},
		{
			name: "select without controller",
			build: func(g *Graph) ID {
				a := g.MustAdd(&Const{Constant: -1})
				b := g.MustAdd(&Const{Constant: 1})
				return g.MustAdd(NewSelect(-0.5, 0.5, 0), a, b)
			},
			want: nil,
		},
		{
			name: "valid chain",
			build: func(g *Graph) ID {
				p := g.MustAdd(NewPerlin())
				sb := g.MustAdd(NewScaleBias(), p)
				return g.MustAdd(NewClamp(), sb)
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			root := tt.build(g)
			err := g.Validate(root)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate = %v, want %v", err, tt.want)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate error %T is not a *ConfigError", err)
			}
		})
	}
}

func TestValidateReportsSlot(t *testing.T) {
	g := New()
	a := g.MustAdd(&Const{})
	d := g.MustAdd(&Displace{}, a, a)
	err := g.Validate(d)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if ce.Module != d || ce.Slot != 2 || ce.Kind != KindDisplace {
		t.Errorf("ConfigError = %+v, want module %d slot 2 displace", ce, d)
	}
}

func TestSourceOfUnbound(t *testing.T) {
	g := New()
	m := g.MustAdd(&Multiply{})
	if _, err := g.SourceOf(m, 0); !errors.Is(err, ErrUnboundSource) {
		t.Errorf("SourceOf unbound = %v, want ErrUnboundSource", err)
	}
	if _, err := g.SourceOf(m, 2); !errors.Is(err, ErrSlot) {
		t.Errorf("SourceOf slot 2 = %v, want ErrSlot", err)
	}
	c := g.MustAdd(&Const{})
	if err := g.SetSource(m, 0, c); err != nil {
		t.Fatal(err)
	}
	if got, err := g.SourceOf(m, 0); err != nil || got != c {
		t.Errorf("SourceOf = %d, %v; want %d", got, err, c)
	}
}

func TestValuePanicsOnUnboundSlot(t *testing.T) {
	g := New()
	inv := g.MustAdd(&Invert{})
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnboundSource) {
			t.Fatalf("recovered %v, want ErrUnboundSource", r)
		}
	}()
	g.Value(inv, 0, 0, 0)
}

func TestEvaluateValidates(t *testing.T) {
	g := New()
	inv := g.MustAdd(&Invert{})
	if _, err := g.Evaluate(inv, 0, 0, 0); !errors.Is(err, ErrUnboundSource) {
		t.Fatalf("Evaluate = %v, want ErrUnboundSource", err)
	}
	c := g.MustAdd(&Const{Constant: 0.5})
	if err := g.SetSource(inv, 0, c); err != nil {
		t.Fatal(err)
	}
	v, err := g.Evaluate(inv, 1, 2, 3)
	if err != nil || v != -0.5 {
		t.Fatalf("Evaluate = %v, %v; want -0.5", v, err)
	}
}

func TestSharedSubgraph(t *testing.T) {
	g := New()
	p := g.MustAdd(NewPerlin())
	sum := g.MustAdd(&Add{}, p, p)
	m, err := g.Module(sum)
	if err != nil {
		t.Fatal(err)
	}
	x, y, z := 0.31, -0.72, 1.5
	want := 2 * g.Value(p, x, y, z)
	if got := m.Value(x, y, z); got != want {
		t.Errorf("shared Add = %v, want %v", got, want)
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	g := New()
	p := g.MustAdd(NewPerlin())
	r := g.MustAdd(NewRidgedMultifractal())
	v := g.MustAdd(NewVoronoi())
	tb := NewTurbulence()
	turb := g.MustAdd(tb, v)
	tr := NewTerrace()
	if err := tr.Generate(5); err != nil {
		t.Fatal(err)
	}
	ter := g.MustAdd(tr, r)
	root := g.MustAdd(NewSelect(-0.2, 0.4, 0.1), turb, ter, p)
	m, err := g.Module(root)
	if err != nil {
		t.Fatal(err)
	}

	const n = 64
	want := make([]float64, n)
	for i := range want {
		want[i] = m.Value(float64(i)*0.13, float64(i)*0.07, -float64(i)*0.11)
	}

	var wg sync.WaitGroup
	errs := make(chan int, 8*n)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if m.Value(float64(i)*0.13, float64(i)*0.07, -float64(i)*0.11) != want[i] {
					errs <- i
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for i := range errs {
		t.Errorf("concurrent value mismatch at sample %d", i)
	}
}

func TestKindNames(t *testing.T) {
	for k := KindConst; k <= KindScale; k++ {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Errorf("ParseKind(%q): %v", k.String(), err)
			continue
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("nope"); err == nil {
		t.Error("ParseKind accepted an unknown name")
	}
	if !KindImage.IsGenerator() || KindAbs.IsGenerator() {
		t.Error("IsGenerator boundary wrong")
	}
}

func constGraph(values ...float64) (*Graph, []ID) {
	g := New()
	ids := make([]ID, len(values))
	for i, v := range values {
		ids[i] = g.MustAdd(&Const{Constant: v})
	}
	return g, ids
}

func eval(t *testing.T, g *Graph, id ID, x, y, z float64) float64 {
	t.Helper()
	v, err := g.Evaluate(id, x, y, z)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// foreignParams satisfies Params without being one of the module types.
type foreignParams struct{}

func (foreignParams) Kind() Kind { return KindConst }
func (foreignParams) Sources() int { return 0 }

func TestEvaluateRejectsForeignParams(t *testing.T) {
	g := New()
	id := g.MustAdd(foreignParams{})
	if _, err := g.Evaluate(id, 0, 0, 0); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Evaluate err = %v, want ErrUnsupported", err)
	}
	if _, err := g.Module(id); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Module err = %v, want ErrUnsupported", err)
	}

	defer func() {
		ce, ok := recover().(*ConfigError)
		if !ok {
			t.Fatal("Value did not panic with a *ConfigError")
		}
		if ce.Kind != KindConst || !errors.Is(ce, ErrUnsupported) {
			t.Errorf("panic = %v, want const kind and ErrUnsupported", ce)
		}
	}()
	g.Value(id, 0, 0, 0)
}
