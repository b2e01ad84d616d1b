package accel

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/xnoise/module"
)

// Node is the flat view of one module handed to a backend.
type Node struct {
	ID      module.ID
	Kind    module.Kind
	Values  map[string]float64
	Sources []module.ID // module.None for an unbound optional slot
}

// Flatten validates the subgraph under root and lists its modules so that
// every module comes after all of its sources. Shared modules appear once.
func Flatten(g *module.Graph, root module.ID) ([]Node, error) {
	if err := g.Validate(root); err != nil {
		return nil, err
	}
	var out []Node
	seen := make(map[module.ID]bool)

	var visit func(id module.ID) error
	visit = func(id module.ID) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		p := g.Params(id)
		n := Node{ID: id, Kind: p.Kind(), Values: ParamsOf(p), Sources: make([]module.ID, p.Sources())}
		for slot := range n.Sources {
			src, err := g.SourceOf(id, slot)
			if errors.Is(err, module.ErrUnboundSource) {
				n.Sources[slot] = module.None
				continue
			}
			if err != nil {
				return err
			}
			n.Sources[slot] = src
			if err := visit(src); err != nil {
				return err
			}
		}
		out = append(out, n)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}

// ParamsOf exports the scalar parameters of p by name. Control points are
// listed as in0, out0, in1, ... Modules without scalar parameters yield an
// empty map.
func ParamsOf(p module.Params) map[string]float64 {
	v := make(map[string]float64)
	switch p := p.(type) {
	case *module.Const:
		v["value"] = p.Constant
	case *module.Cylinders:
		v["frequency"] = p.Frequency
	case *module.Perlin:
		fractal(v, &p.Fractal)
	case *module.Billow:
		fractal(v, &p.Fractal)
	case *module.RidgedMultifractal:
		v["frequency"] = p.Frequency
		v["lacunarity"] = p.Lacunarity()
		v["exponent"] = p.Exponent()
		v["octaves"] = float64(p.OctaveCount)
		v["gain"] = p.Gain
		v["offset"] = p.Offset
		v["seed"] = float64(p.Seed)
		v["quality"] = float64(p.Quality)
	case *module.Voronoi:
		v["frequency"] = p.Frequency
		v["displacement"] = p.Displacement
		v["seed"] = float64(p.Seed)
		v["use_distance"] = boolValue(p.UseDistance)
	case *module.Simplex:
		v["frequency"] = p.Frequency
		v["lacunarity"] = p.Lacunarity
		v["persistence"] = p.Persistence
		v["octaves"] = float64(p.OctaveCount)
		v["seed"] = float64(p.Seed())
	case *module.ClassicPerlin:
		v["frequency"] = p.Frequency
		v["alpha"] = p.Alpha()
		v["beta"] = p.Beta()
		v["octaves"] = float64(p.Octaves())
		v["seed"] = float64(p.Seed())
	case *module.Exponent:
		v["exponent"] = p.Exponent
	case *module.ScaleBias:
		v["scale"] = p.Scale
		v["bias"] = p.Bias
	case *module.Clamp:
		v["min"] = p.Min
		v["max"] = p.Max
	case *module.Select:
		v["min"] = p.Min()
		v["max"] = p.Max()
		v["fall_off"] = p.FallOff()
	case *module.Curve:
		for i, cp := range p.ControlPoints() {
			v[fmt.Sprintf("in%d", i)] = cp.In
			v[fmt.Sprintf("out%d", i)] = cp.Out
		}
	case *module.Terrace:
		for i, in := range p.ControlPoints() {
			v[fmt.Sprintf("in%d", i)] = in
		}
		v["inverted"] = boolValue(p.Inverted())
	case *module.Turbulence:
		v["power"] = p.Power
		v["frequency"] = p.Frequency()
		v["roughness"] = float64(p.Roughness())
		v["seed"] = float64(p.Seed())
	case *module.Translate:
		v["x"], v["y"], v["z"] = p.X, p.Y, p.Z
	case *module.Scale:
		v["x"], v["y"], v["z"] = p.X, p.Y, p.Z
	}
	return v
}

func fractal(v map[string]float64, f *module.Fractal) {
	v["frequency"] = f.Frequency
	v["lacunarity"] = f.Lacunarity
	v["persistence"] = f.Persistence
	v["octaves"] = float64(f.OctaveCount)
	v["seed"] = float64(f.Seed)
	v["quality"] = float64(f.Quality)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
