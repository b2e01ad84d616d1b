package module

import (
	"math"

	"github.com/pthm-cable/xnoise/noise"
)

// Value evaluates module id at (x,y,z). The subgraph must have passed
// Validate: reaching an unbound slot here is a contract violation and panics
// with a *ConfigError.
func (g *Graph) Value(id ID, x, y, z float64) float64 {
	n := &g.nodes[id]
	switch p := n.params.(type) {
	// Generators
	case *Const:
		return p.Value(x, y, z)
	case *Checker:
		return p.Value(x, y, z)
	case *Cylinders:
		return p.Value(x, y, z)
	case *Perlin:
		return p.Value(x, y, z)
	case *Billow:
		return p.Value(x, y, z)
	case *RidgedMultifractal:
		return p.Value(x, y, z)
	case *Voronoi:
		return p.Value(x, y, z)
	case *Simplex:
		return p.Value(x, y, z)
	case *ClassicPerlin:
		return p.Value(x, y, z)
	case *Image:
		return p.Value(x, y, z)

	// Pointwise operators
	case *Abs:
		return math.Abs(g.src(n, id, 0, x, y, z))
	case *Invert:
		return -g.src(n, id, 0, x, y, z)
	case *Min:
		return math.Min(g.src(n, id, 0, x, y, z), g.src(n, id, 1, x, y, z))
	case *Max:
		return math.Max(g.src(n, id, 0, x, y, z), g.src(n, id, 1, x, y, z))
	case *Add:
		return g.src(n, id, 0, x, y, z) + g.src(n, id, 1, x, y, z)
	case *Multiply:
		return g.src(n, id, 0, x, y, z) * g.src(n, id, 1, x, y, z)
	case *Power:
		return math.Pow(g.src(n, id, 0, x, y, z), g.src(n, id, 1, x, y, z))
	case *Exponent:
		return p.apply(g.src(n, id, 0, x, y, z))
	case *ScaleBias:
		return g.src(n, id, 0, x, y, z)*p.Scale + p.Bias
	case *Clamp:
		return p.apply(g.src(n, id, 0, x, y, z))
	case *Curve:
		return p.apply(g.src(n, id, 0, x, y, z))
	case *Terrace:
		return p.apply(g.src(n, id, 0, x, y, z))

	// Combiners
	case *Blend:
		a := g.src(n, id, 0, x, y, z)
		b := g.src(n, id, 1, x, y, z)
		c := (g.src(n, id, 2, x, y, z) + 1) / 2
		return noise.InterpolateLinear(a, b, c)
	case *Select:
		return g.selectValue(p, n, id, x, y, z)

	// Coordinate transformers
	case *Displace:
		dx := x + g.src(n, id, 1, x, y, z)
		dy := y + g.src(n, id, 2, x, y, z)
		dz := z + g.src(n, id, 3, x, y, z)
		return g.src(n, id, 0, dx, dy, dz)
	case *Turbulence:
		dx, dy, dz := p.distort(x, y, z)
		return g.src(n, id, 0, dx, dy, dz)
	case *Translate:
		return g.src(n, id, 0, x+p.X, y+p.Y, z+p.Z)
	case *Scale:
		return g.src(n, id, 0, x*p.X, y*p.Y, z*p.Z)
	}
	panic(&ConfigError{Module: id, Kind: n.params.Kind(), Slot: -1, Err: ErrUnsupported})
}

// src evaluates the module bound to slot of n at (x,y,z).
func (g *Graph) src(n *node, id ID, slot int, x, y, z float64) float64 {
	s := n.sources[slot]
	if s == None {
		panic(&ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrUnboundSource})
	}
	return g.Value(s, x, y, z)
}

func (g *Graph) selectValue(p *Select, n *node, id ID, x, y, z float64) float64 {
	cv := 0.0
	if n.sources[selectControl] != None {
		cv = g.Value(n.sources[selectControl], x, y, z)
	}
	lo, hi, fall := p.min, p.max, p.fallOff

	if fall > 0 {
		switch {
		case cv < lo-fall:
			return g.src(n, id, selectOutside, x, y, z)
		case cv < lo+fall:
			a := noise.SCurve3((cv - (lo - fall)) / (2 * fall))
			return noise.InterpolateLinear(g.src(n, id, selectOutside, x, y, z), g.src(n, id, selectInside, x, y, z), a)
		case cv < hi-fall:
			return g.src(n, id, selectInside, x, y, z)
		case cv < hi+fall:
			a := noise.SCurve3((cv - (hi - fall)) / (2 * fall))
			return noise.InterpolateLinear(g.src(n, id, selectInside, x, y, z), g.src(n, id, selectOutside, x, y, z), a)
		}
		return g.src(n, id, selectOutside, x, y, z)
	}

	if cv < lo || cv > hi {
		return g.src(n, id, selectOutside, x, y, z)
	}
	return g.src(n, id, selectInside, x, y, z)
}
