// Package module implements the noise module graph: leaf generators and
// operators that combine them, stored in an arena and addressed by ID.
//
// A Graph owns every module added to it. Operators refer to their sources by
// ID, so a subgraph shared by several parents is just the same ID listed
// more than once. Evaluation never mutates the graph; a validated graph may be
// evaluated from any number of goroutines as long as nobody changes module
// parameters at the same time.
package module

import (
	"errors"
	"fmt"
)

// ID addresses a module inside a Graph.
type ID int32

// None marks an unbound source slot.
const None ID = -1

var (
	// ErrUnboundSource is returned when a required source slot has no module.
	ErrUnboundSource = errors.New("unbound source module")
	// ErrSlot is returned for a source slot index outside the module's slot count.
	ErrSlot = errors.New("source slot out of range")
	// ErrUnknownModule is returned for an ID that does not belong to the graph.
	ErrUnknownModule = errors.New("unknown module")
	// ErrCycle is returned when a module is (indirectly) its own source.
	ErrCycle = errors.New("module graph contains a cycle")
	// ErrControlPoints is returned when a Curve or Terrace has too few control points.
	ErrControlPoints = errors.New("insufficient control points")
	// ErrNoSampler is returned when an Image module has no sampler attached.
	ErrNoSampler = errors.New("image module has no sampler")
	// ErrUnsupported is returned for a Params type the evaluator does not know.
	ErrUnsupported = errors.New("unsupported module type")
)

// ConfigError ties a configuration failure to the module that caused it.
type ConfigError struct {
	Module ID
	Kind   Kind
	Slot   int // -1 when the error is not about a slot
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("module %d (%s) slot %d: %v", e.Module, e.Kind, e.Slot, e.Err)
	}
	return fmt.Sprintf("module %d (%s): %v", e.Module, e.Kind, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Params is the closed set of module variants. Each concrete type carries its
// own parameters; the graph stores the sources.
type Params interface {
	Kind() Kind
	// Sources is the fixed number of source slots.
	Sources() int
}

// Source is anything that produces a scalar for a 3D coordinate. Generators
// satisfy it directly; graph roots are exposed through Module.
type Source interface {
	Value(x, y, z float64) float64
}

type node struct {
	params  Params
	sources []ID
}

// Graph is an arena of modules.
type Graph struct {
	nodes []node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Add stores p and binds the given sources to its first slots, in order.
// Fewer sources than slots is allowed; the remaining slots stay unbound until
// SetSource fills them. Sources must already be in the graph.
func (g *Graph) Add(p Params, sources ...ID) (ID, error) {
	id := ID(len(g.nodes))
	if len(sources) > p.Sources() {
		return None, &ConfigError{Module: id, Kind: p.Kind(), Slot: len(sources) - 1, Err: ErrSlot}
	}
	slots := make([]ID, p.Sources())
	for i := range slots {
		slots[i] = None
	}
	for i, src := range sources {
		if !g.contains(src) {
			return None, &ConfigError{Module: id, Kind: p.Kind(), Slot: i, Err: ErrUnknownModule}
		}
		slots[i] = src
	}
	g.nodes = append(g.nodes, node{params: p, sources: slots})
	return id, nil
}

// MustAdd is like Add but panics on error. It is meant for graphs assembled
// in code where a failure is a programming mistake.
func (g *Graph) MustAdd(p Params, sources ...ID) ID {
	id, err := g.Add(p, sources...)
	if err != nil {
		panic(err)
	}
	return id
}

// SetSource binds src to slot of module id.
func (g *Graph) SetSource(id ID, slot int, src ID) error {
	if !g.contains(id) {
		return &ConfigError{Module: id, Slot: slot, Err: ErrUnknownModule}
	}
	n := &g.nodes[id]
	if slot < 0 || slot >= len(n.sources) {
		return &ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrSlot}
	}
	if !g.contains(src) {
		return &ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrUnknownModule}
	}
	n.sources[slot] = src
	return nil
}

// SourceOf returns the module bound to slot of module id. Reading an unbound
// slot is an error, never a default.
func (g *Graph) SourceOf(id ID, slot int) (ID, error) {
	if !g.contains(id) {
		return None, &ConfigError{Module: id, Slot: slot, Err: ErrUnknownModule}
	}
	n := &g.nodes[id]
	if slot < 0 || slot >= len(n.sources) {
		return None, &ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrSlot}
	}
	if n.sources[slot] == None {
		return None, &ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrUnboundSource}
	}
	return n.sources[slot], nil
}

// Params returns the parameters of module id, or nil if id is unknown.
// The returned value is shared with the graph: changing it changes the module.
func (g *Graph) Params(id ID) Params {
	if !g.contains(id) {
		return nil
	}
	return g.nodes[id].params
}

func (g *Graph) contains(id ID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// optionalSlot reports whether a slot may stay unbound.
func optionalSlot(p Params, slot int) bool {
	_, ok := p.(*Select)
	return ok && slot == selectControl
}

// Validate checks the subgraph reachable from root: every required slot is
// bound, there are no cycles, and each module's own settings are usable.
func (g *Graph) Validate(root ID) error {
	if !g.contains(root) {
		return &ConfigError{Module: root, Slot: -1, Err: ErrUnknownModule}
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(g.nodes))

	var visit func(id ID) error
	visit = func(id ID) error {
		switch state[id] {
		case visiting:
			return &ConfigError{Module: id, Kind: g.nodes[id].params.Kind(), Slot: -1, Err: ErrCycle}
		case done:
			return nil
		}
		state[id] = visiting
		n := &g.nodes[id]
		if err := validateParams(n.params); err != nil {
			return &ConfigError{Module: id, Kind: n.params.Kind(), Slot: -1, Err: err}
		}
		for slot, src := range n.sources {
			if src == None {
				if optionalSlot(n.params, slot) {
					continue
				}
				return &ConfigError{Module: id, Kind: n.params.Kind(), Slot: slot, Err: ErrUnboundSource}
			}
			if err := visit(src); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	return visit(root)
}

// validateParams checks settings that only the module itself knows about.
func validateParams(p Params) error {
	switch p := p.(type) {
	case *Curve:
		if p.Asset == nil && len(p.points) < 4 {
			return fmt.Errorf("%w: curve needs 4, has %d", ErrControlPoints, len(p.points))
		}
	case *Terrace:
		if p.Asset == nil && len(p.points) < 2 {
			return fmt.Errorf("%w: terrace needs 2, has %d", ErrControlPoints, len(p.points))
		}
	case *Image:
		if p.Sampler == nil {
			return ErrNoSampler
		}
	case *Const, *Checker, *Cylinders, *Perlin, *Billow, *RidgedMultifractal,
		*Voronoi, *Simplex, *ClassicPerlin,
		*Abs, *Invert, *Min, *Max, *Add, *Multiply, *Power, *Exponent,
		*ScaleBias, *Clamp, *Blend, *Select, *Displace, *Turbulence,
		*Translate, *Scale:
	default:
		return fmt.Errorf("%w %T", ErrUnsupported, p)
	}
	return nil
}

// Module is a validated handle on a graph root. It satisfies Source.
type Module struct {
	g  *Graph
	id ID
}

// Module validates the subgraph under root and returns an evaluable handle.
func (g *Graph) Module(root ID) (Module, error) {
	if err := g.Validate(root); err != nil {
		return Module{}, err
	}
	return Module{g: g, id: root}, nil
}

// ID returns the root module's ID.
func (m Module) ID() ID { return m.id }

// Value evaluates the root module at (x,y,z).
func (m Module) Value(x, y, z float64) float64 {
	return m.g.Value(m.id, x, y, z)
}

// Evaluate validates the subgraph under id and evaluates it at (x,y,z).
func (g *Graph) Evaluate(id ID, x, y, z float64) (float64, error) {
	if err := g.Validate(id); err != nil {
		return 0, err
	}
	return g.Value(id, x, y, z), nil
}
