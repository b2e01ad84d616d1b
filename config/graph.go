package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noise"
)

var (
	// ErrNoRoot is returned when the graph root is missing or names no node.
	ErrNoRoot = errors.New("graph root not found")
	// ErrDuplicateNode is returned when two nodes share an id.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrDanglingSource is returned when a node lists a source id that no node has.
	ErrDanglingSource = errors.New("source names no node")
	// ErrUnknownType is returned for a node type that is not a module kind.
	ErrUnknownType = errors.New("unknown module type")
)

// GraphConfig describes a module graph declaratively.
type GraphConfig struct {
	Root  string       `yaml:"root"`
	Nodes []NodeConfig `yaml:"nodes"`
}

// NodeConfig describes one module. Params holds the module's settings and is
// decoded strictly against its type. Sources bind slots in order; an empty
// string leaves that slot unbound.
type NodeConfig struct {
	ID      string    `yaml:"id"`
	Type    string    `yaml:"type"`
	Params  yaml.Node `yaml:"params,omitempty"`
	Sources []string  `yaml:"sources,omitempty"`
}

// Build assembles the described graph and validates it from the root.
// The returned map resolves node ids to module IDs.
func (gc GraphConfig) Build() (*module.Graph, module.ID, map[string]module.ID, error) {
	g := module.New()
	ids := make(map[string]module.ID, len(gc.Nodes))

	// Modules first, so sources may refer forward.
	for i := range gc.Nodes {
		n := &gc.Nodes[i]
		if _, ok := ids[n.ID]; ok {
			return nil, module.None, nil, fmt.Errorf("graph node %q: %w", n.ID, ErrDuplicateNode)
		}
		p, err := n.params()
		if err != nil {
			return nil, module.None, nil, fmt.Errorf("graph node %q: %w", n.ID, err)
		}
		if len(n.Sources) > p.Sources() {
			return nil, module.None, nil, fmt.Errorf("graph node %q: %d sources for %s: %w",
				n.ID, len(n.Sources), p.Kind(), module.ErrSlot)
		}
		id, err := g.Add(p)
		if err != nil {
			return nil, module.None, nil, fmt.Errorf("graph node %q: %w", n.ID, err)
		}
		ids[n.ID] = id
	}

	for _, n := range gc.Nodes {
		for slot, name := range n.Sources {
			if name == "" {
				continue
			}
			src, ok := ids[name]
			if !ok {
				return nil, module.None, nil, fmt.Errorf("graph node %q slot %d: %q: %w", n.ID, slot, name, ErrDanglingSource)
			}
			if err := g.SetSource(ids[n.ID], slot, src); err != nil {
				return nil, module.None, nil, fmt.Errorf("graph node %q: %w", n.ID, err)
			}
		}
	}

	root, ok := ids[gc.Root]
	if !ok {
		return nil, module.None, nil, fmt.Errorf("%q: %w", gc.Root, ErrNoRoot)
	}
	if err := g.Validate(root); err != nil {
		return nil, module.None, nil, err
	}
	return g, root, ids, nil
}

// decode fills dst from the node's params, rejecting unknown fields.
func (n *NodeConfig) decode(dst any) error {
	if n.Params.IsZero() {
		return nil
	}
	data, err := yaml.Marshal(&n.Params)
	if err != nil {
		return fmt.Errorf("params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

type ridgedParams struct {
	Frequency  float64       `yaml:"frequency"`
	Lacunarity float64       `yaml:"lacunarity"`
	Exponent   float64       `yaml:"exponent"`
	Octaves    int           `yaml:"octaves"`
	Gain       float64       `yaml:"gain"`
	Offset     float64       `yaml:"offset"`
	Seed       int32         `yaml:"seed"`
	Quality    noise.Quality `yaml:"quality"`
}

type simplexParams struct {
	Frequency   float64 `yaml:"frequency"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
	Octaves     int     `yaml:"octaves"`
	Seed        int64   `yaml:"seed"`
}

type classicPerlinParams struct {
	Frequency float64 `yaml:"frequency"`
	Alpha     float64 `yaml:"alpha"`
	Beta      float64 `yaml:"beta"`
	Octaves   int     `yaml:"octaves"`
	Seed      int64   `yaml:"seed"`
}

type selectParams struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	FallOff float64 `yaml:"fall_off"`
}

type curveParams struct {
	Points []module.ControlPoint `yaml:"points"`
}

type terraceParams struct {
	Points   []float64 `yaml:"points"`
	Steps    int       `yaml:"steps,omitempty"` // evenly spaced points, replaces Points when set
	Inverted bool      `yaml:"inverted"`
}

type turbulenceParams struct {
	Power     float64 `yaml:"power"`
	Frequency float64 `yaml:"frequency"`
	Roughness int     `yaml:"roughness"`
	Seed      int32   `yaml:"seed"`
}

type imageParams struct {
	Path string `yaml:"path,omitempty"`
}

// NodeParams returns the params document for p in the shape that a node of
// p's kind decodes. Image paths and curve assets live outside the module and
// are not included.
func NodeParams(p module.Params) any {
	switch p := p.(type) {
	case *module.RidgedMultifractal:
		return ridgedParams{
			Frequency:  p.Frequency,
			Lacunarity: p.Lacunarity(),
			Exponent:   p.Exponent(),
			Octaves:    p.OctaveCount,
			Gain:       p.Gain,
			Offset:     p.Offset,
			Seed:       p.Seed,
			Quality:    p.Quality,
		}
	case *module.Simplex:
		return simplexParams{
			Frequency:   p.Frequency,
			Lacunarity:  p.Lacunarity,
			Persistence: p.Persistence,
			Octaves:     p.OctaveCount,
			Seed:        p.Seed(),
		}
	case *module.ClassicPerlin:
		return classicPerlinParams{
			Frequency: p.Frequency,
			Alpha:     p.Alpha(),
			Beta:      p.Beta(),
			Octaves:   p.Octaves(),
			Seed:      p.Seed(),
		}
	case *module.Select:
		return selectParams{Min: p.Min(), Max: p.Max(), FallOff: p.FallOff()}
	case *module.Curve:
		return curveParams{Points: p.ControlPoints()}
	case *module.Terrace:
		return terraceParams{Points: p.ControlPoints(), Inverted: p.Inverted()}
	case *module.Turbulence:
		return turbulenceParams{
			Power:     p.Power,
			Frequency: p.Frequency(),
			Roughness: p.Roughness(),
			Seed:      p.Seed(),
		}
	case *module.Image:
		return imageParams{}
	}
	// The remaining kinds decode straight into their exported fields.
	return p
}

// EncodeNode builds the graph entry for p.
func EncodeNode(id string, p module.Params, sources []string) (NodeConfig, error) {
	n := NodeConfig{ID: id, Type: p.Kind().String(), Sources: sources}
	if err := n.Params.Encode(NodeParams(p)); err != nil {
		return NodeConfig{}, fmt.Errorf("graph node %q: %w", id, err)
	}
	return n, nil
}

// params builds the module the node describes.
func (n *NodeConfig) params() (module.Params, error) {
	kind, err := module.ParseKind(n.Type)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, n.Type)
	}

	switch kind {
	case module.KindRidgedMultifractal:
		r := module.NewRidgedMultifractal()
		ps := ridgedParams{
			Frequency:  r.Frequency,
			Lacunarity: r.Lacunarity(),
			Exponent:   r.Exponent(),
			Octaves:    r.OctaveCount,
			Gain:       r.Gain,
			Offset:     r.Offset,
			Seed:       r.Seed,
			Quality:    r.Quality,
		}
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		r.Frequency, r.OctaveCount = ps.Frequency, ps.Octaves
		r.Gain, r.Offset = ps.Gain, ps.Offset
		r.Seed, r.Quality = ps.Seed, ps.Quality
		r.SetLacunarity(ps.Lacunarity)
		r.SetExponent(ps.Exponent)
		return r, nil

	case module.KindSimplex:
		s := module.NewSimplex(0)
		ps := simplexParams{
			Frequency:   s.Frequency,
			Lacunarity:  s.Lacunarity,
			Persistence: s.Persistence,
			Octaves:     s.OctaveCount,
		}
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		s.Frequency, s.Lacunarity = ps.Frequency, ps.Lacunarity
		s.Persistence, s.OctaveCount = ps.Persistence, ps.Octaves
		s.SetSeed(ps.Seed)
		return s, nil

	case module.KindClassicPerlin:
		c := module.NewClassicPerlin()
		ps := classicPerlinParams{
			Frequency: c.Frequency,
			Alpha:     c.Alpha(),
			Beta:      c.Beta(),
			Octaves:   c.Octaves(),
			Seed:      c.Seed(),
		}
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		c.Frequency = ps.Frequency
		c.SetParams(ps.Alpha, ps.Beta, ps.Octaves, ps.Seed)
		return c, nil

	case module.KindSelect:
		ps := selectParams{Min: -1, Max: 1}
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		return module.NewSelect(ps.Min, ps.Max, ps.FallOff), nil

	case module.KindCurve:
		var ps curveParams
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		c := &module.Curve{}
		for _, p := range ps.Points {
			c.Add(p.In, p.Out)
		}
		return c, nil

	case module.KindTerrace:
		var ps terraceParams
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		t := module.NewTerrace()
		if ps.Steps > 0 {
			if err := t.Generate(ps.Steps); err != nil {
				return nil, err
			}
		} else {
			for _, p := range ps.Points {
				t.Add(p)
			}
		}
		t.SetInverted(ps.Inverted)
		return t, nil

	case module.KindTurbulence:
		t := module.NewTurbulence()
		ps := turbulenceParams{
			Power:     t.Power,
			Frequency: t.Frequency(),
			Roughness: t.Roughness(),
			Seed:      t.Seed(),
		}
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		t.Power = ps.Power
		t.SetFrequency(ps.Frequency)
		t.SetRoughness(ps.Roughness)
		t.SetSeed(ps.Seed)
		return t, nil

	case module.KindImage:
		var ps imageParams
		if err := n.decode(&ps); err != nil {
			return nil, err
		}
		img, err := loadImage(ps.Path)
		if err != nil {
			return nil, err
		}
		return &module.Image{Sampler: module.ImageSampler{Img: img}}, nil
	}

	// Everything else decodes straight into its exported fields.
	p := newParams(kind)
	if err := n.decode(p); err != nil {
		return nil, err
	}
	return p, nil
}

func newParams(k module.Kind) module.Params {
	switch k {
	case module.KindConst:
		return &module.Const{}
	case module.KindChecker:
		return &module.Checker{}
	case module.KindCylinders:
		return module.NewCylinders()
	case module.KindPerlin:
		return module.NewPerlin()
	case module.KindBillow:
		return module.NewBillow()
	case module.KindVoronoi:
		return module.NewVoronoi()
	case module.KindAbs:
		return &module.Abs{}
	case module.KindInvert:
		return &module.Invert{}
	case module.KindMin:
		return &module.Min{}
	case module.KindMax:
		return &module.Max{}
	case module.KindAdd:
		return &module.Add{}
	case module.KindMultiply:
		return &module.Multiply{}
	case module.KindPower:
		return &module.Power{}
	case module.KindExponent:
		return module.NewExponent()
	case module.KindScaleBias:
		return module.NewScaleBias()
	case module.KindClamp:
		return module.NewClamp()
	case module.KindBlend:
		return &module.Blend{}
	case module.KindDisplace:
		return &module.Displace{}
	case module.KindTranslate:
		return &module.Translate{}
	case module.KindScale:
		return module.NewScale()
	}
	panic(fmt.Sprintf("config: no params for %s", k))
}

func loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image: %w", module.ErrNoSampler)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return img, nil
}
