// Package render turns finished noise maps into images: gradient-coloured
// maps, grayscale height maps and tangent-space normal maps.
//
// Map row 0 is the minimum of the clip region's Y axis (top for planar
// maps, south for spherical ones) and is written to the bottom image row.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// ErrNoStops is returned when building a gradient without colour stops.
var ErrNoStops = errors.New("gradient has no colour stops")

// Stop places a colour at a sample value.
type Stop struct {
	Pos   float64
	Color color.NRGBA
}

// Gradient maps sample values to colours by linear interpolation between
// stops, channel by channel. Values outside the stops take the nearest end colour.
type Gradient struct {
	stops      []Stop
	r, g, b, a interp.PiecewiseLinear
}

// NewGradient builds a gradient. Stops may be given in any order; a stop at
// an already used position replaces the earlier one.
func NewGradient(stops ...Stop) (*Gradient, error) {
	if len(stops) == 0 {
		return nil, ErrNoStops
	}
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })
	uniq := sorted[:0]
	for _, s := range sorted {
		if math.IsNaN(s.Pos) || math.IsInf(s.Pos, 0) {
			return nil, fmt.Errorf("gradient stop at %v", s.Pos)
		}
		if n := len(uniq); n > 0 && uniq[n-1].Pos == s.Pos {
			uniq[n-1] = s
			continue
		}
		uniq = append(uniq, s)
	}

	gr := &Gradient{stops: uniq}
	if len(uniq) < 2 {
		return gr, nil
	}
	xs := make([]float64, len(uniq))
	rs := make([]float64, len(uniq))
	gs := make([]float64, len(uniq))
	bs := make([]float64, len(uniq))
	as := make([]float64, len(uniq))
	for i, s := range uniq {
		xs[i] = s.Pos
		rs[i] = float64(s.Color.R)
		gs[i] = float64(s.Color.G)
		bs[i] = float64(s.Color.B)
		as[i] = float64(s.Color.A)
	}
	channels := []struct {
		name string
		pl   *interp.PiecewiseLinear
		ys   []float64
	}{
		{"red", &gr.r, rs},
		{"green", &gr.g, gs},
		{"blue", &gr.b, bs},
		{"alpha", &gr.a, as},
	}
	for _, c := range channels {
		if err := c.pl.Fit(xs, c.ys); err != nil {
			return nil, fmt.Errorf("fit %s channel: %w", c.name, err)
		}
	}
	return gr, nil
}

// MustGradient is like NewGradient but panics on error.
func MustGradient(stops ...Stop) *Gradient {
	g, err := NewGradient(stops...)
	if err != nil {
		panic(err)
	}
	return g
}

// Stops returns a copy of the stops in ascending order.
func (g *Gradient) Stops() []Stop {
	return append([]Stop(nil), g.stops...)
}

// Color returns the colour for sample value v.
func (g *Gradient) Color(v float64) color.NRGBA {
	if len(g.stops) == 1 || math.IsNaN(v) {
		return g.stops[0].Color
	}
	return color.NRGBA{
		R: channel(g.r.Predict(v)),
		G: channel(g.g.Predict(v)),
		B: channel(g.b.Predict(v)),
		A: channel(g.a.Predict(v)),
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// Grayscale maps -1 to black and +1 to white.
func Grayscale() *Gradient {
	return MustGradient(
		Stop{Pos: -1, Color: color.NRGBA{0, 0, 0, 255}},
		Stop{Pos: 1, Color: color.NRGBA{255, 255, 255, 255}},
	)
}

// Terrain colours deep water through shoreline, grass, rock and snow. Sea
// level sits at 0.
func Terrain() *Gradient {
	return MustGradient(
		Stop{Pos: -1, Color: color.NRGBA{0, 0, 128, 255}},
		Stop{Pos: -0.2, Color: color.NRGBA{32, 64, 128, 255}},
		Stop{Pos: -0.04, Color: color.NRGBA{64, 96, 192, 255}},
		Stop{Pos: -0.02, Color: color.NRGBA{192, 192, 128, 255}},
		Stop{Pos: 0, Color: color.NRGBA{0, 192, 0, 255}},
		Stop{Pos: 0.25, Color: color.NRGBA{192, 192, 0, 255}},
		Stop{Pos: 0.5, Color: color.NRGBA{160, 96, 64, 255}},
		Stop{Pos: 0.75, Color: color.NRGBA{128, 255, 255, 255}},
		Stop{Pos: 1, Color: color.NRGBA{255, 255, 255, 255}},
	)
}

// Preset returns a named gradient: "grayscale" or "terrain".
func Preset(name string) (*Gradient, error) {
	switch name {
	case "grayscale", "":
		return Grayscale(), nil
	case "terrain":
		return Terrain(), nil
	}
	return nil, fmt.Errorf("unknown gradient preset %q", name)
}
