package noisemap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noise"
)

// Generate fills both buffers with Source sampled over b under projection p.
// Seamless is only meaningful for Planar and is ignored otherwise.
//
// Grid column 0 lies on b.XMin and column Width-1 on b.XMax; rows follow the
// same rule for Y. The halo extends one step past each edge, except in
// seamless mode where it wraps around to the opposite side of the tile.
//
// The context is checked between rows. On any failure, including
// cancellation and a panicking source, both buffers are filled with NaN and
// the error is returned.
func (m *Map) Generate(ctx context.Context, p Projection, b Bounds, seamless bool) error {
	if m.disposed {
		return ErrDisposed
	}
	if m.Source == nil {
		return ErrNoSource
	}
	if int(p) >= len(projectionNames) {
		return fmt.Errorf("generate: unknown projection %d", p)
	}
	if err := b.Validate(); err != nil {
		return err
	}

	ps := &pass{
		m:        m,
		src:      m.Source,
		proj:     p,
		bounds:   b,
		seamless: seamless && p == Planar,
	}
	start := time.Now()
	rows := m.height + 2*border

	var err error
	if m.Workers == 1 || len(m.halo) < parallelThreshold {
		err = fillRows(ctx, 0, rows, ps.fillRow)
	} else {
		err = m.workerPool().run(ctx, rows, ps.fillRow)
	}
	if err != nil {
		nan := float32(math.NaN())
		fill(m.data, nan)
		fill(m.halo, nan)
		return fmt.Errorf("generate %s: %w", p, err)
	}

	slog.Debug("noise_map_generated",
		"projection", p.String(),
		"width", m.width,
		"height", m.height,
		"seamless", ps.seamless,
		"elapsed_us", time.Since(start).Microseconds(),
	)
	return nil
}

// GeneratePlanar samples the plane over [left,right] x [top,bottom].
func (m *Map) GeneratePlanar(ctx context.Context, left, right, top, bottom float64, seamless bool) error {
	return m.Generate(ctx, Planar, PlanarBounds(left, right, top, bottom), seamless)
}

// GenerateCylindrical samples the unit cylinder over the given angles (degrees) and heights.
func (m *Map) GenerateCylindrical(ctx context.Context, angleMin, angleMax, heightMin, heightMax float64) error {
	return m.Generate(ctx, Cylindrical, CylindricalBounds(angleMin, angleMax, heightMin, heightMax), false)
}

// GenerateSpherical samples the unit sphere over the given latitudes and longitudes (degrees).
func (m *Map) GenerateSpherical(ctx context.Context, south, north, west, east float64) error {
	return m.Generate(ctx, Spherical, SphericalBounds(south, north, west, east), false)
}

func (m *Map) workerPool() *pool {
	if m.pool != nil && m.Workers > 0 && m.pool.numWorkers != m.Workers {
		m.pool.stop()
		m.pool = nil
	}
	if m.pool == nil {
		m.pool = newPool(m.Workers)
	}
	return m.pool
}

// pass holds the read-only state of one generation call.
type pass struct {
	m        *Map
	src      module.Source
	proj     Projection
	bounds   Bounds
	seamless bool
}

// fillRow fills uncropped row r and, for interior rows, the cropped row.
func (ps *pass) fillRow(r int) {
	m := ps.m
	hw := m.width + 2*border
	y := r - border
	v := ps.position(y, m.height, ps.bounds.YMin, ps.bounds.YMax)

	row := m.halo[r*hw : (r+1)*hw]
	for i := range row {
		u := ps.position(i-border, m.width, ps.bounds.XMin, ps.bounds.XMax)
		row[i] = float32(ps.sample(u, v))
	}
	if y >= 0 && y < m.height {
		copy(m.data[y*m.width:(y+1)*m.width], row[border:border+m.width])
	}
}

// position maps grid index i of an n-sample axis onto [lo,hi].
func (ps *pass) position(i, n int, lo, hi float64) float64 {
	if ps.seamless && n > 1 {
		switch {
		case i < 0:
			i = n - 2
		case i >= n:
			i = 1
		}
	}
	if i == n-1 && n > 1 {
		return hi
	}
	step := (hi - lo) / float64(max(n-1, 1))
	return lo + float64(i)*step
}

func (ps *pass) sample(u, v float64) float64 {
	if !ps.seamless {
		return ps.value(u, v)
	}
	b := ps.bounds
	xe := b.XMax - b.XMin
	ye := b.YMax - b.YMin
	sw := ps.value(u, v)
	se := ps.value(u+xe, v)
	nw := ps.value(u, v+ye)
	ne := ps.value(u+xe, v+ye)
	xb := noise.SCurve3(1 - (u-b.XMin)/xe)
	yb := noise.SCurve3(1 - (v-b.YMin)/ye)
	z0 := noise.InterpolateLinear(sw, se, xb)
	z1 := noise.InterpolateLinear(nw, ne, xb)
	return noise.InterpolateLinear(z0, z1, yb)
}

func (ps *pass) value(u, v float64) float64 {
	x, y, z := Point(ps.proj, u, v)
	return ps.src.Value(x, y, z)
}
