// Package noisemap samples a module graph onto a 2D grid under a planar,
// cylindrical or spherical projection.
//
// A Map holds two buffers: the cropped grid of the requested size and an
// uncropped grid with a one-sample halo on every side. The halo lets normal
// extraction take central differences at the grid edges.
package noisemap

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/xnoise/module"
)

// border is the width of the halo around the cropped grid.
const border = 1

var (
	// ErrBounds is returned when a clip region is empty or inverted.
	ErrBounds = errors.New("invalid clip region")
	// ErrNoSource is returned when generating a map without a source module.
	ErrNoSource = errors.New("noise map has no source")
	// ErrOutOfRange is returned for grid coordinates outside the map.
	ErrOutOfRange = errors.New("coordinate out of range")
	// ErrDisposed is returned by every operation on a disposed map.
	ErrDisposed = errors.New("noise map disposed")
	// ErrSize is returned when creating a map with a non-positive dimension.
	ErrSize = errors.New("invalid map size")
)

// Map is a 2D grid of single-precision samples.
//
// A Map is not safe for concurrent use. Generation itself fans out over
// Workers goroutines, but the Map must not be read or regenerated while a
// pass is running.
type Map struct {
	width, height int
	data          []float32 // width*height, row-major
	halo          []float32 // (width+2)*(height+2), row-major

	// Source is sampled by the Generate methods.
	Source module.Source
	// Border replaces the edge pixels of rendered images unless it is NaN.
	Border float32
	// Workers bounds the goroutines used per pass. Zero means GOMAXPROCS.
	Workers int

	pool     *pool
	disposed bool
}

// New allocates a width x height map sampling src. src may be nil and set
// later through the Source field.
func New(width, height int, src module.Source) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	return &Map{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
		halo:   make([]float32, (width+2*border)*(height+2*border)),
		Source: src,
		Border: float32(math.NaN()),
	}, nil
}

// Width returns the cropped width.
func (m *Map) Width() int { return m.width }

// Height returns the cropped height.
func (m *Map) Height() int { return m.height }

// Disposed reports whether Dispose has been called.
func (m *Map) Disposed() bool { return m.disposed }

// At returns the cropped sample at (x,y).
func (m *Map) At(x, y int) (float32, error) {
	if m.disposed {
		return 0, ErrDisposed
	}
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, m.width, m.height)
	}
	return m.data[y*m.width+x], nil
}

// HaloAt returns the uncropped sample at (x,y), where x ranges over
// [-1,Width] and y over [-1,Height]. In-grid coordinates address the same
// sample as At.
func (m *Map) HaloAt(x, y int) (float32, error) {
	if m.disposed {
		return 0, ErrDisposed
	}
	if x < -border || y < -border || x >= m.width+border || y >= m.height+border {
		return 0, fmt.Errorf("%w: halo (%d,%d) in %dx%d", ErrOutOfRange, x, y, m.width, m.height)
	}
	return m.halo[m.haloIndex(x, y)], nil
}

// Set writes v at (x,y) into both buffers.
func (m *Map) Set(x, y int, v float32) error {
	if m.disposed {
		return ErrDisposed
	}
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, m.width, m.height)
	}
	m.data[y*m.width+x] = v
	m.halo[m.haloIndex(x, y)] = v
	return nil
}

func (m *Map) haloIndex(x, y int) int {
	return (y+border)*(m.width+2*border) + x + border
}

// Clear sets every sample of both buffers to v.
func (m *Map) Clear(v float32) error {
	if m.disposed {
		return ErrDisposed
	}
	fill(m.data, v)
	fill(m.halo, v)
	return nil
}

func fill(s []float32, v float32) {
	for i := range s {
		s[i] = v
	}
}

// Data returns a row-major copy of the grid. With cropped false the copy
// includes the halo. xCrop and yCrop drop that many columns and rows from the
// right and bottom.
func (m *Map) Data(cropped bool, xCrop, yCrop int) ([]float32, int, int, error) {
	return m.copyData(cropped, xCrop, yCrop, false)
}

// NormalizedData is like Data but maps every sample from [-1,1] to [0,1].
func (m *Map) NormalizedData(cropped bool, xCrop, yCrop int) ([]float32, int, int, error) {
	return m.copyData(cropped, xCrop, yCrop, true)
}

func (m *Map) copyData(cropped bool, xCrop, yCrop int, normalize bool) ([]float32, int, int, error) {
	if m.disposed {
		return nil, 0, 0, ErrDisposed
	}
	src, sw, sh := m.data, m.width, m.height
	if !cropped {
		src, sw, sh = m.halo, m.width+2*border, m.height+2*border
	}
	if xCrop < 0 || yCrop < 0 || xCrop >= sw || yCrop >= sh {
		return nil, 0, 0, fmt.Errorf("%w: crop %d,%d of %dx%d", ErrOutOfRange, xCrop, yCrop, sw, sh)
	}
	w, h := sw-xCrop, sh-yCrop
	out := make([]float32, 0, w*h)
	for y := 0; y < h; y++ {
		row := src[y*sw : y*sw+w]
		if !normalize {
			out = append(out, row...)
			continue
		}
		for _, v := range row {
			out = append(out, (v+1)/2)
		}
	}
	return out, w, h, nil
}

// Dispose releases both buffers, stops the worker pool and zeroes the
// dimensions. Every later call fails with ErrDisposed.
func (m *Map) Dispose() {
	if m.pool != nil {
		m.pool.stop()
		m.pool = nil
	}
	m.data = nil
	m.halo = nil
	m.width = 0
	m.height = 0
	m.Source = nil
	m.disposed = true
}
