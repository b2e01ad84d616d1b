// Package accel defines the boundary to accelerated raster backends.
//
// A backend receives a Request (graph, projection, clip region, size and a
// Transform) and fills a Buffer with the same scalar field the CPU path
// produces, up to floating-point tolerance. CPU is the reference backend.
// Backends borrow scratch rasters from a BufferPool owned by the caller.
package accel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
)

var (
	// ErrNoGraph is returned for a request without a graph.
	ErrNoGraph = errors.New("request has no graph")
	// ErrBufferSize is returned when the destination buffer does not match the request.
	ErrBufferSize = errors.New("buffer size does not match request")
)

// Backend renders requests into buffers.
type Backend interface {
	Name() string
	Render(ctx context.Context, req *Request, dst *Buffer) error
}

// Request is one generation call.
type Request struct {
	Graph      *module.Graph
	Root       module.ID
	Projection noisemap.Projection
	Bounds     noisemap.Bounds
	Width      int
	Height     int
	Seamless   bool
	Transform  Transform
}

// Validate checks the request and the subgraph under Root.
func (r *Request) Validate() error {
	if r.Graph == nil {
		return ErrNoGraph
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", noisemap.ErrSize, r.Width, r.Height)
	}
	if err := r.Bounds.Validate(); err != nil {
		return err
	}
	if d := r.Transform.Displacement; d != nil && len(d.Data) != 3*d.Width*d.Height {
		return fmt.Errorf("displacement field: %d values for %dx%d", len(d.Data), d.Width, d.Height)
	}
	return r.Graph.Validate(r.Root)
}

// Buffer is a row-major raster of cropped samples.
type Buffer struct {
	Width, Height int
	Data          []float32
}

// MaxAbsDiff returns the largest per-sample difference between a and b, or
// +Inf when their sizes differ.
func MaxAbsDiff(a, b *Buffer) float64 {
	if a.Width != b.Width || a.Height != b.Height || len(a.Data) != len(b.Data) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range a.Data {
		worst = math.Max(worst, math.Abs(float64(a.Data[i])-float64(b.Data[i])))
	}
	return worst
}

// Field is a three-channel displacement raster addressed by position
// normalised to the clip region, (0,0) at the region's minimum corner.
type Field struct {
	Width, Height int
	Data          []float32 // x,y,z triples, row-major
}

// At returns the displacement nearest to (s,t), clamping to the edges.
func (f *Field) At(s, t float64) (dx, dy, dz float64) {
	if f.Width == 0 || f.Height == 0 {
		return 0, 0, 0
	}
	x := clampIndex(int(s*float64(f.Width)), f.Width)
	y := clampIndex(int(t*float64(f.Height)), f.Height)
	i := 3 * (y*f.Width + x)
	return float64(f.Data[i]), float64(f.Data[i+1]), float64(f.Data[i+2])
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
