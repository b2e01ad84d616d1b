package accel

import (
	"context"
	"fmt"

	"github.com/pthm-cable/xnoise/module"
	"github.com/pthm-cable/xnoise/noisemap"
)

// CPU renders requests with the module graph itself. It defines the
// reference output other backends are compared against.
type CPU struct {
	// Workers is passed on to noisemap.Map.Workers.
	Workers int
}

// Name implements Backend.
func (*CPU) Name() string { return "cpu" }

// Render implements Backend.
func (c *CPU) Render(ctx context.Context, req *Request, dst *Buffer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if dst.Width != req.Width || dst.Height != req.Height || len(dst.Data) != req.Width*req.Height {
		return fmt.Errorf("%w: %dx%d for %dx%d", ErrBufferSize, dst.Width, dst.Height, req.Width, req.Height)
	}
	root, err := req.Graph.Module(req.Root)
	if err != nil {
		return err
	}

	var src module.Source = root
	if !req.Transform.IsIdentity() {
		src = &transformed{src: root, t: req.Transform, proj: req.Projection, bounds: req.Bounds}
	}
	m, err := noisemap.New(req.Width, req.Height, src)
	if err != nil {
		return err
	}
	defer m.Dispose()
	m.Workers = c.Workers

	if err := m.Generate(ctx, req.Projection, req.Bounds, req.Seamless); err != nil {
		return err
	}
	data, _, _, err := m.Data(true, 0, 0)
	if err != nil {
		return err
	}
	copy(dst.Data, data)
	return nil
}

// RenderPooled renders req with b into a buffer borrowed from pool. The
// caller returns the buffer with pool.Put when done with it.
func RenderPooled(ctx context.Context, b Backend, pool *BufferPool, req *Request) (*Buffer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	buf := pool.Get(req.Width, req.Height)
	if err := b.Render(ctx, req, buf); err != nil {
		pool.Put(buf)
		return nil, fmt.Errorf("%s backend: %w", b.Name(), err)
	}
	return buf, nil
}
