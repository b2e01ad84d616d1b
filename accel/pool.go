package accel

import "sync"

type size struct{ w, h int }

// BufferPool recycles rasters between render calls. It is safe for
// concurrent use. The zero value is not usable; call NewBufferPool.
type BufferPool struct {
	mu      sync.Mutex // protects free
	free    map[size][]*Buffer
	perSize int
}

// NewBufferPool returns a pool keeping at most perSize idle buffers of each
// size. perSize <= 0 means 4.
func NewBufferPool(perSize int) *BufferPool {
	if perSize <= 0 {
		perSize = 4
	}
	return &BufferPool{free: make(map[size][]*Buffer), perSize: perSize}
}

// Get returns a width x height buffer. Its contents are unspecified.
func (p *BufferPool) Get(width, height int) *Buffer {
	k := size{width, height}
	p.mu.Lock()
	defer p.mu.Unlock()
	if list := p.free[k]; len(list) > 0 {
		b := list[len(list)-1]
		p.free[k] = list[:len(list)-1]
		return b
	}
	return &Buffer{Width: width, Height: height, Data: make([]float32, width*height)}
}

// Put returns b to the pool. Buffers beyond the per-size limit are dropped.
func (p *BufferPool) Put(b *Buffer) {
	if b == nil || len(b.Data) != b.Width*b.Height {
		return
	}
	k := size{b.Width, b.Height}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free[k]) < p.perSize {
		p.free[k] = append(p.free[k], b)
	}
}

// Idle returns the number of buffers waiting in the pool.
func (p *BufferPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, list := range p.free {
		n += len(list)
	}
	return n
}
