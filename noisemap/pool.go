package noisemap

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum sample count to use the worker pool.
// Below this, a single goroutine is faster.
const parallelThreshold = 4096

// rowFunc fills one uncropped row.
type rowFunc func(row int)

// rowChunk is a range of uncropped rows for a worker to fill.
type rowChunk struct {
	ctx        context.Context
	start, end int
	fill       rowFunc
}

// pool is a set of persistent worker goroutines filling rows of a map.
type pool struct {
	numWorkers int

	workChan chan rowChunk  // sends work to workers
	doneChan chan error     // workers report each finished chunk
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &pool{numWorkers: workers}
}

// start launches the worker goroutines.
func (p *pool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan error, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.doneChan <- fillRows(chunk.ctx, chunk.start, chunk.end, chunk.fill)
		}
	}
}

// run fills rows [0,rows) across the workers and returns the first failure.
// After a failure the remaining chunks stop at their next row boundary.
func (p *pool) run(ctx context.Context, rows int, fill rowFunc) error {
	p.start()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunkSize := (rows + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, rows)
		if start >= end {
			continue
		}
		p.workChan <- rowChunk{ctx: ctx, start: start, end: end, fill: fill}
		dispatched++
	}

	var first error
	for i := 0; i < dispatched; i++ {
		if err := <-p.doneChan; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

// fillRows fills rows [start,end), checking ctx before each row. A panic
// while filling is returned as an error.
func fillRows(ctx context.Context, start, end int, fill rowFunc) (err error) {
	row := start
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("row %d: %w", row, e)
				return
			}
			err = fmt.Errorf("row %d: panic: %v", row, r)
		}
	}()
	for ; row < end; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fill(row)
	}
	return nil
}
