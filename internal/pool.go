package internal

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of blocking filter invocations running at once so
// slow filters cannot exhaust the process while connections keep being served.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPool creates a pool with size slots. A size <= 0 uses 4×GOMAXPROCS.
func NewPool(size int) *Pool {
	n := int64(size)
	if n <= 0 {
		n = int64(4 * runtime.GOMAXPROCS(0))
	}
	return &Pool{sem: semaphore.NewWeighted(n), size: n}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return int(p.size)
}

// Go waits for a free slot and runs fn on its own goroutine. It returns the
// context error if no slot frees up before ctx is done. fn must not panic.
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}
