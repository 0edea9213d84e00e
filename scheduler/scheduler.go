// Package scheduler provides the fan-out strategies used during validation.
//
// Validators fan out over array items, object properties and applicator
// branches. Each fan-out point hands its tasks to a [Scheduler], which may run
// them concurrently. Tasks write into their own result slot, so a scheduler
// only needs to guarantee that Run returns after every task has returned.
package scheduler

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Scheduler runs units of work, possibly concurrently.
type Scheduler interface {
	// Run calls fn for every index in [0, n) and returns once all calls have
	// returned. Tasks not yet started when ctx is cancelled are skipped.
	Run(ctx context.Context, n int, fn func(i int))
}

// Inline runs tasks sequentially on the calling goroutine.
type Inline struct{}

// Run implements Scheduler.
func (Inline) Run(ctx context.Context, n int, fn func(i int)) {
	for i := range n {
		if ctx.Err() != nil {
			return
		}
		fn(i)
	}
}

// Pool runs tasks on a bounded number of goroutines shared by every Run call.
// When all slots are busy a task runs on the calling goroutine instead of
// waiting, so nested fan-out cannot deadlock.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool returns a pool with size concurrent slots.
// A non-positive size uses GOMAXPROCS.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the number of concurrent slots.
func (p *Pool) Size() int {
	return p.size
}

// Run implements Scheduler.
func (p *Pool) Run(ctx context.Context, n int, fn func(i int)) {
	if n == 1 {
		if ctx.Err() == nil {
			fn(0)
		}
		return
	}
	var g errgroup.Group
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		if p.sem.TryAcquire(1) {
			g.Go(func() error {
				defer p.sem.Release(1)
				fn(i)
				return nil
			})
			continue
		}
		fn(i)
	}
	_ = g.Wait()
}

// Unbounded runs every task on its own goroutine.
type Unbounded struct{}

// Run implements Scheduler.
func (Unbounded) Run(ctx context.Context, n int, fn func(i int)) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

var defaultPool = sync.OnceValue(func() *Pool { return NewPool(0) })

// Default returns the process-wide pool sized to GOMAXPROCS.
func Default() Scheduler {
	return defaultPool()
}
