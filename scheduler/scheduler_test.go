package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func schedulers() map[string]Scheduler {
	return map[string]Scheduler{
		"inline":    Inline{},
		"pool":      NewPool(2),
		"unbounded": Unbounded{},
		"default":   Default(),
	}
}

// TestRunCallsEveryIndex verifies each task runs exactly once.
func TestRunCallsEveryIndex(t *testing.T) {
	for name, s := range schedulers() {
		t.Run(name, func(t *testing.T) {
			const n = 50
			var calls [n]atomic.Int32
			s.Run(context.Background(), n, func(i int) {
				calls[i].Add(1)
			})
			for i := range calls {
				assert.Equal(t, int32(1), calls[i].Load(), "index %d", i)
			}
		})
	}
}

// TestNestedRunDoesNotDeadlock verifies fan-out inside fan-out completes even
// when the pool is saturated.
func TestNestedRunDoesNotDeadlock(t *testing.T) {
	p := NewPool(1)
	var total atomic.Int32
	p.Run(context.Background(), 4, func(int) {
		p.Run(context.Background(), 4, func(int) {
			p.Run(context.Background(), 4, func(int) {
				total.Add(1)
			})
		})
	})
	assert.Equal(t, int32(64), total.Load())
}

// TestRunSkipsWhenCancelled verifies no task starts on a cancelled context.
func TestRunSkipsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range schedulers() {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			s.Run(ctx, 10, func(int) { calls.Add(1) })
			assert.Zero(t, calls.Load())
		})
	}
}

func TestNewPoolSize(t *testing.T) {
	assert.Equal(t, 3, NewPool(3).Size())
	assert.Positive(t, NewPool(0).Size())
}
