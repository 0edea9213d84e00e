package jsonptr

import "sync"

const (
	defaultBuilderCap = 8  // Most schema walks are <8 tokens deep
	maxBuilderCap     = 64 // Don't pool excessively deep builders
)

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{
			segments: make([]string, 0, defaultBuilderCap),
		}
	},
}

// Get retrieves a Builder from the pool, reset and ready to use.
func Get() *Builder {
	b := builderPool.Get().(*Builder)
	b.Reset()
	return b
}

// Put returns a Builder to the pool if not oversized.
func Put(b *Builder) {
	if b == nil || cap(b.segments) > maxBuilderCap {
		return // Let GC collect oversized builders
	}
	builderPool.Put(b)
}
