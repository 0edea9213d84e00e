package jsonptr

import "strings"

// Builder provides incremental pointer construction for tree walks.
// The encoded string is only materialized when Pointer() is called.
type Builder struct {
	segments []string
	length   int
}

// Push adds an unescaped token.
func (b *Builder) Push(token string) {
	seg := Escape(token)
	b.segments = append(b.segments, seg)
	b.length += len(seg) + 1
}

// PushIndex adds an array index token.
func (b *Builder) PushIndex(i int) {
	seg := string(Root.AppendIndex(i)[1:])
	b.segments = append(b.segments, seg)
	b.length += len(seg) + 1
}

// Pop removes the last token.
func (b *Builder) Pop() {
	if len(b.segments) == 0 {
		return
	}
	last := b.segments[len(b.segments)-1]
	b.segments = b.segments[:len(b.segments)-1]
	b.length -= len(last) + 1
}

// Depth returns the number of tokens.
func (b *Builder) Depth() int {
	return len(b.segments)
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.segments = b.segments[:0]
	b.length = 0
}

// Pointer materializes the current pointer.
func (b *Builder) Pointer() Pointer {
	if len(b.segments) == 0 {
		return Root
	}
	var sb strings.Builder
	sb.Grow(b.length)
	for _, seg := range b.segments {
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	return Pointer(sb.String())
}
