package mcpserver

import (
	"errors"
	"math"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []int
	}{
		{"default limit returns all", 0, 0, []int{0, 1, 2, 3, 4}},
		{"explicit limit", 0, 2, []int{0, 1}},
		{"offset only", 2, 0, []int{2, 3, 4}},
		{"offset and limit", 1, 2, []int{1, 2}},
		{"offset at end", 4, 2, []int{4}},
		{"offset beyond end", 5, 2, nil},
		{"negative offset", -1, 2, nil},
		{"overflowing limit", 1, math.MaxInt, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(items, tt.offset, tt.limit))
		})
	}
}

func TestPaginate_MaxLimitCap(t *testing.T) {
	saved := cfg.MaxLimit
	t.Cleanup(func() { cfg.MaxLimit = saved })
	cfg.MaxLimit = 3

	assert.Len(t, paginate(make([]int, 10), 0, 100), 3)
}

func TestSanitizeError(t *testing.T) {
	assert.Empty(t, sanitizeError(nil))
	assert.Equal(t, "load error: <path>: no such file",
		sanitizeError(errors.New("load error: /home/user/schemas/a.json: no such file")))
	assert.Equal(t, "compile error at https://example.com/s#/type",
		sanitizeError(errors.New("compile error at https://example.com/s#/type")))
}

func TestErrResult(t *testing.T) {
	res := errResult(errors.New("failed at /tmp/x.json"))
	require.True(t, res.IsError)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "failed at <path>", text.Text)
}
