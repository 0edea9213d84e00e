package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun tests command dispatch and exit codes.
func TestRun(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "s.json")
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type": "array", "maxItems": 1}`), 0o600))
	require.NoError(t, os.WriteFile(good, []byte(`[1]`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`[1, 2]`), 0o600))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"no args", nil, 1, "", "Usage:"},
		{"version", []string{"version"}, 0, "jsonschema v", ""},
		{"help", []string{"help"}, 0, "Commands:", ""},
		{"unknown", []string{"frobnicate"}, 1, "", "Unknown command: frobnicate"},
		{"valid", []string{"validate", "-q", schema, good}, 0, "", ""},
		{"invalid", []string{"validate", "-q", schema, bad}, 1, "", ""},
		{"compile", []string{"compile", "-q", schema}, 0, "", ""},
		{"compile error", []string{"compile", filepath.Join(dir, "none.json")}, 1, "", "Error: compiling schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(tt.args, &out, &errOut)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, out.String(), tt.wantOut)
			assert.Contains(t, errOut.String(), tt.wantErr)
		})
	}
}
