package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandleCompile tests the compile command reports.
func TestHandleCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.json", `{"$defs": {"name": {"type": "string"}}}`)
	schema := writeFile(t, dir, "root.json", `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"properties": {"name": {"$ref": "defs.json#/$defs/name"}}
	}`)

	t.Run("text", func(t *testing.T) {
		var out, errOut bytes.Buffer
		require.NoError(t, HandleCompile([]string{"-no-color", schema}, &out, &errOut))
		text := out.String()
		assert.Contains(t, text, "Dialect: https://json-schema.org/draft/2019-09/schema")
		assert.Contains(t, text, "Resources (2):")
		assert.Contains(t, text, "defs.json")
		assert.Contains(t, text, "✓ Schema compiled")
	})

	t.Run("json", func(t *testing.T) {
		var out, errOut bytes.Buffer
		require.NoError(t, HandleCompile([]string{"-o", "json", schema}, &out, &errOut))
		var report compileReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, schema, report.Schema)
		assert.Len(t, report.Resources, 2)
	})

	t.Run("verbose logs", func(t *testing.T) {
		var out, errOut bytes.Buffer
		require.NoError(t, HandleCompile([]string{"-q", "-v", schema}, &out, &errOut))
		assert.Empty(t, out.String())
		assert.Empty(t, errOut.String())

		require.NoError(t, HandleCompile([]string{"-v", schema}, &out, &errOut))
		assert.Contains(t, errOut.String(), "resolved reference")
	})

	t.Run("errors", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Error(t, HandleCompile(nil, &out, &errOut))
		assert.Error(t, HandleCompile([]string{dir + "/missing.json"}, &out, &errOut))
		bad := writeFile(t, dir, "bad.json", `{"$ref": "#/nowhere"}`)
		assert.Error(t, HandleCompile([]string{bad}, &out, &errOut))
	})
}
