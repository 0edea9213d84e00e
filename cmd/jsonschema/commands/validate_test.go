package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/internal/cliutil"
)

// TestSetupValidateFlags tests defaults and parsing of the validate flags.
func TestSetupValidateFlags(t *testing.T) {
	fs, flags := SetupValidateFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", flags.Dialect)
		assert.False(t, flags.FormatAssert)
		assert.False(t, flags.ContentAssert)
		assert.False(t, flags.Quiet)
		assert.Equal(t, cliutil.FormatText, flags.Output)
		assert.Equal(t, -1, flags.Parallel)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"-format-assert", "-q", "-o", "json", "-parallel", "0", "s.json", "i.json"}
		require.NoError(t, fs.Parse(args))

		assert.True(t, flags.FormatAssert)
		assert.True(t, flags.Quiet)
		assert.Equal(t, "json", flags.Output)
		assert.Equal(t, 0, flags.Parallel)
		assert.Equal(t, []string{"s.json", "i.json"}, fs.Args())
	})
}

// TestHandleValidate_Arguments tests usage errors.
func TestHandleValidate_Arguments(t *testing.T) {
	var out, errOut bytes.Buffer

	assert.Error(t, HandleValidate(nil, &out, &errOut))
	assert.Error(t, HandleValidate([]string{"schema.json"}, &out, &errOut))
	assert.NoError(t, HandleValidate([]string{"-h"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Usage: jsonschema validate")
	assert.Error(t, HandleValidate([]string{"-o", "xml", "a", "b"}, &out, &errOut))
}

// TestHandleValidate tests verdicts and text output.
func TestHandleValidate(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "person.json", personSchema)
	good := writeFile(t, dir, "good.json", `{"name": "Ada", "age": 36}`)
	bad := writeFile(t, dir, "bad.yaml", "name: \"\"\nage: -1\n")

	t.Run("valid", func(t *testing.T) {
		var out, errOut bytes.Buffer
		require.NoError(t, HandleValidate([]string{"-no-color", schema, good}, &out, &errOut))
		assert.Contains(t, out.String(), "✓ "+good)
	})

	t.Run("invalid", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := HandleValidate([]string{"-no-color", schema, good, bad}, &out, &errOut)
		require.ErrorIs(t, err, ErrValidationFailed)
		text := out.String()
		assert.Contains(t, text, "✗ "+bad+": 2 error(s)")
		assert.Contains(t, text, "Min Length (1)")
		assert.Contains(t, text, "/age: Value -1 must be greater than or equal to 0")
	})

	t.Run("quiet", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := HandleValidate([]string{"-q", schema, bad}, &out, &errOut)
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, out.String())
	})

	t.Run("format assertion", func(t *testing.T) {
		inst := writeFile(t, dir, "email.json", `{"name": "x", "email": "nope"}`)
		var out, errOut bytes.Buffer
		require.NoError(t, HandleValidate([]string{"-q", schema, inst}, &out, &errOut))
		require.ErrorIs(t, HandleValidate([]string{"-q", "-format-assert", schema, inst}, &out, &errOut), ErrValidationFailed)
	})

	t.Run("stdin", func(t *testing.T) {
		stdinReader = strings.NewReader(`{"age": 1}`)
		t.Cleanup(func() { stdinReader = strings.NewReader("") })
		var out, errOut bytes.Buffer
		err := HandleValidate([]string{"-no-color", "-parallel", "0", schema, StdinPath}, &out, &errOut)
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, out.String(), "<stdin>")
		assert.Contains(t, out.String(), "(root): Required property \"name\" is missing")
	})

	t.Run("missing instance", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := HandleValidate([]string{schema, dir + "/nope.json"}, &out, &errOut)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrValidationFailed)
	})
}

// TestHandleValidate_Structured tests json and yaml reports.
func TestHandleValidate_Structured(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "person.json", personSchema)
	good := writeFile(t, dir, "good.json", `{"name": "Ada"}`)
	bad := writeFile(t, dir, "bad.json", `{"name": 7}`)

	var out, errOut bytes.Buffer
	err := HandleValidate([]string{"-o", "json", schema, good, bad}, &out, &errOut)
	require.ErrorIs(t, err, ErrValidationFailed)

	var reports []instanceReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Valid)
	assert.False(t, reports[1].Valid)
	require.Len(t, reports[1].Errors, 1)
	assert.Equal(t, "TYPE", reports[1].Errors[0].Kind)
	assert.Equal(t, "/name", reports[1].Errors[0].InstanceLocation)

	out.Reset()
	require.NoError(t, HandleValidate([]string{"-o", "yaml", schema, good}, &out, &errOut))
	var ys []instanceReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &ys))
	require.Len(t, ys, 1)
	assert.Equal(t, good, ys[0].Instance)
}

// TestHandleValidate_CompileError tests that a bad schema is an error, not a
// failed validation.
func TestHandleValidate_CompileError(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "bad.json", `{"minLength": "three"}`)
	inst := writeFile(t, dir, "i.json", `"x"`)

	var out, errOut bytes.Buffer
	err := HandleValidate([]string{schema, inst}, &out, &errOut)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "compiling schema")
	assert.Contains(t, err.Error(), "minLength")
}
