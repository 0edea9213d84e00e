package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/scheduler"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// TestDialectResolution tests how $schema selects the keyword set.
func TestDialectResolution(t *testing.T) {
	t.Run("no dialect", func(t *testing.T) {
		_, err := Compile(decode(t, `{"type": "string"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, schemaerrors.ErrNoDialect))
	})

	t.Run("boolean schema needs no dialect", func(t *testing.T) {
		s, err := Compile(false)
		require.NoError(t, err)
		assert.False(t, s.Apply("x").IsOK())
	})

	t.Run("unknown default dialect", func(t *testing.T) {
		_, err := Compile(decode(t, `{}`), WithDefaultDialect("https://example.com/nope"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, schemaerrors.ErrConfig))
		assert.True(t, errors.Is(err, schemaerrors.ErrDialectNotFound))
	})

	t.Run("explicit $schema wins over default", func(t *testing.T) {
		s := mustCompile(t, `{"$schema": "https://json-schema.org/draft/2019-09/schema#", "items": [{"type": "string"}]}`)
		assert.Equal(t, dialect.Draft201909, s.Dialect())
		assert.False(t, s.Apply(decode(t, `[1]`)).IsOK())
	})

	t.Run("meta-schema limits vocabularies", func(t *testing.T) {
		meta := decode(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/meta",
			"$vocabulary": {
				"https://json-schema.org/draft/2020-12/vocab/core": true,
				"https://json-schema.org/draft/2020-12/vocab/applicator": true
			}
		}`)
		ml := loader.NewMapLoader(map[string]any{"https://example.com/meta": meta})
		s := mustCompile(t, `{"$schema": "https://example.com/meta", "type": "string", "properties": {"a": false}}`,
			WithLoader(ml), WithDefaultLoaders(false))
		assert.Equal(t, "https://example.com/meta", s.Dialect())
		runInstances(t, s, []instanceCase{
			{"type is not asserted", `1`, true},
			{"applicator still works", `{"a": 1}`, false},
		})
	})

	t.Run("meta-schema requires unknown vocabulary", func(t *testing.T) {
		meta := decode(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$vocabulary": {
				"https://json-schema.org/draft/2020-12/vocab/core": true,
				"https://example.com/vocab/custom": true
			}
		}`)
		ml := loader.NewMapLoader(map[string]any{"https://example.com/meta": meta})
		err := compileErr(t, `{"$schema": "https://example.com/meta"}`, WithLoader(ml), WithDefaultLoaders(false))
		assert.True(t, errors.Is(err, schemaerrors.ErrUnknownVocabulary))
	})

	t.Run("optional unknown vocabulary is skipped", func(t *testing.T) {
		meta := decode(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$vocabulary": {
				"https://json-schema.org/draft/2020-12/vocab/core": true,
				"https://json-schema.org/draft/2020-12/vocab/validation": true,
				"https://example.com/vocab/custom": false
			}
		}`)
		ml := loader.NewMapLoader(map[string]any{"https://example.com/meta": meta})
		s := mustCompile(t, `{"$schema": "https://example.com/meta", "type": "string"}`, WithLoader(ml), WithDefaultLoaders(false))
		assert.False(t, s.Apply(decode(t, `1`)).IsOK())
	})

	t.Run("meta-schema on an unknown dialect", func(t *testing.T) {
		ml := loader.NewMapLoader(map[string]any{
			"https://example.com/meta": decode(t, `{"$schema": "https://example.com/other"}`),
		})
		err := compileErr(t, `{"$schema": "https://example.com/meta"}`, WithLoader(ml), WithDefaultLoaders(false))
		assert.True(t, errors.Is(err, schemaerrors.ErrDialectNotFound))
	})

	t.Run("custom dialect", func(t *testing.T) {
		s := mustCompile(t, `{"$schema": "https://example.com/validation-only", "type": "object", "properties": {"a": false}}`,
			WithDialect("https://example.com/validation-only", map[string]bool{
				dialect.Vocab202012Core:       true,
				dialect.Vocab202012Validation: true,
			}))
		runInstances(t, s, []instanceCase{
			{"properties ignored", `{"a": 1}`, true},
			{"type asserted", `1`, false},
		})
	})

	t.Run("custom dialect with unknown required vocabulary", func(t *testing.T) {
		_, err := Compile(decode(t, `{}`), WithDialect("https://example.com/d", map[string]bool{"https://example.com/v": true}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, schemaerrors.ErrConfig))
		assert.True(t, errors.Is(err, schemaerrors.ErrUnknownVocabulary))
	})

	t.Run("embedded resource with its own dialect", func(t *testing.T) {
		s := mustCompile(t, `{
			"$id": "https://example.com/root",
			"properties": {
				"old": {
					"$id": "https://example.com/old",
					"$schema": "https://json-schema.org/draft/2019-09/schema",
					"items": [{"type": "string"}]
				}
			}
		}`)
		runInstances(t, s, []instanceCase{
			{"tuple", `{"old": ["a"]}`, true},
			{"bad tuple", `{"old": [1]}`, false},
		})
	})
}

// TestFormat tests format annotation and assertion.
func TestFormat(t *testing.T) {
	schema := `{"format": "email"}`

	t.Run("annotation by default", func(t *testing.T) {
		s := mustCompile(t, schema)
		assert.True(t, s.Apply("not an email").IsOK())
	})

	t.Run("assertion on request", func(t *testing.T) {
		s := mustCompile(t, schema, WithFormatAssertion(true))
		runInstances(t, s, []instanceCase{
			{"email", `"joe@example.com"`, true},
			{"not email", `"joe"`, false},
			{"not a string", `1`, true},
		})
	})

	t.Run("assertion vocabulary", func(t *testing.T) {
		meta := decode(t, `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$vocabulary": {
				"https://json-schema.org/draft/2020-12/vocab/core": true,
				"https://json-schema.org/draft/2020-12/vocab/format-assertion": true
			}
		}`)
		ml := loader.NewMapLoader(map[string]any{"https://example.com/meta": meta})
		s := mustCompile(t, `{"$schema": "https://example.com/meta", "format": "ipv4"}`, WithLoader(ml))
		assert.True(t, s.Apply("10.0.0.1").IsOK())
		assert.False(t, s.Apply("10.0.0").IsOK())
	})

	t.Run("unknown format", func(t *testing.T) {
		mustCompile(t, `{"format": "nope"}`)
		err := compileErr(t, `{"format": "nope"}`, WithFormatAssertion(true))
		assert.True(t, errors.Is(err, schemaerrors.ErrUnknownFormat))
	})

	t.Run("custom format", func(t *testing.T) {
		s := mustCompile(t, `{"format": "even-length"}`, WithFormatAssertion(true),
			WithFormat("even-length", func(s string) bool { return len(s)%2 == 0 }))
		assert.True(t, s.Apply("ab").IsOK())
		assert.False(t, s.Apply("abc").IsOK())
	})
}

// TestContent tests the content keywords.
func TestContent(t *testing.T) {
	schema := `{
		"contentEncoding": "base64",
		"contentMediaType": "application/json",
		"contentSchema": {"type": "object", "required": ["a"]}
	}`

	t.Run("annotation by default", func(t *testing.T) {
		s := mustCompile(t, schema)
		assert.True(t, s.Apply("%%%").IsOK())
	})

	t.Run("assertion", func(t *testing.T) {
		s := mustCompile(t, schema, WithContentAssertion(true))
		runInstances(t, s, []instanceCase{
			{"valid", `"eyJhIjogMX0="`, true},       // {"a": 1}
			{"schema fails", `"eyJiIjogMX0="`, false}, // {"b": 1}
			{"bad base64", `"%%%"`, false},
			{"bad json", `"bm90IGpzb24="`, false}, // not json
		})
	})
}

// TestInvalidSchemas tests compile errors for malformed keyword values.
func TestInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		cause  error
	}{
		{"negative minLength", `{"minLength": -1}`, schemaerrors.ErrInvalidKeyword},
		{"fractional maxItems", `{"maxItems": 1.5}`, schemaerrors.ErrInvalidKeyword},
		{"zero multipleOf", `{"multipleOf": 0}`, schemaerrors.ErrInvalidKeyword},
		{"unknown type", `{"type": "float"}`, schemaerrors.ErrInvalidKeyword},
		{"empty allOf", `{"allOf": []}`, schemaerrors.ErrInvalidKeyword},
		{"required not strings", `{"required": [1]}`, schemaerrors.ErrInvalidKeyword},
		{"bad pattern", `{"pattern": "("}`, schemaerrors.ErrInvalidKeyword},
		{"tuple items in 2020-12", `{"items": [{}]}`, schemaerrors.ErrInvalidKeyword},
		{"$ref not a string", `{"$ref": 1}`, schemaerrors.ErrInvalidKeyword},
		{"$id with fragment", `{"$defs": {"a": {"$id": "https://example.com/a#frag"}}}`, schemaerrors.ErrInvalidKeyword},
		{"bad anchor name", `{"$anchor": "1abc"}`, schemaerrors.ErrInvalidKeyword},
		{"duplicate anchor", `{"$defs": {"a": {"$anchor": "x"}, "b": {"$anchor": "x"}}}`, schemaerrors.ErrDuplicateAnchor},
		{"duplicate id", `{"$defs": {"a": {"$id": "https://example.com/a"}, "b": {"$id": "https://example.com/a"}}}`, schemaerrors.ErrDuplicateID},
		{"$schema not a string", `{"$schema": 1}`, schemaerrors.ErrInvalidKeyword},
		{"property schema is a number", `{"properties": {"a": 5}}`, schemaerrors.ErrInvalidKeyword},
		{"$defs entry is a string", `{"$defs": {"a": "x"}, "$ref": "#/$defs/a"}`, schemaerrors.ErrInvalidKeyword},
		{"items is null", `{"items": null}`, schemaerrors.ErrInvalidKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileErr(t, tt.schema)
			assert.True(t, errors.Is(err, tt.cause), "got %v", err)
			assert.True(t, errors.Is(err, schemaerrors.ErrCompile), "got %v", err)
		})
	}

	t.Run("non-schema subschema location", func(t *testing.T) {
		err := compileErr(t, `{"properties": {"a": 5}}`, WithOrigin("https://example.com/s.json"))
		var ce *schemaerrors.CompileError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "https://example.com/s.json#/properties/a", ce.Location)
		assert.Contains(t, ce.Message, "got integer")
	})

	t.Run("location in message", func(t *testing.T) {
		err := compileErr(t, `{"properties": {"a": {"minLength": -1}}}`, WithOrigin("https://example.com/s.json"))
		var ce *schemaerrors.CompileError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "https://example.com/s.json#/properties/a/minLength", ce.Location)
		assert.Equal(t, "minLength", ce.Keyword)
	})
}

// TestInputSources tests the input source options.
func TestInputSources(t *testing.T) {
	_, err := CompileWithOptions(WithDefaultDialect(dialect.Draft202012))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must specify an input source")

	_, err = CompileWithOptions(WithDocument(true), WithBytes([]byte(`true`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one input source")

	s, err := CompileWithOptions(WithBytes([]byte("type: integer\nminimum: 3\n")), WithDefaultDialect(dialect.Draft202012))
	require.NoError(t, err)
	assert.True(t, s.Apply(decode(t, `3`)).IsOK())
	assert.False(t, s.Apply(decode(t, `2`)).IsOK())

	_, err = CompileWithOptions(WithFilePath("does/not/exist.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrLoad))

	_, err = CompileWithOptions(WithURI("https://example.com/s.json"), WithDefaultLoaders(false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrNoLoaderForScheme))
}

// TestDeterminism tests that repeated and parallel validation agree.
func TestDeterminism(t *testing.T) {
	schema := `{
		"type": "object",
		"properties": {
			"tags": {"type": "array", "items": {"type": "string", "minLength": 2}, "uniqueItems": true},
			"size": {"oneOf": [{"type": "integer"}, {"minimum": 10}]}
		},
		"patternProperties": {"^x-": {"type": "boolean"}},
		"unevaluatedProperties": false
	}`
	instances := []string{
		`{"tags": ["ab", "cd"], "size": 3}`,
		`{"tags": ["a", "ab", "ab"], "size": 12, "x-ok": 1, "extra": null}`,
		`{"tags": [], "size": 10.5, "x-ok": true}`,
		`{"size": "big"}`,
	}

	inline := mustCompile(t, schema)
	pooled := mustCompile(t, schema, WithScheduler(scheduler.NewPool(4)))
	unbounded := mustCompile(t, schema, WithScheduler(scheduler.Unbounded{}))
	for _, inst := range instances {
		t.Run(inst, func(t *testing.T) {
			doc := decode(t, inst)
			want := inline.Apply(doc)
			assert.Equal(t, want.Format(), inline.Apply(doc).Format())
			for _, s := range []*Schema{pooled, unbounded} {
				got := s.Apply(doc)
				assert.Equal(t, want.IsOK(), got.IsOK())
				assert.ElementsMatch(t, want.ErrorKinds(), got.ErrorKinds())
			}
		})
	}
}

// TestConcurrentApply tests sharing one schema between goroutines.
func TestConcurrentApply(t *testing.T) {
	s := mustCompile(t, `{"items": {"$ref": "#/$defs/n"}, "$defs": {"n": {"type": "integer", "maximum": 50}}}`,
		WithScheduler(scheduler.NewPool(0)))
	done := make(chan bool)
	for i := range 8 {
		go func() {
			inst := make([]any, 0, 100)
			for j := range 100 {
				inst = append(inst, i*10+j%10)
			}
			done <- s.Apply(inst).IsOK()
		}()
	}
	valid := 0
	for range 8 {
		if <-done {
			valid++
		}
	}
	// i*10+9 <= 50 for i <= 4
	assert.Equal(t, 5, valid)
}

// TestLogger tests that compilation reports through the configured logger.
func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	mustCompile(t, `{"$ref": "#/$defs/a", "$defs": {"a": {"$ref": "#"}}}`, WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, "resolved reference")
	assert.Contains(t, out, "recursive schema location")
	assert.True(t, strings.Contains(out, "compiled schema"))

	var nop Logger = NopLogger{}
	assert.Equal(t, nop, nop.With("k", "v"))
}

// TestRegexTranslation tests the ECMA-262 rewrites of the default engine.
func TestRegexTranslation(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{`^\s$`, " ", true},
		{`^\S$`, " ", false},
		{`^[\s]+$`, "  ", true},
		{`^\u0041$`, "A", true},
		{`^\s$`, "\u00a0", true},
		{`^\d+$`, "12", true},
		{`^\d+$`, "١٢", false},
		{`^\w+$`, "é", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			match, err := ecmaRegex(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.match, match(tt.input))
		})
	}

	_, err := ecmaRegex(`\u12`)
	assert.Error(t, err)

	s := mustCompile(t, `{"pattern": "anything"}`, WithRegexFactory(func(string) (func(string) bool, error) {
		return func(s string) bool { return s == "yes" }, nil
	}))
	assert.True(t, s.Apply("yes").IsOK())
	assert.False(t, s.Apply("no").IsOK())
}
