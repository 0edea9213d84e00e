package schemaerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &CompileError{
			Location: "https://example.com/s#/properties/a",
			Keyword:  "minLength",
			Message:  "must be a non-negative integer",
			Cause:    ErrInvalidKeyword,
		}
		assert.Equal(t,
			"compile error at https://example.com/s#/properties/a (minLength): must be a non-negative integer: invalid keyword value",
			err.Error())
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &CompileError{}
		assert.Equal(t, "compile error", err.Error())
	})

	t.Run("Is matches ErrCompile and the cause", func(t *testing.T) {
		err := &CompileError{Cause: ErrDuplicateAnchor}
		assert.ErrorIs(t, err, ErrCompile)
		assert.ErrorIs(t, err, ErrDuplicateAnchor)
		assert.NotErrorIs(t, err, ErrReference)
	})

	t.Run("As extracts CompileError through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("compiling: %w", &CompileError{Keyword: "type"})
		var ce *CompileError
		require.ErrorAs(t, wrapped, &ce)
		assert.Equal(t, "type", ce.Keyword)
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/$defs/missing", Location: "#/$ref", Message: "pointer not found"}
		assert.Equal(t, "reference error: #/$defs/missing at #/$ref: pointer not found", err.Error())
	})

	t.Run("Is matches ErrReference and ErrCompile", func(t *testing.T) {
		err := &ReferenceError{Ref: "x"}
		assert.ErrorIs(t, err, ErrReference)
		assert.ErrorIs(t, err, ErrCompile)
		assert.NotErrorIs(t, err, ErrLoad)
	})

	t.Run("Unwrap reaches a nested LoadError", func(t *testing.T) {
		load := &LoadError{URI: "https://example.com/a.json", Cause: ErrNoLoaderForScheme}
		err := &ReferenceError{Ref: "https://example.com/a.json", Cause: load}
		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, ErrNoLoaderForScheme)
	})
}

func TestLoadError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &LoadError{URI: "http://localhost/x.json", Cause: cause}

	assert.Equal(t, "load error: http://localhost/x.json: connection refused", err.Error())
	assert.ErrorIs(t, err, ErrLoad)
	assert.Equal(t, cause, err.Unwrap())
}

func TestResourceLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  *ResourceLimitError
		want string
	}{
		{
			name: "with limit and actual",
			err:  &ResourceLimitError{ResourceType: "document_size", Limit: 10, Actual: 20},
			want: "resource limit exceeded: document_size (limit: 10, actual: 20)",
		},
		{
			name: "minimal",
			err:  &ResourceLimitError{},
			want: "resource limit exceeded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrResourceLimit)
			assert.Nil(t, tt.err.Unwrap())
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "WithDefaultDialect", Value: "urn:x", Message: "unknown dialect", Cause: ErrDialectNotFound}

	assert.Equal(t, "configuration error for WithDefaultDialect (value: urn:x): unknown dialect: dialect not found", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, ErrDialectNotFound)
}
