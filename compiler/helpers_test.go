package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/scheduler"
)

// decode parses a JSON or YAML literal.
func decode(t *testing.T, s string) any {
	t.Helper()
	v, err := loader.Decode([]byte(s))
	require.NoError(t, err)
	return v
}

// mustCompile compiles a schema literal with the 2020-12 default dialect and
// the inline scheduler.
func mustCompile(t *testing.T, schema string, opts ...Option) *Schema {
	t.Helper()
	base := []Option{WithDefaultDialect(dialect.Draft202012), WithScheduler(scheduler.Inline{})}
	s, err := Compile(decode(t, schema), append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// compileErr compiles a schema literal that must fail.
func compileErr(t *testing.T, schema string, opts ...Option) error {
	t.Helper()
	base := []Option{WithDefaultDialect(dialect.Draft202012), WithScheduler(scheduler.Inline{})}
	_, err := Compile(decode(t, schema), append(base, opts...)...)
	require.Error(t, err)
	return err
}

// instanceCase is one instance and its expected verdict.
type instanceCase struct {
	name     string
	instance string
	valid    bool
}

// runInstances applies every case to the schema.
func runInstances(t *testing.T, s *Schema, cases []instanceCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.Apply(decode(t, tc.instance))
			require.Equal(t, tc.valid, res.IsOK(), res.Format())
		})
	}
}
