package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// TestDescribeDialect tests the vocabulary listing of the built-in dialects.
func TestDescribeDialect(t *testing.T) {
	vocabs, err := DescribeDialect(dialect.Draft202012 + "#")
	require.NoError(t, err)
	require.Len(t, vocabs, 7)
	assert.Equal(t, dialect.Vocab202012Core, vocabs[0].URI)
	assert.Contains(t, vocabs[0].Keywords, "$dynamicRef")
	assert.NotContains(t, vocabs[0].Keywords, "$recursiveRef")

	old, err := DescribeDialect(dialect.Draft201909)
	require.NoError(t, err)
	require.Len(t, old, 6)
	assert.Contains(t, old[1].Keywords, "additionalItems")
	assert.Contains(t, old[1].Keywords, "unevaluatedItems")

	_, err = DescribeDialect("https://example.com/none")
	assert.True(t, errors.Is(err, schemaerrors.ErrDialectNotFound))
}

// TestCatalogKeywordsAreUnique tests that no vocabulary lists a keyword twice
// and every keyword compiles to something.
func TestCatalogKeywordsAreUnique(t *testing.T) {
	for uri, kws := range vocabularies {
		seen := make(map[string]bool)
		for _, kw := range kws {
			assert.False(t, seen[kw.name], "%s lists %s twice", uri, kw.name)
			seen[kw.name] = true
			assert.NotNil(t, kw.compile, kw.name)
		}
	}
	assert.ElementsMatch(t, []string{dialect.Draft202012, dialect.Draft201909}, Dialects())
}
