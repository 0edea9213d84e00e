package dialect

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/schemaerrors"
)

const (
	vocabA = "https://example.com/vocab/a"
	vocabB = "https://example.com/vocab/b"
	vocabF = Vocab202012FormatAssertion
	test   = "https://example.com/dialect"
)

func newTestRegistry(t *testing.T) *Registry[string] {
	t.Helper()
	r := NewRegistry[string]()
	r.RegisterCompiler(vocabA, "type", "a.type")
	r.RegisterCompiler(vocabA, "items", "a.items")
	r.RegisterCompiler(vocabB, "items", "b.items")
	r.RegisterCompiler(vocabB, "contains", "b.contains")
	r.RegisterCompiler(vocabF, "format", "f.format")
	require.NoError(t, r.RegisterDialect(test,
		VocabularyState{URI: vocabA, Active: true},
		VocabularyState{URI: vocabB, Active: true},
		VocabularyState{URI: vocabF, Active: false},
	))
	return r
}

func TestLookupFirstVocabularyWins(t *testing.T) {
	d, err := newTestRegistry(t).Resolve(test)
	require.NoError(t, err)

	k, ok := d.Lookup("items")
	require.True(t, ok)
	assert.Equal(t, "a.items", k)

	k, ok = d.Lookup("contains")
	require.True(t, ok)
	assert.Equal(t, "b.contains", k)

	_, ok = d.Lookup("format")
	assert.False(t, ok, "inactive vocabulary must not contribute keywords")
	assert.False(t, d.FormatAssertion())

	_, ok = d.Lookup("unknown")
	assert.False(t, ok)
}

func TestResolveNormalizesFragment(t *testing.T) {
	r := newTestRegistry(t)
	d, err := r.Resolve(test + "#")
	require.NoError(t, err)
	assert.Equal(t, test, d.URI)
	assert.True(t, r.Known(test+"#"))

	_, err = r.Resolve("https://example.com/nope")
	assert.ErrorIs(t, err, schemaerrors.ErrDialectNotFound)
}

func TestKeywordsSkipsShadowed(t *testing.T) {
	d, err := newTestRegistry(t).Resolve(test)
	require.NoError(t, err)

	got := maps.Collect(d.Keywords())
	assert.Equal(t, map[string]string{
		"type":     "a.type",
		"items":    "a.items",
		"contains": "b.contains",
	}, got)
}

func TestWithVocabularies(t *testing.T) {
	d, err := newTestRegistry(t).Resolve(test)
	require.NoError(t, err)

	t.Run("subset and activation", func(t *testing.T) {
		next, err := d.WithVocabularies(map[string]bool{vocabB: true, vocabF: true})
		require.NoError(t, err)

		_, ok := next.Lookup("type")
		assert.False(t, ok, "vocabulary not declared is dropped")
		k, ok := next.Lookup("items")
		require.True(t, ok)
		assert.Equal(t, "b.items", k)
		assert.True(t, next.FormatAssertion())
		assert.True(t, next.Has(vocabF))

		// receiver is unchanged
		k, _ = d.Lookup("items")
		assert.Equal(t, "a.items", k)
	})

	t.Run("required unknown vocabulary fails", func(t *testing.T) {
		_, err := d.WithVocabularies(map[string]bool{vocabA: true, "https://example.com/vocab/x": true})
		assert.ErrorIs(t, err, schemaerrors.ErrUnknownVocabulary)
	})

	t.Run("optional unknown vocabulary is ignored", func(t *testing.T) {
		next, err := d.WithVocabularies(map[string]bool{vocabA: true, "https://example.com/vocab/x": false})
		require.NoError(t, err)
		assert.Len(t, next.Vocabularies(), 1)
	})
}

func TestCloneIsIndependent(t *testing.T) {
	r := newTestRegistry(t)
	c := r.Clone()
	c.RegisterCompiler(vocabA, "type", "custom.type")
	require.NoError(t, c.RegisterDialect("https://example.com/custom", VocabularyState{URI: vocabA, Active: true}))

	orig, err := r.Resolve(test)
	require.NoError(t, err)
	k, _ := orig.Lookup("type")
	assert.Equal(t, "a.type", k)
	assert.False(t, r.Known("https://example.com/custom"))

	cloned, err := c.Resolve(test)
	require.NoError(t, err)
	k, _ = cloned.Lookup("type")
	assert.Equal(t, "custom.type", k)
}

func TestRegisterDialectUnknownVocabulary(t *testing.T) {
	r := NewRegistry[string]()
	err := r.RegisterDialect("https://example.com/d", VocabularyState{URI: vocabA, Active: true})
	assert.ErrorIs(t, err, schemaerrors.ErrUnknownVocabulary)
}
