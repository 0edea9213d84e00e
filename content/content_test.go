package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodings(t *testing.T) {
	r := Defaults()

	dec, ok := r.Encoding("base64")
	require.True(t, ok)
	data, err := dec("eyJmb28iOiAiYmFyIn0K")
	require.NoError(t, err)
	assert.Equal(t, "{\"foo\": \"bar\"}\n", string(data))

	_, err = dec("eyJmb28iOi%iYmFyIn0K")
	assert.Error(t, err)

	dec, ok = r.Encoding("base16")
	require.True(t, ok)
	data, err = dec("6869")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, ok = r.Encoding("quoted-printable")
	assert.False(t, ok)
}

func TestMediaTypes(t *testing.T) {
	r := Defaults()

	parse, ok := r.MediaType("application/json; charset=utf-8")
	require.True(t, ok)
	v, err := parse([]byte(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, v)

	_, err = parse([]byte(`{"a": 1} {}`))
	assert.Error(t, err)

	_, err = parse([]byte(`{:}`))
	assert.Error(t, err)

	parse, ok = r.MediaType("application/yaml")
	require.True(t, ok)
	v, err = parse([]byte("a: 1\nb: [x, 2.5]\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1"), "b": []any{"x", json.Number("2.5")}}, v)

	assert.Equal(t, []string{"application/json", "application/yaml", "text/plain"}, r.MediaTypes())
}

func TestCloneIsIndependent(t *testing.T) {
	r := Defaults()
	c := r.Clone()
	c.RegisterMediaType("application/x-custom", func([]byte) (any, error) { return nil, nil })

	_, ok := r.MediaType("application/x-custom")
	assert.False(t, ok)
	_, ok = c.MediaType("application/x-custom")
	assert.True(t, ok)
}
