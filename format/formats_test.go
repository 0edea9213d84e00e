package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinFormats(t *testing.T) {
	tests := []struct {
		format string
		input  string
		want   bool
	}{
		{"date-time", "1963-06-19T08:30:06.283185Z", true},
		{"date-time", "1990-12-31T15:59:60-08:00", true},
		{"date-time", "1998-12-31T23:58:60Z", false},
		{"date-time", "1963-06-19 08:30:06Z", false},
		{"date", "2020-02-29", true},
		{"date", "2021-02-29", false},
		{"time", "08:30:06z", true},
		{"time", "08:30:06", false},
		{"duration", "P4DT12H30M5S", true},
		{"duration", "P1W", true},
		{"duration", "PT", false},
		{"email", "joe.bloggs@example.com", true},
		{"email", "2962", false},
		{"idn-email", "실례@실례.테스트", true},
		{"idn-email", "no-at-sign", false},
		{"hostname", "www.example.com", true},
		{"hostname", "-a.example.com", false},
		{"idn-hostname", "실례.테스트", true},
		{"ipv4", "192.168.0.1", true},
		{"ipv4", "087.10.0.1", false},
		{"ipv6", "::1", true},
		{"ipv6", "fe80::1%eth0", false},
		{"uri", "http://example.com/a?b=c#d", true},
		{"uri", "//example.com", false},
		{"uri", "http://exa mple.com", false},
		{"uri-reference", "/relative/path#frag", true},
		{"iri", "http://ƒøø.ßår/?∂éœ=πîx#πîüx", true},
		{"uri-template", "http://example.com/dictionary/{term:1}/{term}", true},
		{"uri-template", "http://example.com/dictionary/{term:1}/{term", false},
		{"uuid", "2eb8aa08-aa98-11ea-b4aa-73b441d16380", true},
		{"uuid", "2eb8aa08aa9811eab4aa73b441d16380", false},
		{"regex", "([abc])+\\s+$", true},
		{"regex", "^(abc]", false},
		{"json-pointer", "/foo/bar~0/baz~1/%a", true},
		{"json-pointer", "/foo/bar~", false},
		{"relative-json-pointer", "1/foo", true},
		{"relative-json-pointer", "0#", true},
		{"relative-json-pointer", "01/a", false},
		{"relative-json-pointer", "/foo", false},
	}

	r := Defaults()
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.input, func(t *testing.T) {
			fn, ok := r.Lookup(tt.format)
			require.True(t, ok, "format %s should be registered", tt.format)
			assert.Equal(t, tt.want, fn(tt.input))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("date")
	assert.False(t, ok, "a new registry is empty")

	r.Register("even-length", func(s string) bool { return len(s)%2 == 0 })
	fn, ok := r.Lookup("even-length")
	require.True(t, ok)
	assert.True(t, fn("ab"))

	c := r.Clone()
	c.Register("other", func(string) bool { return true })
	_, ok = r.Lookup("other")
	assert.False(t, ok, "clone registrations must not leak")
	assert.Equal(t, []string{"even-length", "other"}, c.Names())
}
