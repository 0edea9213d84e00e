// Package content decodes string instances for the contentEncoding,
// contentMediaType and contentSchema keywords.
//
// Encodings turn the string into raw bytes; media types parse those bytes
// into a JSON value that contentSchema can be applied to.
package content

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"mime"
	"slices"
	"sync"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/internal/jsonvalue"
)

// DecodeFunc turns an encoded string into bytes.
type DecodeFunc func(s string) ([]byte, error)

// ParseFunc turns raw bytes of a media type into a JSON value.
type ParseFunc func(data []byte) (any, error)

// Registry maps encodings and media types to decoders.
type Registry struct {
	mu         sync.RWMutex
	encodings  map[string]DecodeFunc
	mediaTypes map[string]ParseFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		encodings:  make(map[string]DecodeFunc),
		mediaTypes: make(map[string]ParseFunc),
	}
}

// Defaults returns a registry with base64, base32, base16 and the JSON,
// YAML and plain text media types.
func Defaults() *Registry {
	r := NewRegistry()
	r.RegisterEncoding("base64", base64.StdEncoding.DecodeString)
	r.RegisterEncoding("base32", base32.StdEncoding.DecodeString)
	r.RegisterEncoding("base16", hex.DecodeString)
	r.RegisterMediaType("application/json", parseJSON)
	r.RegisterMediaType("application/yaml", parseYAML)
	r.RegisterMediaType("text/plain", func(data []byte) (any, error) { return string(data), nil })
	return r
}

// RegisterEncoding adds or replaces an encoding.
func (r *Registry) RegisterEncoding(name string, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encodings[name] = fn
}

// RegisterMediaType adds or replaces a media type, keyed without parameters.
func (r *Registry) RegisterMediaType(mediaType string, fn ParseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mediaTypes[mediaType] = fn
}

// Encoding returns the decoder for name.
func (r *Registry) Encoding(name string) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.encodings[name]
	return fn, ok
}

// MediaType returns the parser for a media type. Parameters such as
// "; charset=utf-8" are ignored.
func (r *Registry) MediaType(mediaType string) (ParseFunc, bool) {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		base = mediaType
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mediaTypes[base]
	return fn, ok
}

// MediaTypes returns the registered media types in sorted order.
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.mediaTypes))
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{encodings: maps.Clone(r.encodings), mediaTypes: maps.Clone(r.mediaTypes)}
}

func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func parseYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return jsonvalue.Normalize(v), nil
}
