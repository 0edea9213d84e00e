// Package loader fetches external schema documents and resolves reference
// URIs.
//
// The compiler reaches external documents through two hooks. An
// [ExternalResolver] is asked first and may return a schema or redirect a
// reference to another URI. Otherwise a [Loader] is selected by URI scheme from
// a [Set] and fetches the document.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// MaxFileSize is the default size limit for fetched documents.
const MaxFileSize = 10 * 1024 * 1024 // 10MB

// Loader fetches a document by URI.
type Loader interface {
	// Schemes returns the URI schemes the loader handles.
	Schemes() []string
	// Load fetches and decodes the document at u.
	Load(ctx context.Context, u *url.URL) (any, error)
}

// Resolution is the answer of an ExternalResolver.
type Resolution struct {
	// Schema is the resolved document. When nil the reference is loaded from AbsoluteURI.
	Schema any
	// AbsoluteURI names the resolved document. It must be absolute.
	AbsoluteURI string
}

// ExternalResolver overrides reference resolution. It is consulted before
// default URI resolution and before any loader.
type ExternalResolver interface {
	// Resolve returns ok=false to fall back to default resolution.
	Resolve(ref string, at result.Locator) (res Resolution, ok bool, err error)
}

// ResolverFunc adapts a function to ExternalResolver.
type ResolverFunc func(ref string, at result.Locator) (Resolution, bool, error)

// Resolve implements ExternalResolver.
func (f ResolverFunc) Resolve(ref string, at result.Locator) (Resolution, bool, error) {
	return f(ref, at)
}

// Set selects loaders by scheme. Earlier loaders win.
type Set struct {
	loaders []Loader
}

// NewSet returns a set trying loaders in order.
func NewSet(loaders ...Loader) *Set {
	return &Set{loaders: slices.Clone(loaders)}
}

// Add appends a loader with the lowest priority.
func (s *Set) Add(l Loader) {
	s.loaders = append(s.loaders, l)
}

// Prepend inserts a loader with the highest priority.
func (s *Set) Prepend(l Loader) {
	s.loaders = append([]Loader{l}, s.loaders...)
}

// Len returns the number of loaders.
func (s *Set) Len() int {
	return len(s.loaders)
}

// Load fetches uri with the first loader supporting its scheme.
func (s *Set) Load(ctx context.Context, uri string) (any, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &schemaerrors.LoadError{URI: uri, Message: "invalid uri", Cause: err}
	}
	if !u.IsAbs() {
		return nil, &schemaerrors.LoadError{URI: uri, Cause: schemaerrors.ErrNotAbsolute}
	}
	u.Fragment = ""
	u.RawFragment = ""
	scheme := strings.ToLower(u.Scheme)
	for _, l := range s.loaders {
		if !slices.Contains(l.Schemes(), scheme) {
			continue
		}
		doc, err := l.Load(ctx, u)
		if err != nil {
			return nil, &schemaerrors.LoadError{URI: uri, Cause: err}
		}
		return doc, nil
	}
	return nil, &schemaerrors.LoadError{URI: uri, Cause: fmt.Errorf("%w %q", schemaerrors.ErrNoLoaderForScheme, scheme)}
}

// Decode parses a JSON or YAML document into the generic value tree.
// Numbers are kept exact as json.Number.
func Decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if looksLikeJSON(trimmed) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("decoding json: unexpected data after document")
		}
		return v, nil
	}
	var v any
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return jsonvalue.Normalize(v), nil
}

func looksLikeJSON(data []byte) bool {
	switch data[0] {
	case '{', '[', '"':
		return true
	}
	if c := data[0]; c == '-' || (c >= '0' && c <= '9') {
		// a bare number keeps its exact literal; "1: a" stays YAML
		return json.Valid(data)
	}
	s := string(data)
	return s == "true" || s == "false" || s == "null"
}

// ResolveReference resolves ref against base. A relative ref with an empty
// base is returned unchanged.
func ResolveReference(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	if r.IsAbs() || base == "" {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base %q: %w", base, err)
	}
	if b.Opaque != "" {
		// urn:example:a cannot carry relative references; only fragments apply.
		if r.Path == "" && r.Host == "" {
			resolved := *b
			resolved.Fragment = r.Fragment
			resolved.RawFragment = r.RawFragment
			return resolved.String(), nil
		}
		return "", fmt.Errorf("cannot resolve %q against non-hierarchical base %q", ref, base)
	}
	return b.ResolveReference(r).String(), nil
}

// SplitFragment splits a URI reference at '#'.
func SplitFragment(ref string) (path, fragment string) {
	path, fragment, _ = strings.Cut(ref, "#")
	return path, fragment
}

// IsAbsolute reports whether uri has a scheme.
func IsAbsolute(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.IsAbs()
}

// FileURI converts a filesystem path into an absolute file URI.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
