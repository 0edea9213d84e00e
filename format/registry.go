// Package format provides the predicates behind the "format" keyword.
//
// A [Registry] maps format names to predicates over strings. The compiler
// consults it when a schema declares "format"; whether a failing predicate is
// an error or only an annotation depends on the dialect and compile options.
package format

import (
	"maps"
	"slices"
	"sync"
)

// Func reports whether s conforms to a format.
type Func func(s string) bool

// Registry maps format names to predicates.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Defaults returns a new registry holding every built-in format.
func Defaults() *Registry {
	r := NewRegistry()
	for name, fn := range builtin {
		r.funcs[name] = fn
	}
	return r
}

// Register adds or replaces a format.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the predicate for name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered format names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{funcs: maps.Clone(r.funcs)}
}

var builtin = map[string]Func{
	"date-time":             IsDateTime,
	"date":                  IsDate,
	"time":                  IsTime,
	"duration":              IsDuration,
	"email":                 IsEmail,
	"idn-email":             IsIDNEmail,
	"hostname":              IsHostname,
	"idn-hostname":          IsIDNHostname,
	"ipv4":                  IsIPv4,
	"ipv6":                  IsIPv6,
	"uri":                   IsURI,
	"uri-reference":         IsURIReference,
	"iri":                   IsIRI,
	"iri-reference":         IsIRIReference,
	"uri-template":          IsURITemplate,
	"uuid":                  IsUUID,
	"regex":                 IsRegex,
	"json-pointer":          IsJSONPointer,
	"relative-json-pointer": IsRelativeJSONPointer,
}
