package dialect

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// Vocabulary is a named keyword table.
type Vocabulary[K any] struct {
	URI      string
	keywords map[string]K
}

// Lookup returns the entry for keyword.
func (v *Vocabulary[K]) Lookup(keyword string) (K, bool) {
	k, ok := v.keywords[keyword]
	return k, ok
}

// Keywords returns the keyword names in sorted order.
func (v *Vocabulary[K]) Keywords() []string {
	return slices.Sorted(maps.Keys(v.keywords))
}

// VocabularyState is one member of a dialect.
type VocabularyState struct {
	URI    string
	Active bool
}

// Dialect is an immutable, ordered selection of vocabularies.
type Dialect[K any] struct {
	// URI is the meta-schema URI the dialect was resolved from
	URI    string
	states []VocabularyState
	vocabs map[string]*Vocabulary[K]
}

// Lookup returns the entry of the first active vocabulary defining keyword.
func (d *Dialect[K]) Lookup(keyword string) (K, bool) {
	for _, s := range d.states {
		if !s.Active {
			continue
		}
		if k, ok := d.vocabs[s.URI].Lookup(keyword); ok {
			return k, true
		}
	}
	var zero K
	return zero, false
}

// Has reports whether the vocabulary is part of the dialect and active.
func (d *Dialect[K]) Has(vocabularyURI string) bool {
	for _, s := range d.states {
		if s.URI == vocabularyURI {
			return s.Active
		}
	}
	return false
}

// FormatAssertion reports whether "format" must be asserted.
func (d *Dialect[K]) FormatAssertion() bool {
	for _, s := range d.states {
		if s.Active && formatAssertionVocabularies[s.URI] {
			return true
		}
	}
	return false
}

// Vocabularies returns the member vocabularies in lookup order.
func (d *Dialect[K]) Vocabularies() []VocabularyState {
	return slices.Clone(d.states)
}

// Keywords iterates over the keywords reachable through Lookup, in
// vocabulary order. Keywords shadowed by an earlier vocabulary are skipped.
func (d *Dialect[K]) Keywords() iter.Seq2[string, K] {
	return func(yield func(string, K) bool) {
		seen := make(map[string]bool)
		for _, s := range d.states {
			if !s.Active {
				continue
			}
			v := d.vocabs[s.URI]
			for _, name := range v.Keywords() {
				if seen[name] {
					continue
				}
				seen[name] = true
				if !yield(name, v.keywords[name]) {
					return
				}
			}
		}
	}
}

// WithVocabularies returns a dialect whose members are exactly the declared
// vocabularies, in the receiver's order followed by the new ones sorted by URI.
// A required (true) vocabulary that is not registered fails with
// ErrUnknownVocabulary; unknown optional ones are skipped.
func (d *Dialect[K]) WithVocabularies(declared map[string]bool) (*Dialect[K], error) {
	next := &Dialect[K]{URI: d.URI, vocabs: d.vocabs}
	for _, s := range d.states {
		if _, ok := declared[s.URI]; ok {
			next.states = append(next.states, VocabularyState{URI: s.URI, Active: true})
		}
	}
	for _, uri := range slices.Sorted(maps.Keys(declared)) {
		if slices.ContainsFunc(next.states, func(s VocabularyState) bool { return s.URI == uri }) {
			continue
		}
		if _, ok := d.vocabs[uri]; !ok {
			if declared[uri] {
				return nil, fmt.Errorf("%w: %s", schemaerrors.ErrUnknownVocabulary, uri)
			}
			continue
		}
		next.states = append(next.states, VocabularyState{URI: uri, Active: true})
	}
	return next, nil
}

// Registry holds vocabularies and named dialects.
type Registry[K any] struct {
	mu       sync.RWMutex
	vocabs   map[string]*Vocabulary[K]
	dialects map[string][]VocabularyState
}

// NewRegistry returns an empty registry.
func NewRegistry[K any]() *Registry[K] {
	return &Registry[K]{
		vocabs:   make(map[string]*Vocabulary[K]),
		dialects: make(map[string][]VocabularyState),
	}
}

// RegisterCompiler adds keyword to a vocabulary, creating the vocabulary if needed.
func (r *Registry[K]) RegisterCompiler(vocabularyURI, keyword string, k K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vocabs[vocabularyURI]
	if !ok {
		v = &Vocabulary[K]{URI: vocabularyURI, keywords: make(map[string]K)}
		r.vocabs[vocabularyURI] = v
	}
	v.keywords[keyword] = k
}

// RegisterDialect names an ordered vocabulary selection. Every vocabulary
// must already be registered.
func (r *Registry[K]) RegisterDialect(uri string, vocabularies ...VocabularyState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range vocabularies {
		if _, ok := r.vocabs[s.URI]; !ok {
			return fmt.Errorf("dialect %s: %w: %s", uri, schemaerrors.ErrUnknownVocabulary, s.URI)
		}
	}
	r.dialects[NormalizeURI(uri)] = slices.Clone(vocabularies)
	return nil
}

// Vocabulary returns a registered vocabulary.
func (r *Registry[K]) Vocabulary(uri string) (*Vocabulary[K], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vocabs[uri]
	return v, ok
}

// Resolve returns the dialect registered under uri.
func (r *Registry[K]) Resolve(uri string) (*Dialect[K], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states, ok := r.dialects[NormalizeURI(uri)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schemaerrors.ErrDialectNotFound, uri)
	}
	return &Dialect[K]{URI: NormalizeURI(uri), states: slices.Clone(states), vocabs: r.snapshot()}, nil
}

// Known reports whether uri names a registered dialect.
func (r *Registry[K]) Known(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dialects[NormalizeURI(uri)]
	return ok
}

// Clone returns an independent copy. Registrations on the copy never
// affect the receiver.
func (r *Registry[K]) Clone() *Registry[K] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry[K]()
	for uri, v := range r.vocabs {
		c.vocabs[uri] = &Vocabulary[K]{URI: uri, keywords: maps.Clone(v.keywords)}
	}
	for uri, states := range r.dialects {
		c.dialects[uri] = slices.Clone(states)
	}
	return c
}

// snapshot copies the vocabulary map so a resolved dialect is unaffected by
// later registrations. Callers hold r.mu.
func (r *Registry[K]) snapshot() map[string]*Vocabulary[K] {
	out := make(map[string]*Vocabulary[K], len(r.vocabs))
	for uri, v := range r.vocabs {
		out[uri] = &Vocabulary[K]{URI: uri, keywords: maps.Clone(v.keywords)}
	}
	return out
}
