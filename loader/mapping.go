package loader

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sync"

	"github.com/erraggy/jsonschema/result"
)

// MapLoader serves in-memory documents keyed by absolute URI.
type MapLoader struct {
	mu      sync.RWMutex
	docs    map[string]any
	schemes []string
}

// NewMapLoader returns a loader for the given documents. Its schemes are
// derived from the keys.
func NewMapLoader(docs map[string]any) *MapLoader {
	l := &MapLoader{docs: make(map[string]any, len(docs))}
	for uri, doc := range docs {
		l.Add(uri, doc)
	}
	return l
}

// Add registers a document.
func (l *MapLoader) Add(uri string, doc any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := url.Parse(uri)
	if err == nil && u.Scheme != "" && !slices.Contains(l.schemes, u.Scheme) {
		l.schemes = append(l.schemes, u.Scheme)
	}
	path, _ := SplitFragment(uri)
	l.docs[path] = doc
}

// Schemes implements Loader.
func (l *MapLoader) Schemes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.schemes)
}

// Load implements Loader.
func (l *MapLoader) Load(_ context.Context, u *url.URL) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, ok := l.docs[u.String()]
	if !ok {
		return nil, fmt.Errorf("no document registered for %s", u)
	}
	return doc, nil
}

// MapResolver maps reference ids either to schema documents or to other URIs.
type MapResolver struct {
	schemas map[string]any
	uris    map[string]string
}

// NewMapResolver returns an empty resolver.
func NewMapResolver() *MapResolver {
	return &MapResolver{schemas: make(map[string]any), uris: make(map[string]string)}
}

// MapSchema resolves id to doc.
func (m *MapResolver) MapSchema(id string, doc any) {
	m.schemas[id] = doc
}

// MapURI redirects id to target, which is then loaded normally.
func (m *MapResolver) MapURI(id, target string) {
	m.uris[id] = target
}

// IDs returns the mapped ids in sorted order.
func (m *MapResolver) IDs() []string {
	ids := slices.Collect(maps.Keys(m.schemas))
	ids = append(ids, slices.Collect(maps.Keys(m.uris))...)
	slices.Sort(ids)
	return ids
}

// Resolve implements ExternalResolver. The reference is matched as written
// first, then after resolution against the locator's base URI.
func (m *MapResolver) Resolve(ref string, at result.Locator) (Resolution, bool, error) {
	candidates := []string{ref}
	if abs, err := ResolveReference(at.Base(), ref); err == nil && abs != ref {
		candidates = append(candidates, abs)
	}
	for _, id := range candidates {
		if doc, ok := m.schemas[id]; ok {
			uri := id
			if !IsAbsolute(uri) {
				uri = "urn:jsonschema:mapped:" + url.PathEscape(id)
			}
			return Resolution{Schema: doc, AbsoluteURI: uri}, true, nil
		}
		if target, ok := m.uris[id]; ok {
			return Resolution{AbsoluteURI: target}, true, nil
		}
	}
	return Resolution{}, false, nil
}
