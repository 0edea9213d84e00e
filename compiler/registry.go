package compiler

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/schemaerrors"
)

var anchorPattern = regexp.MustCompile(`^[A-Za-z_][-A-Za-z0-9._]*$`)

// scope is one schema resource: a document root or an embedded object
// carrying $id.
type scope struct {
	id     result.ScopeID
	uri    string
	origin string
	// pointer locates the scope within its document
	pointer jsonptr.Pointer
	content any
	dialect *dialectOf
	// dialectURI is the $schema the dialect was resolved from
	dialectURI string

	parent          *scope
	children        map[jsonptr.Pointer]result.ScopeID
	anchors         map[string]jsonptr.Pointer
	dynamicAnchors  map[string]jsonptr.Pointer
	recursiveAnchor bool
}

// base is the URI relative references resolve against.
func (sc *scope) base() string {
	if sc.uri != "" {
		return sc.uri
	}
	return sc.origin
}

// at returns the locator of ptr within the scope.
func (sc *scope) at(ptr jsonptr.Pointer, parent *result.Locator) result.Locator {
	return result.Locator{Scope: sc.id, Origin: sc.origin, ID: sc.uri, Pointer: ptr, Parent: parent}
}

// registry indexes every schema resource seen during one compile session
// and resolves references between them.
type registry struct {
	catalog  *dialect.Registry[*keyword]
	loaders  *loader.Set
	resolver loader.ExternalResolver
	log      Logger

	next     result.ScopeID
	scopes   map[result.ScopeID]*scope
	byURI    map[string]result.ScopeID
	byOrigin map[string]result.ScopeID
	metas    map[string]*dialectOf
}

func newRegistry(catalog *dialect.Registry[*keyword], loaders *loader.Set, resolver loader.ExternalResolver, log Logger) *registry {
	return &registry{
		catalog:  catalog,
		loaders:  loaders,
		resolver: resolver,
		log:      log,
		scopes:   make(map[result.ScopeID]*scope),
		byURI:    make(map[string]result.ScopeID),
		byOrigin: make(map[string]result.ScopeID),
		metas:    make(map[string]*dialectOf),
	}
}

func (r *registry) scope(id result.ScopeID) *scope {
	return r.scopes[id]
}

func (r *registry) newScope(origin string, parent *scope) *scope {
	r.next++
	sc := &scope{
		id:             r.next,
		origin:         origin,
		parent:         parent,
		children:       make(map[jsonptr.Pointer]result.ScopeID),
		anchors:        make(map[string]jsonptr.Pointer),
		dynamicAnchors: make(map[string]jsonptr.Pointer),
	}
	r.scopes[sc.id] = sc
	return sc
}

// index makes sc findable by its $id.
func (r *registry) index(sc *scope) error {
	if sc.uri == "" {
		return nil
	}
	if _, dup := r.byURI[sc.uri]; dup {
		return &schemaerrors.CompileError{
			Location: sc.at(jsonptr.Root, nil).String(),
			Keyword:  "$id",
			Message:  sc.uri,
			Cause:    schemaerrors.ErrDuplicateID,
		}
	}
	r.byURI[sc.uri] = sc.id
	return nil
}

// register adds a document loaded from origin. fallback is the dialect used
// when the document has no $schema.
func (r *registry) register(ctx context.Context, doc any, origin string, fallback *dialectOf, fallbackURI string) (*scope, error) {
	d, dURI, err := r.dialectFor(ctx, doc, fallback, fallbackURI, origin)
	if err != nil {
		return nil, err
	}
	sc := r.newScope(origin, nil)
	sc.content = doc
	sc.dialect = d
	sc.dialectURI = dURI
	if obj, ok := doc.(map[string]any); ok && d != nil {
		if raw, ok := obj["$id"]; ok && hasKeyword(d, "$id") {
			if sc.uri, err = resolveID(raw, origin, sc.at(jsonptr.Root, nil)); err != nil {
				return nil, err
			}
		}
	}
	if err := r.index(sc); err != nil {
		return nil, err
	}
	if origin != "" {
		if _, ok := r.byOrigin[origin]; !ok {
			r.byOrigin[origin] = sc.id
		}
	}
	r.log.Debug("registered schema resource", "scope", sc.id, "uri", sc.uri, "origin", origin, "dialect", dURI)

	obj, ok := doc.(map[string]any)
	if !ok {
		return sc, nil
	}
	b := jsonptr.Get()
	defer jsonptr.Put(b)
	if err := r.walkObject(ctx, obj, sc, b); err != nil {
		return nil, err
	}
	return sc, nil
}

// document finds or loads the resource at abs, an absolute URI without a
// fragment.
func (r *registry) document(ctx context.Context, abs string, fallback *scope) (*scope, error) {
	if id, ok := r.byURI[abs]; ok {
		return r.scopes[id], nil
	}
	if id, ok := r.byOrigin[abs]; ok {
		return r.scopes[id], nil
	}
	r.log.Debug("loading external document", "uri", abs)
	doc, err := r.loaders.Load(ctx, abs)
	if err != nil {
		return nil, err
	}
	var d *dialectOf
	var dURI string
	if fallback != nil {
		d, dURI = fallback.dialect, fallback.dialectURI
	}
	return r.register(ctx, doc, abs, d, dURI)
}

// dialectFor resolves the dialect of a resource root.
func (r *registry) dialectFor(ctx context.Context, node any, fallback *dialectOf, fallbackURI, where string) (*dialectOf, string, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return fallback, fallbackURI, nil
	}
	raw, ok := obj["$schema"]
	if !ok {
		if fallback == nil {
			return nil, "", &schemaerrors.CompileError{Location: where + "#", Message: "document has no $schema", Cause: schemaerrors.ErrNoDialect}
		}
		return fallback, fallbackURI, nil
	}
	uri, ok := raw.(string)
	if !ok {
		return nil, "", &schemaerrors.CompileError{Location: where + "#", Keyword: "$schema", Message: "must be a string", Cause: schemaerrors.ErrInvalidKeyword}
	}
	uri = dialect.NormalizeURI(uri)
	if r.catalog.Known(uri) {
		d, err := r.catalog.Resolve(uri)
		if err != nil {
			return nil, "", err
		}
		d, err = withDeclaredVocabularies(d, obj, where)
		if err != nil {
			return nil, "", err
		}
		return d, uri, nil
	}
	d, err := r.metaDialect(ctx, uri, where)
	if err != nil {
		return nil, "", err
	}
	return d, uri, nil
}

// metaDialect loads an unknown meta-schema and derives a dialect from its
// $vocabulary. The meta-schema's own $schema must be known.
func (r *registry) metaDialect(ctx context.Context, uri, where string) (*dialectOf, error) {
	if d, ok := r.metas[uri]; ok {
		return d, nil
	}
	var meta any
	if id, ok := r.byURI[uri]; ok {
		meta = r.scopes[id].content
	} else {
		doc, err := r.loaders.Load(ctx, uri)
		if err != nil {
			return nil, &schemaerrors.CompileError{Location: where + "#", Keyword: "$schema", Message: uri, Cause: fmt.Errorf("%w: %w", schemaerrors.ErrDialectNotFound, err)}
		}
		meta = doc
	}
	obj, ok := meta.(map[string]any)
	if !ok {
		return nil, &schemaerrors.CompileError{Location: uri + "#", Message: "meta-schema must be an object", Cause: schemaerrors.ErrDialectNotFound}
	}
	base, _ := obj["$schema"].(string)
	base = dialect.NormalizeURI(base)
	if !r.catalog.Known(base) {
		return nil, &schemaerrors.CompileError{Location: uri + "#", Keyword: "$schema", Message: "meta-schema must use a known dialect", Cause: fmt.Errorf("%w: %s", schemaerrors.ErrDialectNotFound, base)}
	}
	d, err := r.catalog.Resolve(base)
	if err != nil {
		return nil, err
	}
	if d, err = withDeclaredVocabularies(d, obj, uri); err != nil {
		return nil, err
	}
	d.URI = uri
	r.metas[uri] = d
	if _, ok := r.byURI[uri]; !ok {
		if _, err := r.register(ctx, meta, uri, nil, ""); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func withDeclaredVocabularies(d *dialectOf, obj map[string]any, where string) (*dialectOf, error) {
	raw, ok := obj["$vocabulary"]
	if !ok {
		return d, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &schemaerrors.CompileError{Location: where + "#", Keyword: "$vocabulary", Message: "must be an object", Cause: schemaerrors.ErrInvalidKeyword}
	}
	declared := make(map[string]bool, len(m))
	for uri, v := range m {
		required, ok := v.(bool)
		if !ok {
			return nil, &schemaerrors.CompileError{Location: where + "#", Keyword: "$vocabulary", Message: "values must be booleans", Cause: schemaerrors.ErrInvalidKeyword}
		}
		declared[uri] = required
	}
	next, err := d.WithVocabularies(declared)
	if err != nil {
		return nil, &schemaerrors.CompileError{Location: where + "#", Keyword: "$vocabulary", Cause: err}
	}
	return next, nil
}

func hasKeyword(d *dialectOf, name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Lookup(name)
	return ok
}

// resolveID resolves a $id value against base. Fragments other than an
// empty trailing "#" are rejected.
func resolveID(raw any, base string, loc result.Locator) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", &schemaerrors.CompileError{Location: loc.String(), Keyword: "$id", Message: "must be a string", Cause: schemaerrors.ErrInvalidKeyword}
	}
	path, frag := loader.SplitFragment(s)
	if frag != "" {
		return "", &schemaerrors.CompileError{Location: loc.String(), Keyword: "$id", Message: "must not contain a fragment: " + s, Cause: schemaerrors.ErrInvalidKeyword}
	}
	uri, err := loader.ResolveReference(base, path)
	if err != nil {
		return "", &schemaerrors.CompileError{Location: loc.String(), Keyword: "$id", Message: s, Cause: err}
	}
	return uri, nil
}

// walkObject indexes the anchors and embedded resources below obj.
// b holds the pointer of obj relative to sc.
func (r *registry) walkObject(ctx context.Context, obj map[string]any, sc *scope, b *jsonptr.Builder) error {
	ptr := b.Pointer()
	if b.Depth() > 0 {
		if raw, ok := obj["$id"]; ok && hasKeyword(sc.dialect, "$id") {
			return r.enterChild(ctx, obj, raw, sc, ptr)
		}
	}
	d := sc.dialect
	if d == nil {
		return nil
	}
	if raw, ok := obj["$anchor"]; ok && hasKeyword(d, "$anchor") {
		if err := addAnchor(sc, sc.anchors, "$anchor", raw, ptr); err != nil {
			return err
		}
	}
	if raw, ok := obj["$dynamicAnchor"]; ok && hasKeyword(d, "$dynamicAnchor") {
		if err := addAnchor(sc, sc.dynamicAnchors, "$dynamicAnchor", raw, ptr); err != nil {
			return err
		}
	}
	if raw, ok := obj["$recursiveAnchor"]; ok && hasKeyword(d, "$recursiveAnchor") {
		v, ok := raw.(bool)
		if !ok {
			return &schemaerrors.CompileError{Location: sc.at(ptr, nil).String(), Keyword: "$recursiveAnchor", Message: "must be a boolean", Cause: schemaerrors.ErrInvalidKeyword}
		}
		if ptr.IsRoot() {
			sc.recursiveAnchor = v
		}
	}

	for _, name := range slices.Sorted(maps.Keys(obj)) {
		kw, ok := d.Lookup(name)
		if !ok || kw.walk == walkNone {
			continue
		}
		b.Push(name)
		err := r.walkValue(ctx, obj[name], kw.walk, sc, b)
		b.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *registry) walkValue(ctx context.Context, v any, shape walkShape, sc *scope, b *jsonptr.Builder) error {
	switch shape {
	case walkSchema:
		if obj, ok := v.(map[string]any); ok {
			return r.walkObject(ctx, obj, sc, b)
		}
	case walkArray:
		arr, _ := v.([]any)
		for i, item := range arr {
			b.PushIndex(i)
			err := r.walkValue(ctx, item, walkSchema, sc, b)
			b.Pop()
			if err != nil {
				return err
			}
		}
	case walkMap:
		m, _ := v.(map[string]any)
		for _, k := range slices.Sorted(maps.Keys(m)) {
			b.Push(k)
			err := r.walkValue(ctx, m[k], walkSchema, sc, b)
			b.Pop()
			if err != nil {
				return err
			}
		}
	case walkSchemaOrArray:
		if _, ok := v.([]any); ok {
			return r.walkValue(ctx, v, walkArray, sc, b)
		}
		return r.walkValue(ctx, v, walkSchema, sc, b)
	}
	return nil
}

// enterChild registers an embedded resource found at ptr within sc.
func (r *registry) enterChild(ctx context.Context, obj map[string]any, rawID any, sc *scope, ptr jsonptr.Pointer) error {
	uri, err := resolveID(rawID, sc.base(), sc.at(ptr, nil))
	if err != nil {
		return err
	}
	where := uri
	d, dURI, err := r.dialectFor(ctx, obj, sc.dialect, sc.dialectURI, where)
	if err != nil {
		return err
	}
	child := r.newScope(sc.origin, sc)
	child.uri = uri
	child.content = obj
	child.pointer = sc.pointer.Concat(ptr)
	child.dialect = d
	child.dialectURI = dURI
	if err := r.index(child); err != nil {
		return err
	}
	sc.children[ptr] = child.id
	r.log.Debug("registered embedded resource", "scope", child.id, "uri", uri, "parent", sc.id, "pointer", ptr.String())

	cb := jsonptr.Get()
	defer jsonptr.Put(cb)
	return r.walkObject(ctx, obj, child, cb)
}

func addAnchor(sc *scope, into map[string]jsonptr.Pointer, keyword string, raw any, ptr jsonptr.Pointer) error {
	name, ok := raw.(string)
	if !ok || !anchorPattern.MatchString(name) {
		return &schemaerrors.CompileError{
			Location: sc.at(ptr, nil).String(),
			Keyword:  keyword,
			Message:  fmt.Sprintf("invalid anchor name %v", raw),
			Cause:    schemaerrors.ErrInvalidKeyword,
		}
	}
	if _, dup := into[name]; dup {
		return &schemaerrors.CompileError{
			Location: sc.at(ptr, nil).String(),
			Keyword:  keyword,
			Message:  name,
			Cause:    schemaerrors.ErrDuplicateAnchor,
		}
	}
	into[name] = ptr
	return nil
}

// descend rebases ptr onto the innermost embedded resource containing it.
func (r *registry) descend(sc *scope, ptr jsonptr.Pointer) (*scope, jsonptr.Pointer) {
	for {
		var best jsonptr.Pointer
		var bestID result.ScopeID
		found := false
		for rel, id := range sc.children {
			if ptr.HasPrefix(rel) && (!found || len(rel) > len(best)) {
				best, bestID, found = rel, id, true
			}
		}
		if !found {
			return sc, ptr
		}
		sc = r.scopes[bestID]
		ptr = ptr.TrimPrefix(best)
	}
}

// childAt returns the embedded resource rooted exactly at ptr within sc.
func (r *registry) childAt(sc *scope, ptr jsonptr.Pointer) (*scope, bool) {
	if ptr.IsRoot() {
		return nil, false
	}
	id, ok := sc.children[ptr]
	if !ok {
		return nil, false
	}
	return r.scopes[id], true
}

// describe lists the registered resources, for diagnostics.
func (r *registry) describe() []string {
	ids := slices.Sorted(maps.Keys(r.scopes))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		sc := r.scopes[id]
		out = append(out, strings.TrimSuffix(sc.at(jsonptr.Root, nil).String(), "#"))
	}
	return out
}
