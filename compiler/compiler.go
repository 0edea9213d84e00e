package compiler

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// session is the state of one compilation. It is used from a single
// goroutine.
type session struct {
	ctx   context.Context
	cfg   *compileConfig
	reg   *registry
	log   Logger
	guard map[guardKey]*guardEntry
	// transformers are cached per dialect
	transformers map[*dialectOf][]*transformer
}

// guardKey identifies one compiled copy of a location: the location plus the
// resources of its dynamic scope that can redirect $dynamicRef and
// $recursiveRef.
type guardKey struct {
	loc     result.LocatorKey
	dynamic string
}

// guardEntry records how a location has been reached so far.
type guardEntry struct {
	cell  *cell
	edges map[result.LocatorKey]struct{}
}

func newSession(ctx context.Context, cfg *compileConfig, reg *registry) *session {
	return &session{
		ctx:          ctx,
		cfg:          cfg,
		reg:          reg,
		log:          cfg.logger,
		guard:        make(map[guardKey]*guardEntry),
		transformers: make(map[*dialectOf][]*transformer),
	}
}

// compile compiles the schema node found at loc. The first visit of a
// location in a dynamic scope yields a placeholder cell. Reaching it again
// in the same dynamic scope over an edge already taken returns that cell and
// marks it recursive, which ends compilation of cyclic schemas. Other repeat
// visits compile a fresh copy, so that dynamic references see the scope
// chain they were reached through.
func (s *session) compile(node any, loc result.Locator) (Validator, error) {
	key := guardKey{loc: loc.Key(), dynamic: s.dynamicScope(loc)}
	edge := loc.Key()
	if loc.Parent != nil {
		edge = loc.Parent.Key()
	}
	if entry, ok := s.guard[key]; ok {
		if _, seen := entry.edges[edge]; seen {
			if !entry.cell.recursive {
				s.log.Debug("recursive schema location", "location", loc.String())
			}
			entry.cell.recursive = true
			return entry.cell.invoke, nil
		}
		entry.edges[edge] = struct{}{}
		return s.compileNode(node, loc)
	}
	c := &cell{loc: loc}
	s.guard[key] = &guardEntry{cell: c, edges: map[result.LocatorKey]struct{}{edge: {}}}
	v, err := s.compileNode(node, loc)
	if err != nil {
		return nil, err
	}
	c.target = v
	return c.invoke, nil
}

// dynamicScope lists the resources on the parent chain of loc that declare
// a $dynamicAnchor or set $recursiveAnchor, outermost first and without
// repeats. Dynamic references resolve the same way for equal lists.
func (s *session) dynamicScope(loc result.Locator) string {
	var ids []result.ScopeID
	for p := loc.Parent; p != nil; p = p.Parent {
		if sc := s.reg.scope(p.Scope); sc != nil && (len(sc.dynamicAnchors) > 0 || sc.recursiveAnchor) {
			ids = append(ids, p.Scope)
		}
	}
	var b strings.Builder
	seen := make(map[result.ScopeID]bool, len(ids))
	for _, id := range slices.Backward(ids) {
		if seen[id] {
			continue
		}
		seen[id] = true
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	return b.String()
}

func (s *session) compileNode(node any, loc result.Locator) (Validator, error) {
	switch v := node.(type) {
	case bool:
		if v {
			return okValidator(loc), nil
		}
		return falseValidator(loc), nil
	case map[string]any:
		return s.compileObject(v, loc)
	}
	return nil, &schemaerrors.CompileError{
		Location: loc.String(),
		Message:  fmt.Sprintf("schema must be an object or a boolean, got %s", jsonvalue.TypeName(node)),
		Cause:    schemaerrors.ErrInvalidKeyword,
	}
}

// compileObject compiles every known keyword of obj, lets the transformers
// rewrite the result, and returns a validator aggregating what is left.
func (s *session) compileObject(obj map[string]any, loc result.Locator) (Validator, error) {
	sc := s.reg.scope(loc.Scope)
	if child, ok := s.reg.childAt(sc, loc.Pointer); ok {
		parent := loc
		loc = child.at(jsonptr.Root, &parent)
		sc = child
	}
	d := sc.dialect
	if d == nil {
		return nil, &schemaerrors.CompileError{Location: loc.String(), Message: "schema object has no dialect", Cause: schemaerrors.ErrNoDialect}
	}

	type pending struct {
		name string
		kw   *keyword
	}
	var todo []pending
	for _, name := range slices.Sorted(maps.Keys(obj)) {
		kw, ok := d.Lookup(name)
		if !ok {
			continue
		}
		todo = append(todo, pending{name: name, kw: kw})
	}
	slices.SortStableFunc(todo, func(a, b pending) int {
		return a.kw.order - b.kw.order
	})

	tc := &transformContext{
		actions:   make(map[string]*action, len(todo)),
		finishers: make(map[string]*finisher),
		scratch:   make(map[string]any),
	}
	for _, p := range todo {
		kc := &keywordContext{
			s:       s,
			loc:     loc.Append(p.name),
			keyword: p.name,
			obj:     obj,
			scope:   sc,
			tc:      tc,
		}
		v, err := p.kw.compile(kc, obj[p.name])
		if err != nil {
			return nil, err
		}
		if v != nil {
			tc.actions[p.name] = &action{keyword: p.name, loc: kc.loc, validator: v}
		}
	}

	for _, t := range s.transformersFor(d) {
		t.apply(tc)
	}

	names := slices.Sorted(maps.Keys(tc.actions))
	if len(names) == 0 {
		return okValidator(loc), nil
	}
	acts := make([]*action, len(names))
	for i, name := range names {
		acts[i] = tc.actions[name]
	}
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		out := make([]*result.Result, 0, len(acts))
		for _, a := range acts {
			out = append(out, a.validator(ctx, inst, at, st)...)
		}
		return []*result.Result{result.Container(result.ID{Schema: loc, Instance: at}, out...)}
	}, nil
}

// transformersFor returns the dialect's transformers in application order.
func (s *session) transformersFor(d *dialectOf) []*transformer {
	if ts, ok := s.transformers[d]; ok {
		return ts
	}
	seen := make(map[*transformer]bool)
	var ts []*transformer
	for _, kw := range d.Keywords() {
		if kw.transform != nil && !seen[kw.transform] {
			seen[kw.transform] = true
			ts = append(ts, kw.transform)
		}
	}
	slices.SortFunc(ts, func(a, b *transformer) int {
		if a.order != b.order {
			if a.order < b.order {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	s.transformers[d] = ts
	return ts
}

// keywordContext is what a keyword compiler sees.
type keywordContext struct {
	s       *session
	loc     result.Locator
	keyword string
	// obj is the schema object holding the keyword
	obj   map[string]any
	scope *scope
	tc    *transformContext
}

// sub compiles a subschema at a location below the keyword.
func (kc *keywordContext) sub(node any, loc result.Locator) (Validator, error) {
	return kc.s.compile(node, loc)
}

// sibling returns the value of another keyword in the same object.
func (kc *keywordContext) sibling(name string) (any, bool) {
	v, ok := kc.obj[name]
	return v, ok
}

// errorf reports an invalid keyword value.
func (kc *keywordContext) errorf(msg string) error {
	return &schemaerrors.CompileError{
		Location: kc.loc.String(),
		Keyword:  kc.keyword,
		Message:  msg,
		Cause:    schemaerrors.ErrInvalidKeyword,
	}
}

// id returns the result id of the keyword for an instance location.
func (kc *keywordContext) id(at jsonptr.Pointer) result.ID {
	return result.ID{Schema: kc.loc, Instance: at}
}
