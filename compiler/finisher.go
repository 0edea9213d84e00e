package compiler

import (
	"context"
	"maps"
	"slices"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
)

// finisher applies a subschema to the members of an object or array that
// its preferred sibling keywords did not evaluate. The preferred validators
// always run; their annotations decide which members are left.
type finisher struct {
	loc       result.Locator
	shape     jsonvalue.Kind
	preferred []*action
	child     Validator
}

func newFinisher(kc *keywordContext, shape jsonvalue.Kind, child Validator) *finisher {
	f := &finisher{loc: kc.loc, shape: shape, child: child}
	kc.tc.finishers[kc.keyword] = f
	return f
}

func (f *finisher) validate(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
	var out []*result.Result
	for _, p := range f.preferred {
		out = append(out, p.validator(ctx, inst, at, st)...)
	}
	id := result.ID{Schema: f.loc, Instance: at}
	if jsonvalue.KindOf(inst) != f.shape {
		return append(out, result.OK(id))
	}

	evaluated := make(map[string]bool)
	collectEvaluated(out, at, evaluated)

	type member struct {
		ptr   jsonptr.Pointer
		value any
	}
	var rest []member
	switch v := inst.(type) {
	case map[string]any:
		for _, name := range slices.Sorted(maps.Keys(v)) {
			if !evaluated[name] {
				rest = append(rest, member{ptr: at.Append(name), value: v[name]})
			}
		}
	case []any:
		for i, item := range v {
			ptr := at.AppendIndex(i)
			if !evaluated[ptr.Last()] {
				rest = append(rest, member{ptr: ptr, value: item})
			}
		}
	}

	branches := fanOut(ctx, st, len(rest), func(i int) []*result.Result {
		rs := f.child(ctx, rest[i].value, rest[i].ptr, st)
		if allOK(rs) {
			rs = append(rs, result.Annotation(result.ID{Schema: f.loc, Instance: rest[i].ptr}))
		}
		return rs
	})
	var nested []*result.Result
	for _, b := range branches {
		nested = append(nested, b...)
	}
	return append(out, result.Container(id, nested...))
}

// collectEvaluated gathers the members of the instance at "at" that carry an
// annotation. Every container is searched; anyOf, oneOf and not have
// already dropped their failing branches.
func collectEvaluated(rs []*result.Result, at jsonptr.Pointer, into map[string]bool) {
	for _, r := range rs {
		if r == nil {
			continue
		}
		switch r.Kind {
		case result.KindAnnotation:
			if parent, ok := r.ID.Instance.Parent(); ok && parent == at {
				into[r.ID.Instance.Last()] = true
			}
		case result.KindContainer:
			collectEvaluated(r.Nested, at, into)
		}
	}
}
