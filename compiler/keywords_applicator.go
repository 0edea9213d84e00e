package compiler

import (
	"context"
	"maps"
	"slices"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
)

// scratch keys shared between sibling keywords
const (
	scratchPrefixItems = "prefixItems"
	scratchItemsArray  = "itemsArray"
	scratchMinContains = "minContains"
	scratchMaxContains = "maxContains"
)

// subschemas compiles a non-empty array of subschemas.
func (kc *keywordContext) subschemas(value any) ([]Validator, error) {
	arr, ok := value.([]any)
	if !ok || len(arr) == 0 {
		return nil, kc.errorf("must be a non-empty array of schemas")
	}
	vs := make([]Validator, len(arr))
	for i, item := range arr {
		v, err := kc.sub(item, kc.loc.AppendIndex(i))
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// subschemaMap compiles an object whose values are subschemas. The names
// are returned sorted.
func (kc *keywordContext) subschemaMap(value any) ([]string, map[string]Validator, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, nil, kc.errorf("must be an object")
	}
	names := slices.Sorted(maps.Keys(m))
	vs := make(map[string]Validator, len(m))
	for _, name := range names {
		v, err := kc.sub(m[name], kc.loc.Append(name))
		if err != nil {
			return nil, nil, err
		}
		vs[name] = v
	}
	return names, vs, nil
}

func flatten(branches [][]*result.Result) []*result.Result {
	var out []*result.Result
	for _, b := range branches {
		out = append(out, b...)
	}
	return out
}

func compileAllOf(kc *keywordContext, value any) (Validator, error) {
	vs, err := kc.subschemas(value)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		branches := fanOut(ctx, st, len(vs), func(i int) []*result.Result {
			return vs[i](ctx, inst, at, st)
		})
		return []*result.Result{result.Container(result.ID{Schema: loc, Instance: at}, flatten(branches)...)}
	}, nil
}

// passing keeps the branches that ran and passed.
func passing(branches [][]*result.Result) ([]*result.Result, int) {
	var out []*result.Result
	n := 0
	for _, b := range branches {
		if b == nil || !allOK(b) {
			continue
		}
		n++
		out = append(out, b...)
	}
	return out, n
}

func compileAnyOf(kc *keywordContext, value any) (Validator, error) {
	vs, err := kc.subschemas(value)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		branches := fanOut(ctx, st, len(vs), func(i int) []*result.Result {
			return vs[i](ctx, inst, at, st)
		})
		ok, n := passing(branches)
		if n == 0 {
			return []*result.Result{result.Fail(id, result.ErrAnyOf)}
		}
		return []*result.Result{result.Container(id, ok...)}
	}, nil
}

func compileOneOf(kc *keywordContext, value any) (Validator, error) {
	vs, err := kc.subschemas(value)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		branches := fanOut(ctx, st, len(vs), func(i int) []*result.Result {
			return vs[i](ctx, inst, at, st)
		})
		ok, n := passing(branches)
		switch {
		case n == 0:
			return []*result.Result{result.Fail(id, result.ErrOneOfEmpty)}
		case n > 1:
			return []*result.Result{result.Fail(id, result.ErrOneOfMoreThanOne, n)}
		}
		return []*result.Result{result.Container(id, ok...)}
	}, nil
}

func compileNot(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		if allOK(v(ctx, inst, at, st)) {
			return []*result.Result{result.Fail(id, result.ErrNot)}
		}
		return []*result.Result{result.OK(id)}
	}, nil
}

// compileBranch compiles if, then and else. The conditional transformer
// combines them.
func compileBranch(kc *keywordContext, value any) (Validator, error) {
	return kc.sub(value, kc.loc)
}

// applyItems applies pick(i) to every array element from start on. Valid
// elements are annotated as evaluated.
func applyItems(loc result.Locator, start int, pick func(i int) Validator) Validator {
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		arr, ok := inst.([]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		var idx []int
		for i := start; i < len(arr); i++ {
			if pick(i) != nil {
				idx = append(idx, i)
			}
		}
		branches := fanOut(ctx, st, len(idx), func(k int) []*result.Result {
			i := idx[k]
			ptr := at.AppendIndex(i)
			rs := pick(i)(ctx, arr[i], ptr, st)
			if allOK(rs) {
				rs = append(rs, result.Annotation(result.ID{Schema: loc, Instance: ptr}))
			}
			return rs
		})
		return []*result.Result{result.Container(id, flatten(branches)...)}
	}
}

func positional(vs []Validator) func(i int) Validator {
	return func(i int) Validator {
		if i < len(vs) {
			return vs[i]
		}
		return nil
	}
}

func compilePrefixItems(kc *keywordContext, value any) (Validator, error) {
	vs, err := kc.subschemas(value)
	if err != nil {
		return nil, err
	}
	kc.tc.scratch[scratchPrefixItems] = len(vs)
	return applyItems(kc.loc, 0, positional(vs)), nil
}

// compileItems handles the 2020-12 form: one schema for the elements after
// prefixItems.
func compileItems(kc *keywordContext, value any) (Validator, error) {
	if _, ok := value.([]any); ok {
		return nil, kc.errorf("must be a schema; use prefixItems for tuples")
	}
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	start, _ := kc.tc.scratch[scratchPrefixItems].(int)
	return applyItems(kc.loc, start, func(int) Validator { return v }), nil
}

// compileItems2019 handles the 2019-09 form, where an array of schemas
// validates positionally and leaves the rest to additionalItems.
func compileItems2019(kc *keywordContext, value any) (Validator, error) {
	if _, ok := value.([]any); ok {
		vs, err := kc.subschemas(value)
		if err != nil {
			return nil, err
		}
		kc.tc.scratch[scratchItemsArray] = true
		kc.tc.scratch[scratchPrefixItems] = len(vs)
		return applyItems(kc.loc, 0, positional(vs)), nil
	}
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	return applyItems(kc.loc, 0, func(int) Validator { return v }), nil
}

func compileAdditionalItems(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	return newFinisher(kc, jsonvalue.Array, v).validate, nil
}

func compileContains(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	minimum := 1
	if n, ok := kc.tc.scratch[scratchMinContains].(int); ok {
		minimum = n
	}
	maximum := -1
	if n, ok := kc.tc.scratch[scratchMaxContains].(int); ok {
		maximum = n
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		arr, ok := inst.([]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		branches := fanOut(ctx, st, len(arr), func(i int) []*result.Result {
			return v(ctx, arr[i], at.AppendIndex(i), st)
		})
		var matches []*result.Result
		for i, b := range branches {
			if b != nil && allOK(b) {
				matches = append(matches, result.Annotation(result.ID{Schema: loc, Instance: at.AppendIndex(i)}))
			}
		}
		count := len(matches)
		if count < minimum {
			return []*result.Result{result.Fail(id, result.ErrContainsMin, minimum, count)}
		}
		if maximum >= 0 && count > maximum {
			return []*result.Result{result.Fail(id, result.ErrContainsMax, maximum, count)}
		}
		return []*result.Result{result.Container(id, matches...)}
	}, nil
}

func compileProperties(kc *keywordContext, value any) (Validator, error) {
	names, vs, err := kc.subschemaMap(value)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		var present []string
		for _, name := range names {
			if _, ok := obj[name]; ok {
				present = append(present, name)
			}
		}
		branches := fanOut(ctx, st, len(present), func(i int) []*result.Result {
			name := present[i]
			ptr := at.Append(name)
			rs := vs[name](ctx, obj[name], ptr, st)
			if allOK(rs) {
				rs = append(rs, result.Annotation(result.ID{Schema: loc, Instance: ptr}))
			}
			return rs
		})
		return []*result.Result{result.Container(id, flatten(branches)...)}
	}, nil
}

func compilePatternProperties(kc *keywordContext, value any) (Validator, error) {
	patterns, vs, err := kc.subschemaMap(value)
	if err != nil {
		return nil, err
	}
	matchers := make([]func(string) bool, len(patterns))
	for i, p := range patterns {
		m, err := kc.s.cfg.regexFactory(p)
		if err != nil {
			return nil, kc.errorf("invalid pattern " + p + ": " + err.Error())
		}
		matchers[i] = m
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		type pair struct {
			name    string
			pattern string
		}
		var pairs []pair
		for _, name := range slices.Sorted(maps.Keys(obj)) {
			for i, m := range matchers {
				if m(name) {
					pairs = append(pairs, pair{name: name, pattern: patterns[i]})
				}
			}
		}
		branches := fanOut(ctx, st, len(pairs), func(i int) []*result.Result {
			p := pairs[i]
			ptr := at.Append(p.name)
			rs := vs[p.pattern](ctx, obj[p.name], ptr, st)
			if allOK(rs) {
				rs = append(rs, result.Annotation(result.ID{Schema: loc, Instance: ptr}))
			}
			return rs
		})
		return []*result.Result{result.Container(id, flatten(branches)...)}
	}, nil
}

func compileAdditionalProperties(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	return newFinisher(kc, jsonvalue.Object, v).validate, nil
}

func compilePropertyNames(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	loc := kc.loc
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		names := slices.Sorted(maps.Keys(obj))
		branches := fanOut(ctx, st, len(names), func(i int) []*result.Result {
			return v(ctx, names[i], at.Append(names[i]), st)
		})
		return []*result.Result{result.Container(id, flatten(branches)...)}
	}, nil
}

func compileDependentSchemas(kc *keywordContext, value any) (Validator, error) {
	names, vs, err := kc.subschemaMap(value)
	if err != nil {
		return nil, err
	}
	return dependentApplicator(kc.loc, names, vs, nil), nil
}

// dependentApplicator applies vs[name] to the whole object, and checks
// required[name], for every name present in it.
func dependentApplicator(loc result.Locator, names []string, vs map[string]Validator, required map[string][]string) Validator {
	return func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		var present []string
		for _, name := range names {
			if _, ok := obj[name]; ok {
				present = append(present, name)
			}
		}
		branches := fanOut(ctx, st, len(present), func(i int) []*result.Result {
			name := present[i]
			if v, ok := vs[name]; ok {
				return v(ctx, inst, at, st)
			}
			var out []*result.Result
			for _, dep := range required[name] {
				if _, ok := obj[dep]; !ok {
					out = append(out, result.Fail(id, result.ErrDependencies, name, dep))
				}
			}
			return out
		})
		return []*result.Result{result.Container(id, flatten(branches)...)}
	}
}

// compileDependencies handles the combined form, where each value is either
// a list of required names or a schema.
func compileDependencies(kc *keywordContext, value any) (Validator, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, kc.errorf("must be an object")
	}
	names := slices.Sorted(maps.Keys(m))
	vs := make(map[string]Validator)
	required := make(map[string][]string)
	for _, name := range names {
		if _, isArray := m[name].([]any); isArray {
			deps, ok := jsonvalue.Strings(m[name])
			if !ok {
				return nil, kc.errorf("dependency " + name + " must list property names")
			}
			required[name] = deps
			continue
		}
		v, err := kc.sub(m[name], kc.loc.Append(name))
		if err != nil {
			return nil, err
		}
		vs[name] = v
	}
	return dependentApplicator(kc.loc, names, vs, required), nil
}

func compileUnevaluatedProperties(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	return newFinisher(kc, jsonvalue.Object, v).validate, nil
}

func compileUnevaluatedItems(kc *keywordContext, value any) (Validator, error) {
	v, err := kc.sub(value, kc.loc)
	if err != nil {
		return nil, err
	}
	return newFinisher(kc, jsonvalue.Array, v).validate, nil
}

var (
	kwAllOf                 = &keyword{name: "allOf", compile: compileAllOf, walk: walkArray}
	kwAnyOf                 = &keyword{name: "anyOf", compile: compileAnyOf, walk: walkArray}
	kwOneOf                 = &keyword{name: "oneOf", compile: compileOneOf, walk: walkArray}
	kwNot                   = &keyword{name: "not", compile: compileNot, walk: walkSchema}
	kwIf                    = &keyword{name: "if", compile: compileBranch, walk: walkSchema, transform: conditionalTransformer}
	kwThen                  = &keyword{name: "then", compile: compileBranch, walk: walkSchema, transform: conditionalTransformer}
	kwElse                  = &keyword{name: "else", compile: compileBranch, walk: walkSchema, transform: conditionalTransformer}
	kwPrefixItems           = &keyword{name: "prefixItems", compile: compilePrefixItems, walk: walkArray}
	kwItems                 = &keyword{name: "items", compile: compileItems, walk: walkSchema, order: 1}
	kwItems2019             = &keyword{name: "items", compile: compileItems2019, walk: walkSchemaOrArray}
	kwAdditionalItems       = &keyword{name: "additionalItems", compile: compileAdditionalItems, walk: walkSchema, order: 1, transform: additionalItemsTransformer}
	kwContains              = &keyword{name: "contains", compile: compileContains, walk: walkSchema, order: 1}
	kwProperties            = &keyword{name: "properties", compile: compileProperties, walk: walkMap}
	kwPatternProperties     = &keyword{name: "patternProperties", compile: compilePatternProperties, walk: walkMap}
	kwAdditionalProperties  = &keyword{name: "additionalProperties", compile: compileAdditionalProperties, walk: walkSchema, transform: additionalPropertiesTransformer}
	kwPropertyNames         = &keyword{name: "propertyNames", compile: compilePropertyNames, walk: walkSchema}
	kwDependentSchemas      = &keyword{name: "dependentSchemas", compile: compileDependentSchemas, walk: walkMap}
	kwDependencies          = &keyword{name: "dependencies", compile: compileDependencies, walk: walkMap}
	kwUnevaluatedProperties = &keyword{name: "unevaluatedProperties", compile: compileUnevaluatedProperties, walk: walkSchema, transform: unevaluatedPropertiesTransformer}
	kwUnevaluatedItems      = &keyword{name: "unevaluatedItems", compile: compileUnevaluatedItems, walk: walkSchema, transform: unevaluatedItemsTransformer}
)
