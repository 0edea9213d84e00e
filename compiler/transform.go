package compiler

import (
	"context"
	"math"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/result"
)

// transformContext holds the compiled keywords of one schema object while
// transformers rewrite them.
type transformContext struct {
	actions map[string]*action
	// finishers are registered by keywords that evaluate what their
	// siblings left unevaluated
	finishers map[string]*finisher
	// scratch passes compile-time facts between sibling keywords
	scratch map[string]any
}

// take removes the named actions and returns those present, in the order
// given.
func (tc *transformContext) take(names ...string) []*action {
	var out []*action
	for _, name := range names {
		if a, ok := tc.actions[name]; ok {
			out = append(out, a)
			delete(tc.actions, name)
		}
	}
	return out
}

// transformer rewrites the actions of a schema object after all of its
// keywords compiled. Lower orders run first.
type transformer struct {
	name  string
	order int
	apply func(tc *transformContext)
}

// Keywords whose annotations unevaluatedProperties must see.
var propertyEvaluators = []string{
	"$dynamicRef", "$recursiveRef", "$ref",
	"additionalProperties", "allOf", "anyOf", "dependencies", "dependentSchemas",
	"else", "if", "not", "oneOf", "patternProperties", "properties", "then",
}

// Keywords whose annotations unevaluatedItems must see.
var itemEvaluators = []string{
	"$dynamicRef", "$recursiveRef", "$ref",
	"additionalItems", "allOf", "anyOf", "contains", "dependencies", "dependentSchemas",
	"else", "if", "items", "not", "oneOf", "prefixItems", "then",
	"unevaluatedProperties",
}

var (
	conditionalTransformer = &transformer{name: "if", order: 0, apply: applyConditional}

	additionalPropertiesTransformer = &transformer{
		name:  "additionalProperties",
		order: 0,
		apply: func(tc *transformContext) {
			f, ok := tc.finishers["additionalProperties"]
			if !ok {
				return
			}
			if _, ok := tc.actions["additionalProperties"]; !ok {
				return
			}
			f.preferred = tc.take("patternProperties", "properties")
		},
	}

	additionalItemsTransformer = &transformer{
		name:  "additionalItems",
		order: 1,
		apply: func(tc *transformContext) {
			if _, ok := tc.actions["additionalItems"]; !ok {
				return
			}
			if isArray, _ := tc.scratch[scratchItemsArray].(bool); !isArray {
				delete(tc.actions, "additionalItems")
				return
			}
			tc.finishers["additionalItems"].preferred = tc.take("items")
		},
	}

	unevaluatedPropertiesTransformer = &transformer{
		name:  "unevaluatedProperties",
		order: math.MaxInt - 1,
		apply: func(tc *transformContext) {
			if _, ok := tc.actions["unevaluatedProperties"]; !ok {
				return
			}
			tc.finishers["unevaluatedProperties"].preferred = tc.take(propertyEvaluators...)
		},
	}

	unevaluatedItemsTransformer = &transformer{
		name:  "unevaluatedItems",
		order: math.MaxInt,
		apply: func(tc *transformContext) {
			if _, ok := tc.actions["unevaluatedItems"]; !ok {
				return
			}
			tc.finishers["unevaluatedItems"].preferred = tc.take(itemEvaluators...)
		},
	}
)

// applyConditional folds if, then and else into one action on "if". Without
// "if", then and else are dropped.
func applyConditional(tc *transformContext) {
	cond, ok := tc.actions["if"]
	if !ok {
		delete(tc.actions, "then")
		delete(tc.actions, "else")
		return
	}
	var thenV, elseV Validator
	if a, ok := tc.actions["then"]; ok {
		thenV = a.validator
		delete(tc.actions, "then")
	}
	if a, ok := tc.actions["else"]; ok {
		elseV = a.validator
		delete(tc.actions, "else")
	}
	ifV := cond.validator
	loc := cond.loc
	cond.validator = func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result {
		test := ifV(ctx, inst, at, st)
		var out []*result.Result
		if allOK(test) {
			out = append(out, test...)
			if thenV != nil {
				out = append(out, thenV(ctx, inst, at, st)...)
			}
		} else if elseV != nil {
			out = append(out, elseV(ctx, inst, at, st)...)
		}
		return []*result.Result{result.Container(result.ID{Schema: loc, Instance: at}, out...)}
	}
}
