package compiler

import (
	"context"
	"fmt"
	"maps"
	"math/big"
	"slices"
	"unicode/utf8"

	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/internal/jsonvalue"
	"github.com/erraggy/jsonschema/result"
)

var typeNames = []string{"array", "boolean", "integer", "null", "number", "object", "string"}

// check builds a validator from a predicate on one kind of instance.
// Instances of other kinds pass.
func check(loc result.Locator, kind jsonvalue.Kind, fn func(inst any, id result.ID) *result.Result) Validator {
	return func(_ context.Context, inst any, at jsonptr.Pointer, _ *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		if kind != jsonvalue.Invalid && jsonvalue.KindOf(inst) != kind {
			return []*result.Result{result.OK(id)}
		}
		if r := fn(inst, id); r != nil {
			return []*result.Result{r}
		}
		return []*result.Result{result.OK(id)}
	}
}

func compileType(kc *keywordContext, value any) (Validator, error) {
	var types []string
	switch v := value.(type) {
	case string:
		types = []string{v}
	case []any:
		var ok bool
		if types, ok = jsonvalue.Strings(v); !ok || len(types) == 0 {
			return nil, kc.errorf("must be a type name or a non-empty array of type names")
		}
	default:
		return nil, kc.errorf("must be a type name or an array of type names")
	}
	for _, t := range types {
		if !slices.Contains(typeNames, t) {
			return nil, kc.errorf("unknown type " + t)
		}
	}
	return check(kc.loc, jsonvalue.Invalid, func(inst any, id result.ID) *result.Result {
		name := jsonvalue.TypeName(inst)
		for _, t := range types {
			if t == name || (t == "number" && name == "integer") {
				return nil
			}
		}
		return result.Fail(id, result.ErrType, name, types)
	}), nil
}

func compileConst(kc *keywordContext, value any) (Validator, error) {
	text := jsonvalue.Format(value)
	return check(kc.loc, jsonvalue.Invalid, func(inst any, id result.ID) *result.Result {
		if jsonvalue.Equal(inst, value) {
			return nil
		}
		return result.Fail(id, result.ErrConst, text)
	}), nil
}

func compileEnum(kc *keywordContext, value any) (Validator, error) {
	values, ok := value.([]any)
	if !ok {
		return nil, kc.errorf("must be an array")
	}
	text := jsonvalue.Format(values)
	return check(kc.loc, jsonvalue.Invalid, func(inst any, id result.ID) *result.Result {
		for _, v := range values {
			if jsonvalue.Equal(inst, v) {
				return nil
			}
		}
		return result.Fail(id, result.ErrEnum, text)
	}), nil
}

func (kc *keywordContext) number(value any) (*big.Rat, error) {
	r, ok := jsonvalue.Rat(value)
	switch {
	case ok:
		return r, nil
	case jsonvalue.KindOf(value) == jsonvalue.Number:
		return nil, kc.errorf(fmt.Sprintf("must be a number of magnitude within 1e%d", jsonvalue.MaxExponent))
	}
	return nil, kc.errorf("must be a number")
}

func compileMultipleOf(kc *keywordContext, value any) (Validator, error) {
	divisor, err := kc.number(value)
	if err != nil {
		return nil, err
	}
	if divisor.Sign() <= 0 {
		return nil, kc.errorf("must be greater than 0")
	}
	text := jsonvalue.Format(value)
	return check(kc.loc, jsonvalue.Number, func(inst any, id result.ID) *result.Result {
		multiple, ok := jsonvalue.MultipleOf(inst, divisor)
		if !ok {
			return result.Fail(id, result.ErrNumber, jsonvalue.Format(inst))
		}
		if multiple {
			return nil
		}
		return result.Fail(id, result.ErrMultipleOf, jsonvalue.Format(inst), text)
	}), nil
}

// compileBound builds maximum, minimum and their exclusive forms. pass
// receives the comparison of instance against the bound.
func compileBound(code result.ErrorKind, pass func(cmp int) bool) compileFunc {
	return func(kc *keywordContext, value any) (Validator, error) {
		bound, err := kc.number(value)
		if err != nil {
			return nil, err
		}
		text := jsonvalue.Format(value)
		return check(kc.loc, jsonvalue.Number, func(inst any, id result.ID) *result.Result {
			cmp, ok := jsonvalue.Compare(inst, bound)
			if !ok {
				return result.Fail(id, result.ErrNumber, jsonvalue.Format(inst))
			}
			if pass(cmp) {
				return nil
			}
			return result.Fail(id, code, jsonvalue.Format(inst), text)
		}), nil
	}
}

func (kc *keywordContext) count(value any) (int, error) {
	n, ok := jsonvalue.NonNegativeInt(value)
	if !ok {
		return 0, kc.errorf("must be a non-negative integer")
	}
	return n, nil
}

// compileLimit builds the size keywords. size measures the instance, which
// is of the given kind; pass compares the size to the limit.
func compileLimit(kind jsonvalue.Kind, code result.ErrorKind, size func(any) int, pass func(size, limit int) bool) compileFunc {
	return func(kc *keywordContext, value any) (Validator, error) {
		limit, err := kc.count(value)
		if err != nil {
			return nil, err
		}
		return check(kc.loc, kind, func(inst any, id result.ID) *result.Result {
			n := size(inst)
			if pass(n, limit) {
				return nil
			}
			return result.Fail(id, code, n, limit)
		}), nil
	}
}

func runeCount(v any) int   { return utf8.RuneCountInString(v.(string)) }
func arrayLen(v any) int    { return len(v.([]any)) }
func objectLen(v any) int   { return len(v.(map[string]any)) }
func atMost(n, l int) bool  { return n <= l }
func atLeast(n, l int) bool { return n >= l }

func compilePattern(kc *keywordContext, value any) (Validator, error) {
	pattern, ok := value.(string)
	if !ok {
		return nil, kc.errorf("must be a string")
	}
	match, err := kc.s.cfg.regexFactory(pattern)
	if err != nil {
		return nil, kc.errorf("invalid pattern: " + err.Error())
	}
	return check(kc.loc, jsonvalue.String, func(inst any, id result.ID) *result.Result {
		if match(inst.(string)) {
			return nil
		}
		return result.Fail(id, result.ErrPattern, inst, pattern)
	}), nil
}

func compileUniqueItems(kc *keywordContext, value any) (Validator, error) {
	unique, ok := value.(bool)
	if !ok {
		return nil, kc.errorf("must be a boolean")
	}
	if !unique {
		return nil, nil
	}
	return check(kc.loc, jsonvalue.Array, func(inst any, id result.ID) *result.Result {
		arr := inst.([]any)
		for i := range arr {
			for j := i + 1; j < len(arr); j++ {
				if jsonvalue.Equal(arr[i], arr[j]) {
					return result.Fail(id, result.ErrUniqueItems, i, j)
				}
			}
		}
		return nil
	}), nil
}

// compileContainsLimit records minContains or maxContains for "contains".
func compileContainsLimit(key string) compileFunc {
	return func(kc *keywordContext, value any) (Validator, error) {
		n, err := kc.count(value)
		if err != nil {
			return nil, err
		}
		kc.tc.scratch[key] = n
		return nil, nil
	}
}

func compileRequired(kc *keywordContext, value any) (Validator, error) {
	names, ok := jsonvalue.Strings(value)
	if !ok {
		return nil, kc.errorf("must be an array of strings")
	}
	loc := kc.loc
	return func(_ context.Context, inst any, at jsonptr.Pointer, _ *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		var out []*result.Result
		for _, name := range names {
			if _, ok := obj[name]; !ok {
				out = append(out, result.Fail(id, result.ErrRequired, name))
			}
		}
		if len(out) == 0 {
			return []*result.Result{result.OK(id)}
		}
		return out
	}, nil
}

func compileDependentRequired(kc *keywordContext, value any) (Validator, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, kc.errorf("must be an object")
	}
	deps := make(map[string][]string, len(m))
	for name, v := range m {
		list, ok := jsonvalue.Strings(v)
		if !ok {
			return nil, kc.errorf("dependency " + name + " must be an array of strings")
		}
		deps[name] = list
	}
	names := slices.Sorted(maps.Keys(deps))
	loc := kc.loc
	return func(_ context.Context, inst any, at jsonptr.Pointer, _ *evalState) []*result.Result {
		id := result.ID{Schema: loc, Instance: at}
		obj, ok := inst.(map[string]any)
		if !ok {
			return []*result.Result{result.OK(id)}
		}
		var out []*result.Result
		for _, name := range names {
			if _, ok := obj[name]; !ok {
				continue
			}
			for _, dep := range deps[name] {
				if _, ok := obj[dep]; !ok {
					out = append(out, result.Fail(id, result.ErrDependentRequired, name, dep))
				}
			}
		}
		if len(out) == 0 {
			return []*result.Result{result.OK(id)}
		}
		return out
	}, nil
}

var (
	kwType              = &keyword{name: "type", compile: compileType}
	kwConst             = &keyword{name: "const", compile: compileConst}
	kwEnum              = &keyword{name: "enum", compile: compileEnum}
	kwMultipleOf        = &keyword{name: "multipleOf", compile: compileMultipleOf}
	kwMaximum           = &keyword{name: "maximum", compile: compileBound(result.ErrMaximum, func(c int) bool { return c <= 0 })}
	kwExclusiveMaximum  = &keyword{name: "exclusiveMaximum", compile: compileBound(result.ErrExclusiveMaximum, func(c int) bool { return c < 0 })}
	kwMinimum           = &keyword{name: "minimum", compile: compileBound(result.ErrMinimum, func(c int) bool { return c >= 0 })}
	kwExclusiveMinimum  = &keyword{name: "exclusiveMinimum", compile: compileBound(result.ErrExclusiveMinimum, func(c int) bool { return c > 0 })}
	kwMaxLength         = &keyword{name: "maxLength", compile: compileLimit(jsonvalue.String, result.ErrMaxLength, runeCount, atMost)}
	kwMinLength         = &keyword{name: "minLength", compile: compileLimit(jsonvalue.String, result.ErrMinLength, runeCount, atLeast)}
	kwPattern           = &keyword{name: "pattern", compile: compilePattern}
	kwMaxItems          = &keyword{name: "maxItems", compile: compileLimit(jsonvalue.Array, result.ErrMaxItems, arrayLen, atMost)}
	kwMinItems          = &keyword{name: "minItems", compile: compileLimit(jsonvalue.Array, result.ErrMinItems, arrayLen, atLeast)}
	kwUniqueItems       = &keyword{name: "uniqueItems", compile: compileUniqueItems}
	kwMaxContains       = &keyword{name: "maxContains", compile: compileContainsLimit(scratchMaxContains)}
	kwMinContains       = &keyword{name: "minContains", compile: compileContainsLimit(scratchMinContains)}
	kwMaxProperties     = &keyword{name: "maxProperties", compile: compileLimit(jsonvalue.Object, result.ErrMaxProperties, objectLen, atMost)}
	kwMinProperties     = &keyword{name: "minProperties", compile: compileLimit(jsonvalue.Object, result.ErrMinProperties, objectLen, atLeast)}
	kwRequired          = &keyword{name: "required", compile: compileRequired}
	kwDependentRequired = &keyword{name: "dependentRequired", compile: compileDependentRequired}
)
