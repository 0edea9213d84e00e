package compiler

import (
	"context"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/result"
)

// Validator applies a compiled schema location to an instance found at the
// given instance pointer.
type Validator func(ctx context.Context, inst any, at jsonptr.Pointer, st *evalState) []*result.Result

// compileFunc compiles one keyword value. A nil Validator means the keyword
// contributes nothing at validation time.
type compileFunc func(kc *keywordContext, value any) (Validator, error)

// walkShape tells preprocessing where a keyword holds subschemas.
type walkShape int

const (
	walkNone walkShape = iota
	// walkSchema: the value is a subschema
	walkSchema
	// walkArray: the value is an array of subschemas
	walkArray
	// walkMap: the value maps names to subschemas
	walkMap
	// walkSchemaOrArray: the value is a subschema or an array of them
	walkSchemaOrArray
)

// keyword is the compiler entry registered in a vocabulary.
type keyword struct {
	name    string
	compile compileFunc
	walk    walkShape
	// order places the keyword after its siblings; higher compiles later
	order int
	// transform rewrites the sibling actions after compilation
	transform *transformer
}

// dialectOf is the dialect type the compiler works with.
type dialectOf = dialect.Dialect[*keyword]

// action is one compiled keyword of a schema object.
type action struct {
	keyword   string
	loc       result.Locator
	validator Validator
}

func okValidator(loc result.Locator) Validator {
	return func(_ context.Context, _ any, at jsonptr.Pointer, _ *evalState) []*result.Result {
		return []*result.Result{result.OK(result.ID{Schema: loc, Instance: at})}
	}
}

func falseValidator(loc result.Locator) Validator {
	return func(_ context.Context, _ any, at jsonptr.Pointer, _ *evalState) []*result.Result {
		return []*result.Result{result.Fail(result.ID{Schema: loc, Instance: at}, result.ErrFalseSchema)}
	}
}

// allOK reports whether every result passed.
func allOK(rs []*result.Result) bool {
	for _, r := range rs {
		if r != nil && !r.IsOK() {
			return false
		}
	}
	return true
}
