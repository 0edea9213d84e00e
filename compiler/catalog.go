package compiler

import (
	"sync"

	"github.com/erraggy/jsonschema/dialect"
)

// vocabularies lists the keywords of every built-in vocabulary.
var vocabularies = map[string][]*keyword{
	dialect.Vocab202012Core: {
		kwID, kwSchema, kwRef, kwAnchor, kwDynamicRef, kwDynamicAnchor, kwVocabulary, kwComment, kwDefs,
	},
	dialect.Vocab202012Applicator: {
		kwPrefixItems, kwItems, kwContains, kwAdditionalProperties, kwProperties, kwPatternProperties,
		kwDependentSchemas, kwPropertyNames, kwIf, kwThen, kwElse, kwAllOf, kwAnyOf, kwOneOf, kwNot,
		kwDependencies,
	},
	dialect.Vocab202012Unevaluated: {
		kwUnevaluatedItems, kwUnevaluatedProperties,
	},
	dialect.Vocab202012Validation:       validationKeywords,
	dialect.Vocab202012FormatAnnotation: {kwFormat},
	dialect.Vocab202012FormatAssertion:  {kwFormat},
	dialect.Vocab202012Content:          contentKeywords,

	dialect.Vocab201909Core: {
		kwID, kwSchema, kwRef, kwAnchor, kwRecursiveRef, kwRecursiveAnchor, kwVocabulary, kwComment, kwDefs,
	},
	dialect.Vocab201909Applicator: {
		kwItems2019, kwAdditionalItems, kwUnevaluatedItems, kwContains, kwAdditionalProperties,
		kwUnevaluatedProperties, kwProperties, kwPatternProperties, kwDependentSchemas, kwPropertyNames,
		kwIf, kwThen, kwElse, kwAllOf, kwAnyOf, kwOneOf, kwNot, kwDependencies,
	},
	dialect.Vocab201909Validation: validationKeywords,
	dialect.Vocab201909Format:     {kwFormat},
	dialect.Vocab201909Content:    contentKeywords,
}

var validationKeywords = []*keyword{
	kwType, kwConst, kwEnum, kwMultipleOf, kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum,
	kwMaxLength, kwMinLength, kwPattern, kwMaxItems, kwMinItems, kwUniqueItems, kwMaxContains, kwMinContains,
	kwMaxProperties, kwMinProperties, kwRequired, kwDependentRequired,
}

var contentKeywords = []*keyword{kwContentEncoding, kwContentMediaType, kwContentSchema}

func active(uris ...string) []dialect.VocabularyState {
	out := make([]dialect.VocabularyState, len(uris))
	for i, uri := range uris {
		out[i] = dialect.VocabularyState{URI: uri, Active: true}
	}
	return out
}

// catalog is the shared registry of built-in vocabularies and dialects.
// Sessions that add dialects work on a clone.
var catalog = sync.OnceValue(func() *dialect.Registry[*keyword] {
	r := dialect.NewRegistry[*keyword]()
	for uri, kws := range vocabularies {
		for _, kw := range kws {
			r.RegisterCompiler(uri, kw.name, kw)
		}
	}
	metaData := []string{dialect.Vocab202012MetaData, dialect.Vocab201909MetaData}
	for _, uri := range metaData {
		for _, name := range metaDataKeywords {
			r.RegisterCompiler(uri, name, &keyword{name: name, compile: compileNothing})
		}
	}
	must(r.RegisterDialect(dialect.Draft202012, active(
		dialect.Vocab202012Core,
		dialect.Vocab202012Applicator,
		dialect.Vocab202012Unevaluated,
		dialect.Vocab202012Validation,
		dialect.Vocab202012MetaData,
		dialect.Vocab202012FormatAnnotation,
		dialect.Vocab202012Content,
	)...))
	must(r.RegisterDialect(dialect.Draft201909, active(
		dialect.Vocab201909Core,
		dialect.Vocab201909Applicator,
		dialect.Vocab201909Validation,
		dialect.Vocab201909MetaData,
		dialect.Vocab201909Format,
		dialect.Vocab201909Content,
	)...))
	return r
})

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Dialects returns the URIs of the built-in dialects.
func Dialects() []string {
	return []string{dialect.Draft202012, dialect.Draft201909}
}

// VocabularyInfo describes one vocabulary of a dialect.
type VocabularyInfo struct {
	URI      string   `json:"uri"`
	Keywords []string `json:"keywords"`
}

// DescribeDialect lists the active vocabularies of a built-in dialect and
// the keywords each one defines.
func DescribeDialect(uri string) ([]VocabularyInfo, error) {
	cat := catalog()
	d, err := cat.Resolve(dialect.NormalizeURI(uri))
	if err != nil {
		return nil, err
	}
	var out []VocabularyInfo
	for _, s := range d.Vocabularies() {
		if !s.Active {
			continue
		}
		if v, ok := cat.Vocabulary(s.URI); ok {
			out = append(out, VocabularyInfo{URI: s.URI, Keywords: v.Keywords()})
		}
	}
	return out, nil
}
