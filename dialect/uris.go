package dialect

// Dialect meta-schema URIs.
const (
	Draft202012 = "https://json-schema.org/draft/2020-12/schema"
	Draft201909 = "https://json-schema.org/draft/2019-09/schema"
)

// 2020-12 vocabulary URIs.
const (
	Vocab202012Core             = "https://json-schema.org/draft/2020-12/vocab/core"
	Vocab202012Applicator       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	Vocab202012Unevaluated      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	Vocab202012Validation       = "https://json-schema.org/draft/2020-12/vocab/validation"
	Vocab202012MetaData         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	Vocab202012FormatAnnotation = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	Vocab202012FormatAssertion  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	Vocab202012Content          = "https://json-schema.org/draft/2020-12/vocab/content"
)

// 2019-09 vocabulary URIs.
const (
	Vocab201909Core       = "https://json-schema.org/draft/2019-09/vocab/core"
	Vocab201909Applicator = "https://json-schema.org/draft/2019-09/vocab/applicator"
	Vocab201909Validation = "https://json-schema.org/draft/2019-09/vocab/validation"
	Vocab201909MetaData   = "https://json-schema.org/draft/2019-09/vocab/meta-data"
	Vocab201909Format     = "https://json-schema.org/draft/2019-09/vocab/format"
	Vocab201909Content    = "https://json-schema.org/draft/2019-09/vocab/content"
)

// formatAssertionVocabularies turn "format" into an assertion when active.
var formatAssertionVocabularies = map[string]bool{
	Vocab202012FormatAssertion: true,
}

// NormalizeURI strips an empty fragment so "…/schema#" and "…/schema" match.
func NormalizeURI(uri string) string {
	for len(uri) > 0 && uri[len(uri)-1] == '#' {
		uri = uri[:len(uri)-1]
	}
	return uri
}
