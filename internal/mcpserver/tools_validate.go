package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/jsonschema/dialect"
)

type validateInput struct {
	Schema        documentInput `json:"schema"                   jsonschema:"The JSON Schema to validate against"`
	Instance      documentInput `json:"instance"                 jsonschema:"The JSON or YAML instance to validate"`
	Dialect       string        `json:"dialect,omitempty"        jsonschema:"Dialect URI for schemas without $schema"`
	FormatAssert  *bool         `json:"format_assert,omitempty"  jsonschema:"Treat format as an assertion"`
	ContentAssert *bool         `json:"content_assert,omitempty" jsonschema:"Assert contentEncoding, contentMediaType and contentSchema"`
	Offset        int           `json:"offset,omitempty"         jsonschema:"Skip the first N errors (for pagination)"`
	Limit         int           `json:"limit,omitempty"          jsonschema:"Maximum number of errors to return (default 100)"`
}

type validateIssue struct {
	Instance string `json:"instance"`
	Schema   string `json:"schema"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

type validateOutput struct {
	Valid      bool            `json:"valid"`
	Dialect    string          `json:"dialect"`
	ErrorCount int             `json:"error_count"`
	Returned   int             `json:"returned"`
	Errors     []validateIssue `json:"errors,omitempty"`
}

// settingsFor applies config defaults when input fields are omitted.
func settingsFor(dialectURI string, formatAssert, contentAssert *bool) compileSettings {
	s := compileSettings{
		Dialect:       cfg.DefaultDialect,
		FormatAssert:  cfg.FormatAssertion,
		ContentAssert: cfg.ContentAssertion,
	}
	if dialectURI != "" {
		s.Dialect = dialect.NormalizeURI(dialectURI)
	}
	if formatAssert != nil {
		s.FormatAssert = *formatAssert
	}
	if contentAssert != nil {
		s.ContentAssert = *contentAssert
	}
	return s
}

func handleValidate(ctx context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	schema, err := input.Schema.compile(ctx, settingsFor(input.Dialect, input.FormatAssert, input.ContentAssert))
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	instance, err := input.Instance.load(ctx)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	res, err := schema.ApplyContext(ctx, instance)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	basic := res.Basic()
	output := validateOutput{
		Valid:      basic.Valid,
		Dialect:    schema.Dialect(),
		ErrorCount: len(basic.Errors),
	}
	page := paginate(basic.Errors, input.Offset, input.Limit)
	if len(page) > 0 {
		output.Errors = make([]validateIssue, 0, len(page))
	}
	for _, e := range page {
		output.Errors = append(output.Errors, validateIssue{
			Instance: e.InstanceLocation,
			Schema:   e.KeywordLocation,
			Kind:     e.Kind,
			Message:  e.Error,
		})
	}
	output.Returned = len(output.Errors)

	return nil, output, nil
}
