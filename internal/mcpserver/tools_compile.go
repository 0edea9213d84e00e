package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type compileInput struct {
	Schema        documentInput `json:"schema"                   jsonschema:"The JSON Schema to compile"`
	Dialect       string        `json:"dialect,omitempty"        jsonschema:"Dialect URI for schemas without $schema"`
	FormatAssert  *bool         `json:"format_assert,omitempty"  jsonschema:"Treat format as an assertion, which rejects unknown formats"`
	ContentAssert *bool         `json:"content_assert,omitempty" jsonschema:"Assert the content keywords"`
}

type compileOutput struct {
	Dialect   string   `json:"dialect"`
	Location  string   `json:"location"`
	Resources []string `json:"resources"`
}

func handleCompile(ctx context.Context, _ *mcp.CallToolRequest, input compileInput) (*mcp.CallToolResult, compileOutput, error) {
	schema, err := input.Schema.compile(ctx, settingsFor(input.Dialect, input.FormatAssert, input.ContentAssert))
	if err != nil {
		return errResult(err), compileOutput{}, nil
	}
	return nil, compileOutput{
		Dialect:   schema.Dialect(),
		Location:  schema.Location().String(),
		Resources: schema.Resources(),
	}, nil
}
