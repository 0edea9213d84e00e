package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/jsonschema/compiler"
)

type dialectsInput struct {
	Dialect string `json:"dialect,omitempty" jsonschema:"Only describe this dialect URI"`
}

type dialectSummary struct {
	URI          string                    `json:"uri"`
	Default      bool                      `json:"default,omitempty"`
	Vocabularies []compiler.VocabularyInfo `json:"vocabularies"`
}

type dialectsOutput struct {
	Dialects []dialectSummary `json:"dialects"`
}

func handleDialects(_ context.Context, _ *mcp.CallToolRequest, input dialectsInput) (*mcp.CallToolResult, dialectsOutput, error) {
	uris := compiler.Dialects()
	if input.Dialect != "" {
		uris = []string{input.Dialect}
	}
	var output dialectsOutput
	for _, uri := range uris {
		vocabs, err := compiler.DescribeDialect(uri)
		if err != nil {
			return errResult(err), dialectsOutput{}, nil
		}
		output.Dialects = append(output.Dialects, dialectSummary{
			URI:          uri,
			Default:      uri == cfg.DefaultDialect,
			Vocabularies: vocabs,
		})
	}
	return nil, output, nil
}
