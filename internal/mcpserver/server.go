// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes jsonschema compilation and validation as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/erraggy/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `jsonschema MCP server: compiles JSON Schema 2019-09 and 2020-12 documents and validates instances against them.

Configuration: defaults are read from JSONSCHEMA_* environment variables set in your MCP client config.

Key settings:
- JSONSCHEMA_DEFAULT_DIALECT (default: 2020-12) - dialect for schemas without $schema
- JSONSCHEMA_FORMAT_ASSERT (default: false) - treat "format" as an assertion
- JSONSCHEMA_CONTENT_ASSERT (default: false) - assert the content keywords
- JSONSCHEMA_VALIDATE_LIMIT (default: 100) - default number of errors returned
- JSONSCHEMA_CACHE_ENABLED (default: true) - disable schema caching entirely
- JSONSCHEMA_CACHE_FILE_TTL (default: 15m) - cache TTL for schemas read from disk
- JSONSCHEMA_CACHE_URL_TTL (default: 5m) - cache TTL for schemas fetched by URL
- JSONSCHEMA_ALLOW_PRIVATE_IPS (default: false) - allow fetching from private addresses

Caching: compiled schemas are cached per session. File entries use path+mtime as key, content entries a SHA-256 hash. A background sweeper removes expired entries.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		schemaCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "jsonschema", Version: jsonschema.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate a JSON or YAML instance against a JSON Schema. Returns the verdict and errors with instance and schema locations, kind and message. Use offset/limit to paginate through errors. The dialect for schemas without $schema and format assertion default to JSONSCHEMA_DEFAULT_DIALECT and JSONSCHEMA_FORMAT_ASSERT.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compile",
		Description: "Compile a JSON Schema, resolving every $ref, $dynamicRef and $recursiveRef. Returns the dialect and the schema resources involved, or the compile error with its schema location.",
	}, handleCompile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dialects",
		Description: "List the built-in JSON Schema dialects with their vocabularies and keywords.",
	}, handleDialects)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ValidateLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ValidateLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
