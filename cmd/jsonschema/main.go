package main

import (
	"errors"
	"io"
	"os"

	"github.com/erraggy/jsonschema"
	"github.com/erraggy/jsonschema/cmd/jsonschema/commands"
	"github.com/erraggy/jsonschema/internal/cliutil"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch command := args[0]; command {
	case "version", "-v", "--version":
		cliutil.Writef(stdout, "jsonschema v%s (commit %s)\n", jsonschema.Version(), jsonschema.Commit())
	case "help", "-h", "--help":
		printUsage(stdout)
	case "validate":
		err = commands.HandleValidate(args[1:], stdout, stderr)
	case "compile":
		err = commands.HandleCompile(args[1:], stdout, stderr)
	case "mcp":
		err = commands.HandleMCP(args[1:], stderr)
	default:
		cliutil.Writef(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, commands.ErrValidationFailed):
		return 1
	default:
		cliutil.Writef(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	cliutil.Writef(w, `jsonschema - JSON Schema 2019-09 and 2020-12 validator

Usage:
  jsonschema <command> [flags] [arguments]

Commands:
  validate   Validate instances against a schema
  compile    Compile a schema and report compile errors
  mcp        Run the MCP server over stdio
  version    Show version information
  help       Show this help message

Run 'jsonschema <command> -h' for command flags.
`)
}
