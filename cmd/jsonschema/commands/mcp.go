package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/internal/mcpserver"
)

// HandleMCP runs the MCP server over stdio until the client disconnects or
// the process is interrupted.
func HandleMCP(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve the validate, compile and dialects tools over the Model Context Protocol (stdio).\n")
		cliutil.Writef(fs.Output(), "Defaults are read from JSONSCHEMA_* environment variables.\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
