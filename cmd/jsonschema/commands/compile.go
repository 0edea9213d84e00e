package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/erraggy/jsonschema/internal/cliutil"
)

// CompileFlags contains flags for the compile command
type CompileFlags struct {
	SchemaFlags
}

// SetupCompileFlags creates and configures a FlagSet for the compile command.
func SetupCompileFlags() (*flag.FlagSet, *CompileFlags) {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	flags := &CompileFlags{}

	addSchemaFlags(fs, &flags.SchemaFlags)

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema compile [flags] <schema|url>\n\n")
		cliutil.Writef(fs.Output(), "Compile a JSON Schema, resolving every reference, and report compile errors.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jsonschema compile schema.json\n")
		cliutil.Writef(fs.Output(), "  jsonschema compile -dialect https://json-schema.org/draft/2019-09/schema schema.yaml\n")
	}

	return fs, flags
}

// compileReport is the structured output of the compile command.
type compileReport struct {
	Schema    string   `json:"schema"    yaml:"schema"`
	Dialect   string   `json:"dialect"   yaml:"dialect"`
	Resources []string `json:"resources" yaml:"resources"`
}

// HandleCompile executes the compile command
func HandleCompile(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupCompileFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("compile command requires exactly one schema path or URL")
	}

	if err := cliutil.ValidateOutputFormat(flags.Output); err != nil {
		return err
	}

	path := fs.Arg(0)
	start := time.Now()
	schema, err := compileSchema(path, flags.compileOptions(stderr)...)
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	elapsed := time.Since(start)

	if flags.Quiet {
		return nil
	}
	report := compileReport{Schema: path, Dialect: schema.Dialect(), Resources: schema.Resources()}
	if flags.Output != cliutil.FormatText {
		return cliutil.WriteStructured(stdout, report, flags.Output)
	}

	pal := cliutil.NewPalette(stdout, flags.NoColor)
	cliutil.Writef(stdout, "Schema: %s\n", report.Schema)
	cliutil.Writef(stdout, "Dialect: %s\n", report.Dialect)
	cliutil.Writef(stdout, "Resources (%d):\n", len(report.Resources))
	for _, r := range report.Resources {
		cliutil.Writef(stdout, "  %s\n", pal.Location("%s", r))
	}
	cliutil.Writef(stdout, "%s Schema compiled %s\n", pal.OK("✓"), pal.Muted("(%v)", elapsed.Round(time.Microsecond)))
	return nil
}
