package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/erraggy/jsonschema/compiler"
	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/result"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	SchemaFlags
	Parallel int
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	addSchemaFlags(fs, &flags.SchemaFlags)
	fs.IntVar(&flags.Parallel, "parallel", -1, "validation workers: 0 validates inline, -1 uses GOMAXPROCS")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: jsonschema validate [flags] <schema> <instance|url|->...\n\n")
		cliutil.Writef(fs.Output(), "Validate one or more instances against a JSON Schema.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  jsonschema validate schema.json instance.json\n")
		cliutil.Writef(fs.Output(), "  jsonschema validate -format-assert schema.yaml a.json b.json\n")
		cliutil.Writef(fs.Output(), "  cat instance.json | jsonschema validate -o json schema.json -\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Every instance is valid\n")
		cliutil.Writef(fs.Output(), "  1    An instance is invalid, or the schema failed to compile\n")
	}

	return fs, flags
}

// instanceReport is the structured output for one instance.
type instanceReport struct {
	Instance string              `json:"instance"         yaml:"instance"`
	Valid    bool                `json:"valid"            yaml:"valid"`
	Errors   []result.OutputUnit `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupValidateFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("validate command requires a schema and at least one instance")
	}

	if err := cliutil.ValidateOutputFormat(flags.Output); err != nil {
		return err
	}

	opts := append(flags.compileOptions(stderr), compiler.WithScheduler(schedulerFor(flags.Parallel)))
	schema, err := compileSchema(fs.Arg(0), opts...)
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	ctx := context.Background()
	pal := cliutil.NewPalette(stdout, flags.NoColor)
	reports := make([]instanceReport, 0, fs.NArg()-1)
	failed := false
	for _, path := range fs.Args()[1:] {
		inst, err := loadInstance(ctx, path, stdinReader)
		if err != nil {
			return fmt.Errorf("loading instance %s: %w", displayPath(path), err)
		}
		start := time.Now()
		res, err := schema.ApplyContext(ctx, inst)
		if err != nil {
			return fmt.Errorf("validating %s: %w", displayPath(path), err)
		}
		elapsed := time.Since(start)

		out := res.Basic()
		failed = failed || !out.Valid
		reports = append(reports, instanceReport{Instance: displayPath(path), Valid: out.Valid, Errors: out.Errors})

		if flags.Output != cliutil.FormatText || flags.Quiet {
			continue
		}
		writeTextReport(stdout, pal, displayPath(path), res, elapsed)
	}

	if flags.Output != cliutil.FormatText && !flags.Quiet {
		if err := cliutil.WriteStructured(stdout, reports, flags.Output); err != nil {
			return err
		}
	}

	if failed {
		return ErrValidationFailed
	}
	return nil
}

// writeTextReport prints one instance verdict followed by its errors.
func writeTextReport(w io.Writer, pal cliutil.Palette, path string, res *result.Result, elapsed time.Duration) {
	errs := res.Errors()
	if len(errs) == 0 {
		cliutil.Writef(w, "%s %s %s\n", pal.OK("✓"), path, pal.Muted("(%v)", elapsed.Round(time.Microsecond)))
		return
	}
	cliutil.Writef(w, "%s %s: %d error(s): %s\n", pal.Fail("✗"), path, len(errs), kindSummary(errs))
	for _, e := range errs {
		cliutil.Writef(w, "  %s: %s %s\n", pal.Location("%s", instanceLocation(e)), e.Message(), pal.Muted("[%s at %s]", kindTitle(e.Code), e.ID.Schema.String()))
	}
}
