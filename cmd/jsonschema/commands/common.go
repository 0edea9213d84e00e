// Package commands provides CLI command handlers for jsonschema.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erraggy/jsonschema/compiler"
	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/internal/cliutil"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/scheduler"
)

// ErrValidationFailed is returned when at least one instance is invalid. The
// report has already been written, so callers only set the exit code.
var ErrValidationFailed = errors.New("validation failed")

// StdinPath is the special path used to read an instance from stdin.
const StdinPath = "-"

// SchemaFlags are the flags that shape compilation, shared by validate and
// compile.
type SchemaFlags struct {
	Dialect       string
	FormatAssert  bool
	ContentAssert bool
	Output        string
	Quiet         bool
	NoColor       bool
	Verbose       bool
}

func addSchemaFlags(fs *flag.FlagSet, flags *SchemaFlags) {
	fs.StringVar(&flags.Dialect, "dialect", dialect.Draft202012, "dialect for schemas without $schema")
	fs.BoolVar(&flags.FormatAssert, "format-assert", false, "treat \"format\" as an assertion")
	fs.BoolVar(&flags.ContentAssert, "content-assert", false, "assert contentEncoding, contentMediaType and contentSchema")
	fs.StringVar(&flags.Output, "o", cliutil.FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only the exit code reports the outcome")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only the exit code reports the outcome")
	fs.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	fs.BoolVar(&flags.Verbose, "v", false, "log reference resolution and resource loading to stderr")
}

// compileOptions maps the flags to compiler options. Compiler warnings go to
// stderr unless quiet.
func (f *SchemaFlags) compileOptions(stderr io.Writer) []compiler.Option {
	return []compiler.Option{
		compiler.WithDefaultDialect(f.Dialect),
		compiler.WithFormatAssertion(f.FormatAssert),
		compiler.WithContentAssertion(f.ContentAssert),
		compiler.WithLogger(f.logger(stderr)),
	}
}

func (f *SchemaFlags) logger(w io.Writer) compiler.Logger {
	if f.Quiet {
		return compiler.NopLogger{}
	}
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	return compiler.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// schedulerFor returns the scheduler for the -parallel flag: 0 is inline, a
// negative value uses the shared GOMAXPROCS pool.
func schedulerFor(parallel int) scheduler.Scheduler {
	switch {
	case parallel == 0:
		return scheduler.Inline{}
	case parallel < 0:
		return scheduler.Default()
	default:
		return scheduler.NewPool(parallel)
	}
}

// isURL reports whether path names a remote document.
func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// compileSchema compiles the schema at a file path or URL.
func compileSchema(path string, opts ...compiler.Option) (*compiler.Schema, error) {
	if isURL(path) {
		opts = append(opts, compiler.WithURI(path))
	} else {
		opts = append(opts, compiler.WithFilePath(path))
	}
	return compiler.CompileWithOptions(opts...)
}

// instanceLoaders serves instance documents from disk and the network.
var instanceLoaders = loader.NewSet(loader.FileLoader{}, loader.HTTPLoader{})

// loadInstance reads an instance from a file path, a URL or stdin.
func loadInstance(ctx context.Context, path string, stdin io.Reader) (any, error) {
	if path == StdinPath {
		data, err := io.ReadAll(io.LimitReader(stdin, loader.MaxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if int64(len(data)) > loader.MaxFileSize {
			return nil, fmt.Errorf("stdin exceeds %d bytes", loader.MaxFileSize)
		}
		return loader.Decode(data)
	}
	uri := path
	if !isURL(path) {
		var err error
		if uri, err = loader.FileURI(path); err != nil {
			return nil, err
		}
	}
	return instanceLoaders.Load(ctx, uri)
}

// displayPath returns a display-friendly instance path.
func displayPath(path string) string {
	if path == StdinPath {
		return "<stdin>"
	}
	return path
}

var titleCaser = cases.Title(language.English)

// kindTitle renders an error kind for humans, e.g. ONE_OF_EMPTY as
// "One Of Empty".
func kindTitle(k result.ErrorKind) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(k.String()), "_", " "))
}

// kindSummary counts errors by kind, most frequent first.
func kindSummary(errs []*result.Result) string {
	counts := make(map[result.ErrorKind]int)
	for _, e := range errs {
		counts[e.Code]++
	}
	kinds := slices.SortedFunc(maps.Keys(counts), func(a, b result.ErrorKind) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return int(a) - int(b)
	})
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s (%d)", kindTitle(k), counts[k])
	}
	return strings.Join(parts, ", ")
}

// instanceLocation renders an instance pointer, naming the root explicitly.
func instanceLocation(e *result.Result) string {
	if p := e.ID.Instance.String(); p != "" {
		return p
	}
	return "(root)"
}

// stdinReader is replaced in tests.
var stdinReader io.Reader = os.Stdin
