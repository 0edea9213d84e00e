package compiler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erraggy/jsonschema/content"
	"github.com/erraggy/jsonschema/format"
	"github.com/erraggy/jsonschema/internal/options"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/scheduler"
)

// Option is a function that configures a compile operation
type Option func(*compileConfig) error

// RegexFactory compiles a "pattern" or "patternProperties" expression into
// a match predicate.
type RegexFactory func(pattern string) (func(string) bool, error)

// compileConfig holds configuration for a compile operation
type compileConfig struct {
	// Input source (exactly one must be set)
	document    any
	hasDocument bool
	bytes       []byte
	filePath    *string
	uri         *string

	ctx context.Context

	defaultDialect string
	dialects       map[string]map[string]bool

	resolver       loader.ExternalResolver
	mappings       *loader.MapResolver
	loaders        []loader.Loader
	defaultLoaders bool
	httpClient     *http.Client
	maxFileSize    int64

	formatAssertion  bool
	formats          *format.Registry
	contentAssertion bool
	contents         *content.Registry
	regexFactory     RegexFactory

	scheduler scheduler.Scheduler
	logger    Logger
	origin    string
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*compileConfig, error) {
	cfg := &compileConfig{
		ctx:            context.Background(),
		defaultLoaders: true,
		formats:        format.Defaults(),
		contents:       content.Defaults(),
		regexFactory:   ecmaRegex,
		scheduler:      scheduler.Default(),
		logger:         NopLogger{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"compiler: must specify an input source (use WithDocument, WithBytes, WithFilePath, or WithURI)",
		"compiler: must specify exactly one input source",
		cfg.hasDocument, cfg.bytes != nil, cfg.filePath != nil, cfg.uri != nil,
	); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithDocument specifies an already decoded schema as the input source.
// Objects must be map[string]any and arrays []any.
func WithDocument(doc any) Option {
	return func(cfg *compileConfig) error {
		cfg.document = doc
		cfg.hasDocument = true
		return nil
	}
}

// WithBytes specifies JSON or YAML bytes as the input source
func WithBytes(data []byte) Option {
	return func(cfg *compileConfig) error {
		if data == nil {
			return fmt.Errorf("compiler: bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithFilePath specifies a local schema file as the input source.
// The file URI becomes the document's origin.
func WithFilePath(path string) Option {
	return func(cfg *compileConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithURI specifies an absolute URI, fetched through the configured loaders,
// as the input source.
func WithURI(uri string) Option {
	return func(cfg *compileConfig) error {
		cfg.uri = &uri
		return nil
	}
}

// WithContext sets the context used while loading external documents.
// Default: context.Background()
func WithContext(ctx context.Context) Option {
	return func(cfg *compileConfig) error {
		if ctx == nil {
			return fmt.Errorf("compiler: context cannot be nil")
		}
		cfg.ctx = ctx
		return nil
	}
}

// WithDefaultDialect sets the dialect used for documents without $schema.
// Default: none, so such documents fail with schemaerrors.ErrNoDialect.
func WithDefaultDialect(uri string) Option {
	return func(cfg *compileConfig) error {
		cfg.defaultDialect = uri
		return nil
	}
}

// WithDialect registers a custom dialect made of known vocabularies.
// The map follows $vocabulary: true marks a required vocabulary.
func WithDialect(uri string, vocabularies map[string]bool) Option {
	return func(cfg *compileConfig) error {
		if uri == "" {
			return fmt.Errorf("compiler: dialect uri cannot be empty")
		}
		if cfg.dialects == nil {
			cfg.dialects = make(map[string]map[string]bool)
		}
		cfg.dialects[uri] = vocabularies
		return nil
	}
}

// WithExternalResolver installs a resolver consulted before the registry and
// the loaders for every reference with a non-empty path.
func WithExternalResolver(r loader.ExternalResolver) Option {
	return func(cfg *compileConfig) error {
		cfg.resolver = r
		return nil
	}
}

// WithMapping resolves references to id with doc, without loading.
func WithMapping(id string, doc any) Option {
	return func(cfg *compileConfig) error {
		cfg.mapResolver().MapSchema(id, doc)
		return nil
	}
}

// WithURIMapping redirects references to id to target.
func WithURIMapping(id, target string) Option {
	return func(cfg *compileConfig) error {
		if !loader.IsAbsolute(target) {
			return fmt.Errorf("compiler: mapping target %q must be an absolute uri", target)
		}
		cfg.mapResolver().MapURI(id, target)
		return nil
	}
}

func (cfg *compileConfig) mapResolver() *loader.MapResolver {
	if cfg.mappings == nil {
		cfg.mappings = loader.NewMapResolver()
	}
	return cfg.mappings
}

// WithLoader adds a resource loader. Custom loaders are tried before the
// default file and http loaders.
func WithLoader(l loader.Loader) Option {
	return func(cfg *compileConfig) error {
		if l == nil {
			return fmt.Errorf("compiler: loader cannot be nil")
		}
		cfg.loaders = append(cfg.loaders, l)
		return nil
	}
}

// WithDefaultLoaders enables or disables the file and http loaders.
// Default: true
func WithDefaultLoaders(enabled bool) Option {
	return func(cfg *compileConfig) error {
		cfg.defaultLoaders = enabled
		return nil
	}
}

// WithHTTPClient sets the client used by the default http loader.
// If the client is nil, this option has no effect.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *compileConfig) error {
		if client != nil {
			cfg.httpClient = client
		}
		return nil
	}
}

// WithMaxFileSize limits the size of loaded documents.
// Default: loader.MaxFileSize
func WithMaxFileSize(n int64) Option {
	return func(cfg *compileConfig) error {
		if n < 0 {
			return fmt.Errorf("compiler: max file size cannot be negative")
		}
		cfg.maxFileSize = n
		return nil
	}
}

// WithFormatAssertion makes "format" an assertion regardless of dialect.
// Default: false
func WithFormatAssertion(enabled bool) Option {
	return func(cfg *compileConfig) error {
		cfg.formatAssertion = enabled
		return nil
	}
}

// WithFormat registers or replaces a format predicate.
func WithFormat(name string, fn format.Func) Option {
	return func(cfg *compileConfig) error {
		if fn == nil {
			return fmt.Errorf("compiler: format %q: predicate cannot be nil", name)
		}
		cfg.formats = cfg.formats.Clone()
		cfg.formats.Register(name, fn)
		return nil
	}
}

// WithContentAssertion makes contentEncoding, contentMediaType and
// contentSchema assertions. Default: false
func WithContentAssertion(enabled bool) Option {
	return func(cfg *compileConfig) error {
		cfg.contentAssertion = enabled
		return nil
	}
}

// WithContentRegistry replaces the content encodings and media types.
func WithContentRegistry(r *content.Registry) Option {
	return func(cfg *compileConfig) error {
		if r == nil {
			return fmt.Errorf("compiler: content registry cannot be nil")
		}
		cfg.contents = r
		return nil
	}
}

// WithRegexFactory replaces the regular expression engine.
func WithRegexFactory(f RegexFactory) Option {
	return func(cfg *compileConfig) error {
		if f == nil {
			return fmt.Errorf("compiler: regex factory cannot be nil")
		}
		cfg.regexFactory = f
		return nil
	}
}

// WithScheduler sets how independent subschemas are evaluated.
// Default: scheduler.Default()
func WithScheduler(s scheduler.Scheduler) Option {
	return func(cfg *compileConfig) error {
		if s == nil {
			return fmt.Errorf("compiler: scheduler cannot be nil")
		}
		cfg.scheduler = s
		return nil
	}
}

// WithLogger sets a structured logger.
// Default: NopLogger
func WithLogger(l Logger) Option {
	return func(cfg *compileConfig) error {
		if l == nil {
			l = NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithOrigin sets the URI relative references in the root document resolve
// against when it has no $id.
func WithOrigin(uri string) Option {
	return func(cfg *compileConfig) error {
		cfg.origin = uri
		return nil
	}
}

// loaderSet builds the loaders in priority order.
func (cfg *compileConfig) loaderSet() *loader.Set {
	set := loader.NewSet(cfg.loaders...)
	if cfg.defaultLoaders {
		set.Add(loader.FileLoader{MaxFileSize: cfg.maxFileSize})
		set.Add(loader.HTTPLoader{Client: cfg.httpClient, MaxFileSize: cfg.maxFileSize})
	}
	return set
}

// externalResolver chains the configured resolver and the mappings.
func (cfg *compileConfig) externalResolver() loader.ExternalResolver {
	switch {
	case cfg.resolver != nil && cfg.mappings != nil:
		return chainResolver{cfg.resolver, cfg.mappings}
	case cfg.resolver != nil:
		return cfg.resolver
	case cfg.mappings != nil:
		return cfg.mappings
	}
	return nil
}

// chainResolver asks each resolver in turn; the first match wins.
type chainResolver []loader.ExternalResolver

func (c chainResolver) Resolve(ref string, at result.Locator) (loader.Resolution, bool, error) {
	for _, r := range c {
		if res, ok, err := r.Resolve(ref, at); err != nil || ok {
			return res, ok, err
		}
	}
	return loader.Resolution{}, false, nil
}
