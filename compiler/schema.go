package compiler

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/erraggy/jsonschema/dialect"
	"github.com/erraggy/jsonschema/internal/jsonptr"
	"github.com/erraggy/jsonschema/loader"
	"github.com/erraggy/jsonschema/result"
	"github.com/erraggy/jsonschema/scheduler"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Schema is a compiled schema. It is immutable and safe for concurrent use.
type Schema struct {
	root      Validator
	loc       result.Locator
	sched     scheduler.Scheduler
	dialect   string
	resources []string
}

// Compile compiles an already decoded schema document.
//
// Example:
//
//	schema, err := compiler.Compile(doc, compiler.WithDefaultDialect(dialect.Draft202012))
//	if err != nil {
//	    return err
//	}
//	if res := schema.Apply(instance); !res.IsOK() {
//	    fmt.Println(res.Format())
//	}
func Compile(doc any, opts ...Option) (*Schema, error) {
	return CompileWithOptions(append([]Option{WithDocument(doc)}, opts...)...)
}

// CompileWithOptions compiles a schema using functional options. Exactly one
// of WithDocument, WithBytes, WithFilePath or WithURI must be given.
func CompileWithOptions(opts ...Option) (*Schema, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("compiler: invalid options: %w", err)
	}

	cat := catalog()
	if len(cfg.dialects) > 0 {
		cat = cat.Clone()
		for _, uri := range slices.Sorted(maps.Keys(cfg.dialects)) {
			if err := registerCustomDialect(cat, uri, cfg.dialects[uri]); err != nil {
				return nil, err
			}
		}
	}

	var fallback *dialectOf
	if cfg.defaultDialect != "" {
		fallback, err = cat.Resolve(cfg.defaultDialect)
		if err != nil {
			return nil, &schemaerrors.ConfigError{Option: "WithDefaultDialect", Value: cfg.defaultDialect, Cause: err}
		}
	}

	set := cfg.loaderSet()
	doc, origin, err := cfg.input(set)
	if err != nil {
		return nil, err
	}

	reg := newRegistry(cat, set, cfg.externalResolver(), cfg.logger)
	root, err := reg.register(cfg.ctx, doc, origin, fallback, dialect.NormalizeURI(cfg.defaultDialect))
	if err != nil {
		return nil, err
	}

	s := newSession(cfg.ctx, cfg, reg)
	loc := root.at(jsonptr.Root, nil)
	v, err := s.compile(doc, loc)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("compiled schema", "location", loc.String(), "resources", len(reg.scopes), "dialect", root.dialectURI)

	return &Schema{
		root:      v,
		loc:       loc,
		sched:     cfg.scheduler,
		dialect:   root.dialectURI,
		resources: reg.describe(),
	}, nil
}

// registerCustomDialect adds a dialect made of registered vocabularies.
func registerCustomDialect(cat *dialect.Registry[*keyword], uri string, vocabularies map[string]bool) error {
	var states []dialect.VocabularyState
	for _, v := range slices.Sorted(maps.Keys(vocabularies)) {
		if _, ok := cat.Vocabulary(v); !ok {
			if vocabularies[v] {
				return &schemaerrors.ConfigError{Option: "WithDialect", Value: uri, Cause: fmt.Errorf("%w: %s", schemaerrors.ErrUnknownVocabulary, v)}
			}
			continue
		}
		states = append(states, dialect.VocabularyState{URI: v, Active: true})
	}
	if err := cat.RegisterDialect(uri, states...); err != nil {
		return &schemaerrors.ConfigError{Option: "WithDialect", Value: uri, Cause: err}
	}
	return nil
}

// input reads the configured input source.
func (cfg *compileConfig) input(set *loader.Set) (doc any, origin string, err error) {
	origin = cfg.origin
	switch {
	case cfg.hasDocument:
		return cfg.document, origin, nil
	case cfg.bytes != nil:
		doc, err = loader.Decode(cfg.bytes)
		if err != nil {
			return nil, "", &schemaerrors.LoadError{URI: origin, Message: "decoding schema", Cause: err}
		}
		return doc, origin, nil
	case cfg.filePath != nil:
		data, err := os.ReadFile(*cfg.filePath)
		if err != nil {
			return nil, "", &schemaerrors.LoadError{URI: *cfg.filePath, Cause: err}
		}
		limit := cfg.maxFileSize
		if limit <= 0 {
			limit = loader.MaxFileSize
		}
		if int64(len(data)) > limit {
			return nil, "", &schemaerrors.ResourceLimitError{ResourceType: "document_size", Limit: limit, Actual: int64(len(data))}
		}
		if doc, err = loader.Decode(data); err != nil {
			return nil, "", &schemaerrors.LoadError{URI: *cfg.filePath, Message: "decoding schema", Cause: err}
		}
		if origin == "" {
			if origin, err = loader.FileURI(*cfg.filePath); err != nil {
				return nil, "", &schemaerrors.LoadError{URI: *cfg.filePath, Cause: err}
			}
		}
		return doc, origin, nil
	case cfg.uri != nil:
		doc, err = set.Load(cfg.ctx, *cfg.uri)
		if err != nil {
			return nil, "", err
		}
		if origin == "" {
			origin, _ = loader.SplitFragment(*cfg.uri)
		}
		return doc, origin, nil
	}
	return nil, "", fmt.Errorf("compiler: no input source specified")
}

// Apply validates instance. The instance must be a decoded JSON value:
// map[string]any, []any, string, bool, nil or a number.
func (s *Schema) Apply(instance any) *result.Result {
	r, _ := s.ApplyContext(context.Background(), instance)
	return r
}

// ApplyContext validates instance, stopping early when ctx is cancelled. A
// cancelled validation never passes: the partial result carries a CANCELLED
// error at the root and ctx.Err() is returned with it.
func (s *Schema) ApplyContext(ctx context.Context, instance any) (*result.Result, error) {
	st := newEvalState(s.sched)
	rs := s.root(ctx, instance, jsonptr.Root, st)
	id := result.ID{Schema: s.loc, Instance: jsonptr.Root}
	if err := ctx.Err(); err != nil {
		rs = append(rs, result.Fail(id, result.ErrCancelled, err))
	}
	if len(rs) == 1 {
		return rs[0], ctx.Err()
	}
	return result.Container(id, rs...), ctx.Err()
}

// ApplyAsync validates instance on a new goroutine. The channel receives
// exactly one result and is then closed. A result cut short by ctx is
// invalid and reports CANCELLED.
func (s *Schema) ApplyAsync(ctx context.Context, instance any) <-chan *result.Result {
	ch := make(chan *result.Result, 1)
	go func() {
		defer close(ch)
		r, _ := s.ApplyContext(ctx, instance)
		ch <- r
	}()
	return ch
}

// Dialect returns the $schema URI the root was compiled with.
func (s *Schema) Dialect() string {
	return s.dialect
}

// Location returns the root schema location.
func (s *Schema) Location() result.Locator {
	return s.loc
}

// Resources returns the base URIs of every schema resource the compilation
// touched, in registration order.
func (s *Schema) Resources() []string {
	return slices.Clone(s.resources)
}
