// Package schemaerrors provides structured error types for schema compilation.
//
// Import path: github.com/erraggy/jsonschema/schemaerrors
//
// Compilation failures are fatal: a schema that cannot be compiled yields no
// validator. Every failure is reported as one of the types below so callers
// can branch with [errors.Is] and [errors.As]. Validation itself never
// returns these errors; failed instances are reported as results.
//
// # Error Types
//
//   - [CompileError]: a malformed keyword value, located in the schema
//   - [ReferenceError]: $ref, $dynamicRef or $recursiveRef could not be resolved
//   - [LoadError]: an external document could not be fetched or decoded
//   - [ResourceLimitError]: a document exceeded a configured limit
//   - [ConfigError]: invalid options or input sources
//
// # Sentinel Errors
//
// Each type matches its category sentinel ([ErrCompile], [ErrReference],
// [ErrLoad], [ErrResourceLimit], [ErrConfig]). Finer-grained sentinels such
// as [ErrUnknownVocabulary] or [ErrNoLoaderForScheme] travel as the Cause and
// are reachable through the Unwrap chain.
//
//	schema, err := compiler.Compile(doc)
//	if errors.Is(err, schemaerrors.ErrUnknownVocabulary) {
//	    // the schema requires a vocabulary this build does not know
//	}
//
//	var refErr *schemaerrors.ReferenceError
//	if errors.As(err, &refErr) {
//	    fmt.Printf("cannot resolve %s at %s\n", refErr.Ref, refErr.Location)
//	}
package schemaerrors
