package schemaerrors

import (
	"errors"
	"fmt"
)

// Category sentinels, matched by the Is method of the corresponding type.
var (
	// ErrCompile indicates a schema could not be compiled.
	ErrCompile = errors.New("compile error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrLoad indicates an external document could not be loaded.
	ErrLoad = errors.New("load error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// Cause sentinels, carried in the Cause field of the typed errors.
var (
	// ErrUnknownVocabulary indicates $vocabulary requires an unregistered vocabulary.
	ErrUnknownVocabulary = errors.New("unknown vocabulary")

	// ErrDialectNotFound indicates $schema names a dialect that cannot be resolved.
	ErrDialectNotFound = errors.New("dialect not found")

	// ErrNoDialect indicates a document has no $schema and no default dialect was configured.
	ErrNoDialect = errors.New("no dialect")

	// ErrNoLoaderForScheme indicates no resource loader supports a URI scheme.
	ErrNoLoaderForScheme = errors.New("no loader for scheme")

	// ErrNotAbsolute indicates a URI that must be absolute was relative.
	ErrNotAbsolute = errors.New("uri is not absolute")

	// ErrDuplicateAnchor indicates an anchor was declared twice in one scope.
	ErrDuplicateAnchor = errors.New("duplicate anchor")

	// ErrDuplicateID indicates two schema resources share one $id.
	ErrDuplicateID = errors.New("duplicate $id")

	// ErrInvalidKeyword indicates a keyword value has the wrong type or range.
	ErrInvalidKeyword = errors.New("invalid keyword value")

	// ErrUnknownFormat indicates an asserted format has no registered predicate.
	ErrUnknownFormat = errors.New("unknown format")
)

// CompileError is a located compile-time failure.
type CompileError struct {
	// Location is the schema location, as "<uri>#<pointer>"
	Location string
	// Keyword is the offending keyword, if known
	Keyword string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *CompileError) Error() string {
	msg := "compile error"
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Keyword != "" {
		msg += " (" + e.Keyword + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

// ReferenceError represents a failure to resolve $ref, $dynamicRef or $recursiveRef.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// Location is the schema location holding the reference
	Location string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// A reference error is also a compile error.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference || target == ErrCompile
}

// LoadError represents a failure to fetch or decode an external document.
type LoadError struct {
	// URI is the document that failed to load
	URI string
	// Message provides additional context
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *LoadError) Error() string {
	msg := "load error"
	if e.URI != "" {
		msg += ": " + e.URI
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "document_size", "ref_depth"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
