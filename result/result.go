package result

import (
	"iter"
	"strconv"
	"strings"
)

// Result is one node of a validation outcome. Results are immutable once
// created and safe to share between goroutines.
type Result struct {
	// Kind discriminates the variant
	Kind Kind
	// ID is the schema and instance location of the result
	ID ID
	// Code is the failure classification (KindError only)
	Code ErrorKind
	// Args are the message arguments (KindError only)
	Args []any
	// Valid is true iff every nested result is valid (KindContainer only)
	Valid bool
	// Nested are the aggregated results (KindContainer only)
	Nested []*Result
}

// OK returns a passed result.
func OK(id ID) *Result {
	return &Result{Kind: KindOK, ID: id}
}

// Fail returns a failed result.
func Fail(id ID, code ErrorKind, args ...any) *Result {
	return &Result{Kind: KindError, ID: id, Code: code, Args: args}
}

// Annotation returns a result recording that id's instance location was
// evaluated successfully.
func Annotation(id ID) *Result {
	return &Result{Kind: KindAnnotation, ID: id}
}

// Container aggregates nested results. Nil entries are dropped.
func Container(id ID, nested ...*Result) *Result {
	c := &Result{Kind: KindContainer, ID: id, Valid: true}
	if len(nested) > 0 {
		c.Nested = make([]*Result, 0, len(nested))
	}
	for _, n := range nested {
		if n == nil {
			continue
		}
		if !n.IsOK() {
			c.Valid = false
		}
		c.Nested = append(c.Nested, n)
	}
	return c
}

// IsOK reports whether r, and everything nested in it, passed.
func (r *Result) IsOK() bool {
	switch r.Kind {
	case KindError:
		return false
	case KindContainer:
		return r.Valid
	default:
		return true
	}
}

// Message returns the formatted failure message, or "" for non-errors.
func (r *Result) Message() string {
	if r.Kind != KindError {
		return ""
	}
	return r.Code.Message(r.Args...)
}

// Leaves iterates over every non-container result, depth first.
func (r *Result) Leaves() iter.Seq[*Result] {
	return func(yield func(*Result) bool) {
		r.walkLeaves(yield)
	}
}

func (r *Result) walkLeaves(yield func(*Result) bool) bool {
	if r.Kind != KindContainer {
		return yield(r)
	}
	for _, n := range r.Nested {
		if !n.walkLeaves(yield) {
			return false
		}
	}
	return true
}

// Errors returns every failed leaf.
func (r *Result) Errors() []*Result {
	var errs []*Result
	for leaf := range r.Leaves() {
		if leaf.Kind == KindError {
			errs = append(errs, leaf)
		}
	}
	return errs
}

// ErrorKinds returns the kind of every failed leaf, in traversal order.
func (r *Result) ErrorKinds() []ErrorKind {
	errs := r.Errors()
	kinds := make([]ErrorKind, len(errs))
	for i, e := range errs {
		kinds[i] = e.Code
	}
	return kinds
}

// String renders a single-line summary of r.
func (r *Result) String() string {
	switch r.Kind {
	case KindError:
		return "ValidationError{id=" + r.ID.String() + ", kind=" + r.Code.String() + ", msg=" + strconv.Quote(r.Message()) + "}"
	case KindContainer:
		status := "OK"
		if !r.Valid {
			status = "ERR"
		}
		return "CONT-" + status + " " + r.ID.String()
	default:
		return r.Kind.String() + "{id=" + r.ID.String() + "}"
	}
}

// Format renders r as an indented tree mirroring the container nesting.
func (r *Result) Format() string {
	var b strings.Builder
	r.format(&b, 0)
	return b.String()
}

func (r *Result) format(b *strings.Builder, depth int) {
	for range depth {
		b.WriteByte('\t')
	}
	b.WriteString(r.String())
	b.WriteByte('\n')
	for _, n := range r.Nested {
		n.format(b, depth+1)
	}
}
