package result

import "fmt"

// Kind discriminates the Result variants.
type Kind int

const (
	// KindOK is a passed check.
	KindOK Kind = iota
	// KindError is a failed check.
	KindError
	// KindAnnotation records an evaluated instance location.
	KindAnnotation
	// KindContainer aggregates nested results.
	KindContainer
)

// String returns the short tag used by the hierarchical formatter.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindError:
		return "ERR"
	case KindAnnotation:
		return "ANT"
	case KindContainer:
		return "CONT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrorKind classifies validation failures.
type ErrorKind int

// Error kinds, one per failing keyword condition.
const (
	ErrNone ErrorKind = iota
	ErrConst
	ErrContainsMin
	ErrContainsMax
	ErrDependencies
	ErrDependentRequired
	ErrEnum
	ErrExclusiveMaximum
	ErrExclusiveMinimum
	ErrFormat
	ErrMaximum
	ErrMinimum
	ErrMaxItems
	ErrMinItems
	ErrMaxProperties
	ErrMinProperties
	ErrMultipleOf
	ErrNot
	ErrOneOfEmpty
	ErrOneOfMoreThanOne
	ErrAnyOf
	ErrPattern
	ErrRequired
	ErrFalseSchema
	ErrType
	ErrUniqueItems
	ErrMaxLength
	ErrMinLength
	ErrContentEncoding
	ErrContentMediaType
	ErrContentSchema
	ErrNumber
	ErrCancelled
)

type errorKindInfo struct {
	name     string
	template string
}

var errorKinds = [...]errorKindInfo{
	ErrNone:              {"NONE", "No error"},
	ErrConst:             {"CONST", "Value must be equal to %s"},
	ErrContainsMin:       {"CONTAINS_MIN", "Array must contain at least %d matching items, found %d"},
	ErrContainsMax:       {"CONTAINS_MAX", "Array must contain at most %d matching items, found %d"},
	ErrDependencies:      {"DEPENDENCIES", "Property %q requires property %q"},
	ErrDependentRequired: {"DEPENDENT_REQUIRED", "Property %q requires property %q"},
	ErrEnum:              {"ENUM", "Value must be one of %s"},
	ErrExclusiveMaximum:  {"EXCLUSIVE_MAXIMUM", "Value %s must be less than %s"},
	ErrExclusiveMinimum:  {"EXCLUSIVE_MINIMUM", "Value %s must be greater than %s"},
	ErrFormat:            {"FORMAT", "Value %q is not a valid %q"},
	ErrMaximum:           {"MAXIMUM", "Value %s must be less than or equal to %s"},
	ErrMinimum:           {"MINIMUM", "Value %s must be greater than or equal to %s"},
	ErrMaxItems:          {"MAX_ITEMS", "Array has %d items, at most %d allowed"},
	ErrMinItems:          {"MIN_ITEMS", "Array has %d items, at least %d required"},
	ErrMaxProperties:     {"MAX_PROPERTIES", "Object has %d properties, at most %d allowed"},
	ErrMinProperties:     {"MIN_PROPERTIES", "Object has %d properties, at least %d required"},
	ErrMultipleOf:        {"MULTIPLE_OF", "Value %s is not a multiple of %s"},
	ErrNot:               {"NOT", "Value must not be valid against the schema"},
	ErrOneOfEmpty:        {"ONE_OF_EMPTY", "Value must be valid against exactly one schema, none matched"},
	ErrOneOfMoreThanOne:  {"ONE_OF_MORE_THAN_ONE", "Value must be valid against exactly one schema, %d matched"},
	ErrAnyOf:             {"ANY_OF", "Value must be valid against at least one schema"},
	ErrPattern:           {"PATTERN", "Value %q does not match pattern %q"},
	ErrRequired:          {"REQUIRED", "Required property %q is missing"},
	ErrFalseSchema:       {"FALSE_SCHEMA", "No value is allowed here"},
	ErrType:              {"TYPE", "Value of type %s is not one of %v"},
	ErrUniqueItems:       {"UNIQUE_ITEMS", "Array items %d and %d are equal"},
	ErrMaxLength:         {"MAX_LENGTH", "String length %d exceeds maximum %d"},
	ErrMinLength:         {"MIN_LENGTH", "String length %d is below minimum %d"},
	ErrContentEncoding:   {"CONTENT_ENCODING", "Value is not valid %q encoded content"},
	ErrContentMediaType:  {"CONTENT_MEDIA_TYPE", "Value is not valid %q content"},
	ErrContentSchema:     {"CONTENT_SCHEMA", "Decoded content does not match contentSchema"},
	ErrNumber:            {"NUMBER", "Value %s cannot be compared exactly"},
	ErrCancelled:         {"CANCELLED", "Validation was cancelled: %v"},
}

// String returns the upper-case name, e.g. "ONE_OF_EMPTY".
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKinds) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKinds[k].name
}

// Message formats the message template of k with args.
func (k ErrorKind) Message(args ...any) string {
	if k < 0 || int(k) >= len(errorKinds) {
		return k.String()
	}
	return fmt.Sprintf(errorKinds[k].template, args...)
}

// ParseErrorKind returns the kind with the given upper-case name.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for i, info := range errorKinds {
		if info.name == name {
			return ErrorKind(i), true
		}
	}
	return ErrNone, false
}
