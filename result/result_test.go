package result

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/jsonschema/internal/jsonptr"
)

func testID(schemaPtr, instance string) ID {
	return ID{
		Schema:   Locator{Scope: 1, ID: "https://example.com/s", Pointer: jsonptr.Pointer(schemaPtr)},
		Instance: jsonptr.Pointer(instance),
	}
}

// TestContainerValidity verifies a container is valid iff every nested result is.
func TestContainerValidity(t *testing.T) {
	ok := OK(testID("/type", ""))
	ant := Annotation(testID("/properties", "/a"))
	bad := Fail(testID("/minimum", ""), ErrMinimum, "1", "2")

	assert.True(t, Container(testID("", ""), ok, ant).IsOK())
	assert.True(t, Container(testID("", "")).IsOK(), "empty container is valid")
	assert.False(t, Container(testID("", ""), ok, bad).IsOK())

	nested := Container(testID("/allOf", ""), Container(testID("/allOf/0", ""), bad))
	assert.False(t, Container(testID("", ""), ok, nested).IsOK(), "validity propagates through nesting")
}

func TestContainerDropsNil(t *testing.T) {
	c := Container(testID("", ""), nil, OK(testID("/type", "")), nil)
	assert.Len(t, c.Nested, 1)
}

func TestLeaves(t *testing.T) {
	a := OK(testID("/a", ""))
	b := Fail(testID("/b", ""), ErrType, "string", []string{"integer"})
	c := Annotation(testID("/c", "/x"))
	root := Container(testID("", ""), a, Container(testID("/n", ""), b, c))

	leaves := slices.Collect(root.Leaves())
	assert.Equal(t, []*Result{a, b, c}, leaves)

	// early termination
	var first *Result
	for leaf := range root.Leaves() {
		first = leaf
		break
	}
	assert.Equal(t, a, first)

	assert.Equal(t, []*Result{b}, root.Errors())
	assert.Equal(t, []ErrorKind{ErrType}, root.ErrorKinds())
}

func TestErrorKindNames(t *testing.T) {
	assert.Equal(t, "ONE_OF_EMPTY", ErrOneOfEmpty.String())
	assert.Equal(t, "CONTAINS_MIN", ErrContainsMin.String())
	assert.Equal(t, "FALSE_SCHEMA", ErrFalseSchema.String())

	k, ok := ParseErrorKind("ONE_OF_MORE_THAN_ONE")
	require.True(t, ok)
	assert.Equal(t, ErrOneOfMoreThanOne, k)

	_, ok = ParseErrorKind("NOPE")
	assert.False(t, ok)

	assert.Equal(t, "ErrorKind(999)", ErrorKind(999).String())
}

func TestMessage(t *testing.T) {
	r := Fail(testID("/required", ""), ErrRequired, "name")
	assert.Equal(t, `Required property "name" is missing`, r.Message())
	assert.Empty(t, OK(testID("", "")).Message())
}

func TestFormat(t *testing.T) {
	root := Container(testID("", ""),
		OK(testID("/type", "")),
		Container(testID("/properties", ""),
			Annotation(testID("/properties", "/a")),
			Fail(testID("/properties/b/type", "/b"), ErrType, "string", []string{"integer"}),
		),
	)

	out := root.Format()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "CONT-ERR "))
	assert.True(t, strings.HasPrefix(lines[1], "\tOK{id="))
	assert.True(t, strings.HasPrefix(lines[2], "\tCONT-ERR "))
	assert.True(t, strings.HasPrefix(lines[3], "\t\tANT{id="))
	assert.True(t, strings.HasPrefix(lines[4], "\t\tValidationError{id="))
	assert.Contains(t, lines[4], "kind=TYPE")
	assert.Contains(t, lines[4], `https://example.com/s#/properties/b/type @ "/b"`)
}

func TestBasic(t *testing.T) {
	root := Container(testID("", ""),
		Fail(testID("/properties/b/type", "/b"), ErrType, "string", []string{"integer"}),
	)
	out := root.Basic()
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "/b", out.Errors[0].InstanceLocation)
	assert.Equal(t, "https://example.com/s#/properties/b/type", out.Errors[0].KeywordLocation)
	assert.Equal(t, "TYPE", out.Errors[0].Kind)
}

func TestLocator(t *testing.T) {
	parent := &Locator{Scope: 1, ID: "https://example.com/root"}
	l := Locator{Scope: 2, Origin: "file:///tmp/a.json", Parent: parent}

	child := l.Append("properties").Append("a/b").AppendIndex(0)
	assert.Equal(t, jsonptr.Pointer("/properties/a~1b/0"), child.Pointer)
	assert.Same(t, parent, child.Parent, "Append keeps the dynamic parent")
	assert.Equal(t, "file:///tmp/a.json#/properties/a~1b/0", child.String())
	assert.Equal(t, LocatorKey{Scope: 2, Pointer: "/properties/a~1b/0"}, child.Key())
	assert.Equal(t, 1, child.Depth())

	anon := Locator{Scope: 7}
	assert.Equal(t, "scope:7#", anon.String())
}
