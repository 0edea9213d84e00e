package result

import (
	"strconv"

	"github.com/erraggy/jsonschema/internal/jsonptr"
)

// ScopeID identifies a schema resource within one compile session.
type ScopeID uint64

// Locator identifies where a validator runs from: a scope, a pointer within
// that scope, and the dynamic chain of references that led there.
type Locator struct {
	// Scope is the schema resource the pointer is relative to
	Scope ScopeID
	// Origin is the URI the scope's document was loaded from, if any
	Origin string
	// ID is the absolute $id of the scope, if any
	ID string
	// Pointer locates the schema within the scope
	Pointer jsonptr.Pointer
	// Parent is the referring location, set when a reference or a $id
	// boundary was crossed
	Parent *Locator
}

// LocatorKey is the identity of a locator, ignoring its dynamic parents.
type LocatorKey struct {
	Scope   ScopeID
	Pointer jsonptr.Pointer
}

// Key returns the identity of l.
func (l Locator) Key() LocatorKey {
	return LocatorKey{Scope: l.Scope, Pointer: l.Pointer}
}

// Append returns the locator of a property below l. The parent is kept.
func (l Locator) Append(token string) Locator {
	l.Pointer = l.Pointer.Append(token)
	return l
}

// AppendIndex returns the locator of an array element below l.
func (l Locator) AppendIndex(i int) Locator {
	l.Pointer = l.Pointer.AppendIndex(i)
	return l
}

// Base returns the URI the pointer is relative to: the $id, else the origin.
func (l Locator) Base() string {
	if l.ID != "" {
		return l.ID
	}
	return l.Origin
}

// String renders the locator as "<base>#<pointer>".
func (l Locator) String() string {
	base := l.Base()
	if base == "" && l.Scope != 0 {
		base = "scope:" + strconv.FormatUint(uint64(l.Scope), 10)
	}
	return base + "#" + l.Pointer.String()
}

// Depth returns the number of dynamic parents above l.
func (l Locator) Depth() int {
	n := 0
	for p := l.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// ID identifies a result: the schema location that produced it and the
// instance location it applies to.
type ID struct {
	Schema   Locator
	Instance jsonptr.Pointer
}

// Key returns the comparable identity of id.
func (id ID) Key() IDKey {
	return IDKey{Schema: id.Schema.Key(), Instance: id.Instance}
}

// String renders the id for diagnostics.
func (id ID) String() string {
	return id.Schema.String() + " @ " + strconv.Quote(id.Instance.String())
}

// IDKey is the comparable identity of an ID.
type IDKey struct {
	Schema   LocatorKey
	Instance jsonptr.Pointer
}
