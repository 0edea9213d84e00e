// Package jsonptr implements RFC 6901 JSON Pointers over decoded JSON values.
//
// A [Pointer] is the encoded string form ("" for the whole document,
// "/a/0/b~1c" otherwise). It is comparable and cheap to use as a map key,
// which the compiler relies on for result identities and recursion guards.
//
// # Builder Usage
//
// Tree walks that only occasionally need the pointer of the current node use
// a pooled [Builder] with push/pop semantics:
//
//	b := jsonptr.Get()
//	defer jsonptr.Put(b)
//
//	b.Push("properties")
//	b.Push(name)
//	// ... recurse ...
//	b.Pop()
//	b.Pop()
//
//	// Only materialize when needed
//	anchors[name] = b.Pointer()
package jsonptr
