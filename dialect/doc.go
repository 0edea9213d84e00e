// Package dialect catalogs JSON Schema vocabularies and the dialects built
// from them.
//
// A [Vocabulary] maps keywords to compiler entries. A [Dialect] is an ordered
// set of vocabularies with an activation state each; keyword lookup returns the
// entry of the first active vocabulary that defines the keyword.
//
// The package is generic over the entry type so the compiler can keep its
// keyword implementations private. A [Registry] is built once at startup and
// then only read; callers that need custom dialects work on a [Registry.Clone].
package dialect
