// Package compiler compiles JSON Schema 2020-12 and 2019-09 documents into
// reusable validators.
//
// # Overview
//
// Compilation runs in three steps. The document is registered: its dialect
// is resolved from $schema, and every embedded resource ($id) and anchor
// is indexed. The schema is then compiled by recursive descent, with each
// keyword compiled by the vocabulary that defines it. References are
// resolved while compiling, loading external documents through the
// configured loaders. Finally transformers rewrite keyword groups that
// depend on each other, such as if/then/else and unevaluatedProperties.
//
// Recursive schemas compile to a finite validator graph. A location reached
// twice over the same edge reuses the first validator, and at validation
// time a cycle that consumes no part of the instance is cut off.
//
// # Usage
//
//	schema, err := compiler.CompileWithOptions(
//	    compiler.WithFilePath("person.schema.json"),
//	    compiler.WithDefaultDialect(dialect.Draft202012),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res := schema.Apply(instance)
//	if !res.IsOK() {
//	    for _, e := range res.Errors() {
//	        fmt.Println(e)
//	    }
//	}
//
// # Concurrency
//
// A Schema is immutable. Apply may be called from many goroutines, and
// each call fans out over properties, items and applicator branches using
// the configured [scheduler.Scheduler].
package compiler
