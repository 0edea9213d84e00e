// Package jsonschema compiles JSON Schema 2019-09 and 2020-12 documents into
// executable validators.
//
// # Overview
//
// The library consists of these packages:
//
//   - compiler: compile a schema document and apply it to instances
//   - result: the validation outcome (OK, Error, Annotation, Container) and its formatter
//   - dialect: vocabulary and dialect catalog
//   - loader: resource loaders (file, http, in-memory) and external resolvers
//   - format: format predicates used by the "format" keyword
//   - content: content encodings and media types used by the content keywords
//   - scheduler: pluggable fan-out for array items, object properties and applicators
//   - schemaerrors: typed compile-time errors
//
// # Quick Start
//
//	schema, err := compiler.Compile(doc, compiler.WithDefaultDialect(dialect.Draft202012))
//	if err != nil {
//		log.Fatal(err)
//	}
//	res := schema.Apply(instance)
//	if !res.IsOK() {
//		fmt.Println(res.Format())
//	}
//
// Compile errors are fatal and carry the schema location. Validation never
// fails with an error: every outcome, including failures, is a *result.Result.
//
// # Command Line
//
// The jsonschema command (cmd/jsonschema) validates instances from the shell
// and can run as an MCP server:
//
//	jsonschema validate schema.json instance.json
//	jsonschema mcp
package jsonschema
