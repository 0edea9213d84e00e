// Package result defines the outcome of applying a compiled schema to an
// instance.
//
// A [Result] is one of four kinds:
//
//   - OK: a keyword passed at a location
//   - Error: a keyword failed, with an [ErrorKind] and message arguments
//   - Annotation: a keyword passed and recorded the instance location it
//     evaluated, for sibling keywords such as unevaluatedProperties
//   - Container: an aggregate of nested results, valid iff all nested are
//
// Every result carries an [ID]: the schema [Locator] that produced it plus the
// instance pointer it was evaluated at.
//
// # Inspecting Results
//
//	res := schema.Apply(instance)
//	if !res.IsOK() {
//	    fmt.Print(res.Format())
//	    for leaf := range res.Leaves() {
//	        if leaf.Kind == result.KindError {
//	            fmt.Println(leaf.ID.Instance, leaf.Message())
//	        }
//	    }
//	}
package result
