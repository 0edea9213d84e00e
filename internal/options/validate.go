// Package options holds checks shared by the option-based entry points of
// the compiler and the MCP tool inputs.
package options

import "errors"

// CountSet returns how many of the flags are true.
func CountSet(sources ...bool) int {
	n := 0
	for _, set := range sources {
		if set {
			n++
		}
	}
	return n
}

// ValidateSingleInputSource returns an error unless exactly one source is
// set. The messages are returned verbatim for the zero and many cases.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	switch CountSet(sources...) {
	case 1:
		return nil
	case 0:
		return errors.New(noSourceMsg)
	default:
		return errors.New(multiSourceMsg)
	}
}
