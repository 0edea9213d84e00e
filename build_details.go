package jsonschema

import "fmt"

var (
	// version is set via ldflags during build.
	// For development builds, this will show "dev"
	version = "dev"

	// commit is the short git hash, set via ldflags during build
	commit = "unknown"
)

// Version returns the compiled version or 'dev' if run from source
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from, or 'unknown'
func Commit() string {
	return commit
}

// UserAgent returns the User-Agent string sent by the HTTP loader
func UserAgent() string {
	return fmt.Sprintf("jsonschema/%s", version)
}
