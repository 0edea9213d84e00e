package loader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// FileLoader reads documents from the local filesystem via file:// URIs.
type FileLoader struct {
	// MaxFileSize limits the document size; zero uses MaxFileSize.
	MaxFileSize int64
}

// Schemes implements Loader.
func (FileLoader) Schemes() []string {
	return []string{"file"}
}

// Load implements Loader.
func (l FileLoader) Load(_ context.Context, u *url.URL) (any, error) {
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("file uri with remote host %q", u.Host)
	}
	path := filepath.FromSlash(u.Path)
	f, err := os.Open(path) //nolint:gosec // G304 - path comes from a schema reference the caller opted into
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	data, err := readLimited(f, l.limit())
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (l FileLoader) limit() int64 {
	if l.MaxFileSize > 0 {
		return l.MaxFileSize
	}
	return MaxFileSize
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &schemaerrors.ResourceLimitError{
			ResourceType: "document_size",
			Limit:        limit,
			Message:      "document exceeds the size limit",
		}
	}
	return data, nil
}
