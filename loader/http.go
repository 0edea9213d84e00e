package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/erraggy/jsonschema"
)

// HTTPLoader fetches documents over http and https.
type HTTPLoader struct {
	// Client is the HTTP client; nil uses a client with a 30 second timeout.
	Client *http.Client
	// UserAgent is sent with every request; empty uses jsonschema.UserAgent().
	UserAgent string
	// MaxFileSize limits the response size; zero uses MaxFileSize.
	MaxFileSize int64
}

// Schemes implements Loader.
func (HTTPLoader) Schemes() []string {
	return []string{"http", "https"}
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context, u *url.URL) (any, error) {
	client := l.Client
	if client == nil {
		client = defaultHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	userAgent := l.UserAgent
	if userAgent == "" {
		userAgent = jsonschema.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req) //nolint:gosec // G107 - URL comes from a schema reference the caller opted into
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limit := l.MaxFileSize
	if limit <= 0 {
		limit = MaxFileSize
	}
	data, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
