package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/jsonschema/compiler"
	"github.com/erraggy/jsonschema/internal/options"
	"github.com/erraggy/jsonschema/loader"
)

// documentInput represents the three ways a schema or instance can be
// provided to a tool. Exactly one of File, URL, or Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a JSON or YAML document on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch the document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON or YAML)"`
}

const inputSourceMsg = "exactly one of file, url, or content must be provided"

// check enforces a single source, the inline size limit and http(s) URLs.
func (d documentInput) check() error {
	if err := options.ValidateSingleInputSource(inputSourceMsg, inputSourceMsg, d.File != "", d.URL != "", d.Content != ""); err != nil {
		return fmt.Errorf("%w (got %d)", err, options.CountSet(d.File != "", d.URL != "", d.Content != ""))
	}
	if d.Content != "" && int64(len(d.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set JSONSCHEMA_MAX_INLINE_SIZE to increase",
			len(d.Content), cfg.MaxInlineSize)
	}
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported url scheme %q", u.Scheme)
		}
	}
	return nil
}

// compileSettings are the tool arguments that change how a schema compiles.
type compileSettings struct {
	Dialect       string
	FormatAssert  bool
	ContentAssert bool
}

func (s compileSettings) options() []compiler.Option {
	return []compiler.Option{
		compiler.WithDefaultDialect(s.Dialect),
		compiler.WithFormatAssertion(s.FormatAssert),
		compiler.WithContentAssertion(s.ContentAssert),
	}
}

func (s compileSettings) String() string {
	return fmt.Sprintf("%s|%t|%t", s.Dialect, s.FormatAssert, s.ContentAssert)
}

// compile compiles the schema, using the session cache for every input kind.
func (d documentInput) compile(ctx context.Context, settings compileSettings) (*compiler.Schema, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		if key = makeCacheKey(d); key != "" {
			key += "|" + settings.String()
		}
		switch {
		case d.File != "":
			ttl = cfg.CacheFileTTL
		case d.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}
	if key != "" {
		if cached := schemaCache.get(key); cached != nil {
			return cached, nil
		}
	}

	opts := append(settings.options(), compiler.WithContext(ctx))
	if client := httpClient(); client != nil {
		opts = append(opts, compiler.WithHTTPClient(client))
	}
	switch {
	case d.File != "":
		opts = append(opts, compiler.WithFilePath(d.File))
	case d.URL != "":
		opts = append(opts, compiler.WithURI(d.URL))
	default:
		opts = append(opts, compiler.WithBytes([]byte(d.Content)))
	}
	schema, err := compiler.CompileWithOptions(opts...)
	if err != nil {
		return nil, err
	}

	if key != "" {
		schemaCache.putWithTTL(key, schema, ttl)
	}
	return schema, nil
}

// load decodes the document. Instances are not cached.
func (d documentInput) load(ctx context.Context) (any, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	switch {
	case d.File != "":
		uri, err := loader.FileURI(d.File)
		if err != nil {
			return nil, err
		}
		u, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		return loader.FileLoader{}.Load(ctx, u)
	case d.URL != "":
		u, err := url.Parse(d.URL)
		if err != nil {
			return nil, err
		}
		return loader.HTTPLoader{Client: httpClient()}.Load(ctx, u)
	default:
		return loader.Decode([]byte(d.Content))
	}
}

// cacheEntry holds a compiled schema with LRU ordering and TTL expiry.
type cacheEntry struct {
	schema    *compiler.Schema
	insertAt  time.Time
	expiresAt time.Time
}

// schemaCacheStore provides a session-scoped cache for compiled schemas.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string. Every key also
// carries the compile settings.
type schemaCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var schemaCache = &schemaCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached schema or nil. Expired entries are lazily removed.
func (c *schemaCacheStore) get(key string) *compiler.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		e.insertAt = time.Now()
		return e.schema
	}
	return nil
}

// putWithTTL stores a schema, evicting the least recently used entry if at
// capacity.
func (c *schemaCacheStore) putWithTTL(key string, schema *compiler.Schema, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{schema: schema, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries.
func (c *schemaCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a goroutine that periodically removes expired
// entries until ctx is cancelled. Only the first call spawns a sweeper.
func (c *schemaCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *schemaCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *schemaCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the document, or "" when it cannot
// be cached.
func makeCacheKey(d documentInput) string {
	switch {
	case d.File != "":
		absPath, err := filepath.Abs(d.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case d.Content != "":
		h := sha256.Sum256([]byte(d.Content))
		return "content:" + hex.EncodeToString(h[:])
	case d.URL != "":
		return "url:" + d.URL
	default:
		return ""
	}
}
