package mcpserver

import (
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/erraggy/jsonschema/compiler"
	"github.com/erraggy/jsonschema/dialect"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Validate tool defaults.
	DefaultDialect   string
	FormatAssertion  bool
	ContentAssertion bool
	ValidateLimit    int

	// Limits.
	MaxInlineSize   int64
	MaxLimit        int
	AllowPrivateIPs bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from JSONSCHEMA_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("JSONSCHEMA_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("JSONSCHEMA_CACHE_MAX_SIZE", 32),
		CacheFileTTL:       envDuration("JSONSCHEMA_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("JSONSCHEMA_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("JSONSCHEMA_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("JSONSCHEMA_CACHE_SWEEP_INTERVAL", 60*time.Second),
		DefaultDialect:     envDialect("JSONSCHEMA_DEFAULT_DIALECT", dialect.Draft202012),
		FormatAssertion:    envBool("JSONSCHEMA_FORMAT_ASSERT", false),
		ContentAssertion:   envBool("JSONSCHEMA_CONTENT_ASSERT", false),
		ValidateLimit:      envInt("JSONSCHEMA_VALIDATE_LIMIT", 100),
		MaxInlineSize:      int64(envInt("JSONSCHEMA_MAX_INLINE_SIZE", 10*1024*1024)),
		MaxLimit:           envInt("JSONSCHEMA_MAX_LIMIT", 1000),
		AllowPrivateIPs:    envBool("JSONSCHEMA_ALLOW_PRIVATE_IPS", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

// envDialect accepts only the built-in dialects; custom meta-schemas are
// selected per document through $schema.
func envDialect(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	v = dialect.NormalizeURI(v)
	if !slices.Contains(compiler.Dialects(), v) {
		slog.Warn("unknown dialect env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
