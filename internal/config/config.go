// Package config provides centralized configuration management for the export service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Export   ExportConfig
	Batch    BatchConfig
	PDF      PDFConfig
	Redis    RedisConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, large CSV streams)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 120s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ExportConfig controls how field values are formatted and how exports are chunked.
type ExportConfig struct {
	// DatePattern uses YYYY, MM and DD tokens (default: YYYY年MM月DD日)
	DatePattern string `env:"EXPORT_DATE_PATTERN" default:"YYYY年MM月DD日"`

	// EmptyValue is rendered for absent values on an existing entity (default: —)
	EmptyValue string `env:"EXPORT_EMPTY_VALUE" default:"—"`

	// MissingRelationValue is rendered for every field of a group whose related
	// entity does not exist at all (default: empty string)
	MissingRelationValue string `env:"EXPORT_MISSING_RELATION_VALUE"`

	// TextMaxLength is the rune limit for text fields (default: 100)
	TextMaxLength int `env:"EXPORT_TEXT_MAX_LENGTH" default:"100"`

	// TruncationMarker is appended to truncated text (default: ...)
	TruncationMarker string `env:"EXPORT_TRUNCATION_MARKER" default:"..."`

	// CurrencyMax is the largest currency value accepted (default: 10^15)
	CurrencyMax int64 `env:"EXPORT_CURRENCY_MAX" default:"1000000000000000"`

	// MaxFacilities caps facilities per export request (default: 1000)
	MaxFacilities int `env:"EXPORT_MAX_FACILITIES" default:"1000"`

	// ChunkSize is facilities pre-loaded per query round (default: 200)
	ChunkSize int `env:"EXPORT_CHUNK_SIZE" default:"200"`
}

// BatchConfig holds batch PDF job settings.
type BatchConfig struct {
	// WorkDir is where per-batch documents and archives are written (default: temp dir)
	WorkDir string `env:"BATCH_WORK_DIR"`

	// Workers is the number of facilities rendered in parallel per batch (default: 1)
	Workers int `env:"BATCH_WORKERS" default:"1"`

	// MaxConcurrent is the maximum number of batches running at once (default: 3)
	MaxConcurrent int `env:"BATCH_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long a batch waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"BATCH_MAX_WAIT_TIME" default:"10s"`

	// Timeout is the maximum duration for a single batch (default: 30m)
	Timeout time.Duration `env:"BATCH_TIMEOUT" default:"30m"`

	// Retention is how long finished batches stay downloadable (default: 1h)
	Retention time.Duration `env:"BATCH_RETENTION" default:"1h"`

	// JanitorInterval is how often expired batches are purged (default: 5m)
	JanitorInterval time.Duration `env:"BATCH_JANITOR_INTERVAL" default:"5m"`
}

// PDFConfig holds document rendering settings.
type PDFConfig struct {
	// FontPath is a TrueType font with Japanese glyphs (optional)
	FontPath string `env:"PDF_FONT_PATH"`

	// FontFamily is the family name registered for FontPath (default: ipaexg)
	FontFamily string `env:"PDF_FONT_FAMILY" default:"ipaexg"`
}

// RedisConfig holds the optional progress mirror connection.
type RedisConfig struct {
	// URL enables the Redis progress mirror when set, e.g. redis://localhost:6379/0
	URL string `env:"REDIS_URL"`

	// KeyPrefix namespaces mirrored progress keys (default: facility-export)
	KeyPrefix string `env:"REDIS_KEY_PREFIX" default:"facility-export"`

	// ProgressTTL is how long mirrored progress survives (default: 2h)
	ProgressTTL time.Duration `env:"REDIS_PROGRESS_TTL" default:"2h"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ExportLimit is requests per minute for export endpoints (default: 20)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey rejects /api requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// UserIDHeader carries the authenticated user id set by the upstream gateway
	UserIDHeader string `env:"USER_ID_HEADER" default:"X-User-ID"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
