// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Search   SearchConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// CatalogConfig selects where the risk catalogue comes from.
type CatalogConfig struct {
	// Source is embedded:, file:PATH, csv:PATH, postgres://... or sqlite:PATH
	Source string `env:"CATALOG_SOURCE" default:"embedded:"`

	// Watch reloads file-based catalogues when they change (default: false)
	Watch bool `env:"CATALOG_WATCH" default:"false"`

	// ReloadDebounce coalesces bursts of file events (default: 300ms)
	ReloadDebounce time.Duration `env:"CATALOG_RELOAD_DEBOUNCE" default:"300ms"`

	// CategoryColumn names the category column of CSV catalogues
	CategoryColumn string `env:"CATALOG_CSV_CATEGORY_COLUMN" default:"category"`
}

// DatabaseConfig sizes the PostgreSQL pool for postgres:// catalogue sources.
type DatabaseConfig struct {
	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SearchConfig holds search input settings.
type SearchConfig struct {
	// Debounce delays search while typing in the terminal UI (default: 300ms)
	Debounce time.Duration `env:"SEARCH_DEBOUNCE" default:"300ms"`

	// MaxTermLength rejects longer search terms, in runes (default: 200)
	MaxTermLength int `env:"SEARCH_MAX_TERM" default:"200"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	// Filename is the download name of the comparison table
	Filename string `env:"EXPORT_FILENAME" default:"cuadro_comparativo_riesgos.csv"`

	// MaxConcurrent caps parallel CSV downloads (default: 4)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"4"`

	// SlotWait is how long a download waits for a free slot (default: 5s)
	SlotWait time.Duration `env:"EXPORT_SLOT_WAIT" default:"5s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ExportLimit is requests per minute for the CSV export endpoint (default: 20)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects POST /api/reload (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of valid API keys
	APIKeys []string `env:"API_KEYS"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File receives logs from the terminal UI, which owns stdout (default: riskboard.log)
	File string `env:"LOG_FILE" default:"riskboard.log"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
