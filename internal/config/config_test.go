package config

import (
	"strings"
	"testing"
	"time"
)

// env builds a LookupFunc over a fixed map.
func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Catalog.Source != "embedded:" {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, "embedded:")
	}
	if cfg.Catalog.ReloadDebounce != 300*time.Millisecond {
		t.Errorf("Catalog.ReloadDebounce = %v, want 300ms", cfg.Catalog.ReloadDebounce)
	}
	if cfg.Search.Debounce != 300*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 300ms", cfg.Search.Debounce)
	}
	if cfg.Search.MaxTermLength != 200 {
		t.Errorf("Search.MaxTermLength = %d, want 200", cfg.Search.MaxTermLength)
	}
	if cfg.Export.Filename != "cuadro_comparativo_riesgos.csv" {
		t.Errorf("Export.Filename = %q", cfg.Export.Filename)
	}
	if cfg.Rate.RequestsPerMinute != 120 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 120)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v, want enabled at /metrics", cfg.Metrics)
	}
}

func TestLoadFrom_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":     "9090",
		"CATALOG_SOURCE":  "csv:/data/risks.csv",
		"CATALOG_WATCH":   "true",
		"SEARCH_DEBOUNCE": "150ms",
		"LOG_LEVEL":       "debug",
		"TRUSTED_PROXIES": "10.0.0.0/8, 192.168.0.0/16,",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Catalog.Source != "csv:/data/risks.csv" || !cfg.Catalog.Watch {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Search.Debounce != 150*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 150ms", cfg.Search.Debounce)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if len(cfg.Security.TrustedProxies) != 2 {
		t.Errorf("TrustedProxies = %v, want 2 entries", cfg.Security.TrustedProxies)
	}
}

func TestLoadFrom_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"PORT": "3000"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d (from PORT)", cfg.Server.Port, 3000)
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"bad port type", map[string]string{"SERVER_PORT": "eighty"}, "invalid integer"},
		{"bad duration", map[string]string{"SEARCH_DEBOUNCE": "soon"}, "invalid duration"},
		{"bad bool", map[string]string{"CATALOG_WATCH": "maybe"}, "invalid boolean"},
		{"port range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"zero debounce", map[string]string{"SEARCH_DEBOUNCE": "0s"}, "SEARCH_DEBOUNCE"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"export path", map[string]string{"EXPORT_FILENAME": "../x.csv"}, "EXPORT_FILENAME"},
		{"export slots", map[string]string{"EXPORT_MAX_CONCURRENT": "0"}, "EXPORT_MAX_CONCURRENT"},
		{"metrics path", map[string]string{"METRICS_PATH": "metrics"}, "METRICS_PATH"},
		{"keys required", map[string]string{"REQUIRE_API_KEY": "true"}, "API_KEYS"},
		{"pool sizes", map[string]string{"DB_MAX_CONNS": "1", "DB_MIN_CONNS": "2"}, "DB_MAX_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Server.Port = 0
	cfg.Search.MaxTermLength = 0
	cfg.Logging.Format = "yaml"

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"SERVER_PORT", "SEARCH_MAX_TERM", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %s: %v", want, err)
		}
	}
}

func TestWithOverrides(t *testing.T) {
	lookup := WithOverrides(env(map[string]string{
		"CATALOG_SOURCE": "embedded:",
		"LOG_LEVEL":      "warn",
	}), map[string]string{"CATALOG_SOURCE": "file:/tmp/r.yaml"})

	cfg, err := LoadFrom(lookup)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Catalog.Source != "file:/tmp/r.yaml" {
		t.Errorf("Catalog.Source = %q, want override", cfg.Catalog.Source)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want base value", cfg.Logging.Level)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"localhost", 3000, "localhost:3000"},
		{"::1", 8080, "[::1]:8080"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfig_StringMasksCredentials(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"CATALOG_SOURCE": "postgres://risk:s3cret@db:5432/risks",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "s3cret") {
		t.Errorf("String() leaks password: %s", s)
	}
	if !strings.Contains(s, "MASKED") {
		t.Errorf("String() = %s, want masked password", s)
	}
}

func TestMaskSource(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"embedded:", "embedded:"},
		{"file:/tmp/r.yaml", "file:/tmp/r.yaml"},
		{"postgres://u@h/db", "postgres://u@h/db"},
		{"postgres://u:p@h/db", "postgres://u:MASKED@h/db"},
	}
	for _, tt := range tests {
		if got := MaskSource(tt.in); got != tt.want {
			t.Errorf("MaskSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
