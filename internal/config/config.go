// Package config defines service configuration and its layered loader.
package config

import (
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CORSAllowedOrigins is a comma-separated origin list; empty disables CORS.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// ImportMaxBytes caps the size of a spreadsheet upload.
	ImportMaxBytes int64 `koanf:"import_max_bytes"`

	// ImportMaxRows caps the data rows read from one spreadsheet.
	ImportMaxRows int `koanf:"import_max_rows"`

	// SeedEnabled loads the two fixed seed records at startup.
	SeedEnabled bool `koanf:"seed_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":5000",
		ImportMaxBytes: 10 << 20,
		ImportMaxRows:  5_000,
		SeedEnabled:    true,
	}
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
