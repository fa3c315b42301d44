// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"

	"github.com/okian/scout/internal/domain/attribute"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DBPath is the SQLite file backing the player table. Empty keeps
	// players in memory only.
	DBPath string `koanf:"db_path"`

	// CSVPath is the dataset imported on start and by /api/import-data.
	CSVPath string `koanf:"csv_path"`

	// ImportDir is the only directory POST /api/import may read from.
	// Empty restricts background imports to CSVPath.
	ImportDir string `koanf:"import_dir"`

	// ImportOnStart imports CSVPath at start when the store is empty.
	ImportOnStart bool `koanf:"import_on_start"`

	// DefaultLimit is used when a similarity request sets no limit.
	DefaultLimit int `koanf:"default_limit" validate:"gt=0"`

	// MaxLimit caps the limit accepted over HTTP.
	MaxLimit int `koanf:"max_limit" validate:"gtefield=DefaultLimit"`

	// DefaultAttributes are compared when a request names none.
	DefaultAttributes []string `koanf:"default_attributes" validate:"min=1,dive,attribute"`

	// CacheSize bounds the similarity result cache. Zero disables it.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// ImportQueueSize bounds pending import jobs.
	ImportQueueSize int `koanf:"import_queue_size" validate:"gt=0"`

	// ImportTimeoutSeconds bounds a single import job.
	ImportTimeoutSeconds int `koanf:"import_timeout_seconds" validate:"gt=0"`

	// ImportHistory is how many job statuses are kept for GET /api/import/{id}.
	ImportHistory int `koanf:"import_history" validate:"gt=0"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitRequests per window per client IP. Zero disables limiting.
	RateLimitRequests int `koanf:"rate_limit_requests" validate:"gte=0"`

	// RateLimitWindowSeconds is the rate limit window.
	RateLimitWindowSeconds int `koanf:"rate_limit_window_seconds" validate:"gt=0"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DBPath:                 "",
		CSVPath:                "",
		ImportDir:              "",
		ImportOnStart:          true,
		DefaultLimit:           10,
		MaxLimit:               100,
		DefaultAttributes:      attribute.Default(),
		CacheSize:              1024,
		ImportQueueSize:        8,
		ImportTimeoutSeconds:   300,
		ImportHistory:          256,
		CORSAllowedOrigins:     []string{"*"},
		RateLimitRequests:      0,
		RateLimitWindowSeconds: 60,
	}
}
