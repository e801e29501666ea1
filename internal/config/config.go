package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported sink drivers.
const (
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port         int           `envconfig:"PORT" default:"8080"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	Version      string        `envconfig:"VERSION" default:"dev"`
	SinkDriver   string        `envconfig:"SINK_DRIVER" default:"sheets"`
	SinkTimeout    time.Duration `envconfig:"SINK_TIMEOUT" default:"15s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxBodyBytes   int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// Google credentials are optional at startup. Without them every
	// submission fails with a configuration error.
	GoogleClientEmail string `envconfig:"GOOGLE_CLIENT_EMAIL"`
	GooglePrivateKey  string `envconfig:"GOOGLE_PRIVATE_KEY"`
	GoogleSheetID     string `envconfig:"GOOGLE_SHEET_ID"`
	GoogleSheetRange  string `envconfig:"GOOGLE_SHEET_RANGE" default:"Sheet1!A:H"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	switch cfg.SinkDriver {
	case SinkSheets:
	case SinkPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SINK_DRIVER=%s", SinkPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported SINK_DRIVER %q", cfg.SinkDriver)
	}

	if cfg.RequestTimeout <= cfg.SinkTimeout {
		return nil, fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed SINK_TIMEOUT (%s)", cfg.RequestTimeout, cfg.SinkTimeout)
	}

	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}

	return &cfg, nil
}
