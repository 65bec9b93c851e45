package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "FOODBRIDGE"

// Config is the process configuration read from the environment.
type Config struct {
	DBPath   string `envconfig:"DB_PATH" default:"./foodbridge.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
	Adhoc    QueryLimits
}

// QueryLimits bounds a single ad-hoc query.
type QueryLimits struct {
	// Timeout aborts execution once exceeded. Default: 5s
	Timeout time.Duration `default:"5s"`

	// MaxRows is the largest result an ad-hoc query may return. Default: 10000
	MaxRows int `split_words:"true" default:"10000"`
}

// DefaultQueryLimits returns the limits used when nothing is configured.
func DefaultQueryLimits() QueryLimits {
	return QueryLimits{
		Timeout: 5 * time.Second,
		MaxRows: 10000,
	}
}

// Validate rejects limits that would disable the bounds.
func (q QueryLimits) Validate() error {
	if q.Timeout <= 0 {
		return fmt.Errorf("ad-hoc timeout must be positive, got %s", q.Timeout)
	}
	if q.MaxRows <= 0 {
		return fmt.Errorf("ad-hoc max rows must be positive, got %d", q.MaxRows)
	}
	return nil
}

// Load reads the configuration from FOODBRIDGE_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Adhoc.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadQueryLimits overlays stored adhoc.* settings on base.
func LoadQueryLimits(loader *Loader, base QueryLimits) QueryLimits {
	limits := QueryLimits{
		Timeout: loader.Duration("adhoc.timeout", base.Timeout),
		MaxRows: loader.Int("adhoc.max_rows", base.MaxRows),
	}
	if limits.Validate() != nil {
		return base
	}
	return limits
}
