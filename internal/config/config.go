package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// App holds the service-level configuration. Database settings live in their
// own struct next to the connection code (see internal/storage/postgres).
type App struct {
	Port          string        `env:"PORT,default=8080"`
	TriggerSecret string        `env:"TRIGGER_SECRET"`
	BatchSize     int           `env:"JOB_BATCH_SIZE,default=10"`
	StaleAfter    time.Duration `env:"JOB_STALE_AFTER,default=10m"`

	RateLimit       int           `env:"RATE_LIMIT,default=10"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	// RateLimitDisplay is the nominal limit advertised in the
	// X-RateLimit-Limit header. Defaults to RateLimit when unset.
	RateLimitDisplay int `env:"RATE_LIMIT_DISPLAY"`

	GitHubToken     string `env:"GITHUB_TOKEN"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// to help with testing
var envProcess = envconfig.Process

func LoadFromEnv(ctx context.Context) (*App, error) {
	var cfg App
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.RateLimitDisplay == 0 {
		cfg.RateLimitDisplay = cfg.RateLimit
	}
	return &cfg, nil
}

func validate(cfg *App) error {
	var errs []string

	if strings.TrimSpace(cfg.Port) == "" {
		errs = append(errs, "PORT is required")
	}
	if cfg.BatchSize < 1 {
		errs = append(errs, "JOB_BATCH_SIZE must be at least 1")
	}
	if cfg.StaleAfter <= 0 {
		errs = append(errs, "JOB_STALE_AFTER must be positive")
	}
	if cfg.RateLimit < 1 {
		errs = append(errs, "RATE_LIMIT must be at least 1")
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.RateLimitDisplay < 0 {
		errs = append(errs, "RATE_LIMIT_DISPLAY must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
