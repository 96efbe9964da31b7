package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	envPrefix     = "PBP_"
	envConfigPath = "PBP_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PBP_CONFIG is set
//  3. env (prefix PBP_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like PBP_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreRedis:
		return fmt.Errorf("%w: store must be %q or %q, got %q", ErrInvalidConfig, StoreMemory, StoreRedis, c.Store)
	case c.Store == StoreRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
	case c.RedisTTLSeconds < 0:
		return fmt.Errorf("%w: redis_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.StatsBaseURL == "":
		return fmt.Errorf("%w: stats_base_url must not be empty", ErrInvalidConfig)
	case c.StatsTimeoutMS <= 0:
		return fmt.Errorf("%w: stats_timeout_ms must be positive", ErrInvalidConfig)
	case c.StatsMaxRetries < 0 || c.StatsRequestDelayMS < 0 || c.BatchMaxFailures < 0:
		return fmt.Errorf("%w: stats_max_retries, stats_request_delay_ms and batch_max_failures must not be negative", ErrInvalidConfig)
	}
	return nil
}
