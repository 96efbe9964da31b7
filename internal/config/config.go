// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and PBP_* environment variables over New().
// - Errors wrap ErrInvalidConfig or ErrLoadConfig so callers can branch.
package config

import (
	"runtime"
	"time"
)

// Result store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the number of games waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of games processed concurrently.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the number of game ids tracked as in flight.
	DedupeSize int `koanf:"dedupe_size"`

	// Store selects the result store: memory or redis.
	Store string `koanf:"store"`

	// RedisAddr, RedisDB and RedisTTLSeconds configure the redis store.
	// A TTL of 0 keeps results forever.
	RedisAddr       string `koanf:"redis_addr"`
	RedisDB         int    `koanf:"redis_db"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`

	// StatsBaseURL is the stats API root used for minutes windows and
	// play-by-play downloads.
	StatsBaseURL string `koanf:"stats_base_url"`

	// StatsTimeoutMS bounds a single stats API request.
	StatsTimeoutMS int `koanf:"stats_timeout_ms"`

	// StatsMaxRetries bounds retries of a failed stats API request.
	StatsMaxRetries int `koanf:"stats_max_retries"`

	// StatsRequestDelayMS spaces consecutive stats API requests.
	StatsRequestDelayMS int `koanf:"stats_request_delay_ms"`

	// BatchMaxFailures stops a batch run after this many consecutive failed
	// games. 0 disables the stop.
	BatchMaxFailures int `koanf:"batch_max_failures"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           1_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		Store:               StoreMemory,
		RedisAddr:           "localhost:6379",
		RedisDB:             0,
		RedisTTLSeconds:     0,
		StatsBaseURL:        "https://stats.nba.com/stats",
		StatsTimeoutMS:      10_000,
		StatsMaxRetries:     3,
		StatsRequestDelayMS: 0,
		BatchMaxFailures:    5,
	}
}

// StatsTimeout returns StatsTimeoutMS as a duration.
func (c *Config) StatsTimeout() time.Duration {
	return time.Duration(c.StatsTimeoutMS) * time.Millisecond
}

// StatsRequestDelay returns StatsRequestDelayMS as a duration.
func (c *Config) StatsRequestDelay() time.Duration {
	return time.Duration(c.StatsRequestDelayMS) * time.Millisecond
}

// RedisTTL returns RedisTTLSeconds as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}
