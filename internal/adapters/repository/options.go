package repository

import "time"

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets how long a stored game lives. Zero keeps games forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the prefix of every key the store writes.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}
