package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "pbp"
	scanBatch        = 500
)

// RedisStore keeps results in Redis as JSON, one key for the possessions
// and one for the timeline of each game.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a store over an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) possessionsKey(gameID string) string {
	return fmt.Sprintf("%s:game:%s:possessions", s.prefix, gameID)
}

func (s *RedisStore) timelineKey(gameID string) string {
	return fmt.Sprintf("%s:game:%s:timeline", s.prefix, gameID)
}

// Save implements Store.Save. Both keys are written in one transaction.
func (s *RedisStore) Save(ctx context.Context, res *game.Result) error {
	if res == nil {
		return ErrNilResult
	}
	start := time.Now()

	possessions, err := json.Marshal(res.Possessions)
	if err != nil {
		return fmt.Errorf("marshaling possessions: %w", err)
	}
	timeline, err := json.Marshal(res.Timeline)
	if err != nil {
		return fmt.Errorf("marshaling timeline: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.possessionsKey(res.GameID), possessions, s.ttl)
		pipe.Set(ctx, s.timelineKey(res.GameID), timeline, s.ttl)
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", "redis_write")
		return fmt.Errorf("saving game %s: %w", res.GameID, err)
	}

	metrics.RecordRepositorySaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// Possessions implements Store.Possessions.
func (s *RedisStore) Possessions(ctx context.Context, gameID string) ([]possession.Summary, error) {
	var out []possession.Summary
	if err := s.read(ctx, s.possessionsKey(gameID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Timeline implements Store.Timeline.
func (s *RedisStore) Timeline(ctx context.Context, gameID string) ([]possession.TimelineRow, error) {
	var out []possession.TimelineRow
	if err := s.read(ctx, s.timelineKey(gameID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) read(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	if err != nil {
		metrics.RecordErrorByComponent("repository", "redis_read")
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Count implements Store.Count by scanning the possessions keys.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	pattern := fmt.Sprintf("%s:game:*:possessions", s.prefix)
	n := 0
	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	metrics.UpdateStoredGames(n)
	return n, nil
}
