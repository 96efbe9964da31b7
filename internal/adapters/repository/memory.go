package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/pkg/metrics"
)

// MemoryStore keeps results in a map guarded by a RWMutex.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*game.Result
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*game.Result)}
}

// Save implements Store.Save. The result is copied so later changes by the
// caller are not visible to readers.
func (s *MemoryStore) Save(ctx context.Context, res *game.Result) error {
	if res == nil {
		return ErrNilResult
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	stored := &game.Result{
		GameID:       res.GameID,
		Possessions:  slices.Clone(res.Possessions),
		Timeline:     slices.Clone(res.Timeline),
		Unclassified: slices.Clone(res.Unclassified),
	}

	s.mu.Lock()
	s.games[res.GameID] = stored
	count := len(s.games)
	s.mu.Unlock()

	metrics.RecordRepositorySaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateStoredGames(count)
	return nil
}

// Possessions implements Store.Possessions.
func (s *MemoryStore) Possessions(_ context.Context, gameID string) ([]possession.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.games[gameID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return slices.Clone(res.Possessions), nil
}

// Timeline implements Store.Timeline.
func (s *MemoryStore) Timeline(_ context.Context, gameID string) ([]possession.TimelineRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.games[gameID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return slices.Clone(res.Timeline), nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games), nil
}
