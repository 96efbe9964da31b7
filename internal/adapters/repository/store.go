// Package repository stores processed games and serves their possessions
// and timelines.
package repository

import (
	"context"

	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/possession"
)

// Store provides read/write access to processed games.
type Store interface {
	// Save stores the result of a game, replacing any earlier result for the
	// same game id.
	Save(ctx context.Context, res *game.Result) error

	// Possessions returns the possession summaries of a game in order.
	// Returns ErrNotFound if the game is unknown.
	Possessions(ctx context.Context, gameID string) ([]possession.Summary, error)

	// Timeline returns the per-event timeline of a game.
	// Returns ErrNotFound if the game is unknown.
	Timeline(ctx context.Context, gameID string) ([]possession.TimelineRow, error)

	// Count returns the number of stored games.
	Count(ctx context.Context) (int, error)
}
