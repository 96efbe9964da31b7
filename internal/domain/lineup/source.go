// Package lineup resolves the five players each team starts a period with.
package lineup

import (
	"context"
	"time"

	"github.com/okian/possessions/internal/domain/model"
)

// PlayerMinutes is one player credited with court time inside a window.
type PlayerMinutes struct {
	PlayerID int64
	TeamID   int64
}

// MinutesSource reports the players credited with court time strictly inside
// [start, end], both measured from tip-off. An empty result and an error are
// different outcomes: empty means the source answered with no players.
// Implementations own retries; the resolver calls each window once.
type MinutesSource interface {
	MinutesInRange(ctx context.Context, gameID string, start, end time.Duration) ([]PlayerMinutes, error)
}

// MinutesSourceFunc adapts a function to MinutesSource.
type MinutesSourceFunc func(ctx context.Context, gameID string, start, end time.Duration) ([]PlayerMinutes, error)

// MinutesInRange calls f.
func (f MinutesSourceFunc) MinutesInRange(ctx context.Context, gameID string, start, end time.Duration) ([]PlayerMinutes, error) {
	return f(ctx, gameID, start, end)
}

// windowMargin keeps the window off the period boundaries so that players
// checked in at the horn of the adjacent period are not credited.
const windowMargin = 500 * time.Millisecond

// Window returns the minutes window used to find a period's starters. It
// spans the whole period minus a half-second margin on either side.
func Window(period int) (start, end time.Duration) {
	periodStart := time.Duration(model.PeriodStart(period)) * time.Second
	periodEnd := periodStart + time.Duration(model.PeriodLength(period))*time.Second
	return periodStart + windowMargin, periodEnd - windowMargin
}
