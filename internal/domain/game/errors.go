package game

import (
	"context"
	"errors"

	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/roster"
)

// ErrNoEvents is returned for a game submitted without events.
var ErrNoEvents = errors.New("game has no events")

// Failure reasons used to label skipped games in logs and metrics.
const (
	ReasonIntegrity = "integrity"
	ReasonLineup    = "lineup"
	ReasonNoEvents  = "no_events"
	ReasonBadClock  = "bad_clock"
	ReasonCancelled = "cancelled"
	ReasonOther     = "other"
)

// FailureReason classifies a Process error. A cancelled game is reported
// as cancelled even when the cancellation surfaced through a lineup fetch.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	case errors.Is(err, roster.ErrIntegrity), errors.Is(err, roster.ErrNoLineup):
		return ReasonIntegrity
	case errors.Is(err, lineup.ErrLineupUnavailable), errors.Is(err, lineup.ErrInvalidLineup):
		return ReasonLineup
	case errors.Is(err, ErrNoEvents):
		return ReasonNoEvents
	case errors.Is(err, model.ErrBadClock):
		return ReasonBadClock
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	}
	return ReasonOther
}
