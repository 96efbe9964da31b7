package roster

import (
	"fmt"

	"github.com/okian/possessions/internal/domain/model"
)

// Tracker replays substitutions over period-start lineups. A Tracker owns the
// state of a single game and must be driven in feed order from one goroutine.
type Tracker struct {
	gameID  string
	lineups PeriodLineups

	period  int
	current Snapshot
	started bool
}

// NewTracker returns a tracker seeded from the resolved period lineups.
func NewTracker(gameID string, lineups PeriodLineups) *Tracker {
	return &Tracker{gameID: gameID, lineups: lineups}
}

// Consume advances the rosters past e. The first event of a period re-seeds
// both rosters from the period's starting lineup; substitutions swap the
// outgoing player for the incoming one. Every other event is a no-op.
func (t *Tracker) Consume(e *model.Event) error {
	if !t.started || e.Period != t.period {
		start, ok := t.lineups[e.Period]
		if !ok {
			return fmt.Errorf("%w: game %s period %d", ErrNoLineup, t.gameID, e.Period)
		}
		t.current = start
		t.period = e.Period
		t.started = true
	}

	if e.MsgType != model.MsgSubstitution {
		return nil
	}

	teamID := e.Actor1.TeamID
	out, in := e.Actor1.PlayerID, e.Actor2.PlayerID
	team, ok := t.current.Team(teamID)
	switch {
	case !ok:
		return t.integrity(e, teamID, out, "substitution for a team not on the floor")
	case !team.Contains(out):
		return t.integrity(e, teamID, out, "outgoing player not on the floor")
	case in == 0 || t.current.Team1.Contains(in) || t.current.Team2.Contains(in):
		return t.integrity(e, teamID, in, "incoming player already on the floor")
	}

	t.current = t.current.with(team.replace(out, in))
	return nil
}

// Snapshot returns a copy of the rosters as they stand now.
func (t *Tracker) Snapshot() Snapshot {
	return t.current
}

func (t *Tracker) integrity(e *model.Event, teamID, playerID int64, reason string) error {
	return &IntegrityError{
		GameID:   t.gameID,
		Period:   e.Period,
		Seq:      e.Seq,
		TeamID:   teamID,
		PlayerID: playerID,
		Reason:   reason,
	}
}
