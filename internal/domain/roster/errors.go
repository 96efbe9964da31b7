package roster

import (
	"errors"
	"fmt"
)

// Sentinel kinds for roster errors.
var (
	ErrIntegrity = errors.New("roster integrity violated")
	ErrNoLineup  = errors.New("no starting lineup for period")
)

// IntegrityError reports a substitution that cannot be applied to the
// tracked rosters. The game's feed is corrupt or incomplete.
type IntegrityError struct {
	GameID   string
	Period   int
	Seq      int
	TeamID   int64
	PlayerID int64
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("game %s period %d event %d: team %d player %d: %s",
		e.GameID, e.Period, e.Seq, e.TeamID, e.PlayerID, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrIntegrity).
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
