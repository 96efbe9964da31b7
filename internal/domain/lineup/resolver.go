package lineup

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/roster"
	"github.com/okian/possessions/pkg/logger"
)

// Resolver finds period-start lineups for a game.
type Resolver struct {
	source MinutesSource
	logger logger.Logger
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver backed by source.
func NewResolver(source MinutesSource, opts ...Option) *Resolver {
	r := &Resolver{source: source}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the starting five of both teams for every period that
// appears in events. Starters are the players credited with minutes in the
// period's window minus those whose first substitution of the period brought
// them in. Any failure fails the whole game; no lineup is ever guessed.
func (r *Resolver) Resolve(ctx context.Context, gameID string, events []model.Event) (roster.PeriodLineups, error) {
	periods, entered := enteredDuringPeriod(events)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: game %s has no periods", ErrLineupUnavailable, gameID)
	}

	out := make(roster.PeriodLineups, len(periods))
	for _, period := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start, end := Window(period)
		credited, err := r.source.MinutesInRange(ctx, gameID, start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: game %s period %d: %w", ErrLineupUnavailable, gameID, period, err)
		}
		if len(credited) == 0 {
			return nil, fmt.Errorf("%w: game %s period %d: no players credited", ErrLineupUnavailable, gameID, period)
		}

		snap, err := starters(credited, entered[period])
		if err != nil {
			return nil, fmt.Errorf("game %s period %d: %w", gameID, period, err)
		}
		out[period] = snap

		if r.logger != nil {
			r.logger.Debug(ctx, "resolved period lineup",
				logger.String("game_id", gameID),
				logger.Int("period", period),
				logger.Any("team1", snap.Team1),
				logger.Any("team2", snap.Team2),
			)
		}
	}
	return out, nil
}

// enteredDuringPeriod returns the periods in feed order and, per period, the
// players whose earliest substitution of that period subbed them in.
func enteredDuringPeriod(events []model.Event) ([]int, map[int]map[int64]bool) {
	var periods []int
	seen := make(map[int]map[int64]bool)
	entered := make(map[int]map[int64]bool)

	for i := range events {
		e := &events[i]
		if _, ok := seen[e.Period]; !ok {
			periods = append(periods, e.Period)
			seen[e.Period] = make(map[int64]bool)
			entered[e.Period] = make(map[int64]bool)
		}
		if e.MsgType != model.MsgSubstitution {
			continue
		}
		first := seen[e.Period]
		if out := e.Actor1.PlayerID; out != 0 {
			first[out] = true
		}
		if in := e.Actor2.PlayerID; in != 0 && !first[in] {
			first[in] = true
			entered[e.Period][in] = true
		}
	}
	return periods, entered
}

// starters splits the credited players per team and drops the ones who
// entered during the period.
func starters(credited []PlayerMinutes, entered map[int64]bool) (roster.Snapshot, error) {
	byTeam := make(map[int64][]int64)
	var teams []int64
	for _, pm := range credited {
		if entered[pm.PlayerID] {
			continue
		}
		if _, ok := byTeam[pm.TeamID]; !ok {
			teams = append(teams, pm.TeamID)
		}
		if !slices.Contains(byTeam[pm.TeamID], pm.PlayerID) {
			byTeam[pm.TeamID] = append(byTeam[pm.TeamID], pm.PlayerID)
		}
	}
	if len(teams) != 2 {
		return roster.Snapshot{}, fmt.Errorf("%w: expected 2 teams, got %d", ErrInvalidLineup, len(teams))
	}

	rosters := make([]roster.TeamRoster, 0, len(teams))
	for _, teamID := range teams {
		r, ok := roster.NewTeamRoster(teamID, byTeam[teamID])
		if !ok {
			return roster.Snapshot{}, fmt.Errorf("%w: team %d has %d starters", ErrInvalidLineup, teamID, len(byTeam[teamID]))
		}
		rosters = append(rosters, r)
	}
	return roster.NewSnapshot(rosters[0], rosters[1]), nil
}
