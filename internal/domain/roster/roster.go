// Package roster tracks the five players each team has on the court.
package roster

import (
	"slices"
)

// CourtSize is the number of players a team has on the court.
const CourtSize = 5

// TeamRoster is one team's on-court five, sorted ascending.
type TeamRoster struct {
	TeamID  int64            `json:"team_id"`
	Players [CourtSize]int64 `json:"players"`
}

// NewTeamRoster builds a sorted roster. It returns false unless players
// holds exactly CourtSize distinct non-zero ids.
func NewTeamRoster(teamID int64, players []int64) (TeamRoster, bool) {
	if len(players) != CourtSize {
		return TeamRoster{}, false
	}
	sorted := slices.Clone(players)
	slices.Sort(sorted)
	for i, id := range sorted {
		if id == 0 || (i > 0 && sorted[i-1] == id) {
			return TeamRoster{}, false
		}
	}
	r := TeamRoster{TeamID: teamID}
	copy(r.Players[:], sorted)
	return r, true
}

// Contains reports whether the player is on the court.
func (r TeamRoster) Contains(playerID int64) bool {
	return slices.Contains(r.Players[:], playerID)
}

// replace swaps out for in and keeps the roster sorted.
func (r TeamRoster) replace(out, in int64) TeamRoster {
	i := slices.Index(r.Players[:], out)
	r.Players[i] = in
	slices.Sort(r.Players[:])
	return r
}

// Snapshot is both teams' rosters at one instant. Team1 always has the lower
// team id so that snapshots of the same game compare equal across runs.
type Snapshot struct {
	Team1 TeamRoster `json:"team1"`
	Team2 TeamRoster `json:"team2"`
}

// NewSnapshot orders the two rosters by team id.
func NewSnapshot(a, b TeamRoster) Snapshot {
	if b.TeamID < a.TeamID {
		a, b = b, a
	}
	return Snapshot{Team1: a, Team2: b}
}

// Team returns the roster for teamID.
func (s Snapshot) Team(teamID int64) (TeamRoster, bool) {
	switch teamID {
	case s.Team1.TeamID:
		return s.Team1, true
	case s.Team2.TeamID:
		return s.Team2, true
	}
	return TeamRoster{}, false
}

// Other returns the id of the opponent of teamID, or 0 if teamID plays in
// neither slot.
func (s Snapshot) Other(teamID int64) int64 {
	switch teamID {
	case s.Team1.TeamID:
		return s.Team2.TeamID
	case s.Team2.TeamID:
		return s.Team1.TeamID
	}
	return 0
}

// Has reports whether teamID is one of the two teams.
func (s Snapshot) Has(teamID int64) bool {
	return teamID != 0 && (teamID == s.Team1.TeamID || teamID == s.Team2.TeamID)
}

// with returns a copy of s with the roster of r.TeamID replaced.
func (s Snapshot) with(r TeamRoster) Snapshot {
	if r.TeamID == s.Team1.TeamID {
		s.Team1 = r
	} else {
		s.Team2 = r
	}
	return s
}

// PeriodLineups maps a period number to the rosters on the court at its
// start.
type PeriodLineups map[int]Snapshot
