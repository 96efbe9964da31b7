package possession

import "github.com/okian/possessions/internal/domain/roster"

// Summary is the record produced for one possession.
type Summary struct {
	GameID       string            `json:"game_id"`
	PossessionID int               `json:"possession_id"`
	Period       int               `json:"period"`
	Start        int               `json:"possession_start"`
	End          int               `json:"possession_end"`
	Team1        roster.TeamRoster `json:"team1"`
	Team2        roster.TeamRoster `json:"team2"`
	Team1Points  int               `json:"team_1_points"`
	Team2Points  int               `json:"team_2_points"`
	// OffenseTeamID is 0 when OffenseResolved is false.
	OffenseTeamID   int64 `json:"possession_team"`
	OffenseResolved bool  `json:"possession_team_resolved"`
	FirstSeq        int   `json:"first_seq"`
	LastSeq         int   `json:"last_seq"`
	Plays           int   `json:"plays"`
}

// Summarize builds the summary of one run. Teams and rosters come from the
// first member, the owning team from the last.
func Summarize(gameID string, possessionID int, plays []Play, run Run) Summary {
	first := &plays[run[0]]
	last := &plays[run[len(run)-1]]
	lineup := first.Lineup

	s := Summary{
		GameID:       gameID,
		PossessionID: possessionID,
		Period:       first.Period,
		Start:        first.Elapsed,
		End:          first.Elapsed,
		Team1:        lineup.Team1,
		Team2:        lineup.Team2,
		FirstSeq:     first.Seq,
		LastSeq:      last.Seq,
		Plays:        len(run),
	}
	for _, idx := range run {
		p := &plays[idx]
		s.Start = min(s.Start, p.Elapsed)
		s.End = max(s.End, p.Elapsed)
		switch p.Actor1.TeamID {
		case lineup.Team1.TeamID:
			s.Team1Points += p.Points()
		case lineup.Team2.TeamID:
			s.Team2Points += p.Points()
		}
	}
	if team, ok := offenseTeam(last, lineup); ok {
		s.OffenseTeamID = team
		s.OffenseResolved = true
	}
	return s
}

// offenseTeam applies the ownership table to the last play of a possession.
// The result is unresolved when the play's type is unmapped or the id it
// yields is not one of the two teams on the floor.
func offenseTeam(last *Play, lineup roster.Snapshot) (int64, bool) {
	if last.Unresolved() {
		return 0, false
	}
	var team int64
	switch {
	case last.IsMadeShot() || last.IsFreeThrow():
		team = last.Actor1.TeamID
	case last.Category == CatRebound:
		team = lineup.Other(last.actorTeam())
	case last.Category == CatTurnover:
		team = last.actorTeam()
	default:
		team = last.Actor1.TeamID
		if team == 0 {
			team = last.Actor1.PlayerID
		}
	}
	return team, lineup.Has(team)
}

// SummarizeAll segments plays and summarizes every run, numbering possessions
// from 1. It also returns the possession id of every member play, keyed by
// sequence number.
func SummarizeAll(gameID string, plays []Play) ([]Summary, map[int]int) {
	runs := Segment(plays)
	summaries := make([]Summary, 0, len(runs))
	membership := make(map[int]int, len(plays))
	for i, run := range runs {
		id := i + 1
		summaries = append(summaries, Summarize(gameID, id, plays, run))
		for _, idx := range run {
			membership[plays[idx].Seq] = id
		}
	}
	return summaries, membership
}
