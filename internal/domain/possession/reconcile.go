package possession

import "github.com/okian/possessions/internal/domain/model"

// Reconcile makes possessions contiguous: every possession after the first
// starts where the previous one ended. The input is not modified.
func Reconcile(summaries []Summary) []Summary {
	out := make([]Summary, len(summaries))
	copy(out, summaries)
	for i := 1; i < len(out); i++ {
		if out[i].Start != out[i-1].End {
			out[i].Start = out[i-1].End
		}
	}
	return out
}

// TimelineRow is one raw event projected with its possession attribution
// and the running game score.
type TimelineRow struct {
	GameID      string            `json:"game_id"`
	Seq         int               `json:"seq"`
	EventNum    int               `json:"event_num"`
	Period      int               `json:"period"`
	GameClock   string            `json:"game_clock"`
	MsgType     model.MessageType `json:"msg_type"`
	ActionType  int               `json:"action_type"`
	Description string            `json:"description,omitempty"`
	Elapsed     int               `json:"elapsed"`

	// PossessionID is 0 for rows with no attribution.
	PossessionID  int   `json:"possession_id"`
	Start         int   `json:"possession_start"`
	End           int   `json:"possession_end"`
	Team1Points   int   `json:"team_1_points"`
	Team2Points   int   `json:"team_2_points"`
	OffenseTeamID int64 `json:"possession_team"`
	// Inherited marks rows filled from the preceding row.
	Inherited bool `json:"inherited,omitempty"`

	Team1ID    int64 `json:"team_1_id"`
	Team2ID    int64 `json:"team_2_id"`
	Team1Score int   `json:"team_1_score"`
	Team2Score int   `json:"team_2_score"`
}

func (r *TimelineRow) attributed() bool { return r.PossessionID != 0 }

func (r *TimelineRow) attribute(s *Summary) {
	r.PossessionID = s.PossessionID
	r.Start = s.Start
	r.End = s.End
	r.Team1Points = s.Team1Points
	r.Team2Points = s.Team2Points
	r.OffenseTeamID = s.OffenseTeamID
}

// BuildTimeline joins the summaries back onto every play by sequence
// number. A play with no possession of its own inherits the preceding row's
// attribution only while that possession has not ended before the play.
func BuildTimeline(plays []Play, summaries []Summary, membership map[int]int) []TimelineRow {
	byID := make(map[int]*Summary, len(summaries))
	for i := range summaries {
		byID[summaries[i].PossessionID] = &summaries[i]
	}

	rows := make([]TimelineRow, len(plays))
	var score1, score2 int
	for i := range plays {
		p := &plays[i]
		switch p.Actor1.TeamID {
		case p.Lineup.Team1.TeamID:
			score1 += p.Points()
		case p.Lineup.Team2.TeamID:
			score2 += p.Points()
		}

		row := TimelineRow{
			GameID:      p.GameID,
			Seq:         p.Seq,
			EventNum:    p.EventNum,
			Period:      p.Period,
			GameClock:   p.GameClock,
			MsgType:     p.MsgType,
			ActionType:  p.ActionType,
			Description: p.Description(),
			Elapsed:     p.Elapsed,
			Team1ID:     p.Lineup.Team1.TeamID,
			Team2ID:     p.Lineup.Team2.TeamID,
			Team1Score:  score1,
			Team2Score:  score2,
		}
		if s, ok := byID[membership[p.Seq]]; ok {
			row.attribute(s)
		} else if i > 0 && rows[i-1].attributed() && rows[i-1].End >= p.Elapsed {
			prev := &rows[i-1]
			row.PossessionID = prev.PossessionID
			row.Start = prev.Start
			row.End = prev.End
			row.Team1Points = prev.Team1Points
			row.Team2Points = prev.Team2Points
			row.OffenseTeamID = prev.OffenseTeamID
			row.Inherited = true
		}
		rows[i] = row
	}
	return rows
}
