// Package model contains the play-by-play domain models passed between layers.
package model

import "strings"

// MessageType classifies a play-by-play row (EVENTMSGTYPE upstream).
type MessageType int

// Message types published by the stats feed.
const (
	MsgFieldGoalMade   MessageType = 1
	MsgFieldGoalMissed MessageType = 2
	MsgFreeThrow       MessageType = 3
	MsgRebound         MessageType = 4
	MsgTurnover        MessageType = 5
	MsgFoul            MessageType = 6
	MsgViolation       MessageType = 7
	MsgSubstitution    MessageType = 8
	MsgTimeout         MessageType = 9
	MsgJumpBall        MessageType = 10
	MsgEjection        MessageType = 11
	MsgPeriodStart     MessageType = 12
	MsgPeriodEnd       MessageType = 13
	MsgInstantReplay   MessageType = 18
)

// Person types that mark an actor slot as a team rather than a player.
const (
	PersonHomeTeam    = 2
	PersonVisitorTeam = 3
)

// Actor is one of the three participant slots attached to an event.
type Actor struct {
	PersonType       int    `json:"person_type"`
	PlayerID         int64  `json:"player_id"`
	PlayerName       string `json:"player_name,omitempty"`
	TeamID           int64  `json:"team_id"`
	TeamCity         string `json:"team_city,omitempty"`
	TeamNickname     string `json:"team_nickname,omitempty"`
	TeamAbbreviation string `json:"team_abbreviation,omitempty"`
}

// IsTeam reports whether the slot names a team instead of a player. Team
// slots carry the team id in PlayerID.
func (a Actor) IsTeam() bool {
	if a.PersonType == PersonHomeTeam || a.PersonType == PersonVisitorTeam {
		return true
	}
	return a.TeamID == 0 && a.PlayerID != 0
}

// Event is one immutable play-by-play occurrence of a game.
type Event struct {
	GameID string `json:"game_id"`
	// Seq is assigned by ingestion order and is the join key for the timeline.
	Seq int `json:"seq"`
	// EventNum is the upstream EVENTNUM; informational only.
	EventNum   int         `json:"event_num"`
	Period     int         `json:"period"`
	WallClock  string      `json:"wall_clock"`
	GameClock  string      `json:"game_clock"`
	MsgType    MessageType `json:"msg_type"`
	ActionType int         `json:"action_type"`

	Actor1 Actor `json:"actor1"`
	Actor2 Actor `json:"actor2"`
	Actor3 Actor `json:"actor3"`

	HomeDescription    string `json:"home_description,omitempty"`
	NeutralDescription string `json:"neutral_description,omitempty"`
	VisitorDescription string `json:"visitor_description,omitempty"`
	Score              string `json:"score,omitempty"`
	ScoreMargin        string `json:"score_margin,omitempty"`
}

// Description joins the three free-text description fields.
func (e *Event) Description() string {
	return e.HomeDescription + e.NeutralDescription + e.VisitorDescription
}

// IsMiss reports whether the play is a missed attempt.
func (e *Event) IsMiss() bool {
	return strings.Contains(e.Description(), "MISS")
}

// IsThree reports whether the shot was a three-point attempt.
func (e *Event) IsThree() bool {
	return strings.Contains(e.Description(), "3PT")
}

// IsMadeShot reports a made field goal.
func (e *Event) IsMadeShot() bool { return e.MsgType == MsgFieldGoalMade }

// IsFreeThrow reports a free throw attempt, made or missed.
func (e *Event) IsFreeThrow() bool { return e.MsgType == MsgFreeThrow }

// IsMadeFreeThrow reports a free throw that was not missed.
func (e *Event) IsMadeFreeThrow() bool { return e.IsFreeThrow() && !e.IsMiss() }

// IsShotAttempt reports a field goal or free throw attempt of either outcome.
func (e *Event) IsShotAttempt() bool {
	return e.MsgType == MsgFieldGoalMade || e.MsgType == MsgFieldGoalMissed || e.MsgType == MsgFreeThrow
}

// SameMoment reports whether two events share the period and game clock.
func (e *Event) SameMoment(o *Event) bool {
	return e.Period == o.Period && e.GameClock == o.GameClock
}

// Points returns the points credited by the event: 1 for a made free
// throw, 3 or 2 for a made field goal and 0 otherwise.
func (e *Event) Points() int {
	switch {
	case e.IsMadeFreeThrow():
		return 1
	case e.IsMadeShot() && e.IsThree():
		return 3
	case e.IsMadeShot():
		return 2
	default:
		return 0
	}
}

// Sequence assigns Seq by slice position and stamps gameID on every event.
// Upstream event numbers are not trusted for ordering.
func Sequence(gameID string, events []Event) []Event {
	out := make([]Event, len(events))
	for i := range events {
		out[i] = events[i]
		out[i].GameID = gameID
		out[i].Seq = i + 1
	}
	return out
}
