// Package feed reads play-by-play events from the stats CSV layout and
// JSON request bodies, and writes possessions and timelines as CSV.
package feed

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/possessions/internal/domain/model"
)

// Column names of the stats play-by-play layout.
const (
	ColGameID             = "GAME_ID"
	ColEventNum           = "EVENTNUM"
	ColMsgType            = "EVENTMSGTYPE"
	ColActionType         = "EVENTMSGACTIONTYPE"
	ColPeriod             = "PERIOD"
	ColWallClock          = "WCTIMESTRING"
	ColGameClock          = "PCTIMESTRING"
	ColHomeDescription    = "HOMEDESCRIPTION"
	ColNeutralDescription = "NEUTRALDESCRIPTION"
	ColVisitorDescription = "VISITORDESCRIPTION"
	ColScore              = "SCORE"
	ColScoreMargin        = "SCOREMARGIN"
)

// requiredColumns must be present for a file to be readable.
var requiredColumns = []string{ColGameID, ColMsgType, ColActionType, ColPeriod, ColGameClock}

// gameIDWidth is the zero-padded width of a stats game id. Spreadsheet
// round trips drop the leading zeros.
const gameIDWidth = 10

// Getter returns the raw value of a column, or "" when absent.
type Getter func(column string) string

// NormalizeGameID restores the leading zeros of a numeric game id.
func NormalizeGameID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasSuffix(id, ".0") {
		id = strings.TrimSuffix(id, ".0")
	}
	if len(id) >= gameIDWidth {
		return id
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return id
	}
	return strings.Repeat("0", gameIDWidth-len(id)) + id
}

// EventFromRow maps one stats row onto an Event. Seq is left for
// model.Sequence to assign.
func EventFromRow(get Getter) (model.Event, error) {
	var e model.Event
	var err error
	ints := []struct {
		col string
		dst *int
	}{
		{ColEventNum, &e.EventNum},
		{ColActionType, &e.ActionType},
		{ColPeriod, &e.Period},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(get(f.col)); err != nil {
			return model.Event{}, fmt.Errorf("%w: %s: %w", ErrBadRow, f.col, err)
		}
	}
	msg, err := parseInt(get(ColMsgType))
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %s: %w", ErrBadRow, ColMsgType, err)
	}
	e.MsgType = model.MessageType(msg)
	if e.Period < 1 {
		return model.Event{}, fmt.Errorf("%w: period %d", ErrBadRow, e.Period)
	}

	e.GameID = NormalizeGameID(get(ColGameID))
	e.WallClock = get(ColWallClock)
	e.GameClock = get(ColGameClock)
	e.HomeDescription = text(get(ColHomeDescription))
	e.NeutralDescription = text(get(ColNeutralDescription))
	e.VisitorDescription = text(get(ColVisitorDescription))
	e.Score = text(get(ColScore))
	e.ScoreMargin = text(get(ColScoreMargin))

	for i, dst := range []*model.Actor{&e.Actor1, &e.Actor2, &e.Actor3} {
		if *dst, err = actorFromRow(get, i+1); err != nil {
			return model.Event{}, err
		}
	}
	return e, nil
}

func actorFromRow(get Getter, slot int) (model.Actor, error) {
	var a model.Actor
	personType, err := parseInt(get(fmt.Sprintf("PERSON%dTYPE", slot)))
	if err != nil {
		return a, fmt.Errorf("%w: PERSON%dTYPE: %w", ErrBadRow, slot, err)
	}
	a.PersonType = personType
	if a.PlayerID, err = parseInt64(get(fmt.Sprintf("PLAYER%d_ID", slot))); err != nil {
		return a, fmt.Errorf("%w: PLAYER%d_ID: %w", ErrBadRow, slot, err)
	}
	if a.TeamID, err = parseInt64(get(fmt.Sprintf("PLAYER%d_TEAM_ID", slot))); err != nil {
		return a, fmt.Errorf("%w: PLAYER%d_TEAM_ID: %w", ErrBadRow, slot, err)
	}
	a.PlayerName = text(get(fmt.Sprintf("PLAYER%d_NAME", slot)))
	a.TeamCity = text(get(fmt.Sprintf("PLAYER%d_TEAM_CITY", slot)))
	a.TeamNickname = text(get(fmt.Sprintf("PLAYER%d_TEAM_NICKNAME", slot)))
	a.TeamAbbreviation = text(get(fmt.Sprintf("PLAYER%d_TEAM_ABBREVIATION", slot)))
	return a, nil
}

// text drops the null markers exporters write for empty cells.
func text(s string) string {
	switch s {
	case "nan", "NaN", "None", "null":
		return ""
	}
	return s
}

func parseInt(s string) (int, error) {
	n, err := parseInt64(s)
	return int(n), err
}

// parseInt64 accepts empty cells as zero and integral floats as written by
// dataframe exports ("1610612747.0").
func parseInt64(s string) (int64, error) {
	s = text(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}
