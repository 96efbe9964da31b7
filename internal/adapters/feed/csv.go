package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/possession"
)

// Game is the events of one game in file order.
type Game struct {
	ID     string
	Events []model.Event
}

// ReadCSV reads a play-by-play export holding any number of games. Rows
// are grouped by game id in order of first appearance and keep their file
// order within a game.
func ReadCSV(r io.Reader) ([]Game, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var games []Game
	byID := make(map[string]int)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		e, err := EventFromRow(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		g, ok := byID[e.GameID]
		if !ok {
			g = len(games)
			byID[e.GameID] = g
			games = append(games, Game{ID: e.GameID})
		}
		games[g].Events = append(games[g].Events, e)
	}

	for i := range games {
		games[i].Events = model.Sequence(games[i].ID, games[i].Events)
	}
	return games, nil
}

var possessionHeader = []string{
	"GAME_ID", "possession_id", "period", "possession_start", "possession_end",
	"team_1_id", "team_1_players", "team_2_id", "team_2_players",
	"team_1_points", "team_2_points", "possession_team", "first_seq", "last_seq",
}

// WritePossessionsCSV writes one row per possession. Rosters are written as
// space-separated player ids. An unresolved owner is written empty.
func WritePossessionsCSV(w io.Writer, summaries []possession.Summary, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(possessionHeader); err != nil {
			return err
		}
	}
	for i := range summaries {
		s := &summaries[i]
		owner := ""
		if s.OffenseResolved {
			owner = itoa64(s.OffenseTeamID)
		}
		err := cw.Write([]string{
			s.GameID, strconv.Itoa(s.PossessionID), strconv.Itoa(s.Period),
			strconv.Itoa(s.Start), strconv.Itoa(s.End),
			itoa64(s.Team1.TeamID), players(s.Team1.Players), itoa64(s.Team2.TeamID), players(s.Team2.Players),
			strconv.Itoa(s.Team1Points), strconv.Itoa(s.Team2Points), owner,
			strconv.Itoa(s.FirstSeq), strconv.Itoa(s.LastSeq),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var timelineHeader = []string{
	"GAME_ID", "seq", "EVENTNUM", "PERIOD", "PCTIMESTRING", "EVENTMSGTYPE", "EVENTMSGACTIONTYPE",
	"description", "elapsed", "possession_id", "possession_start", "possession_end",
	"team_1_points", "team_2_points", "possession_team", "inherited",
	"team_1_id", "team_2_id", "team_1_score", "team_2_score",
}

// WriteTimelineCSV writes one row per event. Rows without a possession have
// empty possession columns.
func WriteTimelineCSV(w io.Writer, rows []possession.TimelineRow, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(timelineHeader); err != nil {
			return err
		}
	}
	for i := range rows {
		r := &rows[i]
		pos := make([]string, 7)
		if r.PossessionID != 0 {
			pos = []string{
				strconv.Itoa(r.PossessionID), strconv.Itoa(r.Start), strconv.Itoa(r.End),
				strconv.Itoa(r.Team1Points), strconv.Itoa(r.Team2Points), itoa64(r.OffenseTeamID),
				strconv.FormatBool(r.Inherited),
			}
		}
		record := []string{
			r.GameID, strconv.Itoa(r.Seq), strconv.Itoa(r.EventNum), strconv.Itoa(r.Period), r.GameClock,
			strconv.Itoa(int(r.MsgType)), strconv.Itoa(r.ActionType), r.Description, strconv.Itoa(r.Elapsed),
		}
		record = append(record, pos...)
		record = append(record,
			itoa64(r.Team1ID), itoa64(r.Team2ID), strconv.Itoa(r.Team1Score), strconv.Itoa(r.Team2Score))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

func players(ids [5]int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = itoa64(id)
	}
	return strings.Join(parts, " ")
}
