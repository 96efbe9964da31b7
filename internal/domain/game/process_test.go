package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/roster"
	"github.com/smartystreets/goconvey/convey"
)

const (
	home = int64(1610612747)
	away = int64(1610612744)
)

func player(team, id int64) model.Actor { return model.Actor{PersonType: 4, PlayerID: id, TeamID: team} }

func event(period int, clock string, msg model.MessageType, action int, a1, a2 model.Actor, desc string) model.Event {
	return model.Event{
		Period:          period,
		GameClock:       clock,
		MsgType:         msg,
		ActionType:      action,
		Actor1:          a1,
		Actor2:          a2,
		HomeDescription: desc,
	}
}

// sampleGame is two short periods: home starts 1-5, away 11-15; player 6
// replaces 5 for home in the first period.
func sampleGame() []model.Event {
	none := model.Actor{}
	return []model.Event{
		event(1, "12:00", model.MsgPeriodStart, 0, none, none, ""),
		event(1, "11:40", model.MsgFieldGoalMade, 1, player(home, 1), none, "Jump Shot"),
		event(1, "11:20", model.MsgFieldGoalMissed, 1, player(away, 11), none, "MISS 3PT Jump Shot"),
		event(1, "11:18", model.MsgRebound, 0, player(home, 2), none, "Rebound"),
		event(1, "11:18", model.MsgSubstitution, 0, player(home, 5), player(home, 6), "SUB"),
		event(1, "11:00", model.MsgFieldGoalMade, 1, player(home, 6), none, "3PT Jump Shot"),
		event(1, "11:00", model.MsgFoul, 2, player(away, 12), none, "S.FOUL"),
		event(1, "11:00", model.MsgFreeThrow, 10, player(home, 6), none, "Free Throw 1 of 1"),
		event(1, "10:45", model.MsgTurnover, 1, player(away, 13), none, "Bad Pass"),
		event(1, "0:00", model.MsgPeriodEnd, 0, none, none, ""),
		event(2, "12:00", model.MsgPeriodStart, 0, none, none, ""),
		event(2, "11:30", model.MsgFieldGoalMade, 1, player(away, 14), none, "Layup"),
		event(2, "0:00", model.MsgPeriodEnd, 0, none, none, ""),
	}
}

func credits(team int64, ids ...int64) []lineup.PlayerMinutes {
	out := make([]lineup.PlayerMinutes, 0, len(ids))
	for _, id := range ids {
		out = append(out, lineup.PlayerMinutes{PlayerID: id, TeamID: team})
	}
	return out
}

func sampleSource() lineup.MinutesSource {
	return lineup.MinutesSourceFunc(func(_ context.Context, _ string, start, _ time.Duration) ([]lineup.PlayerMinutes, error) {
		p1, _ := lineup.Window(1)
		if start == p1 {
			return append(credits(home, 1, 2, 3, 4, 5, 6), credits(away, 11, 12, 13, 14, 15)...), nil
		}
		return append(credits(home, 1, 2, 3, 4, 6), credits(away, 11, 12, 13, 14, 15)...), nil
	})
}

func TestProcess(t *testing.T) {
	convey.Convey("Given a two-period game", t, func() {
		ctx := context.Background()
		events := sampleGame()

		convey.Convey("When it is processed", func() {
			res, err := game.Process(ctx, "0022000001", events, sampleSource())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then possessions are segmented and numbered", func() {
				convey.So(len(res.Possessions), convey.ShouldEqual, 5)
				for i, p := range res.Possessions {
					convey.So(p.PossessionID, convey.ShouldEqual, i+1)
					convey.So(p.GameID, convey.ShouldEqual, "0022000001")
				}
			})

			convey.Convey("Then the and-1 is one possession worth four points", func() {
				p := res.Possessions[2]
				convey.So(p.Team2Points, convey.ShouldEqual, 4)
				convey.So(p.OffenseTeamID, convey.ShouldEqual, home)
				convey.So(p.LastSeq, convey.ShouldEqual, 8)
			})

			convey.Convey("Then rosters follow substitutions", func() {
				convey.So(res.Possessions[0].Team2.Players, convey.ShouldResemble, [5]int64{1, 2, 3, 4, 5})
				convey.So(res.Possessions[2].Team2.Players, convey.ShouldResemble, [5]int64{1, 2, 3, 4, 6})
				convey.So(res.Possessions[0].Team1.TeamID, convey.ShouldEqual, away)
				for _, p := range res.Possessions {
					_, ok := roster.NewTeamRoster(p.Team1.TeamID, p.Team1.Players[:])
					convey.So(ok, convey.ShouldBeTrue)
					_, ok = roster.NewTeamRoster(p.Team2.TeamID, p.Team2.Players[:])
					convey.So(ok, convey.ShouldBeTrue)
				}
			})

			convey.Convey("Then consecutive possessions are contiguous", func() {
				for i := 1; i < len(res.Possessions); i++ {
					convey.So(res.Possessions[i].Start, convey.ShouldEqual, res.Possessions[i-1].End)
				}
			})

			convey.Convey("Then all points are accounted for", func() {
				want := 0
				for i := range events {
					want += events[i].Points()
				}
				convey.So(res.Points(), convey.ShouldEqual, want)
				last := res.Timeline[len(res.Timeline)-1]
				convey.So(last.Team1Score+last.Team2Score, convey.ShouldEqual, want)
			})

			convey.Convey("Then the timeline has one row per event", func() {
				convey.So(len(res.Timeline), convey.ShouldEqual, len(events))
				convey.So(res.Timeline[4].PossessionID, convey.ShouldEqual, 2)
				convey.So(res.Unclassified, convey.ShouldBeEmpty)
				convey.So(res.Unresolved(), convey.ShouldEqual, 0)
			})

			convey.Convey("Then running it again yields the same result", func() {
				again, err := game.Process(ctx, "0022000001", events, sampleSource())
				convey.So(err, convey.ShouldBeNil)
				convey.So(again, convey.ShouldResemble, res)
			})
		})

		convey.Convey("When a substitution removes a player who is not on the floor", func() {
			events[4].Actor1.PlayerID = 9
			_, err := game.Process(ctx, "0022000001", events, sampleSource())

			convey.Convey("Then the whole game fails integrity", func() {
				convey.So(errors.Is(err, roster.ErrIntegrity), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the minutes source fails", func() {
			src := lineup.MinutesSourceFunc(func(context.Context, string, time.Duration, time.Duration) ([]lineup.PlayerMinutes, error) {
				return nil, errors.New("timeout")
			})
			_, err := game.Process(ctx, "0022000001", events, src)
			convey.So(errors.Is(err, lineup.ErrLineupUnavailable), convey.ShouldBeTrue)
		})

		convey.Convey("When a clock is malformed", func() {
			events[2].GameClock = "eleven"
			_, err := game.Process(ctx, "0022000001", events, sampleSource())
			convey.So(errors.Is(err, model.ErrBadClock), convey.ShouldBeTrue)
		})

		convey.Convey("When an unknown play type ends a possession", func() {
			events = append(events[:12], event(2, "0:01", model.MessageType(77), 0, player(home, 1), model.Actor{}, ""), events[12])
			res, err := game.Process(ctx, "0022000001", events, sampleSource())

			convey.Convey("Then only that owner is unresolved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Unclassified, convey.ShouldResemble, []int{13})
				convey.So(res.Unresolved(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := game.Process(cctx, "0022000001", events, sampleSource())
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given no events", t, func() {
		_, err := game.Process(context.Background(), "g", nil, sampleSource())
		convey.So(errors.Is(err, game.ErrNoEvents), convey.ShouldBeTrue)
	})
}
