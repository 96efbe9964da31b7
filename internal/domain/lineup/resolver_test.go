package lineup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

const (
	home = int64(1610612747)
	away = int64(1610612744)
)

// fakeSource answers per window start with a canned list.
type fakeSource struct {
	byStart map[time.Duration][]lineup.PlayerMinutes
	err     error
	calls   []time.Duration
}

func (f *fakeSource) MinutesInRange(_ context.Context, _ string, start, _ time.Duration) ([]lineup.PlayerMinutes, error) {
	f.calls = append(f.calls, start)
	if f.err != nil {
		return nil, f.err
	}
	return f.byStart[start], nil
}

func credit(teamID int64, players ...int64) []lineup.PlayerMinutes {
	out := make([]lineup.PlayerMinutes, 0, len(players))
	for _, p := range players {
		out = append(out, lineup.PlayerMinutes{PlayerID: p, TeamID: teamID})
	}
	return out
}

func subEvent(period int, teamID, out, in int64) model.Event {
	return model.Event{
		Period:  period,
		MsgType: model.MsgSubstitution,
		Actor1:  model.Actor{PlayerID: out, TeamID: teamID},
		Actor2:  model.Actor{PlayerID: in, TeamID: teamID},
	}
}

func TestWindow(t *testing.T) {
	convey.Convey("Given period windows", t, func() {
		convey.Convey("Then the first period spans 0.5s to 719.5s", func() {
			start, end := lineup.Window(1)
			convey.So(start, convey.ShouldEqual, 500*time.Millisecond)
			convey.So(end, convey.ShouldEqual, 719500*time.Millisecond)
		})

		convey.Convey("Then the first overtime spans five minutes after regulation", func() {
			start, end := lineup.Window(5)
			convey.So(start, convey.ShouldEqual, 2880500*time.Millisecond)
			convey.So(end, convey.ShouldEqual, 3179500*time.Millisecond)
		})
	})
}

func TestResolve(t *testing.T) {
	convey.Convey("Given a game with substitutions in period one and none in overtime", t, func() {
		ctx := context.Background()
		p1Start, _ := lineup.Window(1)
		otStart, _ := lineup.Window(5)

		events := []model.Event{
			{Period: 1, MsgType: model.MsgPeriodStart},
			subEvent(1, home, 5, 6),   // 5 starts, 6 enters
			subEvent(1, home, 6, 5),   // 6 leaves again: still not a starter
			subEvent(1, away, 15, 16), // 16 enters
			{Period: 5, MsgType: model.MsgPeriodStart},
		}
		src := &fakeSource{byStart: map[time.Duration][]lineup.PlayerMinutes{
			p1Start: append(credit(home, 1, 2, 3, 4, 5, 6), credit(away, 11, 12, 13, 14, 15, 16)...),
			otStart: append(credit(away, 11, 12, 13, 14, 16), credit(home, 1, 2, 3, 4, 6)...),
		}}
		r := lineup.NewResolver(src)

		convey.Convey("When resolving", func() {
			lineups, err := r.Resolve(ctx, "0022000001", events)

			convey.Convey("Then every period in the feed is resolved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(lineups), convey.ShouldEqual, 2)
				convey.So(src.calls, convey.ShouldResemble, []time.Duration{p1Start, otStart})
			})

			convey.Convey("Then players subbed in during the period are excluded", func() {
				h, _ := lineups[1].Team(home)
				a, _ := lineups[1].Team(away)
				convey.So(h.Players, convey.ShouldResemble, [5]int64{1, 2, 3, 4, 5})
				convey.So(a.Players, convey.ShouldResemble, [5]int64{11, 12, 13, 14, 15})
			})

			convey.Convey("Then a period without substitutions uses the window alone", func() {
				h, _ := lineups[5].Team(home)
				convey.So(h.Players, convey.ShouldResemble, [5]int64{1, 2, 3, 4, 6})
				convey.So(lineups[5].Team1.TeamID, convey.ShouldEqual, away)
			})
		})

		convey.Convey("When the source fails", func() {
			src.err = errors.New("stats api: status 503")
			_, err := r.Resolve(ctx, "0022000001", events)

			convey.Convey("Then resolution fails as unavailable", func() {
				convey.So(errors.Is(err, lineup.ErrLineupUnavailable), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "503")
			})
		})

		convey.Convey("When the source has no data for a window", func() {
			delete(src.byStart, otStart)
			_, err := r.Resolve(ctx, "0022000001", events)

			convey.Convey("Then resolution fails as unavailable", func() {
				convey.So(errors.Is(err, lineup.ErrLineupUnavailable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a team has only four starters", func() {
			src.byStart[otStart] = append(credit(away, 11, 12, 13, 14), credit(home, 1, 2, 3, 4, 6)...)
			_, err := r.Resolve(ctx, "0022000001", events)

			convey.Convey("Then the lineup is invalid", func() {
				convey.So(errors.Is(err, lineup.ErrInvalidLineup), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only one team is credited", func() {
			src.byStart[otStart] = credit(home, 1, 2, 3, 4, 6)
			_, err := r.Resolve(ctx, "0022000001", events)

			convey.Convey("Then the lineup is invalid", func() {
				convey.So(errors.Is(err, lineup.ErrInvalidLineup), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := r.Resolve(cctx, "0022000001", events)

			convey.Convey("Then no window is queried", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(len(src.calls), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given no events", t, func() {
		_, err := lineup.NewResolver(&fakeSource{}).Resolve(context.Background(), "g", nil)
		convey.So(errors.Is(err, lineup.ErrLineupUnavailable), convey.ShouldBeTrue)
	})
}
