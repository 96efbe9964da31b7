package roster_test

import (
	"errors"
	"testing"

	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/roster"
	"github.com/smartystreets/goconvey/convey"
)

const (
	lakers   = int64(1610612747)
	warriors = int64(1610612744)
)

func mustRoster(teamID int64, players ...int64) roster.TeamRoster {
	r, ok := roster.NewTeamRoster(teamID, players)
	if !ok {
		panic("invalid roster fixture")
	}
	return r
}

func lineups() roster.PeriodLineups {
	return roster.PeriodLineups{
		1: roster.NewSnapshot(
			mustRoster(warriors, 201939, 202691, 203110, 1626172, 1628398),
			mustRoster(lakers, 2544, 203076, 1627936, 201566, 1628370),
		),
		2: roster.NewSnapshot(
			mustRoster(lakers, 2544, 203076, 1627936, 201566, 1629060),
			mustRoster(warriors, 201939, 202691, 203110, 1626172, 1630228),
		),
	}
}

func sub(period int, teamID, out, in int64) *model.Event {
	return &model.Event{
		Period:    period,
		GameClock: "6:00",
		MsgType:   model.MsgSubstitution,
		Actor1:    model.Actor{PersonType: 4, PlayerID: out, TeamID: teamID},
		Actor2:    model.Actor{PersonType: 4, PlayerID: in, TeamID: teamID},
	}
}

func TestNewTeamRoster(t *testing.T) {
	convey.Convey("Given candidate rosters", t, func() {
		convey.Convey("Then five distinct players are sorted", func() {
			r, ok := roster.NewTeamRoster(lakers, []int64{5, 3, 1, 4, 2})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Players, convey.ShouldResemble, [5]int64{1, 2, 3, 4, 5})
		})

		convey.Convey("Then four players are rejected", func() {
			_, ok := roster.NewTeamRoster(lakers, []int64{1, 2, 3, 4})
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then duplicate players are rejected", func() {
			_, ok := roster.NewTeamRoster(lakers, []int64{1, 2, 3, 4, 4})
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestSnapshot(t *testing.T) {
	convey.Convey("Given a snapshot built from unordered teams", t, func() {
		s := roster.NewSnapshot(mustRoster(lakers, 1, 2, 3, 4, 5), mustRoster(warriors, 6, 7, 8, 9, 10))

		convey.Convey("Then the lower team id is team one", func() {
			convey.So(s.Team1.TeamID, convey.ShouldEqual, warriors)
			convey.So(s.Team2.TeamID, convey.ShouldEqual, lakers)
		})

		convey.Convey("Then opponents resolve both ways", func() {
			convey.So(s.Other(lakers), convey.ShouldEqual, warriors)
			convey.So(s.Other(warriors), convey.ShouldEqual, lakers)
			convey.So(s.Other(42), convey.ShouldEqual, 0)
			convey.So(s.Has(0), convey.ShouldBeFalse)
		})
	})
}

func TestTracker(t *testing.T) {
	convey.Convey("Given a tracker seeded with two periods", t, func() {
		tr := roster.NewTracker("0022000001", lineups())

		convey.Convey("When the first event of period one is consumed", func() {
			err := tr.Consume(&model.Event{Period: 1, MsgType: model.MsgPeriodStart})

			convey.Convey("Then the period's starters are on the floor", func() {
				convey.So(err, convey.ShouldBeNil)
				lal, _ := tr.Snapshot().Team(lakers)
				convey.So(lal.Players, convey.ShouldResemble, [5]int64{2544, 201566, 203076, 1627936, 1628370})
			})

			convey.Convey("And a substitution swaps and re-sorts", func() {
				convey.So(tr.Consume(sub(1, lakers, 1628370, 1000)), convey.ShouldBeNil)
				lal, _ := tr.Snapshot().Team(lakers)
				convey.So(lal.Players, convey.ShouldResemble, [5]int64{1000, 2544, 201566, 203076, 1627936})
			})

			convey.Convey("And a snapshot taken earlier is not changed by later substitutions", func() {
				before := tr.Snapshot()
				convey.So(tr.Consume(sub(1, lakers, 1628370, 1000)), convey.ShouldBeNil)
				lal, _ := before.Team(lakers)
				convey.So(lal.Contains(1628370), convey.ShouldBeTrue)
			})

			convey.Convey("And a substitution of an absent player is an integrity error", func() {
				err := tr.Consume(sub(1, lakers, 999, 1000))
				convey.So(errors.Is(err, roster.ErrIntegrity), convey.ShouldBeTrue)

				var ie *roster.IntegrityError
				convey.So(errors.As(err, &ie), convey.ShouldBeTrue)
				convey.So(ie.PlayerID, convey.ShouldEqual, 999)
				convey.So(ie.TeamID, convey.ShouldEqual, lakers)
			})

			convey.Convey("And bringing in a player already on the floor is an integrity error", func() {
				err := tr.Consume(sub(1, lakers, 1628370, 2544))
				convey.So(errors.Is(err, roster.ErrIntegrity), convey.ShouldBeTrue)
			})

			convey.Convey("And a substitution for an unknown team is an integrity error", func() {
				err := tr.Consume(sub(1, 1610612738, 1628370, 1000))
				convey.So(errors.Is(err, roster.ErrIntegrity), convey.ShouldBeTrue)
			})

			convey.Convey("And non-substitution events leave rosters unchanged", func() {
				before := tr.Snapshot()
				convey.So(tr.Consume(&model.Event{Period: 1, MsgType: model.MsgFieldGoalMade}), convey.ShouldBeNil)
				convey.So(tr.Snapshot(), convey.ShouldResemble, before)
			})

			convey.Convey("And the next period re-seeds from its own starters", func() {
				convey.So(tr.Consume(sub(1, lakers, 1628370, 1000)), convey.ShouldBeNil)
				convey.So(tr.Consume(&model.Event{Period: 2, MsgType: model.MsgPeriodStart}), convey.ShouldBeNil)
				lal, _ := tr.Snapshot().Team(lakers)
				convey.So(lal.Contains(1000), convey.ShouldBeFalse)
				convey.So(lal.Contains(1629060), convey.ShouldBeTrue)
			})

			convey.Convey("And a period without a lineup fails", func() {
				err := tr.Consume(&model.Event{Period: 3, MsgType: model.MsgPeriodStart})
				convey.So(errors.Is(err, roster.ErrNoLineup), convey.ShouldBeTrue)
			})
		})
	})
}
