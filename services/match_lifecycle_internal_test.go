package services

import (
	"testing"

	"club-gameplay-engine/models"

	"github.com/smartystreets/goconvey/convey"
)

func TestResolveWinner(t *testing.T) {
	home := "club-home"
	away := "club-away"

	convey.Convey("Given finished scores", t, func() {
		convey.Convey("Then more home goals means the home club wins", func() {
			winner := resolveWinner(lockedRoundMatch{ClubHomeID: &home, ClubAwayID: &away, HomeGoals: 3, AwayGoals: 1})
			convey.So(winner, convey.ShouldNotBeNil)
			convey.So(*winner, convey.ShouldEqual, home)
		})

		convey.Convey("Then more away goals means the away club wins", func() {
			winner := resolveWinner(lockedRoundMatch{ClubHomeID: &home, ClubAwayID: &away, HomeGoals: 0, AwayGoals: 2})
			convey.So(winner, convey.ShouldNotBeNil)
			convey.So(*winner, convey.ShouldEqual, away)
		})

		convey.Convey("Then equal goals leave the winner unset", func() {
			winner := resolveWinner(lockedRoundMatch{ClubHomeID: &home, ClubAwayID: &away, HomeGoals: 2, AwayGoals: 2})
			convey.So(winner, convey.ShouldBeNil)
		})
	})
}

func TestUniformStatus(t *testing.T) {
	convey.Convey("Given locked round matches", t, func() {
		convey.Convey("Then an empty round has no uniform status", func() {
			_, ok := uniformStatus(nil)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then a round with one status is uniform", func() {
			status, ok := uniformStatus([]lockedRoundMatch{
				{Status: models.MatchStatusPending},
				{Status: models.MatchStatusPending},
			})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(status, convey.ShouldEqual, models.MatchStatusPending)
		})

		convey.Convey("Then mixed statuses are detected", func() {
			_, ok := uniformStatus([]lockedRoundMatch{
				{Status: models.MatchStatusPending},
				{Status: models.MatchStatusInProgress},
			})
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestRoundSeasonContext_RoundID(t *testing.T) {
	leagueRound := 14
	cupRoundID := "cup-round-3"

	convey.Convey("Given round contexts of each type", t, func() {
		convey.Convey("Then a league context combines competition and round", func() {
			rc := RoundSeasonContext{MatchType: models.MatchTypeLeague, CompetitionID: "comp-1", LeagueRound: &leagueRound}
			convey.So(rc.RoundID(), convey.ShouldEqual, "comp-1:14")
		})

		convey.Convey("Then a cup context uses its round id directly", func() {
			rc := RoundSeasonContext{MatchType: models.MatchTypeCup, CompetitionID: "comp-1", CupRoundID: &cupRoundID}
			convey.So(rc.RoundID(), convey.ShouldEqual, "cup-round-3")
		})

		convey.Convey("Then an incomplete context yields no id", func() {
			rc := RoundSeasonContext{MatchType: models.MatchTypeLeague, CompetitionID: "comp-1"}
			convey.So(rc.RoundID(), convey.ShouldEqual, "")
		})
	})
}
