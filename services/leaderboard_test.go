package services_test

import (
	"testing"

	"club-gameplay-engine/services"

	"github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardKeys(t *testing.T) {
	convey.Convey("Given the leaderboard key builders", t, func() {
		convey.So(services.HourLeaderboardKey("2026-03-10T18"), convey.ShouldEqual, "leaderboard:hour:2026-03-10T18")
		convey.So(services.RoundLeaderboardKey("round-1"), convey.ShouldEqual, "leaderboard:round:round-1")
		convey.So(services.SeasonLeaderboardKey("season-1"), convey.ShouldEqual, "leaderboard:season:season-1")
		convey.So(services.RoundLeaderboardCacheKey("round-1"), convey.ShouldEqual, "cache:leaderboard:round:round-1")
	})
}

func TestLeagueRoundID(t *testing.T) {
	convey.Convey("A league round id combines competition and round number", t, func() {
		convey.So(services.LeagueRoundID("comp-9", 14), convey.ShouldEqual, "comp-9:14")
	})
}

func TestResolveSnapshotLeaders(t *testing.T) {
	convey.Convey("Given an empty snapshot", t, func() {
		convey.So(services.ResolveSnapshotLeaders(nil), convey.ShouldBeNil)
		convey.So(services.ResolveSnapshotLeaders([]services.LeaderboardEntry{}), convey.ShouldBeNil)
	})

	convey.Convey("Given a snapshot with a single top scorer", t, func() {
		snapshot := []services.LeaderboardEntry{
			{PlayerID: "p1", Goals: 7},
			{PlayerID: "p2", Goals: 4},
			{PlayerID: "p3", Goals: 1},
		}

		leaders := services.ResolveSnapshotLeaders(snapshot)
		convey.So(leaders, convey.ShouldNotBeNil)
		convey.So(leaders.RecordValue, convey.ShouldEqual, 7)
		convey.So(leaders.PlayerIDs, convey.ShouldResemble, []string{"p1"})
	})

	convey.Convey("Given a tie at the top", t, func() {
		snapshot := []services.LeaderboardEntry{
			{PlayerID: "p1", Goals: 5},
			{PlayerID: "p2", Goals: 5},
			{PlayerID: "p3", Goals: 2},
		}

		leaders := services.ResolveSnapshotLeaders(snapshot)
		convey.So(leaders, convey.ShouldNotBeNil)
		convey.So(leaders.RecordValue, convey.ShouldEqual, 5)
		convey.So(leaders.PlayerIDs, convey.ShouldResemble, []string{"p1", "p2"})
	})

	convey.Convey("Given duplicate and empty player ids", t, func() {
		snapshot := []services.LeaderboardEntry{
			{PlayerID: "p1", Goals: 3},
			{PlayerID: "p1", Goals: 3},
			{PlayerID: "", Goals: 3},
		}

		leaders := services.ResolveSnapshotLeaders(snapshot)
		convey.So(leaders, convey.ShouldNotBeNil)
		convey.So(leaders.PlayerIDs, convey.ShouldResemble, []string{"p1"})
	})

	convey.Convey("Given an unordered snapshot", t, func() {
		// The top value is found regardless of entry order.
		snapshot := []services.LeaderboardEntry{
			{PlayerID: "p1", Goals: 2},
			{PlayerID: "p2", Goals: 6},
			{PlayerID: "p3", Goals: 6},
		}

		leaders := services.ResolveSnapshotLeaders(snapshot)
		convey.So(leaders, convey.ShouldNotBeNil)
		convey.So(leaders.RecordValue, convey.ShouldEqual, 6)
		convey.So(leaders.PlayerIDs, convey.ShouldResemble, []string{"p2", "p3"})
	})
}
