package services_test

import (
	"context"
	"testing"
	"time"

	"club-gameplay-engine/config"
	"club-gameplay-engine/models"
	"club-gameplay-engine/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"
)

func testPresenceConfig() *config.Config {
	return &config.Config{
		OnlineWindow:     60 * time.Second,
		CooldownStandard: 600 * time.Second,
		CooldownVIP:      300 * time.Second,
	}
}

func seedPresence(mr *miniredis.Miniredis, playerID string, lastSeen time.Time) {
	mr.ZAdd(services.OnlinePlayersKey, float64(lastSeen.UnixMilli()), playerID)
	mr.ZAdd(services.AutoGoalScheduleKey, float64(lastSeen.Add(10*time.Minute).UnixMilli()), playerID)
	for _, actionType := range models.AllActionTypes {
		mr.Set(services.CooldownKey(playerID, actionType), "init")
	}
}

func TestPresenceService_IsOffline(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	convey.Convey("Given the presence window", t, func() {
		mr, client := newTestRedis(t)
		presence := services.NewPresenceService(nil, client, services.NewCooldownService(client), testPresenceConfig())

		convey.Convey("Then an unknown player is offline", func() {
			offline, err := presence.IsOffline(ctx, "ghost", now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(offline, convey.ShouldBeTrue)
		})

		convey.Convey("Then a recent heartbeat keeps a player online", func() {
			seedPresence(mr, "fresh", now.Add(-10*time.Second))

			offline, err := presence.IsOffline(ctx, "fresh", now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(offline, convey.ShouldBeFalse)
		})

		convey.Convey("Then a heartbeat older than the window means offline", func() {
			seedPresence(mr, "stale", now.Add(-2*time.Minute))

			offline, err := presence.IsOffline(ctx, "stale", now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(offline, convey.ShouldBeTrue)
		})
	})
}

func TestPresenceService_SweepOffline(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	convey.Convey("Given one stale and one fresh player", t, func() {
		mr, client := newTestRedis(t)
		presence := services.NewPresenceService(nil, client, services.NewCooldownService(client), testPresenceConfig())

		seedPresence(mr, "stale", now.Add(-2*time.Minute))
		seedPresence(mr, "fresh", now.Add(-5*time.Second))

		removed, err := presence.SweepOffline(ctx, now)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then only the stale player is swept", func() {
			convey.So(removed, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the stale player's presence and schedule entries are gone", func() {
			_, err := client.ZScore(ctx, services.OnlinePlayersKey, "stale").Result()
			convey.So(err, convey.ShouldNotBeNil)
			_, err = client.ZScore(ctx, services.AutoGoalScheduleKey, "stale").Result()
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then every cooldown key of the stale player is deleted", func() {
			for _, actionType := range models.AllActionTypes {
				convey.So(mr.Exists(services.CooldownKey("stale", actionType)), convey.ShouldBeFalse)
			}
		})

		convey.Convey("Then the fresh player's state is untouched", func() {
			_, err := client.ZScore(ctx, services.OnlinePlayersKey, "fresh").Result()
			convey.So(err, convey.ShouldBeNil)
			_, err = client.ZScore(ctx, services.AutoGoalScheduleKey, "fresh").Result()
			convey.So(err, convey.ShouldBeNil)
			for _, actionType := range models.AllActionTypes {
				convey.So(mr.Exists(services.CooldownKey("fresh", actionType)), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then a second sweep finds nothing", func() {
			again, err := presence.SweepOffline(ctx, now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(again, convey.ShouldEqual, 0)
		})
	})
}

func TestPresenceService_HeartbeatAndClear(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	convey.Convey("Given a player who heartbeats", t, func() {
		mr, client := newTestRedis(t)
		presence := services.NewPresenceService(nil, client, services.NewCooldownService(client), testPresenceConfig())

		convey.So(presence.Heartbeat(ctx, "p1"), convey.ShouldBeNil)

		convey.Convey("Then they count as online", func() {
			count, err := presence.OnlineCount(ctx, now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(count, convey.ShouldEqual, 1)

			score, err := client.ZScore(ctx, services.OnlinePlayersKey, "p1").Result()
			convey.So(err, convey.ShouldBeNil)
			convey.So(int64(score), convey.ShouldBeGreaterThanOrEqualTo, now.UnixMilli())
		})

		convey.Convey("Then Clear tears their state down", func() {
			mr.ZAdd(services.AutoGoalScheduleKey, float64(now.UnixMilli()), "p1")
			mr.Set(services.CooldownKey("p1", models.ActionPenalty), "init")

			convey.So(presence.Clear(ctx, "p1"), convey.ShouldBeNil)

			count, err := presence.OnlineCount(ctx, now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(count, convey.ShouldEqual, 0)
			convey.So(mr.Exists(services.CooldownKey("p1", models.ActionPenalty)), convey.ShouldBeFalse)

			_, err = client.ZScore(ctx, services.AutoGoalScheduleKey, "p1").Result()
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
