package services_test

import (
	"context"
	"testing"
	"time"

	"club-gameplay-engine/models"
	"club-gameplay-engine/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/smartystreets/goconvey/convey"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCooldownService_TryAcquire(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a player with no active cooldown", t, func() {
		mr, client := newTestRedis(t)
		cooldowns := services.NewCooldownService(client)

		first, err := cooldowns.TryAcquire(ctx, "p1", models.ActionPenalty, 600*time.Second)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the first attempt acquires a token", func() {
			convey.So(first.Acquired, convey.ShouldBeTrue)
			convey.So(first.Token, convey.ShouldNotBeEmpty)

			key := services.CooldownKey("p1", models.ActionPenalty)
			stored, err := mr.Get(key)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stored, convey.ShouldEqual, first.Token)
			convey.So(mr.TTL(key), convey.ShouldEqual, 600*time.Second)
		})

		convey.Convey("Then a second attempt is blocked with the remaining TTL", func() {
			second, err := cooldowns.TryAcquire(ctx, "p1", models.ActionPenalty, 600*time.Second)
			convey.So(err, convey.ShouldBeNil)
			convey.So(second.Acquired, convey.ShouldBeFalse)
			convey.So(second.Remaining, convey.ShouldBeGreaterThan, 0)
			convey.So(second.Remaining, convey.ShouldBeLessThanOrEqualTo, 600*time.Second)
		})

		convey.Convey("Then other actions and players are unaffected", func() {
			other, err := cooldowns.TryAcquire(ctx, "p1", models.ActionFreeKick, 600*time.Second)
			convey.So(err, convey.ShouldBeNil)
			convey.So(other.Acquired, convey.ShouldBeTrue)

			peer, err := cooldowns.TryAcquire(ctx, "p2", models.ActionPenalty, 600*time.Second)
			convey.So(err, convey.ShouldBeNil)
			convey.So(peer.Acquired, convey.ShouldBeTrue)
		})

		convey.Convey("Then an expired cooldown can be acquired again", func() {
			mr.FastForward(601 * time.Second)

			again, err := cooldowns.TryAcquire(ctx, "p1", models.ActionPenalty, 600*time.Second)
			convey.So(err, convey.ShouldBeNil)
			convey.So(again.Acquired, convey.ShouldBeTrue)
			convey.So(again.Token, convey.ShouldNotEqual, first.Token)
		})
	})
}

func TestCooldownService_Release(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an acquired cooldown", t, func() {
		mr, client := newTestRedis(t)
		cooldowns := services.NewCooldownService(client)

		acquired, err := cooldowns.TryAcquire(ctx, "p1", models.ActionTrail, 600*time.Second)
		convey.So(err, convey.ShouldBeNil)
		convey.So(acquired.Acquired, convey.ShouldBeTrue)

		key := services.CooldownKey("p1", models.ActionTrail)

		convey.Convey("Then a stale token does not release it", func() {
			convey.So(cooldowns.Release(ctx, "p1", models.ActionTrail, "stale-token"), convey.ShouldBeFalse)
			convey.So(mr.Exists(key), convey.ShouldBeTrue)
		})

		convey.Convey("Then the owning token releases it exactly once", func() {
			convey.So(cooldowns.Release(ctx, "p1", models.ActionTrail, acquired.Token), convey.ShouldBeTrue)
			convey.So(mr.Exists(key), convey.ShouldBeFalse)
			convey.So(cooldowns.Release(ctx, "p1", models.ActionTrail, acquired.Token), convey.ShouldBeFalse)
		})

		convey.Convey("Then the player can act again after a release", func() {
			convey.So(cooldowns.Release(ctx, "p1", models.ActionTrail, acquired.Token), convey.ShouldBeTrue)

			again, err := cooldowns.TryAcquire(ctx, "p1", models.ActionTrail, 600*time.Second)
			convey.So(err, convey.ShouldBeNil)
			convey.So(again.Acquired, convey.ShouldBeTrue)
		})
	})
}

func TestCooldownService_InitializeIfMissing(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a cold store", t, func() {
		mr, client := newTestRedis(t)
		cooldowns := services.NewCooldownService(client)
		key := services.CooldownKey("p1", models.ActionPenalty)

		cooldowns.InitializeIfMissing(ctx, "p1", models.ActionPenalty, 600*time.Second)

		convey.Convey("Then a default cooldown is seeded", func() {
			stored, err := mr.Get(key)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stored, convey.ShouldEqual, "init")
			convey.So(mr.TTL(key), convey.ShouldEqual, 600*time.Second)
		})

		convey.Convey("Then an existing cooldown is left alone", func() {
			mr.FastForward(300 * time.Second)
			cooldowns.InitializeIfMissing(ctx, "p1", models.ActionPenalty, 600*time.Second)
			convey.So(mr.TTL(key), convey.ShouldEqual, 300*time.Second)
		})
	})
}
