package events_test

import (
	"context"
	"testing"

	"club-gameplay-engine/events"

	"github.com/smartystreets/goconvey/convey"
)

func TestLocalBus(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a local bus with subscribers", t, func() {
		bus := events.NewLocalBus()

		var received [][]byte
		err := bus.Subscribe(ctx, events.GoalResultChannel, func(payload []byte) {
			received = append(received, payload)
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then a publish reaches the channel's handlers", func() {
			convey.So(bus.Publish(ctx, events.GoalResultChannel, []byte(`{"status":"scored"}`)), convey.ShouldBeNil)
			convey.So(received, convey.ShouldHaveLength, 1)
			convey.So(string(received[0]), convey.ShouldEqual, `{"status":"scored"}`)
		})

		convey.Convey("Then other channels do not leak in", func() {
			convey.So(bus.Publish(ctx, events.OnlinePlayersCountChannel, []byte(`{"online":3}`)), convey.ShouldBeNil)
			convey.So(received, convey.ShouldBeEmpty)
		})

		convey.Convey("Then multiple handlers all fire", func() {
			var secondCalls int
			convey.So(bus.Subscribe(ctx, events.GoalResultChannel, func([]byte) { secondCalls++ }), convey.ShouldBeNil)

			convey.So(bus.Publish(ctx, events.GoalResultChannel, []byte(`{}`)), convey.ShouldBeNil)
			convey.So(received, convey.ShouldHaveLength, 1)
			convey.So(secondCalls, convey.ShouldEqual, 1)
		})
	})
}
