package services_test

import (
	"testing"

	"club-gameplay-engine/services"

	"github.com/smartystreets/goconvey/convey"
)

func TestResolveScoringSide(t *testing.T) {
	home := "club-home"
	away := "club-away"

	convey.Convey("Given a match with both clubs assigned", t, func() {
		convey.Convey("Then the home club scores on the home side", func() {
			convey.So(services.ResolveScoringSide(home, &home, &away), convey.ShouldEqual, services.SideHome)
		})

		convey.Convey("Then the away club scores on the away side", func() {
			convey.So(services.ResolveScoringSide(away, &home, &away), convey.ShouldEqual, services.SideAway)
		})

		convey.Convey("Then an unrelated club resolves to no side", func() {
			convey.So(services.ResolveScoringSide("club-other", &home, &away), convey.ShouldEqual, services.SideNone)
		})
	})

	convey.Convey("Given a match with an unassigned slot", t, func() {
		convey.Convey("Then no side resolves even for the assigned club", func() {
			convey.So(services.ResolveScoringSide(home, &home, nil), convey.ShouldEqual, services.SideNone)
			convey.So(services.ResolveScoringSide(away, nil, &away), convey.ShouldEqual, services.SideNone)
		})
	})
}
