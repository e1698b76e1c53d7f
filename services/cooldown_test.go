package services_test

import (
	"testing"

	"club-gameplay-engine/models"
	"club-gameplay-engine/services"

	"github.com/smartystreets/goconvey/convey"
)

func TestCooldownKey(t *testing.T) {
	convey.Convey("Cooldown keys are namespaced per player and action", t, func() {
		convey.So(services.CooldownKey("p1", models.ActionPenalty), convey.ShouldEqual, "cooldown:penalty:p1")
		convey.So(services.CooldownKey("p1", models.ActionFreeKick), convey.ShouldEqual, "cooldown:free_kick:p1")
		convey.So(
			services.CooldownKey("p1", models.ActionTrail),
			convey.ShouldNotEqual,
			services.CooldownKey("p2", models.ActionTrail),
		)
	})
}
