package services

import (
	"testing"

	"club-gameplay-engine/config"
	"club-gameplay-engine/models"

	"github.com/smartystreets/goconvey/convey"
)

func TestGoalScoringService_ProbabilityFor(t *testing.T) {
	cfg := &config.Config{
		GoalProbabilityAuto:     0.9,
		GoalProbabilityPenalty:  0.75,
		GoalProbabilityFreeKick: 0.6,
		GoalProbabilityTrail:    0.5,
	}

	convey.Convey("Given configured probabilities", t, func() {
		svc := NewGoalScoringService(nil, nil, nil, nil, nil, cfg)

		convey.Convey("Then each category maps to its own probability", func() {
			convey.So(svc.probabilityFor(models.ActionAuto), convey.ShouldEqual, 0.9)
			convey.So(svc.probabilityFor(models.ActionPenalty), convey.ShouldEqual, 0.75)
			convey.So(svc.probabilityFor(models.ActionFreeKick), convey.ShouldEqual, 0.6)
			convey.So(svc.probabilityFor(models.ActionTrail), convey.ShouldEqual, 0.5)
		})

		convey.Convey("Then an unknown category never scores", func() {
			convey.So(svc.probabilityFor(models.GoalActionType("header")), convey.ShouldEqual, 0.0)
		})
	})
}

func TestGoalScoringService_Roll(t *testing.T) {
	convey.Convey("Given the default roll", t, func() {
		svc := NewGoalScoringService(nil, nil, nil, nil, nil, &config.Config{})

		convey.Convey("Then probability zero never scores and one always does", func() {
			for i := 0; i < 1000; i++ {
				convey.So(svc.roll(0), convey.ShouldBeFalse)
				convey.So(svc.roll(1), convey.ShouldBeTrue)
			}
		})
	})

	convey.Convey("Given a replaced roll", t, func() {
		svc := NewGoalScoringService(nil, nil, nil, nil, nil, &config.Config{GoalProbabilityPenalty: 0.75})
		var seen []float64
		svc.roll = func(probability float64) bool {
			seen = append(seen, probability)
			return true
		}

		convey.Convey("Then the service rolls through the hook with the category's probability", func() {
			convey.So(svc.roll(svc.probabilityFor(models.ActionPenalty)), convey.ShouldBeTrue)
			convey.So(seen, convey.ShouldResemble, []float64{0.75})
		})
	})
}
