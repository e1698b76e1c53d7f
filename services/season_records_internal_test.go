package services

import (
	"context"
	"testing"

	"club-gameplay-engine/models"

	"github.com/smartystreets/goconvey/convey"
)

func TestCompareToRecord(t *testing.T) {
	convey.Convey("Given an existing record value", t, func() {
		convey.Convey("Then a greater observation breaks it", func() {
			convey.So(compareToRecord(5, 6), convey.ShouldEqual, recordBroken)
			convey.So(compareToRecord(0, 1), convey.ShouldEqual, recordBroken)
		})

		convey.Convey("Then an equal observation ties it", func() {
			convey.So(compareToRecord(5, 5), convey.ShouldEqual, recordTied)
			convey.So(compareToRecord(0, 0), convey.ShouldEqual, recordTied)
		})

		convey.Convey("Then a lesser observation leaves it standing", func() {
			convey.So(compareToRecord(5, 4), convey.ShouldEqual, recordBelow)
			convey.So(compareToRecord(5, 0), convey.ShouldEqual, recordBelow)
		})
	})
}

func TestSeasonRecordService_CheckAndUpdate_EmptyLeaders(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a record service", t, func() {
		// Nil DB: the empty-leaders paths must return before any query.
		svc := NewSeasonRecordService(nil)

		convey.Convey("Then nil leaders are a no-op", func() {
			convey.So(svc.CheckAndUpdate(ctx, "s1", models.SeasonRecordHourGoals, nil), convey.ShouldBeNil)
		})

		convey.Convey("Then leaders without players are a no-op", func() {
			leaders := &SnapshotLeaders{RecordValue: 7}
			convey.So(svc.CheckAndUpdate(ctx, "s1", models.SeasonRecordHourGoals, leaders), convey.ShouldBeNil)
		})
	})
}
