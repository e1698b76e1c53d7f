package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"club-gameplay-engine/events"
	"club-gameplay-engine/services"
	"club-gameplay-engine/utils"
)

// LeaderboardSnapshotWorker refreshes the cached top-10 snapshots for the
// current hour, every live round and the live season, broadcasting each one.
// It also notices the hour window rolling over and closes out the finished
// hour against the season record.
type LeaderboardSnapshotWorker struct {
	Lifecycle    *services.MatchLifecycleService
	Leaderboards *services.LeaderboardService
	Bus          events.Bus

	lastHourKey string
}

func NewLeaderboardSnapshotWorker(lifecycle *services.MatchLifecycleService, leaderboards *services.LeaderboardService, bus events.Bus) *LeaderboardSnapshotWorker {
	return &LeaderboardSnapshotWorker{Lifecycle: lifecycle, Leaderboards: leaderboards, Bus: bus}
}

type roundSnapshotEvent struct {
	RoundID string                      `json:"round_id"`
	Entries []services.LeaderboardEntry `json:"entries"`
}

func (w *LeaderboardSnapshotWorker) RunOnce(ctx context.Context) error {
	seasonID, err := w.Lifecycle.InProgressSeasonID(ctx)
	if err != nil {
		return err
	}

	w.checkHourRollover(ctx, seasonID)

	hourSnapshot, err := w.Leaderboards.RefreshCurrentHourSnapshot(ctx)
	if err != nil {
		return err
	}
	w.publish(ctx, events.HourSnapshotChannel, hourSnapshot)

	roundIDs, err := w.Lifecycle.InProgressRoundIDs(ctx)
	if err != nil {
		return err
	}
	for _, roundID := range roundIDs {
		roundSnapshot, err := w.Leaderboards.RefreshRoundSnapshot(ctx, roundID)
		if err != nil {
			log.Printf("[LEADERBOARD] ⚠️ Failed to refresh round snapshot %s: %v", roundID, err)
			continue
		}
		w.publish(ctx, events.RoundSnapshotChannel, roundSnapshotEvent{RoundID: roundID, Entries: roundSnapshot})
	}

	if seasonID != "" {
		seasonSnapshot, err := w.Leaderboards.RefreshSeasonSnapshot(ctx, seasonID)
		if err != nil {
			return err
		}
		w.publish(ctx, events.SeasonSnapshotChannel, seasonSnapshot)
	}
	return nil
}

// checkHourRollover compares the current hour key against the one seen on
// the previous tick. When it changes, the previous hour window is final and
// its leaders are compared to the season record.
func (w *LeaderboardSnapshotWorker) checkHourRollover(ctx context.Context, seasonID string) {
	hourKey := utils.HourKey(time.Now())
	previous := w.lastHourKey
	w.lastHourKey = hourKey

	if previous == "" || previous == hourKey || seasonID == "" {
		return
	}
	if err := w.Leaderboards.CheckHourRecord(ctx, seasonID, previous); err != nil {
		log.Printf("[LEADERBOARD] ⚠️ Hour record check failed for %s: %v", previous, err)
	}
}

func (w *LeaderboardSnapshotWorker) publish(ctx context.Context, channel string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[LEADERBOARD] ⚠️ Failed to encode snapshot event for %s: %v", channel, err)
		return
	}
	if err := w.Bus.Publish(ctx, channel, body); err != nil {
		log.Printf("[LEADERBOARD] ⚠️ Failed to publish snapshot event to %s: %v", channel, err)
	}
}
