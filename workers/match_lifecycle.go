package workers

import (
	"context"
	"log"
	"time"

	"club-gameplay-engine/services"
)

// MatchLifecycleWorker drives rounds forward: finish first, settle the
// finished round's leaderboard records, then start the next due round.
type MatchLifecycleWorker struct {
	Lifecycle    *services.MatchLifecycleService
	Leaderboards *services.LeaderboardService
}

func NewMatchLifecycleWorker(lifecycle *services.MatchLifecycleService, leaderboards *services.LeaderboardService) *MatchLifecycleWorker {
	return &MatchLifecycleWorker{Lifecycle: lifecycle, Leaderboards: leaderboards}
}

func (w *MatchLifecycleWorker) RunOnce(ctx context.Context) error {
	now := time.Now()

	finished, err := w.Lifecycle.FinishDueRound(ctx, now)
	if err != nil {
		return err
	}
	if finished.RoundDate != nil && finished.MatchesCount > 0 {
		w.checkRoundRecords(ctx, *finished.RoundDate)
	}

	_, err = w.Lifecycle.StartDueRound(ctx, now)
	return err
}

// checkRoundRecords closes out the round leaderboards of a just-finished
// round date. Record checks run outside the finalize transaction; a failure
// here is logged, not fatal, since the round itself is already settled.
func (w *MatchLifecycleWorker) checkRoundRecords(ctx context.Context, roundDate time.Time) {
	contexts, err := w.Lifecycle.RoundSeasonContexts(ctx, roundDate)
	if err != nil {
		log.Printf("[MATCH LIFECYCLE] ⚠️ Failed to load round contexts for %s: %v", roundDate.Format(time.RFC3339), err)
		return
	}

	for _, rc := range contexts {
		roundID := rc.RoundID()
		if roundID == "" {
			continue
		}
		if err := w.Leaderboards.CheckRoundRecord(ctx, rc.SeasonID, roundID); err != nil {
			log.Printf("[MATCH LIFECYCLE] ⚠️ Round record check failed for round %s: %v", roundID, err)
		}
	}
}
