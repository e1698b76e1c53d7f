package workers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"club-gameplay-engine/services"

	"github.com/redis/go-redis/v9"
)

// AutoGoalWorker drains the auto-action schedule: every player whose due
// timestamp has passed gets one automatic attempt processed.
type AutoGoalWorker struct {
	Redis   *redis.Client
	Scoring *services.GoalScoringService
}

func NewAutoGoalWorker(rdb *redis.Client, scoring *services.GoalScoringService) *AutoGoalWorker {
	return &AutoGoalWorker{Redis: rdb, Scoring: scoring}
}

// RunOnce processes all currently due players. One player failing does not
// stop the rest; their schedule entry is handled by the scoring service.
func (w *AutoGoalWorker) RunOnce(ctx context.Context) error {
	now := time.Now()

	duePlayers, err := w.Redis.ZRangeByScore(ctx, services.AutoGoalScheduleKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read auto-action schedule: %w", err)
	}

	for _, playerID := range duePlayers {
		if err := w.Scoring.ProcessAutoGoal(ctx, playerID, now); err != nil {
			log.Printf("[AUTO GOAL] ⚠️ Processing failed for player %s: %v", playerID, err)
		}
	}
	return nil
}
