package workers

import (
	"context"
	"fmt"
	"log"

	"club-gameplay-engine/config"

	"github.com/go-co-op/gocron/v2"
)

// Runner is one background worker tick.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler owns the gocron instance driving all background workers.
type Scheduler struct {
	sched gocron.Scheduler
}

// NewScheduler registers every worker at its configured interval. Jobs do
// not overlap with themselves; a slow tick delays the next one instead of
// stacking.
func NewScheduler(ctx context.Context, cfg *config.Config, lifecycle *MatchLifecycleWorker, autoGoal *AutoGoalWorker, presence *PresenceCleanupWorker, snapshots *LeaderboardSnapshotWorker) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	jobs := []struct {
		name     string
		interval gocron.JobDefinition
		runner   Runner
	}{
		{"match lifecycle", gocron.DurationJob(cfg.MatchLifecycleInterval), lifecycle},
		{"auto goal", gocron.DurationJob(cfg.AutoGoalInterval), autoGoal},
		{"presence cleanup", gocron.DurationJob(cfg.PresenceCleanupInterval), presence},
		{"leaderboard snapshot", gocron.DurationJob(cfg.LeaderboardSnapshotInterval), snapshots},
	}

	for _, job := range jobs {
		name := job.name
		runner := job.runner
		_, err := sched.NewJob(
			job.interval,
			gocron.NewTask(func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[SCHEDULER] ❌ %s worker panicked: %v", name, r)
					}
				}()
				if err := runner.RunOnce(ctx); err != nil {
					log.Printf("[SCHEDULER] ❌ %s worker tick failed: %v", name, err)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to register %s worker: %w", name, err)
		}
	}

	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	log.Println("🔁 Starting background workers…")
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
