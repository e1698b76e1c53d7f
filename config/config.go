package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full environment surface of the gameplay engine. Values are
// read once at boot; services receive the struct (or a slice of it) instead of
// touching os.Getenv themselves.
type Config struct {
	DatabaseURL string
	RedisURL    string
	ListenAddr  string

	// Cooldowns
	CooldownStandard time.Duration // non-VIP players
	CooldownVIP      time.Duration // players with an active VIP pass

	// Success probability per action category, each in [0,1]
	GoalProbabilityAuto     float64
	GoalProbabilityPenalty  float64
	GoalProbabilityFreeKick float64
	GoalProbabilityTrail    float64

	// Presence
	OnlineWindow time.Duration

	// Worker intervals
	MatchLifecycleInterval      time.Duration
	AutoGoalInterval            time.Duration
	PresenceCleanupInterval     time.Duration
	LeaderboardSnapshotInterval time.Duration

	// Leaderboard TTLs
	HourLeaderboardTTL  time.Duration
	RoundLeaderboardTTL time.Duration

	// How long after kickoff a round becomes eligible for finalization.
	RoundFinalizeDelay time.Duration
}

// Load reads the environment into a Config. Missing required values,
// malformed durations and out-of-range probabilities are reported as errors
// so the process fails at boot instead of mid-round.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":5300"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	var err error
	if cfg.CooldownStandard, err = getDurationSeconds("COOLDOWN_STANDARD_SECONDS", 600); err != nil {
		return nil, err
	}
	if cfg.CooldownVIP, err = getDurationSeconds("COOLDOWN_VIP_SECONDS", 300); err != nil {
		return nil, err
	}

	if cfg.OnlineWindow, err = getDurationMillis("ONLINE_WINDOW_MS", 60000); err != nil {
		return nil, err
	}

	if cfg.MatchLifecycleInterval, err = getDurationMillis("MATCH_LIFECYCLE_WORKER_INTERVAL_MS", 30000); err != nil {
		return nil, err
	}
	if cfg.AutoGoalInterval, err = getDurationMillis("AUTO_GOAL_WORKER_INTERVAL_MS", 2000); err != nil {
		return nil, err
	}
	if cfg.PresenceCleanupInterval, err = getDurationMillis("PRESENCE_CLEANUP_INTERVAL_MS", 60000); err != nil {
		return nil, err
	}
	if cfg.LeaderboardSnapshotInterval, err = getDurationMillis("LEADERBOARD_SNAPSHOT_INTERVAL_MS", 10000); err != nil {
		return nil, err
	}

	if cfg.HourLeaderboardTTL, err = getDurationSeconds("HOUR_LEADERBOARD_TTL_SECONDS", 7200); err != nil {
		return nil, err
	}
	if cfg.RoundLeaderboardTTL, err = getDurationSeconds("ROUND_LEADERBOARD_TTL_SECONDS", 604800); err != nil {
		return nil, err
	}

	if cfg.RoundFinalizeDelay, err = getDurationSeconds("ROUND_FINALIZE_DELAY_SECONDS", 86400); err != nil {
		return nil, err
	}

	if cfg.GoalProbabilityAuto, err = getProbability("GOAL_PROBABILITY_AUTO"); err != nil {
		return nil, err
	}
	if cfg.GoalProbabilityPenalty, err = getProbability("GOAL_PROBABILITY_PENALTY"); err != nil {
		return nil, err
	}
	if cfg.GoalProbabilityFreeKick, err = getProbability("GOAL_PROBABILITY_FREE_KICK"); err != nil {
		return nil, err
	}
	if cfg.GoalProbabilityTrail, err = getProbability("GOAL_PROBABILITY_TRAIL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationSeconds(key string, fallback int64) (time.Duration, error) {
	n, err := getPositiveInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func getDurationMillis(key string, fallback int64) (time.Duration, error) {
	n, err := getPositiveInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func getPositiveInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func getProbability(key string) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s environment variable not set", key)
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1, got %v", key, p)
	}
	return p, nil
}
