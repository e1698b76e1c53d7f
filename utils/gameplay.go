package utils

import (
	"time"
)

// Rounds kick off at a fixed local hour; leaderboard hour buckets use the
// same zone so "this hour's top scorers" matches what players see.
const RoundTimeZone = "America/Sao_Paulo"

var roundLocation = mustLoadLocation(RoundTimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsVipActive reports whether a VIP pass is still valid at currentTime.
func IsVipActive(vipExpiresAt *time.Time, currentTime time.Time) bool {
	return vipExpiresAt != nil && vipExpiresAt.After(currentTime)
}

// ResolveCooldownTTL picks the cooldown for a player based on VIP status.
func ResolveCooldownTTL(vipExpiresAt *time.Time, currentTime time.Time, standard, vip time.Duration) time.Duration {
	if IsVipActive(vipExpiresAt, currentTime) {
		return vip
	}
	return standard
}

// NextAutoGoalAt is when the scheduler should fire the player's next
// automatic attempt.
func NextAutoGoalAt(now time.Time, cooldownTTL time.Duration) time.Time {
	return now.Add(cooldownTTL)
}

// HourKey buckets a timestamp into its wall-clock hour, e.g. "2026-08-29T18".
func HourKey(t time.Time) string {
	return t.In(roundLocation).Format("2006-01-02T15")
}
