package models

// PlayerRoundStat holds a player's goal/attempt counters for one match,
// created lazily on their first action in that match. Rows are only ever
// incremented, never overwritten.
type PlayerRoundStat struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID string `gorm:"type:uuid;not null;uniqueIndex:idx_round_stat_player_match" json:"player_id"`
	MatchID  string `gorm:"type:uuid;not null;uniqueIndex:idx_round_stat_player_match" json:"match_id"`

	AutoGoal         int `gorm:"default:0;not null" json:"auto_goal"`
	AutoGoalAttempts int `gorm:"default:0;not null" json:"auto_goal_attempts"`
	PenaltyGoal      int `gorm:"default:0;not null" json:"penalty_goal"`
	PenaltyAttempts  int `gorm:"default:0;not null" json:"penalty_attempts"`
	FreeKickGoal     int `gorm:"default:0;not null" json:"free_kick_goal"`
	FreeKickAttempts int `gorm:"default:0;not null" json:"free_kick_attempts"`
	TrailGoal        int `gorm:"default:0;not null" json:"trail_goal"`
	TrailAttempts    int `gorm:"default:0;not null" json:"trail_attempts"`

	Timestamps
}

// GoalSum is the player's goals in this match so far, across all categories.
func (s PlayerRoundStat) GoalSum() int {
	return s.AutoGoal + s.PenaltyGoal + s.FreeKickGoal + s.TrailGoal
}

// PlayerTotalStat is the lifetime aggregate, folded from round stats exactly
// once per match at finalization.
type PlayerTotalStat struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID string `gorm:"type:uuid;uniqueIndex;not null" json:"player_id"`

	AutoGoal         int `gorm:"default:0;not null" json:"auto_goal"`
	AutoGoalAttempts int `gorm:"default:0;not null" json:"auto_goal_attempts"`
	PenaltyGoal      int `gorm:"default:0;not null" json:"penalty_goal"`
	PenaltyAttempts  int `gorm:"default:0;not null" json:"penalty_attempts"`
	FreeKickGoal     int `gorm:"default:0;not null" json:"free_kick_goal"`
	FreeKickAttempts int `gorm:"default:0;not null" json:"free_kick_attempts"`
	TrailGoal        int `gorm:"default:0;not null" json:"trail_goal"`
	TrailAttempts    int `gorm:"default:0;not null" json:"trail_attempts"`

	Timestamps
}

func (s PlayerTotalStat) GoalSum() int {
	return s.AutoGoal + s.PenaltyGoal + s.FreeKickGoal + s.TrailGoal
}
