package models

import "time"

// Match lifecycle states. Transitions are one-directional and always applied
// to every match sharing the same round date in a single statement.
const (
	MatchStatusPending    = "pending"
	MatchStatusInProgress = "in_progress"
	MatchStatusFinished   = "finished"
)

const (
	MatchTypeLeague   = "league"
	MatchTypeCup      = "cup"
	MatchTypeFriendly = "friendly"
)

// Match is one scheduled contest between two clubs. Goal counters only grow
// while the match is in progress; the winner stays null until finalization
// (and stays null forever on a league/friendly draw).
type Match struct {
	ID            string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompetitionID *string `gorm:"type:uuid;index" json:"competition_id,omitempty"`
	DivisionID    *string `gorm:"type:uuid;index" json:"division_id,omitempty"`
	LeagueRound   *int    `json:"league_round,omitempty"` // league only
	CupRoundID    *string `gorm:"type:uuid;index" json:"cup_round_id,omitempty"`

	Type   string `gorm:"type:varchar(16);not null" json:"type"`
	Status string `gorm:"type:varchar(16);default:'pending';not null;index" json:"status"`

	ClubHomeID *string `gorm:"type:uuid;index" json:"club_home_id,omitempty"`
	ClubAwayID *string `gorm:"type:uuid;index" json:"club_away_id,omitempty"`

	// Bracket slots: the winner of the referenced match fills this side.
	HomeFromMatchID *string `gorm:"type:uuid;index" json:"home_from_match_id,omitempty"`
	AwayFromMatchID *string `gorm:"type:uuid;index" json:"away_from_match_id,omitempty"`

	WinnerClubID *string `gorm:"type:uuid" json:"winner_club_id,omitempty"`

	HomeGoals int `gorm:"default:0;not null" json:"home_goals"`
	AwayGoals int `gorm:"default:0;not null" json:"away_goals"`

	// Round date: every match sharing this timestamp moves through the
	// lifecycle together.
	Date time.Time `gorm:"index;not null" json:"date"`

	Timestamps
}
