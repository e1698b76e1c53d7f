package models

import "time"

// Player is the gameplay-facing view of a user. Level only ever moves up;
// VIP status is derived from VipExpiresAt at the moment of each action.
type Player struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Level        int        `gorm:"default:1;not null" json:"level"`
	VipExpiresAt *time.Time `json:"vip_expires_at,omitempty"`

	Timestamps
}

// Level maps a lifetime goal total to a level. Rows are ordered by
// RequiredTotalGoals ascending; a player's level is the highest row whose
// threshold their effective total has reached.
type Level struct {
	ID                 int    `gorm:"primaryKey" json:"id"`
	Name               string `gorm:"not null" json:"name"`
	RequiredTotalGoals int    `gorm:"not null;uniqueIndex" json:"required_total_goals"`
}
