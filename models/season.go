package models

import "time"

type Season struct {
	ID       string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name     string     `gorm:"not null" json:"name"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Timestamps
}

// Competition is a season-scoped league or cup. Matches reach their season
// through this row.
type Competition struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SeasonID string `gorm:"type:uuid;index;not null" json:"season_id"`
	Name     string `gorm:"not null" json:"name"`
	Type     string `gorm:"type:varchar(16);not null" json:"type"` // league | cup

	Timestamps
}

// CupRound identifies one elimination stage (0 = final, 1 = semi-final, ...).
type CupRound struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompetitionID string `gorm:"type:uuid;index;not null" json:"competition_id"`
	Stage         int    `gorm:"not null" json:"stage"`
	TotalClubs    int    `gorm:"not null" json:"total_clubs"`

	Timestamps
}
