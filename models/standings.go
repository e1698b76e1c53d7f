package models

// LeagueStanding is one club's row in a division table. Mutated only at match
// finalization, inside the same transaction that flips the round to finished.
type LeagueStanding struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CompetitionID string `gorm:"type:uuid;not null;uniqueIndex:idx_standing_club" json:"competition_id"`
	DivisionID    string `gorm:"type:uuid;not null;uniqueIndex:idx_standing_club" json:"division_id"`
	ClubID        string `gorm:"type:uuid;not null;uniqueIndex:idx_standing_club" json:"club_id"`

	MatchesPlayed int `gorm:"default:0;not null" json:"matches_played"`
	Wins          int `gorm:"default:0;not null" json:"wins"`
	Draws         int `gorm:"default:0;not null" json:"draws"`
	Defeats       int `gorm:"default:0;not null" json:"defeats"`
	GoalsFor      int `gorm:"default:0;not null" json:"goals_for"`
	GoalsAgainst  int `gorm:"default:0;not null" json:"goals_against"`
	Points        int `gorm:"default:0;not null" json:"points"`

	Timestamps
}
