package models

// Club metadata is owned by the roster service; gameplay only needs identity.
type Club struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"not null" json:"name"`

	Timestamps
}

// ClubMember is a player's active club membership. Gameplay resolves the
// match a player can score in through this row, never through a stored match
// id, because clubs can be reassigned between rounds.
type ClubMember struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID string `gorm:"type:uuid;uniqueIndex;not null" json:"player_id"`
	ClubID   string `gorm:"type:uuid;index;not null" json:"club_id"`

	Timestamps
}
