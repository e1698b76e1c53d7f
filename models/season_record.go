package models

// Season record types: the best leaderboard-leader value ever observed for a
// closed window of that kind within a season.
const (
	SeasonRecordHourGoals  = "hour_goals"
	SeasonRecordRoundGoals = "round_goals"
)

type SeasonRecord struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SeasonID string `gorm:"type:uuid;not null;uniqueIndex:idx_season_record_type" json:"season_id"`
	Type     string `gorm:"type:varchar(16);not null;uniqueIndex:idx_season_record_type" json:"type"`

	RecordValue int `gorm:"not null" json:"record_value"`

	Holders []SeasonRecordHolder `gorm:"foreignKey:RecordID" json:"holders,omitempty"`

	Timestamps
}

// SeasonRecordHolder is one player tied at the record value. A strictly
// greater observation replaces the set, an equal one joins it.
type SeasonRecordHolder struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	RecordID string `gorm:"type:uuid;not null;uniqueIndex:idx_record_holder_player" json:"record_id"`
	PlayerID string `gorm:"type:uuid;not null;uniqueIndex:idx_record_holder_player" json:"player_id"`

	Timestamps
}
