package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"club-gameplay-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordComparison classifies an observed leader value against the stored
// season record.
type recordComparison int

const (
	// recordBelow: the observation does not reach the record; nothing changes.
	recordBelow recordComparison = iota
	// recordTied: the observation equals the record; its holders join the set.
	recordTied
	// recordBroken: the observation beats the record; value and holders are
	// replaced.
	recordBroken
)

func compareToRecord(recordValue, observedValue int) recordComparison {
	switch {
	case observedValue > recordValue:
		return recordBroken
	case observedValue == recordValue:
		return recordTied
	default:
		return recordBelow
	}
}

// SeasonRecordService stores the best hour/round goal marks a season has
// seen, together with every player who achieved them.
type SeasonRecordService struct {
	DB *gorm.DB
}

func NewSeasonRecordService(db *gorm.DB) *SeasonRecordService {
	return &SeasonRecordService{DB: db}
}

// CheckAndUpdate applies a closed window's leaders to the season record of
// the given type. A strictly greater value replaces the record and its
// holders, an equal value adds the new holders alongside the existing ones,
// and a lesser value changes nothing. A nil leaders set is a no-op.
func (s *SeasonRecordService) CheckAndUpdate(ctx context.Context, seasonID string, recordType string, leaders *SnapshotLeaders) error {
	if leaders == nil || len(leaders.PlayerIDs) == 0 {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.SeasonRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("season_id = ? AND type = ?", seasonID, recordType).
			First(&record).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = models.SeasonRecord{
				SeasonID:    seasonID,
				Type:        recordType,
				RecordValue: leaders.RecordValue,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create season record: %w", err)
			}
			log.Printf("[SEASON RECORDS] 🏆 New %s record for season %s: %d", recordType, seasonID, leaders.RecordValue)
			return s.insertHolders(tx, record.ID, leaders.PlayerIDs)
		}
		if err != nil {
			return fmt.Errorf("failed to load season record: %w", err)
		}

		switch compareToRecord(record.RecordValue, leaders.RecordValue) {
		case recordBroken:
			if err := tx.Model(&record).Update("record_value", leaders.RecordValue).Error; err != nil {
				return fmt.Errorf("failed to update season record value: %w", err)
			}
			if err := tx.Where("record_id = ?", record.ID).
				Delete(&models.SeasonRecordHolder{}).Error; err != nil {
				return fmt.Errorf("failed to clear season record holders: %w", err)
			}
			log.Printf("[SEASON RECORDS] 🏆 %s record for season %s raised to %d", recordType, seasonID, leaders.RecordValue)
			return s.insertHolders(tx, record.ID, leaders.PlayerIDs)

		case recordTied:
			return s.insertHolders(tx, record.ID, leaders.PlayerIDs)

		default:
			return nil
		}
	})
}

func (s *SeasonRecordService) insertHolders(tx *gorm.DB, recordID string, playerIDs []string) error {
	holders := make([]models.SeasonRecordHolder, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		holders = append(holders, models.SeasonRecordHolder{
			RecordID: recordID,
			PlayerID: playerID,
		})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&holders).Error; err != nil {
		return fmt.Errorf("failed to insert season record holders: %w", err)
	}
	return nil
}
