package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"club-gameplay-engine/config"
	"club-gameplay-engine/models"
	"club-gameplay-engine/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache keys for the read-optimized snapshot copies.
const (
	LeaderboardCacheHourKey   = "cache:leaderboard:hour"
	LeaderboardCacheSeasonKey = "cache:leaderboard:season"
)

const leaderboardTopN = 10

func HourLeaderboardKey(hourKey string) string {
	return "leaderboard:hour:" + hourKey
}

func RoundLeaderboardKey(roundID string) string {
	return "leaderboard:round:" + roundID
}

func SeasonLeaderboardKey(seasonID string) string {
	return "leaderboard:season:" + seasonID
}

func RoundLeaderboardCacheKey(roundID string) string {
	return "cache:leaderboard:round:" + roundID
}

// LeagueRoundID disambiguates a league round (competition + round number)
// from a cup round, which already has its own id.
func LeagueRoundID(competitionID string, leagueRound int) string {
	return fmt.Sprintf("%s:%d", competitionID, leagueRound)
}

// LeaderboardEntry is one (player, goals) pair in a ranked window.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Goals    int    `json:"goals"`
}

// SnapshotLeaders is the set of players tied at a window's top value.
type SnapshotLeaders struct {
	RecordValue int
	PlayerIDs   []string
}

// ResolveSnapshotLeaders extracts the leaders from a snapshot. Nil means the
// window has no entries.
func ResolveSnapshotLeaders(snapshot []LeaderboardEntry) *SnapshotLeaders {
	if len(snapshot) == 0 {
		return nil
	}

	top := snapshot[0].Goals
	for _, entry := range snapshot[1:] {
		if entry.Goals > top {
			top = entry.Goals
		}
	}

	seen := make(map[string]bool)
	var playerIDs []string
	for _, entry := range snapshot {
		if entry.Goals != top || entry.PlayerID == "" || seen[entry.PlayerID] {
			continue
		}
		seen[entry.PlayerID] = true
		playerIDs = append(playerIDs, entry.PlayerID)
	}
	if len(playerIDs) == 0 {
		return nil
	}

	return &SnapshotLeaders{RecordValue: top, PlayerIDs: playerIDs}
}

// LeaderboardService maintains the hour/round/season ranked sets and their
// cached top-10 snapshots.
type LeaderboardService struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Records *SeasonRecordService
	Cfg     *config.Config
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client, records *SeasonRecordService, cfg *config.Config) *LeaderboardService {
	return &LeaderboardService{DB: db, Redis: rdb, Records: records, Cfg: cfg}
}

type matchCompetitionContext struct {
	SeasonID      string
	MatchType     string
	CompetitionID string
	LeagueRound   *int
	CupRoundID    *string
}

// RecordMatchGoal resolves the match's season and round labels and bumps all
// applicable ranked sets by one.
func (s *LeaderboardService) RecordMatchGoal(ctx context.Context, playerID, matchID string) error {
	var mc matchCompetitionContext
	err := s.DB.Raw(`
		SELECT c.season_id, m.type AS match_type, m.competition_id, m.league_round, m.cup_round_id
		FROM matches m
		JOIN competitions c ON c.id = m.competition_id
		WHERE m.id = ?
	`, matchID).Scan(&mc).Error
	if err != nil {
		return fmt.Errorf("failed to resolve competition context for match %s: %w", matchID, err)
	}
	if mc.SeasonID == "" {
		// Friendly matches have no competition and no leaderboard presence.
		return nil
	}

	roundID := ""
	switch {
	case mc.MatchType == models.MatchTypeLeague && mc.LeagueRound != nil:
		roundID = LeagueRoundID(mc.CompetitionID, *mc.LeagueRound)
	case mc.CupRoundID != nil:
		roundID = *mc.CupRoundID
	}

	return s.RecordGoal(ctx, playerID, mc.SeasonID, roundID)
}

// RecordGoal increments the hour, round and season sets, refreshing the
// bounded windows' TTLs on write.
func (s *LeaderboardService) RecordGoal(ctx context.Context, playerID, seasonID, roundID string) error {
	hourKey := HourLeaderboardKey(utils.HourKey(time.Now()))

	pipe := s.Redis.TxPipeline()
	pipe.ZIncrBy(ctx, hourKey, 1, playerID)
	pipe.Expire(ctx, hourKey, s.Cfg.HourLeaderboardTTL)
	if roundID != "" {
		roundKey := RoundLeaderboardKey(roundID)
		pipe.ZIncrBy(ctx, roundKey, 1, playerID)
		pipe.Expire(ctx, roundKey, s.Cfg.RoundLeaderboardTTL)
	}
	pipe.ZIncrBy(ctx, SeasonLeaderboardKey(seasonID), 1, playerID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update leaderboards: %w", err)
	}
	return nil
}

func (s *LeaderboardService) snapshotForKey(ctx context.Context, leaderboardKey string) ([]LeaderboardEntry, error) {
	ranked, err := s.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, leaderboardTopN-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard %s: %w", leaderboardKey, err)
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for _, z := range ranked {
		playerID, ok := z.Member.(string)
		if !ok || playerID == "" {
			continue
		}
		entries = append(entries, LeaderboardEntry{PlayerID: playerID, Goals: int(z.Score)})
	}
	return entries, nil
}

// RefreshSnapshot copies the current top-10 of a ranked set into its cache
// key and returns it.
func (s *LeaderboardService) RefreshSnapshot(ctx context.Context, leaderboardKey, cacheKey string) ([]LeaderboardEntry, error) {
	snapshot, err := s.snapshotForKey(ctx, leaderboardKey)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	if err := s.Redis.Set(ctx, cacheKey, payload, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to write leaderboard cache %s: %w", cacheKey, err)
	}
	return snapshot, nil
}

func (s *LeaderboardService) RefreshCurrentHourSnapshot(ctx context.Context) ([]LeaderboardEntry, error) {
	return s.RefreshSnapshot(ctx, HourLeaderboardKey(utils.HourKey(time.Now())), LeaderboardCacheHourKey)
}

func (s *LeaderboardService) RefreshSeasonSnapshot(ctx context.Context, seasonID string) ([]LeaderboardEntry, error) {
	return s.RefreshSnapshot(ctx, SeasonLeaderboardKey(seasonID), LeaderboardCacheSeasonKey)
}

func (s *LeaderboardService) RefreshRoundSnapshot(ctx context.Context, roundID string) ([]LeaderboardEntry, error) {
	return s.RefreshSnapshot(ctx, RoundLeaderboardKey(roundID), RoundLeaderboardCacheKey(roundID))
}

func (s *LeaderboardService) cachedSnapshot(ctx context.Context, cacheKey string) ([]LeaderboardEntry, error) {
	raw, err := s.Redis.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard cache %s: %w", cacheKey, err)
	}

	var snapshot []LeaderboardEntry
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("corrupt leaderboard cache %s: %w", cacheKey, err)
	}
	return snapshot, nil
}

func (s *LeaderboardService) CachedHourSnapshot(ctx context.Context) ([]LeaderboardEntry, error) {
	return s.cachedSnapshot(ctx, LeaderboardCacheHourKey)
}

func (s *LeaderboardService) CachedSeasonSnapshot(ctx context.Context) ([]LeaderboardEntry, error) {
	return s.cachedSnapshot(ctx, LeaderboardCacheSeasonKey)
}

func (s *LeaderboardService) CachedRoundSnapshot(ctx context.Context, roundID string) ([]LeaderboardEntry, error) {
	return s.cachedSnapshot(ctx, RoundLeaderboardCacheKey(roundID))
}

// leadersForKey finds the top value of a ranked set and every player tied at
// it, not just those inside the top-10 cutoff.
func (s *LeaderboardService) leadersForKey(ctx context.Context, leaderboardKey string) (*SnapshotLeaders, error) {
	snapshot, err := s.snapshotForKey(ctx, leaderboardKey)
	if err != nil {
		return nil, err
	}
	leaders := ResolveSnapshotLeaders(snapshot)
	if leaders == nil {
		return nil, nil
	}

	top := strconv.Itoa(leaders.RecordValue)
	tied, err := s.Redis.ZRangeByScore(ctx, leaderboardKey, &redis.ZRangeBy{Min: top, Max: top}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tied leaders for %s: %w", leaderboardKey, err)
	}
	if len(tied) == 0 {
		return nil, nil
	}

	return &SnapshotLeaders{RecordValue: leaders.RecordValue, PlayerIDs: tied}, nil
}

// CheckHourRecord compares a closed hour window's leaders against the stored
// season record.
func (s *LeaderboardService) CheckHourRecord(ctx context.Context, seasonID, hourKey string) error {
	leaders, err := s.leadersForKey(ctx, HourLeaderboardKey(hourKey))
	if err != nil {
		return err
	}
	return s.Records.CheckAndUpdate(ctx, seasonID, models.SeasonRecordHourGoals, leaders)
}

// CheckRoundRecord compares a closed round's leaders against the stored
// season record.
func (s *LeaderboardService) CheckRoundRecord(ctx context.Context, seasonID, roundID string) error {
	leaders, err := s.leadersForKey(ctx, RoundLeaderboardKey(roundID))
	if err != nil {
		return err
	}
	return s.Records.CheckAndUpdate(ctx, seasonID, models.SeasonRecordRoundGoals, leaders)
}
