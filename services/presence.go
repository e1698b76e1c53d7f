package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"club-gameplay-engine/config"
	"club-gameplay-engine/models"
	"club-gameplay-engine/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Shared-store key families for presence tracking.
const (
	OnlinePlayersKey    = "presence:online"      // zset, score = last-seen epoch ms
	AutoGoalScheduleKey = "schedule:auto_action" // zset, score = next-due epoch ms
)

// PresenceService tracks which players are online and owns the cleanup of
// everything keyed by a player's presence: the schedule entry and the
// cooldown keys.
type PresenceService struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Cooldowns *CooldownService
	Cfg       *config.Config
}

func NewPresenceService(db *gorm.DB, rdb *redis.Client, cooldowns *CooldownService, cfg *config.Config) *PresenceService {
	return &PresenceService{DB: db, Redis: rdb, Cooldowns: cooldowns, Cfg: cfg}
}

// Start records a player's first connection: last-seen now, an auto-goal due
// time seeded only if absent, and default cooldowns for every manual action.
func (s *PresenceService) Start(ctx context.Context, playerID string) error {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		return fmt.Errorf("player not found to start gameplay presence: %w", err)
	}

	now := time.Now()
	ttl := s.cooldownTTLFor(&player, now)
	nextAutoGoal := now.Add(ttl)

	pipe := s.Redis.TxPipeline()
	pipe.ZAdd(ctx, OnlinePlayersKey, redis.Z{Score: float64(now.UnixMilli()), Member: playerID})
	pipe.ZAddNX(ctx, AutoGoalScheduleKey, redis.Z{Score: float64(nextAutoGoal.UnixMilli()), Member: playerID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record gameplay presence: %w", err)
	}

	for _, actionType := range models.ManualActionTypes {
		s.Cooldowns.InitializeIfMissing(ctx, playerID, actionType, ttl)
	}
	return nil
}

// Heartbeat refreshes last-seen. No other side effect.
func (s *PresenceService) Heartbeat(ctx context.Context, playerID string) error {
	return s.Redis.ZAdd(ctx, OnlinePlayersKey, redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: playerID,
	}).Err()
}

// Clear removes one player's presence, schedule entry, and cooldown keys.
func (s *PresenceService) Clear(ctx context.Context, playerID string) error {
	return s.clearPlayers(ctx, []string{playerID})
}

// IsOffline reports whether the player's last-seen is missing or older than
// the online window.
func (s *PresenceService) IsOffline(ctx context.Context, playerID string, now time.Time) (bool, error) {
	lastSeen, err := s.Redis.ZScore(ctx, OnlinePlayersKey, playerID).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read presence for player %s: %w", playerID, err)
	}
	return int64(lastSeen) < now.Add(-s.Cfg.OnlineWindow).UnixMilli(), nil
}

// SweepOffline bulk-clears every player whose last-seen fell out of the
// window. This is the authoritative cleanup path; transport disconnects are
// not trusted as the sole signal.
func (s *PresenceService) SweepOffline(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.Cfg.OnlineWindow).UnixMilli()

	offline, err := s.Redis.ZRangeByScore(ctx, OnlinePlayersKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to load offline players: %w", err)
	}
	if len(offline) == 0 {
		return 0, nil
	}

	if err := s.clearPlayers(ctx, offline); err != nil {
		return 0, err
	}
	return len(offline), nil
}

// OnlineCount reports how many players are inside the online window.
func (s *PresenceService) OnlineCount(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.Cfg.OnlineWindow).UnixMilli()
	return s.Redis.ZCount(ctx, OnlinePlayersKey, strconv.FormatInt(cutoff, 10), "+inf").Result()
}

func (s *PresenceService) clearPlayers(ctx context.Context, playerIDs []string) error {
	members := make([]interface{}, len(playerIDs))
	cooldownKeys := make([]string, 0, len(playerIDs)*4)
	for i, playerID := range playerIDs {
		members[i] = playerID
		for _, actionType := range models.AllActionTypes {
			cooldownKeys = append(cooldownKeys, CooldownKey(playerID, actionType))
		}
	}

	pipe := s.Redis.TxPipeline()
	pipe.ZRem(ctx, OnlinePlayersKey, members...)
	pipe.ZRem(ctx, AutoGoalScheduleKey, members...)
	pipe.Del(ctx, cooldownKeys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear presence state: %w", err)
	}
	return nil
}

func (s *PresenceService) cooldownTTLFor(player *models.Player, now time.Time) time.Duration {
	return utils.ResolveCooldownTTL(player.VipExpiresAt, now, s.Cfg.CooldownStandard, s.Cfg.CooldownVIP)
}
