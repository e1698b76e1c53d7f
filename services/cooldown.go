package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"club-gameplay-engine/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCooldownUnavailable means the shared store could not answer. Callers
// must not confuse this with being on cooldown: the player did nothing wrong.
var ErrCooldownUnavailable = errors.New("cooldown store unavailable")

// TTL reply for a key that does not exist.
const ttlKeyMissing = time.Duration(-2)

// Deleting a cooldown key only when it still holds our token keeps a retried
// release from clearing a lock someone else acquired in the meantime.
var releaseCooldownScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

// CooldownKey is the shared-store key for one (action, player) lock.
func CooldownKey(playerID string, actionType models.GoalActionType) string {
	return fmt.Sprintf("cooldown:%s:%s", actionType, playerID)
}

// CooldownAcquisition is the outcome of a TryAcquire call. When Acquired is
// false, Remaining carries the TTL the caller should surface to the client.
type CooldownAcquisition struct {
	Acquired  bool
	Token     string
	Remaining time.Duration
}

// CooldownService owns the per-player, per-action mutual-exclusion locks.
type CooldownService struct {
	Redis *redis.Client
}

func NewCooldownService(rdb *redis.Client) *CooldownService {
	return &CooldownService{Redis: rdb}
}

// TryAcquire performs a conditional create of the cooldown key. If the key
// vanishes between the failed create and the TTL read (lost race with
// expiry), the create is retried exactly once.
func (s *CooldownService) TryAcquire(ctx context.Context, playerID string, actionType models.GoalActionType, ttl time.Duration) (CooldownAcquisition, error) {
	key := CooldownKey(playerID, actionType)
	token := uuid.NewString()

	ok, err := s.Redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return CooldownAcquisition{}, fmt.Errorf("%w: %v", ErrCooldownUnavailable, err)
	}
	if ok {
		return CooldownAcquisition{Acquired: true, Token: token}, nil
	}

	remaining, err := s.Redis.TTL(ctx, key).Result()
	if err != nil {
		return CooldownAcquisition{}, fmt.Errorf("%w: %v", ErrCooldownUnavailable, err)
	}
	if remaining > 0 {
		return CooldownAcquisition{Remaining: remaining}, nil
	}

	if remaining == ttlKeyMissing {
		ok, err = s.Redis.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return CooldownAcquisition{}, fmt.Errorf("%w: %v", ErrCooldownUnavailable, err)
		}
		if ok {
			return CooldownAcquisition{Acquired: true, Token: token}, nil
		}
		remaining, err = s.Redis.TTL(ctx, key).Result()
		if err != nil {
			return CooldownAcquisition{}, fmt.Errorf("%w: %v", ErrCooldownUnavailable, err)
		}
		if remaining < 0 {
			remaining = 0
		}
		return CooldownAcquisition{Remaining: remaining}, nil
	}

	return CooldownAcquisition{Remaining: 0}, nil
}

// Release deletes the key only if it still holds token. A stale or foreign
// token is a no-op.
func (s *CooldownService) Release(ctx context.Context, playerID string, actionType models.GoalActionType, token string) bool {
	key := CooldownKey(playerID, actionType)

	deleted, err := releaseCooldownScript.Run(ctx, s.Redis, []string{key}, token).Int()
	if err != nil {
		log.Printf("[cooldown] failed to release %s: %v", key, err)
		return false
	}
	return deleted == 1
}

// InitializeIfMissing seeds a default cooldown when a player comes online,
// independent of whether they have acted yet. Already-present keys are left
// alone; store errors are logged and swallowed because presence start must
// not fail on a cold cache.
func (s *CooldownService) InitializeIfMissing(ctx context.Context, playerID string, actionType models.GoalActionType, ttl time.Duration) {
	key := CooldownKey(playerID, actionType)

	if err := s.Redis.SetNX(ctx, key, "init", ttl).Err(); err != nil {
		log.Printf("[cooldown] failed to initialize %s: %v", key, err)
	}
}
