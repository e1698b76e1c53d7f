package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"club-gameplay-engine/config"
	"club-gameplay-engine/events"
	"club-gameplay-engine/models"
	"club-gameplay-engine/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalOutcomeStatus classifies the result of a goal attempt. Everything here
// is an expected game state, not an error.
type GoalOutcomeStatus string

const (
	GoalScored              GoalOutcomeStatus = "scored"
	GoalMissed              GoalOutcomeStatus = "missed"
	GoalOnCooldown          GoalOutcomeStatus = "cooldown"
	GoalCooldownUnavailable GoalOutcomeStatus = "cooldown_unavailable"
	GoalMatchNotInProgress  GoalOutcomeStatus = "match_not_in_progress"
	GoalPlayerOffline       GoalOutcomeStatus = "player_offline"
)

// GoalActionResult is the outcome delivered back to the attempting player.
type GoalActionResult struct {
	Status              GoalOutcomeStatus     `json:"status"`
	MatchID             string                `json:"match_id,omitempty"`
	PlayerID            string                `json:"player_id,omitempty"`
	ActionType          models.GoalActionType `json:"action_type,omitempty"`
	HomeGoals           int                   `json:"home_goals"`
	AwayGoals           int                   `json:"away_goals"`
	PlayerLevel         int                   `json:"player_level,omitempty"`
	EffectiveTotalGoals int                   `json:"effective_total_goals,omitempty"`

	// Only set when Status is GoalOnCooldown.
	CooldownRemainingSeconds int64 `json:"cooldown_remaining_seconds,omitempty"`
}

// AutoGoalStatus is the outcome of one auto-goal schedule entry.
type AutoGoalStatus int

const (
	// AutoGoalProcessed: the attempt ran (scored or missed) and the schedule
	// entry must be re-armed.
	AutoGoalProcessed AutoGoalStatus = iota
	// AutoGoalMatchNotFound: the player's club has no in-progress match right
	// now (between rounds). The schedule entry is left as-is and retried.
	AutoGoalMatchNotFound
	// AutoGoalPresenceCleared: the player went offline or lost the state an
	// attempt needs; their presence was torn down.
	AutoGoalPresenceCleared
)

// GoalScoringService resolves scoring attempts against a locked match row:
// cooldown acquisition, lazy round-stat creation, the probability roll, score
// and level updates.
type GoalScoringService struct {
	DB           *gorm.DB
	Cooldowns    *CooldownService
	Presence     *PresenceService
	Leaderboards *LeaderboardService
	Bus          events.Bus
	Cfg          *config.Config

	// roll reports whether an attempt with the given success probability
	// scores. Swapped out in tests.
	roll func(probability float64) bool
}

func NewGoalScoringService(db *gorm.DB, cooldowns *CooldownService, presence *PresenceService, leaderboards *LeaderboardService, bus events.Bus, cfg *config.Config) *GoalScoringService {
	return &GoalScoringService{
		DB:           db,
		Cooldowns:    cooldowns,
		Presence:     presence,
		Leaderboards: leaderboards,
		Bus:          bus,
		Cfg:          cfg,
		roll: func(probability float64) bool {
			return rand.Float64() < probability
		},
	}
}

func (s *GoalScoringService) probabilityFor(actionType models.GoalActionType) float64 {
	switch actionType {
	case models.ActionAuto:
		return s.Cfg.GoalProbabilityAuto
	case models.ActionPenalty:
		return s.Cfg.GoalProbabilityPenalty
	case models.ActionFreeKick:
		return s.Cfg.GoalProbabilityFreeKick
	case models.ActionTrail:
		return s.Cfg.GoalProbabilityTrail
	}
	return 0
}

// AttemptGoal resolves a manual scoring attempt. Offline players are cleared
// lazily; everything after the offline pre-check runs in one transaction with
// the match row locked. If anything fails after the cooldown was acquired,
// the token is released so the player keeps their right to act.
func (s *GoalScoringService) AttemptGoal(ctx context.Context, playerID, matchID string, actionType models.GoalActionType) (*GoalActionResult, error) {
	if !actionType.Manual() {
		return nil, fmt.Errorf("action type %q cannot be triggered by a client; auto goals are produced by the auto-goal worker", actionType)
	}

	now := time.Now()
	offline, err := s.Presence.IsOffline(ctx, playerID, now)
	if err != nil {
		return nil, err
	}
	if offline {
		// Lazily garbage-collect the stale schedule and cooldown entries.
		if err := s.Presence.Clear(ctx, playerID); err != nil {
			log.Printf("[goal] failed to clear offline player %s: %v", playerID, err)
		}
		return &GoalActionResult{Status: GoalPlayerOffline, MatchID: matchID, PlayerID: playerID, ActionType: actionType}, nil
	}

	var result *GoalActionResult
	var cooldownToken string

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&match, "id = ?", matchID).Error; err != nil {
			return fmt.Errorf("match %s not found: %w", matchID, err)
		}

		if match.Status != models.MatchStatusInProgress {
			result = &GoalActionResult{Status: GoalMatchNotInProgress, MatchID: matchID, PlayerID: playerID, ActionType: actionType}
			return nil
		}

		if match.ClubHomeID == nil || match.ClubAwayID == nil {
			return fmt.Errorf("match %s is missing club assignments", matchID)
		}

		var player models.Player
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			return fmt.Errorf("player %s not found: %w", playerID, err)
		}

		var membership models.ClubMember
		if err := tx.First(&membership, "player_id = ?", playerID).Error; err != nil {
			return fmt.Errorf("player %s does not belong to a club: %w", playerID, err)
		}

		side := ResolveScoringSide(membership.ClubID, match.ClubHomeID, match.ClubAwayID)
		if side == SideNone {
			return fmt.Errorf("player %s club %s plays in neither side of match %s", playerID, membership.ClubID, matchID)
		}

		ttl := utils.ResolveCooldownTTL(player.VipExpiresAt, now, s.Cfg.CooldownStandard, s.Cfg.CooldownVIP)

		acquisition, err := s.Cooldowns.TryAcquire(ctx, playerID, actionType, ttl)
		if err != nil {
			if errors.Is(err, ErrCooldownUnavailable) {
				result = &GoalActionResult{Status: GoalCooldownUnavailable, MatchID: matchID, PlayerID: playerID, ActionType: actionType}
				return nil
			}
			return err
		}
		if !acquisition.Acquired {
			result = &GoalActionResult{
				Status:                   GoalOnCooldown,
				MatchID:                  matchID,
				PlayerID:                 playerID,
				ActionType:               actionType,
				CooldownRemainingSeconds: int64(acquisition.Remaining / time.Second),
			}
			return nil
		}
		cooldownToken = acquisition.Token

		resolved, err := s.resolveAttempt(tx, &player, &match, side, actionType)
		if err != nil {
			return err
		}
		result = resolved
		return nil
	})
	if txErr != nil {
		if cooldownToken != "" {
			// Compensating release: an infrastructure failure must not cost
			// the player their acquired right to act.
			s.Cooldowns.Release(ctx, playerID, actionType, cooldownToken)
		}
		return nil, txErr
	}

	s.afterResolved(ctx, result)
	return result, nil
}

// ProcessAutoGoal runs one due schedule entry: the same resolve sequence as
// manual scoring, specialized to the automatic category and with no cooldown
// interaction (the schedule entry itself is the pacing mechanism).
func (s *GoalScoringService) ProcessAutoGoal(ctx context.Context, playerID string, now time.Time) error {
	offline, err := s.Presence.IsOffline(ctx, playerID, now)
	if err != nil {
		return err
	}
	if offline {
		return s.Presence.Clear(ctx, playerID)
	}

	var (
		status AutoGoalStatus
		result *GoalActionResult
		ttl    time.Duration
	)

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = AutoGoalPresenceCleared
				return nil
			}
			return err
		}

		var membership models.ClubMember
		if err := tx.First(&membership, "player_id = ?", playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = AutoGoalPresenceCleared
				return nil
			}
			return err
		}

		// The match is found through the active club membership, not a
		// stored match id: the club may have moved on since the last tick.
		var match models.Match
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND (club_home_id = ? OR club_away_id = ?)", models.MatchStatusInProgress, membership.ClubID, membership.ClubID).
			First(&match).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = AutoGoalMatchNotFound
			return nil
		}
		if err != nil {
			return err
		}

		side := ResolveScoringSide(membership.ClubID, match.ClubHomeID, match.ClubAwayID)
		if side == SideNone {
			status = AutoGoalPresenceCleared
			return nil
		}

		resolved, err := s.resolveAttempt(tx, &player, &match, side, models.ActionAuto)
		if err != nil {
			return err
		}

		ttl = utils.ResolveCooldownTTL(player.VipExpiresAt, now, s.Cfg.CooldownStandard, s.Cfg.CooldownVIP)
		status = AutoGoalProcessed
		result = resolved
		return nil
	})
	if txErr != nil {
		// A broken entry must not hot-loop every tick; tear the presence
		// down and let the next connect rebuild it.
		if clearErr := s.Presence.Clear(ctx, playerID); clearErr != nil {
			log.Printf("[auto-goal] failed to clear player %s after error: %v", playerID, clearErr)
		}
		return txErr
	}

	switch status {
	case AutoGoalProcessed:
		if err := s.rearmAutoGoal(ctx, playerID, now.Add(ttl)); err != nil {
			log.Printf("[auto-goal] failed to re-arm schedule for player %s: %v", playerID, err)
		}
		s.afterResolved(ctx, result)
	case AutoGoalPresenceCleared:
		if err := s.Presence.Clear(ctx, playerID); err != nil {
			log.Printf("[auto-goal] failed to clear player %s: %v", playerID, err)
		}
	case AutoGoalMatchNotFound:
		// Between rounds. Leave the entry; the next tick retries.
	}
	return nil
}

// resolveAttempt runs steps shared by manual and automatic attempts inside
// the caller's transaction: lazy round-stat creation, attempt increment, the
// probability roll, score and level updates.
func (s *GoalScoringService) resolveAttempt(tx *gorm.DB, player *models.Player, match *models.Match, side ScoringSide, actionType models.GoalActionType) (*GoalActionResult, error) {
	columns, err := actionType.Columns()
	if err != nil {
		return nil, err
	}

	var stat models.PlayerRoundStat
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND match_id = ?", player.ID, match.ID).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.PlayerRoundStat{PlayerID: player.ID, MatchID: match.ID}
		if err := tx.Create(&stat).Error; err != nil {
			return nil, fmt.Errorf("failed to create round stats: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if err := tx.Model(&models.PlayerRoundStat{}).
		Where("player_id = ? AND match_id = ?", player.ID, match.ID).
		UpdateColumn(columns.Attempt, gorm.Expr(columns.Attempt+" + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	scored := s.roll(s.probabilityFor(actionType))

	if scored {
		if err := tx.Model(&models.PlayerRoundStat{}).
			Where("player_id = ? AND match_id = ?", player.ID, match.ID).
			UpdateColumn(columns.Goal, gorm.Expr(columns.Goal+" + 1")).Error; err != nil {
			return nil, fmt.Errorf("failed to record goal: %w", err)
		}

		goalColumn := "home_goals"
		if side == SideAway {
			goalColumn = "away_goals"
		}
		if err := tx.Model(&models.Match{}).
			Where("id = ?", match.ID).
			UpdateColumn(goalColumn, gorm.Expr(goalColumn+" + 1")).Error; err != nil {
			return nil, fmt.Errorf("failed to update match score: %w", err)
		}
		if side == SideHome {
			match.HomeGoals++
		} else {
			match.AwayGoals++
		}
	}

	// Reload for the effective-total computation below.
	if err := tx.Where("player_id = ? AND match_id = ?", player.ID, match.ID).First(&stat).Error; err != nil {
		return nil, err
	}

	var totals models.PlayerTotalStat
	if err := tx.First(&totals, "player_id = ?", player.ID).Error; err != nil {
		return nil, fmt.Errorf("total stats missing for player %s: %w", player.ID, err)
	}

	effectiveTotalGoals := totals.GoalSum() + stat.GoalSum()

	var level models.Level
	if err := tx.Where("required_total_goals <= ?", effectiveTotalGoals).
		Order("required_total_goals DESC").
		First(&level).Error; err != nil {
		return nil, fmt.Errorf("no level row covers a total of %d goals: %w", effectiveTotalGoals, err)
	}

	playerLevel := player.Level
	if level.ID > playerLevel {
		if err := tx.Model(&models.Player{}).Where("id = ?", player.ID).UpdateColumn("level", level.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to persist level up: %w", err)
		}
		playerLevel = level.ID
	}

	status := GoalMissed
	if scored {
		status = GoalScored
	}
	return &GoalActionResult{
		Status:              status,
		MatchID:             match.ID,
		PlayerID:            player.ID,
		ActionType:          actionType,
		HomeGoals:           match.HomeGoals,
		AwayGoals:           match.AwayGoals,
		PlayerLevel:         playerLevel,
		EffectiveTotalGoals: effectiveTotalGoals,
	}, nil
}

// afterResolved runs the out-of-transaction followups for a resolved
// attempt: leaderboard increments on a goal and result fan-out. Both are
// best-effort relative to the committed attempt.
func (s *GoalScoringService) afterResolved(ctx context.Context, result *GoalActionResult) {
	if result == nil {
		return
	}

	if result.Status == GoalScored {
		if err := s.Leaderboards.RecordMatchGoal(ctx, result.PlayerID, result.MatchID); err != nil {
			log.Printf("[goal] failed to update leaderboards for match %s: %v", result.MatchID, err)
		}
	}

	if result.Status == GoalScored || result.Status == GoalMissed {
		payload, err := json.Marshal(result)
		if err != nil {
			log.Printf("[goal] failed to encode goal result: %v", err)
			return
		}
		if err := s.Bus.Publish(ctx, events.GoalResultChannel, payload); err != nil {
			log.Printf("[goal] failed to publish goal result: %v", err)
		}
	}
}

func (s *GoalScoringService) rearmAutoGoal(ctx context.Context, playerID string, dueAt time.Time) error {
	return s.Presence.Redis.ZAdd(ctx, AutoGoalScheduleKey, redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: playerID,
	}).Err()
}
