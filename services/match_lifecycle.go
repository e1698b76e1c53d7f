package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"club-gameplay-engine/config"
	"club-gameplay-engine/models"

	"gorm.io/gorm"
)

var (
	// ErrMixedRoundStatuses means matches sharing a round date disagree on
	// status. Rounds move all-or-nothing, so this state is never produced by
	// the engine itself and needs operator attention.
	ErrMixedRoundStatuses = errors.New("round matches have mixed statuses")

	// ErrCupDrawUnresolved blocks finalizing a drawn cup match.
	// TODO: implement cup tie-breakers (extra time / penalties) before finalizing.
	ErrCupDrawUnresolved = errors.New("cup match ended in a draw without a tie-breaker")
)

// RoundAction reports what a lifecycle pass did: which round date it touched
// (nil when no round was due) and how many matches it transitioned.
type RoundAction struct {
	RoundDate    *time.Time
	MatchesCount int
}

// RoundSeasonContext identifies one competition round that shares a round
// date, carrying enough to build its leaderboard round id.
type RoundSeasonContext struct {
	SeasonID      string
	MatchType     string
	CompetitionID string
	LeagueRound   *int
	CupRoundID    *string
}

// MatchLifecycleService moves whole rounds of matches through
// pending -> in_progress -> finished and settles their outcomes.
type MatchLifecycleService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMatchLifecycleService(db *gorm.DB, cfg *config.Config) *MatchLifecycleService {
	return &MatchLifecycleService{DB: db, Cfg: cfg}
}

type lockedRoundMatch struct {
	ID              string
	Status          string
	Type            string
	CompetitionID   *string
	DivisionID      *string
	ClubHomeID      *string
	ClubAwayID      *string
	HomeFromMatchID *string
	AwayFromMatchID *string
	HomeGoals       int
	AwayGoals       int
	WinnerClubID    *string
}

// resolveWinner picks the side with more goals, or nil on a draw.
func resolveWinner(m lockedRoundMatch) *string {
	switch {
	case m.HomeGoals > m.AwayGoals:
		return m.ClubHomeID
	case m.AwayGoals > m.HomeGoals:
		return m.ClubAwayID
	default:
		return nil
	}
}

func uniformStatus(matches []lockedRoundMatch) (string, bool) {
	if len(matches) == 0 {
		return "", false
	}
	status := matches[0].Status
	for _, m := range matches[1:] {
		if m.Status != status {
			return "", false
		}
	}
	return status, true
}

func (s *MatchLifecycleService) lockRoundMatches(tx *gorm.DB, roundDate time.Time) ([]lockedRoundMatch, error) {
	var locked []lockedRoundMatch
	err := tx.Raw(`
		SELECT id, status, type, competition_id, division_id,
		       club_home_id, club_away_id,
		       home_from_match_id, away_from_match_id,
		       home_goals, away_goals, winner_club_id
		FROM matches
		WHERE date = ?
		FOR UPDATE
	`, roundDate).Scan(&locked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock round matches: %w", err)
	}
	return locked, nil
}

// StartDueRound finds the earliest pending round whose date has passed and
// flips every match in it to in_progress in one statement. A round another
// worker already started is a no-op; mixed statuses are fatal.
func (s *MatchLifecycleService) StartDueRound(ctx context.Context, now time.Time) (RoundAction, error) {
	var action RoundAction

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due struct{ RoundDate *time.Time }
		err := tx.Raw(`
			SELECT MIN(date) AS round_date
			FROM matches
			WHERE status = ? AND date <= ?
		`, models.MatchStatusPending, now).Scan(&due).Error
		if err != nil {
			return fmt.Errorf("failed to find due pending round: %w", err)
		}
		if due.RoundDate == nil {
			return nil
		}
		roundDate := *due.RoundDate
		action.RoundDate = &roundDate

		locked, err := s.lockRoundMatches(tx, roundDate)
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return nil
		}

		status, uniform := uniformStatus(locked)
		switch {
		case uniform && status == models.MatchStatusPending:
			// The whole round moves together.
			err := tx.Model(&models.Match{}).
				Where("date = ?", roundDate).
				Update("status", models.MatchStatusInProgress).Error
			if err != nil {
				return fmt.Errorf("failed to start round: %w", err)
			}
			action.MatchesCount = len(locked)
			return nil
		case uniform && status == models.MatchStatusInProgress:
			// Another worker got here first.
			return nil
		default:
			return fmt.Errorf("refusing to start round %s: %w", roundDate.Format(time.RFC3339), ErrMixedRoundStatuses)
		}
	})
	if err != nil {
		return RoundAction{}, err
	}

	if action.MatchesCount > 0 {
		log.Printf("[MATCH LIFECYCLE] ▶️ Started round %s (%d matches)", action.RoundDate.Format(time.RFC3339), action.MatchesCount)
	}
	return action, nil
}

// FinishDueRound finds the earliest in-progress round that has been running
// for at least the finalize delay, settles every match in it and flips the
// round to finished, all in one transaction.
func (s *MatchLifecycleService) FinishDueRound(ctx context.Context, now time.Time) (RoundAction, error) {
	var action RoundAction

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due struct{ RoundDate *time.Time }
		err := tx.Raw(`
			SELECT MIN(date) AS round_date
			FROM matches
			WHERE status = ? AND date + ? * interval '1 second' <= ?
		`, models.MatchStatusInProgress, int64(s.Cfg.RoundFinalizeDelay.Seconds()), now).Scan(&due).Error
		if err != nil {
			return fmt.Errorf("failed to find due in-progress round: %w", err)
		}
		if due.RoundDate == nil {
			return nil
		}
		roundDate := *due.RoundDate
		action.RoundDate = &roundDate

		locked, err := s.lockRoundMatches(tx, roundDate)
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return nil
		}

		status, uniform := uniformStatus(locked)
		switch {
		case uniform && status == models.MatchStatusInProgress:
			for _, m := range locked {
				if err := s.finalizeMatch(tx, m); err != nil {
					return err
				}
			}
			err := tx.Model(&models.Match{}).
				Where("date = ?", roundDate).
				Update("status", models.MatchStatusFinished).Error
			if err != nil {
				return fmt.Errorf("failed to finish round: %w", err)
			}
			action.MatchesCount = len(locked)
			return nil
		case uniform && status == models.MatchStatusFinished:
			return nil
		default:
			return fmt.Errorf("refusing to finish round %s: %w", roundDate.Format(time.RFC3339), ErrMixedRoundStatuses)
		}
	})
	if err != nil {
		return RoundAction{}, err
	}

	if action.MatchesCount > 0 {
		log.Printf("[MATCH LIFECYCLE] 🏁 Finished round %s (%d matches)", action.RoundDate.Format(time.RFC3339), action.MatchesCount)
	}
	return action, nil
}

// finalizeMatch settles one match: winner, lifetime totals fold, league
// standings, cup bracket propagation. Every write is gated on the match
// still being in_progress so re-running after a partial failure is safe.
func (s *MatchLifecycleService) finalizeMatch(tx *gorm.DB, m lockedRoundMatch) error {
	if m.Type == models.MatchTypeCup && (m.ClubHomeID == nil || m.ClubAwayID == nil) {
		return fmt.Errorf("cup match %s is missing clubs to finalize", m.ID)
	}
	if m.Type == models.MatchTypeLeague &&
		(m.CompetitionID == nil || m.DivisionID == nil || m.ClubHomeID == nil || m.ClubAwayID == nil) {
		return fmt.Errorf("league match %s is missing required identifiers to finalize", m.ID)
	}

	winner := resolveWinner(m)
	if m.Type == models.MatchTypeCup && winner == nil {
		return fmt.Errorf("match %s: %w", m.ID, ErrCupDrawUnresolved)
	}

	err := tx.Exec(`
		UPDATE matches
		SET winner_club_id = ?
		WHERE id = ? AND winner_club_id IS DISTINCT FROM ?
	`, winner, m.ID, winner).Error
	if err != nil {
		return fmt.Errorf("failed to set winner for match %s: %w", m.ID, err)
	}

	if err := s.foldPlayerTotals(tx, m.ID); err != nil {
		return err
	}

	if m.Type == models.MatchTypeLeague {
		if err := s.applyLeagueStandings(tx, m.ID); err != nil {
			return err
		}
	}
	if m.Type == models.MatchTypeCup {
		if err := s.propagateCupWinner(tx, m.ID, *winner); err != nil {
			return err
		}
	}
	return nil
}

func (s *MatchLifecycleService) foldPlayerTotals(tx *gorm.DB, matchID string) error {
	err := tx.Exec(`
		WITH match_context AS (
			SELECT id AS match_id
			FROM matches
			WHERE id = ? AND status = 'in_progress'
		),
		aggregated AS (
			SELECT
				player_id,
				SUM(auto_goal) AS auto_goal,
				SUM(auto_goal_attempts) AS auto_goal_attempts,
				SUM(penalty_goal) AS penalty_goal,
				SUM(penalty_attempts) AS penalty_attempts,
				SUM(free_kick_goal) AS free_kick_goal,
				SUM(free_kick_attempts) AS free_kick_attempts,
				SUM(trail_goal) AS trail_goal,
				SUM(trail_attempts) AS trail_attempts
			FROM player_round_stats
			JOIN match_context ON match_context.match_id = player_round_stats.match_id
			GROUP BY player_id
		)
		UPDATE player_total_stats AS totals
		SET
			auto_goal = totals.auto_goal + aggregated.auto_goal,
			auto_goal_attempts = totals.auto_goal_attempts + aggregated.auto_goal_attempts,
			penalty_goal = totals.penalty_goal + aggregated.penalty_goal,
			penalty_attempts = totals.penalty_attempts + aggregated.penalty_attempts,
			free_kick_goal = totals.free_kick_goal + aggregated.free_kick_goal,
			free_kick_attempts = totals.free_kick_attempts + aggregated.free_kick_attempts,
			trail_goal = totals.trail_goal + aggregated.trail_goal,
			trail_attempts = totals.trail_attempts + aggregated.trail_attempts
		FROM aggregated
		WHERE totals.player_id = aggregated.player_id
	`, matchID).Error
	if err != nil {
		return fmt.Errorf("failed to fold player totals for match %s: %w", matchID, err)
	}
	return nil
}

func (s *MatchLifecycleService) applyLeagueStandings(tx *gorm.DB, matchID string) error {
	// Home club.
	err := tx.Exec(`
		WITH match_context AS (
			SELECT competition_id, division_id, club_home_id, home_goals, away_goals
			FROM matches
			WHERE id = ? AND status = 'in_progress' AND type = 'league'
		)
		UPDATE league_standings AS standings
		SET
			matches_played = matches_played + 1,
			wins = wins + CASE WHEN match_context.home_goals > match_context.away_goals THEN 1 ELSE 0 END,
			draws = draws + CASE WHEN match_context.home_goals = match_context.away_goals THEN 1 ELSE 0 END,
			defeats = defeats + CASE WHEN match_context.home_goals < match_context.away_goals THEN 1 ELSE 0 END,
			goals_for = goals_for + match_context.home_goals,
			goals_against = goals_against + match_context.away_goals,
			points = points + CASE
				WHEN match_context.home_goals > match_context.away_goals THEN 3
				WHEN match_context.home_goals = match_context.away_goals THEN 1
				ELSE 0
			END
		FROM match_context
		WHERE standings.competition_id = match_context.competition_id
		  AND standings.division_id = match_context.division_id
		  AND standings.club_id = match_context.club_home_id
	`, matchID).Error
	if err != nil {
		return fmt.Errorf("failed to update home standings for match %s: %w", matchID, err)
	}

	// Away club.
	err = tx.Exec(`
		WITH match_context AS (
			SELECT competition_id, division_id, club_away_id, home_goals, away_goals
			FROM matches
			WHERE id = ? AND status = 'in_progress' AND type = 'league'
		)
		UPDATE league_standings AS standings
		SET
			matches_played = matches_played + 1,
			wins = wins + CASE WHEN match_context.away_goals > match_context.home_goals THEN 1 ELSE 0 END,
			draws = draws + CASE WHEN match_context.away_goals = match_context.home_goals THEN 1 ELSE 0 END,
			defeats = defeats + CASE WHEN match_context.away_goals < match_context.home_goals THEN 1 ELSE 0 END,
			goals_for = goals_for + match_context.away_goals,
			goals_against = goals_against + match_context.home_goals,
			points = points + CASE
				WHEN match_context.away_goals > match_context.home_goals THEN 3
				WHEN match_context.away_goals = match_context.home_goals THEN 1
				ELSE 0
			END
		FROM match_context
		WHERE standings.competition_id = match_context.competition_id
		  AND standings.division_id = match_context.division_id
		  AND standings.club_id = match_context.club_away_id
	`, matchID).Error
	if err != nil {
		return fmt.Errorf("failed to update away standings for match %s: %w", matchID, err)
	}
	return nil
}

// propagateCupWinner fills bracket slots fed by this match. A slot already
// holding a different club is a data integrity problem, not something to
// silently overwrite.
func (s *MatchLifecycleService) propagateCupWinner(tx *gorm.DB, matchID, winnerClubID string) error {
	var conflicts int64
	err := tx.Raw(`
		SELECT COUNT(*) FROM matches
		WHERE home_from_match_id = ? AND club_home_id IS NOT NULL AND club_home_id <> ?
	`, matchID, winnerClubID).Scan(&conflicts).Error
	if err != nil {
		return fmt.Errorf("failed to check home bracket slot for match %s: %w", matchID, err)
	}
	if conflicts > 0 {
		return fmt.Errorf("home slot already has a different club for match %s", matchID)
	}

	err = tx.Raw(`
		SELECT COUNT(*) FROM matches
		WHERE away_from_match_id = ? AND club_away_id IS NOT NULL AND club_away_id <> ?
	`, matchID, winnerClubID).Scan(&conflicts).Error
	if err != nil {
		return fmt.Errorf("failed to check away bracket slot for match %s: %w", matchID, err)
	}
	if conflicts > 0 {
		return fmt.Errorf("away slot already has a different club for match %s", matchID)
	}

	err = tx.Exec(`
		UPDATE matches SET club_home_id = ?
		WHERE home_from_match_id = ? AND club_home_id IS DISTINCT FROM ?
	`, winnerClubID, matchID, winnerClubID).Error
	if err != nil {
		return fmt.Errorf("failed to fill home bracket slot for match %s: %w", matchID, err)
	}

	err = tx.Exec(`
		UPDATE matches SET club_away_id = ?
		WHERE away_from_match_id = ? AND club_away_id IS DISTINCT FROM ?
	`, winnerClubID, matchID, winnerClubID).Error
	if err != nil {
		return fmt.Errorf("failed to fill away bracket slot for match %s: %w", matchID, err)
	}
	return nil
}

// RoundSeasonContexts lists every distinct competition round that shared the
// given round date, for closing out round leaderboards.
func (s *MatchLifecycleService) RoundSeasonContexts(ctx context.Context, roundDate time.Time) ([]RoundSeasonContext, error) {
	var leagueRounds []RoundSeasonContext
	err := s.DB.WithContext(ctx).Raw(`
		SELECT c.season_id, m.type AS match_type, m.competition_id, m.league_round
		FROM matches m
		JOIN competitions c ON c.id = m.competition_id
		WHERE m.date = ? AND m.type = ? AND m.competition_id IS NOT NULL AND m.league_round IS NOT NULL
		GROUP BY c.season_id, m.type, m.competition_id, m.league_round
	`, roundDate, models.MatchTypeLeague).Scan(&leagueRounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load league round contexts: %w", err)
	}

	var cupRounds []RoundSeasonContext
	err = s.DB.WithContext(ctx).Raw(`
		SELECT c.season_id, m.type AS match_type, m.competition_id, m.cup_round_id
		FROM matches m
		JOIN competitions c ON c.id = m.competition_id
		WHERE m.date = ? AND m.type = ? AND m.competition_id IS NOT NULL AND m.cup_round_id IS NOT NULL
		GROUP BY c.season_id, m.type, m.competition_id, m.cup_round_id
	`, roundDate, models.MatchTypeCup).Scan(&cupRounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cup round contexts: %w", err)
	}

	return append(leagueRounds, cupRounds...), nil
}

// RoundID builds the leaderboard round id for a context, empty when the
// context lacks the fields its type needs.
func (c RoundSeasonContext) RoundID() string {
	switch {
	case c.MatchType == models.MatchTypeLeague && c.LeagueRound != nil:
		return LeagueRoundID(c.CompetitionID, *c.LeagueRound)
	case c.CupRoundID != nil:
		return *c.CupRoundID
	default:
		return ""
	}
}

// InProgressSeasonID is the season of the most recently dated in-progress
// match, or empty when no round is live.
func (s *MatchLifecycleService) InProgressSeasonID(ctx context.Context) (string, error) {
	var row struct{ SeasonID string }
	err := s.DB.WithContext(ctx).Raw(`
		SELECT c.season_id
		FROM matches m
		JOIN competitions c ON c.id = m.competition_id
		WHERE m.status = ?
		ORDER BY m.date DESC
		LIMIT 1
	`, models.MatchStatusInProgress).Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to resolve in-progress season: %w", err)
	}
	return row.SeasonID, nil
}

// InProgressRoundIDs lists the leaderboard round ids of every live round,
// league and cup.
func (s *MatchLifecycleService) InProgressRoundIDs(ctx context.Context) ([]string, error) {
	var leagueRows []struct {
		CompetitionID string
		LeagueRound   int
	}
	err := s.DB.WithContext(ctx).Raw(`
		SELECT competition_id, league_round
		FROM matches
		WHERE status = ? AND type = ? AND competition_id IS NOT NULL AND league_round IS NOT NULL
		GROUP BY competition_id, league_round
	`, models.MatchStatusInProgress, models.MatchTypeLeague).Scan(&leagueRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve in-progress league rounds: %w", err)
	}

	var cupRoundIDs []string
	err = s.DB.WithContext(ctx).Raw(`
		SELECT cup_round_id
		FROM matches
		WHERE status = ? AND type = ? AND cup_round_id IS NOT NULL
		GROUP BY cup_round_id
	`, models.MatchStatusInProgress, models.MatchTypeCup).Scan(&cupRoundIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve in-progress cup rounds: %w", err)
	}

	roundIDs := make([]string, 0, len(leagueRows)+len(cupRoundIDs))
	for _, row := range leagueRows {
		roundIDs = append(roundIDs, LeagueRoundID(row.CompetitionID, row.LeagueRound))
	}
	roundIDs = append(roundIDs, cupRoundIDs...)
	return roundIDs, nil
}
