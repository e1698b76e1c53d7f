package models

import "fmt"

// GoalActionType is the closed set of scoring action categories. Each maps to
// a fixed (goal, attempt) column pair on the stat rows; there is no runtime
// field-name dispatch.
type GoalActionType string

const (
	ActionAuto     GoalActionType = "auto"
	ActionPenalty  GoalActionType = "penalty"
	ActionFreeKick GoalActionType = "free_kick"
	ActionTrail    GoalActionType = "trail"
)

// ManualActionTypes are the categories a client may trigger directly. Auto
// goals are produced only by the auto-goal worker, which paces itself through
// the schedule set instead of the cooldown store.
var ManualActionTypes = []GoalActionType{ActionPenalty, ActionFreeKick, ActionTrail}

// AllActionTypes covers every category, for bulk key cleanup.
var AllActionTypes = []GoalActionType{ActionAuto, ActionPenalty, ActionFreeKick, ActionTrail}

func (a GoalActionType) Valid() bool {
	switch a {
	case ActionAuto, ActionPenalty, ActionFreeKick, ActionTrail:
		return true
	}
	return false
}

func (a GoalActionType) Manual() bool {
	return a.Valid() && a != ActionAuto
}

// StatColumns names the columns to increment for one action category.
type StatColumns struct {
	Goal    string
	Attempt string
}

// Columns returns the stat column pair for the action type. The caller must
// have validated the type; an unknown value is a programming error.
func (a GoalActionType) Columns() (StatColumns, error) {
	switch a {
	case ActionAuto:
		return StatColumns{Goal: "auto_goal", Attempt: "auto_goal_attempts"}, nil
	case ActionPenalty:
		return StatColumns{Goal: "penalty_goal", Attempt: "penalty_attempts"}, nil
	case ActionFreeKick:
		return StatColumns{Goal: "free_kick_goal", Attempt: "free_kick_attempts"}, nil
	case ActionTrail:
		return StatColumns{Goal: "trail_goal", Attempt: "trail_attempts"}, nil
	}
	return StatColumns{}, fmt.Errorf("unsupported action type: %q", string(a))
}
