package model

import "time"

// AchievementType identifies one of the fixed set of milestones a user can
// unlock. One achievement row exists per (user, type) pair.
type AchievementType string

const (
	AchievementFirstSteps     AchievementType = "first_steps"
	AchievementTaskMaster     AchievementType = "task_master"
	AchievementTaskChampion   AchievementType = "task_champion"
	AchievementCenturyClub    AchievementType = "century_club"
	AchievementThreeDayStreak AchievementType = "three_day_streak"
	AchievementWeekWarrior    AchievementType = "week_warrior"
	AchievementTokenCollector AchievementType = "token_collector"
	AchievementTokenTycoon    AchievementType = "token_tycoon"
	AchievementBigSpender     AchievementType = "big_spender"
	AchievementPerfectDay     AchievementType = "perfect_day"
)

// AchievementMetric is the activity counter an achievement's progress
// tracks toward its target.
type AchievementMetric string

const (
	MetricTasksCompleted AchievementMetric = "tasks_completed"
	MetricStreakDays     AchievementMetric = "streak_days"
	MetricTokensEarned   AchievementMetric = "tokens_earned"
	MetricTokensSpent    AchievementMetric = "tokens_spent"
	MetricPerfectDays    AchievementMetric = "perfect_days"
)

// AchievementInfo describes a type's presentation, target, and tracked metric.
type AchievementInfo struct {
	DisplayName string            `json:"display_name"`
	Description string            `json:"description"`
	Target      int               `json:"target"`
	Category    string            `json:"category"`
	Metric      AchievementMetric `json:"metric"`
}

var achievementTable = map[AchievementType]AchievementInfo{
	AchievementFirstSteps:     {DisplayName: "First Steps", Description: "Complete your first task", Target: 1, Category: "milestone", Metric: MetricTasksCompleted},
	AchievementTaskMaster:     {DisplayName: "Task Master", Description: "Complete 10 tasks", Target: 10, Category: "milestone", Metric: MetricTasksCompleted},
	AchievementTaskChampion:   {DisplayName: "Task Champion", Description: "Complete 25 tasks", Target: 25, Category: "milestone", Metric: MetricTasksCompleted},
	AchievementCenturyClub:    {DisplayName: "Century Club", Description: "Complete 100 tasks", Target: 100, Category: "milestone", Metric: MetricTasksCompleted},
	AchievementThreeDayStreak: {DisplayName: "On a Roll", Description: "Complete tasks 3 days in a row", Target: 3, Category: "streak", Metric: MetricStreakDays},
	AchievementWeekWarrior:    {DisplayName: "Week Warrior", Description: "Complete tasks 7 days in a row", Target: 7, Category: "streak", Metric: MetricStreakDays},
	AchievementTokenCollector: {DisplayName: "Token Collector", Description: "Earn 50 tokens", Target: 50, Category: "economy", Metric: MetricTokensEarned},
	AchievementTokenTycoon:    {DisplayName: "Token Tycoon", Description: "Earn 500 tokens", Target: 500, Category: "economy", Metric: MetricTokensEarned},
	AchievementBigSpender:     {DisplayName: "Big Spender", Description: "Spend 100 tokens on rewards", Target: 100, Category: "economy", Metric: MetricTokensSpent},
	AchievementPerfectDay:     {DisplayName: "Perfect Day", Description: "Finish every task on your list for a day", Target: 1, Category: "daily", Metric: MetricPerfectDays},
}

// Valid reports whether t is one of the known achievement types.
func (t AchievementType) Valid() bool {
	_, ok := achievementTable[t]
	return ok
}

// Info returns the static definition for the type. Unknown types return a
// zero AchievementInfo.
func (t AchievementType) Info() AchievementInfo {
	return achievementTable[t]
}

// Target returns the progress value at which the achievement unlocks.
func (t AchievementType) Target() int {
	return achievementTable[t].Target
}

// AchievementTypes lists all known types in a stable order.
func AchievementTypes() []AchievementType {
	return []AchievementType{
		AchievementFirstSteps,
		AchievementTaskMaster,
		AchievementTaskChampion,
		AchievementCenturyClub,
		AchievementThreeDayStreak,
		AchievementWeekWarrior,
		AchievementTokenCollector,
		AchievementTokenTycoon,
		AchievementBigSpender,
		AchievementPerfectDay,
	}
}

type Achievement struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Type       AchievementType `json:"type"`
	Progress   int             `json:"progress"`
	IsUnlocked bool            `json:"is_unlocked"`
	UnlockedAt *time.Time      `json:"unlocked_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Percent returns the display percentage for the achievement's progress,
// clamped to [0, 100]. A zero target is defined as 0%.
func (a Achievement) Percent() int {
	target := a.Type.Target()
	if target <= 0 {
		return 0
	}
	p := a.Progress * 100 / target
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
