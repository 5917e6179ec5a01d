package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/model"
)

// activityStats are the tracked metric values derived from a user's current
// task and redemption state.
type activityStats struct {
	tasksCompleted int
	tokensEarned   int
	tokensSpent    int
	streakDays     int
	perfectDays    int
}

func collectStats(r Repos, userID int64, clk clock.Clock) (activityStats, error) {
	var stats activityStats

	tasks, err := r.Tasks.ListTasksByUser(userID)
	if err != nil {
		return stats, fmt.Errorf("list tasks: %w", err)
	}

	for _, t := range tasks {
		if t.IsCompleted {
			stats.tasksCompleted++
			stats.tokensEarned += t.TokenReward
		}
	}

	stats.streakDays = completionStreak(tasks, clk)

	// A perfect day means every relevant task done, with at least one to do.
	if hasRelevantTask(tasks, clk) && DailyProgress(tasks, clk) == 1.0 {
		stats.perfectDays = 1
	}

	spent, err := r.Rewards.SumTokensSpent(userID)
	if err != nil {
		return stats, fmt.Errorf("sum tokens spent: %w", err)
	}
	stats.tokensSpent = spent

	return stats, nil
}

// completionStreak counts consecutive calendar days with at least one
// completion, ending today or yesterday. A streak broken today is still
// alive until midnight.
func completionStreak(tasks []model.Task, clk clock.Clock) int {
	days := make(map[time.Time]bool)
	for _, t := range tasks {
		if t.CompletedAt != nil {
			days[clock.StartOfDay(*t.CompletedAt)] = true
		}
	}
	if len(days) == 0 {
		return 0
	}

	day := clk.Today()
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func hasRelevantTask(tasks []model.Task, clk clock.Clock) bool {
	today := clk.Today()
	for _, t := range tasks {
		if clk.SameDay(t.CreatedAt, today) || !t.IsCompleted {
			return true
		}
	}
	return false
}

func (s activityStats) metricValue(m model.AchievementMetric) int {
	switch m {
	case model.MetricTasksCompleted:
		return s.tasksCompleted
	case model.MetricStreakDays:
		return s.streakDays
	case model.MetricTokensEarned:
		return s.tokensEarned
	case model.MetricTokensSpent:
		return s.tokensSpent
	case model.MetricPerfectDays:
		return s.perfectDays
	}
	return 0
}

// evaluateAchievements recomputes every achievement for the user and persists
// the rows that changed. Progress only moves forward: undoing a task lowers
// the underlying metric but never an achievement's recorded progress, and an
// unlocked achievement stays unlocked. Returns achievements newly unlocked
// by this pass, stamped with the clock's current time.
func evaluateAchievements(r Repos, userID int64, clk clock.Clock) ([]model.Achievement, error) {
	stats, err := collectStats(r, userID, clk)
	if err != nil {
		return nil, err
	}

	existing, err := r.Achievements.ListAchievementsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	byType := make(map[model.AchievementType]model.Achievement, len(existing))
	for _, a := range existing {
		byType[a.Type] = a
	}

	now := clk.Now()
	var unlocked []model.Achievement
	for _, typ := range model.AchievementTypes() {
		info := typ.Info()
		value := stats.metricValue(info.Metric)
		if value < 0 {
			value = 0
		}
		if value > info.Target {
			value = info.Target
		}

		prev, had := byType[typ]
		progress := value
		if had && prev.Progress > progress {
			progress = prev.Progress
		}

		isUnlocked := had && prev.IsUnlocked
		unlockedAt := prev.UnlockedAt
		newlyUnlocked := false
		if !isUnlocked && info.Target > 0 && progress >= info.Target {
			isUnlocked = true
			unlockedAt = &now
			newlyUnlocked = true
		}

		changed := !had || progress != prev.Progress || isUnlocked != prev.IsUnlocked
		if changed {
			if err := r.Achievements.UpsertAchievement(userID, typ, progress, isUnlocked, unlockedAt); err != nil {
				return nil, fmt.Errorf("upsert achievement %s: %w", typ, err)
			}
		}
		if newlyUnlocked {
			unlocked = append(unlocked, model.Achievement{
				UserID:     userID,
				Type:       typ,
				Progress:   progress,
				IsUnlocked: true,
				UnlockedAt: &now,
			})
		}
	}
	return unlocked, nil
}

// AchievementService serves achievement listings.
type AchievementService struct {
	uow UnitOfWork
	clk clock.Clock
}

func NewAchievementService(uow UnitOfWork, clk clock.Clock) *AchievementService {
	return &AchievementService{uow: uow, clk: clk}
}

// AchievementView pairs a row with its static definition for display.
type AchievementView struct {
	model.Achievement
	Info    model.AchievementInfo `json:"info"`
	Percent int                   `json:"percent"`
}

// ListForUser returns one entry per achievement type, zero-progress rows
// included, in the fixed type order.
func (s *AchievementService) ListForUser(ctx context.Context, userID int64) ([]AchievementView, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}

	r := s.uow.Repos()
	user, err := r.Users.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}

	rows, err := r.Achievements.ListAchievementsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list achievements: %w", domain.ErrRepository, err)
	}
	byType := make(map[model.AchievementType]model.Achievement, len(rows))
	for _, a := range rows {
		byType[a.Type] = a
	}

	order := model.AchievementTypes()
	views := make([]AchievementView, 0, len(order))
	for _, typ := range order {
		a, ok := byType[typ]
		if !ok {
			a = model.Achievement{UserID: userID, Type: typ}
		}
		views = append(views, AchievementView{
			Achievement: a,
			Info:        typ.Info(),
			Percent:     a.Percent(),
		})
	}

	// Unlocked first, then by display order.
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].IsUnlocked && !views[j].IsUnlocked
	})
	return views, nil
}
