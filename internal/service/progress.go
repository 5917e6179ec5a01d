package service

import (
	"context"
	"fmt"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/model"
)

// DailyProgress computes the fraction of a user's relevant tasks completed
// for the clock's current day, in [0, 1]. Relevant tasks are those created
// today plus incomplete tasks carried over from prior days; tasks completed
// on a prior day are settled history and excluded. Zero relevant tasks is
// defined as 1.0: an empty list is fully on track.
func DailyProgress(tasks []model.Task, clk clock.Clock) float64 {
	today := clk.Today()

	var relevant, completed int
	for _, t := range tasks {
		createdToday := clk.SameDay(t.CreatedAt, today)
		switch {
		case createdToday:
			relevant++
			if t.IsCompleted {
				completed++
			}
		case !t.IsCompleted:
			// Carry-over: an old task still waiting counts against today.
			relevant++
		}
	}

	if relevant == 0 {
		return 1.0
	}
	return float64(completed) / float64(relevant)
}

// ProgressService exposes the daily ratio for a user.
type ProgressService struct {
	uow UnitOfWork
	clk clock.Clock
}

func NewProgressService(uow UnitOfWork, clk clock.Clock) *ProgressService {
	return &ProgressService{uow: uow, clk: clk}
}

// Daily returns the authenticated user's progress, or the named user's when
// the caller is a caregiver.
func (s *ProgressService) Daily(ctx context.Context, userID int64) (float64, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}
	if userID != ac.UserID && ac.Role != model.RoleCaregiver {
		return 0, fmt.Errorf("%w: children can only view their own progress", domain.ErrNotAuthorized)
	}

	r := s.uow.Repos()
	user, err := r.Users.GetUser(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
	}
	if user == nil {
		return 0, fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}

	tasks, err := r.Tasks.ListTasksByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: list tasks: %w", domain.ErrRepository, err)
	}
	return DailyProgress(tasks, s.clk), nil
}
