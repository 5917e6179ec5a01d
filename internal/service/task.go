package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/metrics"
	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/token"
)

// TaskService orchestrates task state transitions and their token transfers.
// Each operation validates authorization and preconditions before touching
// state, then applies every write inside one unit of work.
type TaskService struct {
	uow    UnitOfWork
	bus    *events.Bus
	clk    clock.Clock
	rec    metrics.Recorder
	logger *slog.Logger
}

func NewTaskService(uow UnitOfWork, bus *events.Bus, clk clock.Clock, rec metrics.Recorder, logger *slog.Logger) *TaskService {
	return &TaskService{uow: uow, bus: bus, clk: clk, rec: rec, logger: logger}
}

// CompleteResult reports the outcome of a completion.
type CompleteResult struct {
	Task                 model.Task          `json:"task"`
	TokensAwarded        int                 `json:"tokens_awarded"`
	NewBalance           int                 `json:"new_balance"`
	UnlockedAchievements []model.Achievement `json:"unlocked_achievements"`
}

// Complete marks the task done, credits its reward to the assigned user, and
// re-evaluates achievements, all atomically. Children may complete only their
// own tasks; caregivers may complete any.
func (s *TaskService) Complete(ctx context.Context, taskID int64) (*CompleteResult, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}
	policy := PolicyFor(ac.Role)

	var res CompleteResult
	err := s.uow.Do(func(r Repos) error {
		task, err := r.Tasks.GetTask(taskID)
		if err != nil {
			return fmt.Errorf("%w: load task: %w", domain.ErrRepository, err)
		}
		if task == nil {
			return fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
		}
		if task.IsCompleted {
			return fmt.Errorf("%w: task %d", domain.ErrAlreadyCompleted, taskID)
		}
		if d := policy.CanCompleteTask(ac.UserID, task); !d.Allowed {
			return fmt.Errorf("%w: %s", domain.ErrNotAuthorized, d.Reason)
		}

		user, err := r.Users.GetUser(task.AssignedTo)
		if err != nil {
			return fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", domain.ErrNotFound, task.AssignedTo)
		}

		balance, err := token.FromStored(user.TokenBalance).Add(task.TokenReward)
		if err != nil {
			return err
		}

		now := s.clk.Now()
		if err := r.Tasks.SetTaskCompletion(task.ID, true, &now); err != nil {
			return fmt.Errorf("%w: complete task: %w", domain.ErrRepository, err)
		}
		if err := r.Users.SetTokenBalance(user.ID, balance.Value()); err != nil {
			return fmt.Errorf("%w: update balance: %w", domain.ErrRepository, err)
		}

		unlocked, err := evaluateAchievements(r, user.ID, s.clk)
		if err != nil {
			return fmt.Errorf("%w: evaluate achievements: %w", domain.ErrRepository, err)
		}

		task.IsCompleted = true
		task.CompletedAt = &now
		res = CompleteResult{
			Task:                 *task,
			TokensAwarded:        task.TokenReward,
			NewBalance:           balance.Value(),
			UnlockedAchievements: unlocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task completed",
		"task_id", res.Task.ID,
		"user_id", res.Task.AssignedTo,
		"tokens", res.TokensAwarded,
		"unlocked", len(res.UnlockedAchievements),
	)
	if s.rec != nil {
		s.rec.RecordTaskCompleted(string(res.Task.Category))
		s.rec.RecordTokensAwarded(res.TokensAwarded)
		for _, a := range res.UnlockedAchievements {
			s.rec.RecordAchievementUnlocked(string(a.Type))
		}
	}
	s.publish(events.Event{
		Kind:    events.KindTaskCompleted,
		UserID:  res.Task.AssignedTo,
		TaskID:  res.Task.ID,
		Tokens:  res.TokensAwarded,
		Balance: res.NewBalance,
	})
	if len(res.UnlockedAchievements) > 0 {
		s.publish(events.Event{
			Kind:         events.KindAchievementUnlocked,
			UserID:       res.Task.AssignedTo,
			Achievements: res.UnlockedAchievements,
		})
	}
	return &res, nil
}

// UndoResult reports the outcome of an undo.
type UndoResult struct {
	Task           model.Task `json:"task"`
	TokensDeducted int        `json:"tokens_deducted"`
	NewBalance     int        `json:"new_balance"`
	UndoneByRole   model.Role `json:"undone_by_role"`
}

// Undo reverts a completed task and claws back its reward through the
// administrative subtract path, so the balance may go negative: a child who
// already spent the tokens ends up in debt. Achievements are deliberately
// not rolled back. Children may undo only their own tasks; caregivers any.
func (s *TaskService) Undo(ctx context.Context, taskID int64) (*UndoResult, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}
	policy := PolicyFor(ac.Role)

	var res UndoResult
	err := s.uow.Do(func(r Repos) error {
		task, err := r.Tasks.GetTask(taskID)
		if err != nil {
			return fmt.Errorf("%w: load task: %w", domain.ErrRepository, err)
		}
		if task == nil {
			return fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
		}
		if !task.IsCompleted {
			return fmt.Errorf("%w: task %d", domain.ErrNotCompleted, taskID)
		}
		if d := policy.CanUndoTask(ac.UserID, task); !d.Allowed {
			return fmt.Errorf("%w: %s", domain.ErrNotAuthorized, d.Reason)
		}

		user, err := r.Users.GetUser(task.AssignedTo)
		if err != nil {
			return fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", domain.ErrNotFound, task.AssignedTo)
		}

		balance, err := token.FromStored(user.TokenBalance).AdminSubtract(task.TokenReward)
		if err != nil {
			return err
		}

		if err := r.Tasks.SetTaskCompletion(task.ID, false, nil); err != nil {
			return fmt.Errorf("%w: undo task: %w", domain.ErrRepository, err)
		}
		if err := r.Users.SetTokenBalance(user.ID, balance.Value()); err != nil {
			return fmt.Errorf("%w: update balance: %w", domain.ErrRepository, err)
		}

		task.IsCompleted = false
		task.CompletedAt = nil
		res = UndoResult{
			Task:           *task,
			TokensDeducted: task.TokenReward,
			NewBalance:     balance.Value(),
			UndoneByRole:   ac.Role,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task undone",
		"task_id", res.Task.ID,
		"user_id", res.Task.AssignedTo,
		"tokens", res.TokensDeducted,
		"balance", res.NewBalance,
		"role", res.UndoneByRole,
	)
	if s.rec != nil {
		s.rec.RecordTaskUndone()
	}
	s.publish(events.Event{
		Kind:    events.KindTaskUndone,
		UserID:  res.Task.AssignedTo,
		TaskID:  res.Task.ID,
		Tokens:  res.TokensDeducted,
		Balance: res.NewBalance,
	})
	return &res, nil
}

// Delete removes a task. Caregiver-only administrative operation; the
// reward economy never hard-deletes tasks on its own.
func (s *TaskService) Delete(ctx context.Context, taskID int64) error {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}

	r := s.uow.Repos()
	task, err := r.Tasks.GetTask(taskID)
	if err != nil {
		return fmt.Errorf("%w: load task: %w", domain.ErrRepository, err)
	}
	if task == nil {
		return fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
	}
	if d := PolicyFor(ac.Role).CanDeleteTask(ac.UserID, task); !d.Allowed {
		return fmt.Errorf("%w: %s", domain.ErrNotAuthorized, d.Reason)
	}
	if err := r.Tasks.DeleteTask(taskID); err != nil {
		return fmt.Errorf("%w: delete task: %w", domain.ErrRepository, err)
	}
	return nil
}

func (s *TaskService) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
