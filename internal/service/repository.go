// Package service implements the domain use cases: task completion and undo,
// achievement evaluation, reward redemption, and daily progress. Services
// depend on repository interfaces only; storage implementations live in
// internal/store (SQLite) and internal/memstore (in-memory).
package service

import (
	"time"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

// UserRepository loads and updates users.
type UserRepository interface {
	GetUser(id int64) (*model.User, error)
	// SetTokenBalance overwrites the stored balance. Negative values are
	// legal: an administrative undo may leave a user in debt.
	SetTokenBalance(id int64, balance int) error
}

// TaskRepository loads and updates tasks.
type TaskRepository interface {
	GetTask(id int64) (*model.Task, error)
	ListTasksByUser(userID int64) ([]model.Task, error)
	// SetTaskCompletion flips a task's completion state. completedAt must be
	// non-nil exactly when completed is true.
	SetTaskCompletion(id int64, completed bool, completedAt *time.Time) error
	DeleteTask(id int64) error
}

// AchievementRepository loads and writes per-user achievement rows.
type AchievementRepository interface {
	ListAchievementsByUser(userID int64) ([]model.Achievement, error)
	// UpsertAchievement writes the row for (userID, type), creating it if absent.
	UpsertAchievement(userID int64, typ model.AchievementType, progress int, unlocked bool, unlockedAt *time.Time) error
}

// RewardRepository loads rewards and records redemptions.
type RewardRepository interface {
	GetReward(id int64) (*model.Reward, error)
	CreateRedemption(rewardID, userID int64, tokensSpent int, redeemedAt time.Time) error
	// SumTokensSpent totals a user's lifetime reward spending.
	SumTokensSpent(userID int64) (int, error)
}

// Repos bundles the repositories a use case touches.
type Repos struct {
	Users        UserRepository
	Tasks        TaskRepository
	Achievements AchievementRepository
	Rewards      RewardRepository
}

// UnitOfWork runs a use case's writes atomically: either every write inside
// Do is applied, or none is observable. The SQLite implementation wraps fn
// in one transaction; the in-memory implementation holds its store lock for
// the duration of fn.
type UnitOfWork interface {
	// Repos returns repositories for plain reads outside a transaction.
	Repos() Repos
	// Do invokes fn with transaction-bound repositories and commits only if
	// fn returns nil.
	Do(fn func(Repos) error) error
}
