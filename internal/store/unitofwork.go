package store

import (
	"database/sql"
	"fmt"

	"github.com/lemonqwest/lemonqwest/internal/service"
)

// UnitOfWork implements service.UnitOfWork over SQLite. Do wraps the use
// case's writes in one transaction, closing the crash window between the
// task update and the balance update.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

var _ service.UnitOfWork = (*UnitOfWork)(nil)

func reposOn(db DBTX) service.Repos {
	return service.Repos{
		Users:        NewUserStore(db),
		Tasks:        NewTaskStore(db),
		Achievements: NewAchievementStore(db),
		Rewards:      NewRewardStore(db),
	}
}

// Repos returns repositories bound to the database for plain reads.
func (u *UnitOfWork) Repos() service.Repos {
	return reposOn(u.db)
}

// Do runs fn inside a transaction and commits only if fn returns nil.
func (u *UnitOfWork) Do(fn func(service.Repos) error) error {
	tx, err := u.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(reposOn(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
