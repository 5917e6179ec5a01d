package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

type AchievementStore struct {
	db DBTX
}

func NewAchievementStore(db DBTX) *AchievementStore {
	return &AchievementStore{db: db}
}

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	var unlocked int
	var unlockedAt sql.NullTime

	err := scanner.Scan(&a.ID, &a.UserID, &a.Type, &a.Progress, &unlocked, &unlockedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.IsUnlocked = unlocked != 0
	if unlockedAt.Valid {
		a.UnlockedAt = &unlockedAt.Time
	}
	return &a, nil
}

const achievementCols = `id, user_id, type, progress, is_unlocked, unlocked_at, created_at, updated_at`

func (s *AchievementStore) ListAchievementsByUser(userID int64) ([]model.Achievement, error) {
	rows, err := s.db.Query(
		`SELECT `+achievementCols+` FROM achievements WHERE user_id = ? ORDER BY type ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

func (s *AchievementStore) GetByUserAndType(userID int64, typ model.AchievementType) (*model.Achievement, error) {
	row := s.db.QueryRow(
		`SELECT `+achievementCols+` FROM achievements WHERE user_id = ? AND type = ?`,
		userID, typ,
	)
	a, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get achievement: %w", err)
	}
	return a, nil
}

// UpsertAchievement writes the (userID, type) row, relying on the unique
// index on that pair.
func (s *AchievementStore) UpsertAchievement(userID int64, typ model.AchievementType, progress int, unlocked bool, unlockedAt *time.Time) error {
	var u int
	if unlocked {
		u = 1
	}
	var at sql.NullTime
	if unlockedAt != nil {
		at = sql.NullTime{Time: unlockedAt.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO achievements (user_id, type, progress, is_unlocked, unlocked_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, type) DO UPDATE SET
		   progress = excluded.progress,
		   is_unlocked = excluded.is_unlocked,
		   unlocked_at = excluded.unlocked_at,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, typ, progress, u, at,
	)
	if err != nil {
		return fmt.Errorf("upsert achievement: %w", err)
	}
	return nil
}
