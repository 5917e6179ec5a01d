package store

import (
	"testing"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/database"
	"github.com/lemonqwest/lemonqwest/internal/model"
)

func setupAchievementTestDB(t *testing.T) (*AchievementStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAchievementStore(db), NewUserStore(db)
}

func TestAchievementUpsertInsert(t *testing.T) {
	as, us := setupAchievementTestDB(t)

	u, _ := us.Create("Arthur", model.RoleChild, "")

	if err := as.UpsertAchievement(u.ID, model.AchievementFirstSteps, 1, true, ptrTime(time.Now())); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := as.GetByUserAndType(u.ID, model.AchievementFirstSteps)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected achievement row")
	}
	if got.Progress != 1 || !got.IsUnlocked {
		t.Errorf("progress=%d unlocked=%v, want 1/true", got.Progress, got.IsUnlocked)
	}
	if got.UnlockedAt == nil {
		t.Error("expected unlocked_at to be set")
	}
}

func TestAchievementUpsertUpdatesInPlace(t *testing.T) {
	as, us := setupAchievementTestDB(t)

	u, _ := us.Create("Arthur", model.RoleChild, "")

	if err := as.UpsertAchievement(u.ID, model.AchievementTaskMaster, 4, false, nil); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := as.UpsertAchievement(u.ID, model.AchievementTaskMaster, 7, false, nil); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := as.ListAchievementsByUser(u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after conflicting upserts, got %d", len(rows))
	}
	if rows[0].Progress != 7 {
		t.Errorf("progress = %d, want 7", rows[0].Progress)
	}
}

func TestAchievementListScopedToUser(t *testing.T) {
	as, us := setupAchievementTestDB(t)

	arthur, _ := us.Create("Arthur", model.RoleChild, "")
	dw, _ := us.Create("DW", model.RoleChild, "")

	as.UpsertAchievement(arthur.ID, model.AchievementFirstSteps, 1, true, ptrTime(time.Now()))
	as.UpsertAchievement(dw.ID, model.AchievementFirstSteps, 1, true, ptrTime(time.Now()))
	as.UpsertAchievement(dw.ID, model.AchievementTokenCollector, 12, false, nil)

	rows, err := as.ListAchievementsByUser(dw.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows for dw, got %d", len(rows))
	}
}

func TestAchievementGetMissing(t *testing.T) {
	as, us := setupAchievementTestDB(t)

	u, _ := us.Create("Arthur", model.RoleChild, "")

	got, err := as.GetByUserAndType(u.ID, model.AchievementCenturyClub)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for untracked achievement")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
