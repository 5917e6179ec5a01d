package store

import (
	"testing"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/database"
	"github.com/lemonqwest/lemonqwest/internal/model"
)

func setupRewardTestDB(t *testing.T) (*RewardStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRewardStore(db), NewUserStore(db)
}

func TestRewardCreateAndGet(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	r, err := rs.Create("Movie night", "Pick the Friday movie", 30, true)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if r.ID == 0 {
		t.Error("expected assigned id")
	}

	got, err := rs.GetReward(r.ID)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got.Title != "Movie night" || got.TokenCost != 30 || !got.Active {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestRewardNotFound(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	got, err := rs.GetReward(42)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing reward")
	}
}

func TestRewardUpdateAndDelete(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	r, _ := rs.Create("Ice cream", "", 15, true)

	updated, err := rs.Update(r.ID, "Ice cream", "One scoop", 20, false)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.TokenCost != 20 || updated.Active {
		t.Errorf("update mismatch: %+v", updated)
	}

	if err := rs.Delete(r.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	got, _ := rs.GetReward(r.ID)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRewardRedemptionsAndSum(t *testing.T) {
	rs, us := setupRewardTestDB(t)

	u, _ := us.Create("Arthur", model.RoleChild, "")
	r, _ := rs.Create("Stay up late", "", 25, true)

	now := time.Now().UTC()
	if err := rs.CreateRedemption(r.ID, u.ID, 25, now); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if err := rs.CreateRedemption(r.ID, u.ID, 25, now.Add(time.Hour)); err != nil {
		t.Fatalf("second redemption: %v", err)
	}

	list, err := rs.ListRedemptionsByUser(u.ID)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 redemptions, got %d", len(list))
	}

	sum, err := rs.SumTokensSpent(u.ID)
	if err != nil {
		t.Fatalf("sum spent: %v", err)
	}
	if sum != 50 {
		t.Errorf("sum = %d, want 50", sum)
	}
}

func TestRewardSumTokensSpentNoRows(t *testing.T) {
	rs, us := setupRewardTestDB(t)

	u, _ := us.Create("Arthur", model.RoleChild, "")

	sum, err := rs.SumTokensSpent(u.ID)
	if err != nil {
		t.Fatalf("sum spent: %v", err)
	}
	if sum != 0 {
		t.Errorf("sum = %d, want 0 with no redemptions", sum)
	}
}
