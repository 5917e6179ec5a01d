package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/memstore"
	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/service"
)

var testTime = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func caregiverCtx(id int64) context.Context {
	return auth.WithAuth(context.Background(), auth.AuthContext{UserID: id, Role: model.RoleCaregiver})
}

func childCtx(id int64) context.Context {
	return auth.WithAuth(context.Background(), auth.AuthContext{UserID: id, Role: model.RoleChild})
}

func newTaskFixture(t *testing.T) (*memstore.Store, *service.TaskService) {
	t.Helper()
	store := memstore.New()
	svc := service.NewTaskService(store, events.NewBus(nil), clock.Fixed{T: testTime}, nil, testLogger())
	return store, svc
}

func seedChildWithTask(store *memstore.Store, balance int) (model.User, model.Task) {
	child := store.AddUser(model.User{Name: "Arthur", Role: model.RoleChild, TokenBalance: balance})
	task := store.AddTask(model.Task{
		Title:       "Clean room",
		Category:    model.CategoryHousehold,
		TokenReward: model.CategoryHousehold.DefaultReward(),
		AssignedTo:  child.ID,
		CreatedAt:   testTime,
	})
	return child, task
}

func TestCompleteAwardsTokens(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	res, err := svc.Complete(childCtx(child.ID), task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.TokensAwarded != 10 {
		t.Errorf("tokens awarded = %d, want 10", res.TokensAwarded)
	}
	if res.NewBalance != 10 {
		t.Errorf("new balance = %d, want 10", res.NewBalance)
	}
	if !res.Task.IsCompleted {
		t.Error("expected task completed")
	}
	if res.Task.CompletedAt == nil || !res.Task.CompletedAt.Equal(testTime) {
		t.Errorf("completed_at = %v, want %v", res.Task.CompletedAt, testTime)
	}

	// Persisted state matches the result
	got, _ := store.Repos().Users.GetUser(child.ID)
	if got.TokenBalance != 10 {
		t.Errorf("stored balance = %d, want 10", got.TokenBalance)
	}
}

func TestCompleteAlreadyCompleted(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, err := svc.Complete(childCtx(child.ID), task.ID)
	if !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Errorf("error = %v, want ErrAlreadyCompleted", err)
	}

	// No double award
	got, _ := store.Repos().Users.GetUser(child.ID)
	if got.TokenBalance != 10 {
		t.Errorf("stored balance = %d, want 10", got.TokenBalance)
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	_, svc := newTaskFixture(t)
	_, err := svc.Complete(caregiverCtx(1), 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCompleteUnauthenticated(t *testing.T) {
	store, svc := newTaskFixture(t)
	_, task := seedChildWithTask(store, 0)

	_, err := svc.Complete(context.Background(), task.ID)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("error = %v, want ErrNotAuthorized", err)
	}
}

func TestChildCannotCompleteOthersTask(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	other := store.AddUser(model.User{Name: "DW", Role: model.RoleChild})

	_, err := svc.Complete(childCtx(other.ID), task.ID)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("error = %v, want ErrNotAuthorized", err)
	}

	// Nothing mutated
	gotTask, _ := store.Repos().Tasks.GetTask(task.ID)
	if gotTask.IsCompleted {
		t.Error("task must stay incomplete after denied completion")
	}
	gotUser, _ := store.Repos().Users.GetUser(child.ID)
	if gotUser.TokenBalance != 0 {
		t.Errorf("balance = %d, want 0", gotUser.TokenBalance)
	}
}

func TestCaregiverCanCompleteAnyTask(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	caregiver := store.AddUser(model.User{Name: "Mom", Role: model.RoleCaregiver})

	res, err := svc.Complete(caregiverCtx(caregiver.ID), task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	// Reward goes to the assigned child, not the caregiver
	if res.Task.AssignedTo != child.ID {
		t.Errorf("assigned_to = %d, want %d", res.Task.AssignedTo, child.ID)
	}
	got, _ := store.Repos().Users.GetUser(child.ID)
	if got.TokenBalance != 10 {
		t.Errorf("child balance = %d, want 10", got.TokenBalance)
	}
}

func TestUndoRestoresBalanceToZero(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	caregiver := store.AddUser(model.User{Name: "Mom", Role: model.RoleCaregiver})

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	res, err := svc.Undo(caregiverCtx(caregiver.ID), task.ID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.TokensDeducted != 10 {
		t.Errorf("tokens deducted = %d, want 10", res.TokensDeducted)
	}
	if res.NewBalance != 0 {
		t.Errorf("new balance = %d, want 0", res.NewBalance)
	}
	if res.Task.IsCompleted {
		t.Error("expected task incomplete after undo")
	}
	if res.Task.CompletedAt != nil {
		t.Error("expected completed_at cleared after undo")
	}
	if res.UndoneByRole != model.RoleCaregiver {
		t.Errorf("undone_by_role = %q, want caregiver", res.UndoneByRole)
	}
}

func TestUndoAllowsNegativeBalance(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	caregiver := store.AddUser(model.User{Name: "Mom", Role: model.RoleCaregiver})

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// The child spends half the reward before the undo.
	if err := store.Repos().Users.SetTokenBalance(child.ID, 5); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	res, err := svc.Undo(caregiverCtx(caregiver.ID), task.ID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.NewBalance != -5 {
		t.Errorf("new balance = %d, want -5 (debt is allowed on undo)", res.NewBalance)
	}
	got, _ := store.Repos().Users.GetUser(child.ID)
	if got.TokenBalance != -5 {
		t.Errorf("stored balance = %d, want -5", got.TokenBalance)
	}
}

func TestUndoNotCompleted(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	_, err := svc.Undo(childCtx(child.ID), task.ID)
	if !errors.Is(err, domain.ErrNotCompleted) {
		t.Errorf("error = %v, want ErrNotCompleted", err)
	}
}

func TestChildCannotUndoOthersTask(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	other := store.AddUser(model.User{Name: "DW", Role: model.RoleChild})

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := svc.Undo(childCtx(other.ID), task.ID)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("error = %v, want ErrNotAuthorized", err)
	}

	// State untouched by the denied undo
	gotTask, _ := store.Repos().Tasks.GetTask(task.ID)
	if !gotTask.IsCompleted {
		t.Error("task must stay completed")
	}
	gotUser, _ := store.Repos().Users.GetUser(child.ID)
	if gotUser.TokenBalance != 10 {
		t.Errorf("balance = %d, want 10", gotUser.TokenBalance)
	}
}

func TestChildCanUndoOwnTask(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	res, err := svc.Undo(childCtx(child.ID), task.ID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.UndoneByRole != model.RoleChild {
		t.Errorf("undone_by_role = %q, want child", res.UndoneByRole)
	}
}

func TestCompleteAssignedUserMissingLeavesTaskUntouched(t *testing.T) {
	store, svc := newTaskFixture(t)
	task := store.AddTask(model.Task{
		Title:       "Orphan task",
		Category:    model.CategoryHomework,
		TokenReward: 15,
		AssignedTo:  999,
		CreatedAt:   testTime,
	})

	_, err := svc.Complete(caregiverCtx(1), task.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	// The unit of work rolled back: the task was not marked complete.
	got, _ := store.Repos().Tasks.GetTask(task.ID)
	if got.IsCompleted {
		t.Error("task must not be completed when the user lookup fails")
	}
}

func TestFirstCompletionUnlocksFirstSteps(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	res, err := svc.Complete(childCtx(child.ID), task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	var firstSteps *model.Achievement
	for i := range res.UnlockedAchievements {
		if res.UnlockedAchievements[i].Type == model.AchievementFirstSteps {
			firstSteps = &res.UnlockedAchievements[i]
		}
	}
	if firstSteps == nil {
		t.Fatalf("expected first_steps in unlocked achievements, got %v", res.UnlockedAchievements)
	}
	if firstSteps.Progress != 1 {
		t.Errorf("progress = %d, want 1", firstSteps.Progress)
	}
	if firstSteps.UnlockedAt == nil || !firstSteps.UnlockedAt.Equal(testTime) {
		t.Errorf("unlocked_at = %v, want %v", firstSteps.UnlockedAt, testTime)
	}
}

func TestUndoDoesNotRollBackAchievements(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)
	caregiver := store.AddUser(model.User{Name: "Mom", Role: model.RoleCaregiver})

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Undo(caregiverCtx(caregiver.ID), task.ID); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
		if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
			t.Fatalf("recomplete %d: %v", i, err)
		}
	}
	if _, err := svc.Undo(caregiverCtx(caregiver.ID), task.ID); err != nil {
		t.Fatalf("final undo: %v", err)
	}

	rows, _ := store.Repos().Achievements.ListAchievementsByUser(child.ID)
	found := false
	for _, a := range rows {
		if a.Type == model.AchievementFirstSteps {
			found = true
			if !a.IsUnlocked {
				t.Error("first_steps must stay unlocked after undos")
			}
		}
	}
	if !found {
		t.Error("expected a first_steps achievement row")
	}
}

func TestDeleteTaskRequiresCaregiver(t *testing.T) {
	store, svc := newTaskFixture(t)
	child, task := seedChildWithTask(store, 0)

	err := svc.Delete(childCtx(child.ID), task.ID)
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("child delete error = %v, want ErrNotAuthorized", err)
	}

	caregiver := store.AddUser(model.User{Name: "Mom", Role: model.RoleCaregiver})
	if err := svc.Delete(caregiverCtx(caregiver.ID), task.ID); err != nil {
		t.Fatalf("caregiver delete: %v", err)
	}
	got, _ := store.Repos().Tasks.GetTask(task.ID)
	if got != nil {
		t.Error("expected task gone after delete")
	}
}

func TestCompletePublishesEvents(t *testing.T) {
	store := memstore.New()
	bus := events.NewBus(nil)
	svc := service.NewTaskService(store, bus, clock.Fixed{T: testTime}, nil, testLogger())
	child, task := seedChildWithTask(store, 0)

	ch, cancel := bus.Subscribe()
	defer cancel()

	if _, err := svc.Complete(childCtx(child.ID), task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	kinds := map[string]bool{}
	for len(kinds) < 2 {
		select {
		case e := <-ch:
			kinds[e.Kind] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out, got kinds %v", kinds)
		}
	}
	if !kinds[events.KindTaskCompleted] {
		t.Error("expected task_completed event")
	}
	if !kinds[events.KindAchievementUnlocked] {
		t.Error("expected achievement_unlocked event")
	}
}
