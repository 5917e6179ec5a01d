package auth

import (
	"context"
	"testing"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    1,
		Role:      model.RoleCaregiver,
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
	if got.Role != model.RoleCaregiver {
		t.Errorf("Role = %q, want %q", got.Role, model.RoleCaregiver)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7})
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
}

func TestUserIDMissing(t *testing.T) {
	if UserID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestIsCaregiver(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: model.RoleCaregiver})
	if !IsCaregiver(ctx) {
		t.Error("expected IsCaregiver = true for caregiver role")
	}
}

func TestIsCaregiverFalseForChild(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: model.RoleChild})
	if IsCaregiver(ctx) {
		t.Error("expected IsCaregiver = false for child role")
	}
}

func TestIsCaregiverMissing(t *testing.T) {
	if IsCaregiver(context.Background()) {
		t.Error("expected IsCaregiver = false for missing context")
	}
}
