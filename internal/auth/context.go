package auth

import (
	"context"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

type contextKey struct{}

// AuthContext carries the authenticated session's identity through a request.
type AuthContext struct {
	UserID    int64
	Role      model.Role
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

// IsCaregiver reports whether the context's session belongs to a caregiver.
func IsCaregiver(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Role == model.RoleCaregiver
}
