package model

import "time"

// Role is a user's family role. Roles are mutually exclusive and fixed
// at creation time.
type Role string

const (
	RoleChild     Role = "child"
	RoleCaregiver Role = "caregiver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleChild || r == RoleCaregiver
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	TokenBalance int       `json:"token_balance"`
	AvatarEmoji  string    `json:"avatar_emoji"`
	HasPIN       bool      `json:"has_pin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
