package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleViewer    Role = "viewer"
	RoleAnonymous Role = "anonymous"
)

// ParseRole maps a claim value to a Role. Anything unrecognised is treated
// as anonymous.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	case RoleViewer:
		return RoleViewer
	default:
		return RoleAnonymous
	}
}

// Elevated roles see programs in every status.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleEditor
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
}

type Profile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Caller is the identity attached to a request.
type Caller struct {
	ID        uuid.UUID
	Role      Role
	IPAddress string
	UserAgent string
}

func Anonymous() Caller {
	return Caller{ID: uuid.Nil, Role: RoleAnonymous}
}

func (c Caller) IsAnonymous() bool {
	return c.ID == uuid.Nil
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type ProfileRepository interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}
