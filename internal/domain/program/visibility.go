package program

import (
	"github.com/google/uuid"

	"github.com/khoahotran/program-catalog/internal/domain/user"
)

// CanView reports whether role may observe p. Elevated roles see every
// status; everyone else only sees published programs.
func CanView(role user.Role, p *Program) bool {
	if role.Elevated() {
		return true
	}
	return p.Status == StatusPublished
}

// CanCreate reports whether role may create programs.
func CanCreate(role user.Role) bool {
	return role.Elevated()
}

// CanMutate reports whether the caller may update or delete p. Admins may
// touch anything, editors only what they created.
func CanMutate(role user.Role, p *Program, callerID uuid.UUID) bool {
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleEditor:
		return callerID != uuid.Nil && p.CreatedBy == callerID
	default:
		return false
	}
}

// RestrictQuery narrows q to what role may observe. Predicates are ANDed,
// so a caller asking for drafts without an elevated role gets nothing.
func RestrictQuery(role user.Role, q Query) Query {
	if role.Elevated() {
		return q
	}
	return q.Where(StatusIs(StatusPublished))
}
