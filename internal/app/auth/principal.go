package auth

import (
	"github.com/fasbit/thesisvault/internal/app/models"
)

// Principal is the resolved identity of a caller for one request. It is
// built from a verified token (or its absence) and is never persisted.
type Principal struct {
	Role      models.Role
	UserID    int64  // 0 when anonymous
	Email     string // login email, empty when anonymous
	StudentID string // matricula, non-empty only for role=student
}

// Anonymous is the principal for unauthenticated callers.
var Anonymous = Principal{Role: models.Role("anonymous")}

// IsAnonymous reports whether p carries no authenticated identity.
func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

// IsStaff reports whether p is a coordinator or admin account.
func (p Principal) IsStaff() bool {
	return p.Role == models.RoleCoordinator || p.Role == models.RoleAdmin
}
