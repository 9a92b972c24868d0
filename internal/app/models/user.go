package models

import (
	"time"
)

// Role defines the account role type
type Role string

const (
	RoleStudent     Role = "student"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// User defines the account model based on the 'users' table.
// Email and StudentID share one login namespace: login accepts either, and
// uniqueness is enforced across both columns.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	StudentID *string   `json:"studentId,omitempty" db:"student_id"` // matricula, set only for role=student
	Password  string    `json:"-" db:"password_hash"`                // hashed, excluded from JSON
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
