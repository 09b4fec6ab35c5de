package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of user types.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole accepts any casing of a known role name.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents a provisioned person stored in the users table.
type User struct {
	ID        string    `db:"user_id" json:"id"`
	Name      string    `db:"user_name" json:"name"`
	Role      Role      `db:"user_type" json:"role"`
	LoginCode *string   `db:"login_code" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Identity is the result of a successful login.
type Identity struct {
	UserID string `db:"user_id" json:"user_id"`
	Name   string `db:"user_name" json:"name"`
	Role   Role   `db:"user_type" json:"role"`
}
