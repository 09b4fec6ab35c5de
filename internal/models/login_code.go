package models

import "time"

// LoginCode is a random token bound to a role.
type LoginCode struct {
	Code        string    `db:"code" json:"code"`
	Role        Role      `db:"user_type" json:"role"`
	Used        bool      `db:"is_used" json:"used"`
	GeneratedOn time.Time `db:"generated_on" json:"generated_on"`
}

// LoginCodeDetail adds the provisioned user, if any, for admin listings.
type LoginCodeDetail struct {
	LoginCode
	AssignedTo *string `db:"assigned_to" json:"assigned_to,omitempty"`
}

// Status renders the used flag the way the admin grid shows it.
func (c LoginCode) Status() string {
	if c.Used {
		return "Used"
	}
	return "Unused"
}

// ProvisionedUser is returned once when an admin creates a user; the code is
// the only credential the user will have.
type ProvisionedUser struct {
	User      User   `json:"user"`
	LoginCode string `json:"login_code"`
}

// GenerateCodeRequest asks for a new unused code.
type GenerateCodeRequest struct {
	Role string `json:"role" validate:"required"`
}

// ProvisionUserRequest creates a user and their login code in one step.
type ProvisionUserRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Role string `json:"role" validate:"required"`
}
