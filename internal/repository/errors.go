package repository

import (
	"errors"
	"fmt"

	"github.com/noah-isme/course-feedback-api/internal/models"
)

// Sentinel outcomes returned by repositories. Anything else is a store fault.
var (
	ErrCodeNotFound        = errors.New("login code not found")
	ErrNoMatchingUser      = errors.New("no user bound to login code and role")
	ErrCodeConsumed        = errors.New("login code already consumed")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrFeedbackExists      = errors.New("feedback already submitted")
	ErrDuplicateEnrollment = errors.New("student already enrolled in subject")
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrSubjectHasFeedback  = errors.New("subject has feedback")
	ErrUserNotFound        = errors.New("user not found")
)

// WrongRoleError reports a code that exists under another role.
type WrongRoleError struct {
	Actual models.Role
}

func (e *WrongRoleError) Error() string {
	return fmt.Sprintf("login code belongs to role %s", e.Actual)
}
