package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers deciding how to present it.
type Kind string

// Error kinds. Connectivity faults are fatal to the calling operation; every
// other kind is recoverable by the caller choosing different input.
const (
	KindConnectivity Kind = "connectivity"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Kind    Kind                   `json:"kind"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so that errors.Is works against the
// predefined values even after Clone or Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, kind Kind, status int, message string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: message}
}

// Wrap attaches a cause to a copy of base.
func Wrap(err error, base *Error, message string) *Error {
	clone := Clone(base, message)
	clone.Err = err
	return clone
}

// Predefined errors for common scenarios.
var (
	ErrValidation     = New("VALIDATION_ERROR", KindValidation, http.StatusBadRequest, "validation failed")
	ErrInvalidRating  = New("INVALID_RATING", KindValidation, http.StatusBadRequest, "each rating must be between 1 and 5")
	ErrNotFound       = New("NOT_FOUND", KindNotFound, http.StatusNotFound, "resource not found")
	ErrCodeNotFound   = New("CODE_NOT_FOUND", KindNotFound, http.StatusNotFound, "login code not found")
	ErrEnrollmentGone = New("ENROLLMENT_NOT_FOUND", KindNotFound, http.StatusNotFound, "enrollment not found")
	ErrUnauthorized   = New("UNAUTHORIZED", KindUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrInvalidLogin   = New("INVALID_LOGIN", KindUnauthorized, http.StatusUnauthorized, "login code does not match any user")
	ErrForbidden      = New("FORBIDDEN", KindForbidden, http.StatusForbidden, "forbidden")
	ErrConflict       = New("CONFLICT", KindConflict, http.StatusConflict, "conflict")
	ErrAlreadyRated   = New("ALREADY_SUBMITTED", KindConflict, http.StatusConflict, "feedback already submitted for this enrollment")
	ErrWrongRole      = New("WRONG_ROLE", KindConflict, http.StatusConflict, "login code belongs to a different role")
	ErrCodeConsumed   = New("CODE_CONSUMED", KindConflict, http.StatusConflict, "login code has already been used")
	ErrCodeCollision  = New("GENERATION_CONFLICT", KindConflict, http.StatusConflict, "could not generate a unique login code")
	ErrHasFeedback    = New("SUBJECT_HAS_FEEDBACK", KindConflict, http.StatusConflict, "subject has feedback and cannot be deleted")
	ErrRateLimited    = New("RATE_LIMITED", KindRateLimited, http.StatusTooManyRequests, "too many attempts, try again later")
	ErrUnavailable    = New("STORE_UNAVAILABLE", KindConnectivity, http.StatusServiceUnavailable, "data store unavailable")
	ErrInternal       = New("INTERNAL_ERROR", KindInternal, http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal, "")
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Details != nil {
		clone.Details = make(map[string]interface{}, len(err.Details))
		for k, v := range err.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// WithDetail returns a copy of err carrying an extra detail entry.
func WithDetail(err *Error, key string, value interface{}) *Error {
	clone := Clone(err, "")
	if clone == nil {
		return nil
	}
	if clone.Details == nil {
		clone.Details = make(map[string]interface{}, 1)
	}
	clone.Details[key] = value
	return clone
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}
