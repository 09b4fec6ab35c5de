package service

import (
	"github.com/google/uuid"

	"github.com/noah-isme/course-feedback-api/pkg/database"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

// storeFault classifies an unexpected repository error. Connectivity faults
// surface as STORE_UNAVAILABLE so callers can tell them apart from bugs.
func storeFault(err error, message string) *appErrors.Error {
	if database.IsConnectivityError(err) {
		return appErrors.Wrap(err, appErrors.ErrUnavailable, "")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal, message)
}

// validID reports whether id is a canonical UUID that the uuid columns accept.
// Anything else would fail in the store with an invalid input syntax error.
func validID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}
