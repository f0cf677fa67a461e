package services

import (
	"errors"
	"fmt"
)

// Errors shared by every service and by the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflicting concurrent or duplicate write")
	ErrStorage          = errors.New("storage failure")

	ErrUserNotFound  = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrMatchNotFound = fmt.Errorf("%w: match not found", ErrNotFound)

	ErrUsernameTaken   = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrUserHasMatches  = fmt.Errorf("%w: user has recorded matches and cannot be deleted", ErrConflict)
	ErrUnsupportedFile = fmt.Errorf("%w: unsupported file type", ErrValidationFailed)

	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooShort       = fmt.Errorf("%w: password is too short", ErrValidationFailed)
	ErrTokenInvalid           = errors.New("invalid or expired token")
	ErrTokenRevoked           = errors.New("token has been revoked")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrUploadNotConfigured    = errors.New("file storage is not configured")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}
