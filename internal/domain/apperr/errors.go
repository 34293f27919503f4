// Package apperr defines the error taxonomy shared by all services.
// Handlers map these sentinels to HTTP status codes; services wrap them
// with fmt.Errorf("%w: ...") to add detail without losing the kind.
package apperr

import "errors"

var (
	// ErrValidation is returned for malformed or missing required input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when credentials are missing or wrong:
	// a failed login, or a request without a valid token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the actor lacks the required role or
	// relationship for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced entity does not exist or
	// was deleted concurrently.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when the entity exists but is not in a
	// state compatible with the requested transition, including the case
	// where a concurrent transition won the race.
	ErrInvalidState = errors.New("invalid state")
)

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsUnauthorized reports whether err is a credential error.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsForbidden reports whether err is a permission error.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidState reports whether err is a state-conflict error.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }
