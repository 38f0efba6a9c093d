// Package services defines the business logic for products, recipes,
// stories, contacts, and users. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Catalog errors.
var (
	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrRecipeNotFound indicates that the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrStoryNotFound indicates that the requested story does not exist.
	ErrStoryNotFound = errors.New("story not found")

	// ErrContactNotFound indicates that the requested contact does not exist.
	ErrContactNotFound = errors.New("contact not found")

	// ErrValidation wraps a field-level validation failure. Use
	// NewValidationError to attach the offending fields.
	ErrValidation = errors.New("validation failed")

	// ErrStoryNotAvailable is returned when a click is recorded against a
	// story that is not currently published.
	ErrStoryNotAvailable = errors.New("story is not available")

	// ErrViewAlreadyRecorded is returned when the same viewer reports the
	// same story twice. Callers treat it as a success without side effects.
	ErrViewAlreadyRecorded = errors.New("view already recorded")
)

// Account errors.
var (
	// ErrInvalidCredentials is returned for any login failure that should not
	// reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when credentials are correct but the
	// account has been deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUserExists is returned at registration when the username, email, or
	// phone number is already taken.
	ErrUserExists = errors.New("user already exists")
)

// ValidationError carries per-field messages for a rejected payload. It
// unwraps to ErrValidation so callers can branch with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed"
}

// Unwrap lets errors.Is match against ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
