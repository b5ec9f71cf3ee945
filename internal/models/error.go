package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrInvalidOrExpiredToken covers stale, consumed, and unknown reset
	// tokens. Callers seeing it should restart recovery from step one.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// Credential and validation field tags. Multiple independent secrets can
// be involved in a single request, so failures always name the input that
// was wrong.
const (
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldOldPassword     = "old_password"
	FieldAccountPassword = "account_password"
	FieldAnswer          = "answer"
)

// CredentialError reports that a specific secret failed verification.
// It never carries the submitted value or any hash material.
type CredentialError struct {
	Field string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid credential: %s", e.Field)
}

// NewCredentialError builds a field-tagged credential failure.
func NewCredentialError(field string) *CredentialError {
	return &CredentialError{Field: field}
}

// ValidationError reports a malformed or missing input, tagged with the
// offending field so the caller can attribute it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-tagged validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
