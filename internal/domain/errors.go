// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidRole is returned when a user role is not one of the known roles.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidStatus is returned when a status value is outside the
	// entity's allowed status set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority is returned when a priority is not one of
	// low, medium, high or critical.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
