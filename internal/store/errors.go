package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g. an observer already watching a task).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or a
	// constraint before being stored. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("%w: project", ErrNotFound)
	ErrTaskNotFound         = fmt.Errorf("%w: task", ErrNotFound)
	ErrSubtaskNotFound      = fmt.Errorf("%w: subtask", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)
	ErrObserverNotFound     = fmt.Errorf("%w: observer", ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("%w: project member", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email or username
	// already exists.
	ErrEmailExists = fmt.Errorf("%w: email or username", ErrDuplicate)

	// ErrObserverExists indicates the user is already observing the task.
	ErrObserverExists = fmt.Errorf("%w: observer", ErrDuplicate)

	// ErrMemberExists indicates the user is already a member of the project.
	ErrMemberExists = fmt.Errorf("%w: project member", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
