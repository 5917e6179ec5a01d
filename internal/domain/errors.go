// Package domain holds the failure kinds shared across services, stores,
// and handlers. Expected conditions are returned as values wrapping these
// sentinels and matched with errors.Is; they are never panics.
package domain

import "errors"

var (
	// ErrNotFound means a task, user, reward, or achievement id did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted means a completion was attempted on a completed task.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrNotCompleted means an undo was attempted on an incomplete task.
	ErrNotCompleted = errors.New("task not completed")

	// ErrNotAuthorized means a role-based rule rejected the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidData means malformed input, such as a PIN that is not 4 digits.
	ErrInvalidData = errors.New("invalid data")

	// ErrInsufficientBalance means a spend would take a balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRepository wraps an unexpected storage-layer failure.
	ErrRepository = errors.New("repository error")
)
