package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when an insert violates the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)
