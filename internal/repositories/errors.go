package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user write collides with the
	// unique email index.
	ErrDuplicateEmail = errors.New("email already registered")
)
