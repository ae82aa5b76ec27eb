package repository

import "errors"

var (
	// ErrNotFound is returned when a record is absent or not owned by the
	// requesting user. Callers cannot distinguish the two cases.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)
