package repositories

import "errors"

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus is returned when a conditional status update matched no
	// rows: the entity's status changed between read and write, and the
	// caller lost the race.
	ErrStaleStatus = errors.New("status changed since read")
)
