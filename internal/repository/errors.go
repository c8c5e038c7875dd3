package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned when a conditional status update finds
	// the entity in a different state than the one it guards on.
	ErrStatusConflict = errors.New("status conflict")
)
