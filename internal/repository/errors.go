// Package repository provides data access for requests, approvals,
// conversations, history and users. Each repository is an interface with a
// SQL implementation and an in-memory implementation used by tests and by
// the engine's unit tests.
package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an optimistic-lock update matched
	// no rows because another writer got there first.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicate is returned when a create collides with an existing id.
	ErrDuplicate = errors.New("already exists")
)
