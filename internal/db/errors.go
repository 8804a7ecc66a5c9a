package db

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when a write is rejected before touching the
	// database, e.g. a required field is empty.
	ErrInvalid = errors.New("invalid input")

	// ErrCycle is returned when a reparent would make a project its own
	// ancestor.
	ErrCycle = errors.New("project cannot become its own ancestor")
)
