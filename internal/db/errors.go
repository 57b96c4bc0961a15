package db

import "errors"

var (
	// ErrCycle is returned when a parent reassignment would make a node its own ancestor.
	ErrCycle = errors.New("would create cycle")

	// ErrEmptyTitle is returned when an update tries to blank a node's title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrParentNotFound is returned in strict mode when a parent id has no node.
	ErrParentNotFound = errors.New("parent node not found")
)
