package store

import "errors"

var (
	// ErrChildExists indicates a child file is already present.
	ErrChildExists = errors.New("child already exists")

	// ErrStaleRecord indicates a coordinate update whose original interval
	// does not match the stored record.
	ErrStaleRecord = errors.New("stale range record")

	// ErrNotFound indicates a missing record.
	ErrNotFound = errors.New("record not found")
)
