package ranges

import "errors"

// Errors returned by range operations.
var (
	// ErrOverlap indicates two current intervals overlap or are out of order.
	ErrOverlap = errors.New("range intervals overlap or are out of order")

	// ErrInvalidInterval indicates an interval with start > end or start < 1.
	ErrInvalidInterval = errors.New("invalid line interval")

	// ErrNotFound indicates no record matches the given child path.
	ErrNotFound = errors.New("range record not found")
)
