package projection

import (
	"errors"
	"fmt"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// ErrInvalidGeometry indicates adjusted intervals that cannot be projected.
var ErrInvalidGeometry = errors.New("invalid range geometry")

// GeometryError describes the first interval that failed validation.
type GeometryError struct {
	Index     int
	ChildPath string
	Interval  ranges.Interval
	LineCount int
	Reason    string
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	if e.ChildPath != "" {
		return fmt.Sprintf("invalid range geometry: %s %s: %s (buffer has %d lines)",
			e.ChildPath, e.Interval, e.Reason, e.LineCount)
	}
	return fmt.Sprintf("invalid range geometry: interval %d %s: %s (buffer has %d lines)",
		e.Index, e.Interval, e.Reason, e.LineCount)
}

// Unwrap returns ErrInvalidGeometry.
func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}
