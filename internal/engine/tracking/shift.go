package tracking

import (
	"fmt"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// LineLookup maps byte offsets to 1-indexed line numbers.
type LineLookup interface {
	LineAt(offset buffer.ByteOffset) int
}

// Shift is the line effect of one change.
type Shift struct {
	// StartLine is the line the change starts on, in the coordinates left by
	// the preceding changes of the same transaction.
	StartLine int

	// Delta is the number of lines added (positive) or removed (negative).
	Delta int
}

// IsZero reports whether the shift moves nothing.
func (s Shift) IsZero() bool {
	return s.Delta == 0
}

// String returns a human-readable representation of the shift.
func (s Shift) String() string {
	return fmt.Sprintf("line %d %+d", s.StartLine, s.Delta)
}

// ShiftFor computes the shift of change c. before and after are the buffer
// states around the whole transaction c belongs to.
//
// For a transaction with a single change this is the line of ToB minus the
// line of ToA, starting at the line of FromA. With several changes the
// post-edit offsets already include the earlier changes, so the delta is
// measured per change: new line span minus old line span.
func ShiftFor(before, after LineLookup, c buffer.Change) Shift {
	start := after.LineAt(c.FromB)
	newSpan := after.LineAt(c.ToB) - start
	oldSpan := before.LineAt(c.ToA) - before.LineAt(c.FromA)
	return Shift{StartLine: start, Delta: newSpan - oldSpan}
}

// Apply moves the records of rs affected by s and reports how many moved.
//
// Records starting after s.StartLine move both ends. A record the change
// starts strictly inside of only moves its end, never below its start.
func (s Shift) Apply(rs []ranges.Record) int {
	if s.IsZero() {
		return 0
	}
	moved := 0
	for i := range rs {
		r := &rs[i]
		switch {
		case r.CurrentStart > s.StartLine:
			r.CurrentStart += s.Delta
			r.CurrentEnd += s.Delta
			if r.CurrentStart <= s.StartLine {
				// A deletion swallowed the record's leading lines.
				r.CurrentStart = s.StartLine + 1
				if r.CurrentEnd < r.CurrentStart {
					r.CurrentEnd = r.CurrentStart
				}
			}
			moved++
		case r.CurrentStart < s.StartLine && s.StartLine <= r.CurrentEnd:
			r.CurrentEnd += s.Delta
			if r.CurrentEnd < r.CurrentStart {
				r.CurrentEnd = r.CurrentStart
			}
			moved++
		}
	}
	return moved
}
