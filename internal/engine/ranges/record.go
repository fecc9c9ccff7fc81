package ranges

import (
	"fmt"
	"strings"
	"time"
)

// Record links one locked interval of a host document to its child.
type Record struct {
	// ID is the persistent identity of the record.
	ID string

	// HostPath locates the host document.
	HostPath string

	// Identifier is the dot-joined hierarchical identifier of the child.
	Identifier string

	// ChildPath locates the child document. Opaque to the engine.
	ChildPath string

	// ChildContent caches the child's text for projection only.
	ChildContent string

	// Loaded reports whether ChildContent has been read from the store.
	Loaded bool

	// Original interval, as last persisted.
	OriginalStart int
	OriginalEnd   int

	// Current interval in the live buffer.
	CurrentStart int
	CurrentEnd   int

	CreatedAt time.Time
}

// NewRecord creates a record whose current interval equals its original one.
func NewRecord(childPath string, start, end int) Record {
	return Record{
		ChildPath:     childPath,
		OriginalStart: start,
		OriginalEnd:   end,
		CurrentStart:  start,
		CurrentEnd:    end,
	}
}

// Original returns the persisted interval.
func (r Record) Original() Interval {
	return Interval{Start: r.OriginalStart, End: r.OriginalEnd}
}

// Current returns the live interval.
func (r Record) Current() Interval {
	return Interval{Start: r.CurrentStart, End: r.CurrentEnd}
}

// SetCurrent replaces the live interval.
func (r *Record) SetCurrent(iv Interval) {
	r.CurrentStart = iv.Start
	r.CurrentEnd = iv.End
}

// Span returns the number of lines of the original interval.
func (r Record) Span() int {
	return r.OriginalEnd - r.OriginalStart + 1
}

// SetContent caches the child's text and marks it loaded.
func (r *Record) SetContent(content string) {
	r.ChildContent = content
	r.Loaded = true
}

// ChildLineCount returns the number of lines of the cached child content.
// Lines are separated by "\n"; an empty child is one line. A record whose
// content was never loaded keeps the height of its original span.
func (r Record) ChildLineCount() int {
	if !r.Loaded {
		return r.Span()
	}
	return LineCount(r.ChildContent)
}

// IsDirty reports whether the live interval differs from the persisted one.
func (r Record) IsDirty() bool {
	return r.CurrentStart != r.OriginalStart || r.CurrentEnd != r.OriginalEnd
}

// Update returns the coordinate update that persists the live interval.
func (r Record) Update() CoordinateUpdate {
	return CoordinateUpdate{
		ChildPath:     r.ChildPath,
		OriginalStart: r.OriginalStart,
		OriginalEnd:   r.OriginalEnd,
		NewStart:      r.CurrentStart,
		NewEnd:        r.CurrentEnd,
	}
}

// String returns a short description for logs.
func (r Record) String() string {
	return fmt.Sprintf("%s original=%s current=%s", r.ChildPath, r.Original(), r.Current())
}

// LineCount returns the number of "\n"-separated lines in s.
func LineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

// CoordinateUpdate is one pending change of a record's persisted interval.
type CoordinateUpdate struct {
	ChildPath     string
	OriginalStart int
	OriginalEnd   int
	NewStart      int
	NewEnd        int
}

// New returns the interval the update persists.
func (u CoordinateUpdate) New() Interval {
	return Interval{Start: u.NewStart, End: u.NewEnd}
}

// String returns a short description for logs.
func (u CoordinateUpdate) String() string {
	return fmt.Sprintf("%s [%d,%d]->[%d,%d]", u.ChildPath, u.OriginalStart, u.OriginalEnd, u.NewStart, u.NewEnd)
}
