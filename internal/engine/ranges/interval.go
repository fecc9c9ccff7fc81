package ranges

import "fmt"

// Interval is an inclusive, 1-indexed line interval.
type Interval struct {
	Start int
	End   int
}

// NewInterval creates an interval from start to end.
func NewInterval(start, end int) Interval {
	return Interval{Start: start, End: end}
}

// Len returns the number of lines covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// IsValid reports whether the interval is 1-indexed with start <= end.
func (iv Interval) IsValid() bool {
	return iv.Start >= 1 && iv.Start <= iv.End
}

// Contains reports whether line lies inside the interval.
func (iv Interval) Contains(line int) bool {
	return line >= iv.Start && line <= iv.End
}

// Overlaps reports whether the two intervals share at least one line.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// Before reports whether iv ends strictly before other starts.
func (iv Interval) Before(other Interval) bool {
	return iv.End < other.Start
}

// Shift returns the interval moved by delta lines.
func (iv Interval) Shift(delta int) Interval {
	return Interval{Start: iv.Start + delta, End: iv.End + delta}
}

// String returns "[start,end]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d]", iv.Start, iv.End)
}
