package lock

import (
	"sort"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// Set is an immutable set of locked line numbers.
type Set struct {
	intervals []ranges.Interval
	lines     map[int]struct{}
}

// FromRanges builds a lock set from the current intervals of records.
func FromRanges(records []ranges.Record) *Set {
	ivs := make([]ranges.Interval, 0, len(records))
	for _, r := range records {
		ivs = append(ivs, r.Current())
	}
	return FromIntervals(ivs)
}

// FromIntervals builds a lock set from intervals. Invalid intervals are skipped.
func FromIntervals(ivs []ranges.Interval) *Set {
	s := &Set{lines: make(map[int]struct{})}
	for _, iv := range ivs {
		if !iv.IsValid() {
			continue
		}
		s.intervals = append(s.intervals, iv)
		for line := iv.Start; line <= iv.End; line++ {
			s.lines[line] = struct{}{}
		}
	}
	sort.Slice(s.intervals, func(i, j int) bool {
		return s.intervals[i].Start < s.intervals[j].Start
	})
	return s
}

// Empty returns a set with no locked lines.
func Empty() *Set {
	return FromIntervals(nil)
}

// IsLocked reports whether line is locked.
func (s *Set) IsLocked(line int) bool {
	if s == nil {
		return false
	}
	_, ok := s.lines[line]
	return ok
}

// Touches reports whether any line in [start, end] is locked.
func (s *Set) Touches(start, end int) bool {
	if s == nil {
		return false
	}
	if start > end {
		start, end = end, start
	}
	span := ranges.NewInterval(start, end)
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].End >= start
	})
	return i < len(s.intervals) && s.intervals[i].Overlaps(span)
}

// Lines returns every locked line in ascending order.
func (s *Set) Lines() []int {
	if s == nil {
		return nil
	}
	out := make([]int, 0, len(s.lines))
	for line := range s.lines {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// Intervals returns the locked intervals in ascending order.
func (s *Set) Intervals() []ranges.Interval {
	if s == nil {
		return nil
	}
	out := make([]ranges.Interval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Len returns the number of locked lines.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

// IsEmpty reports whether no line is locked.
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}
