package projection

import "github.com/Evthron/Increvise-sub000/internal/engine/ranges"

// Validate checks that every interval lies within [1, lineCount], has
// start <= end, and starts after the previous interval ends.
// The first violation is returned as a *GeometryError.
func Validate(intervals []ranges.Interval, lineCount int) error {
	for i, iv := range intervals {
		if reason := check(intervals, i, lineCount); reason != "" {
			return &GeometryError{Index: i, Interval: iv, LineCount: lineCount, Reason: reason}
		}
	}
	return nil
}

// Conflicts returns the indexes of the intervals that must be dropped so the
// rest validate. An interval overlapping an earlier kept interval is dropped;
// the earlier one stays.
func Conflicts(intervals []ranges.Interval, lineCount int) []int {
	var bad []int
	lastEnd := 0
	for i, iv := range intervals {
		switch {
		case iv.Start > iv.End, iv.Start < 1, iv.End > lineCount, iv.Start <= lastEnd:
			bad = append(bad, i)
		default:
			lastEnd = iv.End
		}
	}
	return bad
}

func check(intervals []ranges.Interval, i, lineCount int) string {
	iv := intervals[i]
	switch {
	case iv.Start > iv.End:
		return "start after end"
	case iv.Start < 1:
		return "starts before line 1"
	case iv.End > lineCount:
		return "ends past the last line"
	case i > 0 && iv.Start <= intervals[i-1].End:
		return "overlaps or precedes the previous range"
	}
	return ""
}
