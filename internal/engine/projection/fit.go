package projection

import (
	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// Fit is a plan together with the records it applies to.
type Fit struct {
	Plan

	// Records are the records kept, with current intervals set to the
	// adjusted ones.
	Records []ranges.Record

	// Dropped holds the indexes of input records discarded in lenient mode.
	Dropped []int
}

// FitRecords plans records against a buffer of lineCount lines and length
// bytes and validates the result against the padded line count.
//
// In strict mode any violation fails the whole fit. In lenient mode the
// conflicting records are dropped and the rest are planned again, until the
// geometry validates.
func FitRecords(records []ranges.Record, basis Basis, lineCount int, length buffer.ByteOffset, lenient bool) (Fit, error) {
	kept := make([]ranges.Record, len(records))
	copy(kept, records)
	index := make([]int, len(records))
	for i := range index {
		index[i] = i
	}

	var dropped []int
	for {
		plan := NewPlan(kept, basis, lineCount, length)
		total := plan.LineCount(lineCount)

		if !lenient {
			if err := Validate(plan.Intervals, total); err != nil {
				if ge, ok := err.(*GeometryError); ok {
					ge.ChildPath = kept[ge.Index].ChildPath
				}
				return Fit{}, err
			}
			return newFit(plan, kept, dropped), nil
		}

		bad := Conflicts(plan.Intervals, total)
		if len(bad) == 0 {
			return newFit(plan, kept, dropped), nil
		}
		drop := make(map[int]bool, len(bad))
		for _, i := range bad {
			drop[i] = true
			dropped = append(dropped, index[i])
		}
		nextKept := kept[:0:0]
		nextIndex := index[:0:0]
		for i := range kept {
			if !drop[i] {
				nextKept = append(nextKept, kept[i])
				nextIndex = append(nextIndex, index[i])
			}
		}
		kept, index = nextKept, nextIndex
	}
}

func newFit(plan Plan, kept []ranges.Record, dropped []int) Fit {
	for i := range kept {
		kept[i].SetCurrent(plan.Intervals[i])
	}
	return Fit{Plan: plan, Records: kept, Dropped: dropped}
}
