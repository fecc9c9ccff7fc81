package projection

import (
	"strings"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// Basis selects which interval of a record adjustment starts from.
type Basis uint8

const (
	// BasisOriginal adjusts from the persisted intervals. Used on load.
	BasisOriginal Basis = iota

	// BasisCurrent adjusts from the live intervals. Used on re-projection.
	BasisCurrent
)

func (b Basis) interval(r ranges.Record) ranges.Interval {
	if b == BasisCurrent {
		return r.Current()
	}
	return r.Original()
}

// Adjust returns the adjusted interval of every record, in the given order,
// starting from the persisted intervals.
func Adjust(records []ranges.Record) []ranges.Interval {
	return AdjustFrom(records, BasisOriginal)
}

// AdjustFrom returns the adjusted interval of every record. Each interval
// keeps its start moved by the running offset and is as tall as the child;
// the offset then grows by the child's height minus the interval's span.
func AdjustFrom(records []ranges.Record, basis Basis) []ranges.Interval {
	out := make([]ranges.Interval, len(records))
	offset := 0
	for i, r := range records {
		iv := basis.interval(r)
		height := r.ChildLineCount()
		start := iv.Start + offset
		out[i] = ranges.NewInterval(start, start+height-1)
		offset += height - iv.Len()
	}
	return out
}

// Plan is the outcome of adjusting records against a buffer.
type Plan struct {
	// Intervals holds the adjusted interval of each record.
	Intervals []ranges.Interval

	// Padding is the number of blank lines to append to the buffer.
	Padding int

	// ContentLength is the persistable buffer length to record.
	ContentLength buffer.ByteOffset
}

// NewPlan adjusts records against a buffer of lineCount lines and
// contentLength bytes.
func NewPlan(records []ranges.Record, basis Basis, lineCount int, contentLength buffer.ByteOffset) Plan {
	p := Plan{
		Intervals:     AdjustFrom(records, basis),
		ContentLength: contentLength,
	}
	maxEnd := 0
	for _, iv := range p.Intervals {
		if iv.End > maxEnd {
			maxEnd = iv.End
		}
	}
	if maxEnd > lineCount {
		p.Padding = maxEnd - lineCount
	}
	return p
}

// PaddingText returns the text that appends p.Padding blank lines.
func (p Plan) PaddingText() string {
	if p.Padding <= 0 {
		return ""
	}
	return strings.Repeat("\n", p.Padding)
}

// LineCount returns the line count of a buffer of lineCount lines after padding.
func (p Plan) LineCount(lineCount int) int {
	return lineCount + p.Padding
}
