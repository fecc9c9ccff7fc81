package lock

import (
	"fmt"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
)

// LineLookup maps byte offsets to 1-indexed line numbers.
// *buffer.Buffer and *buffer.Snapshot satisfy it.
type LineLookup interface {
	LineAt(offset buffer.ByteOffset) int
}

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is where typing occurs.
// When Anchor == Head, this represents a cursor with no selection.
type Selection struct {
	Anchor buffer.ByteOffset
	Head   buffer.ByteOffset
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head buffer.ByteOffset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCursorSelection creates a selection representing just a cursor.
func NewCursorSelection(offset buffer.ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() buffer.ByteOffset {
	if s.Anchor <= s.Head {
		return s.Anchor
	}
	return s.Head
}

// End returns the upper bound of the selection.
func (s Selection) End() buffer.ByteOffset {
	if s.Anchor >= s.Head {
		return s.Anchor
	}
	return s.Head
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() buffer.Range {
	return buffer.Range{Start: s.Start(), End: s.End()}
}

// Collapse collapses the selection to a cursor at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head}
}

// Clamp returns a selection clamped to [0, maxOffset].
func (s Selection) Clamp(maxOffset buffer.ByteOffset) Selection {
	return Selection{Anchor: clamp(s.Anchor, maxOffset), Head: clamp(s.Head, maxOffset)}
}

// Lines returns the first and last line the selection covers.
// A non-empty selection ending at the start of a line does not cover that line.
func (s Selection) Lines(lookup LineLookup) (start, end int) {
	start = lookup.LineAt(s.Start())
	end = lookup.LineAt(s.End())
	if !s.IsEmpty() && end > start && lookup.LineAt(s.End()-1) < end {
		end--
	}
	return start, end
}

// Transform maps the selection through the changes of one edit transaction.
// Offsets inside a replaced span move to the end of the new text.
func (s Selection) Transform(changes []buffer.Change) Selection {
	return Selection{
		Anchor: transformOffset(s.Anchor, changes),
		Head:   transformOffset(s.Head, changes),
	}
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", s.Head)
	}
	return fmt.Sprintf("Selection(%d->%d)", s.Anchor, s.Head)
}

// transformOffset maps offset through a transaction in document order.
// Changes ending at or before the offset move it by their delta; a change
// spanning it moves it to the end of the inserted text.
func transformOffset(offset buffer.ByteOffset, changes []buffer.Change) buffer.ByteOffset {
	var shift buffer.ByteOffset
	for _, c := range changes {
		switch {
		case c.ToA <= offset:
			shift += c.Delta()
		case c.FromA >= offset:
			return offset + shift
		default:
			return c.ToB
		}
	}
	return offset + shift
}

func clamp(off, maxOffset buffer.ByteOffset) buffer.ByteOffset {
	if off < 0 {
		return 0
	}
	if off > maxOffset {
		return maxOffset
	}
	return off
}
