package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace, in pre-transaction coordinates
	NewText string // The replacement text
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// Change describes one applied edit in both coordinate spaces.
// FromA/ToA address the buffer before the transaction, FromB/ToB the buffer
// after it.
type Change struct {
	FromA, ToA ByteOffset
	FromB, ToB ByteOffset
	Inserted   string
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("[%d:%d)->[%d:%d)", c.FromA, c.ToA, c.FromB, c.ToB)
}

// Delta returns the byte delta of this change.
func (c Change) Delta() ByteOffset {
	return (c.ToB - c.FromB) - (c.ToA - c.FromA)
}
