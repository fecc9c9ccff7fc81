package buffer

import (
	"fmt"
	"sync/atomic"
)

// ByteOffset represents a byte position in the buffer.
type ByteOffset = int64

// Line describes one line of the buffer.
// From and To are byte offsets; To excludes the trailing newline.
type Line struct {
	Number int // 1-indexed
	From   ByteOffset
	To     ByteOffset
	Text   string
}

// Len returns the length of the line in bytes, without the newline.
func (l Line) Len() int {
	return int(l.To - l.From)
}

// String returns a human-readable representation of the line.
func (l Line) String() string {
	return fmt.Sprintf("L%d[%d:%d)", l.Number, l.From, l.To)
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}
