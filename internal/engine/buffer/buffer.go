package buffer

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in document order")
	ErrLineOutOfRange   = errors.New("line out of range")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Apply converts LF-normalized text to this line ending style.
func (le LineEnding) Apply(s string) string {
	if le == LineEndingLF {
		return s
	}
	return strings.ReplaceAll(s, "\n", le.Sequence())
}

// Normalize converts all line endings in s to "\n".
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Buffer holds the text of one open document.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset
	revisionID RevisionID
	lineEnding LineEnding
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lineStarts: []ByteOffset{0},
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
// The line ending style is detected from s unless an option overrides it.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	opts = append([]Option{WithLineEnding(DetectLineEnding(s))}, opts...)
	b := NewBuffer(opts...)
	b.setTextLocked(Normalize(s))
	return b
}

func (b *Buffer) setTextLocked(s string) {
	b.text = s
	b.lineStarts = computeLineStarts(s)
	b.revisionID = NewRevisionID()
}

func computeLineStarts(s string) []ByteOffset {
	starts := make([]ByteOffset, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return starts
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if start < 0 || start > end || end > ByteOffset(len(b.text)) {
		return ""
	}
	return b.text[start:end]
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// LineAt returns the 1-indexed number of the line containing offset.
// Offsets past either end are clamped.
func (b *Buffer) LineAt(offset ByteOffset) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineAt(b.lineStarts, offset)
}

// Line returns the line with the given 1-indexed number.
func (b *Buffer) Line(n int) (Line, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return line(b.text, b.lineStarts, n)
}

// LineText returns the text of line n without the newline, or "" when n is out of range.
func (b *Buffer) LineText(n int) string {
	l, err := b.Line(n)
	if err != nil {
		return ""
	}
	return l.Text
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// Write Operations

// ApplyEdits applies a transaction of edits atomically.
// Edits must be in document order, non-overlapping, and expressed against the
// buffer before the transaction. On error nothing is applied.
func (b *Buffer) ApplyEdits(edits []Edit) ([]Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := validateEdits(edits, ByteOffset(len(b.text))); err != nil {
		return nil, err
	}

	var sb strings.Builder
	changes := make([]Change, 0, len(edits))
	var last, shift ByteOffset
	for _, e := range edits {
		text := Normalize(e.NewText)
		sb.WriteString(b.text[last:e.Range.Start])
		sb.WriteString(text)
		last = e.Range.End

		fromB := e.Range.Start + shift
		changes = append(changes, Change{
			FromA:    e.Range.Start,
			ToA:      e.Range.End,
			FromB:    fromB,
			ToB:      fromB + ByteOffset(len(text)),
			Inserted: text,
		})
		shift += ByteOffset(len(text)) - e.Range.Len()
	}
	sb.WriteString(b.text[last:])

	b.setTextLocked(sb.String())
	return changes, nil
}

// Append adds text at the end of the buffer and returns the length before
// the append.
func (b *Buffer) Append(text string) ByteOffset {
	b.mu.Lock()
	defer b.mu.Unlock()
	before := ByteOffset(len(b.text))
	b.setTextLocked(b.text + Normalize(text))
	return before
}

// Snapshot returns a read-only snapshot of the current buffer state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		text:       b.text,
		lineStarts: b.lineStarts,
		revisionID: b.revisionID,
	}
}

func validateEdits(edits []Edit, length ByteOffset) error {
	var prevEnd ByteOffset
	for i, e := range edits {
		if e.Range.Start < 0 || !e.Range.IsValid() || e.Range.End > length {
			return ErrRangeInvalid
		}
		if i > 0 && e.Range.Start < prevEnd {
			return ErrEditsOverlap
		}
		prevEnd = e.Range.End
	}
	return nil
}

func lineAt(starts []ByteOffset, offset ByteOffset) int {
	n := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	if n < 1 {
		return 1
	}
	return n
}

func line(text string, starts []ByteOffset, n int) (Line, error) {
	if n < 1 || n > len(starts) {
		return Line{}, ErrLineOutOfRange
	}
	from := starts[n-1]
	to := ByteOffset(len(text))
	if n < len(starts) {
		to = starts[n] - 1
	}
	return Line{Number: n, From: from, To: to, Text: text[from:to]}, nil
}

// Snapshot is an immutable view of a buffer at one revision.
type Snapshot struct {
	text       string
	lineStarts []ByteOffset
	revisionID RevisionID
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string { return s.text }

// Len returns the byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset { return ByteOffset(len(s.text)) }

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int { return len(s.lineStarts) }

// LineAt returns the 1-indexed number of the line containing offset.
func (s *Snapshot) LineAt(offset ByteOffset) int { return lineAt(s.lineStarts, offset) }

// Line returns the line with the given 1-indexed number.
func (s *Snapshot) Line(n int) (Line, error) { return line(s.text, s.lineStarts, n) }

// RevisionID returns the revision the snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID { return s.revisionID }
