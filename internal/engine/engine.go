package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/lock"
	"github.com/Evthron/Increvise-sub000/internal/engine/projection"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
	"github.com/Evthron/Increvise-sub000/internal/engine/tracking"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Edit represents an edit operation.
	Edit = buffer.Edit

	// Selection represents a cursor selection.
	Selection = lock.Selection

	// Record is one Range Record.
	Record = ranges.Record

	// CoordinateUpdate is one pending change of persisted coordinates.
	CoordinateUpdate = ranges.CoordinateUpdate

	// View is the projection presentation model.
	View = projection.View
)

// Persister is the part of the persistence collaborator the commit protocol
// writes to.
type Persister interface {
	WriteRangeCoordinateUpdates(ctx context.Context, host string, updates []ranges.CoordinateUpdate) error
	WriteHostContent(ctx context.Context, host string, text string) error
}

// Engine owns one open host document: its buffer, its Range Records, the
// lock set derived from them and their projection.
//
// The engine is logically single threaded. A mutex serializes state so store
// calls may complete on other goroutines; store I/O itself runs without the
// lock held.
type Engine struct {
	mu sync.Mutex

	// Core components
	buf     *buffer.Buffer
	set     *ranges.Set
	guard   lock.Guard
	tracker *tracking.Tracker
	view    projection.View
	sel     lock.Selection

	// boundary is the persistable length of the buffer; text past it is
	// projection padding.
	boundary buffer.ByteOffset

	open          bool
	closed        bool
	contentDirty  bool
	projectionErr error

	// Configuration
	host       string
	store      Persister
	logger     *zap.Logger
	lenient    bool
	preview    bool
	lineEnding *buffer.LineEnding
	maxShifts  int
}

// New creates an engine with no document open.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:    zap.NewNop(),
		maxShifts: DefaultMaxShifts,
	}
	for _, opt := range opts {
		opt(e)
	}

	mode := lock.ModeEditable
	if e.preview {
		mode = lock.ModePreview
	}
	e.buf = buffer.NewBuffer()
	e.set, _ = ranges.NewSet(nil)
	e.guard = lock.NewGuard(lock.Empty(), mode)
	e.tracker = tracking.NewTracker(tracking.WithMaxShifts(e.maxShifts))
	e.logger = e.logger.With(zap.String("host", e.host))
	return e
}

// Host returns the host document path.
func (e *Engine) Host() string {
	return e.host
}

// OpenDocument loads text and its Range Records, discarding all prior state.
//
// Records are adjusted to the current height of their children, the buffer
// is padded with blank lines when the adjusted intervals need more room, and
// the records are locked and projected. When the adjusted geometry is
// invalid the document still opens, without ranges, and the returned error
// wraps projection.ErrInvalidGeometry.
func (e *Engine) OpenDocument(text string, records []ranges.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	var opts []buffer.Option
	if e.lineEnding != nil {
		opts = append(opts, buffer.WithLineEnding(*e.lineEnding))
	}
	e.buf = buffer.NewBufferFromString(text, opts...)
	e.boundary = 0
	e.sel = lock.Selection{}
	e.contentDirty = false
	e.projectionErr = nil
	e.tracker.Reset()
	e.open = true

	sorted := make([]ranges.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OriginalStart < sorted[j].OriginalStart
	})

	fit, err := projection.FitRecords(sorted, projection.BasisOriginal, e.buf.LineCount(), e.buf.Len(), e.lenient)
	if err != nil {
		e.boundary = e.buf.Len()
		e.disableLocked(err)
		return err
	}
	if fit.Padding > 0 {
		e.buf.Append(fit.PaddingText())
	}
	e.boundary = fit.ContentLength

	if len(fit.Dropped) > 0 {
		e.logger.Warn("dropped conflicting ranges",
			zap.Int("dropped", len(fit.Dropped)),
			zap.Int("kept", len(fit.Records)))
	}

	set, err := ranges.NewSet(fit.Records)
	if err != nil {
		err = fmt.Errorf("%w: %v", projection.ErrInvalidGeometry, err)
		e.disableLocked(err)
		return err
	}
	e.set = set
	e.rebuildLocked()

	e.logger.Info("document opened",
		zap.Int("ranges", e.set.Len()),
		zap.Int("lines", e.buf.LineCount()),
		zap.Int("padding", fit.Padding),
		zap.Int64("content_length", e.boundary))
	return nil
}

// disableLocked clears range and lock state after a geometry failure.
func (e *Engine) disableLocked(err error) {
	e.set, _ = ranges.NewSet(nil)
	e.projectionErr = err
	e.rebuildLocked()
	e.logger.Warn("projection disabled", zap.Error(err))
}

// rebuildLocked derives the lock set and the view from the records.
func (e *Engine) rebuildLocked() {
	records := e.set.Records()
	e.guard = e.guard.WithLocks(lock.FromRanges(records))
	e.view = projection.Project(records)
	e.logger.Debug("locks rebuilt", zap.Int("locked_lines", e.guard.Locks().Len()))
}

func (e *Engine) checkLocked() error {
	if e.closed {
		return ErrClosed
	}
	if !e.open {
		return ErrNoDocument
	}
	return nil
}

// LockSelectedRange links the lines of the current selection to a child and
// locks them. r supplies the child path and persisted metadata; its intervals
// are taken from the selection. When r carries no loaded content the selected
// lines become the child's content, so the projection keeps the locked height.
// Returns the locked record.
func (e *Engine) LockSelectedRange(r ranges.Record) (ranges.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return ranges.Record{}, err
	}
	if e.sel.IsEmpty() {
		return ranges.Record{}, ErrEmptySelection
	}

	start, end := e.sel.Lines(e.buf)
	iv := ranges.NewInterval(start, end)
	r.OriginalStart, r.OriginalEnd = iv.Start, iv.End
	r.SetCurrent(iv)
	if !r.Loaded {
		r.SetContent(e.linesTextLocked(start, end))
	}
	if r.HostPath == "" {
		r.HostPath = e.host
	}

	if err := e.set.Insert(r); err != nil {
		return ranges.Record{}, NewOperationError("lock", e.host, err)
	}
	e.sel = e.sel.Collapse()
	e.rebuildLocked()

	e.logger.Info("range locked", zap.String("child", r.ChildPath), zap.Stringer("interval", iv))
	return r, nil
}

// ApplyEdits applies one edit transaction. Edits are expressed against the
// buffer before the transaction, in document order.
//
// A transaction refused by the lock constraints, or any transaction in
// preview mode, is dropped silently: applied is false and err is nil. Edits
// that change nothing are skipped; a transaction of only such edits reports
// applied false and leaves the document clean.
func (e *Engine) ApplyEdits(edits []Edit) (applied bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return false, err
	}
	edits = withoutNoOps(edits)
	if len(edits) == 0 {
		return false, nil
	}
	if !e.guard.AllowEdit(edits, e.buf) {
		e.logger.Debug("edit rejected by lock", zap.Int("edits", len(edits)))
		return false, nil
	}

	before := e.buf.Snapshot()
	changes, err := e.buf.ApplyEdits(edits)
	if err != nil {
		return false, err
	}
	after := e.buf.Snapshot()

	for _, c := range changes {
		e.boundary = advanceBoundary(e.boundary, c)
	}
	e.sel = e.sel.Transform(changes).Clamp(e.buf.Len())
	e.contentDirty = true

	res, err := e.tracker.Apply(before, after, changes, e.set)
	if err != nil {
		err = fmt.Errorf("%w: %v", projection.ErrInvalidGeometry, err)
		e.disableLocked(err)
		return true, err
	}
	if res.Shifted() {
		e.rebuildLocked()
	}
	return true, nil
}

func withoutNoOps(edits []Edit) []Edit {
	out := make([]Edit, 0, len(edits))
	for _, ed := range edits {
		if !ed.IsNoOp() {
			out = append(out, ed)
		}
	}
	return out
}

// advanceBoundary moves the persistable length through one change, in the
// coordinates left by the preceding changes. Changes ending at or before the
// boundary move it by their delta; changes reaching past it pull it to the
// end of their inserted text so the text is persisted.
func advanceBoundary(boundary buffer.ByteOffset, c buffer.Change) buffer.ByteOffset {
	oldTo := c.FromB + (c.ToA - c.FromA)
	if oldTo <= boundary {
		return boundary + c.Delta()
	}
	return c.ToB
}

// Insert inserts text at offset. See ApplyEdits.
func (e *Engine) Insert(offset ByteOffset, text string) (bool, error) {
	return e.ApplyEdits([]Edit{buffer.NewInsert(offset, text)})
}

// Delete removes [start, end). See ApplyEdits.
func (e *Engine) Delete(start, end ByteOffset) (bool, error) {
	return e.ApplyEdits([]Edit{buffer.NewDelete(start, end)})
}

// Select sets the selection, filtered by the lock constraints, and returns
// the selection actually applied.
func (e *Engine) Select(sel Selection) Selection {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sel = e.guard.FilterSelection(sel.Clamp(e.buf.Len()), e.buf)
	return e.sel
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// SelectedLines returns the line interval of the selection and the text of
// those lines, without the final newline.
func (e *Engine) SelectedLines() (ranges.Interval, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return ranges.Interval{}, "", err
	}
	if e.sel.IsEmpty() {
		return ranges.Interval{}, "", ErrEmptySelection
	}
	start, end := e.sel.Lines(e.buf)
	return ranges.NewInterval(start, end), e.linesTextLocked(start, end), nil
}

// linesTextLocked joins lines start..end without the final newline.
func (e *Engine) linesTextLocked(start, end int) string {
	parts := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		parts = append(parts, e.buf.LineText(n))
	}
	return strings.Join(parts, "\n")
}

// CanDragFrom reports whether a drag may start at offset.
func (e *Engine) CanDragFrom(offset ByteOffset) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.AllowDragStart(e.buf.LineAt(offset))
}

// CanDropAt reports whether a drop may land at offset.
func (e *Engine) CanDropAt(offset ByteOffset) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.AllowDrop(e.buf.LineAt(offset))
}

// SetEditable switches between editable and preview mode.
// The lock set is unaffected.
func (e *Engine) SetEditable(editable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := lock.ModePreview
	if editable {
		mode = lock.ModeEditable
	}
	e.guard = e.guard.WithMode(mode)
}

// IsEditable reports whether the engine is in editable mode.
func (e *Engine) IsEditable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.Mode() == lock.ModeEditable
}

// RefreshChild replaces the cached content of one child and re-projects.
func (e *Engine) RefreshChild(childPath, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return err
	}
	if err := e.set.SetContent(childPath, content); err != nil {
		return err
	}
	return e.reprojectLocked()
}

// Reproject re-runs adjustment from the current coordinates and validates it
// against the current line count before applying it.
func (e *Engine) Reproject() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return err
	}
	return e.reprojectLocked()
}

func (e *Engine) reprojectLocked() error {
	fit, err := projection.FitRecords(e.set.Records(), projection.BasisCurrent, e.buf.LineCount(), e.boundary, e.lenient)
	if err != nil {
		e.disableLocked(err)
		return err
	}
	if fit.Padding > 0 {
		e.buf.Append(fit.PaddingText())
	}
	set, err := ranges.NewSet(fit.Records)
	if err != nil {
		err = fmt.Errorf("%w: %v", projection.ErrInvalidGeometry, err)
		e.disableLocked(err)
		return err
	}
	e.set = set
	e.rebuildLocked()
	return nil
}

// PendingCoordinateUpdates returns the updates Save would push.
func (e *Engine) PendingCoordinateUpdates() []CoordinateUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Pending()
}

// ConfirmCoordinateUpdates marks updates as persisted and returns how many
// records they matched.
func (e *Engine) ConfirmCoordinateUpdates(updates []CoordinateUpdate) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Confirm(updates)
}

// Records returns a copy of the Range Records in order.
func (e *Engine) Records() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Records()
}

// LockedLines returns every locked line in ascending order.
func (e *Engine) LockedLines() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.Locks().Lines()
}

// IsLocked reports whether line is locked.
func (e *Engine) IsLocked(line int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard.Locks().IsLocked(line)
}

// View returns the projection of the current records.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// VisibleText returns the document as projected: host lines outside the
// locked intervals and child content inside them.
func (e *Engine) VisibleText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.VisibleText(e.buf)
}

// ProjectionError returns the geometry error that disabled projection for
// the open document, if any.
func (e *Engine) ProjectionError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectionErr
}

// Text returns the full buffer, padding included, with "\n" line endings.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Text()
}

// LineCount returns the number of buffer lines, padding included.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineCount()
}

// LineText returns the text of 1-indexed line n.
func (e *Engine) LineText(n int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineText(n)
}

// LineStart returns the offset of the first byte of line n.
func (e *Engine) LineStart(n int) (ByteOffset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, err := e.buf.Line(n)
	if err != nil {
		return 0, err
	}
	return l.From, nil
}

// ContentLength returns the persistable length of the buffer in bytes of the
// document's own line ending: the length Save writes. A CRLF host opened
// untouched reports its file size.
func (e *Engine) ContentLength() ByteOffset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ByteOffset(len(e.persistableLocked()))
}

// PersistableText returns the buffer truncated to its persistable length,
// in the document's line ending.
func (e *Engine) PersistableText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistableLocked()
}

func (e *Engine) persistableLocked() string {
	n := min(e.boundary, e.buf.Len())
	return e.buf.LineEnding().Apply(e.buf.TextRange(0, n))
}

// IsDirty reports whether coordinates or content changed since the last save.
func (e *Engine) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contentDirty || e.set.IsDirty()
}

// RecentShifts returns up to limit of the most recent line shifts.
func (e *Engine) RecentShifts(limit int) []tracking.Shift {
	return e.tracker.Recent(limit)
}

// Close tears the engine down. Later edits fail with ErrClosed; a save in
// flight may still complete.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.open = false
	e.logger.Debug("engine closed")
	return nil
}

// IsClosed reports whether Close has been called.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// IsGeometryError reports whether err disabled projection.
func IsGeometryError(err error) bool {
	return errors.Is(err, projection.ErrInvalidGeometry)
}
