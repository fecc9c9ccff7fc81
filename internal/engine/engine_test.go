package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/lock"
	"github.com/Evthron/Increvise-sub000/internal/engine/projection"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

const host = "notes/host.md"

// memStore is an in-memory Persister that also serves records back, so a
// save can be followed by a fresh open.
type memStore struct {
	mu         sync.Mutex
	content    map[string]string
	records    []ranges.Record
	pushes     [][]ranges.CoordinateUpdate
	coordErr   error
	contentErr error
	onCoords   func()
}

func newMemStore(records ...ranges.Record) *memStore {
	return &memStore{content: map[string]string{}, records: records}
}

func (m *memStore) WriteRangeCoordinateUpdates(_ context.Context, _ string, updates []ranges.CoordinateUpdate) error {
	if m.onCoords != nil {
		m.onCoords()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coordErr != nil {
		return m.coordErr
	}
	m.pushes = append(m.pushes, updates)
	for _, u := range updates {
		for i := range m.records {
			if m.records[i].ChildPath == u.ChildPath {
				m.records[i].OriginalStart, m.records[i].OriginalEnd = u.NewStart, u.NewEnd
				m.records[i].SetCurrent(u.New())
			}
		}
	}
	return nil
}

func (m *memStore) WriteHostContent(_ context.Context, h string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.contentErr != nil {
		return m.contentErr
	}
	m.content[h] = text
	return nil
}

func (m *memStore) readRecords() []ranges.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ranges.Record, len(m.records))
	copy(out, m.records)
	return out
}

func child(path string, start, end int, content string) ranges.Record {
	r := ranges.NewRecord(path, start, end)
	r.SetContent(content)
	return r
}

// hostLines returns "h1\nh2\n...hn".
func hostLines(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("h%d", i+1)
	}
	return strings.Join(parts, "\n")
}

func openEngine(t *testing.T, st *memStore, text string, records ...ranges.Record) *Engine {
	t.Helper()
	e := New(WithHost(host), WithStore(st))
	require.NoError(t, e.OpenDocument(text, records))
	return e
}

func lineStart(t *testing.T, e *Engine, n int) ByteOffset {
	t.Helper()
	off, err := e.LineStart(n)
	require.NoError(t, err)
	return off
}

func intervals(records []ranges.Record) []ranges.Interval {
	out := make([]ranges.Interval, len(records))
	for i, r := range records {
		out[i] = r.Current()
	}
	return out
}

func TestOpenDocumentLocksRecords(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10),
		child("b.md", 7, 8, "b1\nb2"),
		child("a.md", 2, 3, "a1\na2"),
	)

	assert.Equal(t, []int{2, 3, 7, 8}, e.LockedLines())
	assert.Equal(t, "a.md", e.Records()[0].ChildPath, "records are kept in extraction order")
	assert.False(t, e.IsDirty())
	assert.Equal(t, "h1\na1\na2\nh4\nh5\nh6\nb1\nb2\nh9\nh10", e.VisibleText())
}

func TestOpenDocumentAdjustsGrownChildren(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10),
		child("a.md", 2, 3, "a1\na2\na3\na4"),
		child("b.md", 6, 6, "b1"),
	)

	assert.Equal(t, []ranges.Interval{{Start: 2, End: 5}, {Start: 8, End: 8}}, intervals(e.Records()))
	assert.True(t, e.IsDirty(), "adjusted coordinates must be persisted")
	assert.Len(t, e.PendingCoordinateUpdates(), 2)
}

func TestLockInvariantUnderRandomEdits(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(30),
		child("a.md", 5, 7, "a\nb\nc"),
		child("b.md", 15, 15, "d"),
		child("c.md", 22, 25, "e\nf\ng\nh"),
	)
	spans := []int{2, 0, 3}
	var lockedText []string
	for _, r := range e.Records() {
		lockedText = append(lockedText, strings.Join(linesOf(e, r.Current()), "\n"))
	}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		line := 1 + rng.Intn(e.LineCount())
		before := e.Text()

		var applied bool
		var err error
		if rng.Intn(3) > 0 || e.LineCount() < 15 || line == e.LineCount() {
			applied, err = e.Insert(lineStart(t, e, line), strings.Repeat("new\n", 1+rng.Intn(3)))
		} else {
			applied, err = e.Delete(lineStart(t, e, line), lineStart(t, e, line+1))
		}
		require.NoError(t, err)
		if !applied {
			assert.Equal(t, before, e.Text(), "rejected edit must not change the buffer")
		}

		records := e.Records()
		var union []int
		for j, r := range records {
			assert.Equal(t, spans[j], r.CurrentEnd-r.CurrentStart, "record %s changed length", r.ChildPath)
			for l := r.CurrentStart; l <= r.CurrentEnd; l++ {
				union = append(union, l)
			}
			assert.Equal(t, lockedText[j], strings.Join(linesOf(e, r.Current()), "\n"),
				"locked host text must stay intact")
		}
		require.Empty(t, cmp.Diff(union, e.LockedLines()), "locked lines must equal the union of intervals")
	}
}

func linesOf(e *Engine, iv ranges.Interval) []string {
	var out []string
	for n := iv.Start; n <= iv.End; n++ {
		out = append(out, e.LineText(n))
	}
	return out
}

func TestShiftOnInsertBeforeAndAfter(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(20), child("a.md", 8, 10, "x\ny\nz"))

	applied, err := e.Insert(lineStart(t, e, 3), "1\n2\n")
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, ranges.NewInterval(10, 12), e.Records()[0].Current())

	applied, err = e.Insert(lineStart(t, e, 13), "tail\n")
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, ranges.NewInterval(10, 12), e.Records()[0].Current())
	assert.Equal(t, []int{10, 11, 12}, e.LockedLines())
}

func TestRejectedCrossBoundaryEdit(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10), child("a.md", 5, 6, "h5\nh6"))
	textBefore := e.Text()
	recordsBefore := e.Records()

	// Pre-edit span covers lines 4..6.
	from := lineStart(t, e, 4)
	to := lineStart(t, e, 6) + 1
	applied, err := e.Delete(from, to)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, textBefore, e.Text())
	assert.Empty(t, cmp.Diff(recordsBefore, e.Records()))
	assert.False(t, e.IsDirty())
}

func TestTransactionRejectedAsAWhole(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10), child("a.md", 5, 6, "h5\nh6"))
	textBefore := e.Text()

	applied, err := e.ApplyEdits([]Edit{
		buffer.NewInsert(0, "ok\n"),
		buffer.NewInsert(lineStart(t, e, 5), "bad"),
	})

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, textBefore, e.Text())
}

func TestSelectionConstraint(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10), child("a.md", 5, 6, "h5\nh6"))

	sel := e.Select(lock.NewSelection(lineStart(t, e, 2), lineStart(t, e, 6)))
	assert.True(t, sel.IsEmpty(), "selection spanning into a lock collapses")
	assert.Equal(t, lineStart(t, e, 6), sel.Head)

	sel = e.Select(lock.NewSelection(lineStart(t, e, 1), lineStart(t, e, 4)))
	assert.False(t, sel.IsEmpty())

	e.SetEditable(false)
	sel = e.Select(lock.NewSelection(lineStart(t, e, 1), lineStart(t, e, 8)))
	assert.False(t, sel.IsEmpty(), "preview mode allows any selection")
}

func TestPreviewModeRefusesMutation(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(5), child("a.md", 3, 3, "h3"))

	e.SetEditable(false)
	assert.False(t, e.IsEditable())

	applied, err := e.Insert(0, "x")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, e.CanDragFrom(lineStart(t, e, 3)))
	assert.False(t, e.CanDropAt(0))
	assert.Equal(t, []int{3}, e.LockedLines(), "mode switch keeps the lock set")

	e.SetEditable(true)
	assert.False(t, e.CanDragFrom(lineStart(t, e, 3)))
	assert.True(t, e.CanDropAt(0))
	applied, err = e.Insert(0, "x")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestLockSelectedRange(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10))

	e.Select(lock.NewSelection(lineStart(t, e, 3), lineStart(t, e, 5)))
	iv, text, err := e.SelectedLines()
	require.NoError(t, err)
	assert.Equal(t, ranges.NewInterval(3, 4), iv)
	assert.Equal(t, "h3\nh4", text)

	r, err := e.LockSelectedRange(ranges.Record{ChildPath: "notes/host/1-h3-h4.md", ChildContent: text, Identifier: "1"})
	require.NoError(t, err)
	assert.Equal(t, ranges.NewInterval(3, 4), r.Original())
	assert.Equal(t, host, r.HostPath)
	assert.Equal(t, []int{3, 4}, e.LockedLines())
	assert.True(t, e.Selection().IsEmpty())
	assert.False(t, e.IsDirty())

	_, err = e.LockSelectedRange(ranges.Record{ChildPath: "x.md"})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestLockBareRecordKeepsIntervalsOnReproject(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10), child("b.md", 8, 8, "b1"))

	e.Select(lock.NewSelection(lineStart(t, e, 2), lineStart(t, e, 5)))
	r, err := e.LockSelectedRange(ranges.NewRecord("a.md", 0, 0))
	require.NoError(t, err)
	assert.True(t, r.Loaded)
	assert.Equal(t, "h2\nh3\nh4", r.ChildContent)

	want := []ranges.Interval{{Start: 2, End: 4}, {Start: 8, End: 8}}
	assert.Equal(t, want, intervals(e.Records()))

	require.NoError(t, e.Reproject())
	assert.Equal(t, want, intervals(e.Records()))
	assert.Equal(t, []int{2, 3, 4, 8}, e.LockedLines())
	assert.Empty(t, e.PendingCoordinateUpdates())
}

func TestRoundTripSave(t *testing.T) {
	st := newMemStore(
		child("a.md", 2, 3, "a1\na2\na3"),
		child("b.md", 6, 6, "b1"),
	)
	e := openEngine(t, st, hostLines(10), st.readRecords()...)

	applied, err := e.Insert(0, "new\n")
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, e.Save(context.Background()))
	assert.False(t, e.IsDirty())

	reopened := openEngine(t, st, st.content[host], st.readRecords()...)

	want := []ranges.Interval{{Start: 3, End: 5}, {Start: 8, End: 8}}
	for i, r := range reopened.Records() {
		assert.Equal(t, want[i], r.Original())
		assert.Equal(t, e.Records()[i].Original(), r.Original())
	}
	assert.False(t, reopened.IsDirty())
	assert.Equal(t, e.VisibleText(), reopened.VisibleText())
	assert.Equal(t, e.PersistableText(), reopened.PersistableText())
}

func TestRoundTripWithoutRanges(t *testing.T) {
	st := newMemStore()
	e := openEngine(t, st, "one\r\ntwo\r\n")

	_, err := e.Insert(0, "zero\n")
	require.NoError(t, err)
	require.NoError(t, e.Save(context.Background()))

	assert.Equal(t, "zero\r\none\r\ntwo\r\n", st.content[host], "line ending is kept")
	assert.Empty(t, st.pushes, "nothing to push without ranges")
}

func TestExpansionReversibility(t *testing.T) {
	text := "a\nb\nc"
	st := newMemStore()
	e := openEngine(t, st, text, child("x.md", 3, 3, "x1\nx2\nx3"))

	assert.Equal(t, ByteOffset(len(text)), e.ContentLength())
	assert.Equal(t, 5, e.LineCount(), "two blank lines appended")
	assert.Equal(t, []int{3, 4, 5}, e.LockedLines())

	require.NoError(t, e.Save(context.Background()))
	assert.LessOrEqual(t, len(st.content[host]), len(text))
	assert.Equal(t, text, st.content[host])
}

func TestExpansionBoundaryFollowsEdits(t *testing.T) {
	text := "a\nb\nc"
	st := newMemStore()
	e := openEngine(t, st, text, child("x.md", 3, 3, "x1\nx2\nx3"))

	_, err := e.Insert(0, "top\n")
	require.NoError(t, err)
	_, err = e.Delete(lineStart(t, e, 2), lineStart(t, e, 3))
	require.NoError(t, err)

	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, "top\nb\nc", st.content[host])
}

func TestContentLengthInDocumentLineEnding(t *testing.T) {
	text := "h1\r\nh2\r\nh3"
	st := newMemStore()
	e := openEngine(t, st, text, child("a.md", 3, 3, "a\nb"))

	assert.Equal(t, 4, e.LineCount(), "padded by one line")
	assert.Equal(t, ByteOffset(len(text)), e.ContentLength())
	assert.Equal(t, text, e.PersistableText())

	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, text, st.content[host])
}

func TestSaveCoordinateFailureWritesNothing(t *testing.T) {
	st := newMemStore(child("a.md", 4, 4, "a"))
	e := openEngine(t, st, hostLines(6), st.readRecords()...)
	_, err := e.Insert(0, "x\n")
	require.NoError(t, err)

	st.coordErr = errors.New("disk full")
	err = e.Save(context.Background())

	require.ErrorIs(t, err, ErrCoordinatePersist)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, host, opErr.Target)
	assert.Empty(t, st.content, "content must not be written")
	assert.True(t, e.IsDirty())
	assert.Len(t, e.PendingCoordinateUpdates(), 1)

	st.coordErr = nil
	require.NoError(t, e.Save(context.Background()))
	assert.Empty(t, e.PendingCoordinateUpdates())
}

func TestSaveContentFailureIsRetryable(t *testing.T) {
	st := newMemStore(child("a.md", 4, 4, "a"))
	e := openEngine(t, st, hostLines(6), st.readRecords()...)
	_, err := e.Insert(0, "x\n")
	require.NoError(t, err)

	st.contentErr = errors.New("read-only file system")
	err = e.Save(context.Background())

	require.ErrorIs(t, err, ErrContentPersist)
	assert.Empty(t, e.PendingCoordinateUpdates(), "coordinates were confirmed")

	st.contentErr = nil
	require.NoError(t, e.SaveContent(context.Background()))
	assert.Equal(t, "x\n"+hostLines(6), st.content[host])
	assert.Len(t, st.pushes, 1)
	assert.False(t, e.IsDirty())
}

func TestEditsDuringSaveStayDirty(t *testing.T) {
	st := newMemStore(child("a.md", 4, 4, "a"))
	core, logs := observer.New(zap.InfoLevel)
	e := New(WithHost(host), WithStore(st), WithLogger(zap.New(core)))
	require.NoError(t, e.OpenDocument(hostLines(6), st.readRecords()))
	_, err := e.Insert(0, "x\n")
	require.NoError(t, err)

	st.onCoords = func() {
		st.onCoords = nil
		applied, err := e.Insert(0, "y\n")
		assert.NoError(t, err)
		assert.True(t, applied)
	}
	require.NoError(t, e.Save(context.Background()))

	pending := e.PendingCoordinateUpdates()
	require.Len(t, pending, 1)
	assert.Equal(t, ranges.CoordinateUpdate{ChildPath: "a.md", OriginalStart: 5, OriginalEnd: 5, NewStart: 6, NewEnd: 6}, pending[0])
	assert.True(t, e.IsDirty())

	moved := logs.FilterMessage("records moved during save stay dirty").All()
	require.Len(t, moved, 1)
	assert.Equal(t, int64(1), moved[0].ContextMap()["shifts"])
}

func TestNoOpEditsLeaveDocumentClean(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(4), child("a.md", 2, 2, "a"))

	applied, err := e.Insert(lineStart(t, e, 3), "")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, e.IsDirty())

	applied, err = e.ApplyEdits([]Edit{buffer.NewInsert(0, ""), buffer.NewInsert(0, "z\n")})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, []int{3}, e.LockedLines())
}

func TestGeometryErrorDisablesProjection(t *testing.T) {
	bad := child("b.md", 3, 5, "b")
	bad.OriginalStart = 2
	e := New(WithHost(host))

	err := e.OpenDocument(hostLines(8), []ranges.Record{child("a.md", 2, 4, "a\nb\nc"), bad})

	require.ErrorIs(t, err, projection.ErrInvalidGeometry)
	assert.True(t, IsGeometryError(e.ProjectionError()))
	assert.Empty(t, e.Records())
	assert.Empty(t, e.LockedLines())
	assert.Equal(t, hostLines(8), e.PersistableText())

	applied, err := e.Insert(lineStart(t, e, 3), "free\n")
	require.NoError(t, err)
	assert.True(t, applied, "the document stays usable")
}

func TestLenientGeometryKeepsValidRanges(t *testing.T) {
	bad := child("b.md", 3, 3, "b")
	e := New(WithHost(host), WithLenientGeometry(true))

	err := e.OpenDocument(hostLines(8), []ranges.Record{
		child("a.md", 2, 4, "a\nb\nc"),
		bad,
		child("c.md", 7, 7, "c"),
	})

	require.NoError(t, err)
	paths := make([]string, 0)
	for _, r := range e.Records() {
		paths = append(paths, r.ChildPath)
	}
	assert.Equal(t, []string{"a.md", "c.md"}, paths)
}

func TestRefreshChildReprojects(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10),
		child("a.md", 2, 3, "a1\na2"),
		child("b.md", 6, 6, "b1"),
	)

	require.NoError(t, e.RefreshChild("a.md", "a1\na2\na3\na4"))

	assert.Equal(t, []ranges.Interval{{Start: 2, End: 5}, {Start: 8, End: 8}}, intervals(e.Records()))
	assert.Equal(t, []int{2, 3, 4, 5, 8}, e.LockedLines())
	v := e.View()
	require.Len(t, v.Blocks, 2)
	assert.Equal(t, 4, v.Blocks[0].Height())

	assert.ErrorIs(t, e.RefreshChild("missing.md", ""), ranges.ErrNotFound)
}

func TestReprojectPadsBuffer(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(4), child("a.md", 4, 4, "a"))

	require.NoError(t, e.RefreshChild("a.md", "a\nb\nc"))

	assert.Equal(t, 6, e.LineCount())
	assert.Equal(t, hostLines(4), e.PersistableText())
}

func TestClosedEngine(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(3))
	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "Close is idempotent")

	_, err := e.Insert(0, "x")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, e.OpenDocument("x", nil), ErrClosed)
	assert.ErrorIs(t, e.Save(context.Background()), ErrClosed)
	assert.True(t, e.IsClosed())
}

func TestNoDocumentAndNoStore(t *testing.T) {
	e := New()
	_, err := e.Insert(0, "x")
	assert.ErrorIs(t, err, ErrNoDocument)

	require.NoError(t, e.OpenDocument("x", nil))
	assert.ErrorIs(t, e.Save(context.Background()), ErrNoStore)
}

func TestOpenDocumentDiscardsPriorState(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(10), child("a.md", 2, 3, "a\nb"))
	_, err := e.Insert(0, "x\n")
	require.NoError(t, err)

	require.NoError(t, e.OpenDocument("fresh", nil))

	assert.Empty(t, e.Records())
	assert.Empty(t, e.LockedLines())
	assert.False(t, e.IsDirty())
	assert.Equal(t, ByteOffset(5), e.ContentLength())
	assert.Empty(t, e.RecentShifts(0))
}

func TestConcurrentEditsAndReads(t *testing.T) {
	e := openEngine(t, newMemStore(), hostLines(50), child("a.md", 40, 41, "a\nb"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = e.Insert(0, "z\n")
				_ = e.LockedLines()
				_ = e.View()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, ranges.NewInterval(140, 141), e.Records()[0].Current())
}
