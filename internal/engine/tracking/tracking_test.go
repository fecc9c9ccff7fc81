package tracking

import (
	"strings"
	"testing"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// numbered returns n one-letter lines joined by newlines.
func numbered(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = string(rune('a' + i%26))
	}
	return strings.Join(lines, "\n")
}

func offsetOfLine(t *testing.T, b *buffer.Buffer, n int) buffer.ByteOffset {
	t.Helper()
	l, err := b.Line(n)
	if err != nil {
		t.Fatalf("Line(%d): %v", n, err)
	}
	return l.From
}

// applyEdits runs a transaction through the buffer and the tracker.
func applyEdits(t *testing.T, tr *Tracker, b *buffer.Buffer, set *ranges.Set, edits ...buffer.Edit) Result {
	t.Helper()
	before := b.Snapshot()
	changes, err := b.ApplyEdits(edits)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	res, err := tr.Apply(before, b.Snapshot(), changes, set)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return res
}

func mustSet(t *testing.T, records ...ranges.Record) *ranges.Set {
	t.Helper()
	s, err := ranges.NewSet(records)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func TestShiftCorrectnessInsertBefore(t *testing.T) {
	for k := 1; k <= 4; k++ {
		for line := 1; line < 10; line++ {
			b := buffer.NewBufferFromString(numbered(20))
			set := mustSet(t, ranges.NewRecord("c.md", 10, 12))
			tr := NewTracker()

			applyEdits(t, tr, b, set, buffer.NewInsert(offsetOfLine(t, b, line), strings.Repeat("new\n", k)))

			got := set.At(0).Current()
			if want := ranges.NewInterval(10+k, 12+k); got != want {
				t.Errorf("insert %d lines at line %d: current = %s, want %s", k, line, got, want)
			}
		}
	}
}

func TestShiftCorrectnessInsertAfter(t *testing.T) {
	for line := 13; line <= 20; line++ {
		b := buffer.NewBufferFromString(numbered(20))
		set := mustSet(t, ranges.NewRecord("c.md", 10, 12))

		res := applyEdits(t, NewTracker(), b, set, buffer.NewInsert(offsetOfLine(t, b, line), "x\ny\n"))

		if got := set.At(0).Current(); got != ranges.NewInterval(10, 12) {
			t.Errorf("insert at line %d moved record to %s", line, got)
		}
		if res.Shifted() {
			t.Errorf("insert at line %d reported a move", line)
		}
	}
}

func TestShiftDeleteBefore(t *testing.T) {
	b := buffer.NewBufferFromString(numbered(20))
	set := mustSet(t, ranges.NewRecord("c.md", 10, 12))

	// Remove lines 3..5 entirely.
	applyEdits(t, NewTracker(), b, set, buffer.NewDelete(offsetOfLine(t, b, 3), offsetOfLine(t, b, 6)))

	if got := set.At(0).Current(); got != ranges.NewInterval(7, 9) {
		t.Errorf("current = %s, want [7,9]", got)
	}
}

func TestSameLineEditHasNoEffect(t *testing.T) {
	b := buffer.NewBufferFromString(numbered(20))
	set := mustSet(t, ranges.NewRecord("c.md", 10, 12))

	res := applyEdits(t, NewTracker(), b, set, buffer.NewInsert(offsetOfLine(t, b, 2)+1, "more text"))

	if len(res.Shifts) != 0 || res.Shifted() {
		t.Errorf("expected no shift, got %+v", res)
	}
	if set.IsDirty() {
		t.Error("set should be clean")
	}
}

func TestMultiChangeTransaction(t *testing.T) {
	b := buffer.NewBufferFromString(numbered(30))
	set := mustSet(t,
		ranges.NewRecord("a.md", 5, 6),
		ranges.NewRecord("b.md", 15, 16),
		ranges.NewRecord("c.md", 25, 25),
	)

	// +2 lines at line 2, -1 line at line 10, +3 lines at line 20.
	res := applyEdits(t, NewTracker(), b, set,
		buffer.NewInsert(offsetOfLine(t, b, 2), "p\nq\n"),
		buffer.NewDelete(offsetOfLine(t, b, 10), offsetOfLine(t, b, 11)),
		buffer.NewInsert(offsetOfLine(t, b, 20), "r\ns\nt\n"),
	)

	want := []ranges.Interval{{Start: 7, End: 8}, {Start: 16, End: 17}, {Start: 29, End: 29}}
	for i, iv := range set.Intervals() {
		if iv != want[i] {
			t.Errorf("record %d current = %s, want %s", i, iv, want[i])
		}
	}
	if len(res.Shifts) != 3 {
		t.Fatalf("expected 3 shifts, got %v", res.Shifts)
	}
	if res.Shifts[1].StartLine != 12 {
		t.Errorf("second change starts at intermediate line %d, want 12", res.Shifts[1].StartLine)
	}
}

func TestShiftInsideRecordMovesEndOnly(t *testing.T) {
	rs := []ranges.Record{ranges.NewRecord("c.md", 5, 8)}

	moved := Shift{StartLine: 6, Delta: 2}.Apply(rs)
	if moved != 1 || rs[0].Current() != ranges.NewInterval(5, 10) {
		t.Errorf("got %s moved=%d, want [5,10] moved=1", rs[0].Current(), moved)
	}

	Shift{StartLine: 6, Delta: -20}.Apply(rs)
	if rs[0].Current() != ranges.NewInterval(5, 5) {
		t.Errorf("end must never drop below start, got %s", rs[0].Current())
	}
}

func TestShiftAtRecordStartIsIgnored(t *testing.T) {
	rs := []ranges.Record{ranges.NewRecord("c.md", 5, 8)}
	if moved := (Shift{StartLine: 5, Delta: 3}).Apply(rs); moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
}

func TestTrackerRing(t *testing.T) {
	tr := NewTracker(WithMaxShifts(3))
	b := buffer.NewBufferFromString(numbered(5))
	set := mustSet(t)

	for i := 0; i < 5; i++ {
		applyEdits(t, tr, b, set, buffer.NewInsert(0, "x\n"))
	}

	recent := tr.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("retained %d shifts, want 3", len(recent))
	}
	if got := tr.Recent(2); len(got) != 2 {
		t.Errorf("Recent(2) returned %d", len(got))
	}
	last := b.RevisionID()
	applyEdits(t, tr, b, set, buffer.NewInsert(0, "y\n"))
	if got := tr.Since(last); len(got) != 1 {
		t.Errorf("Since returned %d, want 1", len(got))
	}

	tr.Reset()
	if len(tr.Recent(0)) != 0 {
		t.Error("Reset should clear history")
	}
}
