package tracking

import (
	"sync"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// DefaultMaxShifts is the default number of recent shifts kept.
const DefaultMaxShifts = 256

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxShifts sets the number of recent shifts kept for diagnostics.
// Must only be used during Tracker creation via NewTracker.
func WithMaxShifts(n int) TrackerOption {
	return func(t *Tracker) {
		if n < 1 {
			n = 1
		}
		t.maxShifts = n
		t.shifts = make([]trackedShift, n)
	}
}

// Result describes the effect of one transaction.
type Result struct {
	// Shifts holds the nonzero shifts in application order.
	Shifts []Shift

	// Moved counts record moves; a record moved by two changes counts twice.
	Moved int
}

// Shifted reports whether any record moved.
func (r Result) Shifted() bool {
	return r.Moved > 0
}

// Tracker applies edit transactions to Range Records.
// All operations are thread-safe.
type Tracker struct {
	mu sync.Mutex

	// Recent shifts in a ring buffer
	shifts    []trackedShift
	head      int
	count     int
	maxShifts int
}

type trackedShift struct {
	revision buffer.RevisionID
	shift    Shift
}

// NewTracker creates a tracker with default settings.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxShifts: DefaultMaxShifts,
		shifts:    make([]trackedShift, DefaultMaxShifts),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply shifts the records of set for every change of one transaction.
// before must be the buffer before the transaction, after the buffer after it.
// On error the set is left unchanged.
func (t *Tracker) Apply(before, after *buffer.Snapshot, changes []buffer.Change, set *ranges.Set) (Result, error) {
	var res Result
	for _, c := range changes {
		s := ShiftFor(before, after, c)
		if s.IsZero() {
			continue
		}
		res.Shifts = append(res.Shifts, s)
	}
	if len(res.Shifts) == 0 || set.IsEmpty() {
		t.record(after.RevisionID(), res.Shifts)
		return res, nil
	}

	err := set.Mutate(func(rs []ranges.Record) {
		for _, s := range res.Shifts {
			res.Moved += s.Apply(rs)
		}
	})
	if err != nil {
		return Result{}, err
	}

	t.record(after.RevisionID(), res.Shifts)
	return res, nil
}

func (t *Tracker) record(rev buffer.RevisionID, shifts []Shift) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range shifts {
		idx := (t.head + t.count) % t.maxShifts
		if t.count < t.maxShifts {
			t.count++
		} else {
			// Ring buffer is full, advance head
			t.head = (t.head + 1) % t.maxShifts
		}
		t.shifts[idx] = trackedShift{revision: rev, shift: s}
	}
}

// Recent returns up to limit of the most recent shifts, oldest first.
// A limit <= 0 returns all retained shifts.
func (t *Tracker) Recent(limit int) []Shift {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Shift, 0, n)
	for i := t.count - n; i < t.count; i++ {
		out = append(out, t.shifts[(t.head+i)%t.maxShifts].shift)
	}
	return out
}

// Since returns the retained shifts recorded at revisions after rev.
func (t *Tracker) Since(rev buffer.RevisionID) []Shift {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Shift
	for i := 0; i < t.count; i++ {
		ts := t.shifts[(t.head+i)%t.maxShifts]
		if ts.revision > rev {
			out = append(out, ts.shift)
		}
	}
	return out
}

// Reset clears the retained history.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head, t.count = 0, 0
}
