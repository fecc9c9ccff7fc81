package lock

import "github.com/Evthron/Increvise-sub000/internal/engine/buffer"

// Mode is the editing mode of a buffer.
type Mode uint8

const (
	// ModeEditable enforces the full lock constraint set.
	ModeEditable Mode = iota

	// ModePreview allows any selection and refuses every text mutation.
	ModePreview
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "editable"
}

// Guard evaluates user actions against a lock set and a mode.
// Guard is a value; use With* to derive a new one.
type Guard struct {
	locks *Set
	mode  Mode
}

// NewGuard creates a guard over locks in the given mode.
func NewGuard(locks *Set, mode Mode) Guard {
	if locks == nil {
		locks = Empty()
	}
	return Guard{locks: locks, mode: mode}
}

// Locks returns the guarded lock set.
func (g Guard) Locks() *Set { return g.locks }

// Mode returns the editing mode.
func (g Guard) Mode() Mode { return g.mode }

// WithLocks returns a guard with the same mode over a new lock set.
func (g Guard) WithLocks(locks *Set) Guard {
	return NewGuard(locks, g.mode)
}

// WithMode returns a guard over the same lock set in a new mode.
func (g Guard) WithMode(mode Mode) Guard {
	return Guard{locks: g.locks, mode: mode}
}

// FilterSelection returns sel, or sel collapsed to its head when it is a
// range selection touching a locked line. Selections can never straddle a
// lock boundary or start inside a lock.
func (g Guard) FilterSelection(sel Selection, lookup LineLookup) Selection {
	if g.mode == ModePreview || sel.IsEmpty() {
		return sel
	}
	start, end := sel.Lines(lookup)
	if g.locks.Touches(start, end) {
		return sel.Collapse()
	}
	return sel
}

// AllowEdit reports whether a transaction may be applied. Each edit's span
// is measured in lines against the buffer before the transaction.
func (g Guard) AllowEdit(edits []buffer.Edit, lookup LineLookup) bool {
	if g.mode == ModePreview {
		return false
	}
	for _, e := range edits {
		if g.locks.Touches(lookup.LineAt(e.Range.Start), lookup.LineAt(e.Range.End)) {
			return false
		}
	}
	return true
}

// AllowDragStart reports whether a drag may begin on line.
func (g Guard) AllowDragStart(line int) bool {
	if g.mode == ModePreview {
		return true
	}
	return !g.locks.IsLocked(line)
}

// AllowDrop reports whether a drop may land on line.
func (g Guard) AllowDrop(line int) bool {
	if g.mode == ModePreview {
		return false
	}
	return !g.locks.IsLocked(line)
}
