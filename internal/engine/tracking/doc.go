// Package tracking keeps Range Record coordinates aligned with the live line
// numbering of a buffer as it is edited.
//
// For every change of an edit transaction the [Tracker] computes a line
// [Shift]: the line where the change starts and the number of lines it adds
// or removes. Records entirely after that line move by the delta; a record
// the change starts inside of only has its end moved. Changes are applied in
// document order, each measured in the coordinates left by the previous one,
// so a transaction with several changes shifts a record exactly once per
// change that precedes it.
//
// # Usage
//
//	before := buf.Snapshot()
//	changes, _ := buf.ApplyEdits(edits)
//	res, err := tracker.Apply(before, buf.Snapshot(), changes, set)
//	if res.Moved > 0 {
//	    // rebuild the lock set
//	}
//
// The tracker also keeps a bounded ring of recent shifts for diagnostics.
// All Tracker operations are thread-safe; the [ranges.Set] passed to Apply
// must be owned by the caller for the duration of the call.
package tracking
