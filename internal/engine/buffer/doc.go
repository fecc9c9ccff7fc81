// Package buffer provides the text buffer that the range engine operates on.
//
// A Buffer holds the full text of one open document together with an index
// of line start offsets, so byte offsets can be mapped to 1-indexed line
// numbers in O(log n). Line numbers in this package match the numbering used
// by range records: the first line is line 1 and the empty buffer has one
// line.
//
// Edits are applied as transactions:
//
//	buf := buffer.NewBufferFromString("alpha\nbeta\ngamma")
//	before := buf.Snapshot()
//	changes, err := buf.ApplyEdits([]buffer.Edit{
//	    buffer.NewInsert(0, "intro\n"),
//	})
//	after := buf.Snapshot()
//
// Every edit in a transaction is expressed against the buffer state before
// the transaction. The returned Change values carry the edit span in both
// coordinate spaces (FromA/ToA before, FromB/ToB after), which is what the
// shift tracker consumes.
//
// Line endings are normalized to "\n" on load. The detected style is kept so
// callers can restore it when writing the document back.
//
// Thread Safety:
//
// All Buffer methods are safe for concurrent use. Snapshots are immutable
// and may be shared freely.
package buffer
