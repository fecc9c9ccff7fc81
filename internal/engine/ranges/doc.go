// Package ranges holds the Range Records that link a locked interval of a host
// document to the child document extracted from it.
//
// Line numbers are 1-indexed and intervals are inclusive on both ends. Each
// record carries two intervals: the original one, as last persisted, and the
// current one, tracking the live buffer. A [Set] keeps the records of one
// buffer in extraction order and refuses any mutation that would leave two
// current intervals overlapping or out of order.
//
// The package has no knowledge of buffers or rendering. Shift tracking,
// projection and locking operate on the records through [Set.Mutate] and the
// read accessors.
package ranges
