// Package lock enforces the immutability of extracted line intervals.
//
// A [Set] is the materialized union of the current intervals of every Range
// Record of a buffer. It is rebuilt wholesale whenever coordinates change and
// is never edited in place.
//
// A [Guard] pairs a lock set with the buffer's editing mode and answers the
// questions the editor asks before it lets the user act:
//
//   - FilterSelection: a range selection whose lines touch a locked line
//     collapses to a cursor at its head. Cursors pass through.
//   - AllowEdit: in editable mode an edit is refused when its pre-edit line
//     span touches a locked line. In preview mode every mutation is refused.
//   - AllowDragStart / AllowDrop: dragging from or dropping onto a locked line
//     is refused the same way.
//
// Refusals are plain booleans. The caller drops the action and reports no
// error. All functions are pure; switching modes never touches the lock set.
package lock
