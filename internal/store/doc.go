// Package store persists a library of host documents, their children and the
// Range Records linking them.
//
// A Library is rooted at a folder. Document text lives in files reached
// through a vfs.VFS; Range Records and review items live in a SQL database
// reached through GORM. Paths are library-relative and slash-separated.
//
// Library implements both interfaces the rest of the module consumes:
//
//   - Store: what the engine and the allocator read and write
//   - Extractions: the extra writes an extraction makes
//
// # Coordinates
//
// WriteRangeCoordinateUpdates matches each record by host, child and its last
// persisted interval. An update whose original interval no longer matches
// the stored one fails with ErrStaleRecord, and the whole batch is rolled
// back.
package store
