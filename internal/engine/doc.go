// Package engine provides the range engine of one open host document.
//
// The engine package serves as the facade over the buffer and the Range
// Records extracted from it. It keeps three things consistent while the host
// is edited: the locked line intervals tied to child documents, the
// coordinates those intervals are persisted with, and the projection of each
// child's current content in place of its interval.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: string-backed text with a newline index and transactional edits
//   - ranges: Range Records and the ordered set that owns them
//   - lock: the lock set and the pure selection/edit/drag constraints
//   - tracking: line shifts of records under edits
//   - projection: adjusted intervals, padding, validation and the View model
//
// # Lifecycle
//
//	e := engine.New(engine.WithHost("notes/paper.md"), engine.WithStore(lib))
//
//	// Load the host and its records (child content already cached)
//	if err := e.OpenDocument(text, records); engine.IsGeometryError(err) {
//	    // The document is open, without projection.
//	}
//
//	// Edits outside locked lines apply and shift the records after them
//	e.Insert(0, "new first line\n")
//
//	// Edits touching a locked line are dropped without error
//	applied, _ := e.Insert(lockedOffset, "x") // applied == false
//
//	// Persist coordinates, then the trimmed content
//	err := e.Save(ctx)
//
// # Expansion
//
// A child may have grown since its interval was last persisted. On open the
// engine gives each record an interval as tall as its child and appends blank
// lines when the buffer is too short. Only the text up to the persistable
// length is ever written; the padding never reaches the store.
//
// # Save
//
// Save pushes coordinate updates before writing content. A failed push
// leaves the records dirty and writes nothing (ErrCoordinatePersist). A failed
// content write happens after the coordinates were confirmed
// (ErrContentPersist); SaveContent retries it.
//
// # Thread Safety
//
// All Engine operations are thread-safe. Store calls made by Save run without
// the engine lock, so edits may continue while a save is in flight; they are
// tracked and stay dirty for the next save. Close stops further edits but
// lets an in-flight save finish.
package engine
