// Package renderer draws the projection of an open host on a terminal.
//
// Host lines are drawn as they are. Lines covered by a locked range show the
// child's current content instead, in a dimmed style with a gutter marker,
// so the reader sees where extracted text lives without being able to edit
// it in place.
//
// The renderer consumes only projection rows; it never reads Range Records
// or coordinates.
//
//	screen, _ := tcell.NewScreen()
//	v := renderer.NewViewer(screen, view.Lines(eng), renderer.WithTitle(host))
//	if err := v.Run(); err != nil { ... }
package renderer
