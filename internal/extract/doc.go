// Package extract turns a selection of a host document into a child
// document.
//
// The Allocator names the child: a hierarchical Identifier one past the
// highest sibling at the destination, plus a slug of the extracted text. The
// Extractor runs the whole extraction against an open engine and a store,
// undoing what it created when a later step fails.
//
// Identifiers nest. Extracting from the top-level host "paper.md" yields
// "paper/1-...", "paper/2-..."; extracting from "paper/2-methods.md" yields
// "paper/2-methods/2.1-...", "paper/2-methods/2.2-...".
package extract
