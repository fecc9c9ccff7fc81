package store

import (
	"context"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// Store is the persistence collaborator of one open host document.
type Store interface {
	// ListSiblings returns the entry names of a destination folder. A missing
	// folder has no siblings.
	ListSiblings(ctx context.Context, folder string) ([]string, error)

	// ReadRangeRecords returns the records of host ordered by start line,
	// with child content loaded.
	ReadRangeRecords(ctx context.Context, host string) ([]ranges.Record, error)

	// WriteRangeCoordinateUpdates persists moved intervals atomically.
	WriteRangeCoordinateUpdates(ctx context.Context, host string, updates []ranges.CoordinateUpdate) error

	// ReadChildContent returns the text of a child document.
	ReadChildContent(ctx context.Context, childPath string) (string, error)

	// WriteHostContent replaces the text of a host document.
	WriteHostContent(ctx context.Context, host string, text string) error
}

// Extractions is what creating and undoing an extraction writes.
type Extractions interface {
	// CreateChild writes a new child document. It fails with ErrChildExists
	// rather than overwrite.
	CreateChild(ctx context.Context, childPath string, content string) error

	// CreateRangeRecord stores r for host, along with a review item for its
	// child, and returns it with its ID and creation time set.
	CreateRangeRecord(ctx context.Context, host string, r ranges.Record) (ranges.Record, error)

	// RemoveChild deletes a child document.
	RemoveChild(ctx context.Context, childPath string) error

	// RemoveRangeRecord deletes a record and its review item.
	RemoveRangeRecord(ctx context.Context, id string) error
}
