package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
	"github.com/Evthron/Increvise-sub000/internal/store"
)

// Source is the open host an extraction reads from and locks.
type Source interface {
	Host() string
	SelectedLines() (ranges.Interval, string, error)
	LockSelectedRange(r ranges.Record) (ranges.Record, error)
}

// Extractor creates children from selections.
type Extractor struct {
	alloc  *Allocator
	store  store.Extractions
	logger *zap.Logger
}

// NewExtractor creates an extractor allocating through alloc and writing to
// st.
func NewExtractor(alloc *Allocator, st store.Extractions, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{alloc: alloc, store: st, logger: logger.Named("extract")}
}

// Extract moves the selected lines of src into a new child document.
//
// The steps are: allocate an identifier, create the child file, store the
// Range Record and its review item, then lock the lines in src. When a step
// fails, what the earlier steps created is removed again and the error is
// returned.
func (x *Extractor) Extract(ctx context.Context, src Source) (ranges.Record, error) {
	iv, text, err := src.SelectedLines()
	if err != nil {
		return ranges.Record{}, err
	}

	host := src.Host()
	alloc, err := x.alloc.Allocate(ctx, DestinationFor(host), text)
	if err != nil {
		return ranges.Record{}, err
	}
	child := alloc.Path()

	if err := x.store.CreateChild(ctx, child, text); err != nil {
		return ranges.Record{}, fmt.Errorf("extract %s: %w", child, err)
	}

	r := ranges.NewRecord(child, iv.Start, iv.End)
	r.Identifier = alloc.Identifier.String()
	r.SetContent(text)

	stored, err := x.store.CreateRangeRecord(ctx, host, r)
	if err != nil {
		return ranges.Record{}, x.undo(ctx, fmt.Errorf("extract %s: %w", child, err), child, "")
	}

	locked, err := src.LockSelectedRange(stored)
	if err != nil {
		return ranges.Record{}, x.undo(ctx, fmt.Errorf("extract %s: %w", child, err), child, stored.ID)
	}

	x.logger.Info("extracted",
		zap.String("host", host),
		zap.String("child", child),
		zap.Stringer("interval", locked.Current()))
	return locked, nil
}

// undo removes the record and the child file created for a failed
// extraction. Cleanup failures are joined to cause.
func (x *Extractor) undo(ctx context.Context, cause error, child, recordID string) error {
	errs := []error{cause}
	if recordID != "" {
		if err := x.store.RemoveRangeRecord(ctx, recordID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := x.store.RemoveChild(ctx, child); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 1 {
		x.logger.Error("extraction rollback incomplete", zap.String("child", child), zap.Errors("errors", errs[1:]))
	}
	return errors.Join(errs...)
}
