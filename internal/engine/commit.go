package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// saveState is what a save captures under the lock before any I/O.
type saveState struct {
	host    string
	store   Persister
	pending []ranges.CoordinateUpdate
	text    string
	rev     buffer.RevisionID
	logger  *zap.Logger
}

func (e *Engine) captureSave() (saveState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkLocked(); err != nil {
		return saveState{}, err
	}
	if e.store == nil {
		return saveState{}, ErrNoStore
	}
	return saveState{
		host:    e.host,
		store:   e.store,
		pending: e.set.Pending(),
		text:    e.persistableLocked(),
		rev:     e.buf.RevisionID(),
		logger:  e.logger,
	}, nil
}

// Save persists the document.
//
// Coordinates go first: every dirty record's (original, current) pair is
// pushed to the store. If that fails the save stops before any content is
// written, the error wraps ErrCoordinatePersist, and the records stay dirty.
// On success the pushed intervals become the records' original intervals.
// Then the buffer, truncated to its persistable length, is written; a failure
// wraps ErrContentPersist and may be retried with SaveContent.
//
// Coordinates and content are captured together when Save starts. Edits made
// while the store calls are in flight stay dirty for the next save.
func (e *Engine) Save(ctx context.Context) error {
	st, err := e.captureSave()
	if err != nil {
		return err
	}

	if len(st.pending) > 0 {
		if err := st.store.WriteRangeCoordinateUpdates(ctx, st.host, st.pending); err != nil {
			st.logger.Error("coordinate persist failed", zap.Int("updates", len(st.pending)), zap.Error(err))
			return NewOperationError("save", st.host, fmt.Errorf("%w: %w", ErrCoordinatePersist, err))
		}
		confirmed := e.ConfirmCoordinateUpdates(st.pending)
		st.logger.Info("coordinates persisted",
			zap.Int("updates", len(st.pending)),
			zap.Int("confirmed", confirmed))
		if moved := e.tracker.Since(st.rev); len(moved) > 0 {
			st.logger.Info("records moved during save stay dirty", zap.Int("shifts", len(moved)))
		}
	}

	if err := e.writeContent(ctx, st); err != nil {
		return err
	}
	return nil
}

// SaveContent writes the persistable content alone. Use it to retry after
// Save failed with ErrContentPersist.
func (e *Engine) SaveContent(ctx context.Context) error {
	st, err := e.captureSave()
	if err != nil {
		return err
	}
	return e.writeContent(ctx, st)
}

func (e *Engine) writeContent(ctx context.Context, st saveState) error {
	if err := st.store.WriteHostContent(ctx, st.host, st.text); err != nil {
		st.logger.Error("content persist failed", zap.Int("bytes", len(st.text)), zap.Error(err))
		return NewOperationError("save", st.host, fmt.Errorf("%w: %w", ErrContentPersist, err))
	}

	e.mu.Lock()
	if e.persistableLocked() == st.text {
		e.contentDirty = false
	}
	e.mu.Unlock()

	st.logger.Debug("content persisted", zap.Int("bytes", len(st.text)))
	return nil
}
