package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations.
var (
	// ErrNoDocument indicates an operation that needs an open document.
	ErrNoDocument = errors.New("no document open")

	// ErrClosed indicates the engine has been torn down.
	ErrClosed = errors.New("engine is closed")

	// ErrEmptySelection indicates a lock was requested without a selection.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrNoStore indicates a save without a configured store.
	ErrNoStore = errors.New("no store configured")

	// ErrCoordinatePersist indicates the store rejected coordinate updates.
	// Nothing was written; the coordinates stay dirty for a later save.
	ErrCoordinatePersist = errors.New("persisting range coordinates failed")

	// ErrContentPersist indicates the host content write failed after the
	// coordinates were confirmed. Retrying the content write alone is safe.
	ErrContentPersist = errors.New("persisting host content failed")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "save", "open", "lock")
	Target string // Host document path
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for OperationError.
// Matches both the wrapper itself and the wrapped error.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
