package engine

import (
	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/tracking"
)

// Default configuration values.
const (
	DefaultMaxShifts = tracking.DefaultMaxShifts
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithHost sets the path of the host document the engine edits.
func WithHost(path string) Option {
	return func(e *Engine) {
		e.host = path
	}
}

// WithStore sets the collaborator Save writes to.
func WithStore(s Persister) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLenientGeometry makes projection drop only the ranges whose adjusted
// intervals conflict, instead of disabling projection for the document.
func WithLenientGeometry(lenient bool) Option {
	return func(e *Engine) {
		e.lenient = lenient
	}
}

// WithLineEnding forces the line ending used when persisting content.
// By default the ending detected on open is kept.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = &ending
	}
}

// WithMaxShifts sets the number of recent shifts retained for diagnostics.
func WithMaxShifts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxShifts = n
		}
	}
}

// WithReadOnly starts the engine in preview mode.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.preview = true
	}
}
