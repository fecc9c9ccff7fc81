package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	defaultQueue = 64
	childDocExt  = ".md"
)

// FolderWatcher watches child folders through fsnotify and reports changes
// to the documents in them.
type FolderWatcher struct {
	fsw    *fsnotify.Watcher
	accept func(path string) bool
	logger *zap.Logger

	mu      sync.Mutex
	folders map[string]struct{}
	closed  bool

	events  chan Event
	errors  chan error
	done    chan struct{}
	stopped chan struct{}
}

// FolderOption configures a FolderWatcher.
type FolderOption func(*folderOptions)

type folderOptions struct {
	accept func(string) bool
	logger *zap.Logger
	queue  int
}

// WithFilter reports only files accept returns true for. The default is
// IsChildDocument.
func WithFilter(accept func(path string) bool) FolderOption {
	return func(o *folderOptions) { o.accept = accept }
}

// WithFolderLogger sets the logger.
func WithFolderLogger(l *zap.Logger) FolderOption {
	return func(o *folderOptions) { o.logger = l }
}

// WithQueue sets how many events may wait for the reader before new ones
// are dropped.
func WithQueue(n int) FolderOption {
	return func(o *folderOptions) {
		if n > 0 {
			o.queue = n
		}
	}
}

// NewFolderWatcher starts an fsnotify watcher with no folders.
func NewFolderWatcher(opts ...FolderOption) (*FolderWatcher, error) {
	o := folderOptions{accept: IsChildDocument, logger: zap.NewNop(), queue: defaultQueue}
	for _, opt := range opts {
		opt(&o)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start fsnotify: %w", err)
	}
	w := &FolderWatcher{
		fsw:     fsw,
		accept:  o.accept,
		logger:  o.logger.Named("fsnotify"),
		folders: make(map[string]struct{}),
		events:  make(chan Event, o.queue),
		errors:  make(chan error, o.queue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// IsChildDocument reports whether path names a markdown document rather than
// an editor's swap, backup or hidden file.
func IsChildDocument(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), childDocExt)
}

func (w *FolderWatcher) Watch(folder string) error {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.folders[abs]; ok {
		return ErrAlreadyWatching
	}
	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrPathNotExist, abs)
	} else if err != nil {
		return err
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	w.folders[abs] = struct{}{}
	w.logger.Debug("folder watched", zap.String("folder", abs))
	return nil
}

func (w *FolderWatcher) Unwatch(folder string) error {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.folders[abs]; !ok {
		return ErrNotWatching
	}
	delete(w.folders, abs)
	// A removed folder has already left the fsnotify watch list.
	if err := w.fsw.Remove(abs); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return fmt.Errorf("unwatch %s: %w", abs, err)
	}
	return nil
}

func (w *FolderWatcher) Events() <-chan Event { return w.events }
func (w *FolderWatcher) Errors() <-chan error { return w.errors }

// Close stops the watcher. It is safe to call more than once.
func (w *FolderWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	<-w.stopped
	return w.fsw.Close()
}

func (w *FolderWatcher) loop() {
	defer close(w.stopped)
	defer close(w.errors)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.forward(fe)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watch error dropped", zap.Error(err))
			}
		}
	}
}

func (w *FolderWatcher) forward(fe fsnotify.Event) {
	op := opOf(fe.Op)
	if op == 0 || !w.accept(fe.Name) {
		return
	}
	select {
	case w.events <- Event{Path: fe.Name, Op: op}:
	default:
		w.logger.Warn("change dropped, reader is behind",
			zap.String("path", fe.Name), zap.Stringer("op", op))
	}
}

func opOf(fop fsnotify.Op) Op {
	var op Op
	for _, m := range []struct {
		from fsnotify.Op
		to   Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
	} {
		if fop.Has(m.from) {
			op |= m.to
		}
	}
	return op
}

var _ Watcher = (*FolderWatcher)(nil)
