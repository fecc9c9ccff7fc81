package watcher

import (
	"context"
	"errors"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// Refresher is the open host whose children are watched.
type Refresher interface {
	Records() []ranges.Record
	RefreshChild(childPath, content string) error
}

// ChildReader reads a child document.
type ChildReader interface {
	ReadChildContent(ctx context.Context, childPath string) (string, error)
}

// PathMapper converts between library paths and OS paths.
type PathMapper interface {
	Resolve(libraryPath string) string
	Rel(osPath string) (string, error)
}

// ChildWatcher keeps the projection of an open host current while its
// children are edited elsewhere.
type ChildWatcher struct {
	host   Refresher
	reader ChildReader
	paths  PathMapper
	inner  Watcher
	logger *zap.Logger

	mu      sync.Mutex
	folders map[string]bool
	onLoad  func(childPath string, err error)
}

// ChildOption configures a ChildWatcher.
type ChildOption func(*ChildWatcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ChildOption {
	return func(cw *ChildWatcher) {
		cw.logger = l
	}
}

// WithReloadHook calls fn after each reload attempt.
func WithReloadHook(fn func(childPath string, err error)) ChildOption {
	return func(cw *ChildWatcher) {
		cw.onLoad = fn
	}
}

// NewChildWatcher watches the children of host through inner. The
// ChildWatcher owns inner and closes it.
func NewChildWatcher(host Refresher, reader ChildReader, paths PathMapper, inner Watcher, opts ...ChildOption) *ChildWatcher {
	cw := &ChildWatcher{
		host:    host,
		reader:  reader,
		paths:   paths,
		inner:   inner,
		logger:  zap.NewNop(),
		folders: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cw)
	}
	cw.logger = cw.logger.Named("watcher")
	return cw
}

// Sync watches the folder of every current child and stops watching
// folders no child lives in any more.
func (cw *ChildWatcher) Sync() error {
	want := make(map[string]bool)
	for _, r := range cw.host.Records() {
		want[cw.paths.Resolve(path.Dir(r.ChildPath))] = true
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	var errs []error
	for dir := range want {
		if cw.folders[dir] {
			continue
		}
		if err := cw.inner.Watch(dir); err != nil && !errors.Is(err, ErrAlreadyWatching) {
			errs = append(errs, err)
			continue
		}
		cw.folders[dir] = true
	}
	for dir := range cw.folders {
		if want[dir] {
			continue
		}
		if err := cw.inner.Unwatch(dir); err != nil && !errors.Is(err, ErrNotWatching) {
			errs = append(errs, err)
		}
		delete(cw.folders, dir)
	}
	return errors.Join(errs...)
}

// Run reloads changed children until ctx is done, then closes the watcher.
func (cw *ChildWatcher) Run(ctx context.Context) error {
	defer func() { _ = cw.inner.Close() }()

	if err := cw.Sync(); err != nil {
		cw.logger.Warn("watch children", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-cw.inner.Events():
			if !ok {
				return nil
			}
			cw.handle(ctx, ev)

		case err, ok := <-cw.inner.Errors():
			if !ok {
				return nil
			}
			cw.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (cw *ChildWatcher) handle(ctx context.Context, ev Event) {
	if !ev.Op.Has(OpWrite) && !ev.Op.Has(OpCreate) {
		return
	}
	child, err := cw.paths.Rel(ev.Path)
	if err != nil || !cw.isChild(child) {
		return
	}

	err = cw.reload(ctx, child)
	if err != nil {
		cw.logger.Warn("child reload failed", zap.String("child", child), zap.Error(err))
	} else {
		cw.logger.Debug("child reloaded", zap.String("child", child))
	}
	if cw.onLoad != nil {
		cw.onLoad(child, err)
	}
}

func (cw *ChildWatcher) reload(ctx context.Context, child string) error {
	content, err := cw.reader.ReadChildContent(ctx, child)
	if err != nil {
		return err
	}
	return cw.host.RefreshChild(child, content)
}

func (cw *ChildWatcher) isChild(p string) bool {
	for _, r := range cw.host.Records() {
		if r.ChildPath == p {
			return true
		}
	}
	return false
}
