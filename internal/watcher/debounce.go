package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 100 * time.Millisecond

// DebouncedWatcher merges the changes to one file until the file has been
// quiet for the delay, then reports them as one event.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*burst

	flush     chan struct{}
	events    chan Event
	errors    chan error
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// burst is the merged changes to one file and when they are due.
type burst struct {
	op  Op
	due time.Time
}

// NewDebouncedWatcher wraps inner. The DebouncedWatcher owns inner and
// closes it.
func NewDebouncedWatcher(inner Watcher, delay time.Duration) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		pending: make(map[string]*burst),
		flush:   make(chan struct{}),
		events:  make(chan Event, defaultQueue),
		errors:  make(chan error, defaultQueue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go dw.loop()
	return dw
}

func (dw *DebouncedWatcher) Watch(folder string) error   { return dw.inner.Watch(folder) }
func (dw *DebouncedWatcher) Unwatch(folder string) error { return dw.inner.Unwatch(folder) }
func (dw *DebouncedWatcher) Events() <-chan Event        { return dw.events }
func (dw *DebouncedWatcher) Errors() <-chan error        { return dw.errors }

// Close drops pending bursts, then closes the wrapped watcher.
func (dw *DebouncedWatcher) Close() error {
	dw.closeOnce.Do(func() {
		close(dw.done)
		<-dw.stopped
		dw.closeErr = dw.inner.Close()
	})
	return dw.closeErr
}

// Flush reports every pending burst now.
func (dw *DebouncedWatcher) Flush() {
	select {
	case dw.flush <- struct{}{}:
	case <-dw.stopped:
	}
}

// PendingCount returns the number of files with unreported changes.
func (dw *DebouncedWatcher) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

func (dw *DebouncedWatcher) loop() {
	defer close(dw.stopped)
	defer close(dw.errors)
	defer close(dw.events)

	timer := time.NewTimer(dw.delay)
	timer.Stop()
	defer timer.Stop()

	in, errs := dw.inner.Events(), dw.inner.Errors()
	for {
		select {
		case <-dw.done:
			return

		case ev, ok := <-in:
			if !ok {
				dw.report(time.Time{})
				return
			}
			dw.add(ev, time.Now())
			dw.rearm(timer)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case dw.errors <- err:
			default:
			}

		case now := <-timer.C:
			if !dw.report(now) {
				return
			}
			dw.rearm(timer)

		case <-dw.flush:
			if !dw.report(time.Time{}) {
				return
			}
		}
	}
}

func (dw *DebouncedWatcher) add(ev Event, now time.Time) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	b, ok := dw.pending[ev.Path]
	if !ok {
		b = &burst{}
		dw.pending[ev.Path] = b
	}
	b.op |= ev.Op
	b.due = now.Add(dw.delay)
}

// report sends the bursts due at now; the zero time sends all of them. It
// returns false when the watcher closed while sending.
func (dw *DebouncedWatcher) report(now time.Time) bool {
	dw.mu.Lock()
	var due []Event
	for path, b := range dw.pending {
		if now.IsZero() || !b.due.After(now) {
			due = append(due, Event{Path: path, Op: b.op})
			delete(dw.pending, path)
		}
	}
	dw.mu.Unlock()

	for _, ev := range due {
		select {
		case dw.events <- ev:
		case <-dw.done:
			return false
		}
	}
	return true
}

// rearm sets timer to the earliest pending due time.
func (dw *DebouncedWatcher) rearm(timer *time.Timer) {
	dw.mu.Lock()
	var next time.Time
	for _, b := range dw.pending {
		if next.IsZero() || b.due.Before(next) {
			next = b.due
		}
	}
	dw.mu.Unlock()

	if next.IsZero() {
		timer.Stop()
		return
	}
	timer.Reset(max(time.Until(next), time.Millisecond))
}

var _ Watcher = (*DebouncedWatcher)(nil)
