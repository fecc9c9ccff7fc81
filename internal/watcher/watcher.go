// Package watcher reloads projected children when their files change.
//
// FolderWatcher reports changes to child documents in the folders children
// live in. DebouncedWatcher merges a burst of changes to one file, so an
// editor's write-rename-chmod sequence produces one reload. ChildWatcher maps
// changes back to the children of an open host and hands their new content
// to the engine.
package watcher

import (
	"errors"
	"strings"
)

var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("folder is already being watched")
	ErrNotWatching     = errors.New("folder is not being watched")
	ErrPathNotExist    = errors.New("folder does not exist")
)

// Op is a set of file changes.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
}

// String joins the names of the changes in op, such as "CREATE|WRITE".
func (op Op) String() string {
	var names []string
	for _, n := range opNames {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Has reports whether op includes every change of o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to one file.
type Event struct {
	// Path is the OS path of the file.
	Path string
	Op   Op
}

// Watcher reports file changes inside folders.
type Watcher interface {
	// Watch reports changes to the files directly inside folder.
	Watch(folder string) error

	// Unwatch stops reporting changes inside folder.
	Unwatch(folder string) error

	// Events and Errors are closed when the watcher is closed.
	Events() <-chan Event
	Errors() <-chan error

	Close() error
}
