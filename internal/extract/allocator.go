package extract

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"
)

// SiblingLister lists the entry names of a folder.
type SiblingLister interface {
	ListSiblings(ctx context.Context, folder string) ([]string, error)
}

// Destination is where a new child goes: a folder and the name of the
// document it is extracted from.
type Destination struct {
	// Folder holds the child and its siblings.
	Folder string

	// Name is the host's base name without extension. A leading identifier
	// makes the new child a nested one.
	Name string
}

// DestinationFor returns the destination of children extracted from host:
// "x/name.md" extracts into folder "x/name".
func DestinationFor(host string) Destination {
	stem := strings.TrimSuffix(host, path.Ext(host))
	return Destination{
		Folder: stem,
		Name:   path.Base(stem),
	}
}

// Prefix returns the identifier children of this destination extend.
func (d Destination) Prefix() Identifier {
	id, _ := ParseIdentifier(d.Name)
	return id
}

// Allocation is the name of a new child.
type Allocation struct {
	Identifier Identifier
	Slug       string
	Folder     string
}

// FileName returns "<identifier>-<slug>.md".
func (a Allocation) FileName() string {
	return a.Identifier.String() + "-" + a.Slug + ".md"
}

// Path returns the library path of the child.
func (a Allocation) Path() string {
	return path.Join(a.Folder, a.FileName())
}

// Allocator assigns identifiers from the current sibling listing. Nothing is
// cached between calls.
type Allocator struct {
	lister SiblingLister
	logger *zap.Logger
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithAllocatorLogger sets the logger.
func WithAllocatorLogger(l *zap.Logger) AllocatorOption {
	return func(a *Allocator) {
		a.logger = l
	}
}

// NewAllocator creates an allocator listing siblings through lister.
func NewAllocator(lister SiblingLister, opts ...AllocatorOption) *Allocator {
	a := &Allocator{lister: lister, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate names a new child of dest holding text.
//
// With a destination prefix P the identifier is P extended by one past the
// highest final segment among siblings that extend P by exactly one segment.
// At the top level it is one past the highest first segment of any sibling.
// Siblings whose names carry no identifier are ignored.
func (a *Allocator) Allocate(ctx context.Context, dest Destination, text string) (Allocation, error) {
	names, err := a.lister.ListSiblings(ctx, dest.Folder)
	if err != nil {
		return Allocation{}, fmt.Errorf("%w: list %s: %w", ErrAllocation, dest.Folder, err)
	}

	prefix := dest.Prefix()
	next := 1 + highestSibling(names, prefix)
	alloc := Allocation{
		Identifier: prefix.Child(next),
		Slug:       slugFor(text, dest),
		Folder:     dest.Folder,
	}

	a.logger.Debug("identifier allocated",
		zap.String("folder", dest.Folder),
		zap.Stringer("identifier", alloc.Identifier),
		zap.Int("siblings", len(names)))
	return alloc, nil
}

func highestSibling(names []string, prefix Identifier) int {
	highest := 0
	for _, name := range names {
		id, ok := ParseIdentifier(name)
		if !ok {
			continue
		}
		var n int
		switch {
		case prefix.IsZero():
			n = id[0]
		case len(id) == len(prefix)+1 && id.HasPrefix(prefix):
			n = id.Last()
		default:
			continue
		}
		highest = max(highest, n)
	}
	return highest
}
