package projection

import (
	"sort"
	"strings"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// RowKind is the kind of a visible row.
type RowKind uint8

const (
	// RowHost is an ordinary host line.
	RowHost RowKind = iota

	// RowBlock is a line of projected child content.
	RowBlock
)

// String returns the string representation of the row kind.
func (k RowKind) String() string {
	if k == RowBlock {
		return "block"
	}
	return "host"
}

// Block is one projected child shown in place of its locked host lines.
type Block struct {
	// Index is the record's position in the range set.
	Index int

	ChildPath  string
	Identifier string

	// Interval is the host interval collapsed to zero height.
	Interval ranges.Interval

	// Lines holds the child content split into rows.
	Lines []string
}

// Height returns the number of rows the block occupies.
func (b Block) Height() int {
	return len(b.Lines)
}

// Row is one visible row of a projected document.
type Row struct {
	Kind RowKind

	// HostLine is the host line the row shows, or the first line of the
	// collapsed interval for block rows.
	HostLine int

	// Block is the block index for block rows, -1 for host rows.
	Block int

	// BlockLine is the 0-indexed row within the block.
	BlockLine int

	Text string
}

// LineSource supplies host line text by 1-indexed line number.
type LineSource interface {
	LineCount() int
	LineText(n int) string
}

// View is the presentation model of a projected document.
type View struct {
	Blocks []Block
}

// Project builds the view of records, which must already be validated.
// Records without loaded content show their host lines unchanged.
func Project(records []ranges.Record) View {
	var v View
	for i, r := range records {
		if !r.Loaded {
			continue
		}
		v.Blocks = append(v.Blocks, Block{
			Index:      i,
			ChildPath:  r.ChildPath,
			Identifier: r.Identifier,
			Interval:   r.Current(),
			Lines:      strings.Split(r.ChildContent, "\n"),
		})
	}
	return v
}

// IsEmpty reports whether the view projects nothing.
func (v View) IsEmpty() bool {
	return len(v.Blocks) == 0
}

// BlockAt returns the block whose collapsed interval contains host line.
func (v View) BlockAt(line int) (Block, bool) {
	i := sort.Search(len(v.Blocks), func(i int) bool {
		return v.Blocks[i].Interval.End >= line
	})
	if i < len(v.Blocks) && v.Blocks[i].Interval.Contains(line) {
		return v.Blocks[i], true
	}
	return Block{}, false
}

// Lines returns the visible rows: host lines outside blocks, and each
// block's rows in place of its collapsed interval.
func (v View) Lines(src LineSource) []Row {
	n := src.LineCount()
	rows := make([]Row, 0, n)
	next := 0
	for line := 1; line <= n; line++ {
		if next < len(v.Blocks) && v.Blocks[next].Interval.Start == line {
			b := v.Blocks[next]
			for j, text := range b.Lines {
				rows = append(rows, Row{Kind: RowBlock, HostLine: line, Block: next, BlockLine: j, Text: text})
			}
			line = b.Interval.End
			next++
			continue
		}
		rows = append(rows, Row{Kind: RowHost, HostLine: line, Block: -1, Text: src.LineText(line)})
	}
	return rows
}

// VisibleText returns the rows of Lines joined by newlines.
func (v View) VisibleText(src LineSource) string {
	rows := v.Lines(src)
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = r.Text
	}
	return strings.Join(parts, "\n")
}
