package renderer

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/Evthron/Increvise-sub000/internal/engine/projection"
)

// GutterWidth returns the gutter width for rows: the widest host line number,
// a marker column and a space.
func GutterWidth(rows []projection.Row) int {
	maxLine := 1
	for _, r := range rows {
		maxLine = max(maxLine, r.HostLine)
	}
	return len(strconv.Itoa(maxLine)) + 2
}

// DrawRows draws rows[top:] into the rectangle (x, y, width, height) and
// returns the number of rows drawn.
func DrawRows(s tcell.Screen, rows []projection.Row, top int, x, y, width, height int, theme Theme) int {
	gw := GutterWidth(rows)
	drawn := 0
	for i := top; i < len(rows) && drawn < height; i++ {
		row := rows[i]
		rowY := y + drawn
		clearRow(s, x, rowY, width)
		drawGutter(s, row, x, rowY, gw, theme)

		style := theme.Host
		if row.Kind == projection.RowBlock {
			style = theme.Block
		}
		drawText(s, row.Text, x+gw, rowY, width-gw, style)
		drawn++
	}
	for i := drawn; i < height; i++ {
		clearRow(s, x, y+i, width)
	}
	return drawn
}

func drawGutter(s tcell.Screen, row projection.Row, x, y, width int, theme Theme) {
	numWidth := width - 2
	switch row.Kind {
	case projection.RowBlock:
		// The first row of a block carries its host line number.
		if row.BlockLine == 0 {
			drawText(s, fmt.Sprintf("%*d", numWidth, row.HostLine), x, y, numWidth, theme.BlockGutter)
		}
		s.SetContent(x+numWidth, y, blockMarker, nil, theme.BlockGutter)
	default:
		drawText(s, fmt.Sprintf("%*d", numWidth, row.HostLine), x, y, numWidth, theme.Gutter)
	}
}

// drawText draws text by grapheme cluster, expanding tabs and clipping at
// width. Returns the columns used.
func drawText(s tcell.Screen, text string, x, y, width int, style tcell.Style) int {
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		if runes[0] == '\t' {
			n := tabWidth - col%tabWidth
			for i := 0; i < n && col < width; i++ {
				s.SetContent(x+col, y, ' ', nil, style)
				col++
			}
			continue
		}
		w := g.Width()
		if w == 0 {
			continue
		}
		if col+w > width {
			break
		}
		s.SetContent(x+col, y, runes[0], runes[1:], style)
		col += w
	}
	return col
}

func clearRow(s tcell.Screen, x, y, width int) {
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, tcell.StyleDefault)
	}
}

// DisplayWidth returns the terminal width of text, tabs excluded.
func DisplayWidth(text string) int {
	return uniseg.StringWidth(text)
}
