package renderer

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evthron/Increvise-sub000/internal/engine/buffer"
	"github.com/Evthron/Increvise-sub000/internal/engine/projection"
	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func cellStyle(s tcell.Screen, x, y int) tcell.Style {
	_, _, style, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return style
}

func sampleRows() []projection.Row {
	buf := buffer.NewBufferFromString("h1\nh2\nh3\nh4")
	r := ranges.NewRecord("c.md", 2, 3)
	r.SetContent("c1\nc2")
	return projection.Project([]ranges.Record{r}).Lines(buf)
}

func TestGutterWidth(t *testing.T) {
	assert.Equal(t, 3, GutterWidth(sampleRows()))
	assert.Equal(t, 5, GutterWidth([]projection.Row{{HostLine: 120}}))
}

func TestDrawRowsMarksBlocks(t *testing.T) {
	s := newScreen(t, 20, 6)
	theme := DefaultTheme()

	n := DrawRows(s, sampleRows(), 0, 0, 0, 20, 6, theme)
	require.Equal(t, 4, n)

	assert.Equal(t, "1  h1", rowText(s, 0, 20))
	assert.Equal(t, "2│ c1", rowText(s, 1, 20))
	assert.Equal(t, " │ c2", rowText(s, 2, 20))
	assert.Equal(t, "4  h4", rowText(s, 3, 20))
	assert.Equal(t, "", rowText(s, 4, 20))

	assert.Equal(t, theme.Block, cellStyle(s, 3, 1))
	assert.Equal(t, theme.Host, cellStyle(s, 3, 0))
	assert.Equal(t, theme.BlockGutter, cellStyle(s, 1, 2))
}

func TestDrawTextWideAndTabs(t *testing.T) {
	s := newScreen(t, 10, 1)

	used := drawText(s, "a\tb", 0, 0, 10, tcell.StyleDefault)
	assert.Equal(t, 5, used)
	assert.Equal(t, "a   b", rowText(s, 0, 10))

	clearRow(s, 0, 0, 10)
	used = drawText(s, "日本語", 0, 0, 5, tcell.StyleDefault)
	assert.Equal(t, 4, used, "the third wide rune does not fit")
	assert.Equal(t, 6, DisplayWidth("日本語"))
}

func TestViewerScrollAndQuit(t *testing.T) {
	s := newScreen(t, 20, 3)
	rows := make([]projection.Row, 10)
	for i := range rows {
		rows[i] = projection.Row{Kind: projection.RowHost, HostLine: i + 1, Block: -1, Text: "line"}
	}
	v := NewViewer(s, rows, WithTitle("paper.md"))

	v.Draw()
	assert.Equal(t, " 1  line", rowText(s, 0, 20))
	assert.Contains(t, rowText(s, 2, 20), "paper.md  1-2/10")

	assert.False(t, v.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)))
	assert.Equal(t, 1, v.Top())
	v.HandleKey(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	assert.Equal(t, 8, v.Top())
	v.HandleKey(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	assert.Equal(t, 8, v.Top(), "scrolling stops at the last page")
	v.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone))
	assert.Equal(t, 7, v.Top())
	v.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	assert.Equal(t, 0, v.Top())

	v.SetRows(rows[:1])
	assert.Equal(t, 0, v.Top())

	assert.True(t, v.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, v.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}
