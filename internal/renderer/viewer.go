package renderer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/Evthron/Increvise-sub000/internal/engine/projection"
)

// Viewer is a scrolling, read-only view of projection rows with a status
// line.
type Viewer struct {
	screen tcell.Screen
	rows   []projection.Row
	theme  Theme
	title  string
	top    int
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithTheme sets the styles.
func WithTheme(t Theme) ViewerOption {
	return func(v *Viewer) {
		v.theme = t
	}
}

// WithTitle sets the status line title.
func WithTitle(title string) ViewerOption {
	return func(v *Viewer) {
		v.title = title
	}
}

// NewViewer creates a viewer of rows on screen. The screen must not be
// initialized yet; Run initializes and finalizes it.
func NewViewer(screen tcell.Screen, rows []projection.Row, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		screen: screen,
		rows:   rows,
		theme:  DefaultTheme(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Top returns the index of the first visible row.
func (v *Viewer) Top() int {
	return v.top
}

// SetRows replaces the rows, keeping the scroll position in range.
func (v *Viewer) SetRows(rows []projection.Row) {
	v.rows = rows
	v.scroll(0)
}

// Draw renders the visible rows and the status line.
func (v *Viewer) Draw() {
	width, height := v.screen.Size()
	if height <= 0 || width <= 0 {
		return
	}
	body := height - 1
	DrawRows(v.screen, v.rows, v.top, 0, 0, width, body, v.theme)

	last := min(v.top+body, len(v.rows))
	status := fmt.Sprintf(" %s  %d-%d/%d ", v.title, min(v.top+1, last), last, len(v.rows))
	clearRowStyled(v.screen, body, width, v.theme.Status)
	drawText(v.screen, status, 0, body, width, v.theme.Status)
	v.screen.Show()
}

// HandleKey applies a key press and reports whether the viewer should close.
func (v *Viewer) HandleKey(ev *tcell.EventKey) (quit bool) {
	_, height := v.screen.Size()
	page := max(height-2, 1)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.scroll(-1)
	case tcell.KeyDown:
		v.scroll(1)
	case tcell.KeyPgUp:
		v.scroll(-page)
	case tcell.KeyPgDn:
		v.scroll(page)
	case tcell.KeyHome:
		v.top = 0
	case tcell.KeyEnd:
		v.scroll(len(v.rows))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			v.scroll(-1)
		case 'j':
			v.scroll(1)
		}
	}
	return false
}

func (v *Viewer) scroll(delta int) {
	_, height := v.screen.Size()
	maxTop := max(len(v.rows)-(height-1), 0)
	v.top = min(max(v.top+delta, 0), maxTop)
}

// Run initializes the screen, shows the rows until the user quits, and
// finalizes the screen.
func (v *Viewer) Run() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	defer v.screen.Fini()

	v.Draw()
	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
			v.scroll(0)
			v.Draw()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
			v.Draw()
		}
	}
}

func clearRowStyled(s tcell.Screen, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetContent(i, y, ' ', nil, style)
	}
}
