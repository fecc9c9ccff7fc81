package renderer

import "github.com/gdamore/tcell/v2"

// Theme holds the styles of the projection display.
type Theme struct {
	Host        tcell.Style
	Block       tcell.Style
	Gutter      tcell.Style
	BlockGutter tcell.Style
	Status      tcell.Style
}

// DefaultTheme returns the default styles.
func DefaultTheme() Theme {
	return Theme{
		Host:        tcell.StyleDefault,
		Block:       tcell.StyleDefault.Dim(true).Italic(true),
		Gutter:      tcell.StyleDefault.Foreground(tcell.ColorGray),
		BlockGutter: tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true),
		Status:      tcell.StyleDefault.Reverse(true),
	}
}

const (
	// blockMarker marks projected rows in the gutter.
	blockMarker = '│'

	// tabWidth is the display width of a tab.
	tabWidth = 4
)
