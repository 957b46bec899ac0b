package renderer

import "github.com/dshills/keycase/internal/renderer/backend"

// Theme holds the styles the renderer paints with.
type Theme struct {
	Text        backend.Style
	Status      backend.Style
	StatusStyle backend.Style // active session badge
	StatusError backend.Style
	Border      backend.Style
	Item        backend.Style
	Selected    backend.Style
	Match       backend.Style
	Hint        backend.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	base := backend.DefaultStyle()
	return Theme{
		Text:        base,
		Status:      base.Reverse(),
		StatusStyle: base.Bold().WithBackground(backend.ColorGreen).WithForeground(backend.ColorBlack),
		StatusError: base.Bold().WithBackground(backend.ColorRed).WithForeground(backend.ColorWhite),
		Border:      base.WithForeground(backend.ColorGray),
		Item:        base,
		Selected:    base.Reverse(),
		Match:       base.Bold().Underline(),
		Hint:        base.Dim(),
	}
}
