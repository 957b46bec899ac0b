package renderer

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/keycase/internal/renderer/backend"
)

// cellWidth returns the display width of r at column col.
func cellWidth(r rune, col, tabWidth int) int {
	if r == '\t' {
		return tabWidth - col%tabWidth
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	// Control and zero-width runes are drawn as a single replacement cell.
	return 1
}

// displayColumn returns the screen column of byte offset off in line.
func displayColumn(line string, off, tabWidth int) int {
	col := 0
	for i, r := range line {
		if i >= off {
			break
		}
		col += cellWidth(r, col, tabWidth)
	}
	return col
}

// drawLine paints line starting at document column left into the screen
// row y between x and maxX.
func drawLine(b backend.Backend, x, y, maxX int, line string, left, tabWidth int, style backend.Style) {
	col := 0
	for _, r := range line {
		w := cellWidth(r, col, tabWidth)
		start := col - left + x
		col += w
		if start < x {
			continue
		}
		if start+w > maxX {
			return
		}
		switch {
		case r == '\t':
			for i := 0; i < w; i++ {
				b.SetContent(start+i, y, ' ', style)
			}
		case runewidth.RuneWidth(r) == 0:
			b.SetContent(start, y, '�', style)
		default:
			b.SetContent(start, y, r, style)
		}
	}
}

// drawText paints s at (x, y) without passing maxX and returns the column
// after the last cell drawn. Runes whose byte index is in highlight use
// hl instead of style.
func drawText(b backend.Backend, x, y, maxX int, s string, style backend.Style, highlight map[int]bool, hl backend.Style) int {
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		st := style
		if highlight[i] {
			st = hl
		}
		b.SetContent(x, y, r, st)
		x += w
	}
	return x
}

// fill paints the cells [x, maxX) of row y with blanks.
func fill(b backend.Backend, x, y, maxX int, style backend.Style) {
	for ; x < maxX; x++ {
		b.SetContent(x, y, ' ', style)
	}
}

// matchSet converts byte indices into a lookup set, dropping indices
// outside s.
func matchSet(s string, matches []int) map[int]bool {
	if len(matches) == 0 {
		return nil
	}
	set := make(map[int]bool, len(matches))
	for _, m := range matches {
		if m >= 0 && m < len(s) {
			set[m] = true
		}
	}
	return set
}
