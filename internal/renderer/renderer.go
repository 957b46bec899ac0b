package renderer

import (
	"fmt"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/keycase/internal/renderer/backend"
)

// Options configures the renderer.
type Options struct {
	TabWidth int

	// ScrollMargin is the number of lines kept visible above and below the
	// cursor.
	ScrollMargin int

	// PickerRows caps the number of picker items shown at once.
	PickerRows int

	// PickerWidth caps the picker box width.
	PickerWidth int

	Theme Theme
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		TabWidth:     4,
		ScrollMargin: 3,
		PickerRows:   10,
		PickerWidth:  72,
		Theme:        DefaultTheme(),
	}
}

// Renderer paints frames on a backend. It remembers the scroll position
// between frames.
type Renderer struct {
	mu      sync.Mutex
	backend backend.Backend
	opts    Options

	top    int // first visible document line
	left   int // first visible document column
	frames uint64
}

// New creates a renderer drawing on b.
func New(b backend.Backend, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.TabWidth <= 0 {
		opts.TabWidth = def.TabWidth
	}
	if opts.ScrollMargin < 0 {
		opts.ScrollMargin = 0
	}
	if opts.PickerRows <= 0 {
		opts.PickerRows = def.PickerRows
	}
	if opts.PickerWidth <= 0 {
		opts.PickerWidth = def.PickerWidth
	}
	return &Renderer{backend: b, opts: opts}
}

// Scroll returns the first visible line and column.
func (r *Renderer) Scroll() (top, left int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.top, r.left
}

// FrameCount returns the number of frames rendered.
func (r *Renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Render paints f and flushes it to the screen.
func (r *Renderer) Render(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width, height := r.backend.Size()
	r.backend.Clear()
	if width <= 0 || height <= 0 {
		r.backend.Show()
		return
	}

	textHeight := height - 1
	cursorX, cursorY := r.drawDocument(f, width, textHeight)
	r.drawStatus(f, width, height-1)

	if f.Picker != nil {
		cursorX, cursorY = r.drawPicker(f.Picker, width, textHeight)
	}

	if cursorX >= 0 && cursorX < width && cursorY >= 0 && cursorY < height {
		r.backend.ShowCursor(cursorX, cursorY)
	} else {
		r.backend.HideCursor()
	}
	r.backend.Show()
	r.frames++
}

// drawDocument paints the visible lines and returns the cursor cell.
func (r *Renderer) drawDocument(f Frame, width, height int) (int, int) {
	if height <= 0 {
		return -1, -1
	}

	cursorLine := clamp(f.CursorLine, 0, max(len(f.Lines)-1, 0))
	line := ""
	if cursorLine < len(f.Lines) {
		line = f.Lines[cursorLine]
	}
	cursorCol := displayColumn(line, f.CursorColumn, r.opts.TabWidth)
	r.scrollTo(cursorLine, cursorCol, width, height)

	for y := 0; y < height; y++ {
		idx := r.top + y
		if idx >= len(f.Lines) {
			break
		}
		drawLine(r.backend, 0, y, width, f.Lines[idx], r.left, r.opts.TabWidth, r.opts.Theme.Text)
	}
	return cursorCol - r.left, cursorLine - r.top
}

// scrollTo adjusts top and left so the cursor cell is visible.
func (r *Renderer) scrollTo(line, col, width, height int) {
	margin := min(r.opts.ScrollMargin, (height-1)/2)
	if line-margin < r.top {
		r.top = max(line-margin, 0)
	}
	if line+margin >= r.top+height {
		r.top = line + margin - height + 1
	}

	if col < r.left {
		r.left = col
	}
	if col >= r.left+width {
		r.left = col - width + 1
	}
}

// drawStatus paints the status line on row y:
//
//	name [+] <style> message            Ln 1, Col 1
func (r *Renderer) drawStatus(f Frame, width, y int) {
	theme := r.opts.Theme
	fill(r.backend, 0, y, width, theme.Status)

	pos := fmt.Sprintf(" Ln %d, Col %d ", f.CursorLine+1, f.CursorColumn+1)
	right := width - runewidth.StringWidth(pos)
	if right < 0 {
		right = width
	}

	name := " " + f.Name
	if f.Modified {
		name += " [+]"
	}
	x := drawText(r.backend, 0, y, right, name+" ", theme.Status, nil, theme.Status)

	if f.Style != "" {
		x = drawText(r.backend, x, y, right, " "+f.Style+" ", theme.StatusStyle, nil, theme.StatusStyle)
		x++
	}

	if f.Message != "" {
		st := theme.Status
		if f.IsError {
			st = theme.StatusError
		}
		msg := runewidth.Truncate(f.Message, max(right-x-1, 0), "…")
		drawText(r.backend, x, y, right, msg, st, nil, st)
	}

	if right < width {
		drawText(r.backend, right, y, width, pos, theme.Status, nil, theme.Status)
	}
}

// drawPicker paints the picker box over the document area and returns the
// cursor cell at the end of the query.
func (r *Renderer) drawPicker(p *PickerFrame, width, height int) (int, int) {
	theme := r.opts.Theme

	boxWidth := min(r.opts.PickerWidth, width-2)
	rows := min(r.opts.PickerRows, max(len(p.Items), 1))
	rows = min(rows, height-4)
	if boxWidth < 10 || rows < 1 {
		return -1, -1
	}

	x0 := (width - boxWidth) / 2
	y0 := 1
	x1 := x0 + boxWidth - 1
	inner := x0 + 1

	// Frame
	r.hline(x0, y0, x1, '┌', '┐', theme.Border)
	drawText(r.backend, x0+2, y0, x1-1, " "+p.Title+" ", theme.Border.Bold(), nil, theme.Border)
	for y := y0 + 1; y < y0+rows+2; y++ {
		r.backend.SetContent(x0, y, '│', theme.Border)
		r.backend.SetContent(x1, y, '│', theme.Border)
		fill(r.backend, inner, y, x1, theme.Item)
	}
	r.hline(x0, y0+rows+2, x1, '└', '┘', theme.Border)

	// Query
	qy := y0 + 1
	cursorX := drawText(r.backend, inner+1, qy, x1-1, "> "+p.Query, theme.Item, nil, theme.Item)

	// Items
	if len(p.Items) == 0 {
		drawText(r.backend, inner+1, qy+1, x1-1, "No matching commands", theme.Hint, nil, theme.Hint)
		return cursorX, qy
	}

	first := 0
	if p.Selected >= rows {
		first = p.Selected - rows + 1
	}
	for i := 0; i < rows && first+i < len(p.Items); i++ {
		idx := first + i
		r.drawPickerItem(p.Items[idx], idx == p.Selected, inner, qy+1+i, x1)
	}
	return cursorX, qy
}

func (r *Renderer) drawPickerItem(item PickerItem, selected bool, x, y, maxX int) {
	theme := r.opts.Theme
	st, match, hint := theme.Item, theme.Match, theme.Hint
	if selected {
		st, match, hint = theme.Selected, theme.Selected.Bold(), theme.Selected
		fill(r.backend, x, y, maxX, st)
	}

	end := maxX - 1
	if item.Keybinding != "" {
		kb := item.Keybinding + " "
		if kx := maxX - runewidth.StringWidth(kb); kx > x+1 {
			drawText(r.backend, kx, y, maxX, kb, hint, nil, hint)
			end = kx - 1
		}
	}

	next := drawText(r.backend, x+1, y, end, item.Title, st, matchSet(item.Title, item.Matches), match)
	if item.Description != "" && next+2 < end {
		desc := runewidth.Truncate(item.Description, end-next-2, "…")
		drawText(r.backend, next+2, y, end, desc, hint, nil, hint)
	}
}

// hline draws a horizontal border with corner runes.
func (r *Renderer) hline(x0, y, x1 int, left, right rune, style backend.Style) {
	r.backend.SetContent(x0, y, left, style)
	for x := x0 + 1; x < x1; x++ {
		r.backend.SetContent(x, y, '─', style)
	}
	r.backend.SetContent(x1, y, right, style)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
