package renderer

// Frame is a snapshot of everything on screen.
type Frame struct {
	// Lines holds the document text, one entry per line without the line
	// ending.
	Lines []string

	// CursorLine and CursorColumn locate the cursor. The column is a byte
	// offset into the line.
	CursorLine   int
	CursorColumn int

	// Name is the document's display name.
	Name     string
	Modified bool

	// Style names the active session style. Empty when no session runs.
	Style string

	// Message is the latest notification.
	Message string
	IsError bool

	// Picker is drawn over the document when set.
	Picker *PickerFrame
}

// PickerFrame is the visible state of the command picker.
type PickerFrame struct {
	Title    string
	Query    string
	Items    []PickerItem
	Selected int
}

// PickerItem is one row of the picker.
type PickerItem struct {
	Title       string
	Description string
	Keybinding  string

	// Matches holds byte indices into Title to highlight.
	Matches []int
}
