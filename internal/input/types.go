package input

// ActionKind classifies an Action.
type ActionKind uint8

const (
	// ActionNone means the key was ignored.
	ActionNone ActionKind = iota
	// ActionCommand runs the command named by Action.Name.
	ActionCommand
	// ActionInsert types Action.Text into the document.
	ActionInsert
	// ActionEdit runs a built-in editing operation named by Action.Name.
	ActionEdit
	// ActionPicker means the open picker consumed the key.
	ActionPicker
)

// String returns a human-readable name for the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionCommand:
		return "command"
	case ActionInsert:
		return "insert"
	case ActionEdit:
		return "edit"
	case ActionPicker:
		return "picker"
	default:
		return "unknown"
	}
}

// ActionSource indicates where an action originated.
type ActionSource uint8

const (
	// SourceKeyboard is a key press.
	SourceKeyboard ActionSource = iota
	// SourcePalette is a command accepted in the palette.
	SourcePalette
)

// String returns a human-readable name for the source.
func (s ActionSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourcePalette:
		return "palette"
	default:
		return "unknown"
	}
}

// Built-in editing operations carried by ActionEdit.
const (
	EditBackspace = "edit.backspace"
	EditDelete    = "edit.delete"
	EditLeft      = "cursor.left"
	EditRight     = "cursor.right"
	EditUp        = "cursor.up"
	EditDown      = "cursor.down"
	EditLineStart = "cursor.lineStart"
	EditLineEnd   = "cursor.lineEnd"
)

// Action is what a key press asks the application to do.
type Action struct {
	Kind ActionKind

	// Name is the command ID or edit operation.
	Name string

	// Text is the text to insert for ActionInsert.
	Text string

	// Source indicates where this action originated.
	Source ActionSource
}
