package keymap

import "github.com/dshills/keycase/internal/casing"

// Names of the built-in layers.
const (
	DefaultName = "default"
	UserName    = "user"
	PluginName  = "plugin"
)

// Built-in command IDs that are not style commands.
const (
	CommandStop     = "case.stop"
	CommandMenu     = "case.menu"
	CommandPalette  = "palette.open"
	CommandSave     = "file.save"
	CommandQuit     = "app.quit"
	CommandUndo     = "edit.undo"
	CommandRedo     = "edit.redo"
	CommandNextDoc  = "buffer.next"
	CommandPrevDoc  = "buffer.previous"
	CommandCloseDoc = "buffer.close"
)

var styleKeys = map[casing.Style]string{
	casing.StyleCamel: "Alt+c",
	casing.StyleUpper: "Alt+u",
	casing.StyleKebab: "Alt+k",
	casing.StyleSnake: "Alt+s",
	casing.StyleDot:   "Alt+d",
	casing.StyleBase:  "Alt+b",
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	km := NewKeymap(DefaultName).WithPriority(PriorityDefault).WithSource("default")

	for _, s := range casing.Styles() {
		km.AddBinding(NewBinding(styleKeys[s], s.CommandID()).
			WithDescription("Start " + s.String()).
			WithCategory("Case"))
	}

	for _, b := range []Binding{
		NewBinding("Alt+x", CommandStop).WithDescription("Back to base case").WithCategory("Case"),
		NewBinding("Esc", CommandStop).WithDescription("Back to base case").WithCategory("Case"),
		NewBinding("Ctrl+P", CommandMenu).WithDescription("Pick a case style").WithCategory("Case"),
		NewBinding("F1", CommandPalette).WithDescription("Show all commands").WithCategory("General"),
		NewBinding("Ctrl+S", CommandSave).WithDescription("Save the document").WithCategory("File"),
		NewBinding("Ctrl+Q", CommandQuit).WithDescription("Quit").WithCategory("General"),
		NewBinding("Ctrl+Z", CommandUndo).WithDescription("Undo").WithCategory("Edit"),
		NewBinding("Ctrl+Y", CommandRedo).WithDescription("Redo").WithCategory("Edit"),
		NewBinding("Ctrl+N", CommandNextDoc).WithDescription("Next document").WithCategory("File"),
		NewBinding("Ctrl+B", CommandPrevDoc).WithDescription("Previous document").WithCategory("File"),
		NewBinding("Ctrl+W", CommandCloseDoc).WithDescription("Close the document").WithCategory("File"),
	} {
		km.AddBinding(b)
	}
	return km
}

// LoadDefaults registers the built-in bindings.
func LoadDefaults(r *Registry) error {
	return r.Register(DefaultKeymap())
}

// LoadUser registers the [keymap] config section as the user layer,
// replacing any previous one.
func LoadUser(r *Registry, bindings map[string]string) error {
	km := FromMap(UserName, bindings).WithPriority(PriorityUser).WithSource("config")
	if err := km.Validate(); err != nil {
		return err
	}
	return r.Register(km)
}
