package keymap

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key specification that triggers this binding.
	// Formats: "Alt+c", "Ctrl+S", "<C-p>", "Esc"
	Keys string

	// Action is the command to execute, like "case.snake" or "file.save".
	// An empty action unbinds the key.
	Action string

	// Description provides documentation for the binding.
	Description string

	// Category groups bindings for display purposes.
	Category string
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{Keys: keys, Action: action}
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// WithCategory sets the category for this binding.
func (b Binding) WithCategory(category string) Binding {
	b.Category = category
	return b
}

// IsUnbind reports whether the binding masks its key.
func (b Binding) IsUnbind() bool {
	return b.Action == ""
}
