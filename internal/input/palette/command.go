package palette

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHandler is returned when executing a command without a handler.
var ErrNoHandler = errors.New("command has no handler")

// Handler executes a command.
type Handler func() error

// Command represents a registered command in the palette.
type Command struct {
	// ID is the unique command identifier (e.g., "case.snake").
	ID string

	// Title is the display name shown in the palette.
	Title string

	// Description provides additional context about the command.
	Description string

	// Category groups related commands (e.g., "Case", "File", "Edit").
	Category string

	// Keybinding shows the keyboard shortcut (for display only).
	Keybinding string

	// Handler executes the command.
	Handler Handler

	// Source indicates where the command was registered.
	// e.g., "core", "plugin"
	Source string
}

// Execute runs the command.
func (c *Command) Execute() error {
	if c.Handler == nil {
		return fmt.Errorf("command %q: %w", c.ID, ErrNoHandler)
	}
	return c.Handler()
}

// SearchText returns the title and description joined for display.
func (c *Command) SearchText() string {
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		return c.Title
	}
	return c.Title + " " + desc
}
