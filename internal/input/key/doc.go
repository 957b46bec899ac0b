// Package key provides key event types and parsing for key bindings.
//
// Key specifications can be written in two formats:
//
//   - With modifiers: "Ctrl+S", "Alt+c", "Ctrl+Shift+P"
//   - Bracketed: "<C-s>", "<A-c>", "<Esc>", "<CR>"
//
// A rune event carries its case in the rune itself, so Shift is folded
// into the rune ("Alt+Shift+c" and "Alt+C" are the same key). Ctrl
// combinations are always lowercase. Event.String returns the canonical
// form used as the key of a keymap.
package key
