package key

import (
	"strings"
	"unicode"
)

// Event is a single key press.
type Event struct {
	// Key identifies the key. KeyRune for character keys.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers holds the modifier keys pressed with the key.
	Modifiers Modifier
}

// NewRuneEvent creates a normalized event for a character key.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}.Normalize()
}

// NewSpecialEvent creates an event for a non-character key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// Normalize folds Shift into the rune of a character event and lowercases
// Ctrl combinations, so that equal key presses compare equal.
func (e Event) Normalize() Event {
	if e.Key != KeyRune {
		return e
	}
	if e.Modifiers.Has(ModShift) && unicode.IsLetter(e.Rune) {
		e.Rune = unicode.ToUpper(e.Rune)
	}
	e.Modifiers = e.Modifiers.Without(ModShift)
	if e.Modifiers.Has(ModCtrl) {
		e.Rune = unicode.ToLower(e.Rune)
	}
	return e
}

// IsRune returns true for a character key.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true for a printable character typed without Ctrl, Alt
// or Meta. Such keys insert text.
func (e Event) IsChar() bool {
	return e.IsRune() && !e.IsModified() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if Ctrl, Alt or Meta is held.
func (e Event) IsModified() bool {
	return e.Modifiers.Without(ModShift) != ModNone
}

// String returns the canonical specification, like "Ctrl+s" or "Alt+C".
func (e Event) String() string {
	var b strings.Builder
	if mods := e.Modifiers.String(); mods != "" {
		b.WriteString(mods)
		b.WriteByte('+')
	}
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		b.WriteString("Space")
	case e.Key == KeyRune:
		b.WriteRune(e.Rune)
	default:
		b.WriteString(e.Key.String())
	}
	return b.String()
}

// Equals returns true if both events describe the same key press.
func (e Event) Equals(other Event) bool {
	a, b := e.Normalize(), other.Normalize()
	return a.Key == b.Key && a.Rune == b.Rune && a.Modifiers == b.Modifiers
}
