// Package input routes key presses.
//
// A Handler turns each key.Event into an Action: keys bound in the keymap
// become command actions, printable characters become text inserts, and
// editing keys (Backspace, arrows) become edit actions. While a palette
// picker is open every key goes to the picker instead.
//
// The Handler does not execute anything. The application dispatches the
// returned Action.
package input
