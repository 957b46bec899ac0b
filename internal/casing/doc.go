// Package casing defines the identifier case styles keycase can type in and
// the per-keystroke transform rules for each of them.
//
// A transform sees exactly one raw input character and the raw character
// typed before it. It never touches a document; it returns a Replacement
// describing which span around the insertion point should be rewritten:
//
//	r := casing.Transform(casing.StyleSnake, " ", "o")
//	// r == Replacement{Start: 0, End: 1, Text: "_"}
//
//	r = casing.Transform(casing.StyleCamel, "w", " ")
//	// r == Replacement{Start: -1, End: 1, Text: "W"}
//
// Offsets in a Replacement are byte offsets relative to the position where
// the input character was inserted.
package casing
