// Package renderer draws the editor screen on a backend.
//
// A Frame is an immutable snapshot of what should be visible: the document
// lines and cursor, the status line fields and an optional picker. Render
// paints a whole frame; the backend keeps its own double buffer so only
// changed cells reach the terminal.
//
//	┌──────────────────────────────────────┐
//	│ document lines                       │
//	│        ┌ Case ──────────────┐        │
//	│        │ > sn               │        │
//	│        │ snake_case  Alt+s  │        │
//	│        └────────────────────┘        │
//	├──────────────────────────────────────┤
//	│ notes.txt [+] snake_case   Ln 1, Col 4│
//	└──────────────────────────────────────┘
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, renderer.DefaultOptions())
//	r.Render(frame)
package renderer
