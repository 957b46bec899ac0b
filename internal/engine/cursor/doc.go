// Package cursor tracks the insertion point of a document.
//
// A Cursor is an immutable byte offset. When the buffer changes underneath
// it, TransformCursor moves it the way the edit moved the text:
//
//	c := cursor.NewCursor(10)
//	c = cursor.TransformCursor(c, buffer.NewInsert(2, "abc")) // offset 13
//
// Edits written back by an input session land around the cursor rather
// than at it, so the cursor keeps following the user's typing.
package cursor
