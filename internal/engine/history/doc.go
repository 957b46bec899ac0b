// Package history provides undo/redo for a document.
//
// Every applied edit is recorded as an Operation holding the text it
// removed and the text it inserted. Undo applies the inverse edit; redo
// applies the original again:
//
//	h := history.NewHistory(1000)
//	res, _ := buf.ApplyEdit(edit)
//	h.Push(history.FromResult(res, edit.NewText))
//
//	edit, err := h.Undo(buf) // edit is what was applied to buf
//
// Edits written back by an input session are recorded like typed ones, so
// undo steps back through a conversion one replacement at a time.
package history
