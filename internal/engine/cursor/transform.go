package cursor

import "github.com/dshills/keycase/internal/engine/buffer"

// TransformOffset updates an offset after an edit.
//
//   - edit entirely before offset: shift by the edit's delta
//   - edit starting at or after offset: unchanged
//   - edit spanning offset: move to the end of the new text
func TransformOffset(offset ByteOffset, edit buffer.Edit) ByteOffset {
	if edit.Range.End <= offset {
		return offset + edit.Delta()
	}
	if edit.Range.Start >= offset {
		return offset
	}
	return edit.Range.Start + ByteOffset(len(edit.NewText))
}

// TransformOffsetSticky is TransformOffset with a choice for insertions
// exactly at offset: sticky offsets stay before the inserted text, others
// move past it.
func TransformOffsetSticky(offset ByteOffset, edit buffer.Edit, sticky bool) ByteOffset {
	if edit.IsInsert() && edit.Range.Start == offset {
		if sticky {
			return offset
		}
		return offset + ByteOffset(len(edit.NewText))
	}
	return TransformOffset(offset, edit)
}

// TransformCursor updates a cursor after an edit.
func TransformCursor(c Cursor, edit buffer.Edit) Cursor {
	return NewCursor(TransformOffset(c.offset, edit))
}
