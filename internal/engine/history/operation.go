package history

import (
	"time"

	"github.com/dshills/keycase/internal/engine/buffer"
)

// ByteOffset is an alias for buffer.ByteOffset for convenience.
type ByteOffset = buffer.ByteOffset

// Operation is one recorded edit.
type Operation struct {
	// Offset is where the edit started.
	Offset ByteOffset
	// OldText is the text the edit removed.
	OldText string
	// NewText is the text the edit inserted.
	NewText string
	// Timestamp is when the edit was recorded.
	Timestamp time.Time
}

// NewOperation creates an operation.
func NewOperation(offset ByteOffset, oldText, newText string) Operation {
	return Operation{
		Offset:    offset,
		OldText:   oldText,
		NewText:   newText,
		Timestamp: time.Now(),
	}
}

// FromResult records an edit the buffer already applied.
func FromResult(res buffer.EditResult, newText string) Operation {
	return NewOperation(res.OldRange.Start, res.OldText, newText)
}

// IsInsert returns true if the operation only inserted text.
func (op Operation) IsInsert() bool {
	return op.OldText == "" && op.NewText != ""
}

// IsDelete returns true if the operation only removed text.
func (op Operation) IsDelete() bool {
	return op.OldText != "" && op.NewText == ""
}

// BytesDelta returns the change in buffer length the operation caused.
func (op Operation) BytesDelta() int {
	return len(op.NewText) - len(op.OldText)
}

// Forward returns the edit that performs the operation.
func (op Operation) Forward() buffer.Edit {
	return buffer.NewEdit(buffer.NewRange(op.Offset, op.Offset+ByteOffset(len(op.OldText))), op.NewText)
}

// Inverse returns the edit that reverts the operation.
func (op Operation) Inverse() buffer.Edit {
	return buffer.NewEdit(buffer.NewRange(op.Offset, op.Offset+ByteOffset(len(op.NewText))), op.OldText)
}
