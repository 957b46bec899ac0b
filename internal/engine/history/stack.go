package history

import (
	"errors"
	"sync"

	"github.com/dshills/keycase/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []Operation
	redoStack []Operation

	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records an operation and clears the redo stack.
func (h *History) Push(op Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, op)
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the last operation on buf and returns the edit it applied.
// The lock is released while the buffer is edited.
func (h *History) Undo(buf *buffer.Buffer) (buffer.Edit, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return buffer.Edit{}, ErrNothingToUndo
	}
	op := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	edit := op.Inverse()
	if _, err := buf.ApplyEdit(edit); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, op)
		h.mu.Unlock()
		return buffer.Edit{}, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, op)
	h.mu.Unlock()
	return edit, nil
}

// Redo applies the last undone operation again.
func (h *History) Redo(buf *buffer.Buffer) (buffer.Edit, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return buffer.Edit{}, ErrNothingToRedo
	}
	op := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	edit := op.Forward()
	if _, err := buf.ApplyEdit(edit); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, op)
		h.mu.Unlock()
		return buffer.Edit{}, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, op)
	h.mu.Unlock()
	return edit, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
}
