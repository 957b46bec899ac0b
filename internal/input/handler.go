package input

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/input/key"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
)

var editKeys = map[key.Key]string{
	key.KeyBackspace: EditBackspace,
	key.KeyDelete:    EditDelete,
	key.KeyLeft:      EditLeft,
	key.KeyRight:     EditRight,
	key.KeyUp:        EditUp,
	key.KeyDown:      EditDown,
	key.KeyHome:      EditLineStart,
	key.KeyEnd:       EditLineEnd,
}

// Stats counts the actions a Handler produced.
type Stats struct {
	Keys     uint64
	Commands uint64
	Inserts  uint64
	Edits    uint64
	Ignored  uint64
}

// Handler is the main entry point for key processing.
type Handler struct {
	mu sync.Mutex

	registry *keymap.Registry
	palette  *palette.Palette
	picker   *palette.Picker
	logger   *zap.Logger
	stats    Stats
}

// NewHandler creates a handler resolving keys against registry. Pickers are
// opened over pal.
func NewHandler(registry *keymap.Registry, pal *palette.Palette, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		palette:  pal,
		logger:   logger.Named("input"),
	}
}

// HandleKeyEvent resolves a key press into an action.
func (h *Handler) HandleKeyEvent(ev key.Event) Action {
	h.mu.Lock()
	defer h.mu.Unlock()

	ev = ev.Normalize()
	h.stats.Keys++

	if h.picker != nil {
		return h.pickerKey(ev)
	}

	if b, ok := h.registry.Lookup(ev); ok {
		h.stats.Commands++
		h.logger.Debug("key bound", zap.Stringer("key", ev), zap.String("command", b.Action))
		return Action{Kind: ActionCommand, Name: b.Action}
	}

	switch {
	case ev.IsChar():
		h.stats.Inserts++
		return Action{Kind: ActionInsert, Text: string(ev.Rune)}
	case ev.Modifiers == key.ModNone && ev.Key == key.KeyEnter:
		h.stats.Inserts++
		return Action{Kind: ActionInsert, Text: "\n"}
	case ev.Modifiers == key.ModNone && ev.Key == key.KeyTab:
		h.stats.Inserts++
		return Action{Kind: ActionInsert, Text: "\t"}
	}

	if name, ok := editKeys[ev.Key]; ok && !ev.IsModified() {
		h.stats.Edits++
		return Action{Kind: ActionEdit, Name: name}
	}

	h.stats.Ignored++
	return Action{}
}

// pickerKey must be called with h.mu held.
func (h *Handler) pickerKey(ev key.Event) Action {
	consumed := Action{Kind: ActionPicker}
	switch {
	case ev.Key == key.KeyEscape:
		h.picker = nil
	case ev.Key == key.KeyEnter:
		cmd := h.picker.Current()
		h.picker = nil
		if cmd != nil {
			h.stats.Commands++
			return Action{Kind: ActionCommand, Name: cmd.ID, Source: SourcePalette}
		}
	case ev.Key == key.KeyDown || (ev.Key == key.KeyTab && ev.Modifiers == key.ModNone):
		h.picker.Next()
	case ev.Key == key.KeyUp || (ev.Key == key.KeyTab && ev.Modifiers.Has(key.ModShift)):
		h.picker.Previous()
	case ev.Key == key.KeyBackspace:
		h.picker.Backspace()
	case ev.IsChar():
		h.picker.Type(ev.Rune)
	default:
		h.stats.Ignored++
	}
	return consumed
}

// OpenPicker opens a picker over the palette, restricted to category when
// it is not empty. An open picker is replaced.
func (h *Handler) OpenPicker(category string) *palette.Picker {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.picker = h.palette.Open(category)
	return h.picker
}

// ClosePicker closes the open picker, if any.
func (h *Handler) ClosePicker() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.picker = nil
}

// Picker returns the open picker, or nil.
func (h *Handler) Picker() *palette.Picker {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.picker
}

// Registry returns the keymap registry.
func (h *Handler) Registry() *keymap.Registry {
	return h.registry
}

// Stats returns a snapshot of the handler's counters.
func (h *Handler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
