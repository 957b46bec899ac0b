package input

import (
	"testing"

	"github.com/dshills/keycase/internal/input/key"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	r := keymap.NewRegistry()
	if err := keymap.LoadDefaults(r); err != nil {
		t.Fatal(err)
	}
	p := palette.New()
	for _, c := range []*palette.Command{
		{ID: "case.snake", Title: "snake_case", Category: "Case"},
		{ID: "case.camel", Title: "camelCase", Category: "Case"},
		{ID: "file.save", Title: "Save", Category: "File"},
	} {
		if err := p.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	return NewHandler(r, p, nil)
}

func TestHandleKeyEvent(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		ev   key.Event
		want Action
	}{
		{"bound style", key.NewRuneEvent('s', key.ModAlt), Action{Kind: ActionCommand, Name: "case.snake"}},
		{"bound ctrl", key.NewRuneEvent('S', key.ModCtrl), Action{Kind: ActionCommand, Name: keymap.CommandSave}},
		{"escape stops", key.NewSpecialEvent(key.KeyEscape, key.ModNone), Action{Kind: ActionCommand, Name: keymap.CommandStop}},
		{"letter", key.NewRuneEvent('a', key.ModNone), Action{Kind: ActionInsert, Text: "a"}},
		{"shifted", key.NewRuneEvent('a', key.ModShift), Action{Kind: ActionInsert, Text: "A"}},
		{"space", key.NewRuneEvent(' ', key.ModNone), Action{Kind: ActionInsert, Text: " "}},
		{"enter", key.NewSpecialEvent(key.KeyEnter, key.ModNone), Action{Kind: ActionInsert, Text: "\n"}},
		{"tab", key.NewSpecialEvent(key.KeyTab, key.ModNone), Action{Kind: ActionInsert, Text: "\t"}},
		{"backspace", key.NewSpecialEvent(key.KeyBackspace, key.ModNone), Action{Kind: ActionEdit, Name: EditBackspace}},
		{"home", key.NewSpecialEvent(key.KeyHome, key.ModNone), Action{Kind: ActionEdit, Name: EditLineStart}},
		{"unbound alt", key.NewRuneEvent('j', key.ModAlt), Action{}},
		{"ctrl arrow", key.NewSpecialEvent(key.KeyLeft, key.ModCtrl), Action{}},
	}

	for _, tt := range tests {
		if got := h.HandleKeyEvent(tt.ev); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}

	stats := h.Stats()
	if stats.Keys != 12 || stats.Commands != 3 || stats.Inserts != 5 || stats.Edits != 2 || stats.Ignored != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestHandlePicker(t *testing.T) {
	h := newTestHandler(t)
	pk := h.OpenPicker("Case")
	if h.Picker() != pk {
		t.Fatal("picker should be open")
	}

	if got := h.HandleKeyEvent(key.NewRuneEvent('s', key.ModAlt)); got.Kind != ActionPicker {
		t.Errorf("keys should go to the picker, got %+v", got)
	}
	h.HandleKeyEvent(key.NewSpecialEvent(key.KeyDown, key.ModNone))
	if pk.Current().ID != "case.camel" {
		t.Errorf("expected camel selected, got %s", pk.Current().ID)
	}
	h.HandleKeyEvent(key.NewSpecialEvent(key.KeyTab, key.ModShift))
	if pk.Current().ID != "case.snake" {
		t.Errorf("expected snake selected, got %s", pk.Current().ID)
	}

	got := h.HandleKeyEvent(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	want := Action{Kind: ActionCommand, Name: "case.snake", Source: SourcePalette}
	if got != want {
		t.Errorf("enter should accept, got %+v", got)
	}
	if h.Picker() != nil {
		t.Error("accepting should close the picker")
	}
}

func TestHandlePickerTypingAndEscape(t *testing.T) {
	h := newTestHandler(t)
	pk := h.OpenPicker("")

	for _, r := range "sav" {
		h.HandleKeyEvent(key.NewRuneEvent(r, key.ModNone))
	}
	if pk.Query() != "sav" || pk.Current().ID != "file.save" {
		t.Errorf("expected save for %q", pk.Query())
	}
	h.HandleKeyEvent(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	if pk.Query() != "sa" {
		t.Errorf("backspace should edit the query, got %q", pk.Query())
	}

	if got := h.HandleKeyEvent(key.NewSpecialEvent(key.KeyEscape, key.ModNone)); got.Kind != ActionPicker {
		t.Errorf("escape should close the picker, got %+v", got)
	}
	if h.Picker() != nil {
		t.Error("picker should be closed")
	}
	if got := h.HandleKeyEvent(key.NewSpecialEvent(key.KeyEscape, key.ModNone)); got.Name != keymap.CommandStop {
		t.Errorf("escape without a picker should stop the session, got %+v", got)
	}

	h.OpenPicker("")
	h.ClosePicker()
	if h.Picker() != nil {
		t.Error("ClosePicker should close the picker")
	}
}

func TestHandlePickerEnterWithoutResults(t *testing.T) {
	h := newTestHandler(t)
	h.OpenPicker("")
	for _, r := range "zzz" {
		h.HandleKeyEvent(key.NewRuneEvent(r, key.ModNone))
	}
	if got := h.HandleKeyEvent(key.NewSpecialEvent(key.KeyEnter, key.ModNone)); got.Kind != ActionPicker {
		t.Errorf("enter with no results should just close, got %+v", got)
	}
	if h.Picker() != nil {
		t.Error("picker should be closed")
	}
}

func TestActionKindString(t *testing.T) {
	if ActionCommand.String() != "command" || ActionKind(99).String() != "unknown" {
		t.Error("unexpected kind names")
	}
	if SourcePalette.String() != "palette" {
		t.Error("unexpected source name")
	}
}
