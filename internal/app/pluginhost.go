package app

import (
	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
	"github.com/dshills/keycase/internal/plugin/lua"
)

const sourcePlugin = "plugin"

// pluginHost exposes the application to the Lua keycase module.
type pluginHost struct {
	app *Application
}

var _ lua.Host = (*pluginHost)(nil)

func (h *pluginHost) StartStyle(name string) error {
	style, err := casing.ParseStyle(name)
	if err != nil {
		return err
	}
	return h.app.startStyle(style)
}

func (h *pluginHost) StopSession() bool {
	return h.app.sessions.Stop()
}

func (h *pluginHost) ActiveStyle() (string, bool) {
	s, ok := h.app.sessions.Current()
	if !ok {
		return "", false
	}
	return s.Style().String(), true
}

func (h *pluginHost) Bind(keys, command string) error {
	err := h.app.keymaps.Bind(keymap.PluginName, keymap.PriorityPlugin,
		keymap.NewBinding(keys, command).WithCategory(CategoryPlugin))
	if err != nil {
		return err
	}
	h.app.refreshKeybindings()
	return nil
}

func (h *pluginHost) Notify(msg string) {
	h.app.notify(msg)
}

func (h *pluginHost) RegisterCommand(id, title string, run func() error) error {
	return h.app.palette.Register(&palette.Command{
		ID:       id,
		Title:    title,
		Category: CategoryPlugin,
		Handler:  run,
		Source:   sourcePlugin,
	})
}
