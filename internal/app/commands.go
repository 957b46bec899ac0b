package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/editor"
	"github.com/dshills/keycase/internal/engine/history"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
	"github.com/dshills/keycase/internal/session"
)

// Command categories. The style menu is the palette restricted to
// CategoryCase.
const (
	CategoryCase    = "Case"
	CategorySession = "Session"
	CategoryFile    = "File"
	CategoryEdit    = "Edit"
	CategoryGeneral = "General"
	CategoryPlugin  = "Plugin"
)

const sourceCore = "core"

// builtinCommands returns the style commands followed by the editor's own.
func (app *Application) builtinCommands() []*palette.Command {
	cmds := make([]*palette.Command, 0, len(casing.Styles())+10)
	for _, s := range casing.Styles() {
		s := s
		cmds = append(cmds, &palette.Command{
			ID:          s.CommandID(),
			Title:       s.String(),
			Description: s.Description(),
			Category:    CategoryCase,
			Handler:     func() error { return app.startStyle(s) },
			Source:      sourceCore,
		})
	}

	core := []struct {
		id, title, desc, category string
		run                       func() error
	}{
		{keymap.CommandStop, "Stop", "Back to base case", CategorySession, app.cmdStop},
		{keymap.CommandMenu, "Case Menu", "Pick a case style", CategorySession, app.cmdMenu},
		{keymap.CommandPalette, "Show All Commands", "Search every command", CategoryGeneral, app.cmdPalette},
		{keymap.CommandSave, "Save", "Write the document to disk", CategoryFile, app.cmdSave},
		{keymap.CommandQuit, "Quit", "Exit keycase", CategoryGeneral, app.cmdQuit},
		{keymap.CommandUndo, "Undo", "Revert the last edit", CategoryEdit, app.cmdUndo},
		{keymap.CommandRedo, "Redo", "Apply the last undone edit", CategoryEdit, app.cmdRedo},
		{keymap.CommandNextDoc, "Next Document", "Switch to the next open document", CategoryFile, app.cmdNextDoc},
		{keymap.CommandPrevDoc, "Previous Document", "Switch to the previous open document", CategoryFile, app.cmdPrevDoc},
		{keymap.CommandCloseDoc, "Close Document", "Close the active document", CategoryFile, app.cmdCloseDoc},
	}
	for _, c := range core {
		cmds = append(cmds, &palette.Command{
			ID:          c.id,
			Title:       c.title,
			Description: c.desc,
			Category:    c.category,
			Handler:     c.run,
			Source:      sourceCore,
		})
	}
	return cmds
}

// refreshKeybindings shows each command's current key in the palette.
func (app *Application) refreshKeybindings() {
	for _, cmd := range app.palette.All() {
		keys, _ := app.keymaps.KeysFor(cmd.ID)
		if keys != cmd.Keybinding {
			app.palette.SetKeybinding(cmd.ID, keys)
		}
	}
}

// executeCommand runs a palette command. Failures are shown on the status
// line; ErrQuit is returned to the event loop.
func (app *Application) executeCommand(id string) error {
	err := app.palette.Execute(id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuit):
		return err
	case errors.Is(err, session.ErrNoActiveSurface):
		// The manager already told the user.
		return nil
	}

	opErr := NewOperationError(id, "", err)
	app.logger.Warn("command failed", zap.String("command", id), zap.Error(err))
	app.notifyError(opErr.Error())
	return nil
}

// startStyle starts an input session in style on the active document.
func (app *Application) startStyle(style casing.Style) error {
	s, err := app.sessions.Start(style)
	if err != nil {
		return err
	}
	app.logger.Debug("session started",
		zap.String("session", s.ID()),
		zap.String("style", style.String()),
		zap.String("document", s.SurfaceID()),
	)
	return nil
}

// startLaunchStyle starts the session requested on the command line or in
// the config.
func (app *Application) startLaunchStyle() {
	name := app.opts.Style
	if name == "" {
		name = app.Config().Session.DefaultStyle
	}
	if name == "" {
		return
	}
	style, err := casing.ParseStyle(name)
	if err != nil {
		app.notifyError(err.Error())
		return
	}
	if err := app.startStyle(style); err != nil && !errors.Is(err, session.ErrNoActiveSurface) {
		app.notifyError(err.Error())
	}
}

func (app *Application) cmdStop() error {
	app.sessions.Stop()
	return nil
}

func (app *Application) cmdMenu() error {
	app.input.OpenPicker(CategoryCase)
	return nil
}

func (app *Application) cmdPalette() error {
	app.input.OpenPicker("")
	return nil
}

func (app *Application) cmdSave() error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if err := doc.Save(); err != nil {
		if errors.Is(err, editor.ErrNoPath) {
			return fmt.Errorf("%s has no file name", doc.Name())
		}
		return err
	}
	app.notify("Saved " + doc.Name())
	return nil
}

// cmdQuit exits. With unsaved changes the first request only warns; a
// second one in a row exits anyway.
func (app *Application) cmdQuit() error {
	if app.documents.HasDirty() && !app.quitArmed {
		app.quitArmed = true
		app.notifyError(fmt.Sprintf("%v, quit again to discard them", ErrUnsavedChanges))
		return nil
	}
	return ErrQuit
}

func (app *Application) cmdUndo() error {
	return app.historyStep((*editor.Document).Undo, history.ErrNothingToUndo)
}

func (app *Application) cmdRedo() error {
	return app.historyStep((*editor.Document).Redo, history.ErrNothingToRedo)
}

func (app *Application) historyStep(step func(*editor.Document) error, empty error) error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if err := step(doc); err != nil {
		if errors.Is(err, empty) {
			app.beep()
			return nil
		}
		return err
	}
	return nil
}

func (app *Application) cmdNextDoc() error {
	app.switchDocument(app.documents.Next())
	return nil
}

func (app *Application) cmdPrevDoc() error {
	app.switchDocument(app.documents.Previous())
	return nil
}

// switchDocument ends a session bound to another document.
func (app *Application) switchDocument(doc *editor.Document) {
	if doc == nil {
		return
	}
	app.sessions.StopIf(func(s *session.Session) bool {
		return s.SurfaceID() != doc.ID()
	})
}

// cmdCloseDoc closes the active document. Closing the last one leaves an
// empty scratch document.
func (app *Application) cmdCloseDoc() error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	app.sessions.StopIf(func(s *session.Session) bool {
		return s.SurfaceID() == doc.ID()
	})
	if err := app.documents.Close(doc.ID()); err != nil {
		return err
	}
	if app.documents.Count() == 0 {
		app.documents.CreateScratch()
	}
	app.notify("Closed " + doc.Name())
	return nil
}

func (app *Application) beep() {
	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b != nil && app.running.Load() {
		b.Beep()
	}
}
