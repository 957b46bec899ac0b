package app

import (
	"errors"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/editor"
	"github.com/dshills/keycase/internal/input"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/renderer"
	"github.com/dshills/keycase/internal/renderer/backend"
)

// editOps maps the handler's built-in edit names to document operations.
var editOps = map[string]func(*editor.Document) error{
	input.EditBackspace: (*editor.Document).Backspace,
	input.EditDelete:    (*editor.Document).DeleteForward,
	input.EditLeft:      motion((*editor.Document).MoveLeft),
	input.EditRight:     motion((*editor.Document).MoveRight),
	input.EditUp:        motion((*editor.Document).MoveUp),
	input.EditDown:      motion((*editor.Document).MoveDown),
	input.EditLineStart: motion((*editor.Document).MoveLineStart),
	input.EditLineEnd:   motion((*editor.Document).MoveLineEnd),
}

func motion(move func(*editor.Document)) func(*editor.Document) error {
	return func(d *editor.Document) error {
		move(d)
		return nil
	}
}

// eventLoop polls the backend until quit or shutdown.
func (app *Application) eventLoop() error {
	b := app.backend
	app.render()

	for {
		if app.stopping() {
			return nil
		}

		ev := b.PollEvent()
		if app.stopping() {
			return nil
		}

		if err := app.handleBackendEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				app.logger.Info("quit requested")
			}
			return err
		}
		app.render()
	}
}

func (app *Application) stopping() bool {
	select {
	case <-app.done:
		return true
	default:
		return false
	}
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventRedraw:
		app.redraw.Store(false)
		return nil
	case backend.EventResize:
		// Render reads the new size.
		return nil
	default:
		return nil
	}
}

// handleKeyEvent routes a key press through the input handler.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	action := app.input.HandleKeyEvent(ev.Key)
	if action.Kind != input.ActionCommand || action.Name != keymap.CommandQuit {
		app.quitArmed = false
	}

	switch action.Kind {
	case input.ActionCommand:
		return app.executeCommand(action.Name)
	case input.ActionInsert:
		return app.withDocument("insert", func(d *editor.Document) error {
			return d.Insert(action.Text)
		})
	case input.ActionEdit:
		op, ok := editOps[action.Name]
		if !ok {
			app.logger.Debug("unknown edit", zap.String("edit", action.Name))
			return nil
		}
		return app.withDocument(action.Name, op)
	default:
		return nil
	}
}

// withDocument applies fn to the active document. Errors are logged; typing
// never stops the loop.
func (app *Application) withDocument(op string, fn func(*editor.Document) error) error {
	doc := app.documents.Active()
	if doc == nil {
		return nil
	}
	if err := fn(doc); err != nil {
		app.logger.Warn("edit failed", zap.String("op", op), zap.String("document", doc.ID()), zap.Error(err))
	}
	return nil
}

// render draws the current frame. It runs on the event loop goroutine.
func (app *Application) render() {
	app.mu.RLock()
	r := app.renderer
	app.mu.RUnlock()
	if r == nil {
		return
	}
	r.Render(app.buildFrame())
}

// buildFrame snapshots the active document, session, status and picker.
func (app *Application) buildFrame() renderer.Frame {
	var f renderer.Frame
	f.Message, f.IsError = app.status.get()

	if doc := app.documents.Active(); doc != nil {
		p := doc.CursorPoint()
		f.Lines = doc.Lines()
		f.CursorLine = int(p.Line)
		f.CursorColumn = int(p.Column)
		f.Name = doc.Name()
		f.Modified = doc.IsModified()

		if s, ok := app.sessions.Current(); ok && s.SurfaceID() == doc.ID() && s.Style() != casing.StyleBase {
			f.Style = s.Style().String()
		}
	}

	if pk := app.input.Picker(); pk != nil {
		title := pk.Category()
		if title == "" {
			title = "Commands"
		}
		pf := &renderer.PickerFrame{
			Title:    title,
			Query:    pk.Query(),
			Selected: pk.Selected(),
		}
		for _, res := range pk.Results() {
			pf.Items = append(pf.Items, renderer.PickerItem{
				Title:       res.Command.Title,
				Description: res.Command.Description,
				Keybinding:  res.Command.Keybinding,
				Matches:     res.Matches,
			})
		}
		f.Picker = pf
	}
	return f
}
