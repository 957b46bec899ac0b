package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/config"
	"github.com/dshills/keycase/internal/event/events"
	"github.com/dshills/keycase/internal/event/topic"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/renderer/backend"
)

// redrawTopics are the events that change what is on screen.
var redrawTopics = []topic.Topic{
	"buffer.content.*",
	events.TopicBufferSaved,
	"session.*",
	events.TopicConfigReloaded,
}

// setupSubscriptions routes notifications to the status line and asks the
// event loop to redraw after changes made off the loop goroutine.
func (app *Application) setupSubscriptions() error {
	sub, err := app.bus.SubscribeFunc(events.TopicUINotify, func(_ context.Context, ev any) error {
		if n, ok := ev.(events.Notification); ok {
			app.status.set(n.Message, n.Level == events.LevelError)
			app.requestRedraw()
		}
		return nil
	})
	if err != nil {
		return err
	}
	app.subs = append(app.subs, sub)

	for _, t := range redrawTopics {
		sub, err := app.bus.SubscribeFunc(t, func(context.Context, any) error {
			app.requestRedraw()
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		app.subs = append(app.subs, sub)
	}
	return nil
}

// requestRedraw wakes the event loop. Requests made while one is pending
// are coalesced.
func (app *Application) requestRedraw() {
	if !app.running.Load() {
		return
	}
	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b == nil || !app.redraw.CompareAndSwap(false, true) {
		return
	}
	b.PostEvent(backend.Event{Type: backend.EventRedraw})
}

// notify shows msg on the status line.
func (app *Application) notify(msg string) {
	app.publishNotification(msg, events.LevelInfo)
}

// notifyError shows msg on the status line as an error.
func (app *Application) notifyError(msg string) {
	app.publishNotification(msg, events.LevelError)
}

func (app *Application) publishNotification(msg string, level events.Level) {
	n := events.Notification{Message: msg, Level: level}
	if err := app.bus.Publish(app.ctx, n); err != nil {
		app.logger.Warn("notify failed", zap.String("message", msg), zap.Error(err))
		app.status.set(msg, level == events.LevelError)
	}
}

// reloadConfig applies a config file change. Only the keymap and the
// notify flag take effect without a restart.
func (app *Application) reloadConfig(cfg *config.Config, err error) {
	defer func() {
		var path string
		if cfg != nil {
			path = cfg.Path
		}
		if perr := app.bus.Publish(app.ctx, events.ConfigReloaded{Path: path, Err: err}); perr != nil {
			app.logger.Debug("publish config reload", zap.Error(perr))
		}
	}()

	if err != nil {
		app.logger.Warn("config reload failed", zap.Error(err))
		app.notifyError(fmt.Sprintf("Config: %v", err))
		return
	}

	if err = keymap.LoadUser(app.keymaps, cfg.Keymap); err != nil {
		app.logger.Warn("config keymap rejected", zap.Error(err))
		app.notifyError(fmt.Sprintf("Config: %v", err))
		return
	}
	app.sessions.SetNotify(cfg.Session.Notify)
	app.refreshKeybindings()

	app.mu.Lock()
	// Settings read only at startup keep their current values.
	cfg.Log = app.config.Log
	cfg.Plugin = app.config.Plugin
	app.config = cfg
	app.mu.Unlock()

	app.logger.Info("config reloaded", zap.Stringer("config", cfg))
	app.notify("Config reloaded")
}
