package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/config"
	"github.com/dshills/keycase/internal/editor"
	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/input"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
	"github.com/dshills/keycase/internal/plugin/lua"
	"github.com/dshills/keycase/internal/session"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string

	// configErr is a config problem reported once the status line exists.
	configErr error
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 10),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,        // 1. Config, falling back to defaults
		b.initLogger,        // 2. Logger from config
		b.initEventBus,      // 3. Event bus
		b.initSubscriptions, // 4. Status line and redraw subscriptions
		b.initWatcher,       // 5. Config reload
		b.initDocuments,     // 6. Files from the command line
		b.initSessions,      // 7. Surface and session manager
		b.initInput,         // 8. Keymaps, palette commands and key handler
		b.initPlugins,       // 9. Lua init script
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}

	if b.configErr != nil {
		b.app.notifyError(fmt.Sprintf("Config: %v", b.configErr))
	}
	return nil
}

// initConfig loads the config file. An unusable file is reported and the
// defaults are used instead.
func (b *bootstrapper) initConfig() error {
	path := b.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		b.configErr = err
		cfg = config.Default()
		cfg.Path = path
	}
	if cfg.Path == "" {
		cfg.Path = path
	}
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger builds the application logger.
func (b *bootstrapper) initLogger() error {
	if b.opts.Logger != nil {
		b.app.logger = b.opts.Logger
		b.initOrder = append(b.initOrder, "logger")
		return nil
	}

	level := b.app.config.Log.Level
	if b.opts.LogLevel != "" {
		level = b.opts.LogLevel
	}
	logger, err := NewLogger(level, b.app.config.LogFile())
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logger = logger
	b.initOrder = append(b.initOrder, "logger")

	if b.configErr != nil {
		logger.Warn("using default config", zap.String("path", b.app.config.Path), zap.Error(b.configErr))
	} else {
		logger.Debug("config loaded", zap.Stringer("config", b.app.config))
	}
	return nil
}

// initEventBus initializes the event bus.
func (b *bootstrapper) initEventBus() error {
	logger := b.app.logger.Named("event")
	b.app.bus = event.NewBus(event.WithPanicHandler(func(ev any, recovered any) {
		logger.Error("handler panic",
			zap.String("event", fmt.Sprintf("%T", ev)),
			zap.Any("panic", recovered),
		)
	}))
	if err := b.app.bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	b.initOrder = append(b.initOrder, "eventBus")
	return nil
}

// initSubscriptions registers the application's own event handlers.
func (b *bootstrapper) initSubscriptions() error {
	if err := b.app.setupSubscriptions(); err != nil {
		return &InitError{Component: "subscriptions", Err: err}
	}
	b.initOrder = append(b.initOrder, "subscriptions")
	return nil
}

// initWatcher starts watching the config file. A missing config directory
// only disables reloading.
func (b *bootstrapper) initWatcher() error {
	path := b.app.config.Path
	if !b.opts.Watch || path == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		b.app.logger.Info("config reload disabled", zap.String("path", path), zap.Error(err))
		return nil
	}

	w, err := config.NewWatcher(path, b.app.reloadConfig, config.WithWatcherLogger(b.app.logger))
	if err != nil {
		b.app.logger.Warn("config watcher failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

// initDocuments opens the files named on the command line, or a scratch
// document when there are none.
func (b *bootstrapper) initDocuments() error {
	b.app.documents = editor.NewDocumentManager(b.app.bus)

	var first *editor.Document
	for _, path := range b.opts.Files {
		doc, err := b.app.documents.Open(path)
		if err != nil {
			return &InitError{Component: "documents", Err: fmt.Errorf("open %s: %w", path, err)}
		}
		if first == nil {
			first = doc
		}
	}
	if first == nil {
		b.app.documents.CreateScratch()
	} else {
		// Opening makes each file active in turn; start on the first one.
		for b.app.documents.Active() != first {
			b.app.documents.Next()
		}
	}
	b.initOrder = append(b.initOrder, "documents")
	return nil
}

// initSessions creates the editor surface and the session manager.
func (b *bootstrapper) initSessions() error {
	b.app.surface = editor.NewSurface(b.app.documents, b.app.bus, b.app.logger)
	b.app.sessions = session.NewManager(b.app.surface,
		session.WithLogger(b.app.logger),
		session.WithPublisher(b.app.bus),
		session.WithRunContext(b.app.ctx),
	)
	b.app.sessions.SetNotify(b.app.config.Session.Notify)
	b.initOrder = append(b.initOrder, "sessions")
	return nil
}

// initInput loads the keymaps, registers the palette commands and creates
// the key handler.
func (b *bootstrapper) initInput() error {
	b.app.keymaps = keymap.NewRegistry()
	if err := keymap.LoadDefaults(b.app.keymaps); err != nil {
		return &InitError{Component: "keymap", Err: err}
	}
	if err := keymap.LoadUser(b.app.keymaps, b.app.config.Keymap); err != nil {
		// Config validation already rejects bad key specs; anything else is
		// reported and the defaults stay in effect.
		b.configErr = errors.Join(b.configErr, err)
	}

	b.app.palette = palette.New()
	if err := b.app.palette.RegisterAll(b.app.builtinCommands()); err != nil {
		return &InitError{Component: "palette", Err: err}
	}
	b.app.refreshKeybindings()
	b.app.palette.OnChange(b.app.refreshKeybindings)

	b.app.input = input.NewHandler(b.app.keymaps, b.app.palette, b.app.logger)
	b.initOrder = append(b.initOrder, "input")
	return nil
}

// initPlugins runs the Lua init script. Script errors are reported on the
// status line and do not stop startup.
func (b *bootstrapper) initPlugins() error {
	if !b.app.config.Plugin.Enabled {
		return nil
	}

	b.app.plugins = lua.NewRuntime(&pluginHost{app: b.app}, b.app.bus, b.app.logger)
	b.initOrder = append(b.initOrder, "plugins")

	script := b.app.config.InitScript()
	if script == "" {
		return nil
	}
	if _, err := os.Stat(script); err != nil {
		b.app.logger.Info("no init script", zap.String("path", script))
		return nil
	}
	if err := b.app.plugins.LoadFile(script); err != nil {
		b.app.logger.Error("init script failed", zap.Error(err))
		b.configErr = errors.Join(b.configErr, err)
	}
	return nil
}

// cleanup releases components initialized so far, in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "plugins":
			_ = b.app.plugins.Close()
		case "sessions":
			b.app.sessions.Stop()
		case "watcher":
			_ = b.app.watcher.Close()
		case "subscriptions":
			for _, sub := range b.app.subs {
				sub.Cancel()
			}
			b.app.subs = nil
		case "eventBus":
			_ = b.app.bus.Stop(b.app.ctx)
		case "logger":
			_ = b.app.logger.Sync()
		}
	}
	b.initOrder = b.initOrder[:0]
}
