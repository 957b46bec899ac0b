// Package app wires the keycase components together and runs the editor's
// event loop.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/config"
	"github.com/dshills/keycase/internal/editor"
	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/input"
	"github.com/dshills/keycase/internal/input/keymap"
	"github.com/dshills/keycase/internal/input/palette"
	"github.com/dshills/keycase/internal/plugin/lua"
	"github.com/dshills/keycase/internal/renderer"
	"github.com/dshills/keycase/internal/renderer/backend"
	"github.com/dshills/keycase/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Application is the central coordinator for all keycase components.
type Application struct {
	mu sync.RWMutex

	opts   Options
	logger *zap.Logger

	// Core infrastructure
	bus     event.Bus
	config  *config.Config
	watcher *config.Watcher

	// Editing
	documents *editor.DocumentManager
	surface   *editor.Surface
	sessions  *session.Manager

	// Input
	keymaps *keymap.Registry
	palette *palette.Palette
	input   *input.Handler

	plugins *lua.Runtime

	// Display
	backend  backend.Backend
	renderer *renderer.Renderer
	status   status
	redraw   atomic.Bool

	subs      []event.Subscription
	quitArmed bool

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	running atomic.Bool
	done    chan struct{}
	exited  chan struct{}

	stopOnce    sync.Once
	cleanupOnce sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses config.DefaultPath.
	ConfigPath string

	// Files are files to open on startup.
	Files []string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// Style starts a session in this style on launch. It overrides the
	// configured default style.
	Style string

	// Watch reloads the config file when it changes.
	Watch bool

	// Logger replaces the logger built from config.
	Logger *zap.Logger
}

// status is the latest notification shown on the status line.
type status struct {
	mu      sync.Mutex
	message string
	isError bool
}

func (s *status) set(msg string, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message, s.isError = msg, isError
}

func (s *status) get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.isError
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		cancel()
		return nil, err
	}
	return app, nil
}

// SetBackend sets the terminal backend. Must be called before Run.
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.started.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run starts the event loop and blocks until the user quits or Shutdown is
// called. A quit from the keyboard returns ErrQuit. Run may only be called
// once.
func (app *Application) Run() error {
	if !app.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	app.running.Store(true)
	defer close(app.exited)
	defer app.running.Store(false)

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil {
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	app.mu.Lock()
	app.renderer = renderer.New(b, renderer.DefaultOptions())
	app.mu.Unlock()

	if app.plugins != nil {
		go func() {
			_ = app.plugins.Run(app.ctx)
		}()
	}
	app.startLaunchStyle()

	app.logger.Info("started", zap.Int("documents", app.documents.Count()))
	return app.eventLoop()
}

// Shutdown stops the event loop and releases every component. It is safe
// to call more than once and from any goroutine.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() { close(app.done) })

	if app.running.Load() {
		app.mu.RLock()
		b := app.backend
		app.mu.RUnlock()
		if b != nil {
			b.PostEvent(backend.Event{Type: backend.EventRedraw})
		}
		select {
		case <-app.exited:
		case <-time.After(shutdownTimeout):
			app.logger.Warn("event loop did not stop in time")
		}
	}
	app.cleanupOnce.Do(app.cleanup)
}

// cleanup releases components in reverse initialization order.
func (app *Application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	app.mu.Lock()
	subs := app.subs
	app.subs = nil
	app.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}

	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.plugins != nil {
		_ = app.plugins.Close()
	}
	if app.sessions != nil {
		app.sessions.Stop()
	}
	app.cancel()

	if app.bus != nil {
		if err := app.bus.Stop(ctx); err != nil {
			app.logger.Warn("stop event bus", zap.Error(err))
		}
	}
	app.logger.Info("stopped")
	_ = app.logger.Sync()
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// EventBus returns the event bus.
func (app *Application) EventBus() event.Bus {
	return app.bus
}

// Config returns the current configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Documents returns the document manager.
func (app *Application) Documents() *editor.DocumentManager {
	return app.documents
}

// ActiveDocument returns the active document (may be nil).
func (app *Application) ActiveDocument() *editor.Document {
	return app.documents.Active()
}

// Sessions returns the input session manager.
func (app *Application) Sessions() *session.Manager {
	return app.sessions
}

// Keymaps returns the keymap registry.
func (app *Application) Keymaps() *keymap.Registry {
	return app.keymaps
}

// Palette returns the command palette.
func (app *Application) Palette() *palette.Palette {
	return app.palette
}

// Input returns the key handler.
func (app *Application) Input() *input.Handler {
	return app.input
}

// Plugins returns the Lua runtime (may be nil).
func (app *Application) Plugins() *lua.Runtime {
	return app.plugins
}

// Renderer returns the renderer. It is nil until Run.
func (app *Application) Renderer() *renderer.Renderer {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.renderer
}

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger {
	return app.logger
}

// Status returns the status line message.
func (app *Application) Status() (string, bool) {
	return app.status.get()
}
