package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/event/events"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	publisher     Publisher
	runCtx        context.Context
	notifyEnabled func() bool
}

// WithLogger sets the logger sessions write to.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPublisher publishes session.started and session.ended to p.
func WithPublisher(p Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithRunContext makes the manager run every session it starts on its own
// goroutine until ctx is done. Without it the caller drives sessions with
// Session.Run or Session.Drain.
func WithRunContext(ctx context.Context) Option {
	return func(o *options) {
		o.runCtx = ctx
	}
}

// Manager owns the single active-session slot.
type Manager struct {
	host Host
	opts options

	notify atomic.Bool

	mu      sync.Mutex
	current *Session
}

// NewManager creates a manager for host.
func NewManager(host Host, opts ...Option) *Manager {
	m := &Manager{
		host: host,
		opts: options{logger: zap.NewNop()},
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	m.notify.Store(true)
	m.opts.notifyEnabled = m.notify.Load
	m.opts.logger = m.opts.logger.Named("session")
	return m
}

// SetNotify turns the style and "back to base case" messages on or off.
// Failures are always reported.
func (m *Manager) SetNotify(enabled bool) {
	m.notify.Store(enabled)
}

// Start ends the active session, if any, and starts a new one in style on
// the host's active surface.
func (m *Manager) Start(style casing.Style) (*Session, error) {
	if !style.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStyle, style)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.end(events.EndReplaced)
		m.current = nil
	}

	surfaceID, ok := m.host.ActiveSurface()
	if !ok {
		m.host.Notify(msgNoActiveEditor)
		m.opts.logger.Debug("start refused", zap.String("style", style.String()))
		return nil, ErrNoActiveSurface
	}

	s := newSession(m.host, style, surfaceID, &m.opts)
	if err := s.start(); err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", surfaceID, err)
	}
	m.current = s

	if ctx := m.opts.runCtx; ctx != nil {
		go func() {
			_ = s.Run(ctx)
		}()
	}
	return s, nil
}

// Stop ends the active session. It reports whether one was active.
func (m *Manager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	m.current = nil
	if s == nil {
		return false
	}
	return s.end(events.EndStopped)
}

// StopIf ends the active session if match reports true for it. The check and
// the stop happen under one lock, so a session started concurrently is never
// stopped by mistake. It reports whether a session was ended.
func (m *Manager) StopIf(match func(*Session) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil || !s.Active() || !match(s) {
		return false
	}
	m.current = nil
	return s.end(events.EndStopped)
}

// Current returns the active session.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || !m.current.Active() {
		return nil, false
	}
	return m.current, true
}

// ActiveStyle returns the style of the active session, or StyleBase.
func (m *Manager) ActiveStyle() casing.Style {
	if s, ok := m.Current(); ok {
		return s.Style()
	}
	return casing.StyleBase
}
