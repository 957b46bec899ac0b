package lua

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/event/topic"
)

// ModuleName is the name scripts pass to require.
const ModuleName = "keycase"

// Host is the editor surface the keycase module drives.
type Host interface {
	// StartStyle starts an input session in the named style.
	StartStyle(name string) error
	// StopSession ends the active session and reports whether one was active.
	StopSession() bool
	// ActiveStyle returns the style of the active session.
	ActiveStyle() (string, bool)
	// Bind maps a key spec to a command in the plugin keymap.
	Bind(keys, command string) error
	Notify(msg string)
	// RegisterCommand adds a palette command that calls run.
	RegisterCommand(id, title string, run func() error) error
}

// Subscriber registers bus handlers. event.Bus satisfies it.
type Subscriber interface {
	SubscribeFunc(pattern topic.Topic, fn event.HandlerFunc, opts ...event.SubscriptionOption) (event.Subscription, error)
}

type callback struct {
	fn      *lua.LFunction
	payload map[string]any
}

// Runtime owns the Lua state of the init script and the keycase module.
//
// Bus events for on callbacks are queued and run by Run or Drain, so a
// script may start a session from inside a callback.
type Runtime struct {
	state  *State
	host   Host
	bus    Subscriber
	logger *zap.Logger

	mu     sync.Mutex
	queue  []callback
	wake   chan struct{}
	subs   []event.Subscription
	closed bool
}

// NewRuntime creates a runtime whose scripts drive host. A nil logger
// discards output.
func NewRuntime(host Host, bus Subscriber, logger *zap.Logger, opts ...StateOption) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		host:   host,
		bus:    bus,
		logger: logger.Named("lua"),
		wake:   make(chan struct{}, 1),
	}
	r.state = NewState(map[string]lua.LGFunction{ModuleName: r.loader}, opts...)
	return r
}

// LoadFile runs the script at path.
func (r *Runtime) LoadFile(path string) error {
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("init script %s: %w", path, err)
	}
	r.logger.Info("init script loaded", zap.String("path", path))
	return nil
}

// DoString runs code.
func (r *Runtime) DoString(code string) error {
	return r.state.DoString(code)
}

// State returns the underlying Lua state.
func (r *Runtime) State() *State { return r.state }

// Run executes queued callbacks until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
			r.Drain()
		}
	}
}

// Drain executes every queued callback and returns how many ran.
func (r *Runtime) Drain() int {
	r.mu.Lock()
	pending := r.queue
	r.queue = nil
	r.mu.Unlock()

	for _, cb := range pending {
		if err := r.state.CallFunction(cb.fn, cb.payload); err != nil {
			r.logger.Warn("callback failed",
				zap.Any("topic", cb.payload["topic"]),
				zap.Error(err),
			)
		}
	}
	return len(pending)
}

func (r *Runtime) enqueue(cb callback) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, cb)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Close cancels every subscription and closes the Lua state.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subs := r.subs
	r.subs = nil
	r.queue = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return r.state.Close()
}

// loader builds the keycase module table.
func (r *Runtime) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"start":   r.luaStart,
		"stop":    r.luaStop,
		"active":  r.luaActive,
		"styles":  r.luaStyles,
		"bind":    r.luaBind,
		"notify":  r.luaNotify,
		"on":      r.luaOn,
		"command": r.luaCommand,
	})
	L.Push(mod)
	return 1
}

// fail pushes the nil, message pair Lua functions return on error.
func fail(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

// keycase.start(style) -> true | nil, err
func (r *Runtime) luaStart(L *lua.LState) int {
	if err := r.host.StartStyle(L.CheckString(1)); err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// keycase.stop() -> bool
func (r *Runtime) luaStop(L *lua.LState) int {
	L.Push(lua.LBool(r.host.StopSession()))
	return 1
}

// keycase.active() -> style | nil
func (r *Runtime) luaActive(L *lua.LState) int {
	style, ok := r.host.ActiveStyle()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(style))
	return 1
}

// keycase.styles() -> {name, ...} in menu order
func (r *Runtime) luaStyles(L *lua.LState) int {
	styles := casing.Styles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.String()
	}
	L.Push(toLua(L, names))
	return 1
}

// keycase.bind(keys, command) -> true | nil, err
func (r *Runtime) luaBind(L *lua.LState) int {
	if err := r.host.Bind(L.CheckString(1), L.CheckString(2)); err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// keycase.notify(msg)
func (r *Runtime) luaNotify(L *lua.LState) int {
	r.host.Notify(L.CheckString(1))
	return 0
}

// keycase.on(topic, fn) -> true | nil, err
func (r *Runtime) luaOn(L *lua.LState) int {
	pattern := topic.Topic(L.CheckString(1))
	fn := L.CheckFunction(2)
	if !pattern.IsValid() {
		return fail(L, fmt.Errorf("invalid topic %q", pattern))
	}

	sub, err := r.bus.SubscribeFunc(pattern, func(_ context.Context, ev any) error {
		r.enqueue(callback{fn: fn, payload: eventPayload(ev)})
		return nil
	})
	if err != nil {
		return fail(L, err)
	}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	L.Push(lua.LTrue)
	return 1
}

// keycase.command(id, title, fn) -> true | nil, err
func (r *Runtime) luaCommand(L *lua.LState) int {
	id := L.CheckString(1)
	title := L.CheckString(2)
	fn := L.CheckFunction(3)

	err := r.host.RegisterCommand(id, title, func() error {
		return r.state.CallFunction(fn)
	})
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}
