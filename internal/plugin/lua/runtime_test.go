package lua

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/event/events"
)

type fakeHost struct {
	active   string
	bindings map[string]string
	notes    []string
	commands map[string]func() error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		bindings: make(map[string]string),
		commands: make(map[string]func() error),
	}
}

func (h *fakeHost) StartStyle(name string) error {
	if name == "bogus" {
		return errors.New("unknown case style")
	}
	h.active = name
	return nil
}

func (h *fakeHost) StopSession() bool {
	was := h.active != ""
	h.active = ""
	return was
}

func (h *fakeHost) ActiveStyle() (string, bool) { return h.active, h.active != "" }

func (h *fakeHost) Bind(keys, command string) error {
	if keys == "" {
		return errors.New("empty key spec")
	}
	h.bindings[keys] = command
	return nil
}

func (h *fakeHost) Notify(msg string) { h.notes = append(h.notes, msg) }

func (h *fakeHost) RegisterCommand(id, _ string, run func() error) error {
	h.commands[id] = run
	return nil
}

func newTestRuntime(t *testing.T, opts ...StateOption) (*Runtime, *fakeHost, event.Bus) {
	t.Helper()
	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}
	host := newFakeHost()
	r := NewRuntime(host, bus, nil, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r, host, bus
}

func globalString(r *Runtime, name string) string {
	return lua.LVAsString(r.State().GetGlobal(name))
}

func TestSandbox(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	tests := []struct {
		name string
		code string
	}{
		{"dofile", `assert(dofile == nil)`},
		{"loadstring", `assert(loadstring == nil and load == nil and loadfile == nil)`},
		{"io", `assert(io == nil)`},
		{"os", `assert(os == nil)`},
		{"debug", `assert(debug == nil)`},
		{"string lib", `assert(string.upper("a") == "A")`},
		{"require builtin", `assert(require("math").floor(1.5) == 1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.DoString(tt.code); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	for _, mod := range []string{"io", "os", "debug"} {
		err := r.DoString(`require("` + mod + `")`)
		if err == nil || !strings.Contains(err.Error(), "not available") {
			t.Errorf("require(%q) should fail, got %v", mod, err)
		}
	}
}

func TestModuleSessionControl(t *testing.T) {
	r, host, _ := newTestRuntime(t)

	err := r.DoString(`
		local kc = require("keycase")
		assert(kc.active() == nil)
		assert(kc.start("snake"))
		current = kc.active()
		local ok, msg = kc.start("bogus")
		start_error = msg
		stopped = tostring(kc.stop())
		again = tostring(kc.stop())
	`)
	if err != nil {
		t.Fatal(err)
	}

	if got := globalString(r, "current"); got != "snake" {
		t.Errorf("expected active snake, got %q", got)
	}
	if got := globalString(r, "start_error"); got != "unknown case style" {
		t.Errorf("expected error message, got %q", got)
	}
	if globalString(r, "stopped") != "true" || globalString(r, "again") != "false" {
		t.Error("stop should report whether a session was active")
	}
	if host.active != "" {
		t.Error("host session should be stopped")
	}
}

func TestModuleStyles(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	err := r.DoString(`
		local names = require("keycase").styles()
		count = #names
		first = names[1]
		last = names[#names]
	`)
	if err != nil {
		t.Fatal(err)
	}
	if got := lua.LVAsNumber(r.State().GetGlobal("count")); got != 6 {
		t.Errorf("expected 6 styles, got %v", got)
	}
	if globalString(r, "first") != "UPPER_CASE" || globalString(r, "last") != "base case" {
		t.Errorf("unexpected menu order %q .. %q", globalString(r, "first"), globalString(r, "last"))
	}
}

func TestModuleBindAndNotify(t *testing.T) {
	r, host, _ := newTestRuntime(t)

	err := r.DoString(`
		local kc = require("keycase")
		assert(kc.bind("Alt+p", "case.snake"))
		local ok, msg = kc.bind("", "case.snake")
		bind_error = msg
		kc.notify("hello")
	`)
	if err != nil {
		t.Fatal(err)
	}
	if host.bindings["Alt+p"] != "case.snake" {
		t.Errorf("unexpected bindings %v", host.bindings)
	}
	if globalString(r, "bind_error") != "empty key spec" {
		t.Errorf("expected bind error, got %q", globalString(r, "bind_error"))
	}
	if len(host.notes) != 1 || host.notes[0] != "hello" {
		t.Errorf("unexpected notes %v", host.notes)
	}
}

func TestModuleOnQueuesCallbacks(t *testing.T) {
	r, _, bus := newTestRuntime(t)

	err := r.DoString(`
		local kc = require("keycase")
		seen = ""
		kc.on("session.*", function(ev)
			seen = seen .. ev.topic .. ":" .. ev.style .. ";"
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	_ = bus.Publish(ctx, events.SessionStarted{SessionID: "1", Style: "snake_case"})
	_ = bus.Publish(ctx, events.SessionEnded{SessionID: "1", Style: "snake_case", Reason: events.EndStopped})

	if globalString(r, "seen") != "" {
		t.Fatal("callbacks must not run inside Publish")
	}
	if n := r.Drain(); n != 2 {
		t.Fatalf("expected 2 callbacks, ran %d", n)
	}
	want := "session.started:snake_case;session.ended:snake_case;"
	if got := globalString(r, "seen"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestModuleOnCallbackCanStartSession(t *testing.T) {
	r, host, bus := newTestRuntime(t)

	err := r.DoString(`
		local kc = require("keycase")
		kc.on("ui.notify", function(ev)
			if ev.message == "go" then kc.start("kebab") end
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}
	_ = bus.Publish(context.Background(), events.Notification{Message: "go"})
	r.Drain()

	if host.active != "kebab" {
		t.Errorf("callback should start a session, got %q", host.active)
	}
}

func TestModuleOnInvalidTopic(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	err := r.DoString(`
		local ok, msg = require("keycase").on("", function() end)
		on_error = msg
	`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(globalString(r, "on_error"), "invalid topic") {
		t.Errorf("expected invalid topic error, got %q", globalString(r, "on_error"))
	}
}

func TestModuleCommand(t *testing.T) {
	r, host, _ := newTestRuntime(t)

	err := r.DoString(`
		local kc = require("keycase")
		runs = 0
		assert(kc.command("user.count", "Count", function() runs = runs + 1 end))
	`)
	if err != nil {
		t.Fatal(err)
	}
	run, ok := host.commands["user.count"]
	if !ok {
		t.Fatal("command should be registered")
	}
	for i := 0; i < 2; i++ {
		if err := run(); err != nil {
			t.Fatal(err)
		}
	}
	if got := lua.LVAsNumber(r.State().GetGlobal("runs")); got != 2 {
		t.Errorf("expected 2 runs, got %v", got)
	}
}

func TestRunProcessesQueue(t *testing.T) {
	r, _, bus := newTestRuntime(t)

	if err := r.DoString(`require("keycase").on("buffer.saved", function(ev) saved = ev.path end)`); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	_ = bus.Publish(context.Background(), events.BufferSaved{Path: "/tmp/a.txt"})

	deadline := time.Now().Add(2 * time.Second)
	for globalString(r, "saved") != "/tmp/a.txt" {
		if time.Now().After(deadline) {
			t.Fatal("callback did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExecutionTimeout(t *testing.T) {
	r, _, _ := newTestRuntime(t, WithExecutionTimeout(50*time.Millisecond))

	err := r.DoString(`while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("expected ErrExecutionTimeout, got %v", err)
	}
	if err := r.DoString(`x = 1`); err != nil {
		t.Errorf("state should be usable after a timeout: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	r, host, _ := newTestRuntime(t)

	path := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(path, []byte(`require("keycase").bind("Alt+q", "case.upper")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if host.bindings["Alt+q"] != "case.upper" {
		t.Error("init script should bind a key")
	}

	err := r.LoadFile(filepath.Join(t.TempDir(), "missing.lua"))
	if err == nil || !strings.Contains(err.Error(), "missing.lua") {
		t.Errorf("expected error naming the file, got %v", err)
	}
}

func TestClose(t *testing.T) {
	r, _, bus := newTestRuntime(t)

	if err := r.DoString(`require("keycase").on("ui.notify", function() end)`); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if err := r.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}

	_ = bus.Publish(context.Background(), events.Notification{Message: "late"})
	if n := r.Drain(); n != 0 {
		t.Errorf("closed runtime should not queue callbacks, ran %d", n)
	}
}

func TestSandboxFileLoaders(t *testing.T) {
	r, _, _ := newTestRuntime(t)

	path := filepath.Join(t.TempDir(), "evil.lua")
	if err := os.WriteFile(path, []byte(`pwned = true`), 0o644); err != nil {
		t.Fatal(err)
	}
	code := `
		package.path = "` + filepath.Dir(path) + `/?.lua"
		assert(#package.loaders == 1)
		local f = package.loaders[1]("evil")
		assert(type(f) ~= "function")
	`
	if err := r.DoString(code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if globalString(r, "pwned") != "" {
		t.Error("scripts must not load files through package.loaders")
	}
}
