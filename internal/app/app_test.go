package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/config"
	"github.com/dshills/keycase/internal/input/key"
	"github.com/dshills/keycase/internal/renderer/backend"
	"github.com/dshills/keycase/internal/session"
)

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func press(t *testing.T, app *Application, spec string) error {
	t.Helper()
	ev, err := key.Parse(spec)
	if err != nil {
		t.Fatalf("parse %q: %v", spec, err)
	}
	return app.handleKeyEvent(backend.Event{Type: backend.EventKey, Key: ev})
}

// typeText types text one key at a time and waits for the active session
// to finish with each key before the next.
func typeText(t *testing.T, app *Application, text string) {
	t.Helper()
	for _, r := range text {
		s, active := app.sessions.Current()
		var handled uint64
		if active {
			handled = s.Stats().Handled
		}

		ev := key.NewRuneEvent(r, key.ModNone)
		if r == '\n' {
			ev = key.NewSpecialEvent(key.KeyEnter, key.ModNone)
		}
		if err := app.handleKeyEvent(backend.Event{Type: backend.EventKey, Key: ev}); err != nil {
			t.Fatalf("type %q: %v", r, err)
		}

		if active {
			waitFor(t, "session to settle", func() bool {
				if !s.Active() {
					return true
				}
				st := s.Stats()
				return st.Handled > handled && st.SelfTriggered+st.WriteFailures >= st.Replacements && s.Pending() == 0
			})
		}
	}
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t, Options{})

	if app.EventBus() == nil || app.Config() == nil || app.Sessions() == nil {
		t.Fatal("expected core components to be initialized")
	}
	if app.Documents().Count() != 1 || app.ActiveDocument() == nil {
		t.Error("expected a scratch document")
	}
	if app.Plugins() == nil {
		t.Error("plugins are enabled by default")
	}
	if got := len(app.Palette().CommandsByCategory(CategoryCase)); got != len(casing.Styles()) {
		t.Errorf("expected %d style commands, got %d", len(casing.Styles()), got)
	}
	if cmd := app.Palette().Get("case.snake"); cmd == nil || cmd.Keybinding != "Alt+s" {
		t.Errorf("expected case.snake bound to Alt+s, got %+v", cmd)
	}
	if app.IsRunning() {
		t.Error("expected IsRunning() to be false before Run()")
	}
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	app, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	app.Shutdown()
	app.Shutdown()
	app.Shutdown()
}

func TestApplication_RunWithoutBackend(t *testing.T) {
	app := newTestApp(t, Options{})

	err := app.Run()
	var initErr *InitError
	if !errors.As(err, &initErr) || !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected backend InitError, got %v", err)
	}
	if err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning on second Run, got %v", err)
	}
}

func runApp(t *testing.T, app *Application) (*backend.NullBackend, <-chan error) {
	t.Helper()
	nb := backend.NewNullBackend(60, 12)
	if err := app.SetBackend(nb); err != nil {
		t.Fatal(err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	waitFor(t, "first frame", func() bool { return nb.Frames() > 0 })
	return nb, errCh
}

func waitRun(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestApplication_RunQuit(t *testing.T) {
	app := newTestApp(t, Options{})
	nb, errCh := runApp(t, app)

	if err := app.SetBackend(nb); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	nb.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent('q', key.ModCtrl)})
	if err := waitRun(t, errCh); !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if app.IsRunning() {
		t.Error("expected IsRunning() to be false after quit")
	}
}

func TestApplication_ShutdownStopsRun(t *testing.T) {
	app := newTestApp(t, Options{})
	_, errCh := runApp(t, app)

	app.Shutdown()
	if err := waitRun(t, errCh); err != nil {
		t.Errorf("expected nil after Shutdown, got %v", err)
	}
}

func TestApplication_RunRendersTyping(t *testing.T) {
	app := newTestApp(t, Options{Style: "upper"})
	nb, errCh := runApp(t, app)

	waitFor(t, "launch session", func() bool { return app.sessions.ActiveStyle() == casing.StyleUpper })
	s, _ := app.sessions.Current()
	want := ""
	for _, r := range "ab c" {
		nb.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent(r, key.ModNone)})
		want += strings.ToUpper(strings.ReplaceAll(string(r), " ", "_"))
		waitFor(t, "rendered "+want, func() bool {
			st := s.Stats()
			return nb.Row(0) == want && st.SelfTriggered >= st.Replacements && s.Pending() == 0
		})
	}
	if status := nb.Row(11); !strings.Contains(status, "UPPER_CASE") {
		t.Errorf("status line should show the style, got %q", status)
	}

	app.Shutdown()
	if err := waitRun(t, errCh); err != nil {
		t.Errorf("unexpected Run error: %v", err)
	}
}

func TestCamelCaseSession(t *testing.T) {
	app := newTestApp(t, Options{})

	if err := press(t, app, "Alt+c"); err != nil {
		t.Fatal(err)
	}
	if msg, isErr := app.Status(); msg != "camelCase mode" || isErr {
		t.Errorf("unexpected status %q", msg)
	}
	typeText(t, app, "hello world")

	if got := app.ActiveDocument().Text(); got != "helloWorld" {
		t.Errorf("expected helloWorld, got %q", got)
	}
	frame := app.buildFrame()
	if frame.Style != "camelCase" || frame.CursorColumn != 10 || !frame.Modified {
		t.Errorf("unexpected frame %+v", frame)
	}
}

func TestTerminationRules(t *testing.T) {
	tests := []struct {
		name  string
		style string
		input string
		want  string
	}{
		{"double space", "Alt+s", "foo  b", "foob"},
		{"newline", "Alt+s", "ABC\nD", "abc\nD"},
		{"equals", "Alt+u", "ab=c", "AB=c"},
		{"kebab space equals", "Alt+k", "a b =c", "a-b =c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, Options{})
			if err := press(t, app, tt.style); err != nil {
				t.Fatal(err)
			}
			typeText(t, app, tt.input)

			if got := app.ActiveDocument().Text(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if _, ok := app.sessions.Current(); ok {
				t.Error("session should have ended")
			}
			waitFor(t, "end notification", func() bool {
				msg, _ := app.Status()
				return msg == "Back to base case"
			})
		})
	}
}

func TestStopCommand(t *testing.T) {
	app := newTestApp(t, Options{})

	_ = press(t, app, "Alt+u")
	typeText(t, app, "ab")
	if err := press(t, app, "Alt+x"); err != nil {
		t.Fatal(err)
	}
	typeText(t, app, "cd")

	if got := app.ActiveDocument().Text(); got != "ABcd" {
		t.Errorf("expected ABcd, got %q", got)
	}
	if app.buildFrame().Style != "" {
		t.Error("no style should show after stop")
	}
}

func TestCaseMenu(t *testing.T) {
	app := newTestApp(t, Options{})

	if err := press(t, app, "Ctrl+P"); err != nil {
		t.Fatal(err)
	}
	pk := app.input.Picker()
	if pk == nil || pk.Category() != CategoryCase {
		t.Fatal("expected the case menu to open")
	}

	frame := app.buildFrame()
	if frame.Picker == nil || len(frame.Picker.Items) != len(casing.Styles()) {
		t.Fatalf("expected %d menu items, got %+v", len(casing.Styles()), frame.Picker)
	}
	if first := frame.Picker.Items[0]; first.Title != "UPPER_CASE" || first.Description == "" {
		t.Errorf("unexpected first item %+v", first)
	}

	for _, r := range "snake" {
		_ = app.handleKeyEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent(r, key.ModNone)})
	}
	if err := press(t, app, "Enter"); err != nil {
		t.Fatal(err)
	}
	if app.input.Picker() != nil {
		t.Error("picker should close on accept")
	}
	if got := app.sessions.ActiveStyle(); got != casing.StyleSnake {
		t.Errorf("expected snake_case session, got %s", got)
	}
	if app.ActiveDocument().Text() != "" {
		t.Error("typing in the picker must not edit the document")
	}
}

func TestPaletteEscape(t *testing.T) {
	app := newTestApp(t, Options{})

	_ = press(t, app, "F1")
	if pk := app.input.Picker(); pk == nil || pk.Category() != "" {
		t.Fatal("expected the full palette")
	}
	if app.buildFrame().Picker.Title != "Commands" {
		t.Error("unexpected palette title")
	}
	_ = press(t, app, "Esc")
	if app.input.Picker() != nil {
		t.Error("Esc should close the palette")
	}
}

func TestNoActiveDocument(t *testing.T) {
	app := newTestApp(t, Options{})
	_ = app.documents.Close(app.ActiveDocument().ID())

	if err := app.executeCommand("case.snake"); err != nil {
		t.Fatal(err)
	}
	if msg, _ := app.Status(); msg != "No active text editor." {
		t.Errorf("unexpected status %q", msg)
	}
	if _, ok := app.sessions.Current(); ok {
		t.Error("no session should start")
	}
}

func TestQuitWithUnsavedChanges(t *testing.T) {
	app := newTestApp(t, Options{})
	typeText(t, app, "x")

	if err := press(t, app, "Ctrl+Q"); err != nil {
		t.Fatalf("first quit should only warn, got %v", err)
	}
	if msg, isErr := app.Status(); !isErr || !strings.Contains(msg, "unsaved changes") {
		t.Errorf("unexpected status %q", msg)
	}

	// Any other key disarms.
	_ = press(t, app, "Left")
	if err := press(t, app, "Ctrl+Q"); err != nil {
		t.Fatalf("quit after another key should warn again, got %v", err)
	}
	if err := press(t, app, "Ctrl+Q"); !errors.Is(err, ErrQuit) {
		t.Errorf("second quit should exit, got %v", err)
	}
}

func TestSaveCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, Options{Files: []string{path}})

	_ = press(t, app, "End")
	typeText(t, app, "!")
	if err := press(t, app, "Ctrl+S"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one!\n" {
		t.Errorf("unexpected file content %q", data)
	}
	if msg, _ := app.Status(); msg != "Saved notes.txt" {
		t.Errorf("unexpected status %q", msg)
	}

	app.documents.CreateScratch()
	_ = press(t, app, "Ctrl+S")
	if msg, isErr := app.Status(); !isErr || !strings.Contains(msg, "has no file name") {
		t.Errorf("expected save error, got %q", msg)
	}
}

func TestEditingKeys(t *testing.T) {
	app := newTestApp(t, Options{})
	typeText(t, app, "abc")

	for _, spec := range []string{"Left", "Backspace", "Home", "Delete"} {
		if err := press(t, app, spec); err != nil {
			t.Fatal(err)
		}
	}
	if got := app.ActiveDocument().Text(); got != "c" {
		t.Errorf("expected c, got %q", got)
	}

	_ = press(t, app, "Ctrl+Z")
	if got := app.ActiveDocument().Text(); got != "ac" {
		t.Errorf("expected ac after undo, got %q", got)
	}
	_ = press(t, app, "Ctrl+Y")
	if got := app.ActiveDocument().Text(); got != "c" {
		t.Errorf("expected c after redo, got %q", got)
	}
	if err := press(t, app, "Ctrl+Y"); err != nil {
		t.Errorf("nothing to redo should not fail, got %v", err)
	}
	if _, isErr := app.Status(); isErr {
		t.Error("nothing to redo should not report an error")
	}
}

func TestDocumentSwitchEndsSession(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	app := newTestApp(t, Options{Files: []string{a, b}})

	if got := app.ActiveDocument().Name(); got != "a.txt" {
		t.Fatalf("expected a.txt active, got %s", got)
	}
	_ = press(t, app, "Alt+s")
	_ = press(t, app, "Ctrl+N")
	if got := app.ActiveDocument().Name(); got != "b.txt" {
		t.Errorf("expected b.txt active, got %s", got)
	}
	if _, ok := app.sessions.Current(); ok {
		t.Error("switching documents should end the session")
	}

	_ = press(t, app, "Ctrl+W")
	_ = press(t, app, "Ctrl+W")
	if app.Documents().Count() != 1 || !app.ActiveDocument().IsScratch() {
		t.Error("closing the last document should leave a scratch document")
	}
}

func TestUserKeymap(t *testing.T) {
	path := writeConfig(t, `
[session]
notify = false

[keymap]
"Alt+z" = "case.kebab"
`)
	app := newTestApp(t, Options{ConfigPath: path})

	_ = press(t, app, "Alt+z")
	if got := app.sessions.ActiveStyle(); got != casing.StyleKebab {
		t.Errorf("expected kebab-case session, got %s", got)
	}
	if msg, _ := app.Status(); msg != "" {
		t.Errorf("notify is off, got status %q", msg)
	}
	if cmd := app.Palette().Get("case.kebab"); cmd.Keybinding != "Alt+k" {
		t.Errorf("shortest key should be shown, got %q", cmd.Keybinding)
	}
}

func TestInvalidConfigFallsBack(t *testing.T) {
	path := writeConfig(t, "[session\nnotify = ")
	app := newTestApp(t, Options{ConfigPath: path})

	msg, isErr := app.Status()
	if !isErr || !strings.HasPrefix(msg, "Config:") {
		t.Errorf("expected config error on the status line, got %q", msg)
	}
	if !app.Config().Session.Notify {
		t.Error("defaults should be in effect")
	}
}

func TestReloadConfig(t *testing.T) {
	app := newTestApp(t, Options{})

	cfg := config.Default()
	cfg.Session.Notify = false
	cfg.Keymap = map[string]string{"Alt+j": "case.dot"}
	app.reloadConfig(cfg, nil)

	if msg, _ := app.Status(); msg != "Config reloaded" {
		t.Errorf("unexpected status %q", msg)
	}
	_ = press(t, app, "Alt+j")
	if got := app.sessions.ActiveStyle(); got != casing.StyleDot {
		t.Errorf("expected dot.case session, got %s", got)
	}
	if app.Config().Session.Notify {
		t.Error("reloaded config should be current")
	}

	app.reloadConfig(nil, errors.New("bad file"))
	if msg, isErr := app.Status(); !isErr || msg != "Config: bad file" {
		t.Errorf("unexpected status %q", msg)
	}
}

func TestPluginInitScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "init.lua")
	err := os.WriteFile(script, []byte(`
local k = require("keycase")
assert(k.bind("Alt+q", "case.upper"))
assert(k.command("demo.hello", "Say Hello", function() k.notify("hello from lua") end))
k.on("session.started", function(ev) k.notify("started " .. ev.style) end)
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, "[plugin]\ninit = \""+filepath.ToSlash(script)+"\"\n")
	app := newTestApp(t, Options{ConfigPath: path})

	if msg, isErr := app.Status(); isErr {
		t.Fatalf("init script failed: %s", msg)
	}

	cmd := app.Palette().Get("demo.hello")
	if cmd == nil || cmd.Category != CategoryPlugin {
		t.Fatalf("expected plugin command, got %+v", cmd)
	}
	if err := app.executeCommand("demo.hello"); err != nil {
		t.Fatal(err)
	}
	if msg, _ := app.Status(); msg != "hello from lua" {
		t.Errorf("unexpected status %q", msg)
	}

	_ = press(t, app, "Alt+q")
	if got := app.sessions.ActiveStyle(); got != casing.StyleUpper {
		t.Errorf("plugin binding should start UPPER_CASE, got %s", got)
	}
	if app.Plugins().Drain() != 1 {
		t.Error("expected one queued callback")
	}
	if msg, _ := app.Status(); msg != "started UPPER_CASE" {
		t.Errorf("unexpected status %q", msg)
	}
}

func TestPluginScriptError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(script, []byte("error('boom')"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, "[plugin]\ninit = \""+filepath.ToSlash(script)+"\"\n")
	app := newTestApp(t, Options{ConfigPath: path})

	if msg, isErr := app.Status(); !isErr || !strings.Contains(msg, "boom") {
		t.Errorf("expected script error on the status line, got %q", msg)
	}
}

func TestPluginHost(t *testing.T) {
	app := newTestApp(t, Options{})
	h := &pluginHost{app: app}

	if err := h.StartStyle("nope"); !errors.Is(err, casing.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
	if err := h.StartStyle("SNAKE_CASE"); err != nil {
		t.Fatal(err)
	}
	if name, ok := h.ActiveStyle(); !ok || name != "snake_case" {
		t.Errorf("unexpected active style %q %v", name, ok)
	}
	if !h.StopSession() || h.StopSession() {
		t.Error("StopSession should report the session once")
	}
	if err := h.Bind("Ctrl+", "case.upper"); err == nil {
		t.Error("expected a bad key spec to fail")
	}

	_ = app.documents.Close(app.ActiveDocument().ID())
	if err := h.StartStyle("camel"); !errors.Is(err, session.ErrNoActiveSurface) {
		t.Errorf("expected ErrNoActiveSurface, got %v", err)
	}
}
