package session

import (
	"context"
	"sync"
)

// fakeHost is an in-memory single-surface document. Typed characters are
// appended at the end and reported to subscribers; write-backs edit the text
// and report themselves the way a real editor does.
type fakeHost struct {
	mu         sync.Mutex
	surfaceID  string
	noSurface  bool
	text       string
	subs       map[int]func(EditEvent)
	nextSub    int
	lastFn     func(EditEvent)
	replaces   int
	notes      []string
	deferDone  bool
	pending    []func()
	doneErr    error
	splitEmits bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{surfaceID: "doc-1", subs: make(map[int]func(EditEvent))}
}

type fakeSub struct {
	h  *fakeHost
	id int
}

func (s fakeSub) Cancel() {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()
	delete(s.h.subs, s.id)
}

func (h *fakeHost) ActiveSurface() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.surfaceID, !h.noSurface
}

func (h *fakeHost) SubscribeEdits(fn func(EditEvent)) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSub++
	h.subs[h.nextSub] = fn
	h.lastFn = fn
	return fakeSub{h: h, id: h.nextSub}, nil
}

func (h *fakeHost) ReplaceRange(ev EditEvent, start, end int, text string, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.Offset < 0 || ev.Offset+len(ev.Text) > len(h.text) || h.text[ev.Offset:ev.Offset+len(ev.Text)] != ev.Text {
		done(ErrStaleEdit)
		return
	}

	h.replaces++
	s, e := ev.Offset+start, ev.Offset+end
	h.text = h.text[:s] + text + h.text[e:]

	if h.splitEmits {
		// Some editors report a replacement as a delete then an insert.
		h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: s, Removed: e - s})
		h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: s, Text: text})
	} else {
		h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: s, Text: text, Removed: e - s})
	}

	err := h.doneErr
	if h.deferDone {
		h.pending = append(h.pending, func() { done(err) })
		return
	}
	done(err)
}

func (h *fakeHost) Notify(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notes = append(h.notes, msg)
}

// emit must be called with the lock held.
func (h *fakeHost) emit(ev EditEvent) {
	for _, fn := range h.subs {
		fn(ev)
	}
}

// typeText appends each character and reports it.
func (h *fakeHost) typeText(text string) {
	for _, r := range text {
		h.insert(string(r))
	}
}

func (h *fakeHost) insert(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	off := len(h.text)
	h.text += text
	h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: off, Text: text})
}

// insertAt types text at off, as after a caret move.
func (h *fakeHost) insertAt(off int, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.text = h.text[:off] + text + h.text[off:]
	h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: off, Text: text})
}

// overwrite changes the text without telling subscribers.
func (h *fakeHost) overwrite(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.text = text
}

func (h *fakeHost) backspace() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.text == "" {
		return
	}
	off := len(h.text) - 1
	h.text = h.text[:off]
	h.emit(EditEvent{SurfaceID: h.surfaceID, Offset: off, Removed: 1})
}

func (h *fakeHost) complete() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (h *fakeHost) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text
}

func (h *fakeHost) Replaces() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replaces
}

func (h *fakeHost) Notes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.notes...)
}

func (h *fakeHost) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// typeAndDrain types text one character at a time, letting the session
// catch up after every keystroke.
func typeAndDrain(h *fakeHost, s *Session, text string) {
	for _, r := range text {
		h.insert(string(r))
		s.Drain()
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, ev any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events...)
}
