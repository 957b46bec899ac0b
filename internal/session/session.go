package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/casing"
	"github.com/dshills/keycase/internal/event/events"
)

// Notification texts.
const (
	msgBackToBase     = "Back to base case"
	msgNoActiveEditor = "No active text editor."
)

const space = " "

// Stats counts what a session did with the events it received.
type Stats struct {
	// Handled is the number of events that reached the decision procedure.
	Handled uint64
	// Replacements is the number of write-backs issued.
	Replacements uint64
	// PassedThrough counts multi-character and deletion events left alone.
	PassedThrough uint64
	// Stale counts events that arrived after the session ended.
	Stale uint64
	// SelfTriggered counts events ignored while a write-back was in flight.
	SelfTriggered uint64
	// WriteFailures counts write-backs the host reported as failed.
	WriteFailures uint64
}

type counters struct {
	handled       atomic.Uint64
	replacements  atomic.Uint64
	passedThrough atomic.Uint64
	stale         atomic.Uint64
	selfTriggered atomic.Uint64
	writeFailures atomic.Uint64
}

// Session converts the characters typed into one surface until a
// termination rule fires or it is stopped.
type Session struct {
	id        string
	style     casing.Style
	surfaceID string
	host      Host
	logger    *zap.Logger
	publisher Publisher
	notify    func() bool

	mbox *mailbox
	done chan struct{}

	active atomic.Bool
	stats  counters

	subMu sync.Mutex
	sub   Subscription

	outMu  sync.Mutex
	output strings.Builder

	// Held while a message is dispatched. Everything below is only touched
	// by the consumer.
	stateMu           sync.Mutex
	previousInput     string
	previousOutput    string
	nextOffset        int
	writeBackInFlight bool
	seq               uint64
}

func newSession(host Host, style casing.Style, surfaceID string, o *options) *Session {
	return &Session{
		id:        uuid.NewString(),
		style:     style,
		surfaceID: surfaceID,
		host:      host,
		logger:    o.logger,
		publisher: o.publisher,
		notify:    o.notifyEnabled,
		mbox:      newMailbox(),
		done:      make(chan struct{}),
	}
}

// start subscribes to host edits and announces the session.
func (s *Session) start() error {
	s.active.Store(true)

	sub, err := s.host.SubscribeEdits(s.receive)
	if err != nil {
		s.active.Store(false)
		s.mbox.close()
		close(s.done)
		return err
	}
	s.subMu.Lock()
	s.sub = sub
	s.subMu.Unlock()

	s.logger.Info("session started",
		zap.String("session", s.id),
		zap.String("style", s.style.String()),
		zap.String("surface", s.surfaceID),
	)
	s.publish(events.SessionStarted{
		SessionID: s.id,
		Style:     s.style.String(),
		SurfaceID: s.surfaceID,
	})
	if s.style != casing.StyleBase {
		s.inform(s.style.String() + " mode")
	}
	return nil
}

// receive is the host callback. It only enqueues.
func (s *Session) receive(ev EditEvent) {
	if !s.mbox.put(editMsg{ev: ev}) {
		s.stats.stale.Add(1)
	}
}

// ID returns the session's unique ID.
func (s *Session) ID() string { return s.id }

// Style returns the style the session converts to.
func (s *Session) Style() casing.Style { return s.style }

// SurfaceID returns the surface the session listens to.
func (s *Session) SurfaceID() string { return s.surfaceID }

// Active reports whether the session still converts input.
func (s *Session) Active() bool { return s.active.Load() }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Pending returns the number of queued, unprocessed messages.
func (s *Session) Pending() int { return s.mbox.pending() }

// Transformed returns the text the session produced so far.
func (s *Session) Transformed() string {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.output.String()
}

// PreviousInput returns the raw text of the last handled character.
func (s *Session) PreviousInput() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.previousInput
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Handled:       s.stats.handled.Load(),
		Replacements:  s.stats.replacements.Load(),
		PassedThrough: s.stats.passedThrough.Load(),
		Stale:         s.stats.stale.Load(),
		SelfTriggered: s.stats.selfTriggered.Load(),
		WriteFailures: s.stats.writeFailures.Load(),
	}
}

// Stop ends the session. Calling it on an ended session does nothing.
func (s *Session) Stop() {
	s.end(events.EndStopped)
}

// Run processes the mailbox until the session ends or ctx is cancelled.
// Cancelling ctx stops the session.
func (s *Session) Run(ctx context.Context) error {
	for {
		s.Drain()
		select {
		case <-ctx.Done():
			s.end(events.EndStopped)
			return ctx.Err()
		case <-s.done:
			return nil
		case <-s.mbox.ready:
		}
	}
}

// Drain processes queued messages on the calling goroutine until the
// mailbox is empty or the session ends. It returns the number processed.
func (s *Session) Drain() int {
	n := 0
	for s.Active() {
		msg, ok := s.mbox.take()
		if !ok {
			break
		}
		s.dispatch(msg)
		n++
	}
	return n
}

func (s *Session) dispatch(msg message) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	switch m := msg.(type) {
	case editMsg:
		s.handle(m.ev)
	case completionMsg:
		s.complete(m)
	}
}

// handle is the per-event decision procedure. Caller holds stateMu.
func (s *Session) handle(ev EditEvent) {
	if !s.Active() {
		s.stats.stale.Add(1)
		s.logger.Debug("stale event ignored", zap.String("session", s.id))
		return
	}
	if ev.SurfaceID != s.surfaceID {
		return
	}
	if s.writeBackInFlight {
		s.stats.selfTriggered.Add(1)
		s.logger.Debug("self-triggered event ignored",
			zap.String("session", s.id),
			zap.Int("offset", ev.Offset),
		)
		return
	}
	s.stats.handled.Add(1)

	text := ev.Text
	if ev.IsInsert() && ev.Offset != s.nextOffset {
		// The caret moved since the last keystroke.
		s.previousInput = ""
	}
	if ev.IsInsert() {
		if reason, ok := s.termination(text); ok {
			s.terminate(ev, reason)
			return
		}
	}

	if !ev.IsInsert() || utf8.RuneCountInString(text) != 1 {
		s.stats.passedThrough.Add(1)
		s.previousInput = ""
		return
	}

	r := casing.Transform(s.style, text, s.previousInput)
	s.previousInput = text
	s.previousOutput = r.Text
	s.nextOffset = ev.Offset + len(text) + len(r.Text) - (r.End - r.Start)
	s.record(r)

	if r.Start == 0 && r.End == len(text) && r.Text == text {
		return
	}
	s.writeBack(ev, r)
}

// termination reports whether text ends the session.
func (s *Session) termination(text string) (events.EndReason, bool) {
	switch {
	case s.previousInput == space && text == space:
		return events.EndDoubleSpace, true
	case s.previousInput == space && text == "=":
		return events.EndSpaceEquals, true
	case text == "\n" || text == "\r\n":
		return events.EndNewline, true
	case text == "=":
		return events.EndEquals, true
	}
	return "", false
}

func (s *Session) terminate(ev EditEvent, reason events.EndReason) {
	switch reason {
	case events.EndDoubleSpace:
		// Both spaces go: the one before the insertion, already rewritten
		// to the style's separator, and the one just typed.
		s.trimOutput(len(space))
		s.writeBack(ev, casing.Replacement{Start: -len(space), End: len(space), Text: ""})
	case events.EndSpaceEquals:
		// The space before "=" stays a space, so a separator written for it
		// is turned back.
		if _, ok := casing.Separator(s.style); ok {
			r := casing.Replacement{Start: -len(space), End: 0, Text: space}
			s.record(r)
			s.writeBack(ev, r)
		}
	}
	if s.end(reason) {
		s.inform(msgBackToBase)
	}
}

func (s *Session) writeBack(ev EditEvent, r casing.Replacement) {
	if r.Wide() {
		var ok bool
		if ev, r, ok = s.anchor(ev, r); !ok {
			s.logger.Debug("write-back skipped, previous output unknown",
				zap.String("session", s.id),
				zap.Int("offset", ev.Offset),
			)
			return
		}
	}
	s.seq++
	seq := s.seq
	s.writeBackInFlight = true
	s.stats.replacements.Add(1)

	s.host.ReplaceRange(ev, r.Start, r.End, r.Text, func(err error) {
		s.mbox.put(completionMsg{seq: seq, err: err})
	})
}

// anchor widens ev to cover the bytes r reaches back over, as the previous
// keystroke left them. The host then refuses the write-back if they changed.
func (s *Session) anchor(ev EditEvent, r casing.Replacement) (EditEvent, casing.Replacement, bool) {
	n := -r.Start
	if len(s.previousOutput) < n {
		return ev, r, false
	}
	before := s.previousOutput[len(s.previousOutput)-n:]
	ev.Offset -= n
	ev.Text = before + ev.Text
	r.Start += n
	r.End += n
	return ev, r, true
}

// complete clears the re-entrancy flag once the host confirmed a write-back.
func (s *Session) complete(m completionMsg) {
	if m.seq != s.seq {
		return
	}
	s.writeBackInFlight = false
	if m.err == nil {
		return
	}

	s.stats.writeFailures.Add(1)
	if errors.Is(m.err, ErrSurfaceClosed) {
		s.end(events.EndSurfaceGone)
		return
	}
	s.logger.Warn("write-back failed",
		zap.String("session", s.id),
		zap.Error(m.err),
	)
}

// record appends a replacement to the accumulated output.
func (s *Session) record(r casing.Replacement) {
	if r.Wide() {
		s.trimOutput(-r.Start)
	}
	s.outMu.Lock()
	s.output.WriteString(r.Text)
	s.outMu.Unlock()
}

func (s *Session) trimOutput(n int) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	out := s.output.String()
	if n > len(out) {
		n = len(out)
	}
	s.output.Reset()
	s.output.WriteString(out[:len(out)-n])
}

// end deactivates the session once. It reports whether this call ended it.
func (s *Session) end(reason events.EndReason) bool {
	if !s.active.CompareAndSwap(true, false) {
		return false
	}

	s.subMu.Lock()
	sub := s.sub
	s.sub = nil
	s.subMu.Unlock()
	if sub != nil {
		sub.Cancel()
	}

	if dropped := s.mbox.close(); dropped > 0 {
		s.stats.stale.Add(uint64(dropped))
	}
	close(s.done)

	transformed := s.Transformed()
	s.logger.Info("session ended",
		zap.String("session", s.id),
		zap.String("style", s.style.String()),
		zap.String("reason", string(reason)),
		zap.Int("transformed_bytes", len(transformed)),
	)
	s.publish(events.SessionEnded{
		SessionID:   s.id,
		Style:       s.style.String(),
		Reason:      reason,
		Transformed: transformed,
	})
	return true
}

func (s *Session) inform(msg string) {
	if s.notify != nil && !s.notify() {
		return
	}
	s.host.Notify(msg)
}

func (s *Session) publish(ev any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), ev); err != nil {
		s.logger.Warn("publish failed", zap.String("session", s.id), zap.Error(err))
	}
}
