package editor

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/keycase/internal/engine/buffer"
	"github.com/dshills/keycase/internal/event"
	"github.com/dshills/keycase/internal/event/events"
	"github.com/dshills/keycase/internal/event/topic"
	"github.com/dshills/keycase/internal/session"
)

// contentTopics matches every buffer.content.* event.
const contentTopics topic.Topic = "buffer.content.*"

// Surface exposes the active document to input sessions.
type Surface struct {
	docs   *DocumentManager
	bus    event.Bus
	logger *zap.Logger
}

var _ session.Host = (*Surface)(nil)

// NewSurface creates a surface over docs. Document changes must be
// published on bus.
func NewSurface(docs *DocumentManager, bus event.Bus, logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{docs: docs, bus: bus, logger: logger.Named("surface")}
}

// ActiveSurface returns the ID of the active document.
func (s *Surface) ActiveSurface() (string, bool) {
	doc := s.docs.Active()
	if doc == nil || doc.IsClosed() {
		return "", false
	}
	return doc.ID(), true
}

// SubscribeEdits delivers every document change as an EditEvent.
func (s *Surface) SubscribeEdits(fn func(session.EditEvent)) (session.Subscription, error) {
	return s.bus.SubscribeFunc(contentTopics, func(_ context.Context, ev any) error {
		if edit, ok := editEvent(ev); ok {
			fn(edit)
		}
		return nil
	})
}

func editEvent(ev any) (session.EditEvent, bool) {
	switch e := ev.(type) {
	case events.BufferContentInserted:
		return session.EditEvent{SurfaceID: e.DocumentID, Offset: int(e.Offset), Text: e.Text}, true
	case events.BufferContentDeleted:
		return session.EditEvent{SurfaceID: e.DocumentID, Offset: int(e.Start), Removed: int(e.End - e.Start)}, true
	case events.BufferContentReplaced:
		return session.EditEvent{
			SurfaceID: e.DocumentID,
			Offset:    int(e.Start),
			Text:      e.NewText,
			Removed:   int(e.End - e.Start),
		}, true
	default:
		return session.EditEvent{}, false
	}
}

// ReplaceRange applies a session write-back. The change notification is
// published before done is called.
func (s *Surface) ReplaceRange(ev session.EditEvent, start, end int, text string, done func(error)) {
	doc, ok := s.docs.Get(ev.SurfaceID)
	if !ok {
		done(session.ErrSurfaceClosed)
		return
	}

	at := buffer.ByteOffset(ev.Offset)
	err := doc.WriteBack(at, ev.Text, at+buffer.ByteOffset(start), at+buffer.ByteOffset(end), text)
	if err != nil {
		s.logger.Debug("write-back rejected",
			zap.String("document", ev.SurfaceID),
			zap.Int("offset", ev.Offset),
			zap.Error(err),
		)
	}
	done(err)
}

// Notify publishes msg for the status line.
func (s *Surface) Notify(msg string) {
	if err := s.bus.Publish(context.Background(), events.Notification{Message: msg, Level: events.LevelInfo}); err != nil {
		s.logger.Warn("notify failed", zap.String("message", msg), zap.Error(err))
	}
}
