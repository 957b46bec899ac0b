package session

import "context"

// EditEvent is one text change reported by the host.
type EditEvent struct {
	// SurfaceID identifies the text surface that changed.
	SurfaceID string
	// Offset is the document byte offset of the change.
	Offset int
	// Text is the inserted text. Empty for pure deletions.
	Text string
	// Removed is the number of bytes the change replaced or deleted.
	Removed int
}

// IsInsert reports whether the event is a pure insertion.
func (e EditEvent) IsInsert() bool {
	return e.Removed == 0 && e.Text != ""
}

// Subscription stops edit delivery when cancelled.
type Subscription interface {
	Cancel()
}

// Host is the text surface a session reads from and writes to.
type Host interface {
	// ActiveSurface returns the ID of the focused text surface.
	ActiveSurface() (string, bool)

	// SubscribeEdits calls fn once per text change until the subscription
	// is cancelled. fn must not block.
	SubscribeEdits(fn func(EditEvent)) (Subscription, error)

	// ReplaceRange replaces [ev.Offset+start, ev.Offset+end) with text and
	// then calls done. If ev.Text no longer sits at ev.Offset it must not
	// edit and report ErrStaleEdit. Any notification the replacement
	// produces must be delivered before done is called.
	ReplaceRange(ev EditEvent, start, end int, text string, done func(error))

	// Notify shows an informational message to the user.
	Notify(msg string)
}

// Publisher receives session lifecycle events. event.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}
