package events

import "github.com/dshills/keycase/internal/event/topic"

// Session event topics.
const (
	TopicSessionStarted topic.Topic = "session.started"
	TopicSessionEnded   topic.Topic = "session.ended"
)

// EndReason explains why a session stopped.
type EndReason string

const (
	EndDoubleSpace EndReason = "double-space"
	EndSpaceEquals EndReason = "space-equals"
	EndNewline     EndReason = "newline"
	EndEquals      EndReason = "equals"
	EndStopped     EndReason = "stopped"
	EndReplaced    EndReason = "replaced"
	EndSurfaceGone EndReason = "surface-closed"
)

// SessionStarted is published when an input session becomes active.
type SessionStarted struct {
	SessionID string
	Style     string
	SurfaceID string
}

// EventTopic implements event.TopicProvider.
func (SessionStarted) EventTopic() topic.Topic { return TopicSessionStarted }

// SessionEnded is published once when an input session deactivates.
type SessionEnded struct {
	SessionID   string
	Style       string
	Reason      EndReason
	Transformed string
}

// EventTopic implements event.TopicProvider.
func (SessionEnded) EventTopic() topic.Topic { return TopicSessionEnded }
