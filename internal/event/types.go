package event

import (
	"context"

	"github.com/dshills/keycase/internal/event/topic"
)

// TopicProvider is implemented by every event published on the bus.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(event any) bool

// PanicHandler is called when a handler panics. The panic does not escape
// Publish.
type PanicHandler func(event any, recovered any)

// Stats reports bus activity.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}
