// Package event provides the synchronous publish/subscribe bus that connects
// keycase components.
//
// Events are plain structs that report their topic through TopicProvider.
// Handlers run on the publisher's goroutine, in subscription order, so a
// publisher observes every side effect of its event once Publish returns.
// Handlers that need to defer work (the input session does) enqueue it
// themselves.
//
//	bus := event.NewBus()
//	_ = bus.Start()
//	sub, _ := bus.SubscribeFunc("buffer.content.*", func(ctx context.Context, ev any) error {
//	    ins := ev.(events.BufferContentInserted)
//	    ...
//	    return nil
//	})
//	defer sub.Cancel()
package event
