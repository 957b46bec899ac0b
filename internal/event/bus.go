package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/keycase/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	// Publish delivers event to every matching subscription before returning.
	// Handler errors are joined into the returned error.
	Publish(ctx context.Context, event any) error

	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Start() error
	Stop(ctx context.Context) error
	IsRunning() bool
	Stats() Stats
}

// BusOption configures a bus.
type BusOption func(*bus)

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *bus) {
		b.panicHandler = h
	}
}

type bus struct {
	mu   sync.RWMutex
	subs []*subscription

	running      atomic.Bool
	panicHandler PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates a stopped bus.
func NewBus(opts ...BusOption) Bus {
	b := &bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *bus) Start() error {
	if b.running.Swap(true) {
		return ErrBusAlreadyRunning
	}
	return nil
}

// Stop stops delivery. Publishing after Stop fails with ErrBusNotRunning.
func (b *bus) Stop(_ context.Context) error {
	if !b.running.Swap(false) {
		return ErrBusNotRunning
	}
	return nil
}

func (b *bus) IsRunning() bool {
	return b.running.Load()
}

func (b *bus) Publish(ctx context.Context, ev any) error {
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	tp, ok := ev.(TopicProvider)
	if !ok || !tp.EventTopic().IsValid() {
		return ErrInvalidEvent
	}
	evTopic := tp.EventTopic()
	b.published.Add(1)

	// Snapshot so handlers may subscribe or cancel while we deliver.
	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if evTopic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range matched {
		if !s.shouldDeliver(ev) {
			continue
		}
		if err := b.deliver(ctx, s, ev); err != nil {
			errs = append(errs, &HandlerError{SubscriptionID: s.id, Topic: evTopic.String(), Err: err})
			continue
		}
		if s.config.Once {
			s.Cancel()
		}
	}
	return errors.Join(errs...)
}

func (b *bus) deliver(ctx context.Context, s *subscription, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(ev, r)
			}
			err = nil
		}
	}()

	if err = s.handler.Handle(ctx, ev); err != nil {
		b.failed.Add(1)
		return err
	}
	b.delivered.Add(1)
	return nil
}

func (b *bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	s := &subscription{
		id:       uuid.NewString(),
		pattern:  pattern,
		handler:  handler,
		onCancel: b.remove,
	}
	for _, opt := range opts {
		opt(&s.config)
	}

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s, nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	if !b.has(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	return nil
}

func (b *bus) has(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func (b *bus) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.published.Load(),
		EventsDelivered:   b.delivered.Load(),
		HandlerErrors:     b.failed.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: active,
	}
}
