package event

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/keycase/internal/event/topic"
)

type testEvent struct {
	topic topic.Topic
	value int
}

func (e testEvent) EventTopic() topic.Topic { return e.topic }

func newRunningBus(t *testing.T, opts ...BusOption) Bus {
	t.Helper()
	b := NewBus(opts...)
	if err := b.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return b
}

func TestBusLifecycle(t *testing.T) {
	b := NewBus()

	if err := b.Publish(context.Background(), testEvent{topic: "a.b"}); !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("expected ErrBusNotRunning before start, got %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(); !errors.Is(err, ErrBusAlreadyRunning) {
		t.Errorf("expected ErrBusAlreadyRunning, got %v", err)
	}
	if !b.IsRunning() {
		t.Error("bus should be running")
	}
	if err := b.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := b.Stop(context.Background()); !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("expected ErrBusNotRunning on second stop, got %v", err)
	}
}

func TestBusDeliversInOrder(t *testing.T) {
	b := newRunningBus(t)
	var got []string

	_, _ = b.SubscribeFunc("buffer.**", func(_ context.Context, ev any) error {
		got = append(got, "wide")
		return nil
	})
	_, _ = b.SubscribeFunc("buffer.content.inserted", func(_ context.Context, ev any) error {
		got = append(got, "exact")
		return nil
	})
	_, _ = b.SubscribeFunc("session.*", func(_ context.Context, ev any) error {
		got = append(got, "other")
		return nil
	})

	if err := b.Publish(context.Background(), testEvent{topic: "buffer.content.inserted"}); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0] != "wide" || got[1] != "exact" {
		t.Errorf("unexpected deliveries %v", got)
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	b := newRunningBus(t)
	count := 0

	sub, err := b.SubscribeFunc("a.b", func(context.Context, any) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	_ = b.Publish(context.Background(), testEvent{topic: "a.b"})
	sub.Cancel()
	sub.Cancel()
	_ = b.Publish(context.Background(), testEvent{topic: "a.b"})

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
	if sub.IsActive() {
		t.Error("subscription should be inactive")
	}
	if b.Stats().ActiveSubscribers != 0 {
		t.Errorf("expected no subscribers, got %d", b.Stats().ActiveSubscribers)
	}
	if err := b.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestBusCancelDuringDelivery(t *testing.T) {
	b := newRunningBus(t)
	var second int
	var first Subscription

	first, _ = b.SubscribeFunc("x", func(context.Context, any) error {
		first.Cancel()
		return nil
	})
	_, _ = b.SubscribeFunc("x", func(context.Context, any) error {
		second++
		return nil
	})

	_ = b.Publish(context.Background(), testEvent{topic: "x"})
	_ = b.Publish(context.Background(), testEvent{topic: "x"})

	if second != 2 {
		t.Errorf("second handler should see both events, got %d", second)
	}
}

func TestBusFilterAndOnce(t *testing.T) {
	b := newRunningBus(t)
	var filtered, once int

	_, _ = b.SubscribeFunc("n", func(context.Context, any) error {
		filtered++
		return nil
	}, WithFilter(func(ev any) bool { return ev.(testEvent).value > 1 }))
	_, _ = b.SubscribeFunc("n", func(context.Context, any) error {
		once++
		return nil
	}, WithOnce())

	for i := 0; i < 3; i++ {
		_ = b.Publish(context.Background(), testEvent{topic: "n", value: i})
	}

	if filtered != 1 {
		t.Errorf("expected 1 filtered delivery, got %d", filtered)
	}
	if once != 1 {
		t.Errorf("expected 1 once delivery, got %d", once)
	}
}

func TestBusHandlerErrorsAndPanics(t *testing.T) {
	var recovered any
	b := newRunningBus(t, WithPanicHandler(func(_ any, r any) { recovered = r }))
	boom := errors.New("boom")

	_, _ = b.SubscribeFunc("e", func(context.Context, any) error { return boom })
	_, _ = b.SubscribeFunc("e", func(context.Context, any) error { panic("kaboom") })
	reached := false
	_, _ = b.SubscribeFunc("e", func(context.Context, any) error {
		reached = true
		return nil
	})

	err := b.Publish(context.Background(), testEvent{topic: "e"})
	if !errors.Is(err, boom) {
		t.Errorf("expected handler error to surface, got %v", err)
	}
	var herr *HandlerError
	if !errors.As(err, &herr) || herr.Topic != "e" {
		t.Errorf("expected HandlerError for topic e, got %v", err)
	}
	if recovered != "kaboom" {
		t.Errorf("expected panic to be reported, got %v", recovered)
	}
	if !reached {
		t.Error("handlers after a panic should still run")
	}

	stats := b.Stats()
	if stats.HandlerErrors != 1 || stats.HandlerPanics != 1 || stats.EventsDelivered != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBusRejectsInvalidInput(t *testing.T) {
	b := newRunningBus(t)

	if _, err := b.Subscribe("a", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
	if _, err := b.SubscribeFunc("", func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
	if err := b.Publish(context.Background(), "not an event"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}
