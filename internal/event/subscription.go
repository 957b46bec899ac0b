package event

import (
	"sync/atomic"

	"github.com/dshills/keycase/internal/event/topic"
)

// Subscription is a registered handler. Cancel stops delivery immediately;
// an event already being delivered finishes.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	IsActive() bool
	Cancel()
}

// SubscriptionConfig holds per-subscription options.
type SubscriptionConfig struct {
	// Filter, when set, must return true for an event to be delivered.
	Filter FilterFunc
	// Once cancels the subscription after its first successful delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithFilter only delivers events accepted by f.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce cancels the subscription after one delivery.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type subscription struct {
	id        string
	pattern   topic.Topic
	handler   Handler
	config    SubscriptionConfig
	cancelled atomic.Bool
	onCancel  func(id string)
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) IsActive() bool     { return !s.cancelled.Load() }

// Cancel permanently cancels the subscription. Safe to call repeatedly.
func (s *subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	if s.onCancel != nil {
		s.onCancel(s.id)
	}
}

func (s *subscription) shouldDeliver(ev any) bool {
	if !s.IsActive() {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(ev)
}
