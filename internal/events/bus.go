// Package events provides the in-process publish/subscribe bus that
// decouples cost tracking, audit, and lifecycle notifications from the
// generation pipeline. The bus is transport, not a log: there is no
// persistence and no replay.
package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/model"
)

// Handler consumes one event. A non-nil error aborts delivery of that
// publish call and is returned to the publisher.
type Handler func(ctx context.Context, ev model.Event) error

// Bus is a synchronous in-process event bus. It is constructed explicitly
// and passed to the components that need it — there is no package-level
// instance to leak state between tests.
//
// Publish delivers to subscribers in registration order and returns only
// after every handler has run, so subscribers observe events in publication
// order and failures surface to the publisher. Delivery within one publish
// call is serialized; concurrent publishes from different requests are not.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]Handler),
		logger: logger,
	}
}

// Subscribe registers a handler for the named event type.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], h)
}

// Publish delivers ev to every subscriber of its name, in order. The first
// handler error stops delivery and is returned; remaining handlers for this
// event are not invoked.
func (b *Bus) Publish(ctx context.Context, ev model.Event) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[ev.Name()]))
	copy(handlers, b.subs[ev.Name()])
	b.mu.RUnlock()

	b.logger.Debug("publishing event",
		zap.String("event", ev.Name()),
		zap.String("event_id", ev.Header().EventID),
		zap.String("aggregate_id", ev.Header().AggregateID),
	)

	for i, h := range handlers {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("event %s: subscriber %d: %w", ev.Name(), i, err)
		}
	}
	return nil
}

// Reset removes all subscriptions. Intended for test isolation.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]Handler)
}
