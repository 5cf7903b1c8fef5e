package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/model"
)

func testEvent(requestID string) model.PageRegeneratedEvent {
	return model.PageRegeneratedEvent{
		EventHeader: model.NewEventHeader(requestID),
		RequestID:   requestID,
		PageNumber:  3,
	}
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var order []int
	for i := 1; i <= 3; i++ {
		bus.Subscribe(model.EventPageRegenerated, func(ctx context.Context, ev model.Event) error {
			order = append(order, i)
			return nil
		})
	}

	if err := bus.Publish(context.Background(), testEvent("req-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestBus_FirstErrorStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop())
	boom := errors.New("boom")

	var secondRan bool
	bus.Subscribe(model.EventPageRegenerated, func(ctx context.Context, ev model.Event) error {
		return boom
	})
	bus.Subscribe(model.EventPageRegenerated, func(ctx context.Context, ev model.Event) error {
		secondRan = true
		return nil
	})

	err := bus.Publish(context.Background(), testEvent("req-1"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped subscriber error, got %v", err)
	}
	if secondRan {
		t.Error("delivery continued past the failing subscriber")
	}
}

func TestBus_NoSubscribersIsFine(t *testing.T) {
	bus := NewBus(zap.NewNop())
	if err := bus.Publish(context.Background(), testEvent("req-1")); err != nil {
		t.Errorf("publishing without subscribers should succeed, got %v", err)
	}
}

func TestBus_SubscriptionIsPerEventName(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls int
	bus.Subscribe(model.EventEbookApproved, func(ctx context.Context, ev model.Event) error {
		calls++
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent("req-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Error("handler for a different event name was invoked")
	}
}

func TestBus_Reset(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls int
	bus.Subscribe(model.EventPageRegenerated, func(ctx context.Context, ev model.Event) error {
		calls++
		return nil
	})
	bus.Reset()

	if err := bus.Publish(context.Background(), testEvent("req-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Error("handler survived Reset")
	}
}
