package generation

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/quality"
)

func testFacade(t *testing.T, bus *events.Bus) *Facade {
	t.Helper()
	strategy := testStrategy(t, ColoringDeps{})
	return NewFacade(
		map[model.EbookType]Strategy{model.TypeColoring: strategy},
		quality.New(quality.DefaultPolicy()),
		bus,
		zap.NewNop(),
	)
}

func TestFacade_AssignsRequestID(t *testing.T) {
	f := testFacade(t, events.NewBus(zap.NewNop()))

	req := seededRequest(4)
	req.RequestID = ""
	req, result, err := f.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestID == "" {
		t.Error("facade did not assign a request id")
	}
	if len(result.Pages) != 6 {
		t.Errorf("expected 6 pages, got %d", len(result.Pages))
	}
}

func TestFacade_RejectsMalformedRequests(t *testing.T) {
	f := testFacade(t, events.NewBus(zap.NewNop()))
	ctx := context.Background()

	noTitle := seededRequest(4)
	noTitle.Title = ""
	if _, _, err := f.Generate(ctx, noTitle); !model.IsValidation(err) {
		t.Errorf("empty title: expected validation error, got %v", err)
	}

	noTheme := seededRequest(4)
	noTheme.Theme = ""
	if _, _, err := f.Generate(ctx, noTheme); !model.IsValidation(err) {
		t.Errorf("empty theme: expected validation error, got %v", err)
	}

	tooMany := seededRequest(100)
	if _, _, err := f.Generate(ctx, tooMany); !model.HasCode(err, model.CodePageLimitExceeded) {
		t.Errorf("oversized request: expected PAGE_LIMIT_EXCEEDED, got %v", err)
	}
}

func TestFacade_UnknownTypeFails(t *testing.T) {
	f := testFacade(t, events.NewBus(zap.NewNop()))

	req := seededRequest(4)
	req.Type = model.EbookType("novel")
	_, _, err := f.Generate(context.Background(), req)
	if !model.IsValidation(err) {
		t.Errorf("expected validation error for unknown type, got %v", err)
	}
}

func TestFacade_RegeneratePublishesEvent(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	f := testFacade(t, bus)

	var got *model.PageRegeneratedEvent
	bus.Subscribe(model.EventPageRegenerated, func(ctx context.Context, ev model.Event) error {
		e := ev.(model.PageRegeneratedEvent)
		got = &e
		return nil
	})

	req := seededRequest(8)
	if _, err := f.RegeneratePage(context.Background(), req, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == nil {
		t.Fatal("no PageRegeneratedEvent published")
	}
	if got.PageNumber != 5 {
		t.Errorf("event page number = %d, want 5", got.PageNumber)
	}
	if got.RequestID != req.RequestID {
		t.Errorf("event request id = %q, want %q", got.RequestID, req.RequestID)
	}
}
