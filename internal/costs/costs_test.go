package costs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/storage"
)

func setupUsageRepo(t *testing.T) storage.UsageRepository {
	t.Helper()

	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewUsageRepository(db)
}

func TestTracker_RecordsAndPublishes(t *testing.T) {
	repo := setupUsageRepo(t)
	bus := events.NewBus(zap.NewNop())
	tracker := NewTracker(repo, bus, zap.NewNop())
	ctx := context.Background()

	var consumed []model.TokensConsumedEvent
	bus.Subscribe(model.EventTokensConsumed, func(ctx context.Context, ev model.Event) error {
		consumed = append(consumed, ev.(model.TokensConsumedEvent))
		return nil
	})

	tracker.RecordTokens(ctx, model.TokenUsage{
		RequestID:    "req-1",
		Model:        "claude-sonnet-4-5",
		PromptTokens: 500, CompletionTokens: 200,
		Cost: decimal.RequireFromString("0.0045"),
	})
	tracker.RecordImages(ctx, model.ImageUsage{
		RequestID: "req-1",
		Model:     "gemini-2.5-flash-image",
		OutputImages: 1,
		Cost:         decimal.RequireFromString("0.039"),
	})

	tokens, err := repo.ListTokenUsage(ctx, "req-1")
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token record, got %d", len(tokens))
	}
	images, err := repo.ListImageUsage(ctx, "req-1")
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image record, got %d", len(images))
	}

	if len(consumed) != 1 {
		t.Fatalf("expected 1 TokensConsumedEvent, got %d", len(consumed))
	}
	if consumed[0].PromptTokens != 500 {
		t.Errorf("event prompt tokens = %d, want 500", consumed[0].PromptTokens)
	}
}

func TestCalculator_ExactTotals(t *testing.T) {
	repo := setupUsageRepo(t)
	bus := events.NewBus(zap.NewNop())
	tracker := NewTracker(repo, bus, zap.NewNop())
	calc := NewCalculator(repo, bus, zap.NewNop())
	ctx := context.Background()

	// Three tenths summed from ten records of 0.03 each — exact in decimal,
	// drifting in float64.
	for i := 0; i < 10; i++ {
		tracker.RecordImages(ctx, model.ImageUsage{
			RequestID:    "req-1",
			Model:        "gemini-2.5-flash-image",
			OutputImages: 1,
			Cost:         decimal.RequireFromString("0.03"),
		})
	}

	var published []model.CostCalculatedEvent
	bus.Subscribe(model.EventCostCalculated, func(ctx context.Context, ev model.Event) error {
		published = append(published, ev.(model.CostCalculatedEvent))
		return nil
	})

	result, err := calc.Calculate(ctx, "req-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !result.TotalCost.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("total = %s, want exactly 0.3", result.TotalCost)
	}
	if result.CallCount != 10 {
		t.Errorf("call count = %d, want 10", result.CallCount)
	}

	if len(published) != 1 {
		t.Fatalf("expected 1 CostCalculatedEvent, got %d", len(published))
	}
	if !published[0].TotalCost.Equal(result.TotalCost) {
		t.Error("event total differs from calculation")
	}
}

func TestCalculator_EmptyRequest(t *testing.T) {
	repo := setupUsageRepo(t)
	bus := events.NewBus(zap.NewNop())
	calc := NewCalculator(repo, bus, zap.NewNop())

	result, err := calc.Calculate(context.Background(), "req-never-ran")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !result.TotalCost.IsZero() || result.CallCount != 0 {
		t.Errorf("empty request should cost zero, got %s over %d calls",
			result.TotalCost, result.CallCount)
	}
}
