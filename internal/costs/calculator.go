package costs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/storage"
)

// Calculator is the use case that turns a request's accumulated usage rows
// into one CostCalculation. Totals are the exact decimal sum of the stored
// records — nothing is re-derived from pricing rates here.
type Calculator struct {
	repo   storage.UsageRepository
	bus    *events.Bus
	logger *zap.Logger
}

// NewCalculator creates a cost calculator.
func NewCalculator(repo storage.UsageRepository, bus *events.Bus, logger *zap.Logger) *Calculator {
	return &Calculator{repo: repo, bus: bus, logger: logger}
}

// Calculate sums every usage record saved under the request id and
// publishes a CostCalculatedEvent with the totals. Works for aborted runs
// too: whatever was recorded before the abort is what gets billed.
func (c *Calculator) Calculate(ctx context.Context, requestID string) (model.CostCalculation, error) {
	tokens, err := c.repo.ListTokenUsage(ctx, requestID)
	if err != nil {
		return model.CostCalculation{}, fmt.Errorf("loading token usage: %w", err)
	}
	images, err := c.repo.ListImageUsage(ctx, requestID)
	if err != nil {
		return model.CostCalculation{}, fmt.Errorf("loading image usage: %w", err)
	}

	calc := model.NewCostCalculation(requestID, tokens, images)

	c.logger.Info("cost calculated",
		zap.String("request_id", requestID),
		zap.String("total_cost", calc.TotalCost.String()),
		zap.Int("total_tokens", calc.TotalTokens),
		zap.Int("call_count", calc.CallCount),
	)

	if err := c.bus.Publish(ctx, model.CostCalculatedEvent{
		EventHeader: model.NewEventHeader(requestID),
		RequestID:   requestID,
		TotalCost:   calc.TotalCost,
		TotalTokens: calc.TotalTokens,
		CallCount:   calc.CallCount,
	}); err != nil {
		return calc, fmt.Errorf("publishing cost calculated event: %w", err)
	}

	return calc, nil
}
