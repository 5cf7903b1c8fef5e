// Package costs implements usage recording and the cost-calculation use
// case. Recording and calculation are deliberately decoupled: every
// successful provider call persists its own usage row immediately, so a
// pipeline aborted halfway still retains billing data for the calls that
// did succeed.
package costs

import (
	"context"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/storage"
)

// Tracker persists per-call usage records and announces token consumption
// on the event bus. It implements the generation.UsageRecorder port.
// Recording is best-effort: a failed insert is logged, never propagated —
// billing bookkeeping must not abort a generation in flight.
type Tracker struct {
	repo   storage.UsageRepository
	bus    *events.Bus
	logger *zap.Logger
}

// NewTracker creates a usage tracker.
func NewTracker(repo storage.UsageRepository, bus *events.Bus, logger *zap.Logger) *Tracker {
	return &Tracker{repo: repo, bus: bus, logger: logger}
}

// RecordTokens persists one token-usage record and publishes a
// TokensConsumedEvent.
func (t *Tracker) RecordTokens(ctx context.Context, usage model.TokenUsage) {
	if err := t.repo.SaveTokenUsage(ctx, &usage); err != nil {
		t.logger.Error("recording token usage",
			zap.String("request_id", usage.RequestID),
			zap.String("model", usage.Model),
			zap.Error(err),
		)
		return
	}

	if err := t.bus.Publish(ctx, model.TokensConsumedEvent{
		EventHeader:      model.NewEventHeader(usage.RequestID),
		RequestID:        usage.RequestID,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		Cost:             usage.Cost,
	}); err != nil {
		t.logger.Error("publishing tokens consumed event",
			zap.String("request_id", usage.RequestID),
			zap.Error(err),
		)
	}
}

// RecordImages persists one image-usage record.
func (t *Tracker) RecordImages(ctx context.Context, usage model.ImageUsage) {
	if err := t.repo.SaveImageUsage(ctx, &usage); err != nil {
		t.logger.Error("recording image usage",
			zap.String("request_id", usage.RequestID),
			zap.String("model", usage.Model),
			zap.Error(err),
		)
	}
}
