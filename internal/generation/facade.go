package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/quality"
)

// Facade is the single entry point into the pipeline. It assigns request
// identifiers, enforces request-level policy, resolves the strategy for the
// requested ebook type from a closed table, and delegates. It never
// retries and never suppresses a DomainError — the presentation layer maps
// whatever propagates out of here.
type Facade struct {
	strategies map[model.EbookType]Strategy
	validator  *quality.Validator
	bus        *events.Bus
	logger     *zap.Logger
}

// NewFacade creates a facade over the given strategy table.
func NewFacade(strategies map[model.EbookType]Strategy, validator *quality.Validator, bus *events.Bus, logger *zap.Logger) *Facade {
	return &Facade{
		strategies: strategies,
		validator:  validator,
		bus:        bus,
		logger:     logger,
	}
}

// Generate validates the request, resolves its strategy, and runs the full
// pipeline. The returned request carries the assigned request id so callers
// can correlate usage records and regenerate pages later.
func (f *Facade) Generate(ctx context.Context, req model.GenerationRequest) (model.GenerationRequest, *model.GenerationResult, error) {
	req, err := f.prepare(req)
	if err != nil {
		return req, nil, err
	}

	strategy, err := f.strategyFor(req.Type)
	if err != nil {
		return req, nil, err
	}

	f.logger.Info("generation started",
		zap.String("request_id", req.RequestID),
		zap.String("type", string(req.Type)),
		zap.Int("page_count", req.PageCount),
	)

	result, err := strategy.Generate(ctx, req)
	if err != nil {
		f.logger.Warn("generation aborted",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return req, nil, err
	}
	return req, result, nil
}

// RegeneratePage reproduces a single content page of a previous request and
// publishes a PageRegeneratedEvent. The request must carry the original
// request id and seed for the output to match the original page.
func (f *Facade) RegeneratePage(ctx context.Context, req model.GenerationRequest, pageNumber int) (model.PageMeta, error) {
	req, err := f.prepare(req)
	if err != nil {
		return model.PageMeta{}, err
	}

	strategy, err := f.strategyFor(req.Type)
	if err != nil {
		return model.PageMeta{}, err
	}

	meta, err := strategy.RegeneratePage(ctx, req, pageNumber)
	if err != nil {
		return model.PageMeta{}, err
	}

	if err := f.bus.Publish(ctx, model.PageRegeneratedEvent{
		EventHeader: model.NewEventHeader(req.RequestID),
		RequestID:   req.RequestID,
		PageNumber:  pageNumber,
	}); err != nil {
		return model.PageMeta{}, err
	}
	return meta, nil
}

// prepare fills in a request id when the caller did not supply one and
// enforces request-level policy. Malformed requests fail with the
// validation kind, naming the offending field.
func (f *Facade) prepare(req model.GenerationRequest) (model.GenerationRequest, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.Title == "" {
		return req, model.ValidationError("title must not be empty", "supply a book title")
	}
	if req.Theme == "" {
		return req, model.ValidationError("theme must not be empty", "supply a theme or description")
	}
	if err := f.validator.ValidatePageCount(req.PageCount); err != nil {
		return req, err
	}
	return req, nil
}

func (f *Facade) strategyFor(t model.EbookType) (Strategy, error) {
	strategy, ok := f.strategies[t]
	if !ok {
		return nil, model.ValidationError(
			fmt.Sprintf("no generation strategy for ebook type %q", t),
			"supported types: coloring",
		)
	}
	return strategy, nil
}
