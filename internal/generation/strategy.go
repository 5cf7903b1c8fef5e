package generation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/quality"
)

// Strategy is the per-ebook-type generation algorithm. Implementations
// sequence port calls for their variant and build a GenerationResult.
// Errors are never swallowed here — a DomainError from any port aborts the
// remaining sequence and propagates to the facade.
type Strategy interface {
	Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error)
	RegeneratePage(ctx context.Context, req model.GenerationRequest, pageNumber int) (model.PageMeta, error)
}

// ProbeFunc inspects generated bytes and reports their real ImageSpec.
// Injected so tests can gate synthetic payloads; defaults to
// quality.ProbeImage in production wiring.
type ProbeFunc func(data []byte) (model.ImageSpec, error)

// ColoringConfig carries the caller-chosen knobs for the coloring strategy.
type ColoringConfig struct {
	CoverSpec   model.ImageSpec
	PageSpec    model.ImageSpec
	Concurrency int  // bound on concurrent page generations, 1 serializes
	Vectorize   bool // trace content pages to SVG after generation
	Export      model.ExportType
	OutputDir   string
}

// ColoringStrategy generates children's coloring books. The fixed sequence:
// cover → quality gate → content pages (concurrent, per-page sub-seeds) →
// back cover derived from the front cover → optional vectorization →
// assembly. Every successful provider call reports usage before the next
// step runs, so an aborted run still retains billing data for the calls
// that did succeed.
type ColoringStrategy struct {
	cover     CoverGenerationPort
	pages     ContentPageGenerationPort
	editor    ImageEditPort // optional line-art cleanup, nil skips
	vector    VectorizationPort
	assembler AssemblyPort
	planner   PromptPlannerPort // optional, nil falls back to templates
	pricing   PricingPort
	recorder  UsageRecorder
	validator *quality.Validator
	probe     ProbeFunc
	cfg       ColoringConfig
	logger    *zap.Logger
}

// ColoringDeps bundles the ports the coloring strategy drives. Editor and
// Planner may be nil; Vector may be nil when cfg.Vectorize is false.
type ColoringDeps struct {
	Cover     CoverGenerationPort
	Pages     ContentPageGenerationPort
	Editor    ImageEditPort
	Vector    VectorizationPort
	Assembler AssemblyPort
	Planner   PromptPlannerPort
	Pricing   PricingPort
	Recorder  UsageRecorder
	Validator *quality.Validator
	Probe     ProbeFunc
}

// NewColoringStrategy wires a coloring strategy.
func NewColoringStrategy(deps ColoringDeps, cfg ColoringConfig, logger *zap.Logger) *ColoringStrategy {
	probe := deps.Probe
	if probe == nil {
		probe = quality.ProbeImage
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &ColoringStrategy{
		cover:     deps.Cover,
		pages:     deps.Pages,
		editor:    deps.Editor,
		vector:    deps.Vector,
		assembler: deps.Assembler,
		planner:   deps.Planner,
		pricing:   deps.Pricing,
		recorder:  deps.Recorder,
		validator: deps.Validator,
		probe:     probe,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate runs the full coloring-book sequence for one request.
func (s *ColoringStrategy) Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error) {
	if err := s.checkAvailability(); err != nil {
		return nil, err
	}

	plans, err := s.planPages(ctx, req)
	if err != nil {
		return nil, err
	}

	// Cover first: it is the cheapest place to fail, and the back cover
	// derives from it.
	coverBytes, err := s.cover.GenerateCover(ctx, coverPrompt(req), s.cfg.CoverSpec, req.Seed)
	if err != nil {
		return nil, err
	}
	s.recordImage(ctx, req.RequestID, s.cover.Model(), 0, 1)
	if err := s.gate(coverBytes, true, ""); err != nil {
		return nil, err
	}

	content, err := s.generateContent(ctx, req, plans)
	if err != nil {
		return nil, err
	}

	backBytes, err := s.cover.RemoveText(ctx, coverBytes)
	if err != nil {
		return nil, err
	}
	s.recordImage(ctx, req.RequestID, s.cover.Model(), 1, 1)

	format := model.FormatRaster
	if s.cfg.Vectorize {
		if content, err = s.vectorizeContent(ctx, content); err != nil {
			return nil, err
		}
		format = model.FormatVector
	}

	// Page order is fixed here and never changes afterwards:
	// cover, content pages by index, back cover.
	pages := make([]model.PageMeta, 0, req.PageCount+2)
	pages = append(pages, pageMeta(1, "Cover", model.FormatRaster, coverBytes))
	for i, data := range content {
		pages = append(pages, pageMeta(i+2, plans[i].Title, format, data))
	}
	pages = append(pages, pageMeta(req.PageCount+2, "Back Cover", model.FormatRaster, backBytes))

	uri, err := s.assembler.Assemble(ctx, AssemblySpec{
		Cover:      pages[0],
		Pages:      pages[1 : len(pages)-1],
		BackCover:  pages[len(pages)-1],
		OutputPath: fmt.Sprintf("%s/%s.pdf", s.cfg.OutputDir, req.RequestID),
		Export:     s.cfg.Export,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("coloring book generated",
		zap.String("request_id", req.RequestID),
		zap.String("artifact", uri),
		zap.Int("pages", len(pages)),
	)

	return &model.GenerationResult{ArtifactURI: uri, Pages: pages}, nil
}

// RegeneratePage reproduces a single content page (1-based index into the
// content pages, not the assembled artifact). With a seeded request the
// derived sub-seed makes the output byte-identical to the page from a full
// run, so one bad drawing can be replaced without replaying the pipeline.
func (s *ColoringStrategy) RegeneratePage(ctx context.Context, req model.GenerationRequest, pageNumber int) (model.PageMeta, error) {
	if pageNumber < 1 || pageNumber > req.PageCount {
		return model.PageMeta{}, model.ValidationError(
			fmt.Sprintf("page number %d is outside the request's 1..%d content pages", pageNumber, req.PageCount),
			"pass a 1-based content page index",
		)
	}

	plans, err := s.planPages(ctx, req)
	if err != nil {
		return model.PageMeta{}, err
	}

	data, err := s.generatePage(ctx, req, plans[pageNumber-1], pageNumber)
	if err != nil {
		return model.PageMeta{}, err
	}

	format := model.FormatRaster
	if s.cfg.Vectorize {
		svg, err := s.vectorizePage(ctx, data)
		if err != nil {
			return model.PageMeta{}, err
		}
		data, format = svg, model.FormatVector
	}

	// +1: content page n sits behind the cover in the assembled artifact.
	return pageMeta(pageNumber+1, plans[pageNumber-1].Title, format, data), nil
}

// generateContent fans out the independent page generations, bounded by the
// configured concurrency. Failures cancel in-flight siblings through the
// group context to stop spending provider budget on a doomed run; ordering
// is restored by page index, never by completion order.
func (s *ColoringStrategy) generateContent(ctx context.Context, req model.GenerationRequest, plans []PagePlan) ([][]byte, error) {
	content := make([][]byte, req.PageCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := 1; i <= req.PageCount; i++ {
		g.Go(func() error {
			data, err := s.generatePage(gctx, req, plans[i-1], i)
			if err != nil {
				return err
			}
			content[i-1] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return content, nil
}

// generatePage produces and gates one content page. The sub-seed keeps the
// page reproducible independently of its siblings.
func (s *ColoringStrategy) generatePage(ctx context.Context, req model.GenerationRequest, plan PagePlan, index int) ([]byte, error) {
	var seed *int64
	if req.Seed != nil {
		derived := SubSeed(*req.Seed, index)
		seed = &derived
	}

	data, err := s.pages.GeneratePage(ctx, plan.Prompt, s.cfg.PageSpec, seed)
	if err != nil {
		return nil, err
	}
	s.recordImage(ctx, req.RequestID, s.pages.Model(), 0, 1)

	if s.editor != nil && s.editor.IsAvailable() {
		cleaned, err := s.editor.EditImage(ctx, data,
			"flatten to clean black-and-white line art with closed outlines", s.cfg.PageSpec)
		if err != nil {
			return nil, err
		}
		s.recordImage(ctx, req.RequestID, s.editor.Model(), 1, 1)
		data = cleaned
	}

	if err := s.gate(data, false, s.cfg.PageSpec.ColorMode); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *ColoringStrategy) vectorizeContent(ctx context.Context, content [][]byte) ([][]byte, error) {
	out := make([][]byte, len(content))
	for i, data := range content {
		svg, err := s.vectorizePage(ctx, data)
		if err != nil {
			return nil, err
		}
		out[i] = svg
	}
	return out, nil
}

func (s *ColoringStrategy) vectorizePage(ctx context.Context, raster []byte) ([]byte, error) {
	svg, err := s.vector.Vectorize(ctx, raster)
	if err != nil {
		return nil, err
	}
	svg, err = s.vector.OptimizeForColoring(ctx, svg)
	if err != nil {
		return nil, err
	}
	return []byte(svg), nil
}

// gate probes the produced bytes and runs the quality policy. The gate
// rejects, it never corrects.
func (s *ColoringStrategy) gate(data []byte, isCover bool, wantMode model.ColorMode) error {
	spec, err := s.probe(data)
	if err != nil {
		return err
	}
	if isCover {
		return s.validator.ValidateCover(spec)
	}
	if err := s.validator.ValidateContent(spec); err != nil {
		return err
	}
	return s.validator.ValidateColorMode(wantMode, spec.ColorMode)
}

// planPages resolves the per-page scene plans. With a planner configured it
// asks once for the whole book and records the token usage; otherwise it
// derives deterministic template prompts from the theme. Short planner
// output is padded with template plans so there is always exactly one plan
// per page.
func (s *ColoringStrategy) planPages(ctx context.Context, req model.GenerationRequest) ([]PagePlan, error) {
	if s.planner == nil || !s.planner.IsAvailable() {
		plans := make([]PagePlan, req.PageCount)
		for i := range plans {
			plans[i] = templatePlan(req, i+1)
		}
		return plans, nil
	}

	plans, tokens, err := s.planner.PlanPages(ctx, req.Title, req.Theme, req.Audience, req.PageCount)
	if err != nil {
		return nil, err
	}
	s.recordTokens(ctx, req.RequestID, s.planner.Model(), tokens)

	if len(plans) > req.PageCount {
		plans = plans[:req.PageCount]
	}
	for i := len(plans); i < req.PageCount; i++ {
		plans = append(plans, templatePlan(req, i+1))
	}
	return plans, nil
}

// checkAvailability short-circuits before any provider budget is spent.
func (s *ColoringStrategy) checkAvailability() error {
	probes := []struct {
		name string
		ok   bool
	}{
		{"cover generation", s.cover.IsAvailable()},
		{"content page generation", s.pages.IsAvailable()},
		{"assembly", s.assembler.IsAvailable()},
		{"vectorization", !s.cfg.Vectorize || (s.vector != nil && s.vector.IsAvailable())},
	}
	for _, p := range probes {
		if !p.ok {
			return model.NewDomainError(
				model.CodeModelUnavailable,
				p.name+" provider is not available",
				"check the provider configuration and credentials",
			).With("capability", p.name)
		}
	}
	return nil
}

// recordImage persists one image-call usage record, best-effort. Cost comes
// from the pricing port's per-image rate for the model.
func (s *ColoringStrategy) recordImage(ctx context.Context, requestID, modelID string, in, out int) {
	pricing := s.pricing.ModelPricing()[modelID]
	s.recorder.RecordImages(ctx, model.ImageUsage{
		RequestID:    requestID,
		Model:        modelID,
		InputImages:  in,
		OutputImages: out,
		Cost:         pricing.PerImage.Mul(decimal.NewFromInt(int64(out))),
	})
}

// recordTokens persists one token-call usage record, best-effort.
func (s *ColoringStrategy) recordTokens(ctx context.Context, requestID, modelID string, tc TokenCount) {
	pricing := s.pricing.ModelPricing()[modelID]
	cost := pricing.PerPromptToken.Mul(decimal.NewFromInt(int64(tc.Prompt))).
		Add(pricing.PerCompletionToken.Mul(decimal.NewFromInt(int64(tc.Completion))))
	s.recorder.RecordTokens(ctx, model.TokenUsage{
		RequestID:        requestID,
		Model:            modelID,
		PromptTokens:     tc.Prompt,
		CompletionTokens: tc.Completion,
		Cost:             cost,
	})
}

func pageMeta(number int, title string, format model.PageFormat, data []byte) model.PageMeta {
	return model.PageMeta{
		Number:   number,
		Title:    title,
		Format:   format,
		ByteSize: len(data),
		Data:     data,
	}
}
