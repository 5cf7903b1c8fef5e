// Package generation contains the orchestration core: the provider port
// contracts, the per-ebook-type strategies that sequence them, and the
// facade that is the single entry point for generation requests.
package generation

import (
	"context"

	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/registry"
)

// Each external capability is one narrow interface. Concrete adapters live
// in internal/provider and satisfy these implicitly; the core never imports
// them. Every port exposes IsAvailable so the strategy can short-circuit
// before spending provider budget against a disabled or misconfigured
// backend. Retries, backoff, and timeouts belong to the adapters — a port
// call either returns bytes or raises a DomainError.

// CoverGenerationPort produces front covers and derives back covers from
// them. RemoveText strips title text from a front cover so the back cover
// stays visually consistent with the front instead of being a fresh
// generation.
type CoverGenerationPort interface {
	GenerateCover(ctx context.Context, prompt string, spec model.ImageSpec, seed *int64) ([]byte, error)
	RemoveText(ctx context.Context, cover []byte) ([]byte, error)
	Model() string
	IsAvailable() bool
}

// ContentPageGenerationPort produces interior pages.
type ContentPageGenerationPort interface {
	GeneratePage(ctx context.Context, prompt string, spec model.ImageSpec, seed *int64) ([]byte, error)
	Model() string
	IsAvailable() bool
}

// ImageEditPort applies an instruction-driven transform to an existing
// image (cleanup, recolor, crop).
type ImageEditPort interface {
	EditImage(ctx context.Context, image []byte, instruction string, spec model.ImageSpec) ([]byte, error)
	Model() string
	IsAvailable() bool
}

// VectorizationPort traces raster pages into SVG and tunes the result for
// the coloring use case (closed outlines, no fills).
type VectorizationPort interface {
	Vectorize(ctx context.Context, raster []byte) (string, error)
	OptimizeForColoring(ctx context.Context, svg string) (string, error)
	IsAvailable() bool
}

// AssemblySpec is the input to artifact assembly. Pages are in final page
// order and are never reordered by the assembler.
type AssemblySpec struct {
	Cover      model.PageMeta
	Pages      []model.PageMeta
	BackCover  model.PageMeta
	OutputPath string
	Export     model.ExportType
}

// AssemblyPort binds validated pages into one artifact and returns its URI.
type AssemblyPort interface {
	Assemble(ctx context.Context, spec AssemblySpec) (string, error)
	IsAvailable() bool
}

// StoredFile describes a file persisted through the storage port.
type StoredFile struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Size     int64             `json:"size"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FileStoragePort persists artifacts and previews.
type FileStoragePort interface {
	Store(ctx context.Context, data []byte, filename string, metadata map[string]string) (StoredFile, error)
	GetFileInfo(ctx context.Context, id string) (StoredFile, error)
	IsAvailable() bool
}

// PricingPort supplies billing rates per model id. The registry implements
// it; adapters that fetch live pricing can replace it.
type PricingPort interface {
	ModelPricing() map[string]registry.Pricing
	ClearCache()
	IsAvailable() bool
}

// PagePlan is one planned scene for a content page.
type PagePlan struct {
	Title  string
	Prompt string
}

// TokenCount reports the tokens a planner call consumed, as the provider
// metered them.
type TokenCount struct {
	Prompt     int
	Completion int
}

// PromptPlannerPort expands a title and theme into distinct per-page scene
// prompts, so a 24-page book gets 24 different drawings instead of 24
// variations of the theme sentence. Optional: strategies fall back to
// templated prompts when no planner is configured.
type PromptPlannerPort interface {
	PlanPages(ctx context.Context, title, theme string, audience model.Audience, count int) ([]PagePlan, TokenCount, error)
	Model() string
	IsAvailable() bool
}

// UsageRecorder persists per-call usage records. Implemented by the costs
// package; recording is best-effort and must never abort the pipeline.
type UsageRecorder interface {
	RecordTokens(ctx context.Context, usage model.TokenUsage)
	RecordImages(ctx context.Context, usage model.ImageUsage)
}
