package registry

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nash-team/bookforge/internal/model"
)

// Pricing holds the billing rates for one model. Rates are decimal — costs
// are multiplied and summed exactly, never through float64.
type Pricing struct {
	PerPromptToken     decimal.Decimal `json:"per_prompt_token"`
	PerCompletionToken decimal.Decimal `json:"per_completion_token"`
	PerImage           decimal.Decimal `json:"per_image"`
}

// ModelInfo is the static metadata the registry layers on top of provider
// detection: who serves the model, what it can do, and what it costs.
type ModelInfo struct {
	ID             string   `json:"id"`
	Provider       Provider `json:"provider"`
	SupportsImages bool     `json:"supports_images"`
	SupportsSeed   bool     `json:"supports_seed"`
	Pricing        Pricing  `json:"pricing"`
}

// rate is a shorthand for building decimal rates from strings, so the table
// below stays readable. Panics on malformed literals, which only happens at
// init with a typo in this file.
func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// knownModels is the static model table. Provider assignment here always
// agrees with DetectProvider; the table adds what detection cannot know.
var knownModels = []ModelInfo{
	{
		ID: "gemini-2.5-flash", Provider: ProviderGemini,
		SupportsImages: false, SupportsSeed: true,
		Pricing: Pricing{PerPromptToken: rate("0.0000003"), PerCompletionToken: rate("0.0000025")},
	},
	{
		ID: "gemini-2.5-flash-image", Provider: ProviderGemini,
		SupportsImages: true, SupportsSeed: true,
		Pricing: Pricing{PerImage: rate("0.039")},
	},
	{
		ID: "black-forest-labs/flux-schnell", Provider: ProviderReplicate,
		SupportsImages: true, SupportsSeed: true,
		Pricing: Pricing{PerImage: rate("0.003")},
	},
	{
		ID: "black-forest-labs/flux-1.1-pro", Provider: ProviderReplicate,
		SupportsImages: true, SupportsSeed: true,
		Pricing: Pricing{PerImage: rate("0.04")},
	},
	{
		ID: "google/gemini-2.0-flash-001", Provider: ProviderOpenRouter,
		SupportsImages: false, SupportsSeed: false,
		Pricing: Pricing{PerPromptToken: rate("0.0000001"), PerCompletionToken: rate("0.0000004")},
	},
	{
		ID: "sdxl-turbo", Provider: ProviderLocal,
		SupportsImages: true, SupportsSeed: true,
		Pricing: Pricing{}, // local inference is free
	},
	{
		ID: "gpt-image-1", Provider: ProviderUnknown,
		SupportsImages: true, SupportsSeed: false,
		Pricing: Pricing{PerImage: rate("0.042")},
	},
	{
		ID: "claude-sonnet-4-5", Provider: ProviderUnknown,
		SupportsImages: false, SupportsSeed: false,
		Pricing: Pricing{PerPromptToken: rate("0.000003"), PerCompletionToken: rate("0.000015")},
	},
}

// Registry resolves model identifiers to their metadata and serves as the
// pricing source for cost tracking. It is constructed explicitly and passed
// to whoever needs it — there is no package-level instance.
type Registry struct {
	mu     sync.RWMutex
	models map[string]ModelInfo
	cache  map[string]Pricing // lazily built pricing view, see ModelPricing
}

// New creates a registry seeded with the built-in model table.
func New() *Registry {
	r := &Registry{models: make(map[string]ModelInfo, len(knownModels))}
	for _, m := range knownModels {
		r.models[m.ID] = m
	}
	return r
}

// Register adds or replaces a model entry. Used by config to add
// deployment-specific models on top of the built-in table.
func (r *Registry) Register(info ModelInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[info.ID] = info
	r.cache = nil
}

// Lookup returns the metadata for a model id, or a MODEL_UNAVAILABLE error
// for models the registry does not know.
func (r *Registry) Lookup(modelID string) (ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.models[modelID]
	if !ok {
		return ModelInfo{}, model.NewDomainError(
			model.CodeModelUnavailable,
			"model "+modelID+" is not registered",
			"register the model in the registry or pick one from the known model table",
		).With("model", modelID)
	}
	return info, nil
}

// ModelPricing returns the pricing table keyed by model id. The view is
// built once and reused until ClearCache or Register invalidates it.
func (r *Registry) ModelPricing() map[string]Pricing {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = make(map[string]Pricing, len(r.models))
		for id, info := range r.models {
			r.cache[id] = info.Pricing
		}
	}
	return r.cache
}

// List returns every registered model sorted by id.
func (r *Registry) List() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelInfo, 0, len(r.models))
	for _, info := range r.models {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ClearCache drops the cached pricing view.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = nil
}

// IsAvailable reports whether the registry can serve lookups. Always true
// for the static registry; the method exists to satisfy the pricing port.
func (r *Registry) IsAvailable() bool { return true }
