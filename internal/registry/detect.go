// Package registry maps model identifiers to provider families and layers
// static capability and pricing metadata on top of that detection.
package registry

import "strings"

// Provider is the family an adapter routes a model call through.
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderReplicate  Provider = "replicate"
	ProviderOpenRouter Provider = "openrouter"
	ProviderLocal      Provider = "local"
	ProviderUnknown    Provider = "unknown"
)

// detectRule is one ordered substring rule. Rules are evaluated top to
// bottom and the first match wins — model strings can satisfy several rules
// (a Gemini model routed through OpenRouter must resolve to openrouter),
// so the order is load-bearing. Do not reorder.
type detectRule struct {
	provider Provider
	match    func(id string) bool
}

var detectRules = []detectRule{
	{ProviderGemini, func(id string) bool {
		return strings.Contains(id, "gemini") &&
			!strings.Contains(id, "openrouter") &&
			!strings.HasPrefix(id, "google/")
	}},
	{ProviderReplicate, func(id string) bool {
		return strings.Contains(id, "flux") ||
			strings.Contains(id, "replicate") ||
			strings.Contains(id, "black-forest")
	}},
	{ProviderOpenRouter, func(id string) bool {
		return strings.Contains(id, "openrouter") || strings.HasPrefix(id, "google/")
	}},
	{ProviderLocal, func(id string) bool {
		return strings.Contains(id, "sdxl") || strings.Contains(id, "stable-diffusion")
	}},
}

// DetectProvider resolves a model identifier to its provider family.
// It is a pure function over the identifier; unknown models resolve to
// ProviderUnknown rather than erroring, so callers decide how to react.
func DetectProvider(modelID string) Provider {
	id := strings.ToLower(strings.TrimSpace(modelID))
	for _, rule := range detectRules {
		if rule.match(id) {
			return rule.provider
		}
	}
	return ProviderUnknown
}
