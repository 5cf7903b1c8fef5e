// Package provider contains the concrete adapters behind the generation
// ports. Adapters own everything the core refuses to: provider SDKs,
// timeouts, response parsing. They surface failures as DomainError values
// so the core never sees raw SDK errors.
package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nash-team/bookforge/internal/model"
)

// GeminiImageProvider generates and edits images through the Gemini API.
// It serves the cover, content-page, and image-edit ports: Gemini's
// multimodal generation handles both fresh prompts and image-plus-
// instruction edits, which is what makes the back-cover text removal a
// same-provider transform.
type GeminiImageProvider struct {
	client  *genai.Client
	model   string
	enabled bool
	logger  *zap.Logger
}

// NewGeminiImageProvider creates the adapter. A missing API key produces a
// disabled provider rather than an error, so wiring stays unconditional
// and the strategy's availability probe does the gating.
func NewGeminiImageProvider(ctx context.Context, apiKey, modelID string, logger *zap.Logger) (*GeminiImageProvider, error) {
	if apiKey == "" {
		return &GeminiImageProvider{model: modelID, enabled: false, logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiImageProvider{
		client:  client,
		model:   modelID,
		enabled: true,
		logger:  logger,
	}, nil
}

func (p *GeminiImageProvider) Model() string     { return p.model }
func (p *GeminiImageProvider) IsAvailable() bool { return p.enabled }

// GenerateCover produces a cover image from a text prompt.
func (p *GeminiImageProvider) GenerateCover(ctx context.Context, prompt string, spec model.ImageSpec, seed *int64) ([]byte, error) {
	return p.generate(ctx, []*genai.Part{{Text: prompt}}, seed)
}

// GeneratePage produces one content page from a text prompt.
func (p *GeminiImageProvider) GeneratePage(ctx context.Context, prompt string, spec model.ImageSpec, seed *int64) ([]byte, error) {
	return p.generate(ctx, []*genai.Part{{Text: prompt}}, seed)
}

// RemoveText derives a back cover by asking the model to repaint the front
// cover without any lettering.
func (p *GeminiImageProvider) RemoveText(ctx context.Context, cover []byte) ([]byte, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: cover}},
		{Text: "Reproduce this illustration exactly, but remove all text, titles, and lettering. Keep the artwork, composition, and colors unchanged."},
	}
	return p.generate(ctx, parts, nil)
}

// EditImage applies a free-form instruction to an existing image.
func (p *GeminiImageProvider) EditImage(ctx context.Context, image []byte, instruction string, spec model.ImageSpec) ([]byte, error) {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: image}},
		{Text: instruction},
	}
	return p.generate(ctx, parts, nil)
}

func (p *GeminiImageProvider) generate(ctx context.Context, parts []*genai.Part, seed *int64) ([]byte, error) {
	if !p.enabled {
		return nil, model.NewDomainError(
			model.CodeModelUnavailable,
			"gemini provider is not configured",
			"set the gemini API key in config",
		)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	if seed != nil {
		// Gemini seeds are int32; truncation keeps determinism because the
		// same sub-seed always truncates the same way.
		s := int32(*seed)
		config.Seed = &s
	}

	contents := []*genai.Content{{Parts: parts}}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, classifyProviderError("gemini", p.model, err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, model.NewDomainError(
		model.CodeModelUnavailable,
		fmt.Sprintf("gemini model %s returned no image data", p.model),
		"the model may have refused the prompt; check safety settings and prompt wording",
	).With("model", p.model)
}

// classifyProviderError maps transport-level failures onto the closed
// provider error codes. Anything unrecognized becomes MODEL_UNAVAILABLE —
// the least specific provider code, never a silent pass.
func classifyProviderError(providerName, modelID string, err error) error {
	code := model.CodeModelUnavailable
	hint := "check provider status and credentials"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = model.CodeProviderTimeout
		hint = "increase the adapter timeout or retry later"
	case errors.Is(err, context.Canceled):
		// Cancellation is not a provider fault; propagate it untouched so
		// errgroup siblings shut down quietly.
		return err
	}
	return model.NewDomainError(
		code,
		fmt.Sprintf("%s call for model %s failed: %v", providerName, modelID, err),
		hint,
	).With("provider", providerName).With("model", modelID)
}
