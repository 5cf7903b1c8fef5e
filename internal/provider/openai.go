package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/model"
)

// OpenAIImageProvider generates content pages through the OpenAI image
// API. OpenAI's image endpoint has no seed parameter, so this adapter is
// used where reproducibility is not required or as a fallback behind the
// seeded providers.
type OpenAIImageProvider struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIImageProvider creates the adapter. An empty API key yields a
// disabled provider (nil client), reported through IsAvailable.
func NewOpenAIImageProvider(apiKey, modelID string, logger *zap.Logger) *OpenAIImageProvider {
	p := &OpenAIImageProvider{model: modelID, logger: logger}
	if apiKey != "" {
		p.client = openai.NewClient(apiKey)
	}
	return p
}

func (p *OpenAIImageProvider) Model() string     { return p.model }
func (p *OpenAIImageProvider) IsAvailable() bool { return p.client != nil }

// GeneratePage produces one content page. The seed is accepted for port
// compatibility and ignored — OpenAI does not expose one.
func (p *OpenAIImageProvider) GeneratePage(ctx context.Context, prompt string, spec model.ImageSpec, seed *int64) ([]byte, error) {
	if p.client == nil {
		return nil, model.NewDomainError(
			model.CodeModelUnavailable,
			"openai provider is not configured",
			"set the openai API key in config",
		)
	}
	if seed != nil {
		p.logger.Debug("openai image API ignores seeds", zap.String("model", p.model))
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.model,
		N:              1,
		Size:           fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classifyOpenAIError(p.model, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, model.NewDomainError(
			model.CodeModelUnavailable,
			fmt.Sprintf("openai model %s returned no image data", p.model),
			"the request may have been filtered; check the prompt",
		).With("model", p.model)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, model.NewDomainError(
			model.CodeModelUnavailable,
			"openai returned undecodable image payload",
			"response parsing failed; check the SDK version against the API",
		).With("model", p.model)
	}
	return data, nil
}

// classifyOpenAIError maps SDK errors onto the closed provider codes,
// keeping HTTP status knowledge out of the core.
func classifyOpenAIError(modelID string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return model.NewDomainError(
				model.CodeProviderRateLimited,
				fmt.Sprintf("openai rate limit hit for model %s", modelID),
				"lower the page-generation concurrency or wait for the limit window to pass",
			).With("model", modelID)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return model.NewDomainError(
				model.CodeProviderTimeout,
				fmt.Sprintf("openai call for model %s timed out", modelID),
				"increase the adapter timeout or retry later",
			).With("model", modelID)
		}
	}
	return classifyProviderError("openai", modelID, err)
}
