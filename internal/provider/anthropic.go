package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/model"
)

// AnthropicPlanner expands a book's title and theme into per-page scene
// prompts using Claude with a structured submit tool, so the model returns
// clean JSON instead of free-form text that would need parsing.
type AnthropicPlanner struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicPlanner creates the planner adapter. An empty API key yields
// a disabled planner; the strategy then falls back to template prompts.
func NewAnthropicPlanner(apiKey, modelID string, logger *zap.Logger) *AnthropicPlanner {
	p := &AnthropicPlanner{model: modelID, logger: logger}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		p.client = &client
	}
	return p
}

func (p *AnthropicPlanner) Model() string     { return p.model }
func (p *AnthropicPlanner) IsAvailable() bool { return p.client != nil }

// submitPagePlans is the schema for the tool Claude calls to return the
// plan. One entry per page, in page order.
type submitPagePlans struct {
	Pages []struct {
		Title  string `json:"title"`
		Prompt string `json:"prompt"`
	} `json:"pages"`
}

// PlanPages asks Claude for count distinct scene prompts. Token usage is
// accumulated across turns and returned as the provider metered it.
func (p *AnthropicPlanner) PlanPages(ctx context.Context, title, theme string, audience model.Audience, count int) ([]generation.PagePlan, generation.TokenCount, error) {
	var tokens generation.TokenCount
	if p.client == nil {
		return nil, tokens, model.NewDomainError(
			model.CodeModelUnavailable,
			"anthropic planner is not configured",
			"set the anthropic API key in config",
		)
	}

	submitTool := anthropic.ToolParam{
		Name:        "submit_page_plans",
		Description: param.NewOpt("Submit the complete list of page plans. Call this tool exactly once with one entry per page."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"pages": map[string]interface{}{
					"type":        "array",
					"description": "One plan per page, in page order.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"title": map[string]interface{}{
								"type":        "string",
								"description": "Short page title, e.g. 'The Sleepy Fox'.",
							},
							"prompt": map[string]interface{}{
								"type":        "string",
								"description": "Full image-generation prompt for this page's line-art scene.",
							},
						},
					},
				},
			},
		},
	}
	tools := []anthropic.ToolUnionParam{{OfTool: &submitTool}}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(planPrompt(title, theme, audience, count))),
	}

	// Usually a single turn; the loop tolerates a model that thinks out
	// loud before calling the tool. Bounded to prevent runaway spend.
	for turn := 0; turn < 3; turn++ {
		message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: 4096,
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			return nil, tokens, classifyProviderError("anthropic", p.model, err)
		}
		tokens.Prompt += int(message.Usage.InputTokens)
		tokens.Completion += int(message.Usage.OutputTokens)

		for _, block := range message.Content {
			toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
			if !ok || toolUse.Name != "submit_page_plans" {
				continue
			}

			inputBytes, err := json.Marshal(toolUse.Input)
			if err != nil {
				return nil, tokens, fmt.Errorf("marshaling tool input: %w", err)
			}
			var submitted submitPagePlans
			if err := json.Unmarshal(inputBytes, &submitted); err != nil {
				return nil, tokens, fmt.Errorf("parsing tool input: %w", err)
			}

			plans := make([]generation.PagePlan, 0, len(submitted.Pages))
			for _, page := range submitted.Pages {
				plans = append(plans, generation.PagePlan{Title: page.Title, Prompt: page.Prompt})
			}
			return plans, tokens, nil
		}

		if message.StopReason == "end_turn" {
			break
		}
		messages = append(messages, message.ToParam())
	}

	return nil, tokens, model.NewDomainError(
		model.CodeModelUnavailable,
		"anthropic planner did not return page plans",
		"the model ended without calling submit_page_plans; template prompts can be used instead",
	).With("model", p.model)
}

func planPrompt(title, theme string, audience model.Audience, count int) string {
	level := "young children: simple recognizable scenes, large shapes, thick outlines"
	if audience == model.AudienceAdults {
		level = "adults: intricate scenes with fine detail and patterns"
	}
	return fmt.Sprintf(`Plan a %d-page coloring book titled %q.
Theme: %s.
Audience: %s.

For each page produce a short title and a complete image-generation prompt
describing one distinct black-and-white line-art scene. Scenes must differ
from each other — vary subjects, settings, and activities across the book.
Every prompt must demand pure line art on a white background with no
shading and no grayscale fills.

Call submit_page_plans exactly once with all %d pages in order.`,
		count, title, theme, level, count)
}
