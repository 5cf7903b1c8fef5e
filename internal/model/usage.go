package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenUsage records one text-model call for billing. Cost is decimal, not
// float — money totals must sum exactly, with no rounding drift.
type TokenUsage struct {
	ID               int64           `db:"id" json:"id"`
	RequestID        string          `db:"request_id" json:"request_id"`
	Model            string          `db:"model" json:"model"`
	PromptTokens     int             `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int             `db:"completion_tokens" json:"completion_tokens"`
	Cost             decimal.Decimal `db:"cost" json:"cost"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// TotalTokens is prompt plus completion tokens for this call.
func (u TokenUsage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// ImageUsage records one image-model call for billing.
type ImageUsage struct {
	ID           int64           `db:"id" json:"id"`
	RequestID    string          `db:"request_id" json:"request_id"`
	Model        string          `db:"model" json:"model"`
	InputImages  int             `db:"input_images" json:"input_images"`
	OutputImages int             `db:"output_images" json:"output_images"`
	Cost         decimal.Decimal `db:"cost" json:"cost"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// CostCalculation aggregates every usage record saved under one request id.
// TotalCost is always the exact sum of the constituent costs — it is built
// from the records, never re-derived from rates.
type CostCalculation struct {
	RequestID   string          `json:"request_id"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalTokens int             `json:"total_tokens"`
	CallCount   int             `json:"call_count"`
}

// NewCostCalculation sums token and image usage records into a calculation.
func NewCostCalculation(requestID string, tokens []TokenUsage, images []ImageUsage) CostCalculation {
	calc := CostCalculation{
		RequestID: requestID,
		TotalCost: decimal.Zero,
	}
	for _, u := range tokens {
		calc.TotalCost = calc.TotalCost.Add(u.Cost)
		calc.TotalTokens += u.TotalTokens()
		calc.CallCount++
	}
	for _, u := range images {
		calc.TotalCost = calc.TotalCost.Add(u.Cost)
		calc.CallCount++
	}
	return calc
}
