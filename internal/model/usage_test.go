package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCostCalculation_ExactSum(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3 — the classic float trap.
	tokens := []TokenUsage{
		{RequestID: "req-1", PromptTokens: 100, CompletionTokens: 50, Cost: decimal.RequireFromString("0.1")},
	}
	images := []ImageUsage{
		{RequestID: "req-1", OutputImages: 1, Cost: decimal.RequireFromString("0.2")},
	}

	calc := NewCostCalculation("req-1", tokens, images)

	if !calc.TotalCost.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("TotalCost = %s, want 0.3", calc.TotalCost)
	}
	if calc.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", calc.TotalTokens)
	}
	if calc.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", calc.CallCount)
	}
}

func TestNewCostCalculation_Empty(t *testing.T) {
	calc := NewCostCalculation("req-2", nil, nil)
	if !calc.TotalCost.IsZero() {
		t.Errorf("empty calculation should cost zero, got %s", calc.TotalCost)
	}
	if calc.CallCount != 0 {
		t.Errorf("CallCount = %d, want 0", calc.CallCount)
	}
}
