package registry

import (
	"testing"

	"github.com/nash-team/bookforge/internal/model"
)

func TestRegistry_LookupKnown(t *testing.T) {
	r := New()

	info, err := r.Lookup("gemini-2.5-flash-image")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Provider != ProviderGemini {
		t.Errorf("expected gemini provider, got %q", info.Provider)
	}
	if !info.SupportsImages {
		t.Error("expected image support")
	}
	if info.Pricing.PerImage.IsZero() {
		t.Error("expected a per-image rate")
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := New()

	_, err := r.Lookup("no-such-model")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !model.HasCode(err, model.CodeModelUnavailable) {
		t.Errorf("expected MODEL_UNAVAILABLE, got %v", err)
	}
}

func TestRegistry_RegisterInvalidatesPricing(t *testing.T) {
	r := New()

	before := r.ModelPricing()
	if _, ok := before["custom-model"]; ok {
		t.Fatal("custom model should not exist yet")
	}

	r.Register(ModelInfo{
		ID:             "custom-model",
		Provider:       ProviderLocal,
		SupportsImages: true,
		Pricing:        Pricing{PerImage: rate("0.001")},
	})

	after := r.ModelPricing()
	if _, ok := after["custom-model"]; !ok {
		t.Error("expected registered model in the pricing view")
	}
}

func TestRegistry_PricingViewCached(t *testing.T) {
	r := New()

	a := r.ModelPricing()
	b := r.ModelPricing()
	if len(a) != len(b) {
		t.Fatalf("pricing views differ: %d vs %d", len(a), len(b))
	}

	r.ClearCache()
	c := r.ModelPricing()
	if len(c) != len(a) {
		t.Errorf("rebuild changed the view size: %d vs %d", len(c), len(a))
	}
}

func TestRegistry_TableAgreesWithDetection(t *testing.T) {
	r := New()
	for _, info := range r.List() {
		if info.Provider == ProviderUnknown {
			continue
		}
		if got := DetectProvider(info.ID); got != info.Provider {
			t.Errorf("model %q: table says %q, detection says %q", info.ID, info.Provider, got)
		}
	}
}
