package quality

import (
	"testing"

	"github.com/nash-team/bookforge/internal/model"
)

func spec(w, h int) model.ImageSpec {
	return model.ImageSpec{Width: w, Height: h, Format: model.FormatRaster}
}

func TestValidateContent_SizeBoundary(t *testing.T) {
	v := New(DefaultPolicy())

	if err := v.ValidateContent(spec(1024, 1024)); err != nil {
		t.Errorf("1024px page should pass, got %v", err)
	}

	err := v.ValidateContent(spec(1023, 1024))
	if !model.HasCode(err, model.CodeImageTooSmall) {
		t.Errorf("1023px page should fail with IMAGE_TOO_SMALL, got %v", err)
	}
}

func TestValidateCover_StricterMinimum(t *testing.T) {
	v := New(DefaultPolicy())

	// 1024px passes as content but not as a cover.
	if err := v.ValidateContent(spec(1024, 1024)); err != nil {
		t.Fatalf("content check should pass: %v", err)
	}
	err := v.ValidateCover(spec(1024, 1024))
	if !model.HasCode(err, model.CodeImageTooSmall) {
		t.Errorf("expected IMAGE_TOO_SMALL for undersized cover, got %v", err)
	}

	if err := v.ValidateCover(spec(1600, 1600)); err != nil {
		t.Errorf("1600px cover should pass, got %v", err)
	}
}

func TestValidateContent_ResolutionCeiling(t *testing.T) {
	v := New(DefaultPolicy())

	if err := v.ValidateContent(spec(8192, 8192)); err != nil {
		t.Errorf("8192px should pass, got %v", err)
	}
	err := v.ValidateContent(spec(8193, 1024))
	if !model.HasCode(err, model.CodeResolutionTooHigh) {
		t.Errorf("expected RESOLUTION_TOO_HIGH, got %v", err)
	}
}

func TestValidateContent_DPI(t *testing.T) {
	v := New(DefaultPolicy())

	low := spec(2048, 2048)
	low.DPI = 150
	err := v.ValidateContent(low)
	if !model.HasCode(err, model.CodeDPITooLow) {
		t.Errorf("expected DPI_TOO_LOW, got %v", err)
	}

	// Zero DPI means "not declared" and is not checked.
	if err := v.ValidateContent(spec(2048, 2048)); err != nil {
		t.Errorf("undeclared DPI should pass, got %v", err)
	}
}

func TestValidateColorMode(t *testing.T) {
	v := New(DefaultPolicy())

	if err := v.ValidateColorMode(model.ColorModeBlackWhite, model.ColorModeBlackWhite); err != nil {
		t.Errorf("matching mode should pass, got %v", err)
	}
	if err := v.ValidateColorMode("", model.ColorModeColor); err != nil {
		t.Errorf("empty request accepts any mode, got %v", err)
	}
	err := v.ValidateColorMode(model.ColorModeBlackWhite, model.ColorModeColor)
	if !model.HasCode(err, model.CodeWrongColorMode) {
		t.Errorf("expected WRONG_COLOR_MODE, got %v", err)
	}
}

func TestValidatePageCount(t *testing.T) {
	v := New(DefaultPolicy())

	for _, n := range []int{4, 12, 64} {
		if err := v.ValidatePageCount(n); err != nil {
			t.Errorf("page count %d should pass, got %v", n, err)
		}
	}
	for _, n := range []int{0, 3, 65} {
		err := v.ValidatePageCount(n)
		if !model.HasCode(err, model.CodePageLimitExceeded) {
			t.Errorf("page count %d should fail with PAGE_LIMIT_EXCEEDED, got %v", n, err)
		}
	}
}
