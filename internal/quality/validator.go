// Package quality implements the policy gate that generated artifacts must
// pass before the pipeline accepts them. The validator never mutates or
// corrects an artifact — it fails fast with a specific DomainError and
// leaves correction (usually regeneration) to the caller.
package quality

import (
	"fmt"

	"github.com/nash-team/bookforge/internal/model"
)

// Policy holds the configurable thresholds the gate enforces. Content and
// cover images have independent minimum dimensions because covers render
// larger in stores and previews.
type Policy struct {
	MinContentPixels int // minimum width and height for square content pages
	MinCoverPixels   int // minimum width and height for cover images
	MaxPixels        int // upper bound on either dimension, 0 disables
	MinDPI           int // enforced only when the image spec declares a DPI
	MinPages         int
	MaxPages         int
}

// DefaultPolicy returns the thresholds used when config does not override
// them. 1024px content pages print acceptably at 8.5x8.5in; KDP previews
// want at least 1600px covers.
func DefaultPolicy() Policy {
	return Policy{
		MinContentPixels: 1024,
		MinCoverPixels:   1600,
		MaxPixels:        8192,
		MinDPI:           300,
		MinPages:         4,
		MaxPages:         64,
	}
}

// Validator is the pure policy gate. All methods return nil on pass or a
// DomainError describing the first rule violated.
type Validator struct {
	policy Policy
}

// New creates a validator for the given policy.
func New(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// ValidateContent checks a content-page spec against the policy: minimum
// square dimensions, resolution ceiling, and DPI when declared.
func (v *Validator) ValidateContent(spec model.ImageSpec) error {
	if spec.Width < v.policy.MinContentPixels || spec.Height < v.policy.MinContentPixels {
		return model.NewDomainError(
			model.CodeImageTooSmall,
			fmt.Sprintf("content image is %dx%d, minimum is %dx%d",
				spec.Width, spec.Height, v.policy.MinContentPixels, v.policy.MinContentPixels),
			"regenerate the page at a higher resolution or lower the content threshold",
		).With("width", spec.Width).With("height", spec.Height)
	}
	return v.validateCommon(spec)
}

// ValidateCover checks a cover spec against the cover-specific minimum.
func (v *Validator) ValidateCover(spec model.ImageSpec) error {
	if spec.Width < v.policy.MinCoverPixels || spec.Height < v.policy.MinCoverPixels {
		return model.NewDomainError(
			model.CodeImageTooSmall,
			fmt.Sprintf("cover image is %dx%d, minimum is %dx%d",
				spec.Width, spec.Height, v.policy.MinCoverPixels, v.policy.MinCoverPixels),
			"regenerate the cover at a higher resolution or lower the cover threshold",
		).With("width", spec.Width).With("height", spec.Height)
	}
	return v.validateCommon(spec)
}

// validateCommon enforces the rules shared by covers and content pages.
func (v *Validator) validateCommon(spec model.ImageSpec) error {
	if v.policy.MaxPixels > 0 && (spec.Width > v.policy.MaxPixels || spec.Height > v.policy.MaxPixels) {
		return model.NewDomainError(
			model.CodeResolutionTooHigh,
			fmt.Sprintf("image is %dx%d, maximum dimension is %d",
				spec.Width, spec.Height, v.policy.MaxPixels),
			"request a smaller output size; oversized artifacts blow up assembly memory",
		).With("width", spec.Width).With("height", spec.Height)
	}
	if spec.DPI > 0 && spec.DPI < v.policy.MinDPI {
		return model.NewDomainError(
			model.CodeDPITooLow,
			fmt.Sprintf("image DPI is %d, minimum is %d", spec.DPI, v.policy.MinDPI),
			"print output needs at least the configured DPI; regenerate with print settings",
		).With("dpi", spec.DPI)
	}
	return nil
}

// ValidateColorMode checks that a produced image matches the requested
// color mode. An empty request means any mode is acceptable.
func (v *Validator) ValidateColorMode(requested, actual model.ColorMode) error {
	if requested == "" || requested == actual {
		return nil
	}
	return model.NewDomainError(
		model.CodeWrongColorMode,
		fmt.Sprintf("image color mode is %s, requested %s", actual, requested),
		"coloring pages must be line art; re-run the page with a black-and-white prompt",
	).With("requested", string(requested)).With("actual", string(actual))
}

// ValidatePageCount checks the requested page count against policy bounds.
// Violations are policy errors, never a crash.
func (v *Validator) ValidatePageCount(count int) error {
	if count < v.policy.MinPages || count > v.policy.MaxPages {
		return model.NewDomainError(
			model.CodePageLimitExceeded,
			fmt.Sprintf("page count %d is outside the allowed range [%d, %d]",
				count, v.policy.MinPages, v.policy.MaxPages),
			fmt.Sprintf("request between %d and %d pages", v.policy.MinPages, v.policy.MaxPages),
		).With("page_count", count)
	}
	return nil
}
