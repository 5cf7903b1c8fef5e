package provider

import (
	"context"
	"strings"

	"github.com/h2non/bimg"

	"github.com/nash-team/bookforge/internal/model"
)

// BimgEditor is a local image-edit adapter backed by libvips. It handles
// the deterministic transforms that don't need a model call — grayscale
// flattening for coloring pages, resizing to spec — at zero provider cost.
type BimgEditor struct{}

// NewBimgEditor creates the local editor.
func NewBimgEditor() *BimgEditor {
	return &BimgEditor{}
}

// Model names the editor for usage records. The registry has no pricing
// entry for it, so its calls bill at zero.
func (e *BimgEditor) Model() string { return "local-bimg" }

// IsAvailable is always true: libvips is linked into the binary.
func (e *BimgEditor) IsAvailable() bool { return true }

// EditImage applies the instruction to the image. Instructions asking for
// black-and-white or line art flatten to a grayscale PNG; everything is
// resized to the requested dimensions when they are set.
func (e *BimgEditor) EditImage(ctx context.Context, image []byte, instruction string, spec model.ImageSpec) ([]byte, error) {
	opts := bimg.Options{
		Type:           bimg.PNG,
		Interpretation: bimg.InterpretationSRGB,
	}

	lower := strings.ToLower(instruction)
	if strings.Contains(lower, "black-and-white") || strings.Contains(lower, "line art") {
		opts.Interpretation = bimg.InterpretationBW
	}
	if spec.Width > 0 && spec.Height > 0 {
		opts.Width = spec.Width
		opts.Height = spec.Height
		opts.Embed = true
		opts.Enlarge = true
	}

	out, err := bimg.NewImage(image).Process(opts)
	if err != nil {
		return nil, model.NewDomainError(
			model.CodeStorage,
			"local image edit failed: "+err.Error(),
			"the input bytes may not be a decodable image",
		)
	}
	return out, nil
}
