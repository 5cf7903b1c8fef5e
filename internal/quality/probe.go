package quality

import (
	"github.com/h2non/bimg"

	"github.com/nash-team/bookforge/internal/model"
)

// ProbeImage decodes generated image bytes far enough to report their real
// dimensions and color interpretation as an ImageSpec, so the gate can
// validate what a provider actually produced rather than what it claimed.
// DPI is left unset — raster providers rarely embed it reliably.
func ProbeImage(data []byte) (model.ImageSpec, error) {
	img := bimg.NewImage(data)

	size, err := img.Size()
	if err != nil {
		return model.ImageSpec{}, model.NewDomainError(
			model.CodeStorage,
			"could not decode generated image",
			"the provider returned bytes that are not a readable image; check the adapter response parsing",
		)
	}

	spec := model.ImageSpec{
		Width:     size.Width,
		Height:    size.Height,
		Format:    model.FormatRaster,
		ColorMode: model.ColorModeColor,
	}

	if interp, err := img.Interpretation(); err == nil && interp == bimg.InterpretationBW {
		spec.ColorMode = model.ColorModeBlackWhite
	}

	return spec, nil
}
