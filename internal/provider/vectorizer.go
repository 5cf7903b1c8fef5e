package provider

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/dennwc/gotrace"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/model"
)

// Vectorizer traces raster pages to SVG with a potrace port. It runs locally
// and costs nothing, so it never records usage.
type Vectorizer struct {
	logger *zap.Logger
}

// NewVectorizer creates the local tracing adapter.
func NewVectorizer(logger *zap.Logger) *Vectorizer {
	return &Vectorizer{logger: logger}
}

// Vectorize traces the dark regions of a raster page into SVG paths.
func (v *Vectorizer) Vectorize(ctx context.Context, raster []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raster))
	if err != nil {
		return "", model.NewDomainError(
			model.CodeStorage,
			"cannot decode page image for vectorization: "+err.Error(),
			"vectorization needs a decodable PNG or JPEG page",
		)
	}

	// Dark pixels become the traced foreground.
	bm := gotrace.NewBitmapFromImage(img, func(x, y int, c color.Color) bool {
		r, g, b, _ := c.RGBA()
		return (r+g+b)/3 < 0x8000
	})

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", model.NewDomainError(
			model.CodeStorage,
			"tracing page image failed: "+err.Error(),
			"the page raster may be empty or degenerate",
		)
	}

	var buf bytes.Buffer
	if err := gotrace.WriteSvg(&buf, img.Bounds(), paths, "#000000"); err != nil {
		return "", model.NewDomainError(
			model.CodeStorage,
			"writing traced SVG failed: "+err.Error(),
			"",
		)
	}

	v.logger.Debug("page vectorized", zap.Int("paths", len(paths)))
	return buf.String(), nil
}

// OptimizeForColoring turns filled trace shapes into stroked outlines so the
// interior stays white for coloring.
func (v *Vectorizer) OptimizeForColoring(ctx context.Context, svg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := strings.ReplaceAll(svg, `fill="#000000"`, `fill="none" stroke="#000000" stroke-width="2"`)
	out = strings.ReplaceAll(out, `fill="black"`, `fill="none" stroke="black" stroke-width="2"`)
	return out, nil
}

// IsAvailable always reports true: tracing is in-process.
func (v *Vectorizer) IsAvailable() bool { return true }
