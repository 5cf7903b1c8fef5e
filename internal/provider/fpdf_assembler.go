package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/model"
)

// KDP print geometry, in inches. Bleed is added to the outer edges of the
// trim size; the barcode reserve is the area KDP stamps on the back cover,
// which must stay clear of artwork.
const (
	kdpBleedIn         = 0.125
	kdpBarcodeWidthIn  = 2.0
	kdpBarcodeHeightIn = 1.2
)

// PDFAssembler binds validated pages into a PDF artifact. Pages are placed
// strictly in the order given — the assembler never reorders.
type PDFAssembler struct {
	trimWidthIn  float64
	trimHeightIn float64
	logger       *zap.Logger
}

// NewPDFAssembler creates an assembler for the given trim size in inches.
func NewPDFAssembler(trimWidthIn, trimHeightIn float64, logger *zap.Logger) *PDFAssembler {
	return &PDFAssembler{
		trimWidthIn:  trimWidthIn,
		trimHeightIn: trimHeightIn,
		logger:       logger,
	}
}

// IsAvailable is always true: PDF assembly is local.
func (a *PDFAssembler) IsAvailable() bool { return true }

// Assemble writes cover, content pages, and back cover into one PDF at
// spec.OutputPath and returns the artifact URI.
func (a *PDFAssembler) Assemble(ctx context.Context, spec generation.AssemblySpec) (string, error) {
	pageW, pageH := a.trimWidthIn, a.trimHeightIn
	if spec.Export == model.ExportKDP {
		// Bleed extends the outer edge on three sides; top and bottom
		// each get a full bleed strip.
		pageW += kdpBleedIn
		pageH += 2 * kdpBleedIn
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "in",
		Size:    fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	if err := a.addPage(pdf, spec.Cover, pageW, pageH, false); err != nil {
		return "", err
	}
	for _, page := range spec.Pages {
		if err := a.addPage(pdf, page, pageW, pageH, false); err != nil {
			return "", err
		}
	}
	reserveBarcode := spec.Export == model.ExportKDP
	if err := a.addPage(pdf, spec.BackCover, pageW, pageH, reserveBarcode); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(spec.OutputPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(spec.OutputPath); err != nil {
		return "", model.NewDomainError(
			model.CodeStorage,
			"writing PDF artifact failed: "+err.Error(),
			"check the output directory exists and is writable",
		).With("output", spec.OutputPath)
	}

	a.logger.Info("artifact assembled",
		zap.String("output", spec.OutputPath),
		zap.Int("pages", len(spec.Pages)+2),
		zap.String("export", string(spec.Export)),
	)

	abs, err := filepath.Abs(spec.OutputPath)
	if err != nil {
		abs = spec.OutputPath
	}
	return "file://" + abs, nil
}

// addPage places one page's image full-bleed on a fresh PDF page.
func (a *PDFAssembler) addPage(pdf *fpdf.Fpdf, page model.PageMeta, pageW, pageH float64, reserveBarcode bool) error {
	pdf.AddPage()

	if page.Format == model.FormatVector {
		svg, err := fpdf.SVGBasicParse(page.Data)
		if err != nil {
			return model.NewDomainError(
				model.CodeStorage,
				fmt.Sprintf("page %d: unparseable SVG: %v", page.Number, err),
				"the vectorization output is not basic-profile SVG",
			).With("page", page.Number)
		}
		scale := pageW / svg.Wd
		if alt := pageH / svg.Ht; alt < scale {
			scale = alt
		}
		pdf.SetLineWidth(0.01)
		pdf.SVGBasicWrite(&svg, scale)
	} else {
		imageType := "PNG"
		if http.DetectContentType(page.Data) == "image/jpeg" {
			imageType = "JPG"
		}
		opts := fpdf.ImageOptions{ImageType: imageType}
		name := fmt.Sprintf("page-%d", page.Number)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.Data))
		pdf.ImageOptions(name, 0, 0, pageW, pageH, false, opts, 0, "")
	}

	if reserveBarcode {
		// KDP stamps its barcode bottom-right; keep the area clear.
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(pageW-kdpBarcodeWidthIn-kdpBleedIn, pageH-kdpBarcodeHeightIn-kdpBleedIn,
			kdpBarcodeWidthIn, kdpBarcodeHeightIn, "F")
	}

	if pdf.Err() {
		return model.NewDomainError(
			model.CodeStorage,
			fmt.Sprintf("page %d: PDF placement failed: %v", page.Number, pdf.Error()),
			"the page bytes may not match their declared format",
		).With("page", page.Number)
	}
	return nil
}
