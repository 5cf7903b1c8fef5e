// Package service contains the application-level orchestration around the
// generation core: run the pipeline, store the preview, create the draft
// ebook record, and settle the request's cost.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/storage"
)

// BookService drives one generation request end to end. The facade owns
// the pipeline; this layer owns what happens around it — persistence,
// preview storage, cost settlement. There is no transaction spanning
// storage and generation: a failure after the artifact exists leaves the
// artifact in place and reports the error (best-effort compensation only).
type BookService struct {
	facade     *generation.Facade
	ebooks     storage.EbookRepository
	files      generation.FileStoragePort
	assembler  generation.AssemblyPort
	calculator *costs.Calculator
	bus        *events.Bus
	logger     *zap.Logger
}

// NewBookService wires the application service.
func NewBookService(
	facade *generation.Facade,
	ebooks storage.EbookRepository,
	files generation.FileStoragePort,
	assembler generation.AssemblyPort,
	calculator *costs.Calculator,
	bus *events.Bus,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		facade:     facade,
		ebooks:     ebooks,
		files:      files,
		assembler:  assembler,
		calculator: calculator,
		bus:        bus,
		logger:     logger,
	}
}

// CreateBook runs the full pipeline for a request, stores the cover as the
// operator preview, creates the draft ebook record, and settles the
// request's cost. The returned ebook is in draft status, ready for
// submit-for-validation.
func (s *BookService) CreateBook(ctx context.Context, req model.GenerationRequest) (*model.Ebook, *model.GenerationResult, model.CostCalculation, error) {
	req, result, err := s.facade.Generate(ctx, req)
	if err != nil {
		// Usage rows for the calls that succeeded are already persisted;
		// the cost use case can still be queried for this request id.
		return nil, nil, model.CostCalculation{}, err
	}

	preview, err := s.files.Store(ctx, result.Pages[0].Data, req.RequestID+"-preview.png",
		map[string]string{"request_id": req.RequestID, "kind": "preview"})
	if err != nil {
		return nil, nil, model.CostCalculation{}, fmt.Errorf("storing preview: %w", err)
	}

	ebook := &model.Ebook{
		RequestID:  req.RequestID,
		Title:      req.Title,
		Theme:      req.Theme,
		Type:       req.Type,
		Audience:   req.Audience,
		PageCount:  req.PageCount,
		Status:     model.StatusDraft,
		StorageRef: result.ArtifactURI,
		PreviewRef: preview.URL,
	}
	if err := s.ebooks.Create(ctx, ebook); err != nil {
		return nil, nil, model.CostCalculation{}, fmt.Errorf("creating ebook record: %w", err)
	}

	calc, err := s.calculator.Calculate(ctx, req.RequestID)
	if err != nil {
		return nil, nil, model.CostCalculation{}, err
	}

	s.logger.Info("book created",
		zap.Int64("ebook_id", ebook.ID),
		zap.String("request_id", req.RequestID),
		zap.String("total_cost", calc.TotalCost.String()),
	)
	return ebook, result, calc, nil
}

// RegeneratePage reproduces one content page of a previous request and
// stores the replacement bytes. The request must carry the original seed
// for the output to match the original run.
func (s *BookService) RegeneratePage(ctx context.Context, req model.GenerationRequest, pageNumber int) (model.PageMeta, generation.StoredFile, error) {
	meta, err := s.facade.RegeneratePage(ctx, req, pageNumber)
	if err != nil {
		return model.PageMeta{}, generation.StoredFile{}, err
	}

	ext := "png"
	if meta.Format == model.FormatVector {
		ext = "svg"
	}
	stored, err := s.files.Store(ctx, meta.Data,
		fmt.Sprintf("%s-page-%d.%s", req.RequestID, pageNumber, ext),
		map[string]string{"request_id": req.RequestID, "kind": "regenerated-page"})
	if err != nil {
		return model.PageMeta{}, generation.StoredFile{}, fmt.Errorf("storing regenerated page: %w", err)
	}
	return meta, stored, nil
}

// Export assembles an additional variant of a generated book from a result
// still in hand and publishes an ExportGeneratedEvent. KDP exports get
// bleed and barcode reserve; web exports use the trim size as-is.
func (s *BookService) Export(ctx context.Context, ebook *model.Ebook, result *model.GenerationResult, export model.ExportType, outputPath string) (string, error) {
	if len(result.Pages) < 2 {
		return "", model.ValidationError(
			"result has no pages to export",
			"run generation before requesting an export",
		)
	}

	uri, err := s.assembler.Assemble(ctx, generation.AssemblySpec{
		Cover:      result.Pages[0],
		Pages:      result.Pages[1 : len(result.Pages)-1],
		BackCover:  result.Pages[len(result.Pages)-1],
		OutputPath: outputPath,
		Export:     export,
	})
	if err != nil {
		return "", err
	}

	if err := s.bus.Publish(ctx, model.ExportGeneratedEvent{
		EventHeader: model.NewEventHeader(ebook.RequestID),
		EbookID:     ebook.ID,
		Export:      export,
		ArtifactURI: uri,
	}); err != nil {
		return "", err
	}
	return uri, nil
}
