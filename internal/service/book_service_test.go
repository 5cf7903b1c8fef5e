package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/quality"
	"github.com/nash-team/bookforge/internal/storage"
)

// stubStrategy returns a fixed three-page result and records usage the way
// the real strategy does, so the service-level flow (preview storage, draft
// record, cost settlement) can be tested without providers.
type stubStrategy struct {
	recorder generation.UsageRecorder
}

func (s *stubStrategy) Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error) {
	s.recorder.RecordImages(ctx, model.ImageUsage{
		RequestID:    req.RequestID,
		Model:        "gemini-2.5-flash-image",
		OutputImages: 1,
		Cost:         decimal.RequireFromString("0.039"),
	})
	pages := []model.PageMeta{
		{Number: 1, Title: "Cover", Format: model.FormatRaster, Data: []byte("cover"), ByteSize: 5},
		{Number: 2, Title: "Page 1", Format: model.FormatRaster, Data: []byte("page1"), ByteSize: 5},
		{Number: 3, Title: "Back Cover", Format: model.FormatRaster, Data: []byte("back"), ByteSize: 4},
	}
	return &model.GenerationResult{
		ArtifactURI: "file:///books/" + req.RequestID + ".pdf",
		Pages:       pages,
	}, nil
}

func (s *stubStrategy) RegeneratePage(ctx context.Context, req model.GenerationRequest, pageNumber int) (model.PageMeta, error) {
	return model.PageMeta{
		Number: pageNumber + 1, Title: "Page", Format: model.FormatRaster,
		Data: []byte("regen"), ByteSize: 5,
	}, nil
}

type stubAssembler struct{}

func (stubAssembler) Assemble(ctx context.Context, spec generation.AssemblySpec) (string, error) {
	return "file://" + spec.OutputPath, nil
}
func (stubAssembler) IsAvailable() bool { return true }

func setupBookService(t *testing.T) (*BookService, storage.EbookRepository, *events.Bus) {
	t.Helper()

	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating file storage: %v", err)
	}

	logger := zap.NewNop()
	bus := events.NewBus(logger)
	ebookRepo := storage.NewEbookRepository(db)
	usageRepo := storage.NewUsageRepository(db)
	tracker := costs.NewTracker(usageRepo, bus, logger)
	calculator := costs.NewCalculator(usageRepo, bus, logger)

	facade := generation.NewFacade(
		map[model.EbookType]generation.Strategy{
			model.TypeColoring: &stubStrategy{recorder: tracker},
		},
		quality.New(quality.DefaultPolicy()),
		bus, logger,
	)

	svc := NewBookService(facade, ebookRepo, files, stubAssembler{}, calculator, bus, logger)
	return svc, ebookRepo, bus
}

func TestCreateBook(t *testing.T) {
	svc, repo, _ := setupBookService(t)

	req := model.GenerationRequest{
		Title:     "Forest Friends",
		Theme:     "woodland animals",
		Audience:  model.AudienceChildren,
		Type:      model.TypeColoring,
		PageCount: 12,
	}
	ebook, result, calc, err := svc.CreateBook(context.Background(), req)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	if ebook.Status != model.StatusDraft {
		t.Errorf("new book status = %s, want draft", ebook.Status)
	}
	if !ebook.HasArtifacts() {
		t.Error("new book should have storage and preview refs")
	}
	if len(result.Pages) != 3 {
		t.Errorf("page count = %d, want 3", len(result.Pages))
	}
	if !calc.TotalCost.Equal(decimal.RequireFromString("0.039")) {
		t.Errorf("total cost = %s, want 0.039", calc.TotalCost)
	}

	// The draft must be queryable by its request id afterwards.
	stored, err := repo.GetByRequestID(context.Background(), ebook.RequestID)
	if err != nil {
		t.Fatalf("get by request id: %v", err)
	}
	if stored.ID != ebook.ID {
		t.Errorf("stored id %d, returned id %d", stored.ID, ebook.ID)
	}
}

func TestCreateBook_ValidationFailsBeforePersistence(t *testing.T) {
	svc, repo, _ := setupBookService(t)

	req := model.GenerationRequest{Theme: "x", Type: model.TypeColoring, PageCount: 12}
	_, _, _, err := svc.CreateBook(context.Background(), req)
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	page, err := repo.GetPaginated(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("rejected request left %d records behind", page.TotalCount)
	}
}

func TestExport_PublishesEvent(t *testing.T) {
	svc, _, bus := setupBookService(t)
	ctx := context.Background()

	req := model.GenerationRequest{
		Title: "Forest Friends", Theme: "woodland animals",
		Type: model.TypeColoring, PageCount: 12,
	}
	ebook, result, _, err := svc.CreateBook(ctx, req)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	var exported []model.ExportGeneratedEvent
	bus.Subscribe(model.EventExportGenerated, func(ctx context.Context, ev model.Event) error {
		exported = append(exported, ev.(model.ExportGeneratedEvent))
		return nil
	})

	uri, err := svc.Export(ctx, ebook, result, model.ExportKDP, "/tmp/out.pdf")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if uri == "" {
		t.Error("export returned no URI")
	}
	if len(exported) != 1 || exported[0].Export != model.ExportKDP {
		t.Errorf("export event missing or wrong: %+v", exported)
	}
}
