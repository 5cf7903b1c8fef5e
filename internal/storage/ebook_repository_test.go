package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/nash-team/bookforge/internal/model"
)

// setupTestDB creates a temporary SQLite database for testing. t.TempDir()
// is cleaned up automatically after the test.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func draftEbook(requestID string) *model.Ebook {
	return &model.Ebook{
		RequestID:  requestID,
		Title:      "Forest Friends",
		Theme:      "woodland animals",
		Type:       model.TypeColoring,
		Audience:   model.AudienceChildren,
		PageCount:  12,
		Status:     model.StatusDraft,
		StorageRef: "file:///books/" + requestID + ".pdf",
		PreviewRef: "file:///files/" + requestID + "-preview.png",
	}
}

func TestEbookRepository_CreateAndGet(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))
	ctx := context.Background()

	ebook := draftEbook("req-1")
	if err := repo.Create(ctx, ebook); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ebook.ID == 0 {
		t.Fatal("create did not assign an id")
	}

	got, err := repo.GetByID(ctx, ebook.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Forest Friends" || got.Status != model.StatusDraft {
		t.Errorf("unexpected record: %+v", got)
	}

	byReq, err := repo.GetByRequestID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get by request id: %v", err)
	}
	if byReq.ID != ebook.ID {
		t.Errorf("request id lookup returned id %d, want %d", byReq.ID, ebook.ID)
	}
}

func TestEbookRepository_GetMissing(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEbookRepository_SetStatus(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))
	ctx := context.Background()

	ebook := draftEbook("req-1")
	if err := repo.Create(ctx, ebook); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SetStatus(ctx, ebook.ID, model.StatusPending); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := repo.GetByID(ctx, ebook.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}

	if err := repo.SetStatus(ctx, 9999, model.StatusPending); !errors.Is(err, ErrNotFound) {
		t.Errorf("setting status on missing row: expected ErrNotFound, got %v", err)
	}
}

func TestEbookRepository_GetByStatus(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ebook := draftEbook(fmt.Sprintf("req-%d", i))
		if i == 0 {
			ebook.Status = model.StatusPending
		}
		if err := repo.Create(ctx, ebook); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.GetByStatus(ctx, model.StatusPending)
	if err != nil {
		t.Fatalf("get by status: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending count = %d, want 1", len(pending))
	}
}

func TestEbookRepository_Pagination(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if err := repo.Create(ctx, draftEbook(fmt.Sprintf("req-%02d", i))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := repo.GetPaginated(ctx, 2, 10)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.TotalCount != 25 {
		t.Errorf("total count = %d, want 25", page.TotalCount)
	}
	if len(page.Items) != 10 {
		t.Errorf("items = %d, want 10", len(page.Items))
	}
	if page.TotalPages() != 3 {
		t.Errorf("total pages = %d, want 3", page.TotalPages())
	}
	if !page.HasNext() || !page.HasPrevious() {
		t.Error("page 2 of 3 should have both neighbors")
	}

	last, err := repo.GetPaginated(ctx, 3, 10)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(last.Items) != 5 {
		t.Errorf("last page items = %d, want 5", len(last.Items))
	}
	if last.HasNext() {
		t.Error("last page should have no next")
	}
}

func TestEbookRepository_PaginationByStatus(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ebook := draftEbook(fmt.Sprintf("req-%d", i))
		if i < 2 {
			ebook.Status = model.StatusApproved
		}
		if err := repo.Create(ctx, ebook); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := repo.GetPaginatedByStatus(ctx, model.StatusApproved, 1, 10)
	if err != nil {
		t.Fatalf("paginate by status: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("approved count = %d, want 2", page.TotalCount)
	}
	for _, e := range page.Items {
		if e.Status != model.StatusApproved {
			t.Errorf("unexpected status %s in filtered page", e.Status)
		}
	}
}

func TestEbookRepository_PaginationEmptyDB(t *testing.T) {
	repo := NewEbookRepository(setupTestDB(t))

	page, err := repo.GetPaginated(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.TotalCount != 0 || page.TotalPages() != 0 {
		t.Errorf("empty db: count=%d pages=%d", page.TotalCount, page.TotalPages())
	}
}
