package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nash-team/bookforge/internal/model"
)

// ErrNotFound is returned when a requested record doesn't exist.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("record not found")

// EbookRepository is the persistence collaborator for ebook records. The
// lifecycle use cases depend on SetStatus being a single atomic update —
// a transition either lands completely or not at all.
type EbookRepository interface {
	Create(ctx context.Context, ebook *model.Ebook) error
	Update(ctx context.Context, ebook *model.Ebook) error
	GetByID(ctx context.Context, id int64) (*model.Ebook, error)
	GetByRequestID(ctx context.Context, requestID string) (*model.Ebook, error)
	GetByStatus(ctx context.Context, status model.EbookStatus) ([]model.Ebook, error)
	SetStatus(ctx context.Context, id int64, status model.EbookStatus) error
	GetPaginated(ctx context.Context, page, size int) (model.Page[model.Ebook], error)
	GetPaginatedByStatus(ctx context.Context, status model.EbookStatus, page, size int) (model.Page[model.Ebook], error)
}

// sqliteEbookRepository is the SQLite implementation. Only the interface is
// exported; the implementation stays behind the constructor.
type sqliteEbookRepository struct {
	db *sqlx.DB
}

// NewEbookRepository creates a SQLite-backed EbookRepository.
func NewEbookRepository(db *sqlx.DB) EbookRepository {
	return &sqliteEbookRepository{db: db}
}

func (r *sqliteEbookRepository) Create(ctx context.Context, ebook *model.Ebook) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO ebooks (request_id, title, theme, type, audience, page_count, status, storage_ref, preview_ref)
		VALUES (:request_id, :title, :theme, :type, :audience, :page_count, :status, :storage_ref, :preview_ref)
	`, ebook)
	if err != nil {
		return fmt.Errorf("creating ebook: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	ebook.ID = id
	return nil
}

func (r *sqliteEbookRepository) Update(ctx context.Context, ebook *model.Ebook) error {
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE ebooks SET
			title = :title,
			theme = :theme,
			audience = :audience,
			page_count = :page_count,
			status = :status,
			storage_ref = :storage_ref,
			preview_ref = :preview_ref,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :id
	`, ebook)
	if err != nil {
		return fmt.Errorf("updating ebook %d: %w", ebook.ID, err)
	}
	return nil
}

func (r *sqliteEbookRepository) GetByID(ctx context.Context, id int64) (*model.Ebook, error) {
	var ebook model.Ebook
	err := r.db.GetContext(ctx, &ebook, "SELECT * FROM ebooks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting ebook %d: %w", id, err)
	}
	return &ebook, nil
}

func (r *sqliteEbookRepository) GetByRequestID(ctx context.Context, requestID string) (*model.Ebook, error) {
	var ebook model.Ebook
	err := r.db.GetContext(ctx, &ebook, "SELECT * FROM ebooks WHERE request_id = ?", requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting ebook for request %s: %w", requestID, err)
	}
	return &ebook, nil
}

func (r *sqliteEbookRepository) GetByStatus(ctx context.Context, status model.EbookStatus) ([]model.Ebook, error) {
	var ebooks []model.Ebook
	err := r.db.SelectContext(ctx, &ebooks,
		"SELECT * FROM ebooks WHERE status = ? ORDER BY created_at ASC", status)
	if err != nil {
		return nil, fmt.Errorf("listing ebooks by status %s: %w", status, err)
	}
	return ebooks, nil
}

// SetStatus is the atomic single-field transition update the lifecycle use
// cases rely on.
func (r *sqliteEbookRepository) SetStatus(ctx context.Context, id int64, status model.EbookStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE ebooks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("setting status for ebook %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteEbookRepository) GetPaginated(ctx context.Context, page, size int) (model.Page[model.Ebook], error) {
	return r.paginate(ctx, "", page, size)
}

func (r *sqliteEbookRepository) GetPaginatedByStatus(ctx context.Context, status model.EbookStatus, page, size int) (model.Page[model.Ebook], error) {
	return r.paginate(ctx, status, page, size)
}

// paginate runs the shared count+select pair. An empty status means no
// status filter.
func (r *sqliteEbookRepository) paginate(ctx context.Context, status model.EbookStatus, page, size int) (model.Page[model.Ebook], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	result := model.Page[model.Ebook]{Number: page, Size: size}

	countQuery := "SELECT COUNT(*) FROM ebooks"
	listQuery := "SELECT * FROM ebooks ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args := []any{}
	if status != "" {
		countQuery = "SELECT COUNT(*) FROM ebooks WHERE status = ?"
		listQuery = "SELECT * FROM ebooks WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?"
		args = append(args, status)
	}

	if err := r.db.GetContext(ctx, &result.TotalCount, countQuery, args...); err != nil {
		return result, fmt.Errorf("counting ebooks: %w", err)
	}

	args = append(args, size, (page-1)*size)
	if err := r.db.SelectContext(ctx, &result.Items, listQuery, args...); err != nil {
		return result, fmt.Errorf("listing ebooks page %d: %w", page, err)
	}
	return result, nil
}
