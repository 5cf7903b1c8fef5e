package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nash-team/bookforge/internal/model"
)

// UsageRepository persists per-call usage records keyed by request id.
// Records survive aborted pipelines: billing data for the calls that did
// succeed is never rolled back.
type UsageRepository interface {
	SaveTokenUsage(ctx context.Context, usage *model.TokenUsage) error
	SaveImageUsage(ctx context.Context, usage *model.ImageUsage) error
	ListTokenUsage(ctx context.Context, requestID string) ([]model.TokenUsage, error)
	ListImageUsage(ctx context.Context, requestID string) ([]model.ImageUsage, error)
}

type sqliteUsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a SQLite-backed UsageRepository.
func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &sqliteUsageRepository{db: db}
}

func (r *sqliteUsageRepository) SaveTokenUsage(ctx context.Context, usage *model.TokenUsage) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO token_usage (request_id, model, prompt_tokens, completion_tokens, cost)
		VALUES (:request_id, :model, :prompt_tokens, :completion_tokens, :cost)
	`, usage)
	if err != nil {
		return fmt.Errorf("saving token usage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	usage.ID = id
	return nil
}

func (r *sqliteUsageRepository) SaveImageUsage(ctx context.Context, usage *model.ImageUsage) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO image_usage (request_id, model, input_images, output_images, cost)
		VALUES (:request_id, :model, :input_images, :output_images, :cost)
	`, usage)
	if err != nil {
		return fmt.Errorf("saving image usage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	usage.ID = id
	return nil
}

func (r *sqliteUsageRepository) ListTokenUsage(ctx context.Context, requestID string) ([]model.TokenUsage, error) {
	var usages []model.TokenUsage
	err := r.db.SelectContext(ctx, &usages,
		"SELECT * FROM token_usage WHERE request_id = ? ORDER BY id ASC", requestID)
	if err != nil {
		return nil, fmt.Errorf("listing token usage for %s: %w", requestID, err)
	}
	return usages, nil
}

func (r *sqliteUsageRepository) ListImageUsage(ctx context.Context, requestID string) ([]model.ImageUsage, error) {
	var usages []model.ImageUsage
	err := r.db.SelectContext(ctx, &usages,
		"SELECT * FROM image_usage WHERE request_id = ? ORDER BY id ASC", requestID)
	if err != nil {
		return nil, fmt.Errorf("listing image usage for %s: %w", requestID, err)
	}
	return usages, nil
}
