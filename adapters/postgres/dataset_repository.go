package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// DatasetRepository implements dataset metadata persistence for PostgreSQL
type DatasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new PostgreSQL dataset repository
func NewDatasetRepository(db *sqlx.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Create inserts a new dataset metadata row
func (r *DatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO datasets (id, user_id, filename, original_filename, file_type, file_path, file_size, row_count, column_count, created_at, updated_at)
		VALUES (:id, :user_id, :filename, :original_filename, :file_type, :file_path, :file_size, :row_count, :column_count, NOW(), NOW())
	`, ds)
	return err
}

// GetByID retrieves a dataset by ID regardless of owner. Ownership is
// the service's check so it can tell 403 apart from 404.
func (r *DatasetRepository) GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	err := r.db.GetContext(ctx, &ds, `
		SELECT id, user_id, filename, original_filename, file_type, file_path, file_size, row_count, column_count, created_at, updated_at
		FROM datasets
		WHERE id = $1
	`, id)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("dataset")
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListByUser returns a page of the user's datasets, newest first
func (r *DatasetRepository) ListByUser(ctx context.Context, userID core.ID, offset, limit int) ([]*dataset.Dataset, error) {
	datasets := []*dataset.Dataset{}
	err := r.db.SelectContext(ctx, &datasets, `
		SELECT id, user_id, filename, original_filename, file_type, file_path, file_size, row_count, column_count, created_at, updated_at
		FROM datasets
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, userID, offset, limit)
	return datasets, err
}

// ListAllByUser returns every dataset the user owns, for cleanup on
// account deletion
func (r *DatasetRepository) ListAllByUser(ctx context.Context, userID core.ID) ([]*dataset.Dataset, error) {
	datasets := []*dataset.Dataset{}
	err := r.db.SelectContext(ctx, &datasets, `
		SELECT id, user_id, filename, original_filename, file_type, file_path, file_size, row_count, column_count, created_at, updated_at
		FROM datasets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return datasets, err
}

// UpdateFilename renames the dataset's display filename
func (r *DatasetRepository) UpdateFilename(ctx context.Context, id core.ID, filename string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE datasets
		SET filename = $2, updated_at = NOW()
		WHERE id = $1
	`, id, filename)
	return err
}

// Delete removes the dataset metadata row
func (r *DatasetRepository) Delete(ctx context.Context, id core.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	return err
}
