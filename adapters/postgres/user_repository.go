// Package postgres holds the sqlx-backed repositories. All queries
// are plain SQL against the schema created by internal/migration.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// uniqueViolation is the pq error code for duplicate keys
const uniqueViolation = "23505"

// UserRepository implements user persistence for PostgreSQL
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email maps to a validation
// error so the boundary reports it as a client mistake.
func (r *UserRepository) Create(ctx context.Context, user *dataset.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, full_name, hashed_password, is_active, created_at, updated_at)
		VALUES (:id, :email, :full_name, :hashed_password, :is_active, NOW(), NOW())
	`, user)

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.ValidationError("email already registered")
	}
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id core.ID) (*dataset.User, error) {
	var user dataset.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, full_name, hashed_password, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dataset.User, error) {
	var user dataset.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, full_name, hashed_password, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists the mutable profile fields
func (r *UserRepository) Update(ctx context.Context, user *dataset.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, hashed_password = $4, updated_at = NOW()
		WHERE id = $1
	`, user.ID, user.Email, user.FullName, user.HashedPassword)

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.ValidationError("email already registered")
	}
	return err
}

// Delete removes the user row. Sessions and datasets cascade in the
// schema; the dataset files on disk are the service's concern.
func (r *UserRepository) Delete(ctx context.Context, id core.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
