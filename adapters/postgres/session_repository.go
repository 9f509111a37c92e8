package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"

	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// SessionRepository implements session persistence for PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session token
func (r *SessionRepository) Create(ctx context.Context, session *dataset.Session) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (:token, :user_id, :expires_at, NOW())
	`, session)
	return err
}

// GetByToken retrieves a session by its opaque token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*dataset.Session, error) {
	var session dataset.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`, token)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Unauthorized("invalid session token")
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session token (logout)
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired clears sessions past their expiry
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
