package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

// postgresSessionRepository implements SessionRepository on PostgreSQL
type postgresSessionRepository struct {
	db *database.Postgres
}

// NewPostgresSessionRepository creates a session repository backed by the sessions table
func NewPostgresSessionRepository(db *database.Postgres) SessionRepository {
	return &postgresSessionRepository{db: db}
}

// Create records a new session
func (r *postgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, account_id, token_fingerprint, created_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		session.ID,
		session.AccountID,
		session.TokenFingerprint,
		session.CreatedAt,
		session.ExpiresAt,
		session.IsActive,
	)
	if err != nil {
		return domain.NewStorageError("create session", err)
	}

	return nil
}

// GetByFingerprint retrieves a session by the digest of its token
func (r *postgresSessionRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Session, error) {
	query := `
		SELECT id, account_id, token_fingerprint, created_at, expires_at, is_active
		FROM sessions
		WHERE token_fingerprint = $1
	`

	session := &domain.Session{}
	err := r.db.DB.QueryRowContext(ctx, query, fingerprint).Scan(
		&session.ID,
		&session.AccountID,
		&session.TokenFingerprint,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("session", "by fingerprint")
		}
		return nil, domain.NewStorageError("get session", err)
	}

	return session, nil
}

// Deactivate marks a session inactive. Missing or already inactive sessions are left alone.
func (r *postgresSessionRepository) Deactivate(ctx context.Context, fingerprint string) error {
	_, err := r.db.DB.ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE WHERE token_fingerprint = $1 AND is_active`,
		fingerprint,
	)
	if err != nil {
		return domain.NewStorageError("deactivate session", err)
	}
	return nil
}

// DeactivateAllForAccount marks every session of an account inactive
func (r *postgresSessionRepository) DeactivateAllForAccount(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil
	}

	_, err := r.db.DB.ExecContext(ctx,
		`UPDATE sessions SET is_active = FALSE WHERE account_id = $1 AND is_active`,
		accountID,
	)
	if err != nil {
		return domain.NewStorageError("deactivate account sessions", err)
	}
	return nil
}
