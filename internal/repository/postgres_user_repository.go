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

const userColumns = `id, external_id, username, email, name, avatar_url, encrypted_secret,
	created_at, updated_at, last_login_at, is_active`

// postgresUserRepository implements UserRepository on PostgreSQL
type postgresUserRepository struct {
	db *database.Postgres
}

// NewPostgresUserRepository creates a user repository backed by the users table
func NewPostgresUserRepository(db *database.Postgres) UserRepository {
	return &postgresUserRepository{db: db}
}

// Upsert relies on the unique external_id constraint so that concurrent
// first logins resolve to a single row.
func (r *postgresUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (external_id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			encrypted_secret = EXCLUDED.encrypted_secret,
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at
		RETURNING ` + userColumns

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	row := r.db.DB.QueryRowContext(ctx, query,
		user.ID,
		user.ExternalID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.EncryptedSecret,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLoginAt,
		user.IsActive,
	)

	stored, err := scanUser(row)
	if err != nil {
		return nil, domain.NewStorageError("upsert user", err)
	}
	return stored, nil
}

// GetByID retrieves a user by ID
func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByExternalID retrieves a user by the provider account id
func (r *postgresUserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.getOne(ctx, "external_id", externalID)
}

func (r *postgresUserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	// column is one of the two fixed names above, never user input.
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	if column == "id" {
		if _, err := uuid.Parse(value); err != nil {
			return nil, notFound("user", value)
		}
	}

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user", value)
		}
		return nil, domain.NewStorageError("get user by "+column, err)
	}
	return user, nil
}

// SetActive toggles the activation gate of a user
func (r *postgresUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound("user", id)
	}

	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now().UTC(),
	)
	if err != nil {
		return domain.NewStorageError("set user active", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("set user active", err)
	}
	if rowsAffected == 0 {
		return notFound("user", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var email, name, avatarURL sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&email,
		&name,
		&avatarURL,
		&user.EncryptedSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
		&user.IsActive,
	)
	if err != nil {
		return nil, err
	}

	user.Email = nullableString(email)
	user.DisplayName = nullableString(name)
	user.AvatarURL = nullableString(avatarURL)
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return user, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
