package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

const accountColumns = `id, username, email, password_hash, salt, created_at, updated_at, is_active`

// postgresAccountRepository implements AccountRepository on PostgreSQL
type postgresAccountRepository struct {
	db *database.Postgres
}

// NewPostgresAccountRepository creates an account repository backed by local_accounts
func NewPostgresAccountRepository(db *database.Postgres) AccountRepository {
	return &postgresAccountRepository{db: db}
}

// Create inserts a new account. Uniqueness is enforced by the table constraints.
func (r *postgresAccountRepository) Create(ctx context.Context, account *domain.LocalAccount) error {
	query := `
		INSERT INTO local_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Salt,
		account.CreatedAt,
		account.UpdatedAt,
		account.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.Username, domain.ErrDuplicateIdentity)
		}
		return domain.NewStorageError("create account", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *postgresAccountRepository) GetByID(ctx context.Context, id string) (*domain.LocalAccount, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound("account", id)
	}

	query := `SELECT ` + accountColumns + ` FROM local_accounts WHERE id = $1`
	account, err := scanAccount(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("account", id)
		}
		return nil, domain.NewStorageError("get account by id", err)
	}
	return account, nil
}

// GetByIdentifier retrieves an account by username or email. Usernames cannot
// contain '@' so at most one row matches.
func (r *postgresAccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.LocalAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM local_accounts WHERE username = $1 OR email = $1 LIMIT 1`

	account, err := scanAccount(r.db.DB.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("account", identifier)
		}
		return nil, domain.NewStorageError("get account by identifier", err)
	}
	return account, nil
}

// SetActive toggles the activation gate of an account
func (r *postgresAccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound("account", id)
	}

	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE local_accounts SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now().UTC(),
	)
	if err != nil {
		return domain.NewStorageError("set account active", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("set account active", err)
	}
	if rowsAffected == 0 {
		return notFound("account", id)
	}
	return nil
}

func scanAccount(row rowScanner) (*domain.LocalAccount, error) {
	account := &domain.LocalAccount{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Salt,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
