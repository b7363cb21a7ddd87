package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

var (
	accountsBucket         = []byte("accounts")
	accountsUsernameBucket = []byte("accounts_by_username")
	accountsEmailBucket    = []byte("accounts_by_email")
	sessionsBucket         = []byte("sessions")
)

// BoltBuckets lists the buckets the bolt repositories expect to exist.
var BoltBuckets = [][]byte{accountsBucket, accountsUsernameBucket, accountsEmailBucket, sessionsBucket}

// boltAccount is the stored form of a LocalAccount. The domain type hides
// credential fields from JSON, so it cannot be stored directly.
type boltAccount struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsActive     bool      `json:"is_active"`
}

type boltSession struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// boltAccountRepository implements AccountRepository on an embedded bbolt file
type boltAccountRepository struct {
	db *database.Bolt
}

// NewBoltAccountRepository creates an account repository stored in bolt
func NewBoltAccountRepository(db *database.Bolt) AccountRepository {
	return &boltAccountRepository{db: db}
}

// Create checks both unique indexes and writes the account in one transaction.
// bbolt serializes writers, so the check and the insert cannot interleave.
func (r *boltAccountRepository) Create(_ context.Context, account *domain.LocalAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	account.CreatedAt = orNow(account.CreatedAt, now)
	account.UpdatedAt = orNow(account.UpdatedAt, now)

	record, err := json.Marshal(toBoltAccount(account))
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}

	err = r.db.DB.Update(func(tx *bolt.Tx) error {
		usernames := tx.Bucket(accountsUsernameBucket)
		emails := tx.Bucket(accountsEmailBucket)

		if usernames.Get([]byte(account.Username)) != nil || emails.Get([]byte(account.Email)) != nil {
			return domain.ErrDuplicateIdentity
		}

		id := []byte(account.ID)
		if err := tx.Bucket(accountsBucket).Put(id, record); err != nil {
			return err
		}
		if err := usernames.Put([]byte(account.Username), id); err != nil {
			return err
		}
		return emails.Put([]byte(account.Email), id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return fmt.Errorf("account %s: %w", account.Username, domain.ErrDuplicateIdentity)
		}
		return domain.NewStorageError("create account", err)
	}
	return nil
}

func (r *boltAccountRepository) GetByID(_ context.Context, id string) (*domain.LocalAccount, error) {
	var account *domain.LocalAccount
	err := r.db.DB.View(func(tx *bolt.Tx) error {
		var err error
		account, err = readAccount(tx, []byte(id))
		return err
	})
	if err != nil {
		return nil, r.readError("get account by id", id, err)
	}
	return account, nil
}

func (r *boltAccountRepository) GetByIdentifier(_ context.Context, identifier string) (*domain.LocalAccount, error) {
	var account *domain.LocalAccount
	err := r.db.DB.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(accountsUsernameBucket).Get([]byte(identifier))
		if id == nil {
			id = tx.Bucket(accountsEmailBucket).Get([]byte(identifier))
		}
		if id == nil {
			return domain.ErrNotFound
		}
		var err error
		account, err = readAccount(tx, id)
		return err
	})
	if err != nil {
		return nil, r.readError("get account by identifier", identifier, err)
	}
	return account, nil
}

func (r *boltAccountRepository) SetActive(_ context.Context, id string, active bool) error {
	err := r.db.DB.Update(func(tx *bolt.Tx) error {
		account, err := readAccount(tx, []byte(id))
		if err != nil {
			return err
		}
		account.IsActive = active
		account.UpdatedAt = time.Now().UTC()

		record, err := json.Marshal(toBoltAccount(account))
		if err != nil {
			return err
		}
		return tx.Bucket(accountsBucket).Put([]byte(id), record)
	})
	if err != nil {
		return r.readError("set account active", id, err)
	}
	return nil
}

func (r *boltAccountRepository) readError(op, key string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("account", key)
	}
	return domain.NewStorageError(op, err)
}

func readAccount(tx *bolt.Tx, id []byte) (*domain.LocalAccount, error) {
	raw := tx.Bucket(accountsBucket).Get(id)
	if raw == nil {
		return nil, domain.ErrNotFound
	}

	var record boltAccount
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &domain.LocalAccount{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Salt:         record.Salt,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
		IsActive:     record.IsActive,
	}, nil
}

func toBoltAccount(a *domain.LocalAccount) boltAccount {
	return boltAccount{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Salt:         a.Salt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		IsActive:     a.IsActive,
	}
}

// boltSessionRepository implements SessionRepository keyed by token fingerprint
type boltSessionRepository struct {
	db *database.Bolt
}

// NewBoltSessionRepository creates a session repository stored in bolt
func NewBoltSessionRepository(db *database.Bolt) SessionRepository {
	return &boltSessionRepository{db: db}
}

func (r *boltSessionRepository) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = orNow(session.CreatedAt, time.Now().UTC())

	record, err := json.Marshal(boltSession{
		ID:        session.ID,
		AccountID: session.AccountID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		IsActive:  session.IsActive,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = r.db.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		if bucket.Get([]byte(session.TokenFingerprint)) != nil {
			return errors.New("fingerprint already recorded")
		}
		return bucket.Put([]byte(session.TokenFingerprint), record)
	})
	if err != nil {
		return domain.NewStorageError("create session", err)
	}
	return nil
}

func (r *boltSessionRepository) GetByFingerprint(_ context.Context, fingerprint string) (*domain.Session, error) {
	var session *domain.Session
	err := r.db.DB.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(sessionsBucket).Get([]byte(fingerprint))
		if raw == nil {
			return domain.ErrNotFound
		}
		var err error
		session, err = decodeSession(fingerprint, raw)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("session", "by fingerprint")
		}
		return nil, domain.NewStorageError("get session", err)
	}
	return session, nil
}

func (r *boltSessionRepository) Deactivate(_ context.Context, fingerprint string) error {
	err := r.db.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		raw := bucket.Get([]byte(fingerprint))
		if raw == nil {
			return nil
		}
		return deactivateRecord(bucket, []byte(fingerprint), raw)
	})
	if err != nil {
		return domain.NewStorageError("deactivate session", err)
	}
	return nil
}

func (r *boltSessionRepository) DeactivateAllForAccount(_ context.Context, accountID string) error {
	err := r.db.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket)

		var matched [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var record boltSession
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			if record.AccountID == accountID && record.IsActive {
				matched = append(matched, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Values may not be modified while ForEach iterates.
		for _, k := range matched {
			if err := deactivateRecord(bucket, k, bucket.Get(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewStorageError("deactivate account sessions", err)
	}
	return nil
}

func deactivateRecord(bucket *bolt.Bucket, key, raw []byte) error {
	var record boltSession
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("failed to decode session: %w", err)
	}
	if !record.IsActive {
		return nil
	}
	record.IsActive = false

	updated, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return bucket.Put(key, updated)
}

func decodeSession(fingerprint string, raw []byte) (*domain.Session, error) {
	var record boltSession
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &domain.Session{
		ID:               record.ID,
		AccountID:        record.AccountID,
		TokenFingerprint: fingerprint,
		CreatedAt:        record.CreatedAt,
		ExpiresAt:        record.ExpiresAt,
		IsActive:         record.IsActive,
	}, nil
}
