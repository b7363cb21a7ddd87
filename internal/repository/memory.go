package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
)

// memoryUserRepository keeps users in process memory. Used for development and tests.
type memoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byExternal map[string]string
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:       make(map[string]*domain.User),
		byExternal: make(map[string]string),
	}
}

func (r *memoryUserRepository) Upsert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if id, ok := r.byExternal[user.ExternalID]; ok {
		existing := r.byID[id]
		existing.Username = user.Username
		existing.Email = user.Email
		existing.DisplayName = user.DisplayName
		existing.AvatarURL = user.AvatarURL
		existing.EncryptedSecret = user.EncryptedSecret
		existing.UpdatedAt = orNow(user.UpdatedAt, now)
		existing.LastLoginAt = user.LastLoginAt
		return copyUser(existing), nil
	}

	stored := copyUser(user)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.CreatedAt = orNow(stored.CreatedAt, now)
	stored.UpdatedAt = orNow(stored.UpdatedAt, now)

	r.byID[stored.ID] = stored
	r.byExternal[stored.ExternalID] = stored.ID
	return copyUser(stored), nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return copyUser(user), nil
}

func (r *memoryUserRepository) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[externalID]
	if !ok {
		return nil, notFound("user", externalID)
	}
	return copyUser(r.byID[id]), nil
}

func (r *memoryUserRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return notFound("user", id)
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// memoryAccountRepository keeps password accounts and their unique indexes in memory.
type memoryAccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.LocalAccount
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryAccountRepository creates an empty in-memory account repository
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		byID:       make(map[string]*domain.LocalAccount),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *memoryAccountRepository) Create(_ context.Context, account *domain.LocalAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[account.Username]; taken {
		return fmt.Errorf("account %s: %w", account.Username, domain.ErrDuplicateIdentity)
	}
	if _, taken := r.byEmail[account.Email]; taken {
		return fmt.Errorf("account %s: %w", account.Email, domain.ErrDuplicateIdentity)
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	account.CreatedAt = orNow(account.CreatedAt, now)
	account.UpdatedAt = orNow(account.UpdatedAt, now)

	stored := *account
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[stored.Email] = stored.ID
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.LocalAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, notFound("account", id)
	}
	out := *account
	return &out, nil
}

func (r *memoryAccountRepository) GetByIdentifier(_ context.Context, identifier string) (*domain.LocalAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[identifier]
	if !ok {
		id, ok = r.byEmail[identifier]
	}
	if !ok {
		return nil, notFound("account", identifier)
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *memoryAccountRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return notFound("account", id)
	}
	account.IsActive = active
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// memorySessionRepository keeps sessions keyed by token fingerprint.
type memorySessionRepository struct {
	mu            sync.RWMutex
	byFingerprint map[string]*domain.Session
}

// NewMemorySessionRepository creates an empty in-memory session repository
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{byFingerprint: make(map[string]*domain.Session)}
}

func (r *memorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byFingerprint[session.TokenFingerprint]; exists {
		return domain.NewStorageError("create session", fmt.Errorf("fingerprint already recorded"))
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = orNow(session.CreatedAt, time.Now().UTC())

	stored := *session
	r.byFingerprint[stored.TokenFingerprint] = &stored
	return nil
}

func (r *memorySessionRepository) GetByFingerprint(_ context.Context, fingerprint string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.byFingerprint[fingerprint]
	if !ok {
		return nil, notFound("session", "by fingerprint")
	}
	out := *session
	return &out, nil
}

func (r *memorySessionRepository) Deactivate(_ context.Context, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.byFingerprint[fingerprint]; ok {
		session.IsActive = false
	}
	return nil
}

func (r *memorySessionRepository) DeactivateAllForAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.byFingerprint {
		if session.AccountID == accountID {
			session.IsActive = false
		}
	}
	return nil
}

func copyUser(u *domain.User) *domain.User {
	out := *u
	out.Email = copyString(u.Email)
	out.DisplayName = copyString(u.DisplayName)
	out.AvatarURL = copyString(u.AvatarURL)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		out.LastLoginAt = &t
	}
	return &out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
