package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/repository/mocks"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/token"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/utils"
)

const testSigningSecret = "test-secret-key-that-is-at-least-32-characters-long"

func newPasswordTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Options{
		Secret:   testSigningSecret,
		Issuer:   "space-biology-engine",
		Audience: "space-biology-local",
		TTL:      24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevocations) Revoke(_ context.Context, fp string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked[fp] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, fp string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[fp]
	return ok, nil
}

type PasswordStoreSuite struct {
	suite.Suite
	ctx         context.Context
	accounts    repository.AccountRepository
	sessions    repository.SessionRepository
	tokens      *token.Service
	revocations *fakeRevocations
	store       *passwordStore
}

func TestPasswordStoreSuite(t *testing.T) {
	suite.Run(t, new(PasswordStoreSuite))
}

func (s *PasswordStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = repository.NewMemoryAccountRepository()
	s.sessions = repository.NewMemorySessionRepository()
	s.tokens = newPasswordTokens(s.T())
	s.revocations = &fakeRevocations{revoked: make(map[string]time.Duration)}

	store, err := NewPasswordStore(PasswordStoreOptions{
		Accounts:          s.accounts,
		Sessions:          s.sessions,
		Tokens:            s.tokens,
		Hasher:            utils.NewPasswordHasher(100_000),
		Revocations:       s.revocations,
		MinPasswordLength: 6,
	})
	s.Require().NoError(err)
	s.store = store.(*passwordStore)
}

func (s *PasswordStoreSuite) signupAndLogin(username, email, password string) *PasswordLogin {
	_, err := s.store.CreateAccount(s.ctx, username, email, password)
	s.Require().NoError(err)
	login, err := s.store.Authenticate(s.ctx, username, password)
	s.Require().NoError(err)
	return login
}

func (s *PasswordStoreSuite) TestCreateAccount_StoresHashOnly() {
	account, err := s.store.CreateAccount(s.ctx, "bob", " Bob@X.com ", "secret1")
	s.Require().NoError(err)

	s.Equal("bob", account.Username)
	s.Equal("bob@x.com", account.Email)
	s.True(account.IsActive)
	s.NotEqual("secret1", account.PasswordHash)
	s.Len(account.Salt, 32)
}

func (s *PasswordStoreSuite) TestCreateAccount_Duplicate() {
	_, err := s.store.CreateAccount(s.ctx, "a", "a@x.com", "password-one")
	s.Require().NoError(err)

	_, err = s.store.CreateAccount(s.ctx, "a", "b@y.com", "password-two")
	s.ErrorIs(err, domain.ErrDuplicateIdentity)

	_, err = s.store.CreateAccount(s.ctx, "c", "a@x.com", "password-two")
	s.ErrorIs(err, domain.ErrDuplicateIdentity)
}

func (s *PasswordStoreSuite) TestCreateAccount_Validation() {
	cases := []struct{ username, email, password string }{
		{"", "a@x.com", "secret1"},
		{"has space", "a@x.com", "secret1"},
		{"bob", "not-an-email", "secret1"},
		{"bob", "bob@x.com", "short"},
	}
	for _, c := range cases {
		_, err := s.store.CreateAccount(s.ctx, c.username, c.email, c.password)
		s.ErrorIs(err, domain.ErrValidation)
	}
}

func (s *PasswordStoreSuite) TestAuthenticate_ByUsernameOrEmail() {
	_, err := s.store.CreateAccount(s.ctx, "bob", "bob@x.com", "secret1")
	s.Require().NoError(err)

	for _, identifier := range []string{"bob", "bob@x.com", "BOB@x.com"} {
		login, err := s.store.Authenticate(s.ctx, identifier, "secret1")
		s.Require().NoError(err, identifier)
		s.Equal("bob", login.Account.Username)
		s.NotEmpty(login.Token.Token)
	}
}

func (s *PasswordStoreSuite) TestAuthenticate_UniformFailure() {
	_, err := s.store.CreateAccount(s.ctx, "a", "a@x.com", "right-password")
	s.Require().NoError(err)

	_, wrongPassword := s.store.Authenticate(s.ctx, "a", "wrongpw")
	_, noAccount := s.store.Authenticate(s.ctx, "nonexistent", "anything")

	s.ErrorIs(wrongPassword, domain.ErrInvalidCredentials)
	s.ErrorIs(noAccount, domain.ErrInvalidCredentials)
	s.Equal(wrongPassword.Error(), noAccount.Error())
}

func (s *PasswordStoreSuite) TestAuthenticate_RecordsSession() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	session, err := s.sessions.GetByFingerprint(s.ctx, fingerprint(login.Token.Token))
	s.Require().NoError(err)
	s.Equal(login.Account.ID, session.AccountID)
	s.True(session.IsActive)
	s.True(session.ExpiresAt.Equal(login.Token.ExpiresAt))
	s.NotEqual(login.Token.Token, session.TokenFingerprint)
}

func (s *PasswordStoreSuite) TestAuthenticate_Deactivated() {
	account, err := s.store.CreateAccount(s.ctx, "bob", "bob@x.com", "secret1")
	s.Require().NoError(err)
	s.Require().NoError(s.store.SetAccountActive(s.ctx, account.ID, false))

	_, err = s.store.Authenticate(s.ctx, "bob", "secret1")
	s.ErrorIs(err, domain.ErrAccountDeactivated)

	_, err = s.store.Authenticate(s.ctx, "bob", "wrong-password")
	s.ErrorIs(err, domain.ErrInvalidCredentials)
}

func (s *PasswordStoreSuite) TestVerifyAndInvalidateSession() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	account, err := s.store.VerifySession(s.ctx, login.Token.Token)
	s.Require().NoError(err)
	s.Equal("bob", account.Username)

	s.Require().NoError(s.store.InvalidateSession(s.ctx, login.Token.Token))
	s.Contains(s.revocations.revoked, fingerprint(login.Token.Token))

	// The token itself still verifies; only the session registry rejects it.
	_, err = s.tokens.Verify(login.Token.Token)
	s.NoError(err)

	_, err = s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
}

func (s *PasswordStoreSuite) TestVerifySession_WithoutCache() {
	s.store.revocations = nil
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	s.Require().NoError(s.store.InvalidateSession(s.ctx, login.Token.Token))

	_, err := s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
}

func (s *PasswordStoreSuite) TestVerifySession_CacheFailureFallsBackToStore() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")
	s.revocations.err = errors.New("redis down")

	account, err := s.store.VerifySession(s.ctx, login.Token.Token)
	s.Require().NoError(err)
	s.Equal("bob", account.Username)

	s.Require().NoError(s.store.InvalidateSession(s.ctx, login.Token.Token))
	_, err = s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
}

func (s *PasswordStoreSuite) TestInvalidateSession_Idempotent() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	s.NoError(s.store.InvalidateSession(s.ctx, login.Token.Token))
	s.NoError(s.store.InvalidateSession(s.ctx, login.Token.Token))
	s.NoError(s.store.InvalidateSession(s.ctx, "never-issued"))
	s.NoError(s.store.InvalidateSession(s.ctx, ""))
}

func (s *PasswordStoreSuite) TestVerifySession_MultipleSessions() {
	first := s.signupAndLogin("bob", "bob@x.com", "secret1")
	second, err := s.store.Authenticate(s.ctx, "bob", "secret1")
	s.Require().NoError(err)

	s.Require().NoError(s.store.InvalidateSession(s.ctx, first.Token.Token))

	_, err = s.store.VerifySession(s.ctx, first.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
	_, err = s.store.VerifySession(s.ctx, second.Token.Token)
	s.NoError(err)
}

func (s *PasswordStoreSuite) TestVerifySession_ExpiredRow() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	s.store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err := s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
}

func (s *PasswordStoreSuite) TestVerifySession_TokenErrorsPropagate() {
	_, err := s.store.VerifySession(s.ctx, "garbage")
	s.ErrorIs(err, domain.ErrMalformedToken)

	// A token minted directly by the service never got a session row.
	issued, err := s.tokens.Issue("someone")
	s.Require().NoError(err)
	_, err = s.store.VerifySession(s.ctx, issued.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)
}

func (s *PasswordStoreSuite) TestDeactivationEndsSessions() {
	login := s.signupAndLogin("bob", "bob@x.com", "secret1")

	s.Require().NoError(s.store.SetAccountActive(s.ctx, login.Account.ID, false))
	_, err := s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)

	s.Require().NoError(s.store.SetAccountActive(s.ctx, login.Account.ID, true))
	_, err = s.store.VerifySession(s.ctx, login.Token.Token)
	s.ErrorIs(err, domain.ErrSessionRevoked)

	_, err = s.store.Authenticate(s.ctx, "bob", "secret1")
	s.NoError(err)
}

func TestPasswordStore_StorageFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	sessions := mocks.NewMockSessionRepository(ctrl)

	outage := domain.NewStorageError("get account", errors.New("connection refused"))
	accounts.EXPECT().GetByIdentifier(gomock.Any(), "bob").Return(nil, outage)

	store, err := NewPasswordStore(PasswordStoreOptions{
		Accounts:          accounts,
		Sessions:          sessions,
		Tokens:            newPasswordTokens(t),
		Hasher:            utils.NewPasswordHasher(100_000),
		MinPasswordLength: 6,
	})
	require.NoError(t, err)

	_, err = store.Authenticate(context.Background(), "bob", "secret1")
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestPasswordStore_SessionWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := repository.NewMemoryAccountRepository()
	sessions := mocks.NewMockSessionRepository(ctrl)

	store, err := NewPasswordStore(PasswordStoreOptions{
		Accounts:          accounts,
		Sessions:          sessions,
		Tokens:            newPasswordTokens(t),
		Hasher:            utils.NewPasswordHasher(100_000),
		MinPasswordLength: 6,
	})
	require.NoError(t, err)

	_, err = store.CreateAccount(context.Background(), "bob", "bob@x.com", "secret1")
	require.NoError(t, err)

	sessions.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.NewStorageError("create session", errors.New("disk full")))

	login, err := store.Authenticate(context.Background(), "bob", "secret1")
	assert.Nil(t, login)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}
