package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/app/models/dto"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/auth"
)

// fakeUserStore keeps accounts and refresh tokens in maps, standing in for
// the postgres-backed repository.
type fakeUserStore struct {
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if _, ok := s.users[user.Username]; ok {
		return apperrors.ErrUsernameExists
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.Username] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) SaveRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *fakeUserStore) GetRefreshToken(_ context.Context, tokenValue string) (*models.RefreshToken, error) {
	token, ok := s.tokens[tokenValue]
	if !ok {
		return nil, apperrors.ErrAuthTokenInvalid
	}
	if token.Revoked || time.Now().After(token.ExpiresAt) {
		return nil, apperrors.ErrAuthTokenExpired
	}
	return token, nil
}

func (s *fakeUserStore) RevokeRefreshToken(_ context.Context, tokenValue string) error {
	if token, ok := s.tokens[tokenValue]; ok {
		token.Revoked = true
	}
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-for-auth-service",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "uniregistro-test",
	})
	return NewAuthService(store, jwtService), store
}

func registerTestUser(t *testing.T, svc *AuthService) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:  "ana.quispe",
		Email:     "ana.quispe@example.edu",
		Password:  "correct-horse",
		FirstName: "Ana",
		LastName:  "Quispe",
	})
	require.NoError(t, err)
	return user
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registered := registerTestUser(t, svc)

	user, tokens, err := svc.Login(context.Background(), "ana.quispe", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc)

	_, _, err := svc.Login(context.Background(), "ana.quispe", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	// Unknown accounts are indistinguishable from bad passwords.
	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, store := newTestAuthService(t)
	user := registerTestUser(t, svc)
	store.users[user.Username].IsActive = false

	_, _, err := svc.Login(context.Background(), "ana.quispe", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc)

	_, tokens, err := svc.Login(context.Background(), "ana.quispe", "correct-horse")
	require.NoError(t, err)

	_, rotated, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token was revoked by the rotation.
	_, _, err = svc.RefreshToken(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrAuthTokenExpired)
}
