package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"todolist-backend/internal/auth"
	"todolist-backend/internal/domain"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return domain.ErrConflict
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newTestAuthService() AuthService {
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
		Issuer:               "test",
	})
	return NewAuthService(newFakeUserRepo(), auth.NewPasswordHasher(), jwtManager)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "bad email", email: "not-an-email", password: "password123"},
		{name: "empty email", email: "", password: "password123"},
		{name: "short password", email: "user@example.com", password: "1234567"},
		{name: "over bcrypt limit", email: "user@example.com", password: string(make([]byte, 73))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterRequest{Email: tt.email, Password: tt.password})
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	req := RegisterRequest{Email: "user@example.com", Password: "password123"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()

	reg, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", tokens.TokenType)

	// The access token carries the registered identity.
	callerID, err := svc.ValidateAccessToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.ID, callerID.String())

	// The refresh token mints a fresh, valid pair.
	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	callerID, err = svc.ValidateAccessToken(context.Background(), refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.ID, callerID.String())
}

func TestLoginFailures(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	tokens, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: tokens.AccessToken})
	require.Error(t, err)
}
