package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reppy/coach-client/internal/domain"
	"reppy/coach-client/internal/store"
)

type fakeAuthService struct {
	loginErr  error
	logoutErr error
	token     string
	userID    string
}

func (f *fakeAuthService) Login(_ context.Context, _ domain.LoginRequest) (*domain.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.AuthResponse{Token: f.token, UserID: f.userID}, nil
}

func (f *fakeAuthService) Signup(_ context.Context, _ domain.SignupRequest) (*domain.AuthResponse, error) {
	return &domain.AuthResponse{Token: f.token, UserID: f.userID}, nil
}

func (f *fakeAuthService) Logout(context.Context) error {
	return f.logoutErr
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoginPersistsSession(t *testing.T) {
	st := store.NewMemStore()
	svc := &fakeAuthService{token: "the-token", userID: "user-1"}
	m := NewManager(st, svc, nil)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "a@example.com", "password123"))
	assert.True(t, m.Authenticated())
	assert.Equal(t, "user-1", m.UserID())

	token, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "the-token", token)

	var stored string
	ok, err := st.Get(ctx, store.KeyAuthToken, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "the-token", stored)
}

func TestLoginFailureLeavesStateClean(t *testing.T) {
	st := store.NewMemStore()
	svc := &fakeAuthService{loginErr: errors.New("bad credentials")}
	m := NewManager(st, svc, nil)

	require.Error(t, m.Login(context.Background(), "a@example.com", "wrong"))
	assert.False(t, m.Authenticated())
}

func TestLoadSessionRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	token := signedToken(t, time.Now().Add(time.Hour))

	first := NewManager(st, &fakeAuthService{token: token, userID: "user-1"}, nil)
	require.NoError(t, first.Login(ctx, "a@example.com", "password123"))

	// a fresh manager over the same store stands in for an app restart
	second := NewManager(st, &fakeAuthService{}, nil)
	require.NoError(t, second.LoadSession(ctx))
	assert.True(t, second.Authenticated())
	assert.Equal(t, "user-1", second.UserID())
}

func TestLoadSessionMissing(t *testing.T) {
	m := NewManager(store.NewMemStore(), &fakeAuthService{}, nil)
	err := m.LoadSession(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, m.Authenticated())
}

func TestLoadSessionExpiredTokenIsDiscarded(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyAuthToken, signedToken(t, time.Now().Add(-time.Hour))))
	require.NoError(t, st.Set(ctx, store.KeyUserID, "user-1"))

	m := NewManager(st, &fakeAuthService{}, nil)
	err := m.LoadSession(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, m.Authenticated())

	var stored string
	ok, err := st.Get(ctx, store.KeyAuthToken, &stored)
	require.NoError(t, err)
	assert.False(t, ok, "expired token must be removed from the store")
}

func TestLoadSessionOpaqueTokenPassesThrough(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyAuthToken, "not-a-jwt"))

	m := NewManager(st, &fakeAuthService{}, nil)
	require.NoError(t, m.LoadSession(ctx))
	assert.True(t, m.Authenticated(), "non-JWT tokens are left for the server to judge")
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	st := store.NewMemStore()
	svc := &fakeAuthService{token: "the-token", userID: "user-1", logoutErr: errors.New("server down")}
	m := NewManager(st, svc, nil)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "a@example.com", "password123"))
	require.Error(t, m.Logout(ctx))
	assert.False(t, m.Authenticated(), "local credentials are cleared regardless")

	var stored string
	ok, err := st.Get(ctx, store.KeyAuthToken, &stored)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearAuthOn401(t *testing.T) {
	st := store.NewMemStore()
	m := NewManager(st, &fakeAuthService{token: "the-token", userID: "user-1"}, nil)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "a@example.com", "password123"))
	require.NoError(t, m.ClearAuth(ctx))
	assert.False(t, m.Authenticated())

	token, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
