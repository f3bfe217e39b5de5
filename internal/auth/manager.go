package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
	"reppy/coach-client/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("stored session has expired")
)

// Service is the remote auth transport.
type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Manager keeps the auth token and user id in the persistent store and
// answers token queries for the API client.
type Manager struct {
	mu     sync.RWMutex
	token  string
	userID string

	store   store.Store
	service Service
	logger  *zap.Logger
}

func NewManager(st store.Store, service Service, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: st, service: service, logger: logger}
}

// Token implements client.TokenSource.
func (m *Manager) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.service.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	return m.setAuth(ctx, resp.Token, resp.UserID)
}

func (m *Manager) Signup(ctx context.Context, email, password, name string) error {
	resp, err := m.service.Signup(ctx, domain.SignupRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return err
	}
	return m.setAuth(ctx, resp.Token, resp.UserID)
}

// Logout tells the server and clears local credentials either way.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.service.Logout(ctx)
	if cerr := m.ClearAuth(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// ClearAuth drops the persisted credentials. Also wired to the API client's
// 401 hook.
func (m *Manager) ClearAuth(ctx context.Context) error {
	if err := m.store.Remove(ctx, store.KeyAuthToken); err != nil {
		return err
	}
	if err := m.store.Remove(ctx, store.KeyUserID); err != nil {
		return err
	}
	m.mu.Lock()
	m.token, m.userID = "", ""
	m.mu.Unlock()
	return nil
}

// LoadSession restores persisted credentials at startup. A token whose exp
// claim has passed is discarded and ErrSessionExpired returned; a missing
// token yields ErrNotAuthenticated.
func (m *Manager) LoadSession(ctx context.Context) error {
	var token string
	ok, err := m.store.Get(ctx, store.KeyAuthToken, &token)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		return ErrNotAuthenticated
	}
	if tokenExpired(token) {
		m.logger.Info("discarding expired session token")
		if err := m.ClearAuth(ctx); err != nil {
			return err
		}
		return ErrSessionExpired
	}

	var userID string
	if _, err := m.store.Get(ctx, store.KeyUserID, &userID); err != nil {
		return err
	}

	m.mu.Lock()
	m.token, m.userID = token, userID
	m.mu.Unlock()
	return nil
}

func (m *Manager) setAuth(ctx context.Context, token, userID string) error {
	if err := m.store.Set(ctx, store.KeyAuthToken, token); err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyUserID, userID); err != nil {
		return err
	}
	m.mu.Lock()
	m.token, m.userID = token, userID
	m.mu.Unlock()
	return nil
}

// tokenExpired reports whether the token's exp claim is in the past. The
// signature is not checked here; the server stays the authority, this only
// avoids starting up into a guaranteed 401. Tokens that do not parse as JWTs
// are passed through for the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(time.Now())
}
