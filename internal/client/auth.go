package client

import (
	"context"

	"reppy/coach-client/internal/domain"
)

// AuthClient talks to the authentication endpoints.
type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

func (a *AuthClient) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := a.c.post(ctx, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := a.c.post(ctx, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	return a.c.post(ctx, "/auth/logout", nil, nil)
}

func (a *AuthClient) Refresh(ctx context.Context) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := a.c.post(ctx, "/auth/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify asks the server whether the current token is still accepted.
func (a *AuthClient) Verify(ctx context.Context) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := a.c.get(ctx, "/auth/verify", &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}
