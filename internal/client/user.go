package client

import (
	"context"
	"fmt"
	"net/url"

	"reppy/coach-client/internal/domain"
)

// UserClient talks to the user profile endpoints.
type UserClient struct {
	c *Client
}

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var out domain.UserProfile
	path := fmt.Sprintf("/users/%s/profile", url.PathEscape(userID))
	if err := u.c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UserClient) UpdateProfile(ctx context.Context, userID string, profile domain.UserProfile) (*domain.UserProfile, error) {
	var out domain.UserProfile
	path := fmt.Sprintf("/users/%s/profile", url.PathEscape(userID))
	if err := u.c.put(ctx, path, profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
