package client

import (
	"context"
	"errors"
	"net/http"

	"giftcircle/internal/models"
)

type authResponse struct {
	User      models.PublicUser `json:"user"`
	SessionID string            `json:"sessionId"`
}

// Register creates an account and signs in as it. email may be empty.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	var res authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &res); err != nil {
		return nil, err
	}
	c.setState(AuthState{Token: res.SessionID, User: &res.User})
	return &res.User, nil
}

// Login signs in with an email and password
func (c *Client) Login(ctx context.Context, email, password string) (*models.PublicUser, error) {
	var res authResponse
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.setState(AuthState{Token: res.SessionID, User: &res.User})
	return &res.User, nil
}

// Logout ends the session. Local state is cleared even when the request
// fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setState(AuthState{})
	return err
}

// Me reloads the signed-in user. A 401 clears the local session.
func (c *Client) Me(ctx context.Context) (*models.PublicUser, error) {
	var res struct {
		User models.PublicUser `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &res); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.setState(AuthState{})
		}
		return nil, err
	}
	c.setState(AuthState{Token: c.token(), User: &res.User})
	return &res.User, nil
}
