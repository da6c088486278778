package api

import (
	"context"
	"net/http"
	"time"
)

type tokenResponse struct {
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates an account and returns its id. It does not log in.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (int64, error) {
	req := map[string]string{"fullName": fullName, "email": email, "password": password}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.send(ctx, http.MethodPost, apiPrefix+"/auth/register", nil, req, "", &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// Login exchanges credentials for a token pair and keeps it. The returned
// duration is the access token lifetime.
func (c *Client) Login(ctx context.Context, email, password string) (time.Duration, error) {
	req := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.send(ctx, http.MethodPost, apiPrefix+"/auth/login", nil, req, "", &resp); err != nil {
		return 0, err
	}
	c.setTokens(resp.Token, resp.RefreshToken)
	return time.Duration(resp.ExpiresIn) * time.Second, nil
}

// Refresh rotates the refresh token. Any failure drops both tokens, since
// the old refresh token is no longer usable.
func (c *Client) Refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	var resp tokenResponse
	err := c.send(ctx, http.MethodPost, apiPrefix+"/auth/refresh", nil, map[string]string{"refreshToken": refresh}, "", &resp)
	if err != nil {
		if !IsUnavailable(err) {
			c.setTokens("", "")
		}
		return err
	}
	c.setTokens(resp.Token, resp.RefreshToken)
	return nil
}

// Resume installs a stored refresh token; the next call refreshes it.
func (c *Client) Resume(refreshToken string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = "", refreshToken
	c.mu.Unlock()
}

func (c *Client) Logout() {
	c.setTokens("", "")
}

func (c *Client) LoggedIn() bool {
	access, refresh := c.tokens()
	return access != "" || refresh != ""
}
