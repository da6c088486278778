// Package api is a typed HTTP client for the todokeeper REST API. It keeps
// the access and refresh tokens in memory and transparently refreshes an
// expired access token once per request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

const apiPrefix = "/api/v1"

type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// onRotate is told about every new refresh token; "" means the
	// session ended.
	onRotate func(refreshToken string)
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// OnRotate registers fn to be called with every refresh token the server
// hands out, so callers can persist it.
func (c *Client) OnRotate(fn func(refreshToken string)) {
	c.mu.Lock()
	c.onRotate = fn
	c.mu.Unlock()
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	fn := c.onRotate
	c.mu.Unlock()
	if fn != nil {
		fn(refresh)
	}
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", nil, nil, "", nil)
}

// call performs an authenticated request. A 403 token_expired answer
// triggers one refresh and a retry.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	access, refresh := c.tokens()
	if access == "" && refresh == "" {
		return ErrNotLoggedIn
	}
	if access == "" {
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		access, refresh = c.tokens()
	}

	err := c.send(ctx, method, apiPrefix+path, query, body, access, out)
	if !HasCode(err, common.CodeTokenExpired) || refresh == "" {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}
	access, _ = c.tokens()
	return c.send(ctx, method, apiPrefix+path, query, body, access, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}
	var body struct {
		Error  string            `json:"error"`
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}
	e.Message, e.Code, e.Fields = body.Error, body.Code, body.Fields
	return e
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
