// Package identity is a client for the external identity provider.
//
// The provider owns credentials, password grants and token issuance; this
// package only consumes that contract: it exchanges credentials for a token
// pair and verifies the provider-signed HS256 access tokens locally on each
// request.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Config struct {
	// URL is the project base URL; the client appends /auth/v1 itself.
	URL     string
	AnonKey string
	// JWTSecret is the provider's HS256 signing secret, used for local
	// verification of access tokens.
	JWTSecret string
	Timeout   time.Duration
}

type Client struct {
	baseURL    string
	anonKey    string
	jwtSecret  []byte
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("identity: URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("identity: anon key is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("identity: JWT secret is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    cfg.URL + "/auth/v1",
		anonKey:    cfg.AnonKey,
		jwtSecret:  []byte(cfg.JWTSecret),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// User is the provider's representation of an authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the token pair the provider mints on a successful grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignInWithPassword performs a password grant and returns the provider's
// session. Bad credentials come back as ErrInvalidCredentials.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.tokenGrant(ctx, "password", body)
}

// Refresh exchanges a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.tokenGrant(ctx, "refresh_token", body)
}

func (c *Client) tokenGrant(ctx context.Context, grantType string, body map[string]string) (*Session, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal request: %w", err)
	}

	u := c.baseURL + "/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: do request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("identity: read response: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		var pe struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
			Msg         string `json:"msg"`
		}
		_ = json.Unmarshal(raw, &pe)
		if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		msg := pe.Description
		if msg == "" {
			msg = pe.Msg
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, res.StatusCode, msg)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("identity: decode response: %w", err)
	}
	return &sess, nil
}
