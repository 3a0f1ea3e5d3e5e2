// Package store is a minimal client for the managed Postgres REST data API.
//
// The API speaks the PostgREST dialect: one endpoint per table under
// /rest/v1/<table>, stored procedures under /rest/v1/rpc/<fn>, filters as
// query parameters. Authorization is entirely row-level security evaluated
// server-side from the caller's JWT, so every request carries either the
// anon key or the end user's bearer token. A Session binds one of those
// tokens; handlers create a Session per request and pass it down explicitly.
package store

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
	// URL is the project base URL, e.g. "https://db.novadent.example".
	// The client appends /rest/v1 itself.
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Client holds service-level configuration. It is safe for concurrent use
// and carries no caller identity of its own.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("store: URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("store: anon key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    cfg.URL + "/rest/v1",
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// WithToken returns a Session that issues every request as the user the
// token belongs to. RLS policies evaluate against that identity.
func (c *Client) WithToken(token string) *Session {
	return &Session{c: c, token: token}
}

// Anon returns a Session authenticated only by the anon key. Used for the
// pre-auth username lookup and the public outreach form.
func (c *Client) Anon() *Session {
	return &Session{c: c, token: c.anonKey}
}

// Health probes the data API root. Any well-formed HTTP response counts as
// healthy; the probe only detects an unreachable or misconfigured endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("store: health request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store: health: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("store: health: unexpected status %d", res.StatusCode)
	}
	return nil
}

// Session is a request-scoped handle on the data API. Not a connection:
// each call is an independent HTTP round-trip under the bound token.
type Session struct {
	c     *Client
	token string
}

// From starts a query against a table.
func (s *Session) From(table string) *Query {
	return &Query{s: s, table: table}
}

// RPC calls a stored procedure with a JSON argument object and decodes the
// result into out (pass nil to discard).
func (s *Session) RPC(ctx context.Context, fn string, args any, out any) error {
	return s.do(ctx, http.MethodPost, "/rpc/"+fn, "", nil, args, out)
}

func (s *Session) do(ctx context.Context, method, path, rawQuery string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("store: marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := s.c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("store: create request: %w", err)
	}
	req.Header.Set("apikey", s.c.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := s.c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store: do request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("store: read response: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return parseError(res.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("store: decode response: %w", err)
	}
	return nil
}
