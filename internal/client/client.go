// Package client talks to the timesheet REST API on behalf of the CLI.
package client

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
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"timesheets.service/internal/contract"
)

const maxErrorBody = 64 << 10

// Client is a REST client for the timesheet API. Calls that need a session
// read the bearer token from the TokenStore.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	cb      *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		store: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "timesheets-api",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool { return !retryable(err) },
	})
	return c
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, req contract.RegisterRequest) (contract.AuthResponse, error) {
	var resp contract.AuthResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return resp, err
	}
	return resp, c.store.Save(Session{Token: resp.Token, User: resp.User})
}

// Login signs in and stores the returned session.
func (c *Client) Login(ctx context.Context, req contract.LoginRequest) (contract.AuthResponse, error) {
	var resp contract.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return resp, err
	}
	return resp, c.store.Save(Session{Token: resp.Token, User: resp.User})
}

// Logout revokes the stored session on the server and forgets it locally.
// The local session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.store.Load()
	if err != nil {
		return err
	}
	var callErr error
	if sess != nil {
		callErr = c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", sess.Token, nil, nil)
	}
	if err := c.store.Clear(); err != nil {
		return err
	}
	return callErr
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (contract.User, error) {
	var u contract.User
	err := c.authed(ctx, "load user", http.MethodGet, "/api/user/me", &u)
	return u, err
}

// SearchEmployers lists employers whose username contains query.
func (c *Client) SearchEmployers(ctx context.Context, query string) ([]contract.User, error) {
	var users []contract.User
	path := "/api/auth/employers/search?q=" + url.QueryEscape(query)
	err := c.do(ctx, "search employers", http.MethodGet, path, "", nil, &users)
	return users, err
}

// Dashboard fetches the server snapshot for the signed-in account.
func (c *Client) Dashboard(ctx context.Context) (contract.Dashboard, error) {
	var d contract.Dashboard
	err := c.authed(ctx, "load dashboard", http.MethodGet, "/api/timesheets/dashboard", &d)
	return d, err
}

func (c *Client) ClockIn(ctx context.Context) error {
	return c.authed(ctx, "clock in", http.MethodPost, "/api/timesheets/clock-in", nil)
}

func (c *Client) ClockOut(ctx context.Context) error {
	return c.authed(ctx, "clock out", http.MethodPost, "/api/timesheets/clock-out", nil)
}

// Session returns the stored session, or ErrMissingToken.
func (c *Client) Session() (*Session, error) {
	sess, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Token == "" {
		return nil, ErrMissingToken
	}
	return sess, nil
}

func (c *Client) authed(ctx context.Context, op, method, path string, out any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	return c.do(ctx, op, method, path, sess.Token, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, token, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &TransportError{Op: op, Message: "Server unavailable, try again shortly", Err: err}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().Str("op", op).Int("status", resp.StatusCode).Msg("API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		te := &TransportError{Op: op, StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var e contract.ErrorResponse
		if json.Unmarshal(raw, &e) == nil {
			te.Message = e.Text()
		}
		return te
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
