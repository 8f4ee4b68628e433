package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naveenspark/taskflow/internal/logging"
	"github.com/naveenspark/taskflow/pkg/domain"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// TokenStore is the persisted bearer token. The client reads it on every
// request and clears it when the server rejects the session.
type TokenStore interface {
	Get() (string, error)
	Clear() error
}

// StaticToken is a read-only TokenStore holding a fixed token.
type StaticToken string

func (t StaticToken) Get() (string, error) { return string(t), nil }

func (StaticToken) Clear() error { return nil }

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUnauthorizedHandler registers fn to be called after a 401 response to
// any request other than login/register, once the stored token is cleared.
// fn runs on the goroutine that issued the request.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client is the TaskFlow API client.
type Client struct {
	baseURL        string
	tokens         TokenStore
	httpClient     *http.Client
	log            logging.Logger
	onUnauthorized func()
}

// New creates a new API client. A nil tokens store sends no credentials.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login exchanges credentials for a bearer token. A 401 here never clears
// the stored token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Register creates an account and returns a token for it.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &resp, nil
}

// --- Users ---

// GetMe returns the authenticated user.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// UpdateMe updates the authenticated user's first and last name.
func (c *Client) UpdateMe(ctx context.Context, req domain.UpdateUserRequest) (*domain.User, error) {
	var u domain.User
	if err := c.doRequest(ctx, http.MethodPatch, "/users/me", req, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.Get()
	if err != nil {
		c.log.Warn(ctx, "read token", "err", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "err", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		httpErr := readError(resp)
		if resp.StatusCode == http.StatusUnauthorized && !isAuthPath(path) {
			c.expireSession(ctx, log)
		}
		return httpErr
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// expireSession clears the stored token and raises the unauthenticated
// signal. Navigation is left to whoever observes the signal.
func (c *Client) expireSession(ctx context.Context, log logging.Logger) {
	if err := c.tokens.Clear(); err != nil {
		log.Error(ctx, "clear token after 401", "err", err)
	}
	log.Info(ctx, "session rejected by server")
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// isAuthPath reports whether path is a login or register call, whose 401s
// are credential errors rather than expired sessions.
func isAuthPath(path string) bool {
	p, _, _ := strings.Cut(path, "?")
	return p == "/auth/login" || p == "/auth/register"
}
