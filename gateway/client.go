package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// RequestIDHeader carries a fresh correlation ID on every call.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 1 << 20
	defaultMessage   = "An error occurred"
)

var (
	_ goSession.Gateway        = (*Client)(nil)
	_ goSession.ProfileFetcher = (*Client)(nil)
)

// APIError is a non-2xx response from the identity service.
type APIError struct {
	Status         int
	Message        string
	BackendMessage string
}

// Error formats the status, message and any backend detail.
func (e *APIError) Error() string {
	if e.BackendMessage != "" {
		return fmt.Sprintf("identity service: %d %s (%s)", e.Status, e.Message, e.BackendMessage)
	}
	return fmt.Sprintf("identity service: %d %s", e.Status, e.Message)
}

// Unwrap maps the status class onto the Store's error kinds.
func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return goSession.ErrCredentialRejected
	}
	return goSession.ErrGatewayUnavailable
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the identity service. Safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	logger    *slog.Logger
}

// NewClient returns a Client for cfg. BaseURL must be an absolute http(s) URL.
func NewClient(cfg goSession.GatewayConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: gateway base url %q", goSession.ErrInvalidConfig, cfg.BaseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      &http.Client{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	JWT string `json:"jwt"`
}

// Authenticate exchanges credentials for a token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/authenticate", nil, "", authenticateRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return "", err
	}
	return tokenOf(out)
}

// Register creates a customer account and returns its token.
func (c *Client) Register(ctx context.Context, profile goSession.Profile) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/customers", nil, "", profile, &out); err != nil {
		return "", err
	}
	return tokenOf(out)
}

// ValidateToken asks whether token is still accepted.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	var valid bool
	q := url.Values{"jwt": []string{token}}
	if err := c.do(ctx, http.MethodGet, "/auth/validate-token", q, token, nil, &valid); err != nil {
		return false, err
	}
	return valid, nil
}

// Revoke ends the server-side session for token.
func (c *Client) Revoke(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil, nil)
}

// FetchProfile returns the server's full profile for token.
func (c *Client) FetchProfile(ctx context.Context, token string) (*identity.Identity, error) {
	var id identity.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, token, nil, &id); err != nil {
		return nil, err
	}
	if id.Username == "" || id.Role.Name == "" {
		return nil, fmt.Errorf("%w: incomplete profile", goSession.ErrGatewayUnavailable)
	}
	id.Source = identity.SourceProfile
	return &id, nil
}

func tokenOf(out tokenResponse) (string, error) {
	if out.JWT == "" {
		return "", fmt.Errorf("%w: response carried no token", goSession.ErrGatewayUnavailable)
	}
	return out.JWT, nil
}

type errorBody struct {
	Message        string `json:"message"`
	BackendMessage string `json:"backendMessage"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", goSession.ErrGatewayUnavailable, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client(ctx, bearer).Do(req)
	if err != nil {
		c.logger.Debug("identity service call failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %w", goSession.ErrGatewayUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("identity service call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", goSession.ErrGatewayUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: defaultMessage}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Message != "" {
				apiErr.Message = eb.Message
			}
			apiErr.BackendMessage = eb.BackendMessage
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty %s response", goSession.ErrGatewayUnavailable, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", goSession.ErrGatewayUnavailable, path, err)
	}
	return nil
}

// client returns the transport for one call; a bearer token wraps it in an
// oauth2 transport that sets the Authorization header.
func (c *Client) client(ctx context.Context, bearer string) *http.Client {
	if bearer == "" {
		return c.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: bearer,
		TokenType:   "Bearer",
	}))
}

// IsAPIError reports whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
