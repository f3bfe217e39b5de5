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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"reppy/coach-client/internal/domain"
)

// TokenSource supplies the bearer token attached to authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed TokenSource, handy for tests and scripts.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// apiResponse is the envelope every REST endpoint wraps its payload in.
type apiResponse struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data,omitempty"`
	Error   *domain.APIError `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Client is the shared HTTP plumbing for the remote API: auth header
// injection, envelope unwrapping, request validation and error mapping.
type Client struct {
	baseURL string
	http    *http.Client
	// streamHTTP has no overall timeout; a chat stream lives as long as the
	// server keeps generating. Callers cancel via context.
	streamHTTP     *http.Client
	tokens         TokenSource
	validate       *validator.Validate
	logger         *zap.Logger
	onUnauthorized func()
}

type Option func(*Client)

// WithTokenSource attaches bearer tokens from ts to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithOnUnauthorized installs a hook invoked whenever the server answers 401.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		streamHTTP: &http.Client{},
		validate:   validator.New(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		if err := c.validate.Struct(body); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.APIError{Code: domain.CodeNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{Code: domain.CodeNetworkError, Message: err.Error()}
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.Warn("undecodable response body",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &domain.APIError{
			Code:    domain.CodeServerError,
			Message: http.StatusText(resp.StatusCode),
		}
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := envelope.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.APIError{Code: domain.CodeServerError, Message: msg}
	}

	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
