package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/logging"

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// TokenSource yields the bearer credential for the current shopper, or "" when anonymous.
type TokenSource func(ctx context.Context) string

// Client talks to the remote commerce API over HTTP/JSON.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource attaches a bearer credential to every request when one is available.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.tokens = src
	}
}

// New builds a Client for baseURL. timeout bounds each request end to end.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     interface{}
	token    string
	fallback string
}

// messageBody is the common {success, message} envelope of mutation responses.
type messageBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, req request) (int, []byte, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	token := req.token
	if token == "" && c.tokens != nil {
		token = c.tokens(ctx)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("commerce request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read %s %s: %w", ErrUnavailable, req.method, req.path, err)
	}
	c.logger.Debug("commerce request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, raw, &APIError{Status: resp.StatusCode, Message: messageOr(raw, req.fallback)}
	}
	return resp.StatusCode, raw, nil
}

// mutate sends a request answered by a {success, message} envelope. With
// strict set a missing success flag counts as a rejection, otherwise only an
// explicit false does.
func (c *Client) mutate(ctx context.Context, req request, strict bool) (string, error) {
	status, raw, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	var env messageBody
	decodeErr := json.Unmarshal(raw, &env)
	switch {
	case env.Success != nil && !*env.Success:
		return "", &APIError{Status: status, Message: firstNonEmpty(env.Message, req.fallback)}
	case strict && (decodeErr != nil || env.Success == nil):
		return "", &APIError{Status: status, Message: firstNonEmpty(env.Message, req.fallback)}
	}
	return env.Message, nil
}

func messageOr(raw []byte, fallback string) string {
	var env messageBody
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		return env.Message
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
