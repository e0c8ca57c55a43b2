// Package backend is the HTTP client for the concierge chat API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ConciergeChat/internal/session"
)

// Client talks to the concierge API. It keeps no conversation state of its own;
// every call is a single request with no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	duration   metric.Float64Histogram
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default cookie-aware HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter sets the meter used for request duration metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *Client) {
		if meter != nil {
			c.meter = meter
		}
	}
}

// NewClient creates a client for the API rooted at baseURL, e.g. "http://localhost:5000".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: expected http(s)://host", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		logger:     slog.Default(),
		tracer:     otel.Tracer("concierge/backend"),
		meter:      otel.Meter("concierge/backend"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	c.duration, err = c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		c.logger.Warn("failed to create request duration histogram", "error", err)
	}

	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListMessages fetches the conversation in server order.
func (c *Client) ListMessages(ctx context.Context) ([]session.Message, error) {
	var msgs []session.Message
	if err := c.do(ctx, http.MethodGet, messagesPath, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a guest message and returns the conversation after the
// backend has appended its reply.
func (c *Client) SendMessage(ctx context.Context, content string) ([]session.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var msgs []session.Message
	req := SendMessageRequest{Role: session.RoleUser, Content: content}
	if err := c.do(ctx, http.MethodPost, messagesPath, req, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ClearChat deletes every message of the active conversation.
func (c *Client) ClearChat(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, messagesPath, nil, nil)
}

// ListSessions fetches all chat sessions.
func (c *Client) ListSessions(ctx context.Context) ([]session.ChatSession, error) {
	var sessions []session.ChatSession
	if err := c.do(ctx, http.MethodGet, sessionsPath, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a chat session. An empty name is allowed.
func (c *Client) CreateSession(ctx context.Context, name string) (session.ChatSession, error) {
	var created session.ChatSession
	if err := c.do(ctx, http.MethodPost, sessionsPath, CreateSessionRequest{Name: name}, &created); err != nil {
		return session.ChatSession{}, err
	}
	return created, nil
}

// DeleteSession deletes the chat session with the given id.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, sessionsPath+"/"+strconv.FormatInt(id, 10), nil, nil)
}

// do performs one JSON request. A nil body sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "concierge_api_call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Error("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failure")
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if c.duration != nil {
		c.duration.Record(ctx, float64(elapsed.Milliseconds()),
			metric.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
				attribute.Int("http.response.status_code", resp.StatusCode),
			),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Warn("api request rejected",
			"method", method, "path", path, "request_id", requestID,
			"status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}

	c.logger.Debug("api request completed",
		"method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return fmt.Errorf("empty response body from %s %s", method, path)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s %s response: %w", method, path, err)
	}
	return nil
}
