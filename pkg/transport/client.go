package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mercator-hq/chatclient/pkg/auth"
	"mercator-hq/chatclient/pkg/telemetry/logging"
)

// Fixed endpoints of the remote API.
const (
	Endpoint       = "https://api.openai.com/v1/chat/completions"
	ModelsEndpoint = "https://api.openai.com/v1/models"
)

// HeaderGenerator produces the headers attached to every call.
// *auth.Credential implements it.
type HeaderGenerator interface {
	GenerateHeaders() []auth.Header
}

// Client sends payloads to the API. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	endpoint       string
	modelsEndpoint string
	httpClient     *http.Client
	timeout        time.Duration
	observers      []Observer
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the chat completions URL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithModelsEndpoint overrides the URL used by CheckAccess.
func WithModelsEndpoint(url string) Option {
	return func(c *Client) {
		c.modelsEndpoint = url
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each call, including reading the body. Zero leaves the
// call bounded only by its context. It applies whatever the position of
// WithHTTPClient in the option list, without modifying that client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithObserver registers observers notified after every call.
func WithObserver(observers ...Observer) Option {
	return func(c *Client) {
		c.observers = append(c.observers, observers...)
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client for the fixed endpoints unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:       Endpoint,
		modelsEndpoint: ModelsEndpoint,
		httpClient:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "transport")
	return c
}

// Endpoint returns the chat completions URL in use.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CheckAccess reports whether auth can list models. It returns true iff the
// models endpoint answers 200, and a *NetworkError when no response arrives.
func (c *Client) CheckAccess(ctx context.Context, auth HeaderGenerator) (bool, error) {
	headers := auth.GenerateHeaders()
	ex := c.newExchange(ctx, OperationCheckAccess, http.MethodGet, c.modelsEndpoint, headers, nil)
	ctx = logging.WithRequestID(ctx, ex.RequestID)

	resp, err := c.send(ctx, http.MethodGet, c.modelsEndpoint, headers, nil)
	if err != nil {
		c.finish(ctx, ex, err)
		return false, err
	}
	ex.StatusCode = resp.status
	ex.ResponseBody = resp.body

	// Access depends on the status alone; an unreadable body does not matter
	var outcome error
	if resp.status != http.StatusOK {
		outcome = statusError(resp.status, resp.body)
	}
	c.finish(ctx, ex, outcome)
	return resp.status == http.StatusOK, nil
}

func (c *Client) newExchange(ctx context.Context, op, method, url string, headers []auth.Header, body []byte) *Exchange {
	id := logging.GetRequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	return &Exchange{
		RequestID:      id,
		Operation:      op,
		Method:         method,
		URL:            url,
		RequestHeaders: redactHeaders(headers),
		RequestBody:    body,
		Started:        time.Now(),
	}
}

// response is what send obtained once a status line arrived. readErr is set
// when the body could not be read in full; body then holds what was read.
type response struct {
	status  int
	body    []byte
	readErr error
}

// send performs one HTTP round trip and reads the whole body. It returns a
// *NetworkError only when no response was obtained.
func (c *Client) send(ctx context.Context, method, url string, headers []auth.Header, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}

	c.logger.DebugContext(ctx, "sending request", "method", method, "url", url, "bytes", len(body))

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Cause: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil && ctx.Err() != nil {
		return nil, &NetworkError{Cause: ctx.Err()}
	}
	resp := &response{status: httpResp.StatusCode, body: data}
	if err != nil {
		resp.readErr = fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

// finish completes the exchange, logs it and notifies observers.
func (c *Client) finish(ctx context.Context, ex *Exchange, err error) {
	ex.Latency = time.Since(ex.Started)
	ex.Err = err
	ex.Outcome = Outcome(err)

	attrs := []any{
		"operation", ex.Operation,
		"status", ex.StatusCode,
		"outcome", ex.Outcome,
		"latency_ms", ex.Latency.Milliseconds(),
	}
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", append(attrs, "error", err)...)
	} else {
		c.logger.DebugContext(ctx, "request completed", attrs...)
	}

	for _, o := range c.observers {
		o.ObserveExchange(ctx, ex)
	}
}

func statusError(status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return &UnauthorizedError{Message: errorMessage(body)}
	}
	return &APIError{StatusCode: status, Message: errorMessage(body)}
}

func redactHeaders(headers []auth.Header) []auth.Header {
	out := make([]auth.Header, len(headers))
	for i, h := range headers {
		if h.Name == auth.HeaderAuthorization {
			h.Value = auth.MaskAuth(h.Value)
		}
		out[i] = h
	}
	return out
}
