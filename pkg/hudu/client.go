// Package hudu is a REST client for the Hudu IT documentation API.
//
// Every operation issues exactly one HTTP request against {BaseURL}/api/v1
// and unwraps the collection's envelope key. Non-2xx responses and network
// failures are returned as typed errors from pkg/errors; nothing is retried.
package hudu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/observability"
)

const (
	// DefaultTimeout bounds each HTTP call
	DefaultTimeout = 30 * time.Second

	apiPrefix        = "/api/v1"
	maxResponseBytes = 32 << 20
)

// Config configures a Client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client talks to one Hudu instance. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
	metrics    observability.MetricsProvider
	tracer     *observability.TracingProvider
}

// Option configures optional Client behavior
type Option func(*Client)

// WithLogger sets the logger used for request logging
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger.WithFields(logging.String("component", "hudu-gateway"))
	}
}

// WithMetrics records request durations
func WithMetrics(metrics observability.MetricsProvider) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithTracer opens a client span per request and propagates trace context
func WithTracer(tracer *observability.TracingProvider) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a Client
func NewClient(config Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(config.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid Hudu base URL %q", config.BaseURL)
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing Hudu API key")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    base + apiPrefix,
		apiKey:     config.APIKey,
		httpClient: httpClient,
		logger:     logging.NewNop(),
		metrics:    observability.NopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one call against the API
type request struct {
	collection string // metrics label
	method     string
	path       string
	query      url.Values
	body       []byte
}

// do performs req and returns the raw 2xx body
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	status := "network_error"

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.StartGatewaySpan(ctx, req.method, req.path)
		defer span.End()
	}

	defer func() {
		duration := time.Since(start)
		c.metrics.RecordGatewayRequest(ctx, req.collection, req.method, status, duration)
		c.logger.WithContext(ctx).Debug("Hudu request completed",
			logging.String("method", req.method),
			logging.String("path", req.path),
			logging.String("status", status),
			logging.Duration("duration", duration),
		)
	}()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, mcperrors.UpstreamNetworkError(req.method, req.path, err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.tracer != nil {
		c.tracer.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordError(ctx, err)
		return nil, mcperrors.UpstreamNetworkError(req.method, req.path, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordError(ctx, err)
		return nil, mcperrors.UpstreamNetworkError(req.method, req.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(req.method, req.path, resp.StatusCode, backendMessage(data))
		c.recordError(ctx, apiErr)
		return nil, apiErr
	}

	return data, nil
}

func (c *Client) recordError(ctx context.Context, err error) {
	if c.tracer != nil {
		c.tracer.RecordError(ctx, err)
	}
}

func statusError(method, path string, status int, message string) error {
	switch status {
	case http.StatusNotFound:
		return mcperrors.UpstreamNotFound(method, path, message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return mcperrors.UpstreamUnauthorized(method, path, status, message)
	default:
		return mcperrors.UpstreamAPIError(method, path, status, message)
	}
}

// backendMessage extracts the error text Hudu puts in failure bodies
func backendMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"error", "message", "errors"} {
		if r := gjson.GetBytes(body, key); r.Exists() && r.Type != gjson.Null {
			if r.IsArray() {
				parts := make([]string, 0, len(r.Array()))
				for _, item := range r.Array() {
					parts = append(parts, item.String())
				}
				return strings.Join(parts, "; ")
			}
			return r.String()
		}
	}
	return ""
}

// unwrapList returns the array stored under key. A missing or null key is an empty list.
func unwrapList(body []byte, key string) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []json.RawMessage{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}

	r := gjson.ParseBytes(body)
	if !r.IsArray() {
		r = r.Get(key)
	}
	if !r.Exists() || r.Type == gjson.Null {
		return []json.RawMessage{}, nil
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("expected %q to be an array in Hudu response", key)
	}

	items := r.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out, nil
}

// unwrapObject returns the value stored under key, or JSON null when absent
func unwrapObject(body []byte, key string) (json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}

	r := gjson.GetBytes(body, key)
	if !r.Exists() {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(r.Raw), nil
}
