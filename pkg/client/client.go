// Package client is a Go client for the opsboard REST API. Each method maps
// to one endpoint and unwraps the response envelope.
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

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
)

// DefaultBaseURL matches the API's default port and base path.
const DefaultBaseURL = "http://localhost:3000/api"

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger requests are traced to at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is an unsuccessful envelope (or a non-JSON error response).
type APIError struct {
	Status  int
	Err     string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Err + ": " + e.Message
	}
	return e.Err
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Health is the liveness probe body.
type Health struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// UserInput is the create payload. Empty role and status take server defaults.
type UserInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role,omitempty"`
	Status         string `json:"status,omitempty"`
	IdempotencyKey string `json:"-"`
}

// UserPatch is the update payload. Nil fields are not sent.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// MetricInput is the create payload for an analytics metric.
type MetricInput struct {
	MetricName     string            `json:"metricName"`
	MetricValue    float64           `json:"metricValue"`
	MetricType     string            `json:"metricType"`
	Description    string            `json:"description,omitempty"`
	Timestamp      *time.Time        `json:"timestamp,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IdempotencyKey string            `json:"-"`
}

// MetricQuery filters ListMetrics. Empty fields are omitted.
type MetricQuery struct {
	MetricType string
	StartDate  string
	EndDate    string
}

func (q MetricQuery) encode() string {
	v := url.Values{}
	if q.MetricType != "" {
		v.Set("metricType", q.MetricType)
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Health calls GET /health. The body is not enveloped data, so it is decoded whole.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, "", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := c.do(ctx, http.MethodGet, "/users", nil, "", &users, nil)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, "", &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodPost, "/users", in, in.IdempotencyKey, &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, p UserPatch) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), p, "", &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, "", nil, nil)
}

func (c *Client) ListMetrics(ctx context.Context, q MetricQuery) ([]domain.Metric, error) {
	var metrics []domain.Metric
	err := c.do(ctx, http.MethodGet, "/analytics"+q.encode(), nil, "", &metrics, nil)
	return metrics, err
}

func (c *Client) ListMetricsByType(ctx context.Context, metricType string) ([]domain.Metric, error) {
	var metrics []domain.Metric
	err := c.do(ctx, http.MethodGet, "/analytics/type/"+url.PathEscape(metricType), nil, "", &metrics, nil)
	return metrics, err
}

func (c *Client) CreateMetric(ctx context.Context, in MetricInput) (*domain.Metric, error) {
	var m domain.Metric
	if err := c.do(ctx, http.MethodPost, "/analytics", in, in.IdempotencyKey, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Summary(ctx context.Context) ([]domain.MetricSummary, error) {
	var groups []domain.MetricSummary
	err := c.do(ctx, http.MethodGet, "/analytics/summary", nil, "", &groups, nil)
	return groups, err
}

func (c *Client) DeleteMetric(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/analytics/"+url.PathEscape(id), nil, "", nil, nil)
}

// do issues one request. On success the envelope's data is decoded into
// data, or the whole body into raw when raw is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload any, idemKey string, data, raw any) error {
	target := c.baseURL + path

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	c.logger.Debug().Str("method", method).Str("url", target).Msg("Making HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", target).Msg("HTTP request failed")
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Err: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		c.logger.Debug().Int("status", resp.StatusCode).Str("url", target).Str("error", env.Error).Msg("HTTP request returned error")
		apiErr := &APIError{Status: resp.StatusCode, Err: env.Error, Message: env.Message}
		if apiErr.Err == "" {
			apiErr.Err = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if raw != nil {
		if err := json.Unmarshal(b, raw); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
	}

	c.logger.Debug().Int("status", resp.StatusCode).Str("url", target).Msg("HTTP request completed")
	return nil
}
